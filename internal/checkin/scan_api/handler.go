package scan_api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"festpass/internal/auth"
	"festpass/internal/checkin"
	"festpass/internal/logger"
	"festpass/internal/passes"
	"festpass/internal/store"
	"festpass/internal/utils"
)

const maxScanBody = 16 << 10

type Handler struct {
	Verifier    *checkin.Verifier
	Passes      *passes.PassService
	Attendance  *checkin.Attendance
	Logger      *logger.Logger
}

func NewHandler(verifier *checkin.Verifier, passService *passes.PassService,
	attendance *checkin.Attendance, log *logger.Logger) *Handler {
	return &Handler{Verifier: verifier, Passes: passService, Attendance: attendance, Logger: log}
}

// Scan verifies a QR payload. Accepts the raw token string or a JSON
// object with a "token" field. Read-only: scanning never consumes the
// pass.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxScanBody))
	if err != nil || len(body) == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.Verifier.VerifyScan(r.Context(), string(body))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Confirm performs the explicit, audited consumption after staff
// confirm a scan in the UI.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	passID := chi.URLParam(r, "passID")
	actor := passes.Actor{UserID: auth.UserID(r.Context()), SourceIP: r.RemoteAddr}

	pass, err := h.Passes.MarkUsed(r.Context(), passID, actor)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Pass not found", http.StatusNotFound)
		case errors.Is(err, passes.ErrAlreadyUsed):
			http.Error(w, "Pass already used", http.StatusConflict)
		default:
			h.Logger.Error("SCAN", "confirm failed: "+err.Error())
			http.Error(w, "Failed to confirm check-in", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(utils.SuccessResponse("check-in confirmed", pass))
}

// MemberAttendance marks one team member as checked in.
func (h *Handler) MemberAttendance(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var req struct {
		MemberName string `json:"member_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MemberName == "" {
		http.Error(w, "member_name is required", http.StatusBadRequest)
		return
	}

	team, err := h.Attendance.MarkMember(r.Context(), teamID, req.MemberName, auth.UserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Team not found", http.StatusNotFound)
		case errors.Is(err, checkin.ErrMemberNotFound):
			http.Error(w, "Member not found", http.StatusNotFound)
		default:
			h.Logger.Error("SCAN", "attendance update failed: "+err.Error())
			http.Error(w, "Failed to update attendance", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(utils.SuccessResponse("attendance updated", team))
}
