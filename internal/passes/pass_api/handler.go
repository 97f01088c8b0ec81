package pass_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"festpass/internal/auth"
	"festpass/internal/logger"
	"festpass/internal/passes"
	"festpass/internal/store"
	"festpass/internal/utils"
)

type Handler struct {
	PassService *passes.PassService
	Logger      *logger.Logger
}

func NewHandler(passService *passes.PassService, log *logger.Logger) *Handler {
	return &Handler{PassService: passService, Logger: log}
}

func (h *Handler) actor(r *http.Request) passes.Actor {
	return passes.Actor{UserID: auth.UserID(r.Context()), SourceIP: r.RemoteAddr}
}

func (h *Handler) ViewPass(w http.ResponseWriter, r *http.Request) {
	passID := chi.URLParam(r, "passID")
	pass, err := h.PassService.GetPass(r.Context(), passID)
	if err != nil {
		http.Error(w, "Pass not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pass)
}

func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.MarkUsed(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	h.respond(w, pass, err, "pass marked used")
}

func (h *Handler) RevertUsed(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.RevertUsed(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	h.respond(w, pass, err, "pass reverted to paid")
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.Archive(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	h.respond(w, pass, err, "pass archived")
}

func (h *Handler) Unarchive(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.Unarchive(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	h.respond(w, pass, err, "pass unarchived")
}

// HardDelete removes the document entirely; superadmin route.
func (h *Handler) HardDelete(w http.ResponseWriter, r *http.Request) {
	err := h.PassService.HardDelete(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Regenerate re-signs the pass token and returns the fresh QR PNG.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	_, png, err := h.PassService.RegenerateToken(r.Context(), chi.URLParam(r, "passID"), h.actor(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) respond(w http.ResponseWriter, pass interface{}, err error, message string) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(utils.SuccessResponse(message, pass))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Pass not found", http.StatusNotFound)
	case errors.Is(err, passes.ErrAlreadyUsed):
		http.Error(w, "Pass already used", http.StatusConflict)
	case errors.Is(err, passes.ErrNotUsed):
		http.Error(w, "Pass is not used", http.StatusConflict)
	default:
		h.Logger.Error("PASS_API", err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
