package bulk_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"festpass/internal/auth"
	"festpass/internal/bulk"
	"festpass/internal/logger"
	"festpass/internal/passes"
)

type Handler struct {
	Processor *bulk.Processor
	Logger    *logger.Logger
}

func NewHandler(processor *bulk.Processor, log *logger.Logger) *Handler {
	return &Handler{Processor: processor, Logger: log}
}

// Apply runs one bulk state transition. Partial success is reported
// via the returned count, not an error.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req bulk.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	actor := passes.Actor{UserID: auth.UserID(r.Context()), SourceIP: r.RemoteAddr}
	result, err := h.Processor.Apply(r.Context(), req, actor)
	if err != nil {
		switch {
		case errors.Is(err, bulk.ErrUnknownAction),
			errors.Is(err, bulk.ErrNoTargets),
			errors.Is(err, bulk.ErrTooManyTargets),
			errors.Is(err, bulk.ErrWrongCollection):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Logger.Error("BULK_API", err.Error())
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
