package dashboard_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"festpass/internal/auth"
	"festpass/internal/dashboard"
	"festpass/internal/logger"
	"festpass/internal/store"
)

type Handler struct {
	Planner *dashboard.Planner
	Store   *store.Store
	Logger  *logger.Logger
}

func NewHandler(planner *dashboard.Planner, st *store.Store, log *logger.Logger) *Handler {
	return &Handler{Planner: planner, Store: st, Logger: log}
}

// Query serves both dashboard modes, as JSON or CSV.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.Planner.Run(r.Context(), *query, auth.Role(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrForbidden):
			http.Error(w, "Financial mode requires superadmin", http.StatusForbidden)
		case store.IsMissingIndex(err):
			h.Logger.Error("DASHBOARD", "missing index: "+err.Error())
			http.Error(w, store.MissingIndexRemediation, http.StatusInternalServerError)
		default:
			h.Logger.Error("DASHBOARD", err.Error())
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if query.CSV {
		filename := fmt.Sprintf("passes_%s_%s.csv", query.Mode, time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
		if err := dashboard.WriteCSV(w, page.Records, query.Mode == dashboard.ModeFinancial); err != nil {
			h.Logger.Error("DASHBOARD", "csv write failed: "+err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// ListEvents serves the active event catalog used by the dashboard
// filters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListActiveEvents(r.Context())
	if err != nil {
		h.Logger.Error("DASHBOARD", "event list failed: "+err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"events": events})
}

// AuditList serves the audit log read surface (manager tier).
func (h *Handler) AuditList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AuditFilter{
		Action: q.Get("action"),
		Actor:  q.Get("actor"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		filter.StartTime = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		end := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &end
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 1 {
			filter.Offset = int64(page-1) * 50
		}
	}

	entries, err := h.Store.ListAudit(r.Context(), filter)
	if err != nil {
		h.Logger.Error("DASHBOARD", "audit list failed: "+err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries})
}

// parseQuery rejects malformed parameters before any store access.
func parseQuery(r *http.Request) (*dashboard.Query, error) {
	q := r.URL.Query()

	query := &dashboard.Query{
		Mode:            q.Get("mode"),
		Cursor:          q.Get("cursor"),
		PassType:        q.Get("passType"),
		EventID:         q.Get("eventId"),
		EventCategory:   q.Get("eventCategory"),
		EventType:       q.Get("eventType"),
		Q:               q.Get("q"),
		IncludeMetrics:  q.Get("includeMetrics") == "true",
		IncludeArchived: q.Get("includeArchived") == "true",
		CSV:             q.Get("format") == "csv",
	}

	if query.Mode != "" && query.Mode != dashboard.ModeOperations && query.Mode != dashboard.ModeFinancial {
		return nil, fmt.Errorf("unknown mode %q", query.Mode)
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, errors.New("page must be a positive integer")
		}
		query.Page = page
	}
	if v := q.Get("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return nil, errors.New("pageSize must be a positive integer")
		}
		query.PageSize = size
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("from must be YYYY-MM-DD")
		}
		query.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("to must be YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Second)
		query.To = &end
	}

	return query, nil
}
