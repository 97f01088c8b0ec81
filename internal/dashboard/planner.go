package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"festpass/internal/auth"
	"festpass/internal/logger"
	"festpass/internal/models"
)

// Read modes.
const (
	ModeOperations = "operations"
	ModeFinancial  = "financial"
)

// ScanWindowCap bounds the superset fetched from the store. The store
// cannot filter on multiple fields plus sort plus paginate without
// pre-declared indexes, so the planner trades read amplification for
// zero index-management burden and caps the cost here.
const ScanWindowCap = 5000

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
	MaxCSVPageSize  = 1000
)

// ErrForbidden is returned when the caller's role is below the mode's
// requirement; it is checked before any data is touched.
var ErrForbidden = errors.New("insufficient role for this mode")

// Query carries the dashboard parameters.
type Query struct {
	Mode            string
	Page            int
	PageSize        int
	Cursor          string
	PassType        string
	EventID         string
	EventCategory   string
	EventType       string
	Q               string
	From            *time.Time
	To              *time.Time
	IncludeMetrics  bool
	IncludeArchived bool
	CSV             bool
}

// Page is the dashboard response body.
type Page struct {
	Records    []Record     `json:"records"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	NextCursor string       `json:"nextCursor,omitempty"`
	Metrics    *MetricsData `json:"metrics,omitempty"`
	Summary    *Summary     `json:"summary,omitempty"`
}

type Summary struct {
	TotalRevenue float64 `json:"totalRevenue"`
}

type PlannerDBLayer interface {
	ScanPasses(ctx context.Context, limit int64) ([]models.Pass, error)
	GetPayments(ctx context.Context, paymentIDs []string) (map[string]models.Payment, error)
	ListActiveEvents(ctx context.Context) ([]models.Event, error)
}

// Planner orchestrates filter, fetch, in-memory filter, sort,
// paginate, join and aggregate for the admin dashboards.
type Planner struct {
	DB       PlannerDBLayer
	Resolver *Resolver
	Metrics  *Metrics
	Logger   *logger.Logger
}

func NewPlanner(db PlannerDBLayer, resolver *Resolver, metrics *Metrics, log *logger.Logger) *Planner {
	return &Planner{DB: db, Resolver: resolver, Metrics: metrics, Logger: log}
}

// Run executes the pipeline for the caller's role. Financial mode is
// superadmin-only, enforced before any read.
func (p *Planner) Run(ctx context.Context, query Query, role string) (*Page, error) {
	if query.Mode == "" {
		query.Mode = ModeOperations
	}
	if query.Mode == ModeFinancial && !auth.HasAtLeast(role, auth.RoleSuperadmin) {
		return nil, ErrForbidden
	}
	financial := query.Mode == ModeFinancial
	normalize(&query)

	// Bounded scan window; no server-side predicate beyond the limit.
	window, err := p.DB.ScanPasses(ctx, ScanWindowCap)
	if err != nil {
		return nil, fmt.Errorf("fetch scan window: %w", err)
	}

	// Event category/type predicates need the catalog; one bounded
	// targeted read, reused for every pass in the window.
	var catalog map[string]models.Event
	if query.EventCategory != "" || query.EventType != "" {
		eventsList, err := p.DB.ListActiveEvents(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch event catalog: %w", err)
		}
		catalog = make(map[string]models.Event, len(eventsList))
		for _, ev := range eventsList {
			catalog[ev.EventID] = ev
		}
	}

	filtered := filterPasses(window, query, catalog)

	// Newest first, in memory.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	pagePasses, nextCursor := slicePage(filtered, query)

	records, err := p.Resolver.Resolve(ctx, pagePasses, financial)
	if err != nil {
		return nil, fmt.Errorf("hydrate page: %w", err)
	}

	// Free-text search is a convenience, not a security boundary; it
	// runs last, after the monetary filter inside Resolve.
	if query.Q != "" {
		records = filterText(records, query.Q)
	}

	result := &Page{
		Records:    records,
		Page:       query.Page,
		PageSize:   query.PageSize,
		NextCursor: nextCursor,
	}

	if financial {
		revenue, err := p.totalRevenue(ctx, filtered)
		if err != nil {
			return nil, fmt.Errorf("compute revenue: %w", err)
		}
		result.Summary = &Summary{TotalRevenue: revenue}
	}

	if query.IncludeMetrics && p.Metrics != nil {
		metrics, err := p.Metrics.Collect(ctx)
		if err != nil {
			// Metrics are advisory; the page still renders.
			p.Logger.Warn("DASHBOARD", fmt.Sprintf("metrics collection failed: %v", err))
		} else {
			result.Metrics = metrics
		}
	}

	return result, nil
}

func normalize(query *Query) {
	if query.Page < 1 {
		query.Page = 1
	}
	cap := MaxPageSize
	if query.CSV {
		cap = MaxCSVPageSize
	}
	if query.PageSize < 1 {
		query.PageSize = DefaultPageSize
	}
	if query.PageSize > cap {
		query.PageSize = cap
	}
}

func filterPasses(window []models.Pass, query Query, catalog map[string]models.Event) []models.Pass {
	out := make([]models.Pass, 0, len(window))
	for _, pass := range window {
		if pass.Archived && !query.IncludeArchived {
			continue
		}
		if query.PassType != "" && pass.PassType != query.PassType {
			continue
		}
		if query.EventID != "" && !contains(pass.EventIDs, query.EventID) {
			continue
		}
		if catalog != nil && !matchesEventFilter(pass, query, catalog) {
			continue
		}
		if query.From != nil && pass.CreatedAt.Before(*query.From) {
			continue
		}
		if query.To != nil && pass.CreatedAt.After(*query.To) {
			continue
		}
		out = append(out, pass)
	}
	return out
}

func matchesEventFilter(pass models.Pass, query Query, catalog map[string]models.Event) bool {
	for _, id := range pass.EventIDs {
		ev, ok := catalog[id]
		if !ok {
			continue
		}
		if query.EventCategory != "" && ev.Category != query.EventCategory {
			continue
		}
		if query.EventType != "" && ev.Type != query.EventType {
			continue
		}
		return true
	}
	return false
}

// slicePage slices the sorted, filtered set. A cursor (the last id of
// the previous page) takes precedence over the page number.
func slicePage(filtered []models.Pass, query Query) ([]models.Pass, string) {
	start := (query.Page - 1) * query.PageSize
	if query.Cursor != "" {
		start = 0
		for i, pass := range filtered {
			if pass.PassID == query.Cursor {
				start = i + 1
				break
			}
		}
	}
	if start >= len(filtered) {
		return nil, ""
	}

	end := start + query.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[start:end]
	nextCursor := ""
	if end < len(filtered) && len(page) > 0 {
		nextCursor = page[len(page)-1].PassID
	}
	return page, nextCursor
}

func filterText(records []Record, q string) []Record {
	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Email), needle) {
			out = append(out, r)
		}
	}
	return out
}

// totalRevenue re-scans the whole filter-matching superset, not just
// the current page: the page is a slice but revenue must reflect the
// full filtered set. Under concurrent writes it can observe a
// different snapshot than the page; the total is advisory.
func (p *Planner) totalRevenue(ctx context.Context, filtered []models.Pass) (float64, error) {
	paymentIDs := make([]string, 0, len(filtered))
	for _, pass := range filtered {
		paymentIDs = append(paymentIDs, pass.PaymentID)
	}

	payments, err := p.DB.GetPayments(ctx, paymentIDs)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, pass := range filtered {
		if payment, ok := payments[pass.PaymentID]; ok && payment.Status == models.PaymentStatusSuccess {
			total += payment.Amount
		}
	}
	return total, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
