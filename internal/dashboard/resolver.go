package dashboard

import (
	"context"
	"strings"
	"time"

	"festpass/internal/logger"
	"festpass/internal/models"
)

// ConcertLabel is the constant display name for the fixed-event
// concert pass; it never resolves through the event catalog.
const ConcertLabel = "Concert Night"

// EmptyEventName is the placeholder shown when nothing resolves.
const EmptyEventName = "—"

// Record is a fully hydrated display row. Monetary fields are only
// populated in financial mode.
type Record struct {
	PassID      string     `json:"pass_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	College     string     `json:"college,omitempty"`
	PassType    string     `json:"pass_type"`
	EventName   string     `json:"event_name"`
	Status      string     `json:"status"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	TeamName    string     `json:"team_name,omitempty"`
	MemberCount int        `json:"member_count,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Financial mode only.
	PaymentID     string  `json:"payment_id,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

type ResolverDBLayer interface {
	GetPayments(ctx context.Context, paymentIDs []string) (map[string]models.Payment, error)
	GetUsers(ctx context.Context, userIDs []string) (map[string]models.User, error)
	GetTeams(ctx context.Context, teamIDs []string) (map[string]models.Team, error)
	GetEvents(ctx context.Context, eventIDs []string) (map[string]models.Event, error)
}

// Resolver joins a page of pass documents against payments, users,
// teams and events entirely in application memory. The store cannot
// filter on a foreign document's field, so the one authoritative
// "is this a real registration" predicate (linked payment status is
// success) is applied here, after the join.
type Resolver struct {
	DB     ResolverDBLayer
	Logger *logger.Logger
}

func NewResolver(db ResolverDBLayer, log *logger.Logger) *Resolver {
	return &Resolver{DB: db, Logger: log}
}

// Resolve hydrates a batch of passes. Read cost is bounded by the
// number of distinct references, not the number of passes: ids are
// deduplicated and fetched with concurrent point lookups.
func (r *Resolver) Resolve(ctx context.Context, passes []models.Pass, financial bool) ([]Record, error) {
	var paymentIDs, userIDs, teamIDs, eventIDs []string
	for _, p := range passes {
		paymentIDs = append(paymentIDs, p.PaymentID)
		userIDs = append(userIDs, p.UserID)
		teamIDs = append(teamIDs, p.TeamID)
		eventIDs = append(eventIDs, p.EventIDs...)
	}

	payments, err := r.DB.GetPayments(ctx, paymentIDs)
	if err != nil {
		return nil, err
	}
	users, err := r.DB.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	teams, err := r.DB.GetTeams(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	events, err := r.DB.GetEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(passes))
	for _, pass := range passes {
		payment, ok := payments[pass.PaymentID]
		if !ok || payment.Status != models.PaymentStatusSuccess {
			continue
		}

		record := Record{
			PassID:    pass.PassID,
			PassType:  pass.PassType,
			Status:    pass.Status,
			UsedAt:    pass.UsedAt,
			CreatedAt: pass.CreatedAt,
			EventName: deriveEventName(pass, events),
		}

		var user *models.User
		if u, ok := users[pass.UserID]; ok {
			user = &u
			record.Name = u.Name
			record.Email = u.Email
			record.Phone = u.Phone
		}

		var team *models.Team
		if t, ok := teams[pass.TeamID]; ok {
			team = &t
			record.TeamName = t.Name
			record.MemberCount = t.TotalMembers
		} else if pass.TeamSnapshot != nil {
			record.TeamName = pass.TeamSnapshot.TeamName
			record.MemberCount = len(pass.TeamSnapshot.Members)
		}

		record.College = resolveCollege(user, team, pass.TeamSnapshot)

		if financial {
			record.PaymentID = payment.PaymentID
			record.Amount = payment.Amount
			record.PaymentMethod = payment.Method
		}

		records = append(records, record)
	}
	return records, nil
}

// deriveEventName is the only place event naming is decided. The
// priority rule dispatches on pass category:
//   - team passes prefer resolved selected-event names, then the
//     denormalized team name, then the placeholder
//   - day passes prefer an explicit selected day over resolved names
//   - the concert pass always gets the constant label
//   - everything else joins resolved names
func deriveEventName(pass models.Pass, events map[string]models.Event) string {
	resolved := resolvedEventNames(pass.EventIDs, events)

	switch pass.PassType {
	case models.PassTypeTeam:
		if len(resolved) > 0 {
			return strings.Join(resolved, ", ")
		}
		if pass.TeamSnapshot != nil && pass.TeamSnapshot.TeamName != "" {
			return pass.TeamSnapshot.TeamName
		}
		return EmptyEventName
	case models.PassTypeDay:
		if pass.SelectedDay != "" {
			return pass.SelectedDay
		}
		if len(resolved) > 0 {
			return strings.Join(resolved, ", ")
		}
		return EmptyEventName
	case models.PassTypeConcert:
		return ConcertLabel
	default:
		if len(resolved) > 0 {
			return strings.Join(resolved, ", ")
		}
		return EmptyEventName
	}
}

func resolvedEventNames(eventIDs []string, events map[string]models.Event) []string {
	var names []string
	for _, id := range eventIDs {
		if ev, ok := events[id]; ok && ev.Name != "" {
			names = append(names, ev.Name)
		}
	}
	return names
}

// resolveCollege walks the fallback chain: user profile, then the
// team leader's college on the live team document, then the leader
// college captured in the pass snapshot. A pass may outlive or never
// have had a live user or team link (on-spot cash registrations,
// migrated data).
func resolveCollege(user *models.User, team *models.Team, snapshot *models.TeamSnapshot) string {
	if user != nil && user.College != "" {
		return user.College
	}
	if team != nil {
		if team.LeaderCollege != "" {
			return team.LeaderCollege
		}
		for _, m := range team.Members {
			if m.Leader && m.College != "" {
				return m.College
			}
		}
	}
	if snapshot != nil && snapshot.LeaderCollege != "" {
		return snapshot.LeaderCollege
	}
	return ""
}
