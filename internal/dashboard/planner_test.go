package dashboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"festpass/internal/auth"
	"festpass/internal/dashboard"
	"festpass/internal/logger"
	"festpass/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore builds n passes, each with a success payment of amount,
// created one minute apart so the newest-first sort is deterministic.
func seedStore(n int, amount float64) *fakeStore {
	store := &fakeStore{
		payments: map[string]models.Payment{},
		users:    map[string]models.User{},
		teams:    map[string]models.Team{},
		events:   map[string]models.Event{},
	}
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		passID := fmt.Sprintf("p%03d", i)
		payID := fmt.Sprintf("pay%03d", i)
		store.passes = append(store.passes, models.Pass{
			PassID:    passID,
			UserID:    "user_1",
			PaymentID: payID,
			PassType:  models.PassTypeDay,
			Status:    models.PassStatusPaid,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		store.payments[payID] = successPayment(payID, amount)
	}
	store.users["user_1"] = models.User{UserID: "user_1", Name: "Asha", Email: "asha@example.com"}
	return store
}

func newPlanner(store *fakeStore) *dashboard.Planner {
	log := logger.NewTestLogger()
	return dashboard.NewPlanner(store, dashboard.NewResolver(store, log), nil, log)
}

func TestRunFinancialForbiddenBelowSuperadmin(t *testing.T) {
	planner := newPlanner(seedStore(3, 100))

	for _, role := range []string{auth.RoleViewer, auth.RoleManager} {
		_, err := planner.Run(context.Background(), dashboard.Query{Mode: dashboard.ModeFinancial}, role)
		assert.ErrorIs(t, err, dashboard.ErrForbidden, "role %s", role)
	}

	_, err := planner.Run(context.Background(), dashboard.Query{Mode: dashboard.ModeFinancial}, auth.RoleSuperadmin)
	assert.NoError(t, err)
}

func TestRunSortsNewestFirst(t *testing.T) {
	planner := newPlanner(seedStore(5, 100))

	page, err := planner.Run(context.Background(), dashboard.Query{}, auth.RoleViewer)
	require.NoError(t, err)
	require.Len(t, page.Records, 5)
	for i := 1; i < len(page.Records); i++ {
		assert.False(t, page.Records[i-1].CreatedAt.Before(page.Records[i].CreatedAt))
	}
	assert.Equal(t, "p004", page.Records[0].PassID)
}

// Walking page numbers must cover the set exactly once, no duplicates
// and no gaps.
func TestRunPageNumberPagination(t *testing.T) {
	planner := newPlanner(seedStore(23, 100))

	seen := map[string]bool{}
	for pageNum := 1; ; pageNum++ {
		page, err := planner.Run(context.Background(),
			dashboard.Query{Page: pageNum, PageSize: 10}, auth.RoleViewer)
		require.NoError(t, err)
		if len(page.Records) == 0 {
			break
		}
		for _, r := range page.Records {
			assert.False(t, seen[r.PassID], "duplicate %s", r.PassID)
			seen[r.PassID] = true
		}
	}
	assert.Len(t, seen, 23)
}

// Walking cursors must do the same, and the cursor must override any
// page number also present.
func TestRunCursorPagination(t *testing.T) {
	planner := newPlanner(seedStore(23, 100))

	seen := map[string]bool{}
	cursor := ""
	for {
		query := dashboard.Query{Cursor: cursor, PageSize: 10}
		if cursor != "" {
			// A stale page number must lose to the cursor.
			query.Page = 999
		}
		page, err := planner.Run(context.Background(), query, auth.RoleViewer)
		require.NoError(t, err)
		for _, r := range page.Records {
			assert.False(t, seen[r.PassID], "duplicate %s", r.PassID)
			seen[r.PassID] = true
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 23)
}

// Revenue sums the whole filtered set, not the returned page.
func TestRunRevenueIndependentOfPage(t *testing.T) {
	planner := newPlanner(seedStore(30, 250))

	page, err := planner.Run(context.Background(),
		dashboard.Query{Mode: dashboard.ModeFinancial, PageSize: 5}, auth.RoleSuperadmin)
	require.NoError(t, err)
	require.Len(t, page.Records, 5)
	require.NotNil(t, page.Summary)
	assert.Equal(t, 30*250.0, page.Summary.TotalRevenue)
}

func TestRunRevenueSkipsNonSuccessPayments(t *testing.T) {
	store := seedStore(4, 100)
	failed := store.payments["pay001"]
	failed.Status = models.PaymentStatusFailed
	store.payments["pay001"] = failed

	page, err := newPlanner(store).Run(context.Background(),
		dashboard.Query{Mode: dashboard.ModeFinancial}, auth.RoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, 300.0, page.Summary.TotalRevenue)
	assert.Len(t, page.Records, 3)
}

func TestRunFiltersPassType(t *testing.T) {
	store := seedStore(4, 100)
	store.passes[0].PassType = models.PassTypeConcert
	store.passes[1].PassType = models.PassTypeConcert

	page, err := newPlanner(store).Run(context.Background(),
		dashboard.Query{PassType: models.PassTypeConcert}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	for _, r := range page.Records {
		assert.Equal(t, models.PassTypeConcert, r.PassType)
	}
}

func TestRunExcludesArchivedByDefault(t *testing.T) {
	store := seedStore(3, 100)
	store.passes[1].Archived = true
	planner := newPlanner(store)

	page, err := planner.Run(context.Background(), dashboard.Query{}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)

	page, err = planner.Run(context.Background(), dashboard.Query{IncludeArchived: true}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Len(t, page.Records, 3)
}

func TestRunDateRangeFilter(t *testing.T) {
	store := seedStore(10, 100)
	from := store.passes[3].CreatedAt
	to := store.passes[7].CreatedAt

	page, err := newPlanner(store).Run(context.Background(),
		dashboard.Query{From: &from, To: &to}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Len(t, page.Records, 5)
}

func TestRunEventCategoryFilter(t *testing.T) {
	store := seedStore(3, 100)
	store.events["ev_tech"] = models.Event{EventID: "ev_tech", Name: "RoboWars", Category: "technical", Active: true}
	store.events["ev_cult"] = models.Event{EventID: "ev_cult", Name: "Dance Off", Category: "cultural", Active: true}
	store.passes[0].EventIDs = []string{"ev_tech"}
	store.passes[1].EventIDs = []string{"ev_cult"}

	page, err := newPlanner(store).Run(context.Background(),
		dashboard.Query{EventCategory: "technical"}, auth.RoleViewer)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "p000", page.Records[0].PassID)
}

func TestRunFreeTextFilter(t *testing.T) {
	store := seedStore(3, 100)
	store.users["user_2"] = models.User{UserID: "user_2", Name: "Bharat", Email: "bharat@example.com"}
	store.passes[1].UserID = "user_2"

	page, err := newPlanner(store).Run(context.Background(),
		dashboard.Query{Q: "bharat"}, auth.RoleViewer)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "p001", page.Records[0].PassID)
}

func TestRunClampsPageSize(t *testing.T) {
	planner := newPlanner(seedStore(3, 100))

	page, err := planner.Run(context.Background(),
		dashboard.Query{PageSize: 10000}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, dashboard.MaxPageSize, page.PageSize)

	page, err = planner.Run(context.Background(), dashboard.Query{}, auth.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, dashboard.DefaultPageSize, page.PageSize)
}
