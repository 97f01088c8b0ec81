package checkout_test

import (
	"context"
	"strings"
	"testing"

	"festpass/internal/checkout"
	"festpass/internal/logger"
	"festpass/internal/models"
	"festpass/internal/qr"
	"festpass/internal/store"
	"festpass/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	passes   map[string]models.Pass
	payments map[string]models.Payment
	users    map[string]models.User
	teams    map[string]models.Team
}

func newMemStore() *memStore {
	return &memStore{
		passes:   map[string]models.Pass{},
		payments: map[string]models.Payment{},
		users:    map[string]models.User{},
		teams:    map[string]models.Team{},
	}
}

func (m *memStore) PutPass(ctx context.Context, pass models.Pass) error {
	m.passes[pass.PassID] = pass
	return nil
}

func (m *memStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) PutPayment(ctx context.Context, payment models.Payment) error {
	m.payments[payment.PaymentID] = payment
	return nil
}

func (m *memStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) PutUser(ctx context.Context, user models.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *memStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	t, ok := m.teams[teamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

// recordingGateway fakes the payment gateway and remembers the last
// intent it created.
type recordingGateway struct {
	lastAmount float64
	lastPassID string
}

func (g *recordingGateway) CreateIntent(ctx context.Context, amount float64, passID string) (string, string, error) {
	g.lastAmount = amount
	g.lastPassID = passID
	return "pi_test_123", "secret_test_123", nil
}

func newService(db *memStore, gateway checkout.Gateway) *checkout.Service {
	return checkout.NewService(db, db, db, db,
		token.NewCodec("checkout-secret", 0), qr.NewGenerator(), gateway, nil, logger.NewTestLogger())
}

func TestCheckoutOnline(t *testing.T) {
	db := newMemStore()
	gateway := &recordingGateway{}
	svc := newService(db, gateway)

	result, err := svc.Checkout(context.Background(), checkout.CheckoutRequest{
		UserID:   "user_1",
		PassType: models.PassTypeConcert,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PassStatusPaid, result.Pass.Status)
	assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	assert.Equal(t, models.PaymentMethodOnline, result.Payment.Method)
	assert.Equal(t, checkout.DefaultPrices[models.PassTypeConcert], result.Payment.Amount)
	assert.Equal(t, "secret_test_123", result.ClientSecret)
	assert.Equal(t, "pi_test_123", result.Payment.PaymentIntentID)
	assert.NotEmpty(t, result.QRPNG)

	// Pass and payment both persisted, linked by payment id.
	stored, ok := db.passes[result.Pass.PassID]
	require.True(t, ok)
	assert.Equal(t, result.Payment.PaymentID, stored.PaymentID)
	assert.Contains(t, db.payments, result.Payment.PaymentID)

	// Intent was created for the pending pass.
	assert.Equal(t, result.Pass.PassID, gateway.lastPassID)
	assert.Equal(t, 500.0, gateway.lastAmount)
}

func TestCheckoutTokenVerifies(t *testing.T) {
	db := newMemStore()
	svc := newService(db, &recordingGateway{})

	result, err := svc.Checkout(context.Background(), checkout.CheckoutRequest{
		UserID: "user_1", PassType: models.PassTypeDay, SelectedDay: "Day 1",
	})
	require.NoError(t, err)

	codec := token.NewCodec("checkout-secret", 0)
	passID, ok := codec.Verify(result.Pass.Token)
	assert.True(t, ok)
	assert.Equal(t, result.Pass.PassID, passID)
}

func TestCheckoutUnknownPassType(t *testing.T) {
	svc := newService(newMemStore(), &recordingGateway{})

	_, err := svc.Checkout(context.Background(), checkout.CheckoutRequest{
		UserID: "user_1", PassType: "vip_lounge",
	})
	assert.ErrorIs(t, err, checkout.ErrUnknownPassType)
}

func TestCheckoutTeamSnapshot(t *testing.T) {
	db := newMemStore()
	db.teams["t1"] = models.Team{
		TeamID: "t1",
		Name:   "Byte Bandits",
		Members: []models.TeamMember{
			{Name: "Ravi", College: "BITS Pilani", Leader: true},
			{Name: "Meena"},
		},
	}
	svc := newService(db, &recordingGateway{})

	result, err := svc.Checkout(context.Background(), checkout.CheckoutRequest{
		UserID: "user_1", PassType: models.PassTypeTeam, TeamID: "t1",
	})
	require.NoError(t, err)

	snapshot := result.Pass.TeamSnapshot
	require.NotNil(t, snapshot)
	assert.Equal(t, "Byte Bandits", snapshot.TeamName)
	assert.Len(t, snapshot.Members, 2)
	assert.Equal(t, "BITS Pilani", snapshot.LeaderCollege)
}

func TestCheckoutMissingTeamStillIssues(t *testing.T) {
	db := newMemStore()
	svc := newService(db, &recordingGateway{})

	result, err := svc.Checkout(context.Background(), checkout.CheckoutRequest{
		UserID: "user_1", PassType: models.PassTypeTeam, TeamID: "t_missing",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Pass.TeamSnapshot)
}

func TestOnSpotRegisterCreatesUserLazily(t *testing.T) {
	db := newMemStore()
	svc := newService(db, &recordingGateway{})

	result, err := svc.OnSpotRegister(context.Background(), checkout.OnSpotRequest{
		Name:     "Walk In",
		Email:    "  Walk.In@Example.COM ",
		PassType: models.PassTypeDay,
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusSuccess, result.Payment.Status)
	assert.Equal(t, models.PaymentMethodCash, result.Payment.Method)

	require.Len(t, db.users, 1)
	for _, u := range db.users {
		assert.Equal(t, "walk.in@example.com", u.Email)
		assert.Equal(t, u.UserID, result.Pass.UserID)
	}
}

func TestOnSpotRegisterReusesExistingUser(t *testing.T) {
	db := newMemStore()
	db.users["u_existing"] = models.User{UserID: "u_existing", Name: "Asha", Email: "asha@example.com"}
	svc := newService(db, &recordingGateway{})

	result, err := svc.OnSpotRegister(context.Background(), checkout.OnSpotRequest{
		Name:     "Asha Again",
		Email:    "asha@example.com",
		PassType: models.PassTypeDay,
		Method:   models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, "u_existing", result.Pass.UserID)
	assert.Equal(t, models.PaymentMethodUPI, result.Payment.Method)
	assert.Len(t, db.users, 1)
}

func TestOnSpotRegisterRequiresEmail(t *testing.T) {
	svc := newService(newMemStore(), &recordingGateway{})

	_, err := svc.OnSpotRegister(context.Background(), checkout.OnSpotRequest{
		Name:     "No Email",
		PassType: models.PassTypeDay,
	})
	assert.ErrorIs(t, err, checkout.ErrMissingEmail)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	db := newMemStore()
	db.payments["pay_1"] = models.Payment{PaymentID: "pay_1", Status: models.PaymentStatusPending, Amount: 300}
	svc := newService(db, &recordingGateway{})

	payment, err := svc.ConfirmPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)

	again, err := svc.ConfirmPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, again.Status)
}
