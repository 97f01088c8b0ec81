package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"festpass/internal/logger"
	"festpass/internal/models"
	"festpass/internal/qr"
	"festpass/internal/token"
	"festpass/internal/utils"
)

var (
	ErrUnknownPassType = errors.New("unknown pass type")
	ErrMissingEmail    = errors.New("email is required")
)

// PriceTable maps pass type to amount. Injected at construction so
// pricing is explicit configuration, not module state.
type PriceTable map[string]float64

// DefaultPrices is the festival's standard table.
var DefaultPrices = PriceTable{
	models.PassTypeDay:      300,
	models.PassTypeConcert:  500,
	models.PassTypeAllEvent: 900,
	models.PassTypeTeam:     1200,
}

type PassDBLayer interface {
	PutPass(ctx context.Context, pass models.Pass) error
}

type PaymentDBLayer interface {
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	PutPayment(ctx context.Context, payment models.Payment) error
}

type UserDBLayer interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	PutUser(ctx context.Context, user models.User) error
}

type TeamDBLayer interface {
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
}

// Gateway is the payment-gateway glue; only its interface matters
// here.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, passID string) (intentID string, clientSecret string, err error)
}

// Service creates a Pass atomically with its Payment at checkout or
// approval time. There is no multi-document transaction: payment is
// written first, then the pass, each write atomic on its own document.
type Service struct {
	Passes   PassDBLayer
	Payments PaymentDBLayer
	Users    UserDBLayer
	Teams    TeamDBLayer
	Codec    *token.Codec
	QR       *qr.Generator
	Gateway  Gateway
	Prices   PriceTable
	Logger   *logger.Logger
}

func NewService(passDB PassDBLayer, paymentDB PaymentDBLayer, userDB UserDBLayer, teamDB TeamDBLayer,
	codec *token.Codec, qrGen *qr.Generator, gateway Gateway, prices PriceTable, log *logger.Logger) *Service {
	if prices == nil {
		prices = DefaultPrices
	}
	return &Service{
		Passes:   passDB,
		Payments: paymentDB,
		Users:    userDB,
		Teams:    teamDB,
		Codec:    codec,
		QR:       qrGen,
		Gateway:  gateway,
		Prices:   prices,
		Logger:   log,
	}
}

// CheckoutRequest is the online checkout body.
type CheckoutRequest struct {
	UserID      string   `json:"user_id"`
	PassType    string   `json:"pass_type"`
	TeamID      string   `json:"team_id,omitempty"`
	EventIDs    []string `json:"event_ids,omitempty"`
	SelectedDay string   `json:"selected_day,omitempty"`
}

// CheckoutResult returns the issued pass plus what the client needs
// to complete payment and render the QR.
type CheckoutResult struct {
	Pass         models.Pass    `json:"pass"`
	Payment      models.Payment `json:"payment"`
	ClientSecret string         `json:"client_secret,omitempty"`
	QRPNG        []byte         `json:"-"`
}

// Checkout issues a pass with a pending online payment. The pass only
// surfaces in reporting once the payment succeeds.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	amount, ok := s.Prices[req.PassType]
	if !ok {
		return nil, ErrUnknownPassType
	}

	passID := utils.GeneratePassID()
	intentID, clientSecret, err := s.Gateway.CreateIntent(ctx, amount, passID)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	payment := models.Payment{
		PaymentID:       utils.GeneratePaymentID(),
		UserID:          req.UserID,
		Amount:          amount,
		Status:          models.PaymentStatusPending,
		Category:        req.PassType,
		Method:          models.PaymentMethodOnline,
		PaymentIntentID: intentID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	result, err := s.issue(ctx, passID, payment, req)
	if err != nil {
		return nil, err
	}
	result.ClientSecret = clientSecret
	return result, nil
}

// OnSpotRequest is the cash/UPI on-spot registration body.
type OnSpotRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	College     string   `json:"college,omitempty"`
	PassType    string   `json:"pass_type"`
	Method      string   `json:"method"`
	TeamID      string   `json:"team_id,omitempty"`
	EventIDs    []string `json:"event_ids,omitempty"`
	SelectedDay string   `json:"selected_day,omitempty"`
}

// OnSpotRegister records a cash/UPI registration at the desk. The
// user is created lazily when no existing user matches the email, and
// the payment is recorded success directly.
func (s *Service) OnSpotRegister(ctx context.Context, req OnSpotRequest) (*CheckoutResult, error) {
	amount, ok := s.Prices[req.PassType]
	if !ok {
		return nil, ErrUnknownPassType
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, ErrMissingEmail
	}

	user, err := s.Users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		user = &models.User{
			UserID:    utils.GenerateUserID(),
			Name:      req.Name,
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:     req.Phone,
			College:   req.College,
			CreatedAt: time.Now(),
		}
		if err := s.Users.PutUser(ctx, *user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.Logger.Info("CHECKOUT", fmt.Sprintf("created user %s for on-spot registration", user.UserID))
	}

	method := req.Method
	if method != models.PaymentMethodUPI {
		method = models.PaymentMethodCash
	}

	payment := models.Payment{
		PaymentID: utils.GeneratePaymentID(),
		UserID:    user.UserID,
		Amount:    amount,
		Status:    models.PaymentStatusSuccess,
		Category:  req.PassType,
		Method:    method,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return s.issue(ctx, utils.GeneratePassID(), payment, CheckoutRequest{
		UserID:      user.UserID,
		PassType:    req.PassType,
		TeamID:      req.TeamID,
		EventIDs:    req.EventIDs,
		SelectedDay: req.SelectedDay,
	})
}

// ConfirmPayment flips a pending online payment to success once the
// gateway reports completion.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusSuccess {
		return payment, nil
	}

	payment.Status = models.PaymentStatusSuccess
	payment.UpdatedAt = time.Now()
	if err := s.Payments.PutPayment(ctx, *payment); err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	s.Logger.Info("CHECKOUT", fmt.Sprintf("payment %s confirmed", paymentID))
	return payment, nil
}

func (s *Service) issue(ctx context.Context, passID string, payment models.Payment, req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.Payments.PutPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	signed, err := s.Codec.Sign(passID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	pass := models.Pass{
		PassID:      passID,
		UserID:      req.UserID,
		PassType:    req.PassType,
		PaymentID:   payment.PaymentID,
		Status:      models.PassStatusPaid,
		Token:       signed,
		TeamID:      req.TeamID,
		EventIDs:    req.EventIDs,
		SelectedDay: req.SelectedDay,
		CreatedAt:   time.Now(),
	}

	if req.PassType == models.PassTypeTeam && req.TeamID != "" {
		pass.TeamSnapshot = s.snapshotTeam(ctx, req.TeamID)
	}

	if err := s.Passes.PutPass(ctx, pass); err != nil {
		return nil, fmt.Errorf("create pass: %w", err)
	}

	png, err := s.QR.GeneratePayloadPNG(qr.Payload{
		PassID:   pass.PassID,
		UserID:   pass.UserID,
		PassType: pass.PassType,
		Token:    signed,
	})
	if err != nil {
		return nil, fmt.Errorf("render QR: %w", err)
	}

	s.Logger.Info("CHECKOUT", fmt.Sprintf("issued pass %s (%s)", pass.PassID, pass.PassType))
	return &CheckoutResult{Pass: pass, Payment: payment, QRPNG: png}, nil
}

// snapshotTeam captures the roster at issuance so scan verification
// never needs a live team read. A missing team just leaves the
// snapshot empty; the pass is still issued.
func (s *Service) snapshotTeam(ctx context.Context, teamID string) *models.TeamSnapshot {
	team, err := s.Teams.GetTeam(ctx, teamID)
	if err != nil {
		s.Logger.Warn("CHECKOUT", fmt.Sprintf("team %s not found for snapshot: %v", teamID, err))
		return nil
	}

	snapshot := &models.TeamSnapshot{
		TeamName:      team.Name,
		LeaderCollege: team.LeaderCollege,
	}
	for _, m := range team.Members {
		snapshot.Members = append(snapshot.Members, models.SnapshotMember{
			Name:   m.Name,
			Phone:  m.Phone,
			Leader: m.Leader,
		})
		if snapshot.LeaderCollege == "" && m.Leader {
			snapshot.LeaderCollege = m.College
		}
	}
	return snapshot
}
