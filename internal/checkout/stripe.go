package checkout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements Gateway against Stripe payment intents.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client with the secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, passID string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(string(stripe.CurrencyINR)),
	}
	params.AddMetadata("pass_id", passID)
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

// NoopGateway stands in when Stripe is disabled (pure on-spot
// deployments); online checkout gets an empty client secret.
type NoopGateway struct{}

func (NoopGateway) CreateIntent(ctx context.Context, amount float64, passID string) (string, string, error) {
	return "", "", nil
}
