package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.collection(ColPayments).FindOne(ctx, bson.M{"_id": paymentID}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

func (s *Store) PutPayment(ctx context.Context, payment models.Payment) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(ColPayments).ReplaceOne(ctx, bson.M{"_id": payment.PaymentID}, payment, opts)
	if err != nil {
		return fmt.Errorf("put payment %s: %w", payment.PaymentID, err)
	}
	return nil
}

// GetPayments resolves a deduplicated id set with concurrent point
// lookups. Missing ids are simply absent from the result map.
func (s *Store) GetPayments(ctx context.Context, paymentIDs []string) (map[string]models.Payment, error) {
	out := make(map[string]models.Payment, len(paymentIDs))
	err := fanOut(ctx, dedupe(paymentIDs), func(ctx context.Context, id string) (interface{}, error) {
		return s.GetPayment(ctx, id)
	}, func(id string, v interface{}) {
		out[id] = *(v.(*models.Payment))
	})
	return out, err
}

// PaymentsCreatedSince is a single-field range read used by the
// aggregate metrics; status filtering happens in memory.
func (s *Store) PaymentsCreatedSince(ctx context.Context, since time.Time, limit int64) ([]models.Payment, error) {
	opts := options.Find().SetLimit(limit)
	cur, err := s.collection(ColPayments).Find(ctx, bson.M{"created_at": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, fmt.Errorf("payments created since: %w", err)
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("payments created since decode: %w", err)
	}
	return payments, nil
}
