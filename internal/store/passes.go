package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

// ErrNotFound is the soft not-found result for point lookups.
var ErrNotFound = errors.New("document not found")

func (s *Store) GetPass(ctx context.Context, passID string) (*models.Pass, error) {
	var pass models.Pass
	err := s.collection(ColPasses).FindOne(ctx, bson.M{"_id": passID}).Decode(&pass)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pass %s: %w", passID, err)
	}
	return &pass, nil
}

func (s *Store) PutPass(ctx context.Context, pass models.Pass) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(ColPasses).ReplaceOne(ctx, bson.M{"_id": pass.PassID}, pass, opts)
	if err != nil {
		return fmt.Errorf("put pass %s: %w", pass.PassID, err)
	}
	return nil
}

func (s *Store) DeletePass(ctx context.Context, passID string) error {
	res, err := s.collection(ColPasses).DeleteOne(ctx, bson.M{"_id": passID})
	if err != nil {
		return fmt.Errorf("delete pass %s: %w", passID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ScanPasses fetches a bounded window of pass documents with no
// predicate beyond the limit. All filtering, sorting and pagination
// happens in memory above this call, so the store never needs a
// composite index.
func (s *Store) ScanPasses(ctx context.Context, limit int64) ([]models.Pass, error) {
	opts := options.Find().SetLimit(limit)
	cur, err := s.collection(ColPasses).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("scan passes: %w", err)
	}
	defer cur.Close(ctx)

	var passes []models.Pass
	if err := cur.All(ctx, &passes); err != nil {
		return nil, fmt.Errorf("scan passes decode: %w", err)
	}
	return passes, nil
}

// PassesCreatedSince is a single-field range read used by the
// aggregate metrics.
func (s *Store) PassesCreatedSince(ctx context.Context, since time.Time, limit int64) ([]models.Pass, error) {
	opts := options.Find().SetLimit(limit)
	cur, err := s.collection(ColPasses).Find(ctx, bson.M{"created_at": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, fmt.Errorf("passes created since: %w", err)
	}
	defer cur.Close(ctx)

	var passes []models.Pass
	if err := cur.All(ctx, &passes); err != nil {
		return nil, fmt.Errorf("passes created since decode: %w", err)
	}
	return passes, nil
}

func (s *Store) CountPasses(ctx context.Context) (int64, error) {
	n, err := s.collection(ColPasses).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count passes: %w", err)
	}
	return n, nil
}
