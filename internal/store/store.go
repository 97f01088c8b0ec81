package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/config"
)

// Collection names.
const (
	ColPasses   = "passes"
	ColPayments = "payments"
	ColUsers    = "users"
	ColTeams    = "teams"
	ColEvents   = "events"
	ColAudit    = "audit_log"
)

// Store wraps the document database. The service layers treat it as a
// key-addressable collection store: per-document get/set/count plus
// single-field range queries. The reporting paths never issue
// server-side joins or multi-field composite filters; anything richer
// happens in memory above this layer.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, cfg config.Mongo) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the single-field indexes the range reads rely
// on. Run once at startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		ColPasses: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		ColPayments: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		ColUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		ColAudit: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for col, models := range specs {
		if _, err := s.collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", col, err)
		}
	}
	return nil
}

// IsMissingIndex reports whether err is the store complaining about an
// absent index. That failure mode is a deploy-time config gap, not a
// runtime bug, and callers surface it with remediation text.
func IsMissingIndex(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "indexnotfound") || strings.Contains(msg, "no such index") ||
		strings.Contains(msg, "index not found")
}

// MissingIndexRemediation is the actionable text returned alongside a
// missing-index failure.
const MissingIndexRemediation = "a required database index is missing; run the service once with ENSURE_INDEXES=true or create it manually"
