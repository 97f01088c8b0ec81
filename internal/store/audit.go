package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

// AppendAudit writes one immutable audit entry. There is no update or
// delete path for this collection.
func (s *Store) AppendAudit(ctx context.Context, entry models.AuditLogEntry) error {
	_, err := s.collection(ColAudit).InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// AuditFilter narrows the audit list read surface.
type AuditFilter struct {
	Action    string
	Actor     string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (s *Store) ListAudit(ctx context.Context, filter AuditFilter) ([]models.AuditLogEntry, error) {
	query := bson.M{}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		rng := bson.M{}
		if filter.StartTime != nil {
			rng["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			rng["$lte"] = *filter.EndTime
		}
		query["timestamp"] = rng
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.collection(ColAudit).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer cur.Close(ctx)

	var entries []models.AuditLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("list audit decode: %w", err)
	}
	return entries, nil
}
