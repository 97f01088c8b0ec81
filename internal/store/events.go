package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

func (s *Store) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := s.collection(ColEvents).FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	return &event, nil
}

func (s *Store) PutEvent(ctx context.Context, event models.Event) error {
	_, err := s.collection(ColEvents).ReplaceOne(ctx, bson.M{"_id": event.EventID}, event,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put event %s: %w", event.EventID, err)
	}
	return nil
}

func (s *Store) ListActiveEvents(ctx context.Context) ([]models.Event, error) {
	cur, err := s.collection(ColEvents).Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("list active events decode: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvents(ctx context.Context, eventIDs []string) (map[string]models.Event, error) {
	out := make(map[string]models.Event, len(eventIDs))
	err := fanOut(ctx, dedupe(eventIDs), func(ctx context.Context, id string) (interface{}, error) {
		return s.GetEvent(ctx, id)
	}, func(id string, v interface{}) {
		out[id] = *(v.(*models.Event))
	})
	return out, err
}
