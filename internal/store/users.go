package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.collection(ColUsers).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

func (s *Store) PutUser(ctx context.Context, user models.User) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(ColUsers).ReplaceOne(ctx, bson.M{"_id": user.UserID}, user, opts)
	if err != nil {
		return fmt.Errorf("put user %s: %w", user.UserID, err)
	}
	return nil
}

// FindUserByEmail backs the lazy on-spot registration path.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection(ColUsers).FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUsers(ctx context.Context, userIDs []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(userIDs))
	err := fanOut(ctx, dedupe(userIDs), func(ctx context.Context, id string) (interface{}, error) {
		return s.GetUser(ctx, id)
	}, func(id string, v interface{}) {
		out[id] = *(v.(*models.User))
	})
	return out, err
}
