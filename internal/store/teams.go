package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"festpass/internal/models"
)

func (s *Store) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	var team models.Team
	err := s.collection(ColTeams).FindOne(ctx, bson.M{"_id": teamID}).Decode(&team)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team %s: %w", teamID, err)
	}
	return &team, nil
}

func (s *Store) PutTeam(ctx context.Context, team models.Team) error {
	team.TotalMembers = len(team.Members)
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(ColTeams).ReplaceOne(ctx, bson.M{"_id": team.TeamID}, team, opts)
	if err != nil {
		return fmt.Errorf("put team %s: %w", team.TeamID, err)
	}
	return nil
}

func (s *Store) GetTeams(ctx context.Context, teamIDs []string) (map[string]models.Team, error) {
	out := make(map[string]models.Team, len(teamIDs))
	err := fanOut(ctx, dedupe(teamIDs), func(ctx context.Context, id string) (interface{}, error) {
		return s.GetTeam(ctx, id)
	}, func(id string, v interface{}) {
		out[id] = *(v.(*models.Team))
	})
	return out, err
}
