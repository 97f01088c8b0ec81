package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"festpass/internal/logger"
	"festpass/internal/models"
)

var ErrMemberNotFound = errors.New("team member not found")

type TeamDBLayer interface {
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	PutTeam(ctx context.Context, team models.Team) error
}

// Attendance updates the embedded per-member check-in sub-records on
// a team document during door check-in.
type Attendance struct {
	Teams  TeamDBLayer
	Logger *logger.Logger
}

func NewAttendance(teams TeamDBLayer, log *logger.Logger) *Attendance {
	return &Attendance{Teams: teams, Logger: log}
}

// MarkMember flags one roster member as checked in. The whole team
// document is rewritten; the write is atomic for that one document.
func (a *Attendance) MarkMember(ctx context.Context, teamID, memberName, actor string) (*models.Team, error) {
	team, err := a.Teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	found := false
	now := time.Now()
	for i := range team.Members {
		if team.Members[i].Name != memberName {
			continue
		}
		team.Members[i].Attendance = &models.Attendance{
			CheckedIn:   true,
			CheckedInAt: &now,
			CheckedInBy: actor,
		}
		found = true
		break
	}
	if !found {
		return nil, ErrMemberNotFound
	}

	if err := a.Teams.PutTeam(ctx, *team); err != nil {
		return nil, fmt.Errorf("update team attendance: %w", err)
	}
	a.Logger.Info("CHECKIN", fmt.Sprintf("member %q of team %s checked in by %s", memberName, teamID, actor))
	return team, nil
}
