package models

import "time"

// Pass categories. Team passes carry a roster snapshot, day passes a
// selected day, and the concert pass always maps to the flagship show.
const (
	PassTypeTeam     = "team"
	PassTypeDay      = "day_pass"
	PassTypeConcert  = "concert"
	PassTypeAllEvent = "all_event"
)

// Pass statuses.
const (
	PassStatusPaid = "paid"
	PassStatusUsed = "used"
)

type Pass struct {
	PassID       string   `bson:"_id" json:"pass_id"`
	UserID       string   `bson:"user_id" json:"user_id"`
	PassType     string   `bson:"pass_type" json:"pass_type"`
	PaymentID    string   `bson:"payment_id" json:"payment_id"`
	Status       string   `bson:"status" json:"status"`
	Token        string   `bson:"token" json:"token"`
	TeamID       string   `bson:"team_id,omitempty" json:"team_id,omitempty"`
	EventIDs     []string `bson:"event_ids,omitempty" json:"event_ids,omitempty"`
	SelectedDay  string   `bson:"selected_day,omitempty" json:"selected_day,omitempty"`

	// TeamSnapshot is captured at issuance so scan verification never
	// needs a live team read.
	TeamSnapshot *TeamSnapshot `bson:"team_snapshot,omitempty" json:"team_snapshot,omitempty"`

	UsedAt     *time.Time `bson:"used_at,omitempty" json:"used_at,omitempty"`
	ScannedBy  string     `bson:"scanned_by,omitempty" json:"scanned_by,omitempty"`
	Archived   bool       `bson:"archived" json:"archived"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	ArchivedBy string     `bson:"archived_by,omitempty" json:"archived_by,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}

// TeamSnapshot is the denormalized roster copy embedded in a Pass.
type TeamSnapshot struct {
	TeamName      string           `bson:"team_name" json:"team_name"`
	LeaderCollege string           `bson:"leader_college,omitempty" json:"leader_college,omitempty"`
	Members       []SnapshotMember `bson:"members" json:"members"`
}

type SnapshotMember struct {
	Name   string `bson:"name" json:"name"`
	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
	Leader bool   `bson:"leader" json:"leader"`
}

// IsUsed tolerates partially migrated documents where only one of the
// two fields was written.
func (p *Pass) IsUsed() bool {
	return p.Status == PassStatusUsed || p.UsedAt != nil
}
