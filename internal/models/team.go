package models

import "time"

type Team struct {
	TeamID        string       `bson:"_id" json:"team_id"`
	Name          string       `bson:"name" json:"name"`
	LeaderCollege string       `bson:"leader_college,omitempty" json:"leader_college,omitempty"`
	Members       []TeamMember `bson:"members" json:"members"`
	// TotalMembers is kept alongside the live array so counts never
	// recompute over the roster.
	TotalMembers int        `bson:"total_members" json:"total_members"`
	Archived     bool       `bson:"archived" json:"archived"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}

type TeamMember struct {
	Name       string      `bson:"name" json:"name"`
	Phone      string      `bson:"phone,omitempty" json:"phone,omitempty"`
	College    string      `bson:"college,omitempty" json:"college,omitempty"`
	Leader     bool        `bson:"leader" json:"leader"`
	Attendance *Attendance `bson:"attendance,omitempty" json:"attendance,omitempty"`
}

// Attendance is the embedded per-member check-in sub-record.
type Attendance struct {
	CheckedIn   bool       `bson:"checked_in" json:"checked_in"`
	CheckedInAt *time.Time `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CheckedInBy string     `bson:"checked_in_by,omitempty" json:"checked_in_by,omitempty"`
}
