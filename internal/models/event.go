package models

import "time"

type Event struct {
	EventID          string    `bson:"_id" json:"event_id"`
	Name             string    `bson:"name" json:"name"`
	Category         string    `bson:"category" json:"category"`
	Type             string    `bson:"type,omitempty" json:"type,omitempty"`
	Dates            []string  `bson:"dates,omitempty" json:"dates,omitempty"`
	AllowedPassTypes []string  `bson:"allowed_pass_types,omitempty" json:"allowed_pass_types,omitempty"`
	Active           bool      `bson:"active" json:"active"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
