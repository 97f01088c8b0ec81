package models

import "time"

type User struct {
	UserID    string    `bson:"_id" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	College   string    `bson:"college,omitempty" json:"college,omitempty"`
	Organizer bool      `bson:"organizer" json:"organizer"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
