package models

import "time"

// Payment statuses. Only success payments make a pass visible to the
// reporting views.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Payment methods.
const (
	PaymentMethodOnline = "online"
	PaymentMethodCash   = "cash"
	PaymentMethodUPI    = "upi"
)

type Payment struct {
	PaymentID       string    `bson:"_id" json:"payment_id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	Amount          float64   `bson:"amount" json:"amount"`
	Status          string    `bson:"status" json:"status"`
	Category        string    `bson:"category" json:"category"`
	Method          string    `bson:"method,omitempty" json:"method,omitempty"`
	PaymentIntentID string    `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	AdminNote       string    `bson:"admin_note,omitempty" json:"admin_note,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}
