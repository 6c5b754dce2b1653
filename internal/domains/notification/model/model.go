package model

import (
	"time"
)

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID            = "id"
	FieldUserID        = "user_id"
	FieldIsRead        = "is_read"
	FieldAppointmentID = "appointment_id"
	FieldCreatedAt     = "created_at"
)

const (
	KindBooking      = "BOOKING"
	KindStatusUpdate = "STATUS_UPDATE"
	KindReminder     = "REMINDER"
)

// Notification is one message addressed to a single user.
type Notification struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Title         string    `db:"title"`
	Message       string    `db:"message"`
	Type          string    `db:"type"`
	IsRead        bool      `db:"is_read"`
	AppointmentID *string   `db:"appointment_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// Event is what producers hand to the sink. Attributes travel with the published
// event only and are not stored.
type Event struct {
	RecipientID   string
	Title         string
	Body          string
	Kind          string
	AppointmentID *string
	Attributes    map[string]string
}
