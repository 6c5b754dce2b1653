package model

import (
	"time"

	"insurai/shared/constant"
)

const (
	TableName  = "appointment_reminders"
	EntityName = "reminder"

	FieldAppointmentID = "appointment_id"

	AppointmentTable     = "appointments"
	FieldID              = "id"
	FieldStatus          = "status"
	FieldAppointmentTime = "appointment_date_time"
)

// Delivery marks an appointment whose reminder has been claimed by a sweep.
type Delivery struct {
	AppointmentID string    `db:"appointment_id"`
	SentAt        time.Time `db:"sent_at"`
}

// Due is an approved appointment with the names a reminder needs.
type Due struct {
	ID                  string    `db:"id"`
	CustomerID          string    `db:"customer_id"`
	AgentID             string    `db:"agent_id"`
	AppointmentDateTime time.Time `db:"appointment_date_time"`
	Reason              string    `db:"reason"`
	CustomerName        string    `db:"customer_name"  table:"customers" column:"full_name"`
	CustomerEmail       string    `db:"customer_email" table:"customers" column:"email"`
	AgentName           string    `db:"agent_name"     table:"agents"    column:"full_name"`
	AgentEmail          string    `db:"agent_email"    table:"agents"    column:"email"`
}

func (Due) GetJoinQuery() string {
	return "JOIN users customers ON customers.id = appointments.customer_id JOIN users agents ON agents.id = appointments.agent_id"
}

func (d Due) DisplayCustomer() string {
	if d.CustomerName != constant.Empty {
		return d.CustomerName
	}

	return d.CustomerEmail
}

func (d Due) DisplayAgent() string {
	if d.AgentName != constant.Empty {
		return d.AgentName
	}

	return d.AgentEmail
}

// Report counts what one sweep did with the appointments it selected.
type Report struct {
	Selected int `json:"selected"`
	Sent     int `json:"sent"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
