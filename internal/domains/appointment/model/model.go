package model

import (
	"strings"
	"time"

	"insurai/shared/constant"
	"insurai/shared/failure"
	"insurai/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID                  = "id"
	FieldCustomerID          = "customer_id"
	FieldAgentID             = "agent_id"
	FieldAvailabilityID      = "availability_id"
	FieldAppointmentDateTime = "appointment_date_time"
	FieldStatus              = "status"
	FieldUpdatedAt           = "updated_at"
)

// statusTokens maps every accepted request token onto the stored status vocabulary.
var statusTokens = map[string]string{
	"PENDING":   constant.StatusPending,
	"APPROVED":  constant.StatusApproved,
	"CONFIRMED": constant.StatusApproved,
	"REJECTED":  constant.StatusRejected,
	"CANCELLED": constant.StatusRejected,
}

// ParseStatus maps a request token onto a status. Tokens are trimmed and case-insensitive.
func ParseStatus(token string) (string, error) {
	status, ok := statusTokens[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return constant.Empty, failure.InvalidStatus("invalid status: " + token)
	}

	return status, nil
}

// CanTransition reports whether the agent path may move an appointment from one status to another.
// Only a pending appointment can be decided, and only once.
func CanTransition(from, to string) bool {
	return from == constant.StatusPending && (to == constant.StatusApproved || to == constant.StatusRejected)
}

type Appointment struct {
	ID                  string    `db:"id"`
	CustomerID          string    `db:"customer_id"`
	AgentID             string    `db:"agent_id"`
	AvailabilityID      *string   `db:"availability_id"`
	AppointmentDateTime time.Time `db:"appointment_date_time"`
	Reason              string    `db:"reason"`
	Notes               string    `db:"notes"`
	Status              string    `db:"status"`
	model.Metadata
}

// LockKey identifies the (agent, instant) pair that at most one appointment may hold.
func (a Appointment) LockKey() string {
	return a.AgentID + "@" + a.AppointmentDateTime.UTC().Format(time.RFC3339)
}
