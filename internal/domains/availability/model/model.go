package model

import (
	"time"

	"insurai/shared/model"
	"insurai/shared/timezone"
)

const (
	TableName  = "agent_availability"
	EntityName = "availability"

	FieldID            = "id"
	FieldAgentID       = "agent_id"
	FieldAvailableDate = "available_date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldIsAvailable   = "is_available"
	FieldUpdatedAt     = "updated_at"
)

// Slot is an open window an agent published on one calendar day.
// StartTime and EndTime only carry a wall clock; the day lives in AvailableDate.
type Slot struct {
	ID            string    `db:"id"`
	AgentID       string    `db:"agent_id"`
	AvailableDate time.Time `db:"available_date"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	IsAvailable   bool      `db:"is_available"`
	model.Metadata
}

// StartsAt places the slot start on its calendar day in loc.
func (s Slot) StartsAt(loc *time.Location) time.Time {
	return timezone.At(s.AvailableDate, s.StartTime, loc)
}

// Expired reports whether the slot start lies strictly before now.
func (s Slot) Expired(now time.Time) bool {
	return s.StartsAt(now.Location()).Before(now)
}

// SlotWithAgent is a slot joined with the identity of the agent who owns it.
type SlotWithAgent struct {
	Slot
	AgentName  string `db:"agent_full_name" table:"users" column:"full_name"`
	AgentEmail string `db:"agent_email"     table:"users" column:"email"`
}

func (SlotWithAgent) GetJoinQuery() string {
	return "JOIN users ON users.id = agent_availability.agent_id"
}
