package model

import (
	"fmt"
	"strings"
	"time"

	"insurai/shared/constant"
)

const (
	titleBooked   = "Appointment Booked Successfully"
	titleReminder = "Appointment Reminder"
	titleStatus   = "Appointment %s"
)

const (
	AttributePreviousStatus = "previous_status"
	AttributeStatus         = "status"
)

// Details carries what every appointment message shows. At must already be in the
// zone the recipient reads times in.
type Details struct {
	AppointmentID string
	CustomerID    string
	CustomerName  string
	AgentName     string
	AgentEmail    string
	At            time.Time
	Reason        string
}

func (d Details) appointmentID() *string {
	if d.AppointmentID == constant.Empty {
		return nil
	}

	id := d.AppointmentID

	return &id
}

func (d Details) summary() string {
	return fmt.Sprintf("Date & Time: %s\nReason: %s\nAgent: %s (%s)",
		d.At.Format(constant.MessageDateFormat), d.Reason, d.AgentName, d.AgentEmail)
}

// BookedEvent tells the customer their appointment request was recorded.
func BookedEvent(d Details) Event {
	body := fmt.Sprintf("%s!\n\nDear %s,\n\nYour appointment has been booked with Agent %s.\n\n%s\n\n"+
		"Please be available at the scheduled time.\n\nThank you for choosing InsurAI!",
		titleBooked, d.CustomerName, d.AgentName, d.summary())

	return Event{
		RecipientID:   d.CustomerID,
		Title:         titleBooked,
		Body:          body,
		Kind:          KindBooking,
		AppointmentID: d.appointmentID(),
	}
}

// ReminderEvent is sent once per approved appointment shortly before it starts.
func ReminderEvent(d Details) Event {
	body := fmt.Sprintf("%s\n\nDear %s,\n\nThis is a reminder for your upcoming appointment:\n\n%s\n\n"+
		"Please ensure you are available at the scheduled time.\n\nThank you!",
		titleReminder, d.CustomerName, d.summary())

	return Event{
		RecipientID:   d.CustomerID,
		Title:         titleReminder,
		Body:          body,
		Kind:          KindReminder,
		AppointmentID: d.appointmentID(),
	}
}

// statusWord is the customer facing wording of a stored status.
func statusWord(status string) string {
	switch status {
	case constant.StatusApproved:
		return "confirmed"
	case constant.StatusRejected:
		return "cancelled"
	default:
		return strings.ToLower(status)
	}
}

// StatusEvent reports a status change made by actor, for example "the agent".
func StatusEvent(d Details, previous, current, actor string) Event {
	word := statusWord(current)
	title := fmt.Sprintf(titleStatus, strings.ToUpper(word))

	closing := "You may book another appointment if needed."
	if current == constant.StatusApproved {
		closing = "Please be available at the scheduled time."
	}

	body := fmt.Sprintf("%s\n\nDear %s,\n\nYour appointment has been %s by %s. Its status changed from %s to %s.\n\n%s\n\n%s\n\nThank you!",
		title, d.CustomerName, word, actor, statusWord(previous), word, d.summary(), closing)

	return Event{
		RecipientID:   d.CustomerID,
		Title:         title,
		Body:          body,
		Kind:          KindStatusUpdate,
		AppointmentID: d.appointmentID(),
		Attributes: map[string]string{
			AttributePreviousStatus: previous,
			AttributeStatus:         current,
		},
	}
}
