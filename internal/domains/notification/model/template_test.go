package model_test

import (
	"testing"
	"time"

	"insurai/internal/domains/notification/model"
	"insurai/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var details = model.Details{
	AppointmentID: "a-1",
	CustomerID:    "3",
	CustomerName:  "Customer Three",
	AgentName:     "Agent Seven",
	AgentEmail:    "agent7@insurai.test",
	At:            time.Date(2024, 6, 11, 14, 30, 0, 0, time.UTC),
	Reason:        "Policy review",
}

func TestBookedEvent(t *testing.T) {
	event := model.BookedEvent(details)

	assert.Equal(t, "3", event.RecipientID)
	assert.Equal(t, "Appointment Booked Successfully", event.Title)
	assert.Equal(t, model.KindBooking, event.Kind)
	require.NotNil(t, event.AppointmentID)
	assert.Equal(t, "a-1", *event.AppointmentID)
	assert.Contains(t, event.Body, "Dear Customer Three")
	assert.Contains(t, event.Body, "11/06/2024 14:30")
	assert.Contains(t, event.Body, "Reason: Policy review")
	assert.Contains(t, event.Body, "Agent Seven (agent7@insurai.test)")
}

func TestReminderEvent(t *testing.T) {
	event := model.ReminderEvent(details)

	assert.Equal(t, "Appointment Reminder", event.Title)
	assert.Equal(t, model.KindReminder, event.Kind)
	assert.Contains(t, event.Body, "reminder for your upcoming appointment")
	assert.Contains(t, event.Body, "11/06/2024 14:30")
}

func TestStatusEvent(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		wantTitle string
		wantLine  string
		wantMove  string
	}{
		{name: "approved", current: constant.StatusApproved, wantTitle: "Appointment CONFIRMED", wantLine: "Please be available", wantMove: "changed from pending to confirmed"},
		{name: "rejected", current: constant.StatusRejected, wantTitle: "Appointment CANCELLED", wantLine: "You may book another appointment", wantMove: "changed from pending to cancelled"},
		{name: "pending", current: constant.StatusPending, wantTitle: "Appointment PENDING", wantLine: "You may book another appointment", wantMove: "changed from pending to pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := model.StatusEvent(details, constant.StatusPending, tt.current, "the agent")

			assert.Equal(t, tt.wantTitle, event.Title)
			assert.Equal(t, model.KindStatusUpdate, event.Kind)
			assert.Contains(t, event.Body, tt.wantLine)
			assert.Contains(t, event.Body, "by the agent")
			assert.Contains(t, event.Body, tt.wantMove)
			assert.Equal(t, constant.StatusPending, event.Attributes[model.AttributePreviousStatus])
			assert.Equal(t, tt.current, event.Attributes[model.AttributeStatus])
		})
	}
}

func TestEvent_WithoutAppointment(t *testing.T) {
	d := details
	d.AppointmentID = ""

	assert.Nil(t, model.BookedEvent(d).AppointmentID)
}
