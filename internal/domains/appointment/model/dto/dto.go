package dto

import (
	"strings"
	"time"

	"insurai/internal/domains/appointment/model"
	"insurai/shared"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"
	gModel "insurai/shared/model"
	"insurai/shared/timezone"
	"insurai/shared/validator"

	"github.com/google/uuid"
)

type BookAppointmentRequest struct {
	AgentID             string  `json:"agent_id"              validate:"required"                example:"7"`
	AppointmentDateTime string  `json:"appointment_date_time" validate:"required,localdatetime"  example:"2024-06-10T09:00"`
	AvailabilityID      *string `json:"availability_id"       validate:"omitempty"`
	Reason              string  `json:"reason"                validate:"omitempty,max=500"       example:"Policy review"`
	Notes               string  `json:"notes"                 validate:"omitempty,max=1000"`
}

// ToModel builds a pending appointment. AppointmentDateTime is read as a wall clock in loc.
func (r *BookAppointmentRequest) ToModel(customerID string, loc *time.Location, now time.Time) (model.Appointment, error) {
	at, err := validator.ParseLocalDateTime(r.AppointmentDateTime, loc)
	if err != nil {
		return model.Appointment{}, failure.BadRequestFromString("appointment_date_time must be yyyy-MM-ddTHH:mm")
	}

	var availabilityID *string
	if r.AvailabilityID != nil && strings.TrimSpace(*r.AvailabilityID) != constant.Empty {
		id := strings.TrimSpace(*r.AvailabilityID)
		availabilityID = &id
	}

	return model.Appointment{
		ID:                  uuid.NewString(),
		CustomerID:          customerID,
		AgentID:             r.AgentID,
		AvailabilityID:      availabilityID,
		AppointmentDateTime: at,
		Reason:              r.Reason,
		Notes:               r.Notes,
		Status:              constant.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required"          example:"CANCELLED"`
	Reason string `json:"reason" validate:"omitempty,max=500" example:"Customer called to cancel"`
}

type AppointmentResponse struct {
	ID                  string  `json:"id"`
	CustomerID          string  `json:"customer_id"`
	AgentID             string  `json:"agent_id"`
	AvailabilityID      *string `json:"availability_id,omitempty"`
	AppointmentDateTime string  `json:"appointment_date_time"`
	Reason              string  `json:"reason"`
	Notes               string  `json:"notes"`
	Status              string  `json:"status"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(model model.Appointment) {
	r.ID = model.ID
	r.CustomerID = model.CustomerID
	r.AgentID = model.AgentID
	r.AvailabilityID = model.AvailabilityID
	r.AppointmentDateTime = timezone.Format(model.AppointmentDateTime, constant.LocalDateTime)
	r.Reason = model.Reason
	r.Notes = model.Notes
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}
