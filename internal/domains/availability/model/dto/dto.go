package dto

import (
	"fmt"
	"time"

	"insurai/internal/domains/availability/model"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"
	gModel "insurai/shared/model"
	"insurai/shared/validator"

	"github.com/google/uuid"
)

const (
	messageAgentsFound   = "Found %d available agent(s)"
	messageNoAgentsFound = "No agents available at the requested date and time"
)

type window struct {
	date  time.Time
	start time.Time
	end   time.Time
}

// parseWindow turns validated request strings into UTC wall-clock values anchored on the slot day.
func parseWindow(date, start, end string) (window, error) {
	day, err := time.Parse(constant.DateOnlyFormat, date)
	if err != nil {
		return window{}, failure.BadRequestFromString("available_date must be yyyy-MM-dd")
	}

	startTime, err := validator.ParseTimeOfDay(start)
	if err != nil {
		return window{}, failure.BadRequestFromString("start_time must be HH:mm")
	}

	endTime, err := validator.ParseTimeOfDay(end)
	if err != nil {
		return window{}, failure.BadRequestFromString("end_time must be HH:mm")
	}

	if !endTime.After(startTime) {
		return window{}, failure.BadRequestFromString("end_time must be after start_time")
	}

	return window{
		date:  day,
		start: time.Date(day.Year(), day.Month(), day.Day(), startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC),
		end:   time.Date(day.Year(), day.Month(), day.Day(), endTime.Hour(), endTime.Minute(), endTime.Second(), 0, time.UTC),
	}, nil
}

type PublishSlotRequest struct {
	AvailableDate string `json:"available_date" validate:"required,datetime=2006-01-02" example:"2024-06-10"`
	StartTime     string `json:"start_time"     validate:"required,timeofday"           example:"09:00"`
	EndTime       string `json:"end_time"       validate:"required,timeofday"           example:"12:00"`
}

func (r *PublishSlotRequest) ToModel(agentID string, now time.Time) (model.Slot, error) {
	w, err := parseWindow(r.AvailableDate, r.StartTime, r.EndTime)
	if err != nil {
		return model.Slot{}, err
	}

	return model.Slot{
		ID:            uuid.NewString(),
		AgentID:       agentID,
		AvailableDate: w.date,
		StartTime:     w.start,
		EndTime:       w.end,
		IsAvailable:   true,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

type UpdateSlotRequest struct {
	AvailableDate string `json:"available_date" validate:"required,datetime=2006-01-02" example:"2024-06-10"`
	StartTime     string `json:"start_time"     validate:"required,timeofday"           example:"09:00"`
	EndTime       string `json:"end_time"       validate:"required,timeofday"           example:"12:00"`
	IsAvailable   *bool  `json:"is_available"   validate:"required"`
}

// Apply overwrites every mutable field of current and returns the column map to persist.
func (r *UpdateSlotRequest) Apply(current *model.Slot, now time.Time) (map[string]any, error) {
	w, err := parseWindow(r.AvailableDate, r.StartTime, r.EndTime)
	if err != nil {
		return nil, err
	}

	current.AvailableDate = w.date
	current.StartTime = w.start
	current.EndTime = w.end
	current.IsAvailable = *r.IsAvailable
	current.UpdatedAt = now

	return map[string]any{
		model.FieldAvailableDate: w.date,
		model.FieldStartTime:     w.start,
		model.FieldEndTime:       w.end,
		model.FieldIsAvailable:   *r.IsAvailable,
		model.FieldUpdatedAt:     now,
	}, nil
}

type QuerySlotsRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"required,datetime=2006-01-02"`
}

// Range returns the inclusive day range.
func (r *QuerySlotsRequest) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(constant.DateOnlyFormat, r.StartDate)
	if err != nil {
		return start, start, failure.BadRequestFromString("start_date must be yyyy-MM-dd")
	}

	end, err := time.Parse(constant.DateOnlyFormat, r.EndDate)
	if err != nil {
		return start, end, failure.BadRequestFromString("end_date must be yyyy-MM-dd")
	}

	if end.Before(start) {
		return start, end, failure.BadRequestFromString("end_date must not be before start_date")
	}

	return start, end, nil
}

type SearchSlotsRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,timeofday"`
}

// At returns the searched day and the searched wall clock anchored on it.
func (r *SearchSlotsRequest) At() (time.Time, time.Time, error) {
	day, err := time.Parse(constant.DateOnlyFormat, r.Date)
	if err != nil {
		return day, day, failure.BadRequestFromString("date must be yyyy-MM-dd")
	}

	tod, err := validator.ParseTimeOfDay(r.Time)
	if err != nil {
		return day, day, failure.BadRequestFromString("time must be HH:mm")
	}

	return day, time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
}

type SlotResponse struct {
	ID            string `json:"id"`
	AgentID       string `json:"agent_id"`
	AgentName     string `json:"agent_name,omitempty"`
	AgentEmail    string `json:"agent_email,omitempty"`
	AvailableDate string `json:"available_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	IsAvailable   bool   `json:"is_available"`
	gDto.Metadata
}

func (r *SlotResponse) FromModel(model model.Slot) {
	r.ID = model.ID
	r.AgentID = model.AgentID
	r.AvailableDate = model.AvailableDate.Format(constant.DateOnlyFormat)
	r.StartTime = model.StartTime.Format(constant.TimeOfDayFormat)
	r.EndTime = model.EndTime.Format(constant.TimeOfDayFormat)
	r.IsAvailable = model.IsAvailable
	r.Metadata.FromModel(model.Metadata)
}

func (r *SlotResponse) FromJoined(model model.SlotWithAgent) {
	r.FromModel(model.Slot)
	r.AgentName = model.AgentName
	r.AgentEmail = model.AgentEmail
}

func FromModels(models []model.Slot) []SlotResponse {
	res := make([]SlotResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type SearchResponse struct {
	HasAvailableAgents bool           `json:"has_available_agents"`
	Message            string         `json:"message"`
	Slots              []SlotResponse `json:"slots"`
}

func (r *SearchResponse) FromModels(models []model.SlotWithAgent) {
	r.Slots = make([]SlotResponse, len(models))
	for i, mod := range models {
		r.Slots[i].FromJoined(mod)
	}

	r.HasAvailableAgents = len(models) > 0
	if r.HasAvailableAgents {
		r.Message = fmt.Sprintf(messageAgentsFound, len(models))
	} else {
		r.Message = messageNoAgentsFound
	}
}
