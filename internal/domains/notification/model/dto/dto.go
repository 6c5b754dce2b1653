package dto

import (
	"insurai/internal/domains/notification/model"
	"insurai/shared"
	"insurai/shared/constant"
	"insurai/shared/timezone"
)

const EventTypeCreated = "notification.created"

type NotificationResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	Type          string  `json:"type"`
	IsRead        bool    `json:"is_read"`
	AppointmentID *string `json:"appointment_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func (r *NotificationResponse) FromModel(model model.Notification) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Title = model.Title
	r.Message = model.Message
	r.Type = model.Type
	r.IsRead = model.IsRead
	r.AppointmentID = model.AppointmentID
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetNotificationsResponse) FromModels(models []model.Notification, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Notifications = make([]NotificationResponse, len(models))
	for i, mod := range models {
		r.Notifications[i].FromModel(mod)
	}
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// CreatedEvent is the payload published for every stored notification.
type CreatedEvent struct {
	Type         string               `json:"type"`
	Notification NotificationResponse `json:"notification"`
	Attributes   map[string]string    `json:"attributes,omitempty"`
}
