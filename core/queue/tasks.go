package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names consumed by the background worker.
const (
	TypeBookingCreated     = "booking:created"
	TypeBookingCancelled   = "booking:cancelled"
	TypeBookingRescheduled = "booking:rescheduled"
)

// BookingEventPayload is the wire payload for booking lifecycle tasks.
type BookingEventPayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	UserID      uuid.UUID `json:"user_id"`
	TempleID    uuid.UUID `json:"temple_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEventTask(taskType string, payload BookingEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func ParseBookingEventPayload(t *asynq.Task) (BookingEventPayload, error) {
	var payload BookingEventPayload
	err := json.Unmarshal(t.Payload(), &payload)
	return payload, err
}
