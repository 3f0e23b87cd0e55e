package entity

import (
	"time"

	"temple-services-api/core/entity"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking occupies the half-open slot [start_time, start_time+duration) at a
// temple on a calendar date. DurationMinutes is a snapshot of the service
// duration taken at creation time.
type Booking struct {
	UserID          uuid.UUID     `db:"user_id" json:"user_id"`
	TempleID        uuid.UUID     `db:"temple_id" json:"temple_id"`
	ServiceID       uuid.UUID     `db:"service_id" json:"service_id"`
	Reference       string        `db:"reference" json:"reference"`
	BookingDate     time.Time     `db:"booking_date" json:"booking_date"`
	StartTime       string        `db:"start_time" json:"start_time"` // "HH:MM"
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus `db:"status" json:"status"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	entity.BaseEntity
}

// TempleRef is the slice of a temple row the booking flow needs.
type TempleRef struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	IsActive bool      `db:"is_active"`
}

// ServiceRef is the slice of a temple service row the booking flow needs.
type ServiceRef struct {
	ID              uuid.UUID `db:"id"`
	TempleID        uuid.UUID `db:"temple_id"`
	Name            string    `db:"name"`
	DurationMinutes int       `db:"duration_minutes"`
	IsActive        bool      `db:"is_active"`
}

// BookingDetails is a booking joined with its display fields.
type BookingDetails struct {
	Booking
	TempleName  string  `db:"temple_name"`
	ServiceName string  `db:"service_name"`
	UserName    string  `db:"user_name"`
	UserPhone   *string `db:"user_phone"`
}
