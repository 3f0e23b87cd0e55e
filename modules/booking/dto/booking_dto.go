package dto

import (
	"temple-services-api/modules/booking/entity"
)

type CreateBookingRequest struct {
	TempleID  string `json:"temple_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"` // "2006-01-02"
	Time      string `json:"time"` // "HH:MM"
	Notes     string `json:"notes"`
}

type RescheduleBookingRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type BookingResponse struct {
	ID              string `json:"id"`
	Reference       string `json:"reference"`
	TempleID        string `json:"temple_id"`
	ServiceID       string `json:"service_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	TempleName  string `json:"temple_name"`
	ServiceName string `json:"service_name"`
	UserName    string `json:"user_name"`
	UserPhone   string `json:"user_phone,omitempty"`
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z07:00"
)

func ToBookingResponse(b *entity.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:              b.ID.String(),
		Reference:       b.Reference,
		TempleID:        b.TempleID.String(),
		ServiceID:       b.ServiceID.String(),
		Date:            b.BookingDate.Format(dateLayout),
		Time:            b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt.Format(timestampLayout),
		UpdatedAt:       b.UpdatedAt.Format(timestampLayout),
	}
	if b.Notes != nil {
		resp.Notes = *b.Notes
	}
	return resp
}

func ToBookingDetailResponse(d *entity.BookingDetails) *BookingDetailResponse {
	resp := &BookingDetailResponse{
		BookingResponse: *ToBookingResponse(&d.Booking),
		TempleName:      d.TempleName,
		ServiceName:     d.ServiceName,
		UserName:        d.UserName,
	}
	if d.UserPhone != nil {
		resp.UserPhone = *d.UserPhone
	}
	return resp
}
