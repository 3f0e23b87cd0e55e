package service

import (
	"context"
	"strings"
	"time"

	"temple-services-api/core/errors"
	"temple-services-api/core/logger"
	"temple-services-api/core/queue"
	"temple-services-api/core/utils"
	"temple-services-api/modules/booking/dto"
	"temple-services-api/modules/booking/entity"
	"temple-services-api/modules/booking/repository"

	"github.com/google/uuid"
)

// BookingService owns the booking lifecycle: creation, cancellation and
// rescheduling, plus the no-overlap invariant over (temple, date). It is
// stateless between calls; all state lives behind the repository.
type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, *errors.AppError)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*dto.BookingResponse, *errors.AppError)
	RescheduleBooking(ctx context.Context, userID, bookingID uuid.UUID, req *dto.RescheduleBookingRequest) (*dto.BookingResponse, *errors.AppError)
	GetBookingByID(ctx context.Context, requesterID uuid.UUID, requesterRole string, bookingID uuid.UUID) (*dto.BookingDetailResponse, *errors.AppError)
	ListUserBookings(ctx context.Context, userID uuid.UUID, statusFilter string) ([]dto.BookingResponse, *errors.AppError)
}

// TaskPublisher pushes lifecycle events to the background worker. Publishing
// is best effort and never fails the request.
type TaskPublisher interface {
	Publish(ctx context.Context, taskType string, payload queue.BookingEventPayload) error
}

type bookingService struct {
	repo   repository.BookingRepositoryInterface
	events TaskPublisher
}

func NewBookingService(repo repository.BookingRepositoryInterface, events TaskPublisher) BookingService {
	return &bookingService{
		repo:   repo,
		events: events,
	}
}

// CreateBooking inserts a pending booking for the requested slot. The temple
// and service existence checks, the conflict scan and the insert run in one
// transaction under the schedule lock.
func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, *errors.AppError) {
	logger.Info("BookingService:CreateBooking:Start", "user_id", userID, "temple_id", req.TempleID, "date", req.Date, "time", req.Time)

	templeID, err := uuid.Parse(req.TempleID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid temple ID", err)
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid service ID", err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}
	start, err := parseTimeOfDay(req.Time)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	var created *entity.Booking
	txErr := s.repo.InTx(ctx, func(tx repository.BookingTx) error {
		temple, err := tx.GetActiveTemple(ctx, templeID)
		if err != nil {
			return err
		}
		if temple == nil {
			return errors.NewAppError(errors.ErrNotFound, "Temple not found", nil)
		}

		service, err := tx.GetActiveService(ctx, templeID, serviceID)
		if err != nil {
			return err
		}
		if service == nil {
			return errors.NewAppError(errors.ErrNotFound, "Service not found", nil)
		}

		if err := tx.LockSchedule(ctx, templeID, date); err != nil {
			return err
		}

		existing, err := tx.ListActiveByTempleDate(ctx, templeID, date)
		if err != nil {
			return err
		}

		end := start + service.DurationMinutes
		if conflict := findConflict(existing, start, end, uuid.Nil); conflict != nil {
			return errors.NewAppError(errors.ErrConflict, "Time slot is already booked", nil)
		}

		booking := &entity.Booking{
			UserID:          userID,
			TempleID:        templeID,
			ServiceID:       serviceID,
			Reference:       utils.GenerateID(),
			BookingDate:     date,
			StartTime:       req.Time,
			DurationMinutes: service.DurationMinutes,
			Status:          entity.BookingStatusPending,
		}
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			booking.Notes = &notes
		}

		created, err = tx.Insert(ctx, booking)
		return err
	})
	if txErr != nil {
		return nil, s.asAppError(txErr, "Failed to create booking")
	}

	logger.Info("BookingService:CreateBooking:Success", "booking_id", created.ID, "reference", created.Reference)
	s.publish(ctx, queue.TypeBookingCreated, created)

	return dto.ToBookingResponse(created), nil
}

// CancelBooking marks an owned, not-yet-cancelled booking as cancelled,
// freeing its slot. Cancelling an already cancelled booking is an error, not
// a silent success.
func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*dto.BookingResponse, *errors.AppError) {
	logger.Info("BookingService:CancelBooking:Start", "user_id", userID, "booking_id", bookingID)

	var cancelled *entity.Booking
	txErr := s.repo.InTx(ctx, func(tx repository.BookingTx) error {
		booking, err := tx.GetByIDForUser(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if booking == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		if booking.Status == entity.BookingStatusCancelled {
			return errors.NewAppError(errors.ErrInvalidState, "Booking is already cancelled", nil)
		}

		if err := tx.UpdateStatus(ctx, bookingID, entity.BookingStatusCancelled); err != nil {
			return err
		}

		booking.Status = entity.BookingStatusCancelled
		booking.UpdatedAt = time.Now()
		cancelled = booking
		return nil
	})
	if txErr != nil {
		return nil, s.asAppError(txErr, "Failed to cancel booking")
	}

	logger.Info("BookingService:CancelBooking:Success", "booking_id", bookingID)
	s.publish(ctx, queue.TypeBookingCancelled, cancelled)

	return dto.ToBookingResponse(cancelled), nil
}

// RescheduleBooking moves a booking to a new date/time. The conflict scan
// excludes the booking itself and reuses the duration snapshotted at
// creation; status is left untouched.
func (s *bookingService) RescheduleBooking(ctx context.Context, userID, bookingID uuid.UUID, req *dto.RescheduleBookingRequest) (*dto.BookingResponse, *errors.AppError) {
	logger.Info("BookingService:RescheduleBooking:Start", "user_id", userID, "booking_id", bookingID, "date", req.Date, "time", req.Time)

	newDate, err := parseDate(req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}
	start, err := parseTimeOfDay(req.Time)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	var rescheduled *entity.Booking
	txErr := s.repo.InTx(ctx, func(tx repository.BookingTx) error {
		booking, err := tx.GetByIDForUser(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if booking == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		if booking.Status == entity.BookingStatusCancelled {
			return errors.NewAppError(errors.ErrInvalidState, "Cannot reschedule a cancelled booking", nil)
		}

		if err := tx.LockSchedule(ctx, booking.TempleID, newDate); err != nil {
			return err
		}

		existing, err := tx.ListActiveByTempleDate(ctx, booking.TempleID, newDate)
		if err != nil {
			return err
		}

		end := start + booking.DurationMinutes
		if conflict := findConflict(existing, start, end, booking.ID); conflict != nil {
			return errors.NewAppError(errors.ErrConflict, "Time slot is already booked", nil)
		}

		if err := tx.UpdateSchedule(ctx, bookingID, newDate, req.Time); err != nil {
			return err
		}

		booking.BookingDate = newDate
		booking.StartTime = req.Time
		booking.UpdatedAt = time.Now()
		rescheduled = booking
		return nil
	})
	if txErr != nil {
		return nil, s.asAppError(txErr, "Failed to reschedule booking")
	}

	logger.Info("BookingService:RescheduleBooking:Success", "booking_id", bookingID)
	s.publish(ctx, queue.TypeBookingRescheduled, rescheduled)

	return dto.ToBookingResponse(rescheduled), nil
}

// GetBookingByID returns a booking with its display fields for the owner or
// an admin. Anyone else gets NotFound, the same as a missing booking.
func (s *bookingService) GetBookingByID(ctx context.Context, requesterID uuid.UUID, requesterRole string, bookingID uuid.UUID) (*dto.BookingDetailResponse, *errors.AppError) {
	details, err := s.repo.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get booking", err)
	}
	if details == nil || !CanView(requesterID, requesterRole, &details.Booking) {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}

	return dto.ToBookingDetailResponse(details), nil
}

// ListUserBookings returns the caller's bookings, most recent first,
// optionally filtered by status.
func (s *bookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, statusFilter string) ([]dto.BookingResponse, *errors.AppError) {
	status := entity.BookingStatus(statusFilter)
	if statusFilter != "" && !status.Valid() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid status filter", nil)
	}

	bookings, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list bookings", err)
	}

	result := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, *dto.ToBookingResponse(&bookings[i]))
	}

	return result, nil
}

// asAppError passes domain errors through and wraps anything else (a failed
// statement, a lost connection) as an internal error. The transaction has
// already been rolled back by the time this runs.
func (s *bookingService) asAppError(err error, message string) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	logger.Error("BookingService:TransactionFailure", err)
	return errors.NewAppError(errors.ErrInternalServer, message, err)
}

func (s *bookingService) publish(ctx context.Context, taskType string, b *entity.Booking) {
	if s.events == nil || b == nil {
		return
	}

	payload := queue.BookingEventPayload{
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		TempleID:    b.TempleID,
		ServiceID:   b.ServiceID,
		BookingDate: b.BookingDate.Format(dateLayout),
		StartTime:   b.StartTime,
		Status:      string(b.Status),
		OccurredAt:  time.Now(),
	}
	if err := s.events.Publish(ctx, taskType, payload); err != nil {
		logger.Warn("BookingService:PublishEvent", "type", taskType, "booking_id", b.ID, "error", err)
	}
}
