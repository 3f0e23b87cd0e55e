package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"temple-services-api/core/database"
	"temple-services-api/core/logger"
	"temple-services-api/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const dateLayout = "2006-01-02"

// BookingRepositoryInterface defines the data access contract for the booking
// lifecycle. Mutations go through InTx so that the existence checks, the
// conflict scan and the write are atomic; reads use the plain handle.
type BookingRepositoryInterface interface {
	InTx(ctx context.Context, fn func(tx BookingTx) error) error
	GetBookingDetails(ctx context.Context, id uuid.UUID) (*entity.BookingDetails, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) ([]entity.Booking, error)
}

// BookingTx is the transaction-scoped view of the repository. LockSchedule
// must be called before ListActiveByTempleDate when checking for conflicts:
// FOR UPDATE alone cannot serialize two inserts into an empty day.
type BookingTx interface {
	GetActiveTemple(ctx context.Context, templeID uuid.UUID) (*entity.TempleRef, error)
	GetActiveService(ctx context.Context, templeID, serviceID uuid.UUID) (*entity.ServiceRef, error)
	LockSchedule(ctx context.Context, templeID uuid.UUID, date time.Time) error
	ListActiveByTempleDate(ctx context.Context, templeID uuid.UUID, date time.Time) ([]entity.Booking, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error)
	Insert(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error
	UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime string) error
}

type BookingRepository struct {
	DB database.IDatabase
}

func NewBookingRepository(db database.IDatabase) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	return r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

const bookingColumns = `id, user_id, temple_id, service_id, reference, booking_date, start_time,
	       duration_minutes, status, notes, created_at, updated_at`

func (r *BookingRepository) GetBookingDetails(ctx context.Context, id uuid.UUID) (*entity.BookingDetails, error) {
	query := `
		SELECT b.id, b.user_id, b.temple_id, b.service_id, b.reference, b.booking_date,
		       b.start_time, b.duration_minutes, b.status, b.notes, b.created_at, b.updated_at,
		       t.name AS temple_name, s.name AS service_name,
		       u.name AS user_name, u.phone AS user_phone
		FROM bookings b
		JOIN temples t ON t.id = b.temple_id
		JOIN temple_services s ON s.id = b.service_id
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1
	`

	var details entity.BookingDetails
	err := r.DB.GetContext(ctx, &details, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetBookingDetails", err)
		return nil, err
	}

	return &details, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) ([]entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC, start_time DESC
	`
	args := []any{userID}

	if status != "" {
		query = `
			SELECT ` + bookingColumns + `
			FROM bookings
			WHERE user_id = $1 AND status = $2
			ORDER BY booking_date DESC, start_time DESC
		`
		args = append(args, status)
	}

	var bookings []entity.Booking
	err := r.DB.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		logger.Error("BookingRepository:ListByUser", err)
		return nil, err
	}

	return bookings, nil
}

// ===================== Transaction-scoped operations =====================

type bookingTx struct {
	tx *sqlx.Tx
}

func (t *bookingTx) GetActiveTemple(ctx context.Context, templeID uuid.UUID) (*entity.TempleRef, error) {
	query := `SELECT id, name, is_active FROM temples WHERE id = $1 AND is_active = true`

	var temple entity.TempleRef
	err := t.tx.GetContext(ctx, &temple, query, templeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetActiveTemple", err)
		return nil, err
	}

	return &temple, nil
}

func (t *bookingTx) GetActiveService(ctx context.Context, templeID, serviceID uuid.UUID) (*entity.ServiceRef, error) {
	query := `
		SELECT id, temple_id, name, duration_minutes, is_active
		FROM temple_services
		WHERE id = $1 AND temple_id = $2 AND is_active = true
	`

	var service entity.ServiceRef
	err := t.tx.GetContext(ctx, &service, query, serviceID, templeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetActiveService", err)
		return nil, err
	}

	return &service, nil
}

// LockSchedule takes a transaction-scoped advisory lock keyed by temple and
// date, serializing concurrent conflict checks for the same schedule.
func (t *bookingTx) LockSchedule(ctx context.Context, templeID uuid.UUID, date time.Time) error {
	key := fmt.Sprintf("%s:%s", templeID, date.Format(dateLayout))

	if _, err := t.tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		logger.Error("BookingRepository:LockSchedule", err)
		return err
	}
	return nil
}

func (t *bookingTx) ListActiveByTempleDate(ctx context.Context, templeID uuid.UUID, date time.Time) ([]entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE temple_id = $1 AND booking_date = $2 AND status <> 'cancelled'
		FOR UPDATE
	`

	var bookings []entity.Booking
	err := t.tx.SelectContext(ctx, &bookings, query, templeID, date.Format(dateLayout))
	if err != nil {
		logger.Error("BookingRepository:ListActiveByTempleDate", err)
		return nil, err
	}

	return bookings, nil
}

func (t *bookingTx) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	var booking entity.Booking
	err := t.tx.GetContext(ctx, &booking, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetByIDForUser", err)
		return nil, err
	}

	return &booking, nil
}

func (t *bookingTx) Insert(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	query := `
		INSERT INTO bookings (user_id, temple_id, service_id, reference, booking_date,
		                      start_time, duration_minutes, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookingColumns + `
	`

	var created entity.Booking
	err := t.tx.GetContext(ctx, &created, query,
		booking.UserID, booking.TempleID, booking.ServiceID, booking.Reference,
		booking.BookingDate.Format(dateLayout), booking.StartTime,
		booking.DurationMinutes, booking.Status, booking.Notes)
	if err != nil {
		logger.Error("BookingRepository:Insert", err)
		return nil, err
	}

	return &created, nil
}

func (t *bookingTx) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, id, status); err != nil {
		logger.Error("BookingRepository:UpdateStatus", err)
		return err
	}
	return nil
}

func (t *bookingTx) UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime string) error {
	query := `UPDATE bookings SET booking_date = $2, start_time = $3, updated_at = NOW() WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, id, date.Format(dateLayout), startTime); err != nil {
		logger.Error("BookingRepository:UpdateSchedule", err)
		return err
	}
	return nil
}
