package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"temple-services-api/core/errors"
	"temple-services-api/core/queue"
	"temple-services-api/modules/booking/dto"
	"temple-services-api/modules/booking/entity"
	"temple-services-api/modules/booking/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================== In-memory fake repository =====================

// fakeRepo implements BookingRepositoryInterface with the same contract as
// the SQL repository: InTx serializes transactions and rolls the booking set
// back when the callback fails.
type fakeRepo struct {
	mu       sync.Mutex
	temples  map[uuid.UUID]entity.TempleRef
	services map[uuid.UUID]entity.ServiceRef
	users    map[uuid.UUID]string
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		temples:  make(map[uuid.UUID]entity.TempleRef),
		services: make(map[uuid.UUID]entity.ServiceRef),
		users:    make(map[uuid.UUID]string),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
}

func (f *fakeRepo) InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make(map[uuid.UUID]*entity.Booking, len(f.bookings))
	for id, b := range f.bookings {
		copied := *b
		snapshot[id] = &copied
	}

	if err := fn(&fakeTx{repo: f}); err != nil {
		f.bookings = snapshot
		return err
	}
	return nil
}

func (f *fakeRepo) GetBookingDetails(ctx context.Context, id uuid.UUID) (*entity.BookingDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}

	details := &entity.BookingDetails{
		Booking:     *b,
		TempleName:  f.temples[b.TempleID].Name,
		ServiceName: f.services[b.ServiceID].Name,
		UserName:    f.users[b.UserID],
	}
	return details, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) ([]entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Booking
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		result = append(result, *b)
	}

	sort.Slice(result, func(i, j int) bool {
		di := result[i].BookingDate.Format("2006-01-02")
		dj := result[j].BookingDate.Format("2006-01-02")
		if di != dj {
			return di > dj
		}
		return result[i].StartTime > result[j].StartTime
	})
	return result, nil
}

type fakeTx struct {
	repo *fakeRepo
}

func (t *fakeTx) GetActiveTemple(ctx context.Context, templeID uuid.UUID) (*entity.TempleRef, error) {
	temple, ok := t.repo.temples[templeID]
	if !ok || !temple.IsActive {
		return nil, nil
	}
	return &temple, nil
}

func (t *fakeTx) GetActiveService(ctx context.Context, templeID, serviceID uuid.UUID) (*entity.ServiceRef, error) {
	service, ok := t.repo.services[serviceID]
	if !ok || !service.IsActive || service.TempleID != templeID {
		return nil, nil
	}
	return &service, nil
}

func (t *fakeTx) LockSchedule(ctx context.Context, templeID uuid.UUID, date time.Time) error {
	return nil // InTx's mutex already serializes transactions
}

func (t *fakeTx) ListActiveByTempleDate(ctx context.Context, templeID uuid.UUID, date time.Time) ([]entity.Booking, error) {
	day := date.Format("2006-01-02")
	var result []entity.Booking
	for _, b := range t.repo.bookings {
		if b.TempleID == templeID && b.BookingDate.Format("2006-01-02") == day && b.Status != entity.BookingStatusCancelled {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (t *fakeTx) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	b, ok := t.repo.bookings[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (t *fakeTx) Insert(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	created := *booking
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	t.repo.bookings[created.ID] = &created

	result := created
	return &result, nil
}

func (t *fakeTx) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	b := t.repo.bookings[id]
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (t *fakeTx) UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime string) error {
	b := t.repo.bookings[id]
	b.BookingDate = date
	b.StartTime = startTime
	b.UpdatedAt = time.Now()
	return nil
}

// recordingPublisher captures lifecycle events.
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, taskType string, payload queue.BookingEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, taskType)
	return nil
}

// ===================== Fixtures =====================

type fixture struct {
	repo      *fakeRepo
	events    *recordingPublisher
	svc       BookingService
	userID    uuid.UUID
	templeID  uuid.UUID
	serviceID uuid.UUID
}

// newFixture seeds one active temple with one active 30-minute service.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	events := &recordingPublisher{}

	f := &fixture{
		repo:      repo,
		events:    events,
		svc:       NewBookingService(repo, events),
		userID:    uuid.New(),
		templeID:  uuid.New(),
		serviceID: uuid.New(),
	}

	repo.temples[f.templeID] = entity.TempleRef{ID: f.templeID, Name: "Sri Lakshmi Temple", IsActive: true}
	repo.services[f.serviceID] = entity.ServiceRef{
		ID: f.serviceID, TempleID: f.templeID, Name: "Abhishekam", DurationMinutes: 30, IsActive: true,
	}
	repo.users[f.userID] = "Test User"
	return f
}

func (f *fixture) createReq(date, at string) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		TempleID:  f.templeID.String(),
		ServiceID: f.serviceID.String(),
		Date:      date,
		Time:      at,
	}
}

func (f *fixture) mustCreate(t *testing.T, date, at string) *dto.BookingResponse {
	t.Helper()
	resp, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq(date, at))
	require.Nil(t, appErr)
	require.NotNil(t, resp)
	return resp
}

// assertNoOverlap checks the core invariant over every non-cancelled pair at
// the fixture's temple.
func (f *fixture) assertNoOverlap(t *testing.T) {
	t.Helper()
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()

	var active []entity.Booking
	for _, b := range f.repo.bookings {
		if b.Status != entity.BookingStatusCancelled {
			active = append(active, *b)
		}
	}

	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.TempleID != b.TempleID || a.BookingDate.Format("2006-01-02") != b.BookingDate.Format("2006-01-02") {
				continue
			}
			sa, _ := parseTimeOfDay(a.StartTime)
			sb, _ := parseTimeOfDay(b.StartTime)
			assert.Falsef(t, overlaps(sa, sa+a.DurationMinutes, sb, sb+b.DurationMinutes),
				"bookings %s and %s overlap", a.ID, b.ID)
		}
	}
}

// ===================== Create =====================

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2024-06-01", resp.Date)
	assert.Equal(t, "10:00", resp.Time)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{queue.TypeBookingCreated}, f.events.types)
}

func TestCreateBookingTempleNotFound(t *testing.T) {
	f := newFixture(t)

	req := f.createReq("2024-06-01", "10:00")
	req.TempleID = uuid.New().String()

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, req)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCreateBookingInactiveTemple(t *testing.T) {
	f := newFixture(t)
	temple := f.repo.temples[f.templeID]
	temple.IsActive = false
	f.repo.temples[f.templeID] = temple

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq("2024-06-01", "10:00"))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCreateBookingServiceNotFound(t *testing.T) {
	f := newFixture(t)

	req := f.createReq("2024-06-01", "10:00")
	req.ServiceID = uuid.New().String()

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, req)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCreateBookingServiceFromOtherTemple(t *testing.T) {
	f := newFixture(t)

	otherTemple := uuid.New()
	f.repo.temples[otherTemple] = entity.TempleRef{ID: otherTemple, Name: "Other", IsActive: true}

	req := f.createReq("2024-06-01", "10:00")
	req.TempleID = otherTemple.String()

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, req)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCreateBookingInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(req *dto.CreateBookingRequest)
	}{
		{name: "bad temple id", mutate: func(r *dto.CreateBookingRequest) { r.TempleID = "not-a-uuid" }},
		{name: "bad service id", mutate: func(r *dto.CreateBookingRequest) { r.ServiceID = "nope" }},
		{name: "bad date", mutate: func(r *dto.CreateBookingRequest) { r.Date = "June 1st" }},
		{name: "bad time", mutate: func(r *dto.CreateBookingRequest) { r.Time = "10am" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.createReq("2024-06-01", "10:00")
			tt.mutate(req)

			_, appErr := f.svc.CreateBooking(context.Background(), f.userID, req)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
		})
	}
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq("2024-06-01", "10:15"))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrConflict, appErr.Code)
	assert.Equal(t, "Time slot is already booked", appErr.Message)

	f.assertNoOverlap(t)
}

func TestCreateBookingBoundaryTouch(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")
	f.mustCreate(t, "2024-06-01", "10:30") // [10:00,10:30) and [10:30,11:00) do not conflict

	f.assertNoOverlap(t)
}

func TestCreateBookingOtherDateDoesNotConflict(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")
	f.mustCreate(t, "2024-06-02", "10:00")
}

func TestConfirmedBookingStillOccupiesSlot(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")

	id := uuid.MustParse(resp.ID)
	f.repo.bookings[id].Status = entity.BookingStatusConfirmed

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq("2024-06-01", "10:15"))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrConflict, appErr.Code)
}

// ===================== Cancel =====================

func TestCancelBookingFreesSlot(t *testing.T) {
	f := newFixture(t)

	first := f.mustCreate(t, "2024-06-01", "10:00")

	_, appErr := f.svc.CancelBooking(context.Background(), f.userID, uuid.MustParse(first.ID))
	require.Nil(t, appErr)

	// the cancelled booking's slot is free again
	f.mustCreate(t, "2024-06-01", "10:00")
	f.assertNoOverlap(t)
}

func TestCancelBookingAlreadyCancelled(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")
	id := uuid.MustParse(resp.ID)

	_, appErr := f.svc.CancelBooking(context.Background(), f.userID, id)
	require.Nil(t, appErr)

	_, appErr = f.svc.CancelBooking(context.Background(), f.userID, id)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidState, appErr.Code)
	assert.Equal(t, "Booking is already cancelled", appErr.Message)
}

func TestCancelBookingNotOwned(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")

	_, appErr := f.svc.CancelBooking(context.Background(), uuid.New(), uuid.MustParse(resp.ID))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture(t)

	_, appErr := f.svc.CancelBooking(context.Background(), f.userID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

// ===================== Reschedule =====================

func TestRescheduleBooking(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")
	id := uuid.MustParse(resp.ID)

	moved, appErr := f.svc.RescheduleBooking(context.Background(), f.userID, id,
		&dto.RescheduleBookingRequest{Date: "2024-06-02", Time: "14:00"})
	require.Nil(t, appErr)
	assert.Equal(t, "2024-06-02", moved.Date)
	assert.Equal(t, "14:00", moved.Time)
	assert.Equal(t, "pending", moved.Status) // reschedule does not change status
	assert.Equal(t, 30, moved.DurationMinutes)
}

func TestRescheduleToSameSlotSucceeds(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")

	// a booking must not conflict with its own prior slot
	moved, appErr := f.svc.RescheduleBooking(context.Background(), f.userID, uuid.MustParse(resp.ID),
		&dto.RescheduleBookingRequest{Date: "2024-06-01", Time: "10:00"})
	require.Nil(t, appErr)
	assert.Equal(t, "10:00", moved.Time)
}

func TestRescheduleConflict(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")
	second := f.mustCreate(t, "2024-06-01", "11:00")
	id := uuid.MustParse(second.ID)

	_, appErr := f.svc.RescheduleBooking(context.Background(), f.userID, id,
		&dto.RescheduleBookingRequest{Date: "2024-06-01", Time: "10:15"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrConflict, appErr.Code)

	// booking unchanged after the failed reschedule
	kept := f.repo.bookings[id]
	assert.Equal(t, "11:00", kept.StartTime)
	assert.Equal(t, "2024-06-01", kept.BookingDate.Format("2006-01-02"))
	f.assertNoOverlap(t)
}

func TestRescheduleCancelledBooking(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")
	id := uuid.MustParse(resp.ID)

	_, appErr := f.svc.CancelBooking(context.Background(), f.userID, id)
	require.Nil(t, appErr)

	_, appErr = f.svc.RescheduleBooking(context.Background(), f.userID, id,
		&dto.RescheduleBookingRequest{Date: "2024-06-03", Time: "12:00"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidState, appErr.Code)
	assert.Equal(t, "Cannot reschedule a cancelled booking", appErr.Message)

	kept := f.repo.bookings[id]
	assert.Equal(t, "10:00", kept.StartTime)
	assert.Equal(t, "2024-06-01", kept.BookingDate.Format("2006-01-02"))
}

func TestRescheduleKeepsDurationSnapshot(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")

	// changing the service after booking must not affect the snapshot
	service := f.repo.services[f.serviceID]
	service.DurationMinutes = 90
	f.repo.services[f.serviceID] = service

	moved, appErr := f.svc.RescheduleBooking(context.Background(), f.userID, uuid.MustParse(resp.ID),
		&dto.RescheduleBookingRequest{Date: "2024-06-02", Time: "10:00"})
	require.Nil(t, appErr)
	assert.Equal(t, 30, moved.DurationMinutes)
}

// ===================== Scenario from the product flow =====================

func TestBookCancelRebookScenario(t *testing.T) {
	f := newFixture(t)

	first := f.mustCreate(t, "2024-06-01", "10:00")
	assert.Equal(t, "pending", first.Status)

	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq("2024-06-01", "10:15"))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrConflict, appErr.Code)

	_, appErr = f.svc.CancelBooking(context.Background(), f.userID, uuid.MustParse(first.ID))
	require.Nil(t, appErr)

	third := f.mustCreate(t, "2024-06-01", "10:00")
	assert.Equal(t, "pending", third.Status)
	f.assertNoOverlap(t)
}

// ===================== Reads =====================

func TestGetBookingByID(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")
	id := uuid.MustParse(resp.ID)

	t.Run("owner", func(t *testing.T) {
		details, appErr := f.svc.GetBookingByID(context.Background(), f.userID, "user", id)
		require.Nil(t, appErr)
		assert.Equal(t, "Sri Lakshmi Temple", details.TempleName)
		assert.Equal(t, "Abhishekam", details.ServiceName)
		assert.Equal(t, "Test User", details.UserName)
	})

	t.Run("admin", func(t *testing.T) {
		details, appErr := f.svc.GetBookingByID(context.Background(), uuid.New(), "admin", id)
		require.Nil(t, appErr)
		assert.Equal(t, resp.ID, details.ID)
	})

	t.Run("stranger gets not found, not forbidden", func(t *testing.T) {
		_, appErr := f.svc.GetBookingByID(context.Background(), uuid.New(), "user", id)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})

	t.Run("missing booking", func(t *testing.T) {
		_, appErr := f.svc.GetBookingByID(context.Background(), f.userID, "user", uuid.New())
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})
}

func TestListUserBookings(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")
	f.mustCreate(t, "2024-06-01", "11:00")
	older := f.mustCreate(t, "2024-05-20", "09:00")

	_, appErr := f.svc.CancelBooking(context.Background(), f.userID, uuid.MustParse(older.ID))
	require.Nil(t, appErr)

	t.Run("all, most recent first", func(t *testing.T) {
		list, appErr := f.svc.ListUserBookings(context.Background(), f.userID, "")
		require.Nil(t, appErr)
		require.Len(t, list, 3)
		assert.Equal(t, "11:00", list[0].Time)
		assert.Equal(t, "10:00", list[1].Time)
		assert.Equal(t, "2024-05-20", list[2].Date)
	})

	t.Run("status filter", func(t *testing.T) {
		list, appErr := f.svc.ListUserBookings(context.Background(), f.userID, "cancelled")
		require.Nil(t, appErr)
		require.Len(t, list, 1)
		assert.Equal(t, older.ID, list[0].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, appErr := f.svc.ListUserBookings(context.Background(), f.userID, "done")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("other user sees nothing", func(t *testing.T) {
		list, appErr := f.svc.ListUserBookings(context.Background(), uuid.New(), "")
		require.Nil(t, appErr)
		assert.Empty(t, list)
	})
}

// ===================== Concurrency =====================

func TestConcurrentCreateSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 2
	results := make(chan *errors.AppError, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, appErr := f.svc.CreateBooking(context.Background(), uuid.New(), f.createReq("2024-06-01", "10:00"))
			results <- appErr
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for appErr := range results {
		if appErr == nil {
			successes++
		} else if appErr.Code == errors.ErrConflict {
			conflicts++
		}
	}

	assert.Equal(t, 1, successes, "exactly one concurrent create may win the slot")
	assert.Equal(t, 1, conflicts, "the loser must see a conflict")
	f.assertNoOverlap(t)
}

// ===================== Events =====================

func TestLifecycleEventsPublished(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, "2024-06-01", "10:00")
	id := uuid.MustParse(resp.ID)

	_, appErr := f.svc.RescheduleBooking(context.Background(), f.userID, id,
		&dto.RescheduleBookingRequest{Date: "2024-06-02", Time: "10:00"})
	require.Nil(t, appErr)

	_, appErr = f.svc.CancelBooking(context.Background(), f.userID, id)
	require.Nil(t, appErr)

	assert.Equal(t, []string{
		queue.TypeBookingCreated,
		queue.TypeBookingRescheduled,
		queue.TypeBookingCancelled,
	}, f.events.types)
}

func TestFailedCreatePublishesNothing(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, "2024-06-01", "10:00")
	_, appErr := f.svc.CreateBooking(context.Background(), f.userID, f.createReq("2024-06-01", "10:00"))
	require.NotNil(t, appErr)

	assert.Equal(t, []string{queue.TypeBookingCreated}, f.events.types)
}
