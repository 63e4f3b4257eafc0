package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/auth"
	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
	"github.com/SREENATHREDDY1234/music-freak/internal/ledger"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memEvents is an in-memory EventRepository with compare-and-swap writes.
type memEvents struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	conflicts int
	updateErr error
}

func newMemEvents(events ...*domain.Event) *memEvents {
	m := &memEvents{events: make(map[string]*domain.Event)}
	for _, e := range events {
		m.events[e.ID] = e.Clone()
	}
	return m
}

func (m *memEvents) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, *e.Clone())
	}
	return out, nil
}

func (m *memEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e.Clone(), nil
}

func (m *memEvents) Create(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e.Clone()
	return nil
}

func (m *memEvents) UpdateDetails(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Version != e.Version {
		return repository.ErrConflict
	}
	cur.Name = e.Name
	cur.Version++
	e.Version = cur.Version
	return nil
}

func (m *memEvents) UpdateInventory(ctx context.Context, id string, expectedVersion int64, categories []domain.TicketCategory) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	if m.conflicts > 0 {
		// simulate a writer that slipped in between read and write
		m.conflicts--
		cur.Version++
		return 0, repository.ErrConflict
	}
	if cur.Version != expectedVersion {
		return 0, repository.ErrConflict
	}
	cur.TicketTypes = append([]domain.TicketCategory(nil), categories...)
	cur.Version++
	return cur.Version, nil
}

func (m *memEvents) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memEvents) Nearby(ctx context.Context, lng, lat, maxMeters float64) ([]domain.Event, error) {
	return nil, nil
}

func (m *memEvents) available(t *testing.T, eventID, categoryID string) int {
	t.Helper()
	e, err := m.GetByID(context.Background(), eventID)
	require.NoError(t, err)
	c := e.Category(categoryID)
	require.NotNil(t, c)
	return c.Available
}

func (m *memEvents) setAvailable(eventID, categoryID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventID].Category(categoryID).Available = n
}

type memBookings struct {
	mu        sync.Mutex
	bookings  map[string]*domain.Booking
	createErr error
}

func newMemBookings() *memBookings {
	return &memBookings{bookings: make(map[string]*domain.Booking)}
}

func (m *memBookings) Create(ctx context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.PurchaserID == purchaserID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookings) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memBookings) BookedQuantities(ctx context.Context, eventID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, b := range m.bookings {
		if b.EventID != eventID {
			continue
		}
		for _, it := range b.Tickets {
			out[it.CategoryID] += it.Quantity
		}
	}
	return out, nil
}

func (m *memBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateEvents(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type noopLocker struct{}

func (noopLocker) LockEvent(ctx context.Context, eventID string) (func(), error) {
	return func() {}, nil
}

var (
	fan   = auth.Identity{UserID: "u1", Email: "fan@example.com", Role: domain.RoleUser}
	other = auth.Identity{UserID: "u2", Email: "other@example.com", Role: domain.RoleUser}
	admin = auth.Identity{UserID: "root", Email: "admin@example.com", Role: domain.RoleAdmin}

	errStorage = errors.New("storage unavailable")
)

// summerFest has VIP total=100, available=80 as in the reference example.
func summerFest() *domain.Event {
	return &domain.Event{
		ID:      "e1",
		Name:    "Summer Fest",
		Version: 1,
		TicketTypes: []domain.TicketCategory{
			{ID: "vip", Type: domain.TicketTypeVIP, PriceCents: 15000, TotalQuantity: 100, Available: 80},
			{ID: "ga", Type: domain.TicketTypeGeneral, PriceCents: 5000, TotalQuantity: 500, Available: 10},
		},
	}
}

func newService(events *memEvents, bookings *memBookings, opts ...BookingServiceOption) *BookingService {
	return NewBookingService(bookings, events, nil, nil, "", opts...)
}

func request(items ...domain.LineItem) CreateBookingInput {
	return CreateBookingInput{PurchaserID: fan.UserID, PurchaserEmail: fan.Email, EventID: "e1", Tickets: items}
}

func item(category string, qty int) domain.LineItem {
	return domain.LineItem{CategoryID: category, Quantity: qty}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	mockCache.On("InvalidateEvents", mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", mock.Anything, "bookings", mock.AnythingOfType("string"), mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()
	mockProducer.On("Publish", mock.Anything, "notifications", mock.AnythingOfType("string"), mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()

	service := NewBookingService(bookings, events, mockCache, mockProducer, "bookings", WithNotificationsTopic("notifications"))

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 50)))

	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "u1", booking.PurchaserID)
	assert.Equal(t, domain.PaymentStatusCompleted, booking.PaymentStatus)
	assert.Equal(t, int64(50*15000), booking.TotalAmountCents)
	assert.Equal(t, []domain.LineItem{{CategoryID: "vip", Quantity: 50, UnitPriceCents: 15000}}, booking.Tickets)
	assert.Equal(t, 30, events.available(t, "e1", "vip"))
	assert.Equal(t, 1, bookings.count())

	published := mockProducer.Calls[0].Arguments.Get(3).(kafka.BookingEvent)
	assert.Equal(t, kafka.BookingCreated, published.Type)
	assert.Equal(t, booking.ID, published.BookingID)
	assert.Equal(t, "Summer Fest", published.EventName)

	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_PublishFailureDoesNotFailBooking(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	mockProducer := &MockProducer{}
	mockProducer.On("Publish", mock.Anything, "bookings", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	service := NewBookingService(bookings, events, nil, mockProducer, "bookings")

	_, err := service.CreateBooking(context.Background(), request(item("vip", 1)))
	require.NoError(t, err)
	assert.Equal(t, 79, events.available(t, "e1", "vip"))
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_InsufficientInventory(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	_, err := service.CreateBooking(context.Background(), request(item("vip", 81)))

	require.ErrorIs(t, err, ledger.ErrInsufficientInventory)
	var lie *ledger.LineItemError
	require.ErrorAs(t, err, &lie)
	assert.Equal(t, "vip", lie.CategoryID)
	assert.Equal(t, 81, lie.Requested)
	assert.Equal(t, 80, lie.Available)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Zero(t, bookings.count())
}

func TestBookingService_CreateBooking_IsAtomicAcrossLineItems(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	_, err := service.CreateBooking(context.Background(), request(item("vip", 10), item("ga", 11)))

	require.ErrorIs(t, err, ledger.ErrInsufficientInventory)
	var lie *ledger.LineItemError
	require.ErrorAs(t, err, &lie)
	assert.Equal(t, 1, lie.Index)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Equal(t, 10, events.available(t, "e1", "ga"))
	assert.Zero(t, bookings.count())
}

func TestBookingService_CreateBooking_SumsDuplicateCategories(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	_, err := service.CreateBooking(context.Background(), request(item("vip", 50), item("vip", 40)))
	require.ErrorIs(t, err, ledger.ErrInsufficientInventory)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 30), item("ga", 2), item("vip", 20)))
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{
		{CategoryID: "vip", Quantity: 50, UnitPriceCents: 15000},
		{CategoryID: "ga", Quantity: 2, UnitPriceCents: 5000},
	}, booking.Tickets)
	assert.Equal(t, int64(50*15000+2*5000), booking.TotalAmountCents)
	assert.Equal(t, 30, events.available(t, "e1", "vip"))
}

func TestBookingService_CreateBooking_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateBookingInput
		want  error
	}{
		{"missing purchaser", CreateBookingInput{EventID: "e1", Tickets: []domain.LineItem{item("vip", 1)}}, ErrInvalidInput},
		{"missing event", CreateBookingInput{PurchaserID: "u1", Tickets: []domain.LineItem{item("vip", 1)}}, ErrInvalidInput},
		{"no line items", request(), ledger.ErrInvalidQuantity},
		{"zero quantity", request(item("vip", 0)), ledger.ErrInvalidQuantity},
		{"negative quantity", request(item("vip", 2), item("ga", -1)), ledger.ErrInvalidQuantity},
		{"unknown category", request(item("backstage", 1)), ledger.ErrUnknownCategory},
		{"unknown event", CreateBookingInput{PurchaserID: "u1", EventID: "nope", Tickets: []domain.LineItem{item("vip", 1)}}, ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := newMemEvents(summerFest())
			bookings := newMemBookings()
			service := newService(events, bookings)

			_, err := service.CreateBooking(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 80, events.available(t, "e1", "vip"))
			assert.Zero(t, bookings.count())
		})
	}
}

func TestBookingService_CreateBooking_RetriesOnConflict(t *testing.T) {
	events := newMemEvents(summerFest())
	events.conflicts = 2
	bookings := newMemBookings()
	service := newService(events, bookings, WithMaxAttempts(3))

	_, err := service.CreateBooking(context.Background(), request(item("vip", 5)))

	require.NoError(t, err)
	assert.Equal(t, 75, events.available(t, "e1", "vip"))
}

func TestBookingService_CreateBooking_GivesUpAfterMaxAttempts(t *testing.T) {
	events := newMemEvents(summerFest())
	events.conflicts = 3
	bookings := newMemBookings()
	service := newService(events, bookings, WithMaxAttempts(3))

	_, err := service.CreateBooking(context.Background(), request(item("vip", 5)))

	require.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Zero(t, bookings.count())
}

func TestBookingService_CreateBooking_CompensatesWhenInsertFails(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	bookings.createErr = errors.New("write concern timeout")
	service := newService(events, bookings)

	_, err := service.CreateBooking(context.Background(), request(item("vip", 50), item("ga", 10)))

	require.Error(t, err)
	assert.ErrorContains(t, err, "write concern timeout")
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Equal(t, 10, events.available(t, "e1", "ga"))
}

func TestBookingService_ConcurrentBookings_ExactlyOneWins(t *testing.T) {
	lockers := map[string]Locker{
		"per-event lock": NewLocalLocker(),
		"cas only":       noopLocker{},
	}
	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			events := newMemEvents(summerFest())
			bookings := newMemBookings()
			service := newService(events, bookings, WithLocker(locker), WithMaxAttempts(5))

			var (
				wg        sync.WaitGroup
				start     = make(chan struct{})
				succeeded atomic.Int32
				rejected  atomic.Int32
			)
			for _, qty := range []int{50, 40} {
				wg.Add(1)
				go func(qty int) {
					defer wg.Done()
					<-start
					_, err := service.CreateBooking(context.Background(), request(item("vip", qty)))
					switch {
					case err == nil:
						succeeded.Add(1)
					case errors.Is(err, ledger.ErrInsufficientInventory):
						rejected.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(qty)
			}
			close(start)
			wg.Wait()

			assert.Equal(t, int32(1), succeeded.Load())
			assert.Equal(t, int32(1), rejected.Load())
			assert.Equal(t, 1, bookings.count())

			remaining := events.available(t, "e1", "vip")
			assert.Contains(t, []int{30, 40}, remaining)
		})
	}
}

func TestBookingService_ConcurrentBookings_NeverOversell(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.CreateBooking(context.Background(), request(item("vip", 7))); err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, ledger.ErrInsufficientInventory)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(11), succeeded.Load())
	assert.Equal(t, 80-7*11, events.available(t, "e1", "vip"))
	assert.GreaterOrEqual(t, events.available(t, "e1", "vip"), 0)
}

func TestBookingService_CancelBooking_RoundTrip(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	mockCache.On("InvalidateEvents", mock.Anything).Return(nil).Twice()
	mockProducer.On("Publish", mock.Anything, "bookings", mock.Anything, mock.Anything).Return(nil).Twice()

	service := NewBookingService(bookings, events, mockCache, mockProducer, "bookings")

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 50), item("ga", 4)))
	require.NoError(t, err)
	assert.Equal(t, 30, events.available(t, "e1", "vip"))

	report, err := service.CancelBooking(context.Background(), booking.ID, fan)

	require.NoError(t, err)
	assert.Equal(t, booking.ID, report.BookingID)
	assert.Len(t, report.Restored, 2)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Equal(t, 10, events.available(t, "e1", "ga"))
	assert.Zero(t, bookings.count())

	cancelled := mockProducer.Calls[1].Arguments.Get(3).(kafka.BookingEvent)
	assert.Equal(t, kafka.BookingCancelled, cancelled.Type)

	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CancelBooking_EventDeleted(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 2), item("ga", 1)))
	require.NoError(t, err)
	require.NoError(t, events.Delete(context.Background(), "e1"))

	report, err := service.CancelBooking(context.Background(), booking.ID, fan)

	require.NoError(t, err)
	assert.Empty(t, report.Restored)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "vip", report.Skipped[0].CategoryID)
	assert.Contains(t, report.Skipped[0].Reason, "no longer exists")
	assert.Zero(t, bookings.count())
}

func TestBookingService_CancelBooking_CategoryRemoved(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 2), item("ga", 1)))
	require.NoError(t, err)

	events.mu.Lock()
	events.events["e1"].TicketTypes = events.events["e1"].TicketTypes[:1]
	events.mu.Unlock()

	report, err := service.CancelBooking(context.Background(), booking.ID, admin)

	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{CategoryID: "vip", Quantity: 2, UnitPriceCents: 15000}}, report.Restored)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "ga", report.Skipped[0].CategoryID)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
	assert.Zero(t, bookings.count())
}

func TestBookingService_CancelBooking_CorruptionAborts(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 50)))
	require.NoError(t, err)
	// a lost decrement: the ledger forgot 60 sold tickets
	events.setAvailable("e1", "vip", 90)

	_, err = service.CancelBooking(context.Background(), booking.ID, fan)

	require.ErrorIs(t, err, ledger.ErrLedgerCorruption)
	assert.Equal(t, 90, events.available(t, "e1", "vip"))
	assert.Equal(t, 1, bookings.count())
}

func TestBookingService_CancelBooking_RetriesOnConflict(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 50)))
	require.NoError(t, err)
	events.conflicts = 1

	_, err = service.CancelBooking(context.Background(), booking.ID, fan)

	require.NoError(t, err)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
}

func TestBookingService_CancelBooking_ReinstatesBookingWhenRestoreFails(t *testing.T) {
	tests := []struct {
		name    string
		fail    func(*memEvents)
		wantErr error
	}{
		{"contention outlasts retries", func(m *memEvents) { m.conflicts = 10 }, ledger.ErrConcurrencyConflict},
		{"storage error", func(m *memEvents) { m.updateErr = errStorage }, errStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := newMemEvents(summerFest())
			bookings := newMemBookings()
			service := newService(events, bookings)

			booking, err := service.CreateBooking(context.Background(), request(item("vip", 50)))
			require.NoError(t, err)
			require.Equal(t, 30, events.available(t, "e1", "vip"))

			tt.fail(events)
			_, err = service.CancelBooking(context.Background(), booking.ID, fan)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 30, events.available(t, "e1", "vip"))
			kept, err := service.GetBooking(context.Background(), booking.ID, fan)
			require.NoError(t, err)
			assert.Equal(t, booking.Tickets, kept.Tickets)

			// once the store recovers the same cancel goes through
			events.mu.Lock()
			events.conflicts, events.updateErr = 0, nil
			events.mu.Unlock()
			_, err = service.CancelBooking(context.Background(), booking.ID, fan)
			require.NoError(t, err)
			assert.Equal(t, 80, events.available(t, "e1", "vip"))
			assert.Zero(t, bookings.count())
		})
	}
}

func TestBookingService_CancelBooking_Authorization(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 1)))
	require.NoError(t, err)

	_, err = service.CancelBooking(context.Background(), booking.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 79, events.available(t, "e1", "vip"))

	_, err = service.CancelBooking(context.Background(), "missing", fan)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = service.CancelBooking(context.Background(), booking.ID, admin)
	assert.NoError(t, err)

	_, err = service.CancelBooking(context.Background(), booking.ID, admin)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
}

func TestBookingService_ConcurrentCancels_RestoreOnce(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 50)))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.CancelBooking(context.Background(), booking.ID, fan); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
}

func TestBookingService_GetAndListBookings(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings)

	booking, err := service.CreateBooking(context.Background(), request(item("vip", 1)))
	require.NoError(t, err)

	got, err := service.GetBooking(context.Background(), booking.ID, fan)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = service.GetBooking(context.Background(), booking.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := service.ListUserBookings(context.Background(), fan.UserID, fan)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = service.ListUserBookings(context.Background(), fan.UserID, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = service.ListUserBookings(context.Background(), fan.UserID, other)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_AuditLedger(t *testing.T) {
	ev := summerFest()
	ev.TicketTypes[0].Available = 100
	ev.TicketTypes[1].Available = 500
	events := newMemEvents(ev)
	bookings := newMemBookings()
	service := newService(events, bookings)

	_, err := service.CreateBooking(context.Background(), request(item("vip", 20), item("ga", 3)))
	require.NoError(t, err)

	found, err := service.AuditLedger(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)

	events.setAvailable("e1", "vip", 85)

	found, err = service.AuditLedger(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ledger.Discrepancy{EventID: "e1", CategoryID: "vip", Total: 100, Available: 85, Booked: 20}, found[0])
	assert.ErrorIs(t, found[0], ledger.ErrLedgerCorruption)
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.LockEvent(context.Background(), "e1")
	require.NoError(t, err)

	otherUnlock, err := l.LockEvent(context.Background(), "e2")
	require.NoError(t, err, "different events must not contend")
	otherUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.LockEvent(ctx, "e1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan struct{})
	go func() {
		u, err := l.LockEvent(context.Background(), "e1")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock not handed over")
	}

	assert.Eventually(t, func() bool { return l.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBookingService_LockFailureIsConcurrencyConflict(t *testing.T) {
	events := newMemEvents(summerFest())
	bookings := newMemBookings()
	service := newService(events, bookings, WithLocker(failingLocker{}))

	_, err := service.CreateBooking(context.Background(), request(item("vip", 1)))

	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 80, events.available(t, "e1", "vip"))
}

type failingLocker struct{}

func (failingLocker) LockEvent(ctx context.Context, eventID string) (func(), error) {
	return nil, errors.New("timed out waiting for event lock")
}
