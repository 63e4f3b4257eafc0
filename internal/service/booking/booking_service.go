package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/auth"
	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
	"github.com/SREENATHREDDY1234/music-freak/internal/ledger"
	"github.com/SREENATHREDDY1234/music-freak/internal/metrics"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid booking request")
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, caller auth.Identity) (*CancelReport, error)
	GetBooking(ctx context.Context, bookingID string, caller auth.Identity) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string, caller auth.Identity) ([]domain.Booking, error)
	AuditLedger(ctx context.Context) ([]ledger.Discrepancy, error)
}

type Cache interface {
	InvalidateEvents(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	events             repository.EventRepository
	cache              Cache
	producer           Producer
	locker             Locker
	bookingTopic       string
	notificationsTopic string
	maxAttempts        int
	logger             *slog.Logger
	metrics            *metrics.Booking
}

type CreateBookingInput struct {
	PurchaserID    string            `json:"-"`
	PurchaserEmail string            `json:"-"`
	EventID        string            `json:"event_id"`
	Tickets        []domain.LineItem `json:"tickets"`
}

// SkippedItem is a line item whose inventory could not be restored because
// its event or category no longer exists.
type SkippedItem struct {
	domain.LineItem
	Reason string `json:"reason"`
}

type CancelReport struct {
	BookingID string            `json:"booking_id"`
	EventID   string            `json:"event_id"`
	Restored  []domain.LineItem `json:"restored"`
	Skipped   []SkippedItem     `json:"skipped,omitempty"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithLocker replaces the in-process per-event lock, e.g. with the Redis
// lock when several API instances share one store.
func WithLocker(l Locker) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Booking) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		events:       events,
		cache:        cache,
		producer:     producer,
		locker:       NewLocalLocker(),
		bookingTopic: bookingTopic,
		maxAttempts:  3,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves every line item against the event's ledger and
// persists the booking. Either all items are reserved and the booking is
// stored, or nothing changes.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.PurchaserID == "" {
		return nil, fmt.Errorf("%w: purchaser is required", ErrInvalidInput)
	}
	if input.EventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	items, err := ledger.Aggregate(input.Tickets)
	if err != nil {
		s.metrics.Rejected(rejectReason(err))
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		booking, err := s.tryCreate(ctx, input, items)
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.Conflict("reserve")
			s.logger.Warn("inventory changed concurrently, retrying booking",
				"event_id", input.EventID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		return booking, nil
	}

	s.metrics.Rejected("concurrency_conflict")
	return nil, fmt.Errorf("%w: event %s still contended after %d attempts",
		ledger.ErrConcurrencyConflict, input.EventID, s.maxAttempts)
}

func (s *BookingService) tryCreate(ctx context.Context, input CreateBookingInput, items []domain.LineItem) (*domain.Booking, error) {
	unlock, err := s.lock(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.loadEvent(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	ev := current.Clone()
	priced, total, err := ledger.Reserve(ev, items)
	if err != nil {
		s.metrics.Rejected(rejectReason(err))
		s.logger.Info("booking rejected", "event_id", input.EventID, "user_id", input.PurchaserID, "reason", err)
		return nil, err
	}

	if _, err := s.events.UpdateInventory(ctx, ev.ID, current.Version, ev.TicketTypes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, input.EventID)
		}
		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		PurchaserID:      input.PurchaserID,
		PurchaserEmail:   input.PurchaserEmail,
		EventID:          ev.ID,
		Tickets:          priced,
		TotalAmountCents: total,
		PaymentStatus:    domain.PaymentStatusCompleted,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		s.compensate(ctx, ev.ID, priced)
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.metrics.Created()
	for _, it := range priced {
		if c := ev.Category(it.CategoryID); c != nil {
			s.metrics.TicketsSold(string(c.Type), it.Quantity)
		}
	}
	s.afterCommit(ctx, kafka.BookingCreated, booking, ev.Name)
	return booking, nil
}

// compensate returns reserved tickets after the booking insert failed. It
// runs detached from the request context so a dropped client cannot leave
// the reservation behind.
func (s *BookingService) compensate(ctx context.Context, eventID string, items []domain.LineItem) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	plan, err := s.planRelease(ctx, eventID, items)
	if err == nil {
		_, err = s.commitRelease(ctx, eventID, items, plan, "compensate")
	}
	if err != nil {
		s.metrics.Corruption()
		s.logger.Error("failed to return reserved tickets after booking insert failure",
			"event_id", eventID, "tickets", items, "error", err)
	}
}

// reinstate puts a cancelled booking back when its tickets could not be
// restored, so the cancel leaves no net change and can be retried. Like
// compensate it runs detached from the request context.
func (s *BookingService) reinstate(ctx context.Context, booking *domain.Booking, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.metrics.Corruption()
		s.logger.Error("booking removed but inventory not restored",
			"booking_id", booking.ID, "event_id", booking.EventID, "tickets", booking.Tickets,
			"error", cause, "reinstate_error", err)
		return
	}
	s.logger.Warn("cancel rolled back, inventory not restored",
		"booking_id", booking.ID, "event_id", booking.EventID, "error", cause)
}

// CancelBooking removes the booking and restores its tickets. Items whose
// event or category is gone are skipped and reported. A restore that would
// push a category past its total aborts the cancel untouched.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, caller auth.Identity) (*CancelReport, error) {
	existing, err := s.GetBooking(ctx, bookingID, caller)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, existing.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-read under the lock; a concurrent cancel may have won
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, err
	}

	plan, err := s.planRelease(ctx, booking.EventID, booking.Tickets)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Delete(ctx, booking.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}

	plan, err = s.commitRelease(ctx, booking.EventID, booking.Tickets, plan, "cancel")
	if err != nil {
		s.reinstate(ctx, booking, err)
		return nil, err
	}

	report := &CancelReport{BookingID: booking.ID, EventID: booking.EventID, Restored: plan.restored}
	if report.Restored == nil {
		report.Restored = []domain.LineItem{}
	}
	for _, sk := range plan.skipped {
		report.Skipped = append(report.Skipped, SkippedItem{LineItem: sk.Item, Reason: sk.Err.Error()})
	}
	if len(report.Skipped) > 0 {
		s.metrics.RestoreSkipped(len(report.Skipped))
		s.logger.Info("cancelled booking with unrestorable items",
			"booking_id", booking.ID, "event_id", booking.EventID, "skipped", len(report.Skipped))
	}

	s.metrics.Cancelled()
	name := ""
	if plan.current != nil {
		name = plan.current.Name
	}
	s.afterCommit(ctx, kafka.BookingCancelled, booking, name)
	return report, nil
}

// releasePlan is the ledger state a restore will write. current is nil when
// the event no longer exists.
type releasePlan struct {
	current  *domain.Event
	next     *domain.Event
	restored []domain.LineItem
	skipped  []ledger.Restoration
}

func (s *BookingService) planRelease(ctx context.Context, eventID string, items []domain.LineItem) (*releasePlan, error) {
	current, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		plan := &releasePlan{}
		for _, it := range items {
			plan.skipped = append(plan.skipped, ledger.Restoration{
				Item: it,
				Err:  fmt.Errorf("%w: event %s no longer exists", ledger.ErrUnknownCategory, eventID),
			})
		}
		return plan, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	next := current.Clone()
	restored, skipped, corrupted := ledger.Release(next, items)
	if len(corrupted) > 0 {
		errs := make([]error, 0, len(corrupted))
		for _, c := range corrupted {
			errs = append(errs, c.Err)
			s.metrics.Corruption()
			s.logger.Error("ledger corruption detected on restore",
				"event_id", eventID, "category_id", c.Item.CategoryID, "quantity", c.Item.Quantity, "error", c.Err)
		}
		return nil, fmt.Errorf("event %s: %w", eventID, errors.Join(errs...))
	}
	return &releasePlan{current: current, next: next, restored: restored, skipped: skipped}, nil
}

// commitRelease writes plan with a conditional update, re-planning from a
// fresh read when another writer got there first.
func (s *BookingService) commitRelease(ctx context.Context, eventID string, items []domain.LineItem, plan *releasePlan, op string) (*releasePlan, error) {
	for attempt := 1; ; attempt++ {
		if plan.current == nil || len(plan.restored) == 0 {
			return plan, nil
		}
		_, err := s.events.UpdateInventory(ctx, eventID, plan.current.Version, plan.next.TicketTypes)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, repository.ErrConflict) && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("restore inventory: %w", err)
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("%w: restoring inventory of event %s", ledger.ErrConcurrencyConflict, eventID)
		}
		s.metrics.Conflict(op)
		s.logger.Warn("inventory changed concurrently, retrying restore", "event_id", eventID, "attempt", attempt)

		plan, err = s.planRelease(ctx, eventID, items)
		if err != nil {
			return nil, err
		}
	}
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string, caller auth.Identity) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, err
	}
	if booking.PurchaserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return booking, nil
}

// ListUserBookings is the purchaser's booking history, derived from the
// bookings themselves.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, caller auth.Identity) ([]domain.Booking, error) {
	if userID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.bookings.ListByPurchaser(ctx, userID)
}

// AuditLedger checks every event's sold counts against its bookings. Each
// event is verified under its lock so in-flight bookings are not reported.
// Discrepancies are logged and counted, never repaired.
func (s *BookingService) AuditLedger(ctx context.Context) ([]ledger.Discrepancy, error) {
	events, err := s.events.List(ctx, repository.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var found []ledger.Discrepancy
	for _, e := range events {
		ds, err := s.auditEvent(ctx, e.ID)
		if err != nil {
			if errors.Is(err, ErrEventNotFound) {
				continue
			}
			return found, err
		}
		for _, d := range ds {
			s.metrics.Corruption()
			s.logger.Error("ledger discrepancy",
				"event_id", d.EventID, "category_id", d.CategoryID,
				"total", d.Total, "available", d.Available, "booked", d.Booked)
		}
		found = append(found, ds...)
	}
	return found, nil
}

func (s *BookingService) auditEvent(ctx context.Context, eventID string) ([]ledger.Discrepancy, error) {
	unlock, err := s.lock(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.BookedQuantities(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("booked quantities for %s: %w", eventID, err)
	}
	return ledger.Verify(ev, booked), nil
}

func (s *BookingService) lock(ctx context.Context, eventID string) (func(), error) {
	unlock, err := s.locker.LockEvent(ctx, eventID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrConcurrencyConflict, err)
	}
	return unlock, nil
}

func (s *BookingService) loadEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	return ev, nil
}

func (s *BookingService) afterCommit(ctx context.Context, eventType string, booking *domain.Booking, eventName string) {
	if s.cache != nil {
		if err := s.cache.InvalidateEvents(ctx); err != nil {
			s.logger.Warn("failed to invalidate events cache", "error", err)
		}
	}
	if err := s.publish(ctx, eventType, booking, eventName); err != nil {
		s.logger.Warn("failed to publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, eventName string) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		EventID:          booking.EventID,
		EventName:        eventName,
		UserID:           booking.PurchaserID,
		Email:            booking.PurchaserEmail,
		Tickets:          booking.Tickets,
		TotalAmountCents: booking.TotalAmountCents,
		Status:           string(booking.PaymentStatus),
		OccurredAt:       time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, ledger.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "other"
	}
}

var _ BookingUseCase = (*BookingService)(nil)
