package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("event not found")
	ErrArtistNotFound = errors.New("artist not found")
	ErrInvalidInput   = errors.New("invalid event")
)

const defaultNearbyKm = 50

var validate = validator.New()

type EventUseCase interface {
	List(ctx context.Context, filter ListFilter) ([]domain.EventDetails, error)
	GetByID(ctx context.Context, id string) (*domain.EventDetails, error)
	Create(ctx context.Context, input CreateEventInput) (*domain.Event, error)
	Update(ctx context.Context, id string, input UpdateEventInput) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
	Nearby(ctx context.Context, lat, lng, distanceKm float64) ([]domain.EventDetails, error)
}

type EventCache interface {
	GetEvents(ctx context.Context, variant string) ([]domain.EventDetails, error)
	SetEvents(ctx context.Context, variant string, events []domain.EventDetails) error
	InvalidateEvents(ctx context.Context) error
}

type ListFilter struct {
	ArtistID string
	City     string
}

func (f ListFilter) cacheVariant() string {
	if f.ArtistID == "" && f.City == "" {
		return ""
	}
	return fmt.Sprintf("artist=%s&city=%s", f.ArtistID, strings.ToLower(f.City))
}

type TicketTypeInput struct {
	Type          domain.TicketType `json:"type" validate:"required,oneof=VIP General Premium Gold Silver Platinum"`
	PriceCents    int64             `json:"price_cents" validate:"gte=0"`
	TotalQuantity int               `json:"total_quantity" validate:"gt=0"`
}

type VenueInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	// Location is [longitude, latitude].
	Location []float64 `json:"location" validate:"len=2"`
}

type CreateEventInput struct {
	Name        string            `json:"name" validate:"required"`
	Date        time.Time         `json:"date" validate:"required"`
	ArtistID    string            `json:"artist_id" validate:"required"`
	Venue       VenueInput        `json:"venue"`
	TicketTypes []TicketTypeInput `json:"ticket_types" validate:"required,min=1,dive"`
}

// UpdateEventInput changes event details only. Ticket categories belong to
// the inventory ledger and are not editable here.
type UpdateEventInput struct {
	Name     *string     `json:"name" validate:"omitempty,min=1"`
	Date     *time.Time  `json:"date"`
	ArtistID *string     `json:"artist_id" validate:"omitempty,min=1"`
	Venue    *VenueInput `json:"venue"`
}

type EventService struct {
	events  repository.EventRepository
	artists repository.ArtistRepository
	cache   EventCache
	logger  *slog.Logger
}

func NewEventService(events repository.EventRepository, artists repository.ArtistRepository, cache EventCache, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{events: events, artists: artists, cache: cache, logger: logger}
}

func (s *EventService) List(ctx context.Context, filter ListFilter) ([]domain.EventDetails, error) {
	variant := filter.cacheVariant()
	if s.cache != nil {
		if cached, err := s.cache.GetEvents(ctx, variant); err == nil && cached != nil {
			return cached, nil
		}
	}

	events, err := s.events.List(ctx, repository.EventFilter{ArtistID: filter.ArtistID, City: filter.City})
	if err != nil {
		return nil, err
	}
	details, err := s.withArtists(ctx, events)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEvents(ctx, variant, details); err != nil {
			s.logger.Warn("failed to cache events", "error", err)
		}
	}
	return details, nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (*domain.EventDetails, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	details, err := s.withArtists(ctx, []domain.Event{*ev})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	if err := s.ensureArtist(ctx, input.ArtistID); err != nil {
		return nil, err
	}

	ev := &domain.Event{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Date:     input.Date.UTC(),
		ArtistID: input.ArtistID,
		Venue:    input.Venue.toDomain(),
	}
	for _, tt := range input.TicketTypes {
		ev.TicketTypes = append(ev.TicketTypes, domain.TicketCategory{
			ID:            uuid.NewString(),
			Type:          tt.Type,
			PriceCents:    tt.PriceCents,
			TotalQuantity: tt.TotalQuantity,
			Available:     tt.TotalQuantity,
		})
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.invalidate(ctx)
	return ev, nil
}

func (s *EventService) Update(ctx context.Context, id string, input UpdateEventInput) (*domain.Event, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Venue != nil {
		if err := validateVenue(*input.Venue); err != nil {
			return nil, err
		}
	}
	if input.ArtistID != nil {
		if err := s.ensureArtist(ctx, *input.ArtistID); err != nil {
			return nil, err
		}
	}

	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ev, err := s.events.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err, id)
		}
		if input.Name != nil {
			ev.Name = *input.Name
		}
		if input.Date != nil {
			ev.Date = input.Date.UTC()
		}
		if input.ArtistID != nil {
			ev.ArtistID = *input.ArtistID
		}
		if input.Venue != nil {
			ev.Venue = input.Venue.toDomain()
		}

		err = s.events.UpdateDetails(ctx, ev)
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Warn("event changed concurrently, retrying update", "event_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, notFound(err, id)
		}
		s.invalidate(ctx)
		return ev, nil
	}
	return nil, fmt.Errorf("update event %s: %w", id, repository.ErrConflict)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *EventService) Nearby(ctx context.Context, lat, lng, distanceKm float64) ([]domain.EventDetails, error) {
	if err := validateCoordinates(lng, lat); err != nil {
		return nil, err
	}
	if distanceKm <= 0 {
		distanceKm = defaultNearbyKm
	}
	events, err := s.events.Nearby(ctx, lng, lat, distanceKm*1000)
	if err != nil {
		return nil, err
	}
	return s.withArtists(ctx, events)
}

// withArtists resolves each distinct artist once. Events whose artist was
// deleted are returned without one.
func (s *EventService) withArtists(ctx context.Context, events []domain.Event) ([]domain.EventDetails, error) {
	artists := make(map[string]*domain.Artist)
	out := make([]domain.EventDetails, 0, len(events))
	for _, ev := range events {
		a, seen := artists[ev.ArtistID]
		if !seen && ev.ArtistID != "" {
			var err error
			a, err = s.artists.GetByID(ctx, ev.ArtistID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("load artist %s: %w", ev.ArtistID, err)
			}
			artists[ev.ArtistID] = a
		}
		out = append(out, domain.EventDetails{Event: ev, Artist: a})
	}
	return out, nil
}

func (s *EventService) ensureArtist(ctx context.Context, artistID string) error {
	if _, err := s.artists.GetByID(ctx, artistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrArtistNotFound, artistID)
		}
		return err
	}
	return nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvents(ctx); err != nil {
		s.logger.Warn("failed to invalidate events cache", "error", err)
	}
}

func (v VenueInput) toDomain() domain.Venue {
	return domain.Venue{
		Name:     v.Name,
		Address:  v.Address,
		City:     v.City,
		Location: domain.NewPoint(v.Location[0], v.Location[1]),
	}
}

func validateCreate(input CreateEventInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateVenue(input.Venue); err != nil {
		return err
	}
	seen := make(map[domain.TicketType]bool, len(input.TicketTypes))
	for _, tt := range input.TicketTypes {
		if seen[tt.Type] {
			return fmt.Errorf("%w: duplicate ticket type %s", ErrInvalidInput, tt.Type)
		}
		seen[tt.Type] = true
	}
	return nil
}

func validateVenue(v VenueInput) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return validateCoordinates(v.Location[0], v.Location[1])
}

func validateCoordinates(lng, lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidInput, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidInput, lng)
	}
	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

var _ EventUseCase = (*EventService)(nil)
