package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by conditional writes when the stored version
	// no longer matches the one the caller read.
	ErrConflict  = errors.New("version conflict")
	ErrDuplicate = errors.New("duplicate key")

	ErrUnknownPlatform = errors.New("unknown share platform")
)

type EventFilter struct {
	ArtistID string
	City     string
	From     time.Time
}

type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	// UpdateDetails writes name, date, artist and venue when the stored
	// version equals event.Version, and bumps event.Version.
	UpdateDetails(ctx context.Context, event *domain.Event) error
	// UpdateInventory replaces the ticket categories when the stored
	// version equals expectedVersion and returns the new version.
	UpdateInventory(ctx context.Context, id string, expectedVersion int64, categories []domain.TicketCategory) (int64, error)
	Delete(ctx context.Context, id string) error
	Nearby(ctx context.Context, lng, lat, maxMeters float64) ([]domain.Event, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.Booking, error)
	Delete(ctx context.Context, id string) error
	// BookedQuantities sums line item quantities per category for an event.
	BookedQuantities(ctx context.Context, eventID string) (map[string]int, error)
}

type ArtistRepository interface {
	List(ctx context.Context) ([]domain.Artist, error)
	GetByID(ctx context.Context, id string) (*domain.Artist, error)
	Create(ctx context.Context, artist *domain.Artist) error
	Update(ctx context.Context, artist *domain.Artist) error
	Delete(ctx context.Context, id string) error
}

type NewsFilter struct {
	Category  domain.NewsCategory
	ArtistIDs []string
}

type NewsRepository interface {
	List(ctx context.Context, filter NewsFilter) ([]domain.News, error)
	GetByID(ctx context.Context, id string) (*domain.News, error)
	Create(ctx context.Context, news *domain.News) error
	IncrementShare(ctx context.Context, id, platform string) (*domain.News, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id string, prefs domain.Preferences) (*domain.User, error)
}

// Set groups the repositories of one storage backend.
type Set struct {
	Events   EventRepository
	Bookings BookingRepository
	Artists  ArtistRepository
	News     NewsRepository
	Users    UserRepository
}

// SharePlatforms lists the counters IncrementShare accepts.
var SharePlatforms = map[string]bool{"twitter": true, "facebook": true, "instagram": true}
