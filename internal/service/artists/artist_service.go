package artists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("artist not found")
	ErrNameTaken    = errors.New("artist name already exists")
	ErrInvalidInput = errors.New("invalid artist")
)

var validate = validator.New()

type ArtistUseCase interface {
	List(ctx context.Context) ([]domain.Artist, error)
	GetByID(ctx context.Context, id string) (*domain.ArtistDetails, error)
	Create(ctx context.Context, input ArtistInput) (*domain.Artist, error)
	Update(ctx context.Context, id string, input ArtistInput) (*domain.Artist, error)
	Delete(ctx context.Context, id string) error
}

type ArtistInput struct {
	Name        string             `json:"name" validate:"required"`
	Bio         string             `json:"bio"`
	Genres      []string           `json:"genre" validate:"required,min=1,dive,required"`
	Discography []domain.Album     `json:"discography"`
	SocialMedia domain.SocialMedia `json:"social_media"`
}

type ArtistService struct {
	artists repository.ArtistRepository
	events  repository.EventRepository
	now     func() time.Time
}

func NewArtistService(artists repository.ArtistRepository, events repository.EventRepository) *ArtistService {
	return &ArtistService{artists: artists, events: events, now: time.Now}
}

func (s *ArtistService) List(ctx context.Context) ([]domain.Artist, error) {
	return s.artists.List(ctx)
}

// GetByID returns the artist with events dated from now on.
func (s *ArtistService) GetByID(ctx context.Context, id string) (*domain.ArtistDetails, error) {
	a, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	upcoming, err := s.events.List(ctx, repository.EventFilter{ArtistID: id, From: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}
	return &domain.ArtistDetails{Artist: *a, UpcomingEvents: upcoming}, nil
}

func (s *ArtistService) Create(ctx context.Context, input ArtistInput) (*domain.Artist, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	a := input.toDomain(uuid.NewString())
	if err := s.artists.Create(ctx, a); err != nil {
		return nil, duplicate(err, input.Name)
	}
	return a, nil
}

func (s *ArtistService) Update(ctx context.Context, id string, input ArtistInput) (*domain.Artist, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	a := input.toDomain(id)
	if err := s.artists.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(err, id)
		}
		return nil, duplicate(err, input.Name)
	}
	return a, nil
}

func (s *ArtistService) Delete(ctx context.Context, id string) error {
	if err := s.artists.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	return nil
}

func (in ArtistInput) toDomain(id string) *domain.Artist {
	return &domain.Artist{
		ID:          id,
		Name:        in.Name,
		Bio:         in.Bio,
		Genres:      in.Genres,
		Discography: in.Discography,
		SocialMedia: in.SocialMedia,
	}
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func duplicate(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	return err
}

var _ ArtistUseCase = (*ArtistService)(nil)
