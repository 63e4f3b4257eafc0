package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("news not found")
	ErrArtistNotFound = errors.New("artist not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidInput   = errors.New("invalid news")
)

var validate = validator.New()

type NewsUseCase interface {
	List(ctx context.Context) ([]domain.News, error)
	GetByID(ctx context.Context, id string) (*domain.News, error)
	ByCategory(ctx context.Context, category string) ([]domain.News, error)
	ByArtist(ctx context.Context, artistID string) ([]domain.News, error)
	Feed(ctx context.Context, userID string) ([]domain.News, error)
	Create(ctx context.Context, input NewsInput) (*domain.News, error)
	Share(ctx context.Context, id, platform string) (*domain.News, error)
}

type NewsInput struct {
	Title         string              `json:"title" validate:"required"`
	Content       string              `json:"content" validate:"required"`
	Category      domain.NewsCategory `json:"category" validate:"required,oneof='New Release' Tour Collaboration Exclusive Award"`
	ArtistID      string              `json:"artist_id" validate:"required"`
	PublishDate   time.Time           `json:"publish_date"`
	FeaturedImage string              `json:"featured_image" validate:"omitempty,url"`
	Tags          []string            `json:"tags"`
}

type NewsService struct {
	news    repository.NewsRepository
	artists repository.ArtistRepository
	users   repository.UserRepository
	now     func() time.Time
}

func NewNewsService(news repository.NewsRepository, artists repository.ArtistRepository, users repository.UserRepository) *NewsService {
	return &NewsService{news: news, artists: artists, users: users, now: time.Now}
}

func (s *NewsService) List(ctx context.Context) ([]domain.News, error) {
	return s.news.List(ctx, repository.NewsFilter{})
}

func (s *NewsService) GetByID(ctx context.Context, id string) (*domain.News, error) {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return n, nil
}

func (s *NewsService) ByCategory(ctx context.Context, category string) ([]domain.News, error) {
	c, ok := ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	return s.news.List(ctx, repository.NewsFilter{Category: c})
}

func (s *NewsService) ByArtist(ctx context.Context, artistID string) ([]domain.News, error) {
	return s.news.List(ctx, repository.NewsFilter{ArtistIDs: []string{artistID}})
}

// Feed is the news about the user's favourite artists.
func (s *NewsService) Feed(ctx context.Context, userID string) ([]domain.News, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, err
	}
	favourites := u.Preferences.FavoriteArtists
	if len(favourites) == 0 {
		return []domain.News{}, nil
	}
	return s.news.List(ctx, repository.NewsFilter{ArtistIDs: favourites})
}

func (s *NewsService) Create(ctx context.Context, input NewsInput) (*domain.News, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.artists.GetByID(ctx, input.ArtistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, input.ArtistID)
		}
		return nil, err
	}

	n := &domain.News{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Content:       input.Content,
		Category:      input.Category,
		ArtistID:      input.ArtistID,
		PublishDate:   input.PublishDate.UTC(),
		FeaturedImage: input.FeaturedImage,
		Tags:          input.Tags,
	}
	if n.PublishDate.IsZero() {
		n.PublishDate = s.now().UTC()
	}
	if err := s.news.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	return n, nil
}

func (s *NewsService) Share(ctx context.Context, id, platform string) (*domain.News, error) {
	platform = strings.ToLower(platform)
	if !repository.SharePlatforms[platform] {
		return nil, fmt.Errorf("%w: unknown share platform %q", ErrInvalidInput, platform)
	}
	n, err := s.news.IncrementShare(ctx, id, platform)
	if err != nil {
		return nil, notFound(err, id)
	}
	return n, nil
}

var categories = []domain.NewsCategory{
	domain.NewsCategoryNewRelease,
	domain.NewsCategoryTour,
	domain.NewsCategoryCollaboration,
	domain.NewsCategoryExclusive,
	domain.NewsCategoryAward,
}

// ParseCategory matches a category case-insensitively.
func ParseCategory(s string) (domain.NewsCategory, bool) {
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

var _ NewsUseCase = (*NewsService)(nil)
