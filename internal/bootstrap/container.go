package bootstrap

import (
	"log/slog"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/auth"
	"github.com/SREENATHREDDY1234/music-freak/internal/cache"
	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
	"github.com/SREENATHREDDY1234/music-freak/internal/metrics"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/artists"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/booking"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/events"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/news"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Infra is what the binaries open before building services. Redis and
// Producer may be nil.
type Infra struct {
	Repos    *repository.Set
	Redis    *cache.RedisCache
	Producer *kafka.Producer
}

// Container holds the wired application services.
type Container struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tokens   *auth.TokenIssuer

	Bookings *booking.BookingService
	Events   *events.EventService
	Artists  *artists.ArtistService
	News     *news.NewsService
	Users    *users.UserService
}

func NewContainer(cfg *config.Config, logger *slog.Logger, infra Infra) *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Interface values stay nil unless the backing client exists.
	var (
		eventCache   events.EventCache
		bookingCache booking.Cache
		producer     booking.Producer
	)
	opts := []booking.BookingServiceOption{
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMaxAttempts(cfg.Booking.MaxAttempts),
		booking.WithLogger(logger),
		booking.WithMetrics(metrics.NewBooking(registry)),
	}
	if infra.Redis != nil {
		eventCache = infra.Redis
		bookingCache = infra.Redis
		opts = append(opts, booking.WithLocker(infra.Redis))
	}
	if infra.Producer != nil {
		producer = retryingProducer{publisher: infra.Producer, attempts: cfg.Kafka.PublishAttempts}
	}

	repos := infra.Repos
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	return &Container{
		Logger:   logger,
		Registry: registry,
		Tokens:   tokens,
		Bookings: booking.NewBookingService(repos.Bookings, repos.Events, bookingCache, producer, cfg.Kafka.BookingTopic, opts...),
		Events:   events.NewEventService(repos.Events, repos.Artists, eventCache, logger),
		Artists:  artists.NewArtistService(repos.Artists, repos.Events),
		News:     news.NewNewsService(repos.News, repos.Artists, repos.Users),
		Users:    users.NewUserService(repos.Users, repos.Bookings, tokens, cfg.Auth.BcryptCost, cfg.Auth.AdminEmails),
	}
}
