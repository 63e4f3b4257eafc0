package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/api"
	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthService is the gRPC health service name reported next to the
// overall ("") status.
const HealthService = "music_freak.Bookings"

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	logger     *slog.Logger
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx
// is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, c *Container) error {
	s := newServers(cfg, c)

	errCh := make(chan error, 2)

	if cfg.GRPC.Address != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		s.logger.Info("grpc health server starting", "address", cfg.GRPC.Address)
		go func() { errCh <- s.grpcServer.Serve(lis) }()
	}

	s.logger.Info("http server starting", "address", cfg.HTTP.Address)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down servers")
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, c *Container) *Servers {
	grpcSrv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, hs)
	reflection.Register(grpcSrv)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      NewHTTPHandler(cfg, c),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		health:     hs,
		httpServer: httpSrv,
		logger:     c.Logger,
	}
}

// NewHTTPHandler builds the gin router with /metrics and, when a swagger
// directory is configured, the OpenAPI document and its UI.
func NewHTTPHandler(cfg *config.Config, c *Container) http.Handler {
	extra := map[string]http.Handler{
		"/metrics": promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}),
	}
	if cfg.HTTP.SwaggerDir != "" {
		extra["/docs/*filepath"] = http.StripPrefix("/docs/", http.FileServer(http.Dir(cfg.HTTP.SwaggerDir)))
		extra["/swagger/*any"] = httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))
	}

	return api.NewRouter(api.RouterConfig{
		Logger:         c.Logger,
		Tokens:         c.Tokens,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Bookings:       api.NewBookingHandler(c.Bookings),
		Events:         api.NewEventHandler(c.Events),
		Artists:        api.NewArtistHandler(c.Artists),
		News:           api.NewNewsHandler(c.News),
		Users:          api.NewUserHandler(c.Users),
		Extra:          extra,
	})
}
