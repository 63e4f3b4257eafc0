package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openapi.json"), []byte(`{"openapi":"3.0.3"}`), 0o644))

	cfg := &config.Config{}
	cfg.HTTP.Address = ":0"
	cfg.HTTP.SwaggerDir = dir
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLHours = 1
	cfg.Auth.BcryptCost = 4
	cfg.Kafka.BookingTopic = "bookings"
	return cfg
}

func testContainer(cfg *config.Config) *Container {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewContainer(cfg, logger, Infra{Repos: &repository.Set{}})
}

func TestNewContainerWithoutRedisOrKafka(t *testing.T) {
	c := testContainer(testConfig(t))

	assert.NotNil(t, c.Bookings)
	assert.NotNil(t, c.Events)
	assert.NotNil(t, c.Artists)
	assert.NotNil(t, c.News)
	assert.NotNil(t, c.Users)
	assert.NotNil(t, c.Tokens)
}

func TestHTTPHandlerMounts(t *testing.T) {
	cfg := testConfig(t)
	handler := NewHTTPHandler(cfg, testContainer(cfg))

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/health", http.StatusOK, "music-freak"},
		{"/metrics", http.StatusOK, "go_goroutines"},
		{"/docs/openapi.json", http.StatusOK, "3.0.3"},
		{"/api/bookings/abc", http.StatusUnauthorized, "missing bearer token"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestHealthServerReportsServing(t *testing.T) {
	cfg := testConfig(t)
	s := newServers(cfg, testContainer(cfg))

	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	_, err = s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "cassandra"

	_, _, err := OpenStorage(context.Background(), cfg, slog.Default())
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestOpenRedisDisabled(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, OpenRedis(context.Background(), cfg, slog.Default()))
}
