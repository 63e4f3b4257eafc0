package api

import (
	"log/slog"
	"net/http"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Logger         *slog.Logger
	Tokens         TokenParser
	AllowedOrigins []string
	Production     bool

	Bookings *BookingHandler
	Events   *EventHandler
	Artists  *ArtistHandler
	News     *NewsHandler
	Users    *UserHandler

	// Extra mounts outside /api, e.g. /metrics and /swagger.
	Extra map[string]http.Handler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(RequestID())
	r.Use(StructuredLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "music-freak"})
	})
	for path, h := range cfg.Extra {
		r.Any(path, gin.WrapH(h))
	}

	authn := Authenticate(cfg.Tokens)
	authenticated := []gin.HandlerFunc{authn}
	admin := []gin.HandlerFunc{authn, RequireRole(domain.RoleAdmin)}
	editor := []gin.HandlerFunc{authn, RequireRole(domain.RoleAdmin, domain.RoleArtist)}

	v1 := r.Group("/api")
	if cfg.Users != nil {
		cfg.Users.Register(v1.Group("/users"), authenticated...)
	}
	if cfg.Events != nil {
		cfg.Events.Register(v1.Group("/events"), admin...)
	}
	if cfg.Artists != nil {
		cfg.Artists.Register(v1.Group("/artists"), admin, editor)
	}
	if cfg.News != nil {
		cfg.News.Register(v1.Group("/news"), authenticated, admin)
	}
	if cfg.Bookings != nil {
		cfg.Bookings.Register(v1.Group("/bookings", authn))
	}

	return r
}
