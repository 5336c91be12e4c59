package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/api/middleware"
	"github.com/eldtechnologies/wisp/internal/handlers"
	"github.com/eldtechnologies/wisp/internal/relay"
	"github.com/eldtechnologies/wisp/internal/store"
	"github.com/eldtechnologies/wisp/internal/ws"
)

// Deps holds everything the router wires together.
type Deps struct {
	Logger      zerolog.Logger
	Messages    store.MessageStore
	Coordinator *relay.Coordinator
	Dispatcher  *relay.Dispatcher
	Redis       *redis.Client // optional, enables rate limiting
	Whitelist   []string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimw.Recoverer)

	// Rate limiting, only when Redis is configured
	if deps.Redis != nil {
		limiter := middleware.NewRateLimiter(deps.Redis, deps.Logger, deps.Whitelist)
		r.Use(limiter.Middleware)
	}

	// CORS - the web client is served from a different origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(deps.Messages, deps.Coordinator)
	wsHandler := ws.NewHandler(deps.Coordinator, deps.Dispatcher, deps.Logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/online", h.GetOnline)
	r.Get("/messages/{userA}/{userB}", h.GetHistory)

	// Live connection endpoint: join, send, and presence ride this socket
	r.Method(http.MethodGet, "/ws", wsHandler)

	return r
}
