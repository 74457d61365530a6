package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/render"
)

type Service interface {
	List(ctx context.Context, query rcindex.ListQuery) (rcindex.Listing, error)
}

// RenderFunc turns entries into an HTML page.
type RenderFunc func(entries []rcindex.ListingEntry, currentPath string, darkMode bool) (string, error)

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// DefaultCORSConfig allows any origin to GET and POST with a Content-Type header.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}
}

// RateLimitConfig throttles listing requests. A zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64       `mapstructure:"rps" validate:"min=0"`
	Burst int           `mapstructure:"burst" validate:"min=0"`
	Wait  time.Duration `mapstructure:"wait" validate:"min=0"`
}

// Enabled reports whether listings are throttled.
func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0
}

type HandlerConfig struct {
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Settings  SettingsSource
	// Render defaults to render.Listing.
	Render RenderFunc
}

// Handler serves the directory index.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
// A nil Settings source means no auth and no config overrides.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:  *config,
		service: service,
	}
	if h.config.Settings == nil {
		h.config.Settings = StaticSettings{}
	}
	if h.config.Render == nil {
		h.config.Render = render.Listing
	}
	return h
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LogMiddleware)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.MethodNotAllowed(h.handleMethodNotAllowed)
	r.Get("/healthz", h.handleHealth)
	r.Options("/*", h.handleOptions)

	r.Group(func(r chi.Router) {
		r.Use(SettingsMiddleware(h.config.Settings))
		r.Use(BasicAuthMiddleware)
		if h.config.RateLimit.Enabled() {
			r.Use(RateLimitMiddleware(newLimiter(h.config.RateLimit), h.config.RateLimit.Wait))
		}
		r.Get("/*", h.handleIndex)
	})

	return r
}

func newLimiter(cfg RateLimitConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RPS), burst)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	settings := SettingsFromContext(r.Context())

	listing, err := h.service.List(r.Context(), rcindex.ListQuery{
		Path:   r.URL.Path,
		Source: settings.Source(),
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	page, err := h.config.Render(listing.Entries, listing.Path, settings.DarkMode)
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := WriteHTML(w, http.StatusOK, page); err != nil {
		slog.Warn("failed to write page", "path", listing.Path, "err", err)
	}
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported")
}
