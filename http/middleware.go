package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// AuthRealm is the realm sent in the basic auth challenge.
const AuthRealm = "Rclone Index"

// SettingsMiddleware reads the per-request settings once and stores them in
// the request context.
func SettingsMiddleware(source SettingsSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			settings, err := source.Settings()
			if err != nil {
				HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSettings(r.Context(), settings)))
		})
	}
}

// BasicAuthMiddleware enforces HTTP basic auth when the request settings
// carry both a username and a password. Otherwise requests pass through.
func BasicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings := SettingsFromContext(r.Context())
		if !settings.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !credentialsMatch(user, pass, settings) {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", AuthRealm))
			writeUnauthorized(w)
			slog.Debug("basic auth rejected", "path", r.URL.Path, "present", ok)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func credentialsMatch(user, pass string, s RequestSettings) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.Password)) == 1
	return userOK && passOK
}

// RateLimitMiddleware waits up to maxWait for a token from limiter and
// answers 429 when none becomes available in time. A zero maxWait never
// waits.
func RateLimitMiddleware(limiter *rate.Limiter, maxWait time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := acquire(r.Context(), limiter, maxWait); err != nil {
				slog.Debug("rate limited", "path", r.URL.Path, "err", err)
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func acquire(ctx context.Context, limiter *rate.Limiter, maxWait time.Duration) error {
	if maxWait <= 0 {
		if !limiter.Allow() {
			return errors.New("no token available")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()
	return limiter.Wait(ctx)
}

// LogMiddleware logs one line per request.
func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
