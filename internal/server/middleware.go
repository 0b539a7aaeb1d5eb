package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/hunt"
	"github.com/playperu/codexhunt/internal/throttle"
)

type ctxKey int

const (
	ctxKeySnapshot ctxKey = iota
)

// sessionMiddleware validates the bearer token and stores the team snapshot
// in the request context. Requests without a valid session never reach next.
func sessionMiddleware(logger *slog.Logger, svc *game.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := svc.Validate(r.Context(), bearerToken(r))
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySnapshot, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func snapshotFrom(r *http.Request) hunt.Snapshot {
	return r.Context().Value(ctxKeySnapshot).(hunt.Snapshot)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// tokenFromQuery moves a ?token= parameter into the Authorization header.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := r.URL.Query().Get("token"); tok != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
		next.ServeHTTP(w, r)
	})
}

// loginThrottle limits login attempts per client address and clears the count
// after a successful login. When the limiter's backend is unavailable requests
// are let through.
func loginThrottle(limiter *throttle.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.WarnContext(r.Context(), "login throttle unavailable", "error", err)
			} else if !ok {
				writeServiceError(w, r, logger, hunt.ErrTooManyAttempts)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() == http.StatusOK {
				if err := limiter.Reset(r.Context(), ip); err != nil {
					logger.WarnContext(r.Context(), "resetting login throttle", "error", err)
				}
			}
		})
	}
}

// clientIP is the TCP peer, or the forwarded client address when the router
// trusts a proxy and RealIP has rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
