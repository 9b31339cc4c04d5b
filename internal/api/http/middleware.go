package httpapi

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/ratelimiter"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
)

type ctxKey string

const (
	subjectCtx ctxKey = "subject"
	peerCtx    ctxKey = "peer"
)

// SubjectFromContext returns the authenticated caller set by the auth middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectCtx).(string)
	return subject, ok && subject != ""
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectCtx, subject)
}

func AuthTokenMiddleware(provider identity.IProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			subject, err := provider.VerifyToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Debug().Err(err).Msg("unauthorized request")
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

// RateLimiterMiddleware limits per client IP. The limiter failing open keeps the
// API up when redis is unreachable.
func RateLimiterMiddleware(limiter ratelimiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// capturePeer keeps the socket address before RealIP rewrites RemoteAddr from
// client controlled headers.
func capturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), peerCtx, r.RemoteAddr)))
	})
}

// clientIP is the socket peer, never a forwarded header.
func clientIP(r *http.Request) string {
	addr, ok := r.Context().Value(peerCtx).(string)
	if !ok {
		addr = r.RemoteAddr
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func securityHeaders(next http.Handler) http.Handler {
	return middleware.SetHeader("X-Content-Type-Options", "nosniff")(
		middleware.SetHeader("X-Frame-Options", "SAMEORIGIN")(
			middleware.SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")(
				middleware.SetHeader("X-XSS-Protection", "1; mode=block")(next))))
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
