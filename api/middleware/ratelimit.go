package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// Limiter is the counting surface rate limits run on.
type Limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitByIP caps requests per client address within a fixed window. The
// name keys the counter so different endpoints do not share budgets. A broken
// limiter fails open; auth must not go down with Redis.
func RateLimitByIP(limiter Limiter, logg *logger.Logger, name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := fmt.Sprintf("%s:ip:%s", name, clientIP(r))
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope, int64(limit), window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate limiter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.Error(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		// First hop is the client.
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
