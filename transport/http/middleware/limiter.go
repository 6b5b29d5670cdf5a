package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	"libres/transport/http/response"
)

const cacheKeyRateLimit = "limiter"

// RateLimit counts requests per client address and user agent in Redis. When Redis is
// unreachable requests are let through rather than failing the whole API.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	limits := a.config.App.RateLimiter

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limits.Enable {
				next.ServeHTTP(w, r)

				return
			}

			key := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			count, err := a.hit(r.Context(), key, limits.MaxRequests, limits.WindowSeconds)

			switch {
			case errors.Is(err, errLimitReached):
				response.WithRequestLimitExceeded(w)

				return
			case err != nil:
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, request allowed")
				next.ServeHTTP(w, r)

				return
			}

			header := w.Header()
			header.Set(constant.RequestHeaderRateLimit, strconv.Itoa(limits.MaxRequests))
			header.Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limits.MaxRequests-count)))
			header.Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limits.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

var errLimitReached = errors.New("rate limit reached")

// hit records one request under key and returns the count in the current window.
func (a *appMiddleware) hit(ctx context.Context, key string, limit, window int) (int, error) {
	var count int

	err := a.cache.Get(ctx, key, &count)

	switch {
	case errors.Is(err, cache.Nil):
		count = 0
	case err != nil:
		return 0, err //nolint:wrapcheck
	}

	count++
	if count > limit {
		return count, errLimitReached
	}

	if err = a.cache.Save(ctx, key, count, window); err != nil {
		return 0, err //nolint:wrapcheck
	}

	return count, nil
}

func (a *appMiddleware) getUA(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != "" {
		return ua
	}

	return "unknown"
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func (a *appMiddleware) getClientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
