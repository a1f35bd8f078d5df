package middleware

import (
	"strconv"
	"time"

	"collateral-ledger/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Metrics records request count and latency per route template.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.ObserveHTTP(c.Request().Method, path, strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
			return nil
		}
	}
}

// RateLimit throttles per caller (X-Caller-Id, falling back to the client IP).
// A non-positive rps disables it.
func RateLimit(rps float64) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id := c.Request().Header.Get(HeaderCallerID); id != "" {
				return id, nil
			}
			return c.RealIP(), nil
		},
	})
}
