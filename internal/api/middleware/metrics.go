package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/graphing-app/internal/observability/metrics"
)

// unmatchedPath labels requests that hit no route so path cardinality stays bounded.
const unmatchedPath = "unmatched"

// NewMetrics records request counts, latency and response sizes. Requests
// are labelled by route pattern rather than the raw URL.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}

			m.RequestStarted()
			start := time.Now()
			err := next(c)
			if err != nil {
				// Render the error now so the recorded status matches what the client sees.
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = unmatchedPath
			}
			m.RecordRequest(c.Request().Method, path, c.Response().Status, c.Response().Size, time.Since(start))
			return err
		}
	}
}
