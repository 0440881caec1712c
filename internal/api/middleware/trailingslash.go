package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewTrailingSlash appends a missing trailing slash to request paths under
// prefix, so /api/dataset and /api/dataset/ reach the same route. Register
// it with Echo.Pre so it runs before routing.
func NewTrailingSlash(prefix string) echo.MiddlewareFunc {
	prefix = strings.TrimSuffix(prefix, "/")
	return middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path != prefix && !strings.HasPrefix(path, prefix+"/")
		},
	})
}
