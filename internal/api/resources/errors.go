package resources

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Code          int               `json:"code"`
	CorrelationID string            `json:"correlation_id"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryHTTP):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusGatewayTimeout
	case errors.IsCategory(err, errors.CategoryCancellation):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the reply for err. Server-side failures do not
// expose the underlying error text.
func NewErrorResponse(err error, code int, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	resp := &ErrorResponse{
		Error:         err.Error(),
		Message:       http.StatusText(code),
		Code:          code,
		CorrelationID: correlationID,
		Fields:        errors.Fields(err),
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			resp.Error = msg
		}
	}

	if code >= http.StatusInternalServerError {
		resp.Error = "internal server error"
	}
	return resp
}

// WriteError logs err and writes its ErrorResponse. The request ID set by
// the request ID middleware doubles as the correlation ID.
func WriteError(c echo.Context, err error, log logger.Logger) {
	if c.Response().Committed {
		return
	}

	code := StatusFor(err)
	correlationID := c.Response().Header().Get(echo.HeaderXRequestID)
	resp := NewErrorResponse(err, code, correlationID)

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("method", c.Request().Method),
		logger.String("path", c.Request().URL.Path),
		logger.Int("code", code),
		logger.Error(err),
	}
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Debug("API client error", fields...)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, resp)
	}
	if writeErr != nil {
		log.Warn("failed to write error response", logger.Error(writeErr))
	}
}
