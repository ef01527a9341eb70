// Package http provides the REST API of the chartsmith service.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
)

const (
	// requestIDKey is the echo context key for the request ID.
	requestIDKey = "request_id"

	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// MsgInternal replaces the message of every unexpected failure.
const MsgInternal = "Internal server error"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Details []cserrors.Issue `json:"details,omitempty"`
}

// MessageResponse is the body of successful mutations.
type MessageResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// RequestID adds a unique request_id to each request.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Check if request_id is provided in header, otherwise generate one
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)
			c.Set(requestIDKey, requestID)
			return next(c)
		}
	}
}

// Recovery turns a handler panic into an internal error.
func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = cserrors.NewInternalError("handler panicked", fmt.Errorf("panic: %v", rec))
				}
			}()
			return next(c)
		}
	}
}

// RequestLogger logs one line per request after the response is written.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			entry := log.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"duration":   time.Since(start).String(),
				"request_id": GetRequestID(c),
			})
			if c.Response().Status >= http.StatusInternalServerError {
				entry.Warn("request failed")
			} else {
				entry.Debug("request served")
			}
			return nil
		}
	}
}

// CORS wraps rs/cors for echo. An empty origin list allows every origin.
func CORS(origins []string) echo.MiddlewareFunc {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, "ETag"},
		MaxAge:         600,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return echo.WrapMiddleware(cors.New(opts).Handler)
}

// ErrorHandler writes every handler error as an ErrorResponse. Categorized
// errors map through cserrors.HTTPStatus; anything else that maps to 500 is
// logged with its cause and answered with MsgInternal. echo errors keep
// their own status and message.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := http.StatusInternalServerError, ErrorResponse{Error: MsgInternal}
		var he *echo.HTTPError
		var ce *cserrors.ChartError
		switch {
		case errors.As(err, &he):
			status = he.Code
			resp.Error = http.StatusText(he.Code)
			if msg, ok := he.Message.(string); ok && msg != "" {
				resp.Error = msg
			}
		case errors.As(err, &ce):
			status = cserrors.HTTPStatus(ce)
			if status < http.StatusInternalServerError {
				resp.Error = ce.Message
				resp.Details = ce.Issues
			}
		}

		if status >= http.StatusInternalServerError && he == nil {
			resp = ErrorResponse{Error: MsgInternal}
			log.WithFields(logrus.Fields{
				"request_id": GetRequestID(c),
				"path":       c.Request().URL.Path,
			}).WithError(err).Error("internal error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}

// GetRequestID retrieves the request ID from the echo context.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return ""
}
