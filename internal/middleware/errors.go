package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockify/internal/apperr"
)

// Errors renders the last error pushed with c.Error as the JSON envelope.
// Untyped errors become a 500 and are reported to Sentry.
func Errors(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperr.New(http.StatusServiceUnavailable, "Request timed out")
		}
		appErr := apperr.From(err)

		if appErr.Status >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", RequestIDFrom(c)).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetTag("request_id", RequestIDFrom(c))
			hub.Scope().SetTag("route", c.FullPath())
			hub.CaptureException(err)
		}

		c.JSON(appErr.Status, gin.H{
			"success": false,
			"message": appErr.Message,
		})
	}
}
