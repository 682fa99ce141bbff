package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/dto"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
)

// PanicResponder writes the response for a recovered panic. The router
// passes one that renders the HTML error page.
type PanicResponder func(c *gin.Context)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level
//   - Answers 500 through respond, or with the JSON error envelope when respond is nil
//
// Apply it first so it catches panics from all later middleware.
func Recovery(logger *slog.Logger, respond PanicResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctxLogger := logging.FromContextOr(c.Request.Context(), logger)
			traceID := TraceID(c)

			ctxLogger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			if respond != nil {
				c.Status(http.StatusInternalServerError)
				respond(c)
				c.Abort()

				return
			}

			errResp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
			if traceID != "" {
				errResp.TraceID = traceID
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
		}()

		c.Next()
	}
}

// TraceID returns the current span's trace ID, or "".
func TraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}
