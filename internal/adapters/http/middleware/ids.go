// Package middleware provides the gin middleware of the backoffice: request
// and correlation IDs, access logging, panic recovery, the per-request
// deadline and the request-scoped fetch cache.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
)

const (
	// HeaderRequestID identifies one browser request. It is echoed on the
	// response and forwarded to the Zapallo API.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID ties together every request of one operator action,
	// for example the POST and the page it redirects to.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key holding the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyCorrelationID
)

// trackedID describes one ID header carried through a request.
type trackedID struct {
	header string
	ginKey string
	ctxKey ctxKey
	logAs  func(context.Context, string) context.Context
}

var (
	requestID     = trackedID{HeaderRequestID, ContextKeyRequestID, ctxKeyRequestID, logging.WithRequestID}
	correlationID = trackedID{HeaderCorrelationID, ContextKeyCorrelationID, ctxKeyCorrelationID, logging.WithCorrelationID}
)

// handler reuses the incoming header or mints a UUID, then exposes the ID on
// the response, the gin.Context, the request context and the context logger.
func (t trackedID) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(t.header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(t.ginKey, id)
		c.Header(t.header, id)

		ctx := context.WithValue(c.Request.Context(), t.ctxKey, id)
		c.Request = c.Request.WithContext(t.logAs(ctx, id))

		c.Next()
	}
}

// RequestID returns middleware that assigns every request an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return requestID.handler()
}

// CorrelationID returns middleware that propagates X-Correlation-ID, starting
// a new one when the caller sent none.
func CorrelationID() gin.HandlerFunc {
	return correlationID.handler()
}

// getIDFromContext reads a string stored under key, or "".
func getIDFromContext(c *gin.Context, key string) string {
	id, _ := c.Get(key)
	s, _ := id.(string)

	return s
}

// GetRequestID returns the request ID, or "" before RequestID has run.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}

// MustGetRequestID is GetRequestID with "unknown" in place of "".
func MustGetRequestID(c *gin.Context) string {
	return orUnknown(GetRequestID(c))
}

// GetCorrelationID returns the correlation ID, or "" before CorrelationID has run.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// MustGetCorrelationID is GetCorrelationID with "unknown" in place of "".
func MustGetCorrelationID(c *gin.Context) string {
	return orUnknown(GetCorrelationID(c))
}

func orUnknown(id string) string {
	if id == "" {
		return "unknown"
	}

	return id
}

// RequestIDFromContext returns the request ID the API client forwards, or "".
func RequestIDFromContext(ctx context.Context) string {
	return valueOf(ctx, ctxKeyRequestID)
}

// CorrelationIDFromContext returns the correlation ID the API client forwards, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return valueOf(ctx, ctxKeyCorrelationID)
}

// ContextWithRequestID stores a request ID for RequestIDFromContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextWithCorrelationID stores a correlation ID for CorrelationIDFromContext.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

func valueOf(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
