package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// RequestIDField is the logrus field (and formatter column) carrying the request ID.
const RequestIDField = "request_id"

type requestIDKey struct{}

// GenerateRequestID creates a new request ID. The full UUID goes on the wire;
// ShortRequestID trims it for log lines.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ShortRequestID returns the first 8 characters of id.
func ShortRequestID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// WithRequestID returns a new context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
