package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/trellis-http/trellis/pkg/common"
)

type traceIDKey struct{}

// TraceIDKey is the context key under which the trace ID is stored.
var TraceIDKey = traceIDKey{}

// Trace creates a middleware that generates a unique trace ID for each
// request and adds it to the request context, allowing request correlation
// across logs. An incoming X-Request-ID header is honored so upstream
// proxies can supply their own ID.
func Trace() common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Request-ID")
			if traceID == "" {
				traceID = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", traceID)
			ctx := context.WithValue(r.Context(), TraceIDKey, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTraceID extracts the trace ID from the request context. Returns an
// empty string if no trace ID is present.
func GetTraceID(r *http.Request) string {
	return GetTraceIDFromContext(r.Context())
}

// GetTraceIDFromContext extracts the trace ID from a context. Returns an
// empty string if no trace ID is present.
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}
