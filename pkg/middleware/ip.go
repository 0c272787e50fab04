package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/trellis-http/trellis/pkg/common"
)

// IPSourceType defines the source for client IP addresses.
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's RemoteAddr field.
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the X-Forwarded-For header.
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header.
	IPSourceXRealIP IPSourceType = "x_real_ip"
)

// IPConfig defines configuration for client IP extraction.
type IPConfig struct {
	// Source specifies where to extract the client IP from.
	Source IPSourceType

	// TrustProxy determines whether to trust proxy headers. If false,
	// RemoteAddr is used regardless of Source.
	TrustProxy bool
}

// DefaultIPConfig returns the default IP configuration.
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

type clientIPKey struct{}

// ClientIP extracts the client IP stored by ClientIPMiddleware. Returns an
// empty string if the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// ClientIPMiddleware creates a middleware that extracts the client IP from
// the request and adds it to the request context for inner stages (logging,
// rate limiting) to use.
func ClientIPMiddleware(config *IPConfig) common.Middleware {
	if config == nil {
		config = DefaultIPConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey{}, extractClientIP(r, config))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractClientIP(r *http.Request, config *IPConfig) string {
	var ip string

	if config.TrustProxy {
		switch config.Source {
		case IPSourceXRealIP:
			ip = r.Header.Get("X-Real-IP")
		case IPSourceRemoteAddr:
			ip = r.RemoteAddr
		default:
			ip = firstForwardedFor(r)
		}
	}
	if ip == "" {
		ip = r.RemoteAddr
	}

	return stripPort(ip)
}

// firstForwardedFor returns the leftmost entry of X-Forwarded-For, which is
// the original client when every hop appends.
func firstForwardedFor(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(xff, ",")[0])
}

// stripPort removes the port from an address if present, handling the
// [IPv6]:port form.
func stripPort(ip string) string {
	if strings.HasPrefix(ip, "[") {
		if end := strings.LastIndex(ip, "]"); end > 0 {
			return ip[1:end]
		}
		return ip
	}

	// More than one colon with no brackets means a bare IPv6 address.
	if strings.Count(ip, ":") > 1 {
		return ip
	}

	if end := strings.LastIndex(ip, ":"); end > 0 {
		return ip[:end]
	}
	return ip
}
