package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		config     *IPConfig
		expected   string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:1234",
			config:     DefaultIPConfig(),
			expected:   "192.0.2.1",
		},
		{
			name:       "x-forwarded-for first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			config:     &IPConfig{Source: IPSourceXForwardedFor, TrustProxy: true},
			expected:   "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			config:     &IPConfig{Source: IPSourceXRealIP, TrustProxy: true},
			expected:   "203.0.113.9",
		},
		{
			name:       "untrusted proxy falls back to remote addr",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			config:     &IPConfig{Source: IPSourceXForwardedFor, TrustProxy: false},
			expected:   "10.0.0.1",
		},
		{
			name:       "ipv6 with port",
			remoteAddr: "[2001:db8::1]:1234",
			config:     DefaultIPConfig(),
			expected:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractClientIP(req, tt.config); got != tt.expected {
				t.Errorf("Expected IP %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var seen string
	handler := ClientIPMiddleware(DefaultIPConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "192.0.2.1" {
		t.Errorf("Expected client IP from context, got %q", seen)
	}
}
