package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTraceGeneratesID(t *testing.T) {
	var seen string
	handler := Trace()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("Expected a generated trace ID in the request context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}
}

func TestTraceHonorsIncomingID(t *testing.T) {
	var seen string
	handler := Trace()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "incoming-id")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "incoming-id" {
		t.Errorf("Expected incoming trace ID to be kept, got %q", seen)
	}
}

func TestGetTraceIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetTraceID(req); got != "" {
		t.Errorf("Expected empty trace ID, got %q", got)
	}
}
