package render

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is an error with a status code and message. When returned from a
// handler it controls the exact error response sent to the client.
type HTTPError struct {
	StatusCode int    // HTTP status code (e.g., 400, 404, 500)
	Message    string // Error message sent in the response body
}

// Error implements the error interface in the format "status: message".
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Render implements Renderable.
func (e *HTTPError) Render() (*Response, error) {
	r := Text(e.Message)
	r.Status = e.StatusCode
	return r, nil
}

// NewHTTPError creates a new HTTPError with the given status code and
// message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConvertError maps a handler error to a response. Errors implementing
// Renderable (anywhere in their unwrap chain) control their own conversion.
// Anything else maps to a generic 500; the second return value reports
// whether the error converted itself, so callers can log unhandled detail
// server-side without exposing it.
func ConvertError(err error) (*Response, bool) {
	var renderable Renderable
	if errors.As(err, &renderable) {
		if resp, rerr := renderable.Render(); rerr == nil {
			return resp, true
		}
	}

	resp := Text("Internal Server Error")
	resp.Status = http.StatusInternalServerError
	return resp, false
}
