// Package extract derives typed handler arguments from an incoming request.
//
// Each extractor reads one part of the request context (path bindings, query
// string, headers, cookies, body, shared state) and produces either a value
// or a Rejection. Extractors are independent of each other except for body
// consumption: the body stream is consumed at most once per request.
package extract

import (
	"fmt"
	"net/http"

	"github.com/trellis-http/trellis/pkg/render"
)

// RejectionKind classifies why an extractor failed.
type RejectionKind int

const (
	// MissingField means a required value (header, cookie, query key, path
	// binding) was not present.
	MissingField RejectionKind = iota

	// TypeMismatch means a value was present but could not be parsed into
	// the requested type.
	TypeMismatch

	// DecodeError means a body could not be decoded: malformed encoding,
	// schema mismatch, or an unsupported content type.
	DecodeError

	// NotFound means the referenced resource does not exist; extractors use
	// it for lookups that map naturally to 404.
	NotFound

	// BodyAlreadyConsumed means a second extractor attempted to read the
	// single-consumption body stream.
	BodyAlreadyConsumed
)

// String returns a short name for the kind.
func (k RejectionKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case TypeMismatch:
		return "type mismatch"
	case DecodeError:
		return "decode error"
	case NotFound:
		return "not found"
	case BodyAlreadyConsumed:
		return "body already consumed"
	}
	return fmt.Sprintf("rejection(%d)", int(k))
}

// Rejection is a typed extraction failure, distinct from a handler-level
// error. It implements error and render.Renderable, so an unhandled
// rejection converts to a response through the same contract as everything
// else.
type Rejection struct {
	Kind   RejectionKind
	Detail string
	Err    error // underlying cause, if any; not exposed in responses
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	if r.Detail == "" {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
}

// Unwrap returns the underlying cause.
func (r *Rejection) Unwrap() error { return r.Err }

// Status returns the HTTP status the rejection maps to: 404 for NotFound,
// 400 for everything else.
func (r *Rejection) Status() int {
	if r.Kind == NotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// Render implements render.Renderable. The body carries the rejection
// description but never the underlying error.
func (r *Rejection) Render() (*render.Response, error) {
	resp := render.Text(r.Error())
	resp.Status = r.Status()
	return resp, nil
}

func reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
