package extract

import (
	"io"
	"net/http"

	"github.com/trellis-http/trellis/pkg/codec"
	"github.com/trellis-http/trellis/pkg/pattern"
)

// RequestContext is the view of one request that extractors read from: the
// underlying request, the path bindings produced by the matcher, the shared
// state container, and the single-consumption body stream.
//
// A RequestContext is created per request and used by one goroutine.
type RequestContext struct {
	req      *http.Request
	bindings pattern.Bindings
	state    *State
	codecs   *codec.Registry

	bodyConsumed bool
}

// NewRequestContext builds the request context for one dispatch. A nil codec
// registry falls back to the default JSON/form/multipart set.
func NewRequestContext(req *http.Request, bindings pattern.Bindings, state *State, codecs *codec.Registry) *RequestContext {
	if codecs == nil {
		codecs = codec.DefaultRegistry()
	}
	if state == nil {
		state = NewState()
	}
	return &RequestContext{
		req:      req,
		bindings: bindings,
		state:    state,
		codecs:   codecs,
	}
}

// Request returns the underlying HTTP request.
func (rc *RequestContext) Request() *http.Request { return rc.req }

// Binding returns the raw text bound to a named path capture.
func (rc *RequestContext) Binding(name string) (string, bool) {
	v, ok := rc.bindings[name]
	return v, ok
}

// ReadBody consumes the body stream. A second call fails with
// BodyAlreadyConsumed; the route-registration check makes that unreachable
// for extractors declared on one route, but middleware-driven reads can
// still trip it.
func (rc *RequestContext) ReadBody() ([]byte, *Rejection) {
	if rc.bodyConsumed {
		return nil, reject(BodyAlreadyConsumed, "request body was already read")
	}
	rc.bodyConsumed = true

	if rc.req.Body == nil {
		return nil, nil
	}
	defer rc.req.Body.Close()

	data, err := io.ReadAll(rc.req.Body)
	if err != nil {
		return nil, &Rejection{Kind: DecodeError, Detail: "failed to read request body", Err: err}
	}
	return data, nil
}
