// Package render converts handler results into wire responses.
//
// Every handler return shape passes through one conversion point: plain text,
// raw bytes, a pre-built *Response, a JSON wrapper, or a composed value
// carrying status, headers, and cookies alongside a single body. Errors flow
// through the same contract, letting handler-defined error types control
// their own status and body.
package render

import (
	"fmt"
	"net/http"

	"github.com/trellis-http/trellis/pkg/codec"
)

// Response is a fully materialized wire response. A zero Status means 200.
type Response struct {
	Status  int
	Header  http.Header
	Cookies []*http.Cookie
	Body    []byte
}

// Renderable is any value convertible into a wire response.
type Renderable interface {
	Render() (*Response, error)
}

// Render implements Renderable so pre-built responses pass through untouched.
func (r *Response) Render() (*Response, error) { return r, nil }

// Write sends the response on w. Headers and cookies are applied before the
// status line; a zero status defaults to 200.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	for _, c := range r.Cookies {
		http.SetCookie(w, c)
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return err
		}
	}
	return nil
}

// setHeader adds a header value, allocating the map on first use.
func (r *Response) setHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Add(key, value)
}

// Text builds a plain-text response.
func Text(body string) *Response {
	r := &Response{Body: []byte(body)}
	r.setHeader("Content-Type", "text/plain; charset=utf-8")
	return r
}

// Blob builds a response with an explicit content type.
func Blob(contentType string, body []byte) *Response {
	r := &Response{Body: body}
	r.setHeader("Content-Type", contentType)
	return r
}

// jsonValue defers marshaling to render time so handlers can return plain Go
// values.
type jsonValue struct {
	value any
}

// JSON wraps a value for structured rendering as application/json.
func JSON(v any) Renderable {
	return jsonValue{value: v}
}

func (j jsonValue) Render() (*Response, error) {
	body, err := codec.JSON{}.Marshal(j.value)
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	r := &Response{Body: body}
	r.setHeader("Content-Type", "application/json")
	return r, nil
}

// Option decorates a composed response with status, header, or cookie
// metadata.
type Option func(*Response)

// Status sets the response status. The last Status option wins.
func Status(code int) Option {
	return func(r *Response) { r.Status = code }
}

// Header adds a response header. Repeated options accumulate.
func Header(key, value string) Option {
	return func(r *Response) { r.setHeader(key, value) }
}

// SetCookie adds a Set-Cookie header for c. Repeated options accumulate.
func SetCookie(c *http.Cookie) Option {
	return func(r *Response) { r.Cookies = append(r.Cookies, c) }
}

// composed pairs one body value with response metadata. Taking the body as a
// single argument to New makes a second body unrepresentable.
type composed struct {
	body any
	opts []Option
}

// New composes a response from one body value plus metadata options, e.g.
//
//	render.New(render.JSON(user), render.Status(http.StatusCreated))
//
// A nil body yields an empty-bodied response.
func New(body any, opts ...Option) Renderable {
	return composed{body: body, opts: opts}
}

func (c composed) Render() (*Response, error) {
	resp, err := Convert(c.body)
	if err != nil {
		return nil, err
	}
	for _, opt := range c.opts {
		opt(resp)
	}
	return resp, nil
}

// Convert maps a handler result to a response. Strings and byte slices
// render directly; everything else must be Renderable.
func Convert(v any) (*Response, error) {
	if v == nil {
		return &Response{}, nil
	}
	switch t := v.(type) {
	case Renderable:
		return t.Render()
	case string:
		return Text(t), nil
	case []byte:
		return Blob("application/octet-stream", t), nil
	}
	return nil, fmt.Errorf("cannot render value of type %T", v)
}
