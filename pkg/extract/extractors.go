package extract

import (
	"fmt"
	"strconv"

	"github.com/trellis-http/trellis/pkg/codec"
)

// Extractor derives one handler argument from the request context. Extract
// returns either the value or a Rejection, never both. ConsumesBody lets the
// router reject two body-consuming extractors on one route at registration
// time instead of at request time.
type Extractor interface {
	Extract(rc *RequestContext) (any, *Rejection)
	ConsumesBody() bool
}

// extractorFunc adapts a closure into an Extractor.
type extractorFunc struct {
	fn   func(rc *RequestContext) (any, *Rejection)
	body bool
}

func (e extractorFunc) Extract(rc *RequestContext) (any, *Rejection) { return e.fn(rc) }
func (e extractorFunc) ConsumesBody() bool                           { return e.body }

// Path extracts the raw text bound to a named path capture.
func Path(name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		v, ok := rc.Binding(name)
		if !ok {
			return nil, reject(MissingField, "path parameter %q is not bound by the route pattern", name)
		}
		return v, nil
	}}
}

// PathAs extracts a named path capture parsed into T. A parse failure is a
// TypeMismatch rejection. Supported types: string, bool, the sized signed
// and unsigned integers, and floats.
func PathAs[T any](name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		raw, ok := rc.Binding(name)
		if !ok {
			return nil, reject(MissingField, "path parameter %q is not bound by the route pattern", name)
		}
		v, err := parsePrimitive[T](raw)
		if err != nil {
			return nil, &Rejection{Kind: TypeMismatch, Detail: "path parameter " + strconv.Quote(name) + ": " + err.Error(), Err: err}
		}
		return v, nil
	}}
}

// Query extracts the full query string as a map. Duplicate keys resolve to
// the last value.
func Query() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		values := rc.Request().URL.Query()
		m := make(map[string]string, len(values))
		for key, vs := range values {
			if len(vs) > 0 {
				m[key] = vs[len(vs)-1]
			}
		}
		return m, nil
	}}
}

// QueryValues extracts the parsed query string as url.Values, preserving
// repeated keys.
func QueryValues() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		return rc.Request().URL.Query(), nil
	}}
}

// QueryValue extracts one required query key. Absence is a MissingField
// rejection; duplicate keys resolve to the last value.
func QueryValue(name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		vs, ok := rc.Request().URL.Query()[name]
		if !ok || len(vs) == 0 {
			return nil, reject(MissingField, "query parameter %q is required", name)
		}
		return vs[len(vs)-1], nil
	}}
}

// QueryValueAs extracts one required query key parsed into T.
func QueryValueAs[T any](name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		vs, ok := rc.Request().URL.Query()[name]
		if !ok || len(vs) == 0 {
			return nil, reject(MissingField, "query parameter %q is required", name)
		}
		v, err := parsePrimitive[T](vs[len(vs)-1])
		if err != nil {
			return nil, &Rejection{Kind: TypeMismatch, Detail: "query parameter " + strconv.Quote(name) + ": " + err.Error(), Err: err}
		}
		return v, nil
	}}
}

// Header extracts one required request header. Absence is a MissingField
// rejection; a header present with an empty value extracts the empty string.
func Header(name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		vs := rc.Request().Header.Values(name)
		if len(vs) == 0 {
			return nil, reject(MissingField, "header %q is required", name)
		}
		return vs[0], nil
	}}
}

// Cookie extracts one required cookie value from the Cookie request header.
// Absence is a MissingField rejection.
func Cookie(name string) Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		c, err := rc.Request().Cookie(name)
		if err != nil {
			return nil, reject(MissingField, "cookie %q is required", name)
		}
		return c.Value, nil
	}}
}

// Cookies extracts all request cookies as a name-to-value map.
func Cookies() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		m := make(map[string]string)
		for _, c := range rc.Request().Cookies() {
			m[c.Name] = c.Value
		}
		return m, nil
	}}
}

// Method extracts the request method.
func Method() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		return rc.Request().Method, nil
	}}
}

// URI extracts the request URL.
func URI() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		return rc.Request().URL, nil
	}}
}

// Request extracts the underlying *http.Request. The body may already be
// consumed by another extractor on the route.
func Request() Extractor {
	return extractorFunc{fn: func(rc *RequestContext) (any, *Rejection) {
		return rc.Request(), nil
	}}
}

// Text consumes the body as a string.
func Text() Extractor {
	return extractorFunc{body: true, fn: func(rc *RequestContext) (any, *Rejection) {
		data, rej := rc.ReadBody()
		if rej != nil {
			return nil, rej
		}
		return string(data), nil
	}}
}

// Bytes consumes the body as raw bytes.
func Bytes() Extractor {
	return extractorFunc{body: true, fn: func(rc *RequestContext) (any, *Rejection) {
		data, rej := rc.ReadBody()
		if rej != nil {
			return nil, rej
		}
		return data, nil
	}}
}

// JSON consumes the body and decodes it as JSON into T. A non-JSON content
// type, malformed document, or schema mismatch is a DecodeError rejection.
func JSON[T any]() Extractor {
	return decodeBody[T](codec.JSON{})
}

// Form consumes the body and decodes it as a URL-encoded form into T.
func Form[T any]() Extractor {
	return decodeBody[T](codec.Form{})
}

// Multipart consumes the body and decodes it as multipart form data,
// yielding a *codec.FormData with value fields and file parts.
func Multipart() Extractor {
	return extractorFunc{body: true, fn: func(rc *RequestContext) (any, *Rejection) {
		c := codec.Multipart{}
		contentType := rc.Request().Header.Get("Content-Type")
		if !c.Matches(contentType) {
			return nil, reject(DecodeError, "unexpected content type %q", contentType)
		}
		data, rej := rc.ReadBody()
		if rej != nil {
			return nil, rej
		}
		var form codec.FormData
		if err := c.Unmarshal(data, contentType, &form); err != nil {
			return nil, &Rejection{Kind: DecodeError, Detail: err.Error(), Err: err}
		}
		return &form, nil
	}}
}

// Body consumes the body and decodes it into T using the codec registry
// keyed by the request's Content-Type. An unsupported content type is a
// DecodeError rejection.
func Body[T any]() Extractor {
	return extractorFunc{body: true, fn: func(rc *RequestContext) (any, *Rejection) {
		data, rej := rc.ReadBody()
		if rej != nil {
			return nil, rej
		}
		var v T
		contentType := rc.Request().Header.Get("Content-Type")
		if err := rc.codecs.Unmarshal(data, contentType, &v); err != nil {
			return nil, &Rejection{Kind: DecodeError, Detail: err.Error(), Err: err}
		}
		return v, nil
	}}
}

func decodeBody[T any](c codec.Codec) Extractor {
	return extractorFunc{body: true, fn: func(rc *RequestContext) (any, *Rejection) {
		contentType := rc.Request().Header.Get("Content-Type")
		if !c.Matches(contentType) {
			return nil, reject(DecodeError, "unexpected content type %q", contentType)
		}
		data, rej := rc.ReadBody()
		if rej != nil {
			return nil, rej
		}
		var v T
		if err := c.Unmarshal(data, contentType, &v); err != nil {
			return nil, &Rejection{Kind: DecodeError, Detail: err.Error(), Err: err}
		}
		return v, nil
	}}
}

// parsePrimitive converts raw segment or parameter text into T.
func parsePrimitive[T any](raw string) (T, error) {
	var zero T
	var out any
	var err error

	switch any(zero).(type) {
	case string:
		out = raw
	case bool:
		out, err = strconv.ParseBool(raw)
	case int:
		out, err = strconv.Atoi(raw)
	case int8:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 8)
		out = int8(n)
	case int16:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 16)
		out = int16(n)
	case int32:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 32)
		out = int32(n)
	case int64:
		out, err = strconv.ParseInt(raw, 10, 64)
	case uint:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, strconv.IntSize)
		out = uint(n)
	case uint8:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 8)
		out = uint8(n)
	case uint16:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 16)
		out = uint16(n)
	case uint32:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 32)
		out = uint32(n)
	case uint64:
		out, err = strconv.ParseUint(raw, 10, 64)
	case float32:
		var f float64
		f, err = strconv.ParseFloat(raw, 32)
		out = float32(f)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	default:
		return zero, fmt.Errorf("unsupported parameter type %T", zero)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}
