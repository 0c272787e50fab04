// Package codec provides decoding and encoding of request and response
// bodies for the media types the engine understands: JSON, URL-encoded
// forms, and multipart forms.
//
// The engine treats codecs as a pluggable capability keyed by content type:
// "decode these bytes, declared as content type T, into a value of this
// shape, or fail". Codecs never read from the network themselves; callers
// hand them fully-buffered bodies.
package codec

import (
	"fmt"
	"mime"
	"strings"
)

// Codec translates between wire bytes and Go values for one media type.
type Codec interface {
	// Matches reports whether this codec handles the given Content-Type
	// header value (parameters such as charset or boundary included).
	Matches(contentType string) bool

	// Unmarshal decodes data into v. The full Content-Type header value is
	// passed through because some formats (multipart) carry parameters the
	// decoder needs.
	Unmarshal(data []byte, contentType string, v any) error
}

// Registry dispatches decoding by content type.
type Registry struct {
	codecs []Codec
}

// NewRegistry returns a registry holding the given codecs, consulted in
// order.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{codecs: codecs}
}

// DefaultRegistry returns a registry with the JSON, form, and multipart
// codecs installed.
func DefaultRegistry() *Registry {
	return NewRegistry(JSON{}, Form{}, Multipart{})
}

// Unmarshal decodes data into v using the first codec that matches
// contentType. An unrecognized content type is a decode failure.
func (r *Registry) Unmarshal(data []byte, contentType string, v any) error {
	for _, c := range r.codecs {
		if c.Matches(contentType) {
			return c.Unmarshal(data, contentType, v)
		}
	}
	return fmt.Errorf("no codec for content type %q", contentType)
}

// mediaType extracts the media type from a Content-Type header value,
// lowercased and without parameters. Invalid values yield "".
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to the bare prefix so a missing charset parameter does
		// not reject an otherwise plain content type.
		mt = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.ToLower(mt)
}
