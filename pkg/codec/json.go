package codec

import (
	"encoding/json"
	"strings"
)

// JSON decodes and encodes application/json bodies using encoding/json.
type JSON struct{}

// Matches reports whether contentType is application/json or a +json suffix
// type such as application/problem+json.
func (JSON) Matches(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Unmarshal decodes a JSON document into v.
func (JSON) Unmarshal(data []byte, _ string, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal encodes v as a JSON document.
func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
