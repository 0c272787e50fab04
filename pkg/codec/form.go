package codec

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Form decodes application/x-www-form-urlencoded bodies.
//
// Target values may be url.Values (raw), map[string]string (first value per
// key), or a struct whose fields carry `form:"name"` tags. Untagged exported
// struct fields use the lowercased field name.
type Form struct{}

// Matches reports whether contentType is a URL-encoded form.
func (Form) Matches(contentType string) bool {
	return mediaType(contentType) == "application/x-www-form-urlencoded"
}

// Unmarshal decodes form data into v.
func (Form) Unmarshal(data []byte, _ string, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return assignValues(values, v)
}

// assignValues writes parsed key/value pairs into the decode target. It is
// shared by the form and multipart codecs.
func assignValues(values url.Values, v any) error {
	switch target := v.(type) {
	case *url.Values:
		*target = values
		return nil
	case *map[string]string:
		m := make(map[string]string, len(values))
		for key := range values {
			m[key] = values.Get(key)
		}
		*target = m
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("form decode target must be *url.Values, *map[string]string, or a struct pointer, got %T", v)
	}

	elem := rv.Elem()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("form")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}

		if err := setField(elem.Field(i), raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

// setField converts raw form values into a single struct field. Repeated
// keys fill slice fields; scalar fields take the first value.
func setField(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		field.Set(reflect.ValueOf(append([]string(nil), raw...)))
		return nil
	}
	return setScalar(field, raw[0])
}

func setScalar(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool %q", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float %q", raw)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
