package codec

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
)

// maxPartMemory bounds the size of a single multipart part read into memory.
const maxPartMemory = 32 << 20 // 32 MiB

// File is one uploaded file from a multipart form.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// FormData is the decoded shape of a multipart/form-data body: plain value
// fields plus any file parts, in the order they appeared.
type FormData struct {
	Values url.Values
	Files  []File
}

// Value returns the first value for a plain field, or "" if absent.
func (f *FormData) Value(name string) string {
	return f.Values.Get(name)
}

// File returns the first file uploaded under the given field name.
func (f *FormData) File(name string) (File, bool) {
	for _, file := range f.Files {
		if file.Field == name {
			return file, true
		}
	}
	return File{}, false
}

// Multipart decodes multipart/form-data bodies.
//
// Target values may be *FormData (files preserved) or any target supported
// by the form codec (value fields only, file parts ignored).
type Multipart struct{}

// Matches reports whether contentType is multipart form data.
func (Multipart) Matches(contentType string) bool {
	return mediaType(contentType) == "multipart/form-data"
}

// Unmarshal decodes a multipart body into v. The boundary is taken from the
// Content-Type parameters, so the full header value must be passed.
func (Multipart) Unmarshal(data []byte, contentType string, v any) error {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("parse content type: %w", err)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return fmt.Errorf("multipart content type missing boundary")
	}

	form := FormData{Values: make(url.Values)}
	reader := multipart.NewReader(bytes.NewReader(data), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read multipart: %w", err)
		}

		content, err := io.ReadAll(io.LimitReader(part, maxPartMemory))
		part.Close()
		if err != nil {
			return fmt.Errorf("read multipart part %q: %w", part.FormName(), err)
		}

		if filename := part.FileName(); filename != "" {
			form.Files = append(form.Files, File{
				Field:       part.FormName(),
				Filename:    filename,
				ContentType: part.Header.Get("Content-Type"),
				Data:        content,
			})
			continue
		}
		form.Values.Add(part.FormName(), string(content))
	}

	if target, ok := v.(*FormData); ok {
		*target = form
		return nil
	}
	return assignValues(form.Values, v)
}
