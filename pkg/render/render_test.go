package render

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertString(t *testing.T) {
	resp, err := Convert("Hello, world!")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Status) // zero means 200 at write time
	assert.Equal(t, "Hello, world!", string(resp.Body))
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestConvertBytes(t *testing.T) {
	resp, err := Convert([]byte{0x1, 0x2})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, []byte{0x1, 0x2}, resp.Body)
}

func TestConvertNil(t *testing.T) {
	resp, err := Convert(nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Body)
}

func TestConvertPassesResponsesThrough(t *testing.T) {
	orig := Text("hi")
	resp, err := Convert(orig)
	require.NoError(t, err)
	assert.Same(t, orig, resp)
}

func TestConvertRejectsUnknownTypes(t *testing.T) {
	_, err := Convert(struct{ X int }{X: 1})
	assert.Error(t, err)
}

func TestJSONRenders(t *testing.T) {
	resp, err := Convert(JSON(map[string]string{"token": "Token"}))
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"token":"Token"}`, string(resp.Body))
}

func TestJSONRenderFailure(t *testing.T) {
	_, err := Convert(JSON(make(chan int)))
	assert.Error(t, err)
}

func TestNewComposesStatusHeadersCookies(t *testing.T) {
	resp, err := Convert(New(
		JSON(map[string]string{"id": "1"}),
		Status(http.StatusCreated),
		Header("X-Powered-By", "trellis"),
		Header("X-Extra", "a"),
		Header("X-Extra", "b"),
		SetCookie(&http.Cookie{Name: "name", Value: "Eko"}),
	))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "trellis", resp.Header.Get("X-Powered-By"))
	assert.Equal(t, []string{"a", "b"}, resp.Header.Values("X-Extra"))
	require.Len(t, resp.Cookies, 1)
	assert.Equal(t, "name=Eko", resp.Cookies[0].String())
}

func TestNewWithNilBody(t *testing.T) {
	resp, err := Convert(New(nil, Status(http.StatusNoContent)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestWriteDefaultsStatusAndSetsCookies(t *testing.T) {
	resp := Text("ok")
	resp.Cookies = append(resp.Cookies, &http.Cookie{Name: "session", Value: "abc"})

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Write(rec))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "session=abc", rec.Header().Get("Set-Cookie"))
}

func TestHTTPErrorRoundTrip(t *testing.T) {
	err := NewHTTPError(http.StatusTeapot, "short and stout")
	assert.Equal(t, "418: short and stout", err.Error())

	resp, rerr := err.Render()
	require.NoError(t, rerr)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.Equal(t, "short and stout", string(resp.Body))
}

func TestConvertErrorUsesRenderableErrors(t *testing.T) {
	resp, handled := ConvertError(NewHTTPError(http.StatusConflict, "already exists"))
	assert.True(t, handled)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "already exists", string(resp.Body))
}

func TestConvertErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("saving product: %w", NewHTTPError(http.StatusBadRequest, "bad id"))

	resp, handled := ConvertError(wrapped)
	assert.True(t, handled)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestConvertErrorFallsBackTo500(t *testing.T) {
	resp, handled := ConvertError(fmt.Errorf("database on fire"))
	assert.False(t, handled)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	// Internal detail must not leak into the body.
	assert.NotContains(t, string(resp.Body), "database")
}
