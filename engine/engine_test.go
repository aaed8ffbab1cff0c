// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

func TestSchemesRejectDuplicate(t *testing.T) {
	var s Schemes
	first := func(*SchemeRequest) (*SchemeResponse, error) {
		return &SchemeResponse{Status: http.StatusOK, MimeType: "text/plain", Body: []byte("first")}, nil
	}
	second := func(*SchemeRequest) (*SchemeResponse, error) {
		return &SchemeResponse{Status: http.StatusOK, Body: []byte("second")}, nil
	}

	require.NoError(t, s.Register("webview", first))
	err := s.Register("webview", second)
	require.ErrorIs(t, err, ErrDuplicateScheme)

	resp, err := s.Serve("webview:///index.html")
	require.NoError(t, err)
	assert.Equal(t, "first", string(resp.Body))
	assert.Equal(t, []string{"webview"}, s.Names())
}

func TestSchemesServe(t *testing.T) {
	var s Schemes
	var got *SchemeRequest
	require.NoError(t, s.Register("app", func(r *SchemeRequest) (*SchemeResponse, error) {
		got = r
		return &SchemeResponse{Status: http.StatusOK}, nil
	}))

	assert.True(t, s.Handles("APP:///x"))
	assert.False(t, s.Handles("https://example.com"))

	_, err := s.Serve("app:///ui/main.js")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "app:///ui/main.js", got.URI)

	_, err = s.Serve("other:///x")
	require.Error(t, err)

	require.NoError(t, s.Register("empty", func(*SchemeRequest) (*SchemeResponse, error) {
		return nil, nil
	}))
	resp, err := s.Serve("empty:///x")
	require.Error(t, err)
	assert.Nil(t, resp)

	var nilSchemes *Schemes
	_, ok := nilSchemes.Lookup("app")
	assert.False(t, ok)
}

func TestAttributesContentPrefersURL(t *testing.T) {
	a := DefaultAttributes()
	kind, _ := a.Content()
	assert.Equal(t, ContentNone, kind)

	a.HTML = "<p>hi</p>"
	kind, v := a.Content()
	assert.Equal(t, ContentHTML, kind)
	assert.Equal(t, "<p>hi</p>", v)

	a.URL = "https://example.com"
	kind, v = a.Content()
	assert.Equal(t, ContentURL, kind)
	assert.Equal(t, "https://example.com", v)
}

func TestAttributesPageScripts(t *testing.T) {
	a := Attributes{InitScripts: []string{"a()", "b()"}}
	assert.Equal(t, []string{"a()", "b()"}, a.PageScripts())

	a.RPCHandler = func(window.Window, *rpc.Request) *rpc.Response { return nil }
	scripts := a.PageScripts()
	require.Len(t, scripts, 3)
	assert.Equal(t, rpc.BootstrapScript, scripts[0])
	assert.Equal(t, "b()", scripts[2])
}

func TestColorRGBA8(t *testing.T) {
	r, g, b, a := White.RGBA8()
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, [4]uint8{r, g, b, a})
	r, g, b, a = Color{0.5, -1, 2, 0}.RGBA8()
	assert.Equal(t, [4]uint8{128, 0, 255, 0}, [4]uint8{r, g, b, a})
	assert.False(t, Transparent.Opaque())
}

func TestConstructionErrorUnwraps(t *testing.T) {
	cause := errors.New("no display")
	err := error(&ConstructionError{Backend: "headless", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "headless")
}

func TestLoadStateString(t *testing.T) {
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", LoadState(42).String())
}
