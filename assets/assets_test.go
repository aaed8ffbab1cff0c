// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package assets

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/engine"
)

func serve(t *testing.T, h engine.SchemeHandler, uri string) *engine.SchemeResponse {
	t.Helper()
	resp, err := h(&engine.SchemeRequest{Method: http.MethodGet, URI: uri})
	require.NoError(t, err)
	return resp
}

func assetRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "webview")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<body></body>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "app.js"), []byte("go()"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.bin9"), []byte{1, 2}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("nope"), 0o644))
	return root
}

func TestHandlerServesFiles(t *testing.T) {
	h := Handler(assetRoot(t))

	resp := serve(t, h, "webview:///index.html")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.MimeType, "text/html")
	assert.Equal(t, "<body></body>", string(resp.Body))

	resp = serve(t, h, "webview:///js/app.js")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "go()", string(resp.Body))

	resp = serve(t, h, "webview://js/app.js")
	assert.Equal(t, "go()", string(resp.Body))

	resp = serve(t, h, "webview:///")
	assert.Equal(t, "<body></body>", string(resp.Body))

	resp = serve(t, h, "webview:///data.bin9")
	assert.Equal(t, "application/octet-stream", resp.MimeType)
}

func TestHandlerDeniesTraversal(t *testing.T) {
	h := Handler(assetRoot(t))
	for _, uri := range []string{
		"webview:///../secret.txt",
		"webview:///js/../../secret.txt",
		"webview:///%2e%2e/secret.txt",
	} {
		resp := serve(t, h, uri)
		assert.Equal(t, http.StatusUnauthorized, resp.Status, uri)
		assert.Equal(t, traversalDenied, string(resp.Body))
	}
}

func TestHandlerMissingFile(t *testing.T) {
	resp := serve(t, Handler(assetRoot(t)), "webview:///missing.css")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestFSHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"ui/index.html": {Data: []byte("<p>embedded</p>")},
		"ui/style.css":  {Data: []byte("body{}")},
	}
	h := FSHandler(fsys)

	resp := serve(t, h, "app:///ui/index.html")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<p>embedded</p>", string(resp.Body))

	resp = serve(t, h, "app:///ui/x/../style.css")
	assert.Equal(t, "body{}", string(resp.Body))
	assert.Contains(t, resp.MimeType, "text/css")

	resp = serve(t, h, "app:///../ui/index.html")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = serve(t, h, "app:///ui/none.js")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "ui/index.html", NormalizePath(`\ui\index.html`))
	assert.Equal(t, "a/b", NormalizePath("//a/b"))
}

func TestRegisterWithSchemes(t *testing.T) {
	var s engine.Schemes
	require.NoError(t, s.Register(DefaultScheme, Handler(assetRoot(t))))
	require.ErrorIs(t, s.Register(DefaultScheme, Handler(t.TempDir())), engine.ErrDuplicateScheme)

	resp, err := s.Serve("webview:///js/app.js")
	require.NoError(t, err)
	assert.Equal(t, "go()", string(resp.Body))
}
