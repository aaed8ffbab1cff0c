// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package assets serves page files for custom schemes such as
// webview:///index.html, from a directory or from an fs.FS.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/YindSoft/webview-ebitengine/engine"
)

// DefaultRoot is the asset directory used when none is configured.
const DefaultRoot = "assets/webview"

// DefaultScheme is the scheme the examples and the CLI register.
const DefaultScheme = "webview"

const traversalDenied = "Directory traversal attempted! Denied"

// Handler serves files under root. URIs that resolve outside root are
// answered with 401.
func Handler(root string) engine.SchemeHandler {
	return func(req *engine.SchemeRequest) (*engine.SchemeResponse, error) {
		rel, err := requestPath(req.URI)
		if err != nil {
			return nil, err
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("assets: root %q: %w", root, err)
		}
		full := filepath.Join(absRoot, filepath.FromSlash(rel))
		if !within(absRoot, full) {
			return denied(), nil
		}
		body, err := os.ReadFile(full)
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("assets: read %s: %w", full, err)
		}
		return &engine.SchemeResponse{Status: http.StatusOK, MimeType: MimeType(full), Body: body}, nil
	}
}

// FSHandler serves files from fsys, typically an embed.FS.
func FSHandler(fsys fs.FS) engine.SchemeHandler {
	return func(req *engine.SchemeRequest) (*engine.SchemeResponse, error) {
		rel, err := requestPath(req.URI)
		if err != nil {
			return nil, err
		}
		name := path.Clean(NormalizePath(rel))
		if !fs.ValidPath(name) {
			return denied(), nil
		}
		body, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("assets: read %s: %w", name, err)
		}
		return &engine.SchemeResponse{Status: http.StatusOK, MimeType: MimeType(name), Body: body}, nil
	}
}

// NormalizePath turns backslashes into slashes and drops leading slashes,
// giving an fs.FS style name.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimLeft(p, "/")
}

// MimeType infers a content type from the file extension.
func MimeType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// requestPath extracts the path of scheme:///a/b or scheme://a/b.
func requestPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("assets: parse %q: %w", uri, err)
	}
	p := u.Path
	switch {
	case u.Host != "" && p == "":
		p = u.Host
	case u.Host != "":
		p = u.Host + "/" + strings.TrimPrefix(p, "/")
	}
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return p, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func denied() *engine.SchemeResponse {
	return &engine.SchemeResponse{Status: http.StatusUnauthorized, MimeType: "text/plain", Body: []byte(traversalDenied)}
}

func notFound() *engine.SchemeResponse {
	return &engine.SchemeResponse{Status: http.StatusNotFound, MimeType: "text/plain", Body: []byte("Not Found")}
}
