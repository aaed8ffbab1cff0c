// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"github.com/YindSoft/webview-ebitengine/rpc"
)

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

// RGBA8 returns the color as 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return unit(c.R), unit(c.G), unit(c.B), unit(c.A)
}

// Opaque reports whether the alpha channel is 1.
func (c Color) Opaque() bool { return c.A >= 1 }

func unit(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Attributes configure an engine at construction time.
type Attributes struct {
	UserAgent string
	Color     Color

	// URL takes precedence over HTML when both are set.
	URL  string
	HTML string

	// InitScripts run on every page load before any page script, in order.
	InitScripts []string

	Schemes    *Schemes
	RPCHandler rpc.Handler
	Clipboard  bool
}

// DefaultAttributes returns attributes with a white background and no content.
func DefaultAttributes() Attributes {
	return Attributes{Color: White}
}

// ContentKind tells how the initial content is given.
type ContentKind uint8

const (
	ContentNone ContentKind = iota
	ContentURL
	ContentHTML
)

// Content returns the initial content to load.
func (a Attributes) Content() (ContentKind, string) {
	switch {
	case a.URL != "":
		return ContentURL, a.URL
	case a.HTML != "":
		return ContentHTML, a.HTML
	}
	return ContentNone, ""
}

// PageScripts returns the scripts a backend injects on every page load after
// its own window.external.invoke shim: the RPC bootstrap when a handler is
// set, then InitScripts.
func (a Attributes) PageScripts() []string {
	scripts := make([]string, 0, len(a.InitScripts)+1)
	if a.RPCHandler != nil {
		scripts = append(scripts, rpc.BootstrapScript)
	}
	return append(scripts, a.InitScripts...)
}
