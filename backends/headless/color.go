// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/YindSoft/webview-ebitengine/engine"
)

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"navy":    "#000080",
	"purple":  "#800080",
	"teal":    "#008080",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
}

// parseColor reads a CSS color value. Only the first token of a shorthand
// background is considered.
func parseColor(s string) (engine.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return engine.Color{}, false
	}
	if s == "transparent" {
		return engine.Transparent, true
	}
	if strings.HasPrefix(s, "rgb") {
		return parseRGBFunc(s)
	}
	if f := strings.Fields(s); len(f) > 1 {
		s = f[0]
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		return engine.Color{}, false
	}
	alpha := float32(1)
	// #rrggbbaa and #rgba carry alpha, which colorful.Hex does not parse.
	switch len(s) {
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return engine.Color{}, false
		}
		alpha, s = float32(a)/255, s[:7]
	case 5:
		a, err := strconv.ParseUint(s[4:], 16, 8)
		if err != nil {
			return engine.Color{}, false
		}
		alpha, s = float32(a)/15, s[:4]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return engine.Color{}, false
	}
	r, g, b := c.RGB255()
	return engine.Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: alpha}, true
}

// parseRGBFunc handles rgb(r, g, b) and rgba(r, g, b, a).
func parseRGBFunc(s string) (engine.Color, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return engine.Color{}, false
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return engine.Color{}, false
	}
	var ch [4]float32
	ch[3] = 1
	for i, p := range parts {
		pct := strings.HasSuffix(p, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 32)
		if err != nil {
			return engine.Color{}, false
		}
		switch {
		case pct:
			v /= 100
		case i < 3:
			v /= 255
		}
		ch[i] = float32(min(max(v, 0), 1))
	}
	return engine.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}
