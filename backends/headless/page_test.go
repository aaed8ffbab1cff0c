// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/engine"
)

func TestParsePage(t *testing.T) {
	p, err := parsePage(`<!doctype html>
<html>
<head>
	<title> HUD </title>
	<style>h1 { color: red } body{background:#123456 url(bg.png)}</style>
	<script type="application/json">{"ignored": true}</script>
	<script src="lib.js"></script>
</head>
<body>
	<script>var a = 1;</script>
	<script type="module">var b = 2;</script>
</body>
</html>`)
	require.NoError(t, err)
	assert.Equal(t, "HUD", p.Title)
	assert.Equal(t, "#123456 url(bg.png)", p.Background)
	assert.Equal(t, []pageScript{
		{Src: "lib.js"},
		{Inline: "var a = 1;"},
		{Inline: "var b = 2;"},
	}, p.Scripts)
}

func TestParsePageBackgroundPrecedence(t *testing.T) {
	for name, tc := range map[string]struct {
		markup string
		want   string
	}{
		"inline color beats shorthand": {`<body style="background: red; background-color: blue">`, "blue"},
		"inline beats bgcolor":         {`<body style="background: red" bgcolor="blue">`, "red"},
		"bgcolor":                      {`<body bgcolor="#fff">`, "#fff"},
		"last stylesheet rule":         {`<style>body { background: red } body { background: green !important }</style><body>`, "green"},
		"none":                         {`<body>`, ""},
	} {
		t.Run(name, func(t *testing.T) {
			p, err := parsePage(tc.markup)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Background)
		})
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]engine.Color{
		"red":                   {R: 1, A: 1},
		"  WHITE ":              {R: 1, G: 1, B: 1, A: 1},
		"#00f":                  {B: 1, A: 1},
		"#0000ff80":             {B: 1, A: float32(0x80) / 255},
		"#f008":                 {R: 1, A: float32(8) / 15},
		"rgb(255, 0, 0)":        {R: 1, A: 1},
		"rgba(0, 255, 0, 0.25)": {G: 1, A: 0.25},
		"rgb(100% 0% 0% / 50%)": {R: 1, A: 0.5},
		"transparent":           engine.Transparent,
		"navy url(x.png)":       {B: float32(0x80) / 255, A: 1},
	} {
		got, ok := parseColor(in)
		require.True(t, ok, in)
		assert.InDelta(t, want.R, got.R, 0.01, in)
		assert.InDelta(t, want.G, got.G, 0.01, in)
		assert.InDelta(t, want.B, got.B, 0.01, in)
		assert.InDelta(t, want.A, got.A, 0.01, in)
	}

	for _, in := range []string{"", "chartreuse-ish", "#12", "rgb(1, 2)", "url(x.png)", "#zzzzzz"} {
		_, ok := parseColor(in)
		assert.False(t, ok, in)
	}
}

func TestTimerTable(t *testing.T) {
	tt := newTimerTable()
	t0 := time.Unix(0, 0)
	late := tt.add(t0, 30*time.Millisecond, false)
	early := tt.add(t0, 10*time.Millisecond, false)
	every := tt.add(t0, 0, true)

	assert.Empty(t, tt.due(t0))
	assert.Equal(t, []int{every, early}, tt.due(t0.Add(10*time.Millisecond)))

	tt.clear(late)
	assert.Equal(t, []int{every}, tt.due(t0.Add(time.Second)))
	assert.Equal(t, 1, tt.pending())
}
