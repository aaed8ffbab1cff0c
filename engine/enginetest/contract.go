// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package enginetest

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Run checks the behavior every engine backend shares. newBackend is called
// once per subtest.
func Run(t *testing.T, newBackend func(t *testing.T) engine.Backend) {
	t.Run("CaptureMatchesWindowSize", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 600, Height: 400}, page())
		buf := tickAndCapture(t, e)
		requireFrame(t, buf, 600, 400)
	})

	t.Run("ResizeThenTick", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 600, Height: 400}, page())
		tickAndCapture(t, e)

		for _, s := range []window.Size{{Width: 300, Height: 200}, {Width: 1, Height: 1}, {Width: 640, Height: 360}} {
			require.NoError(t, e.Resize(s))
			assert.Equal(t, s, e.Window().InnerSize())
			requireFrame(t, tickAndCapture(t, e), s.Width, s.Height)
		}
	})

	t.Run("ResizeRejectsEmpty", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 64, Height: 64}, page())
		require.Error(t, e.Resize(window.Size{Width: 0, Height: 10}))
		assert.Equal(t, window.Size{Width: 64, Height: 64}, e.Window().InnerSize())
	})

	t.Run("HiddenSuppressesCapture", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 32, Height: 32}, page())
		e.SetVisible(false)
		e.TickOnce()
		buf, err := e.CaptureFrame()
		require.NoError(t, err)
		assert.Nil(t, buf)

		e.SetVisible(true)
		requireFrame(t, tickAndCapture(t, e), 32, 32)
	})

	t.Run("NoFrameBeforeContent", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 16, Height: 16}, engine.DefaultAttributes())
		assert.Equal(t, engine.PreStart, e.LoadState())
		e.TickOnce()
		buf, err := e.CaptureFrame()
		require.NoError(t, err)
		assert.Nil(t, buf)

		e.LoadHTML("<body></body>")
		requireFrame(t, tickAndCapture(t, e), 16, 16)
		assert.NotEqual(t, engine.PreStart, e.LoadState())
	})

	t.Run("EvaluateScript", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 8, Height: 8}, page())
		require.NoError(t, e.EvaluateScript("var answer = 6 * 7;"))
	})

	t.Run("InitializeOverRPC", func(t *testing.T) {
		var mu sync.Mutex
		var methods []string
		attrs := page()
		attrs.RPCHandler = func(_ window.Window, req *rpc.Request) *rpc.Response {
			mu.Lock()
			defer mu.Unlock()
			methods = append(methods, req.Method)
			if req.Method == rpc.BuiltinMethod {
				var ev map[string]json.RawMessage
				assert.NoError(t, json.Unmarshal(req.Param(0), &ev))
				assert.Contains(t, ev, "initialize")
			}
			return nil
		}
		e := launch(t, newBackend(t), window.Size{Width: 8, Height: 8}, attrs)
		for i := 0; i < 3; i++ {
			e.TickOnce()
		}
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{rpc.BuiltinMethod}, methods)
	})

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		b := newBackend(t)
		w, err := b.NewWindow(window.Attributes{Size: window.Size{Width: 8, Height: 8}})
		require.NoError(t, err)
		e, err := b.NewEngine(w, page())
		require.NoError(t, err)
		e.Close()
		e.Close()
		require.ErrorIs(t, e.EvaluateScript("1"), engine.ErrClosed)
	})

	t.Run("Version", func(t *testing.T) {
		e := launch(t, newBackend(t), window.Size{Width: 8, Height: 8}, page())
		v, err := e.Version()
		require.NoError(t, err)
		assert.NotEmpty(t, v)
	})
}

// page returns default attributes with an empty document as content.
func page() engine.Attributes {
	attrs := engine.DefaultAttributes()
	attrs.HTML = "<body></body>"
	return attrs
}

func launch(t *testing.T, b engine.Backend, size window.Size, attrs engine.Attributes) engine.Engine {
	t.Helper()
	w, err := b.NewWindow(window.Attributes{Size: size})
	require.NoError(t, err)
	e, err := b.NewEngine(w, attrs)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func tickAndCapture(t *testing.T, e engine.Engine) *pixel.Buffer {
	t.Helper()
	e.TickOnce()
	buf, err := e.CaptureFrame()
	require.NoError(t, err)
	return buf
}

func requireFrame(t *testing.T, buf *pixel.Buffer, w, h int) {
	t.Helper()
	require.NotNil(t, buf, "expected a frame")
	assert.Equal(t, w, buf.Width)
	assert.Equal(t, h, buf.Height)
	require.NoError(t, buf.Validate())
}
