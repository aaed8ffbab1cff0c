// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package enginetest provides an in-memory engine backend that records every
// call, and a contract suite every backend is expected to pass.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Version is reported by fake engines.
const Version = "fake-v0.0.1"

// InitializeMessage is what the page bootstrap sends once per load.
const InitializeMessage = `{"jsonrpc":"2.0","method":"_webview","params":[{"initialize":null}]}`

// Backend creates fake engines. Set FailWindow or FailEngine to make the
// next constructions fail.
type Backend struct {
	mu         sync.Mutex
	engines    []*Engine
	FailWindow error
	FailEngine error
	// Fill is the color every captured frame is painted with.
	Fill [4]uint8
}

// NewBackend returns a backend producing green frames.
func NewBackend() *Backend {
	return &Backend{Fill: [4]uint8{50, 180, 50, 255}}
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) NewWindow(attrs window.Attributes) (window.Window, error) {
	b.mu.Lock()
	fail := b.FailWindow
	b.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	w, err := window.NewOffscreen(attrs)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (b *Backend) NewEngine(w window.Window, attrs engine.Attributes) (engine.Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailEngine != nil {
		return nil, b.FailEngine
	}
	e := &Engine{win: w, attrs: attrs, fill: b.Fill, visible: true}
	switch kind, v := attrs.Content(); kind {
	case engine.ContentURL:
		e.load("uri:" + v)
	case engine.ContentHTML:
		e.load("html:" + v)
	}
	b.engines = append(b.engines, e)
	return e, nil
}

// Engines returns every engine created so far.
func (b *Backend) Engines() []*Engine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Engine(nil), b.engines...)
}

// Engine records calls. Accessors are safe to use from a test goroutine
// while another goroutine drives the engine.
type Engine struct {
	mu      sync.Mutex
	win     window.Window
	attrs   engine.Attributes
	fill    [4]uint8
	visible bool
	closed  int
	dirty   bool
	state   engine.LoadState

	scripts   []string
	loads     []string
	keys      []engine.KeyboardInput
	mouse     []engine.MouseEvent
	positions []engine.Position
	resizes   []window.Size
	ticks     int
	inbox     []string
	failEval  error
}

var _ engine.Engine = (*Engine)(nil)

// load must be called with mu held.
func (e *Engine) load(entry string) {
	e.loads = append(e.loads, entry)
	e.state = engine.Finished
	e.dirty = true
	if e.attrs.RPCHandler != nil {
		e.inbox = append(e.inbox, InitializeMessage)
	}
}

func (e *Engine) Window() window.Window { return e.win }

func (e *Engine) EvaluateScript(js string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed > 0 {
		return engine.ErrClosed
	}
	if e.failEval != nil {
		return e.failEval
	}
	e.scripts = append(e.scripts, js)
	return nil
}

func (e *Engine) LoadURI(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load("uri:" + uri)
}

func (e *Engine) LoadHTML(markup string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load("html:" + markup)
}

func (e *Engine) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load("reload")
}

func (e *Engine) SendKeyboardInput(k engine.KeyboardInput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.visible {
		e.keys = append(e.keys, k)
	}
}

func (e *Engine) SendMouseEvent(m engine.MouseEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.visible {
		e.mouse = append(e.mouse, m)
	}
}

func (e *Engine) SendMousePosition(p engine.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.visible {
		e.positions = append(e.positions, p)
	}
}

func (e *Engine) Resize(s window.Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed > 0 {
		return engine.ErrClosed
	}
	if err := e.win.SetInnerSize(s); err != nil {
		return err
	}
	e.resizes = append(e.resizes, s)
	e.dirty = true
	return nil
}

func (e *Engine) CaptureFrame() (*pixel.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed > 0 {
		return nil, engine.ErrClosed
	}
	if !e.visible || !e.dirty || e.state == engine.PreStart {
		return nil, nil
	}
	e.dirty = false
	size := e.win.InnerSize()
	buf := pixel.NewBuffer(size.Width, size.Height, pixel.RGBA8)
	buf.Fill(e.fill[0], e.fill[1], e.fill[2], e.fill[3])
	return buf, nil
}

// TickOnce delivers page messages queued with Post to the RPC handler and
// evaluates the replies. A loaded page redraws on every tick.
func (e *Engine) TickOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed > 0 || !e.visible {
		return
	}
	e.ticks++
	if e.state != engine.PreStart {
		e.dirty = true
	}
	inbox := e.inbox
	e.inbox = nil
	for _, raw := range inbox {
		script, err := rpc.Proxy(e.win, raw, e.attrs.RPCHandler)
		if err == nil && script != "" {
			e.scripts = append(e.scripts, script)
		}
	}
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
}

func (e *Engine) SetVisible(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = v
}

func (e *Engine) LoadState() engine.LoadState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Version() (string, error) { return Version, nil }

// Post queues a raw message as if page script had called
// window.external.invoke. It is handled on the next TickOnce.
func (e *Engine) Post(raw string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inbox = append(e.inbox, raw)
}

// FailEvaluate makes EvaluateScript return err from now on.
func (e *Engine) FailEvaluate(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failEval = err
}

func (e *Engine) Attributes() engine.Attributes { return e.attrs }

func (e *Engine) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.scripts...)
}

func (e *Engine) Loads() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loads...)
}

func (e *Engine) Keys() []engine.KeyboardInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.KeyboardInput(nil), e.keys...)
}

func (e *Engine) MouseEvents() []engine.MouseEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.MouseEvent(nil), e.mouse...)
}

func (e *Engine) Positions() []engine.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.Position(nil), e.positions...)
}

func (e *Engine) Resizes() []window.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]window.Size(nil), e.resizes...)
}

func (e *Engine) Ticks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

func (e *Engine) String() string {
	return fmt.Sprintf("fake engine (window %d)", e.win.ID())
}
