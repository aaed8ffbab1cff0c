// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

//go:embed prelude.js
var prelude string

// View is a headless engine bound to one window. It follows the engine
// contract: every method runs on the goroutine that created it.
type View struct {
	backend *Backend
	win     window.Window
	attrs   engine.Attributes
	log     *log.Logger

	vm      scriptVM
	timers  *timerTable
	inbox   []string
	pending *fetch
	source  source
	lastErr error

	state      engine.LoadState
	visible    bool
	dirty      bool
	closed     bool
	title      string
	background engine.Color

	now func() time.Time
}

var _ engine.Engine = (*View)(nil)

// source is what Reload loads again.
type source struct {
	uri    string
	markup string
}

func (v *View) Window() window.Window { return v.win }

func (v *View) EvaluateScript(js string) error {
	if v.closed {
		return engine.ErrClosed
	}
	if v.vm == nil {
		return errors.New("headless: no page")
	}
	if err := v.vm.Eval(js); err != nil {
		return fmt.Errorf("headless: script: %w", err)
	}
	v.vm.RunMicrotasks()
	v.refreshBackground()
	return nil
}

func (v *View) LoadHTML(markup string) {
	if v.closed {
		return
	}
	v.cancelFetch()
	v.source = source{markup: markup}
	v.state = engine.Started
	v.load(markup, "about:blank")
}

func (v *View) LoadURI(uri string) {
	if v.closed {
		return
	}
	v.cancelFetch()
	v.source = source{uri: uri}
	v.state = engine.Started

	u, err := url.Parse(uri)
	if err != nil {
		v.loadError(uri, err)
		return
	}
	switch {
	case uri == "about:blank":
		v.load("", uri)
	case v.attrs.Schemes.Handles(uri):
		resp, err := v.attrs.Schemes.Serve(uri)
		switch {
		case err != nil:
			v.loadError(uri, err)
		case resp.Status != 0 && resp.Status != 200:
			v.loadError(uri, fmt.Errorf("status %d: %s", resp.Status, resp.Body))
		default:
			v.load(string(resp.Body), uri)
		}
	case u.Scheme == "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			v.loadError(uri, err)
			return
		}
		v.load(string(data), uri)
	case u.Scheme == "http" || u.Scheme == "https":
		v.pending = startFetch(v.backend.client, uri, v.attrs.UserAgent)
	default:
		v.log.Warn("unsupported scheme", "uri", uri)
		v.loadError(uri, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
}

func (v *View) Reload() {
	if v.source.uri != "" {
		v.LoadURI(v.source.uri)
		return
	}
	v.LoadHTML(v.source.markup)
}

// loadError replaces the page with an error document.
func (v *View) loadError(uri string, err error) {
	v.log.Error("load failed", "uri", uri, "err", err)
	markup := fmt.Sprintf(`<html><head><title>Error</title></head><body style="background:#ffffff"><h1>%s</h1><p>%s</p></body></html>`,
		html.EscapeString(uri), html.EscapeString(err.Error()))
	v.load(markup, "about:blank")
}

// load replaces the page: a fresh script context, the init scripts, then the
// page's own scripts in document order.
func (v *View) load(markup, base string) {
	v.state = engine.Committed
	p, err := parsePage(markup)
	if err != nil {
		v.log.Warn("parse page", "err", err)
		p = &page{}
	}
	if err := v.newVM(p, base); err != nil {
		v.log.Error("create script context", "err", err)
		return
	}
	for i, js := range v.attrs.PageScripts() {
		v.run(js, "init script", i)
	}
	for i, s := range p.Scripts {
		js := s.Inline
		if s.Src != "" {
			if js, err = v.resolveScript(base, s.Src); err != nil {
				v.log.Warn("skip script", "src", s.Src, "err", err)
				continue
			}
		}
		v.run(js, "page script", i)
	}
	v.run("__finishLoad()", "load", 0)
	v.vm.RunMicrotasks()
	v.state = engine.Finished
	v.background = v.attrs.Color
	v.refreshBackground()
	v.dirty = true
}

func (v *View) newVM(p *page, base string) error {
	if v.vm != nil {
		v.vm.Close()
		v.vm = nil
	}
	vm, err := newScriptVM(v.backend.runtime)
	if err != nil {
		v.lastErr = err
		return err
	}
	v.timers = newTimerTable()
	v.inbox = nil
	v.title = p.Title

	funcs := map[string]any{
		"__invoke":         v.invoke,
		"__console":        v.console,
		"__timerRegister":  v.timerRegister,
		"__timerClear":     v.timerClear,
		"__clipboardRead":  v.backend.Clipboard,
		"__clipboardWrite": v.backend.SetClipboard,
	}
	for name, fn := range funcs {
		if err := vm.RegisterFunc(name, fn); err != nil {
			vm.Close()
			v.lastErr = fmt.Errorf("headless: register %s: %w", name, err)
			return v.lastErr
		}
	}

	size := v.win.InnerSize()
	cfg, err := json.Marshal(map[string]any{
		"background": p.Background,
		"title":      p.Title,
		"width":      size.Width,
		"height":     size.Height,
		"url":        base,
		"userAgent":  v.attrs.UserAgent,
		"clipboard":  v.attrs.Clipboard,
	})
	if err != nil {
		vm.Close()
		return err
	}
	if err := vm.Eval(prelude + "(" + string(cfg) + ");"); err != nil {
		vm.Close()
		v.lastErr = fmt.Errorf("headless: prelude: %w", err)
		return v.lastErr
	}
	v.vm = vm
	return nil
}

// run evaluates page-owned script. Errors are the page's problem and are
// only logged.
func (v *View) run(js, what string, index int) {
	if err := v.vm.Eval(js); err != nil {
		v.log.Warn("script error", "in", what, "index", index, "err", err)
	}
}

// resolveScript loads an external script relative to the page URL.
func (v *View) resolveScript(base, src string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := b.Parse(src)
	if err != nil {
		return "", err
	}
	if !ref.IsAbs() || ref.Scheme == "about" {
		return "", errors.New("relative src on a page without a base URL")
	}
	uri := ref.String()
	switch {
	case v.attrs.Schemes.Handles(uri):
		resp, err := v.attrs.Schemes.Serve(uri)
		if err != nil {
			return "", err
		}
		if resp.Status != 0 && resp.Status != 200 {
			return "", fmt.Errorf("status %d", resp.Status)
		}
		return string(resp.Body), nil
	case ref.Scheme == "file":
		data, err := os.ReadFile(ref.Path)
		return string(data), err
	}
	return "", fmt.Errorf("scheme %q not loaded for subresources", ref.Scheme)
}

func (v *View) invoke(msg string) {
	if v.attrs.RPCHandler != nil {
		v.inbox = append(v.inbox, msg)
	}
}

func (v *View) console(level, msg string) {
	switch level {
	case "error":
		v.log.Error(msg, "source", "console")
	case "warn":
		v.log.Warn(msg, "source", "console")
	case "debug":
		v.log.Debug(msg, "source", "console")
	default:
		v.log.Info(msg, "source", "console")
	}
}

func (v *View) timerRegister(delayMs, interval int) int {
	return v.timers.add(v.now(), time.Duration(delayMs)*time.Millisecond, interval != 0)
}

func (v *View) timerClear(id int) {
	v.timers.clear(id)
}

// refreshBackground repaints when page script changed the body background.
func (v *View) refreshBackground() {
	if v.vm == nil {
		return
	}
	bg := v.attrs.Color
	s, err := v.vm.EvalString("__pageBackground()")
	if err != nil {
		v.log.Debug("read background", "err", err)
		return
	}
	if c, ok := parseColor(s); ok {
		bg = c
	}
	if bg != v.background {
		v.background = bg
		v.dirty = true
	}
}

func (v *View) SendKeyboardInput(k engine.KeyboardInput) {
	typ := "keydown"
	switch {
	case k.State == engine.Released:
		typ = "keyup"
	case k.Code == "" && k.Text != "":
		// Text-only input, as produced by an OS text input system.
		typ = "keypress"
	}
	v.dispatch(typ, map[string]any{
		"key":      k.Key,
		"code":     k.Code,
		"text":     k.Text,
		"altKey":   k.Modifiers&engine.ModAlt != 0,
		"ctrlKey":  k.Modifiers&engine.ModCtrl != 0,
		"metaKey":  k.Modifiers&engine.ModMeta != 0,
		"shiftKey": k.Modifiers&engine.ModShift != 0,
	})
}

func (v *View) SendMouseEvent(m engine.MouseEvent) {
	init := map[string]any{
		"clientX": m.Position.X,
		"clientY": m.Position.Y,
		"button":  m.Button.DOM(),
	}
	if m.State == engine.Pressed {
		v.dispatch("mousedown", init)
		return
	}
	v.dispatch("mouseup", init)
	v.dispatch("click", init)
}

func (v *View) SendMousePosition(p engine.Position) {
	v.dispatch("mousemove", map[string]any{"clientX": p.X, "clientY": p.Y})
}

func (v *View) dispatch(typ string, init map[string]any) {
	if v.closed || !v.visible || v.vm == nil {
		return
	}
	data, err := json.Marshal(init)
	if err != nil {
		return
	}
	v.run(fmt.Sprintf("__dispatchInput(%q, %s)", typ, data), typ, 0)
}

func (v *View) Resize(s window.Size) error {
	if v.closed {
		return engine.ErrClosed
	}
	if err := v.win.SetInnerSize(s); err != nil {
		return err
	}
	if v.vm != nil {
		v.run(fmt.Sprintf("__resize(%d, %d)", s.Width, s.Height), "resize", 0)
	}
	v.dirty = true
	return nil
}

func (v *View) CaptureFrame() (*pixel.Buffer, error) {
	if v.closed {
		return nil, engine.ErrClosed
	}
	if !v.visible || !v.dirty || v.state == engine.PreStart {
		return nil, nil
	}
	v.dirty = false
	size := v.win.InnerSize()
	buf := pixel.NewBuffer(size.Width, size.Height, pixel.RGBA8)
	buf.Fill(v.background.RGBA8())
	return buf, nil
}

// TickOnce finishes pending loads, fires due timers, answers page RPC
// messages and settles promises.
func (v *View) TickOnce() {
	if v.closed || !v.visible {
		return
	}
	v.pollFetch()
	if v.vm == nil {
		return
	}
	for _, id := range v.timers.due(v.now()) {
		v.run(fmt.Sprintf("__fireTimer(%d)", id), "timer", id)
	}
	inbox := v.inbox
	v.inbox = nil
	for _, raw := range inbox {
		script, err := rpc.Proxy(v.win, raw, v.attrs.RPCHandler)
		if err != nil {
			v.log.Warn("rpc message", "err", err)
			continue
		}
		if script != "" {
			v.run(script, "rpc reply", 0)
		}
	}
	v.vm.RunMicrotasks()
	v.refreshBackground()
}

func (v *View) pollFetch() {
	if v.pending == nil {
		return
	}
	select {
	case res := <-v.pending.done:
		v.pending = nil
		if res.err != nil {
			v.loadError(res.requested, res.err)
			return
		}
		if res.final != res.requested {
			v.state = engine.Redirected
		}
		v.load(res.body, res.final)
	default:
	}
}

func (v *View) cancelFetch() {
	if v.pending != nil {
		v.pending.cancel()
		v.pending = nil
	}
}

func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.cancelFetch()
	if v.vm != nil {
		v.vm.Close()
		v.vm = nil
	}
}

func (v *View) SetVisible(visible bool) { v.visible = visible }

func (v *View) LoadState() engine.LoadState { return v.state }

// Title returns the current document title.
func (v *View) Title() string { return v.title }

func (v *View) Version() (string, error) {
	return fmt.Sprintf("headless/%s (%s)", Version, v.backend.runtime), nil
}

// Eval evaluates expr in the page and returns it as a string.
func (v *View) Eval(expr string) (string, error) {
	if v.closed {
		return "", engine.ErrClosed
	}
	if v.vm == nil {
		return "", errors.New("headless: no page")
	}
	s, err := v.vm.EvalString(expr)
	if err != nil {
		return "", fmt.Errorf("headless: script: %w", err)
	}
	return s, nil
}
