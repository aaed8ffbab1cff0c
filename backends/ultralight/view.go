// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/assets"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

// readyTicks is how many ticks a URL load gets before the page is treated
// as finished and init scripts are evaluated into it.
const readyTicks = 30

// invokeShim routes window.external.invoke to the bridge's native
// __goSend, which queues the message for ul_view_get_message.
const invokeShim = `(function () {
	var external = window.external = window.external || {};
	external.invoke = function (m) {
		if (typeof window.__goSend === "function") {
			window.__goSend(typeof m === "string" ? m : JSON.stringify(m));
		}
	};
})();`

// View is one Ultralight view. Must be used from a single OS thread.
type View struct {
	backend *Backend
	id      int32
	win     window.Window
	attrs   engine.Attributes
	log     *log.Logger

	visible   bool
	closed    bool
	state     engine.LoadState
	loadTicks int
	injected  bool
	source    source
}

var _ engine.Engine = (*View)(nil)

type source struct {
	uri    string
	markup string
}

func (v *View) Window() window.Window { return v.win }

func (v *View) EvaluateScript(js string) error {
	if v.closed {
		return engine.ErrClosed
	}
	ulViewEvalJS(v.id, js)
	return nil
}

func (v *View) LoadHTML(markup string) {
	if v.closed {
		return
	}
	v.source = source{markup: markup}
	ulViewLoadHTML(v.id, v.withScripts(markup))
	v.started(true)
}

func (v *View) LoadURI(uri string) {
	if v.closed {
		return
	}
	v.source = source{uri: uri}
	if !v.attrs.Schemes.Handles(uri) {
		ulViewLoadURL(v.id, uri)
		v.started(false)
		return
	}
	// Scheme pages are served into the VFS and loaded from file:///.
	resp, err := v.attrs.Schemes.Serve(uri)
	if err == nil && resp.Status != 0 && resp.Status != 200 {
		err = fmt.Errorf("status %d: %s", resp.Status, resp.Body)
	}
	if err != nil {
		v.log.Error("load failed", "uri", uri, "err", err)
		return
	}
	vfsPath := vfsPathOf(uri)
	if err := registerFile(vfsPath, []byte(v.withScripts(string(resp.Body)))); err != nil {
		v.log.Error("load failed", "uri", uri, "err", err)
		return
	}
	ulViewLoadURL(v.id, "file:///"+vfsPath)
	v.started(true)
}

func (v *View) Reload() {
	if v.source.uri != "" {
		v.LoadURI(v.source.uri)
		return
	}
	v.LoadHTML(v.source.markup)
}

// started resets load tracking. injected tells whether the init scripts are
// already part of the markup.
func (v *View) started(injected bool) {
	v.state = engine.Started
	v.loadTicks = 0
	v.injected = injected
}

// pageScripts returns the invoke shim and every init script in load order.
func (v *View) pageScripts() []string {
	scripts := v.attrs.PageScripts()
	if v.attrs.RPCHandler == nil {
		return scripts
	}
	return append([]string{invokeShim}, scripts...)
}

// withScripts puts the init scripts at the top of <head>, ahead of any
// page script.
func (v *View) withScripts(markup string) string {
	scripts := v.pageScripts()
	if len(scripts) == 0 {
		return markup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		v.log.Warn("parse page", "err", err)
		return markup
	}
	var b strings.Builder
	for _, js := range scripts {
		b.WriteString("<script>")
		b.WriteString(strings.ReplaceAll(js, "</script", `<\/script`))
		b.WriteString("</script>")
	}
	doc.Find("head").First().PrependHtml(b.String())
	out, err := doc.Html()
	if err != nil {
		v.log.Warn("render page", "err", err)
		return markup
	}
	return out
}

// vfsPathOf maps scheme://host/a/b to host/a/b.
func vfsPathOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "index.html"
	}
	p := path.Join(u.Host, u.Path)
	if p == "" || strings.HasSuffix(uri, "/") {
		p = path.Join(p, "index.html")
	}
	return assets.NormalizePath(path.Clean(p))
}

func (v *View) SendKeyboardInput(k engine.KeyboardInput) {
	if v.closed || !v.visible {
		return
	}
	vk, mods := codeToVK(k.Code), modifierBits(k.Modifiers)
	if k.State == engine.Released {
		if vk != 0 {
			ulViewFireKey(v.id, keyEventKeyUp, vk, mods, "")
		}
		return
	}
	// RawKeyDown triggers accelerators like Ctrl+C/V/X/A
	if vk != 0 {
		ulViewFireKey(v.id, keyEventRawKeyDown, vk, mods, "")
	}
	if k.Text != "" {
		ulViewFireKey(v.id, keyEventChar, 0, 0, k.Text)
	}
}

func (v *View) SendMouseEvent(m engine.MouseEvent) {
	if v.closed || !v.visible {
		return
	}
	typ := int32(mouseEventTypeDown)
	if m.State == engine.Released {
		typ = mouseEventTypeUp
	}
	ulViewFireMouse(v.id, typ, int32(m.Position.X), int32(m.Position.Y), mouseButton(m.Button))
}

func (v *View) SendMousePosition(p engine.Position) {
	if v.closed || !v.visible {
		return
	}
	ulViewFireMouse(v.id, mouseEventTypeMoved, int32(p.X), int32(p.Y), mouseButtonNone)
}

// Resize recreates the view at the new size and loads the current page
// again; the bridge has no in-place resize.
func (v *View) Resize(s window.Size) error {
	if v.closed {
		return engine.ErrClosed
	}
	old := v.win.InnerSize()
	if err := v.win.SetInnerSize(s); err != nil {
		return err
	}
	ulDestroyView(v.id)
	id := ulCreateView(int32(s.Width), int32(s.Height))
	if id < 0 {
		_ = v.win.SetInnerSize(old)
		v.id = ulCreateView(int32(old.Width), int32(old.Height))
		v.reloadSource()
		return fmt.Errorf("ul_create_view failed with code %d", id)
	}
	v.id = id
	v.reloadSource()
	return nil
}

func (v *View) reloadSource() {
	if v.source != (source{}) {
		v.Reload()
	}
}

func (v *View) CaptureFrame() (*pixel.Buffer, error) {
	if v.closed {
		return nil, engine.ErrClosed
	}
	if !v.visible || v.state == engine.PreStart {
		return nil, nil
	}
	ptr := ulViewGetPixels(v.id)
	if ptr == 0 {
		return nil, nil
	}
	defer ulViewUnlockPixels(v.id)

	w := int(ulViewGetWidth(v.id))
	h := int(ulViewGetHeight(v.id))
	rowBytes := int(ulViewGetRowBytes(v.id))
	if w == 0 || h == 0 {
		return nil, nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), rowBytes*h)
	buf := pixel.NewBuffer(w, h, pixel.RGBA8)
	if err := pixel.CopyBGRA(buf.Data, src, w, h, rowBytes); err != nil {
		return nil, err
	}
	return buf, nil
}

// TickOnce answers page messages, ticks Ultralight and forwards console
// output. The bridge reports no load events, so the load state follows the
// tick count: Committed on the first tick after a load, Finished after
// readyTicks.
func (v *View) TickOnce() {
	if v.closed || !v.visible {
		return
	}
	for {
		msg, ok := pollMessage(v.id)
		if !ok {
			break
		}
		script, err := rpc.Proxy(v.win, msg, v.attrs.RPCHandler)
		if err != nil {
			v.log.Warn("rpc message", "err", err)
			continue
		}
		if script != "" {
			ulViewEvalJS(v.id, script)
		}
	}

	ulTick()

	switch v.state {
	case engine.Started:
		v.state = engine.Committed
	case engine.Committed:
		v.loadTicks++
		if v.loadTicks >= readyTicks {
			v.state = engine.Finished
			if !v.injected {
				for _, js := range v.pageScripts() {
					ulViewEvalJS(v.id, js)
				}
				v.injected = true
			}
		}
	}

	for {
		msg, ok := pollConsoleMessage(v.id)
		if !ok {
			break
		}
		v.log.Info(msg, "source", "console")
	}
}

func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	ulDestroyView(v.id)
	releaseView()
}

func (v *View) SetVisible(visible bool) { v.visible = visible }

func (v *View) LoadState() engine.LoadState { return v.state }

func (v *View) Version() (string, error) {
	if v.closed {
		return "", engine.ErrClosed
	}
	return "ultralight-bridge (" + filepath.Base(bridge.libPath) + ")", nil
}
