// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package headless is a pure-Go engine backend. It parses pages with
// goquery, runs their scripts in goja or QuickJS, and paints frames from
// the page background. It has no layout or text rendering; it exists for
// tests, CI and snapshot tooling where no native engine is available.
package headless

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Version of the headless engine.
const Version = "0.3.0"

// Options configure a Backend.
type Options struct {
	// Runtime is the script VM; empty means goja.
	Runtime Runtime
	Logger  *log.Logger
	// HTTPClient fetches http and https pages.
	HTTPClient *http.Client
}

// Backend creates headless windows and engines. Engines created by the same
// backend share one clipboard.
type Backend struct {
	runtime Runtime
	log     *log.Logger
	client  *http.Client

	clipMu    sync.Mutex
	clipboard string
}

var _ engine.Backend = (*Backend)(nil)

func New(opts Options) *Backend {
	b := &Backend{runtime: opts.Runtime, log: opts.Logger, client: opts.HTTPClient}
	if b.runtime == "" {
		b.runtime = RuntimeGoja
	}
	if b.log == nil {
		b.log = log.Default().WithPrefix("headless")
	}
	if b.client == nil {
		b.client = &http.Client{Timeout: 15 * time.Second}
	}
	return b
}

func (b *Backend) Name() string { return "headless" }

func (b *Backend) NewWindow(attrs window.Attributes) (window.Window, error) {
	w, err := window.NewOffscreen(attrs)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (b *Backend) NewEngine(w window.Window, attrs engine.Attributes) (engine.Engine, error) {
	v := &View{
		backend:    b,
		win:        w,
		attrs:      attrs,
		log:        b.log.With("window", w.ID()),
		visible:    true,
		background: attrs.Color,
		now:        time.Now,
	}
	if attrs.UserAgent == "" {
		v.attrs.UserAgent = "webview-headless/" + Version
	}
	switch kind, content := attrs.Content(); kind {
	case engine.ContentURL:
		v.LoadURI(content)
	case engine.ContentHTML:
		v.LoadHTML(content)
	default:
		if err := v.newVM(&page{}, "about:blank"); err != nil {
			return nil, err
		}
	}
	if v.vm == nil && v.pending == nil {
		if v.lastErr == nil {
			v.lastErr = errors.New("headless: no script context")
		}
		return nil, v.lastErr
	}
	return v, nil
}

// Clipboard returns the shared clipboard text.
func (b *Backend) Clipboard() string {
	b.clipMu.Lock()
	defer b.clipMu.Unlock()
	return b.clipboard
}

// SetClipboard replaces the shared clipboard text.
func (b *Backend) SetClipboard(s string) {
	b.clipMu.Lock()
	defer b.clipMu.Unlock()
	b.clipboard = s
}
