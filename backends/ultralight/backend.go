// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package ultralight is an engine backend on top of the Ultralight SDK. It
// loads the ul_bridge shared library with purego, so no cgo is needed.
//
// Ultralight requires every API call to come from one OS thread. Drive
// engines from the runner, whose goroutine is locked to its thread.
package ultralight

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/assets"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Options for the backend. All fields are optional.
type Options struct {
	BaseDir string // Directory containing the bridge shared library and Ultralight SDK libraries. Defaults to working directory.
	Debug   bool   // Enable debug logging (creates bridge.log and ultralight.log). Default false.
	Logger  *log.Logger
}

// Backend creates Ultralight views.
type Backend struct {
	baseDir string
	debug   bool
	log     *log.Logger
}

var _ engine.Backend = (*Backend)(nil)

// New loads the bridge library.
func New(opts Options) (*Backend, error) {
	b := &Backend{baseDir: resolveBaseDir(opts.BaseDir), debug: opts.Debug, log: opts.Logger}
	if b.log == nil {
		b.log = log.Default().WithPrefix("ultralight")
	}
	if err := loadBridge(b.baseDir); err != nil {
		return nil, &engine.ConstructionError{Backend: b.Name(), Err: err}
	}
	return b, nil
}

func resolveBaseDir(baseDir string) string {
	if baseDir != "" {
		return baseDir
	}
	baseDir, _ = os.Getwd()
	if _, err := os.Stat(filepath.Join(baseDir, bridgeLibName())); err != nil {
		if exe, _ := os.Executable(); exe != "" {
			baseDir = filepath.Dir(exe)
		}
	}
	return baseDir
}

func (b *Backend) Name() string { return "ultralight" }

func (b *Backend) NewWindow(attrs window.Attributes) (window.Window, error) {
	w, err := window.NewOffscreen(attrs)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (b *Backend) NewEngine(w window.Window, attrs engine.Attributes) (engine.Engine, error) {
	if err := acquireView(b.baseDir, b.debug); err != nil {
		return nil, err
	}
	size := w.InnerSize()
	id := ulCreateView(int32(size.Width), int32(size.Height))
	if id < 0 {
		releaseView()
		return nil, fmt.Errorf("ul_create_view failed with code %d", id)
	}
	v := &View{
		backend: b,
		id:      id,
		win:     w,
		attrs:   attrs,
		log:     b.log.With("window", w.ID()),
		visible: true,
	}
	switch kind, content := attrs.Content(); kind {
	case engine.ContentURL:
		v.LoadURI(content)
	case engine.ContentHTML:
		v.LoadHTML(content)
	}
	return v, nil
}

// RegisterFile registers a file in Ultralight's VFS under a virtual path
// such as "ui/style.css". Registered files take priority over disk files
// and are reachable as file:///ui/style.css.
func (b *Backend) RegisterFile(filePath string, data []byte) error {
	return registerFile(assets.NormalizePath(filePath), data)
}

// RegisterFS registers every file of fsys in the VFS, so pages loaded from
// it can reference their scripts and styles with relative paths.
func (b *Backend) RegisterFS(fsys fs.FS) error {
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, readErr := fs.ReadFile(fsys, p)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", p, readErr)
		}
		return b.RegisterFile(p, data)
	})
	if err != nil {
		return fmt.Errorf("walking FS: %w", err)
	}
	return nil
}

// ClearFiles frees all files registered in the VFS.
func (b *Backend) ClearFiles() {
	ulVfsClear()
}
