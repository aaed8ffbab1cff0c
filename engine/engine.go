// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package engine defines the capability set every web engine backend
// implements, plus the construction attributes, input events and tick
// policies shared by all of them.
package engine

import (
	"errors"
	"fmt"

	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/window"
)

var (
	// ErrDuplicateScheme is returned when a scheme name is registered twice.
	ErrDuplicateScheme = errors.New("engine: duplicate scheme")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine: closed")
)

// ConstructionError wraps a failure to create a window or an engine.
type ConstructionError struct {
	Backend string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("engine: %s: create: %v", e.Backend, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Engine is one page renderer bound to one window. All methods must be called
// from the goroutine that created the engine.
type Engine interface {
	Window() window.Window

	// EvaluateScript runs js in the page context.
	EvaluateScript(js string) error

	// Navigation is fire-and-forget; new content shows up in later captures.
	LoadURI(uri string)
	LoadHTML(markup string)
	Reload()

	// Input is ignored while the engine is not visible.
	SendKeyboardInput(KeyboardInput)
	SendMouseEvent(MouseEvent)
	SendMousePosition(Position)

	// Resize changes the window and the render surface together.
	Resize(window.Size) error

	// CaptureFrame returns nil, nil when nothing new was drawn since the last
	// capture or while the engine is hidden.
	CaptureFrame() (*pixel.Buffer, error)

	// TickOnce advances the engine's event loop by one step without blocking.
	TickOnce()

	// Close releases backend resources. It is safe to call more than once.
	Close()

	SetVisible(bool)
	LoadState() LoadState
	Version() (string, error)
}

// Backend creates windows and the engines bound to them.
type Backend interface {
	window.Provider
	Name() string
	NewEngine(w window.Window, attrs Attributes) (Engine, error)
}
