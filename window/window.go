// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package window abstracts the drawable surface an engine renders into.
package window

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrInvalidSize is returned for sizes with a zero or negative side.
var ErrInvalidSize = errors.New("window: width and height must be positive")

// ID identifies a window for the lifetime of the process.
type ID uint64

// Size is the inner size of a window in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when no size is given.
var DefaultSize = Size{Width: 800, Height: 600}

// NewSize validates w and h.
func NewSize(w, h int) (Size, error) {
	s := Size{Width: w, Height: h}
	if err := s.Validate(); err != nil {
		return Size{}, err
	}
	return s, nil
}

// Validate reports ErrInvalidSize unless both sides are positive.
func (s Size) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Window is a resizable surface. Implementations are used from a single
// goroutine, the one owning the engine bound to them.
type Window interface {
	ID() ID
	InnerSize() Size
	SetInnerSize(Size) error
}

// Attributes configure a new window.
type Attributes struct {
	Title       string
	Size        Size // zero means DefaultSize
	Transparent bool
}

// Provider creates windows. Backends implement it next to their engine
// constructor.
type Provider interface {
	NewWindow(Attributes) (Window, error)
}

var lastID atomic.Uint64

// NextID returns a process-unique window id.
func NextID() ID { return ID(lastID.Add(1)) }

// Offscreen is a window without a native surface, for engines that render
// into memory.
type Offscreen struct {
	id          ID
	title       string
	transparent bool

	mu   sync.Mutex
	size Size
}

// NewOffscreen creates an offscreen window from attrs.
func NewOffscreen(attrs Attributes) (*Offscreen, error) {
	size := attrs.Size
	if size == (Size{}) {
		size = DefaultSize
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	return &Offscreen{
		id:          NextID(),
		title:       attrs.Title,
		transparent: attrs.Transparent,
		size:        size,
	}, nil
}

func (w *Offscreen) ID() ID            { return w.id }
func (w *Offscreen) Title() string     { return w.title }
func (w *Offscreen) Transparent() bool { return w.transparent }

func (w *Offscreen) InnerSize() Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *Offscreen) SetInnerSize(s Size) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.size = s
	w.mu.Unlock()
	return nil
}
