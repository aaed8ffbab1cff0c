// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

// ElementState is the state of a key or button.
type ElementState uint8

const (
	Pressed ElementState = iota
	Released
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseOther
)

// DOM button index (MouseEvent.button).
func (b MouseButton) DOM() int {
	switch b {
	case MouseLeft:
		return 0
	case MouseMiddle:
		return 1
	case MouseRight:
		return 2
	}
	return 3
}

// Position is a point in window pixels, origin top-left.
type Position struct {
	X, Y float64
}

// MouseEvent is a button press or release at a position.
type MouseEvent struct {
	Button   MouseButton
	State    ElementState
	Position Position
}

// Modifiers are held modifier keys.
type Modifiers uint8

const (
	ModAlt Modifiers = 1 << iota
	ModCtrl
	ModMeta
	ModShift
)

// KeyboardInput is one key transition. Key holds the DOM key value ("a",
// "Enter"), Code the physical key ("KeyA"), and Text the characters typed,
// if any.
type KeyboardInput struct {
	State     ElementState
	Key       string
	Code      string
	Text      string
	Modifiers Modifiers
}
