// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"strings"

	"github.com/YindSoft/webview-ebitengine/engine"
)

// Windows virtual-key codes by DOM KeyboardEvent.code.
var codeVK = map[string]int32{
	// Editing keys
	"Backspace":   0x08,
	"Tab":         0x09,
	"Enter":       0x0D,
	"NumpadEnter": 0x0D,
	"Escape":      0x1B,
	"Space":       0x20,
	"Delete":      0x2E,
	"Insert":      0x2D,

	// Navigation
	"Home":       0x24,
	"End":        0x23,
	"PageUp":     0x21,
	"PageDown":   0x22,
	"ArrowLeft":  0x25,
	"ArrowUp":    0x26,
	"ArrowRight": 0x27,
	"ArrowDown":  0x28,

	// Modifier keys
	"ShiftLeft":    0x10,
	"ShiftRight":   0x10,
	"ControlLeft":  0x11,
	"ControlRight": 0x11,
	"AltLeft":      0x12,
	"AltRight":     0x12,
	"MetaLeft":     0x5B,
	"MetaRight":    0x5B,

	// Lock keys
	"CapsLock":   0x14,
	"NumLock":    0x90,
	"ScrollLock": 0x91,

	// System keys
	"Pause":       0x13,
	"PrintScreen": 0x2C,
	"ContextMenu": 0x5D,

	// Numpad operators
	"NumpadMultiply": 0x6A,
	"NumpadAdd":      0x6B,
	"NumpadSubtract": 0x6D,
	"NumpadDecimal":  0x6E,
	"NumpadDivide":   0x6F,
	"NumpadEqual":    0xBB,

	// Punctuation / symbols (Windows VK_OEM codes)
	"Semicolon":     0xBA,
	"Equal":         0xBB,
	"Comma":         0xBC,
	"Minus":         0xBD,
	"Period":        0xBE,
	"Slash":         0xBF,
	"Backquote":     0xC0,
	"BracketLeft":   0xDB,
	"Backslash":     0xDC,
	"IntlBackslash": 0xDC,
	"BracketRight":  0xDD,
	"Quote":         0xDE,
}

// codeToVK maps a DOM key code to a virtual-key code, or 0 if unknown.
func codeToVK(code string) int32 {
	if vk, ok := codeVK[code]; ok {
		return vk
	}
	if c, ok := singleSuffix(code, "Key"); ok && c >= 'A' && c <= 'Z' {
		return int32(c)
	}
	if c, ok := singleSuffix(code, "Digit"); ok && c >= '0' && c <= '9' {
		return int32(c)
	}
	if c, ok := singleSuffix(code, "Numpad"); ok && c >= '0' && c <= '9' {
		return 0x60 + int32(c-'0')
	}
	if rest, ok := strings.CutPrefix(code, "F"); ok {
		n := 0
		for _, r := range rest {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return 0x70 + int32(n-1)
		}
	}
	return 0
}

func singleSuffix(code, prefix string) (byte, bool) {
	rest, ok := strings.CutPrefix(code, prefix)
	if !ok || len(rest) != 1 {
		return 0, false
	}
	return rest[0], true
}

func modifierBits(m engine.Modifiers) uint32 {
	var mods uint32
	if m&engine.ModShift != 0 {
		mods |= keyModShift
	}
	if m&engine.ModCtrl != 0 {
		mods |= keyModCtrl
	}
	if m&engine.ModAlt != 0 {
		mods |= keyModAlt
	}
	if m&engine.ModMeta != 0 {
		mods |= keyModMeta
	}
	return mods
}

func mouseButton(b engine.MouseButton) int32 {
	switch b {
	case engine.MouseLeft:
		return mouseButtonLeft
	case engine.MouseMiddle:
		return mouseButtonMiddle
	case engine.MouseRight:
		return mouseButtonRight
	}
	return mouseButtonNone
}
