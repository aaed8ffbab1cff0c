// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webviewui

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/runner"
)

var mouseButtons = [3]struct {
	ebiten ebiten.MouseButton
	engine engine.MouseButton
}{
	{ebiten.MouseButtonLeft, engine.MouseLeft},
	{ebiten.MouseButtonRight, engine.MouseRight},
	{ebiten.MouseButtonMiddle, engine.MouseMiddle},
}

// mouseState is the cursor as seen at the start of an update.
type mouseState struct {
	x, y int
}

func cursor() mouseState {
	x, y := ebiten.CursorPosition()
	return mouseState{x: x, y: y}
}

func (v *View) inBounds(mx, my int) bool {
	if v.boundsW <= 0 || v.boundsH <= 0 {
		return mx >= 0 && mx < v.size.Width && my >= 0 && my < v.size.Height
	}
	return mx >= v.boundsX && mx < v.boundsX+v.boundsW &&
		my >= v.boundsY && my < v.boundsY+v.boundsH
}

// normalize maps a screen point to [0, 1] view coordinates.
func (v *View) normalize(mx, my int) engine.Position {
	x, y, w, h := v.boundsX, v.boundsY, v.boundsW, v.boundsH
	if w <= 0 || h <= 0 {
		x, y, w, h = 0, 0, v.size.Width, v.size.Height
	}
	return engine.Position{
		X: float64(mx-x) / float64(w),
		Y: float64(my-y) / float64(h),
	}
}

func (v *View) send(ev runner.UserInput) {
	if err := v.ui.host.Send(runner.Input{ID: v.id, Event: ev}); err != nil {
		v.ui.log.Debug("input dropped", "view", v.id, "err", err)
	}
}

func (v *View) forwardMouse(m mouseState) {
	if v.closed || !v.visible {
		return
	}
	inside := v.inBounds(m.x, m.y)
	dragging := false
	for _, b := range v.buttons {
		dragging = dragging || b
	}
	if !inside && !dragging {
		v.hovering = false
		return
	}
	pos := v.normalize(m.x, m.y)

	if m.x != v.mouseX || m.y != v.mouseY || !v.hovering {
		if dragging {
			v.send(runner.MouseMotion{Position: pos})
		} else {
			v.send(runner.Hover{Position: pos})
		}
		v.mouseX, v.mouseY = m.x, m.y
		v.hovering = true
	}

	for i, b := range mouseButtons {
		down := ebiten.IsMouseButtonPressed(b.ebiten)
		switch {
		case down && !v.buttons[i] && inside:
			v.buttons[i] = true
			v.send(runner.Click{Button: b.engine, State: engine.Pressed, Position: pos})
		case !down && v.buttons[i]:
			v.buttons[i] = false
			v.send(runner.Click{Button: b.engine, State: engine.Released, Position: pos})
		}
	}
}

func (v *View) forwardKeyboard() {
	if v.closed || !v.visible {
		return
	}
	mods := modifiers()
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		code := domCode(key)
		v.send(runner.TypeKeyboard{Key: engine.KeyboardInput{
			State:     engine.Pressed,
			Key:       domKey(code, mods&engine.ModShift != 0),
			Code:      code,
			Modifiers: mods,
		}})
	}
	// Character input from OS text input system (handles shift, layout, IME correctly)
	for _, r := range ebiten.AppendInputChars(nil) {
		s := string(r)
		v.send(runner.TypeKeyboard{Key: engine.KeyboardInput{
			State:     engine.Pressed,
			Key:       s,
			Text:      s,
			Modifiers: mods,
		}})
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		code := domCode(key)
		v.send(runner.TypeKeyboard{Key: engine.KeyboardInput{
			State:     engine.Released,
			Key:       domKey(code, mods&engine.ModShift != 0),
			Code:      code,
			Modifiers: mods,
		}})
	}
}

func modifiers() engine.Modifiers {
	var m engine.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= engine.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= engine.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= engine.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= engine.ModMeta
	}
	return m
}

// domCode returns the DOM KeyboardEvent.code of key. Ebiten names keys
// after the DOM codes except for letters.
func domCode(key ebiten.Key) string {
	if key >= ebiten.KeyA && key <= ebiten.KeyZ {
		return "Key" + key.String()
	}
	return key.String()
}

var namedKeys = map[string]string{
	"Space":          " ",
	"NumpadEnter":    "Enter",
	"ShiftLeft":      "Shift",
	"ShiftRight":     "Shift",
	"ControlLeft":    "Control",
	"ControlRight":   "Control",
	"AltLeft":        "Alt",
	"AltRight":       "Alt",
	"MetaLeft":       "Meta",
	"MetaRight":      "Meta",
	"NumpadAdd":      "+",
	"NumpadSubtract": "-",
	"NumpadMultiply": "*",
	"NumpadDivide":   "/",
	"NumpadDecimal":  ".",
}

// domKey approximates KeyboardEvent.key for a code on a US layout. Typed
// characters arrive separately as text input.
func domKey(code string, shift bool) string {
	if k, ok := namedKeys[code]; ok {
		return k
	}
	switch {
	case strings.HasPrefix(code, "Key") && len(code) == 4:
		if shift {
			return code[3:]
		}
		return strings.ToLower(code[3:])
	case strings.HasPrefix(code, "Digit") && len(code) == 6:
		return code[5:]
	case strings.HasPrefix(code, "Numpad") && len(code) == 7:
		return code[6:]
	}
	return code
}
