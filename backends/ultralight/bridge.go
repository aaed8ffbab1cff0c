// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Mouse event types (ULMouseEventType / ULMouseButton)
const (
	mouseEventTypeMoved = 0
	mouseEventTypeDown  = 1
	mouseEventTypeUp    = 2

	mouseButtonNone   = 0
	mouseButtonLeft   = 1
	mouseButtonMiddle = 2
	mouseButtonRight  = 3
)

// Key event types for Ultralight
const (
	keyEventRawKeyDown = 0
	keyEventKeyDown    = 1
	keyEventKeyUp      = 2
	keyEventChar       = 3
)

// Key modifier bits
const (
	keyModAlt   = 1
	keyModCtrl  = 2
	keyModMeta  = 4
	keyModShift = 8
)

const messageBufSize = 2048

var (
	ulInit                  func(baseDir string, debug int32) int32
	ulCreateView            func(width, height int32) int32
	ulDestroyView           func(viewID int32)
	ulViewLoadHTML          func(viewID int32, html string)
	ulViewLoadURL           func(viewID int32, url string)
	ulTick                  func()
	ulViewGetPixels         func(viewID int32) uintptr
	ulViewUnlockPixels      func(viewID int32)
	ulViewGetWidth          func(viewID int32) uint32
	ulViewGetHeight         func(viewID int32) uint32
	ulViewGetRowBytes       func(viewID int32) uint32
	ulViewFireMouse         func(viewID int32, eventType, x, y, button int32)
	ulViewFireKey           func(viewID int32, keyType int32, vk int32, mods uint32, text string)
	ulViewEvalJS            func(viewID int32, js string)
	ulViewGetMessage        func(viewID int32, buf uintptr, bufSize int32) int32
	ulViewGetConsoleMessage func(viewID int32, buf uintptr, bufSize int32) int32
	ulVfsRegister           func(path string, data uintptr, size int64) int32
	ulVfsClear              func()
	ulDestroy               func()
)

// bridge tracks the loaded library and the Ultralight platform state. The
// library is loaded once per process; ul_init runs again after the last view
// is destroyed and the platform torn down.
var bridge struct {
	mu      sync.Mutex
	loaded  bool
	loadErr error
	libPath string
	inited  bool
	views   int
}

func loadBridge(baseDir string) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.loaded || bridge.loadErr != nil {
		return bridge.loadErr
	}
	path, handle, err := openBridge(baseDir)
	if err != nil {
		bridge.loadErr = err
		return err
	}
	if err := resolveAllSymbols(handle); err != nil {
		bridge.loadErr = fmt.Errorf("%s: %w (recompile the bridge library)", path, err)
		return bridge.loadErr
	}
	bridge.loaded, bridge.libPath = true, path
	return nil
}

func resolveAllSymbols(handle uintptr) error {
	for _, reg := range []struct {
		fptr any
		name string
	}{
		{&ulInit, "ul_init"},
		{&ulCreateView, "ul_create_view"},
		{&ulDestroyView, "ul_destroy_view"},
		{&ulViewLoadHTML, "ul_view_load_html"},
		{&ulViewLoadURL, "ul_view_load_url"},
		{&ulTick, "ul_tick"},
		{&ulViewGetPixels, "ul_view_get_pixels"},
		{&ulViewUnlockPixels, "ul_view_unlock_pixels"},
		{&ulViewGetWidth, "ul_view_get_width"},
		{&ulViewGetHeight, "ul_view_get_height"},
		{&ulViewGetRowBytes, "ul_view_get_row_bytes"},
		{&ulViewFireMouse, "ul_view_fire_mouse"},
		{&ulViewFireKey, "ul_view_fire_key"},
		{&ulViewEvalJS, "ul_view_eval_js"},
		{&ulViewGetMessage, "ul_view_get_message"},
		{&ulViewGetConsoleMessage, "ul_view_get_console_message"},
		{&ulVfsRegister, "ul_vfs_register"},
		{&ulVfsClear, "ul_vfs_clear"},
		{&ulDestroy, "ul_destroy"},
	} {
		sym, err := getSymbolAddr(handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w", reg.name, err)
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

// acquireView calls ul_init when no view is alive and counts one more view.
func acquireView(baseDir string, debug bool) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if !bridge.inited {
		d := int32(0)
		if debug {
			d = 1
		}
		if rc := ulInit(baseDir, d); rc != 0 {
			return fmt.Errorf("ul_init failed with code %d", rc)
		}
		bridge.inited = true
	}
	bridge.views++
	return nil
}

// releaseView tears the platform down with the last view.
func releaseView() {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.views--
	if bridge.views <= 0 {
		bridge.views = 0
		bridge.inited = false
		ulDestroy()
	}
}

func registerFile(filePath string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if rc := ulVfsRegister(filePath, uintptr(unsafe.Pointer(&data[0])), int64(len(data))); rc != 0 {
		return fmt.Errorf("ul_vfs_register failed for %q: code %d", filePath, rc)
	}
	return nil
}

func pollMessage(viewID int32) (string, bool) {
	return poll(ulViewGetMessage, viewID)
}

func pollConsoleMessage(viewID int32) (string, bool) {
	return poll(ulViewGetConsoleMessage, viewID)
}

func poll(fn func(int32, uintptr, int32) int32, viewID int32) (string, bool) {
	var buf [messageBufSize]byte
	n := fn(viewID, uintptr(unsafe.Pointer(&buf[0])), messageBufSize)
	if n <= 0 {
		return "", false
	}
	return string(buf[:min(int(n), messageBufSize)]), true
}
