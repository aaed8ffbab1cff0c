// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package webviewui renders web views as Ebiten textures.
//
// A UI owns one runner thread and any number of views. The engine behind the
// views is pluggable: the headless backend runs pages in an embedded script
// engine and needs no native libraries, the ultralight backend renders real
// HTML through the Ultralight bridge library.
//
// Basic usage:
//
//	import webviewui "github.com/YindSoft/webview-ebitengine"
//
//	ui := webviewui.New(webviewui.Options{})
//	defer ui.Close()
//
//	// Page requests arrive as typed Go values.
//	type Clicked struct{ Button string }
//	events.RegisterInbound[Clicked](ui.Registry(), "clicked")
//
//	view, err := ui.NewView(webviewui.ViewSpec{
//	    Width: 800, Height: 600,
//	    Attributes: engine.Attributes{URL: "webview://app/index.html"},
//	})
//	if err != nil { ... }
//
//	// In Ebiten Update():
//	if err := ui.Update(); err != nil { return err }
//	for _, ev := range events.Read[Clicked](ui.Registry()) { ... }
//
//	// In Ebiten Draw():
//	screen.DrawImage(view.Texture(), opts)
//
// Pages call Go with window.rpc.call(method, ...params), which returns a
// promise, or window.rpc.notify(method, ...params). Values pushed with [Emit]
// reach listeners added with window.rpc.on(method, fn).
//
// Mouse input is forwarded to the view under the cursor, as set with
// [View.SetBounds]. Keyboard input goes to the focused view; clicking a view
// focuses it, and [View.SetFocus] does so without a click.
package webviewui
