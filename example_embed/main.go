// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Serves HTML/CSS/JS from embed.FS (no files on disk) under a custom
// scheme, and answers rpc.call requests from the page.
package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	webviewui "github.com/YindSoft/webview-ebitengine"
	"github.com/YindSoft/webview-ebitengine/assets"
	"github.com/YindSoft/webview-ebitengine/backends/headless"
	"github.com/YindSoft/webview-ebitengine/backends/ultralight"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/events"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

//go:embed ui
var uiFiles embed.FS

const (
	screenWidth  = 800
	screenHeight = 600
)

type counter struct {
	Seconds int `json:"seconds"`
}

type greeting struct {
	Text string `json:"text"`
}

type Game struct {
	ui      *webviewui.UI
	view    *webviewui.View
	backend string
	log     *log.Logger
	counter int
}

// newBackend uses the Ultralight bridge when WEBVIEW_BACKEND=ultralight.
func newBackend(logger *log.Logger) (engine.Backend, error) {
	if os.Getenv("WEBVIEW_BACKEND") != "ultralight" {
		return headless.New(headless.Options{Logger: logger.WithPrefix("headless")}), nil
	}
	b, err := ultralight.New(ultralight.Options{Debug: true, Logger: logger.WithPrefix("ultralight")})
	if err != nil {
		return nil, err
	}
	// Scripts and styles referenced by the page are read from the VFS.
	if err := b.RegisterFS(uiFiles); err != nil {
		return nil, err
	}
	return b, nil
}

// answer replies to rpc.call("greet", ...). It runs on the runner thread.
func answer(_ window.Window, req *rpc.Request) *rpc.Response {
	if req.Method != "greet" {
		return nil
	}
	var from struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal(req.Param(0), &from); err != nil {
		resp, _ := rpc.NewError(req.ID, err.Error())
		return resp
	}
	resp, err := rpc.NewResult(req.ID, greeting{Text: "Hello " + from.From + ", from embedded Go!"})
	if err != nil {
		return nil
	}
	return resp
}

func newGame(logger *log.Logger) (*Game, error) {
	backend, err := newBackend(logger)
	if err != nil {
		return nil, err
	}
	ui := webviewui.New(webviewui.Options{Backend: backend, Logger: logger})
	if err := events.RegisterOutbound[counter](ui.Registry(), "counter"); err != nil {
		ui.Close()
		return nil, err
	}

	attrs := engine.DefaultAttributes()
	attrs.URL = "embed://ui/index.html"
	attrs.Schemes = &engine.Schemes{}
	if err := attrs.Schemes.Register("embed", assets.FSHandler(uiFiles)); err != nil {
		ui.Close()
		return nil, err
	}
	attrs.RPCHandler = answer

	view, err := ui.NewView(webviewui.ViewSpec{Title: "embed", Width: screenWidth, Height: screenHeight, Attributes: attrs})
	if err != nil {
		ui.Close()
		return nil, fmt.Errorf("embedded UI: %w", err)
	}
	view.SetBounds(0, 0, screenWidth, screenHeight)
	view.SetFocus()

	return &Game{ui: ui, view: view, backend: backend.Name(), log: logger}, nil
}

func (g *Game) Update() error {
	g.counter++
	if err := g.ui.Update(); err != nil {
		return err
	}
	if g.counter%60 == 0 {
		if err := webviewui.Emit(g.ui, g.view, counter{Seconds: g.counter / 60}); err != nil {
			g.log.Warn("emit", "err", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.view.Texture(), nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  backend: %s", ebiten.ActualFPS(), g.backend))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Level: log.DebugLevel})

	game, err := newGame(logger)
	if err != nil {
		logger.Fatal("init", "err", err)
	}
	defer game.ui.Close()

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("webviewui - embed.FS example")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("run", "err", err)
	}
}
