// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Two views side by side talking to the game over the RPC bridge. The
// backend, tick mode and log level come from webview.yaml; set
// assets.watch to reload both views when a file under ui/ changes.
package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	webviewui "github.com/YindSoft/webview-ebitengine"
	"github.com/YindSoft/webview-ebitengine/assets"
	"github.com/YindSoft/webview-ebitengine/backends/headless"
	"github.com/YindSoft/webview-ebitengine/backends/ultralight"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/events"
	"github.com/YindSoft/webview-ebitengine/internal/config"
)

const (
	screenWidth  = 800
	screenHeight = 600
	mainUIWidth  = 600
	sidebarWidth = 200
	uiDir        = "ui"
)

// Page to game.
type action struct {
	Name string `json:"name"`
}

type sidebarMessage struct {
	Text string `json:"text"`
}

// Game to page.
type counter struct {
	Seconds int `json:"seconds"`
}

type notice struct {
	Text string `json:"text"`
}

type echo struct {
	Echo   string `json:"echo"`
	Status string `json:"status"`
}

type Game struct {
	ui      *webviewui.UI
	mainUI  *webviewui.View
	sidebar *webviewui.View
	log     *log.Logger
	counter int
}

func findBaseDir() string {
	// The bridge usually sits in the repo root when running from example/.
	if _, err := os.Stat(filepath.Join("..", "ul_bridge.dll")); err == nil {
		return ".."
	}
	if _, err := os.Stat(filepath.Join("..", "libul_bridge.so")); err == nil {
		return ".."
	}
	return ""
}

func newBackend(cfg config.Config, logger *log.Logger) (engine.Backend, error) {
	if cfg.Backend == "ultralight" {
		baseDir := cfg.Ultralight.BaseDir
		if baseDir == "" {
			baseDir = findBaseDir()
		}
		b, err := ultralight.New(ultralight.Options{
			BaseDir: baseDir,
			Debug:   cfg.Ultralight.Debug,
			Logger:  logger.WithPrefix("ultralight"),
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return headless.New(headless.Options{
		Runtime: headless.Runtime(cfg.Runtime),
		Logger:  logger.WithPrefix("headless"),
	}), nil
}

func register(r *events.Registry) error {
	for _, err := range []error{
		events.RegisterInbound[action](r, "action"),
		events.RegisterInbound[sidebarMessage](r, "sidebar"),
		events.RegisterOutbound[counter](r, "counter"),
		events.RegisterOutbound[notice](r, "notice"),
		events.RegisterOutbound[echo](r, "echo"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// appSchemes serves the files under uiDir as app:///<name>.
func appSchemes() (*engine.Schemes, error) {
	schemes := &engine.Schemes{}
	if err := schemes.Register("app", assets.Handler(uiDir)); err != nil {
		return nil, err
	}
	return schemes, nil
}

func page(schemes *engine.Schemes, name string) engine.Attributes {
	attrs := engine.DefaultAttributes()
	attrs.URL = "app:///" + name
	attrs.Schemes = schemes
	return attrs
}

func newGame(cfg config.Config, logger *log.Logger) (*Game, error) {
	backend, err := newBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	tickMode, err := cfg.TickMode()
	if err != nil {
		return nil, err
	}
	ui := webviewui.New(webviewui.Options{Backend: backend, TickMode: tickMode, Logger: logger})
	if err := register(ui.Registry()); err != nil {
		ui.Close()
		return nil, err
	}

	schemes, err := appSchemes()
	if err != nil {
		ui.Close()
		return nil, err
	}

	mainUI, err := ui.NewView(webviewui.ViewSpec{Title: "main", Width: mainUIWidth, Height: screenHeight, Attributes: page(schemes, "index.html")})
	if err != nil {
		ui.Close()
		return nil, fmt.Errorf("main UI: %w", err)
	}
	sidebar, err := ui.NewView(webviewui.ViewSpec{Title: "sidebar", Width: sidebarWidth, Height: screenHeight, Attributes: page(schemes, "sidebar.html")})
	if err != nil {
		ui.Close()
		return nil, fmt.Errorf("sidebar UI: %w", err)
	}

	mainUI.SetBounds(0, 0, mainUIWidth, screenHeight)
	sidebar.SetBounds(mainUIWidth, 0, sidebarWidth, screenHeight)
	mainUI.SetFocus()

	return &Game{ui: ui, mainUI: mainUI, sidebar: sidebar, log: logger}, nil
}

func (g *Game) Update() error {
	g.counter++

	if err := g.ui.Update(); err != nil {
		return err
	}

	for _, ev := range events.Read[action](g.ui.Registry()) {
		g.log.Info("action", "name", ev.Value.Name)
		g.handleAction(ev.Value.Name)
	}
	for _, ev := range events.Read[sidebarMessage](g.ui.Registry()) {
		g.log.Info("sidebar message", "text", ev.Value.Text)
		g.warn("emit", webviewui.Emit(g.ui, g.sidebar, echo{Echo: ev.Value.Text, Status: "ok"}))
	}

	// Send a counter update every second
	if g.counter%60 == 0 {
		g.warn("emit", webviewui.Emit(g.ui, g.mainUI, counter{Seconds: g.counter / 60}))
	}
	return nil
}

func (g *Game) handleAction(name string) {
	switch name {
	case "greet":
		g.notify("Hello from Go!")
	case "count":
		g.notify(fmt.Sprintf("Counter is at %d", g.counter/60))
	case "hide-sidebar":
		g.warn("hide sidebar", g.sidebar.SetVisible(false))
	case "show-sidebar":
		g.warn("show sidebar", g.sidebar.SetVisible(true))
	default:
		g.notify("Go received: " + name)
	}
}

func (g *Game) notify(text string) {
	g.warn("emit", webviewui.Emit(g.ui, g.mainUI, notice{Text: text}))
}

func (g *Game) warn(what string, err error) {
	if err != nil {
		g.log.Warn(what, "err", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})

	// Animated shapes behind the HTML (visible through transparent areas)
	t := float64(g.counter) / 60.0
	bx := float32(100 + 80*math.Sin(t*0.5))
	by := float32(200 + 60*math.Cos(t*0.7))
	vector.DrawFilledRect(screen, bx, by, 120, 120, color.RGBA{0, 200, 80, 255}, true)
	vector.DrawFilledRect(screen, bx+140, by+30, 80, 80, color.RGBA{200, 180, 0, 255}, true)

	optsMain := &ebiten.DrawImageOptions{}
	optsMain.ColorScale.Scale(1, 1, 1, 0.5)
	screen.DrawImage(g.mainUI.Texture(), optsMain)

	optsSidebar := &ebiten.DrawImageOptions{}
	optsSidebar.ColorScale.Scale(1, 1, 1, 0.5)
	optsSidebar.GeoM.Translate(mainUIWidth, 0)
	screen.DrawImage(g.sidebar.Texture(), optsSidebar)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	cfg, path, err := config.Load("")
	if err != nil {
		log.Fatal("config", "err", err)
	}
	level, _ := cfg.LogLevel()
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Level: level})
	if path != "" {
		logger.Info("config loaded", "path", path)
	}

	game, err := newGame(cfg, logger)
	if err != nil {
		logger.Fatal("init", "err", err)
	}
	defer game.ui.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Assets.Watch {
		w, err := assets.NewWatcher(uiDir, assets.WatchOptions{Logger: logger.WithPrefix("assets")})
		if err != nil {
			logger.Fatal("watch", "err", err)
		}
		go w.Run(ctx, assets.ReloadAll(game.ui.Host(), logger))
	}

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("webviewui - Ebiten web view demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("run", "err", err)
	}
}
