// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/YindSoft/webview-ebitengine/assets"
	"github.com/YindSoft/webview-ebitengine/backends/headless"
	"github.com/YindSoft/webview-ebitengine/backends/ultralight"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/host"
	"github.com/YindSoft/webview-ebitengine/internal/config"
	"github.com/YindSoft/webview-ebitengine/internal/metrics"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/runner"
	"github.com/YindSoft/webview-ebitengine/window"
)

type snapshotFlags struct {
	config      string
	html        string
	url         string
	file        string
	out         string
	backend     string
	runtime     string
	assets      string
	metricsAddr string
	logLevel    string
	width       int
	height      int
	ticks       int
	timeout     time.Duration
	scripts     []string
}

func newRootCmd() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "webview-snapshot",
		Short: "Render a page offscreen and save the frame as PNG",
		Long: `webview-snapshot launches one web view on the configured backend,
ticks it, and writes the latest frame to a PNG file.

Exactly one of --html, --url or --file selects the page.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "Config file (default: $WEBVIEW_CONFIG, ./webview.yaml, user config dir)")
	fl.StringVar(&f.html, "html", "", "Inline HTML to render")
	fl.StringVar(&f.url, "url", "", "URL to load")
	fl.StringVar(&f.file, "file", "", "Local HTML file to load")
	fl.StringVarP(&f.out, "out", "o", "frame.png", "Output PNG path")
	fl.StringVar(&f.backend, "backend", "", "Engine backend: headless or ultralight")
	fl.StringVar(&f.runtime, "runtime", "", "Headless script runtime: goja or quickjs")
	fl.StringVar(&f.assets, "assets", "", "Directory served under the asset scheme")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while rendering")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fl.IntVar(&f.width, "width", 0, "View width in pixels")
	fl.IntVar(&f.height, "height", 0, "View height in pixels")
	fl.IntVar(&f.ticks, "ticks", 10, "Host frames to run before capturing")
	fl.DurationVar(&f.timeout, "timeout", 10*time.Second, "Give up when no frame arrives in time")
	fl.StringArrayVar(&f.scripts, "script", nil, "Script to run on page load before page scripts (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("html", "url", "file")
	cmd.MarkFlagsOneRequired("html", "url", "file")
	return cmd
}

func runSnapshot(cmd *cobra.Command, f snapshotFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Prefix:          "snapshot",
		Level:           level,
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", cfg.Metrics.Addr, "err", err)
			}
		}()
		defer srv.Close()
	}

	backend, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	attrs, err := pageAttributes(cfg, f)
	if err != nil {
		return err
	}
	tickMode, err := cfg.TickMode()
	if err != nil {
		return err
	}

	h := host.New(backend, host.Options{TickMode: tickMode, Logger: logger, Metrics: m})
	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := h.Close(closeCtx); err != nil {
			logger.Warn("close", "err", err)
		}
	}()

	id, err := h.LaunchWait(ctx, runner.LaunchSpec{
		Window:     window.Attributes{Title: "snapshot", Size: cfg.WindowSize()},
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	img, err := render(ctx, h, id, f.ticks)
	if err != nil {
		return err
	}
	if err := writePNG(f.out, img); err != nil {
		return err
	}
	logger.Info("wrote frame", "path", f.out, "size", window.Size{Width: img.Width, Height: img.Height})
	return nil
}

// loadConfig applies flags that were set over the configuration file.
func loadConfig(cmd *cobra.Command, f snapshotFlags) (config.Config, error) {
	cfg, _, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	if fl.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fl.Changed("runtime") {
		cfg.Runtime = f.runtime
	}
	if fl.Changed("width") {
		cfg.Window.Width = f.width
	}
	if fl.Changed("height") {
		cfg.Window.Height = f.height
	}
	if fl.Changed("assets") {
		cfg.Assets.Root = f.assets
	}
	if fl.Changed("metrics-addr") {
		cfg.Metrics.Enabled = f.metricsAddr != ""
		cfg.Metrics.Addr = f.metricsAddr
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, cfg.Validate()
}

func newBackend(cfg config.Config, logger *log.Logger) (engine.Backend, error) {
	if cfg.Backend == "ultralight" {
		b, err := ultralight.New(ultralight.Options{
			BaseDir: cfg.Ultralight.BaseDir,
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

func pageAttributes(cfg config.Config, f snapshotFlags) (engine.Attributes, error) {
	attrs := engine.DefaultAttributes()
	attrs.InitScripts = f.scripts
	switch {
	case f.html != "":
		attrs.HTML = f.html
	case f.url != "":
		attrs.URL = f.url
	case f.file != "":
		abs, err := filepath.Abs(f.file)
		if err != nil {
			return attrs, err
		}
		attrs.URL = "file://" + filepath.ToSlash(abs)
	}
	if _, err := os.Stat(cfg.Assets.Root); err == nil {
		attrs.Schemes = &engine.Schemes{}
		if err := attrs.Schemes.Register(cfg.Assets.Scheme, assets.Handler(cfg.Assets.Root)); err != nil {
			return attrs, err
		}
	}
	return attrs, nil
}

// render runs host frames until ticks have passed and a frame has arrived.
func render(ctx context.Context, h *host.Host, id runner.InstanceID, ticks int) (*pixel.Image, error) {
	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()
	for n := 0; ; n++ {
		if _, err := h.Update(); err != nil {
			return nil, err
		}
		if img := h.Texture(id); img != nil && n >= ticks {
			return img, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("no frame after %d ticks: %w", n, ctx.Err())
		case <-h.Done():
			return nil, runner.ErrStopped
		case <-frame.C:
		}
	}
}

func writePNG(path string, img *pixel.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img.NRGBA()); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
