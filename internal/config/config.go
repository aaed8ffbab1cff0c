// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package config loads the YAML configuration shared by the CLI and the
// example programs.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Config is the root of the configuration file.
type Config struct {
	Backend    string           `yaml:"backend"` // "headless" or "ultralight"
	Runtime    string           `yaml:"runtime"` // "goja" or "quickjs"
	Window     WindowConfig     `yaml:"window"`
	Tick       TickConfig       `yaml:"tick"`
	Log        LogConfig        `yaml:"log"`
	Assets     AssetsConfig     `yaml:"assets"`
	Ultralight UltralightConfig `yaml:"ultralight"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TickConfig selects how the runner advances engines between commands.
type TickConfig struct {
	Mode     string        `yaml:"mode"`     // "immediate", "wait" or "periodic"
	Duration time.Duration `yaml:"duration"` // total wait for wait and periodic
	Interval time.Duration `yaml:"interval"` // pause between ticks for periodic
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AssetsConfig struct {
	Root   string `yaml:"root"`
	Scheme string `yaml:"scheme"`
	Watch  bool   `yaml:"watch"`
}

type UltralightConfig struct {
	BaseDir string `yaml:"base_dir"`
	Debug   bool   `yaml:"debug"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case "headless", "ultralight":
	default:
		errs = append(errs, fmt.Errorf("backend: unknown %q", c.Backend))
	}
	switch c.Runtime {
	case "goja", "quickjs":
	default:
		errs = append(errs, fmt.Errorf("runtime: unknown %q", c.Runtime))
	}
	if err := c.WindowSize().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("window: %w", err))
	}
	if _, err := c.TickMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Assets.Scheme == "" {
		errs = append(errs, errors.New("assets.scheme: empty"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr: empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) WindowSize() window.Size {
	return window.Size{Width: c.Window.Width, Height: c.Window.Height}
}

// TickMode builds the runner tick policy.
func (c *Config) TickMode() (engine.TickMode, error) {
	switch c.Tick.Mode {
	case "", "immediate":
		return engine.Immediate{}, nil
	case "wait":
		if c.Tick.Duration <= 0 {
			return nil, errors.New("tick.duration: must be positive")
		}
		return engine.WaitFor{Duration: c.Tick.Duration}, nil
	case "periodic":
		if c.Tick.Duration <= 0 || c.Tick.Interval <= 0 {
			return nil, errors.New("tick: periodic needs positive duration and interval")
		}
		return engine.PeriodicWait{Duration: c.Tick.Duration, Interval: c.Tick.Interval}, nil
	}
	return nil, fmt.Errorf("tick.mode: unknown %q", c.Tick.Mode)
}

func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(c.Log.Level)
}
