// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath names an environment variable holding a config file path.
const EnvPath = "WEBVIEW_CONFIG"

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return cfg
}

// Load reads the first config file found and lays it over the embedded
// defaults. Search order: customPath -> $WEBVIEW_CONFIG -> ./webview.yaml ->
// $XDG_CONFIG_HOME/webview/config.yaml -> defaults only.
//
// A file that was named explicitly must exist; the others are optional.
func Load(customPath string) (Config, string, error) {
	cfg := Default()
	explicit := customPath
	if explicit == "" {
		explicit = os.Getenv(EnvPath)
	}
	if explicit != "" {
		if err := overlay(&cfg, explicit); err != nil {
			return cfg, explicit, err
		}
		return cfg, explicit, cfg.Validate()
	}
	for _, p := range searchPaths() {
		err := overlay(&cfg, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, p, err
		}
		return cfg, p, cfg.Validate()
	}
	return cfg, "", cfg.Validate()
}

func searchPaths() []string {
	paths := []string{"webview.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "webview", "config.yaml"))
	}
	return paths
}

func overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
