// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// webview-snapshot renders a page without a window and writes the captured
// frame as a PNG.
//
// Usage:
//
//	webview-snapshot --html '<body style="background:teal">' --out teal.png
//	webview-snapshot --file ui/index.html --width 1280 --height 720
//	webview-snapshot --url webview://app/index.html --assets ./ui
//
// Flags override the configuration file (see --config).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
