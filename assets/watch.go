// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package assets

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/YindSoft/webview-ebitengine/runner"
)

// Watcher reports changes below an asset root.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	log      *log.Logger
	debounce time.Duration
}

// WatchOptions configure a Watcher. All fields are optional.
type WatchOptions struct {
	Logger *log.Logger
	// Debounce groups bursts of events into one notification. Default 100ms.
	Debounce time.Duration
}

// NewWatcher watches root and every directory below it.
func NewWatcher(root string, opts WatchOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("assets: watcher: %w", err)
	}
	w := &Watcher{root: root, fsw: fsw, log: opts.Logger, debounce: opts.Debounce}
	if w.log == nil {
		w.log = log.Default().WithPrefix("assets")
	}
	if w.debounce <= 0 {
		w.debounce = 100 * time.Millisecond
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("assets: watch %s: %w", root, err)
	}
	return w, nil
}

// Run calls onChange once per burst of file changes until ctx is done. It
// closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// Directories created after start must be added explicitly.
				_ = w.fsw.Add(ev.Name)
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			w.log.Debug("asset changed", "path", ev.Name, "op", ev.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "root", w.root, "err", err)
		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// Sender accepts runner commands; runner.Transport and host.Host both do.
type Sender interface {
	Send(runner.Command) error
}

// ReloadAll returns an onChange callback that reloads every instance.
func ReloadAll(s Sender, logger *log.Logger) func() {
	return func() {
		if err := s.Send(runner.RunCommand{Command: runner.Reload{}}); err != nil && logger != nil {
			logger.Warn("reload failed", "err", err)
		}
	}
}
