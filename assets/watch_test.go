// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/runner"
)

func TestWatcherReportsChanges(t *testing.T) {
	root := assetRoot(t)
	w, err := NewWatcher(root, WatchOptions{Logger: log.New(io.Discard), Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { changed <- struct{}{} }) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "app.js"), []byte("go(2)"), 0o644))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type recordingSender struct {
	mu   sync.Mutex
	cmds []runner.Command
}

func (s *recordingSender) Send(c runner.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, c)
	return nil
}

func TestReloadAllBroadcastsReload(t *testing.T) {
	s := &recordingSender{}
	ReloadAll(s, nil)()
	assert.Equal(t, []runner.Command{runner.RunCommand{Command: runner.Reload{}}}, s.cmds)
}
