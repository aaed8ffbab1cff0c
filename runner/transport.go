// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package runner

import (
	"context"
	"errors"

	"github.com/YindSoft/webview-ebitengine/internal/mailbox"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
)

// ErrStopped is returned when sending to a runner that has exited.
var ErrStopped = errors.New("runner: stopped")

// Frame is a captured frame of one instance.
type Frame struct {
	ID     InstanceID
	Buffer *pixel.Buffer
}

// Request is a page request received from one instance.
type Request struct {
	ID  InstanceID
	RPC *rpc.Request
}

// Transport is the host's side of a running runner. Every method is safe for
// concurrent use and none of them block on the runner, except Shutdown.
type Transport struct {
	commands *mailbox.Queue[Command]
	frames   *mailbox.Queue[Frame]
	requests *mailbox.Queue[Request]
	done     chan struct{}
}

func newTransport() *Transport {
	return &Transport{
		commands: mailbox.New[Command](),
		frames:   mailbox.New[Frame](),
		requests: mailbox.New[Request](),
		done:     make(chan struct{}),
	}
}

// Send queues cmd for the runner.
func (t *Transport) Send(cmd Command) error {
	if !t.commands.Push(cmd) {
		return ErrStopped
	}
	return nil
}

// DrainFrames returns every frame captured since the last call, oldest first.
func (t *Transport) DrainFrames() []Frame {
	return t.frames.Drain()
}

// LatestFrames drains the frame queue keeping only the newest frame of each
// instance.
func (t *Transport) LatestFrames() []Frame {
	return Coalesce(t.frames.Drain())
}

// DrainRequests returns every page request received since the last call.
func (t *Transport) DrainRequests() []Request {
	return t.requests.Drain()
}

// Done is closed once the runner has closed every instance and exited.
func (t *Transport) Done() <-chan struct{} { return t.done }

// Shutdown sends AppExit and waits for the runner to exit.
func (t *Transport) Shutdown(ctx context.Context) error {
	if err := t.Send(AppExit{}); err != nil && !errors.Is(err, ErrStopped) {
		return err
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Detach tells the runner the host is gone. The runner closes every
// instance at its next output and exits, as if it had received AppExit.
func (t *Transport) Detach() {
	t.frames.Close()
	t.requests.Close()
	t.commands.Close()
}

// Coalesce keeps the last frame of each instance, in the order in which
// each instance's last frame arrived.
func Coalesce(frames []Frame) []Frame {
	if len(frames) < 2 {
		return frames
	}
	last := make(map[InstanceID]int, len(frames))
	for i, f := range frames {
		last[f.ID] = i
	}
	out := make([]Frame, 0, len(last))
	for i, f := range frames {
		if last[f.ID] == i {
			out = append(out, f)
		}
	}
	return out
}
