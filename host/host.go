// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package host is the host-side half of the runner: once per host frame it
// routes page requests to typed events, copies new frames into textures
// and asks the runner for the next tick. It never blocks on the runner.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/events"
	"github.com/YindSoft/webview-ebitengine/internal/metrics"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/runner"
)

// Options configure a Host. All fields are optional.
type Options struct {
	TickMode engine.TickMode
	Logger   *log.Logger
	Metrics  *metrics.Metrics
	// OnFallthrough is called for every page request that matched no
	// registered inbound event.
	OnFallthrough func(runner.Request)
}

// Host is driven from a single goroutine, usually the game loop.
type Host struct {
	t        *runner.Transport
	registry *events.Registry
	textures map[runner.InstanceID]*pixel.Image
	// live holds launched instances; frames of anything else are dropped.
	live map[runner.InstanceID]bool
	// pending holds construction results of launches without a Reply.
	pending map[runner.InstanceID]chan error
	log     *log.Logger
	metrics *metrics.Metrics

	onFallthrough func(runner.Request)
}

// New starts a runner on backend.
func New(backend engine.Backend, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Host{
		t: runner.Start(backend, runner.Options{
			TickMode: opts.TickMode,
			Logger:   logger.WithPrefix("runner"),
			Metrics:  opts.Metrics,
		}),
		registry:      events.NewRegistry(),
		textures:      make(map[runner.InstanceID]*pixel.Image),
		live:          make(map[runner.InstanceID]bool),
		pending:       make(map[runner.InstanceID]chan error),
		log:           logger.WithPrefix("host"),
		metrics:       opts.Metrics,
		onFallthrough: opts.OnFallthrough,
	}
}

// Registry returns the event registry. Register mappings before the first
// Update; it is frozen afterwards.
func (h *Host) Registry() *events.Registry { return h.registry }

// Launch queues a new instance and returns its id. Construction errors are
// logged by the runner. Without spec.Reply a failed instance is dropped by
// a later Update; with it, the caller owns the result and must Remove the
// id on failure.
func (h *Host) Launch(spec runner.LaunchSpec) (runner.InstanceID, error) {
	id := runner.NewInstanceID()
	var reply chan error
	if spec.Reply == nil {
		reply = make(chan error, 1)
		spec.Reply = reply
	}
	if err := h.t.Send(runner.Launch{ID: id, Spec: spec}); err != nil {
		return "", err
	}
	h.live[id] = true
	if reply != nil {
		h.pending[id] = reply
	}
	return id, nil
}

// Live reports whether id was launched and has not been removed, either by
// Remove, a despawn request or a failed construction.
func (h *Host) Live(id runner.InstanceID) bool { return h.live[id] }

// LaunchWait launches an instance and waits until it is live.
func (h *Host) LaunchWait(ctx context.Context, spec runner.LaunchSpec) (runner.InstanceID, error) {
	reply := make(chan error, 1)
	spec.Reply = reply
	id, err := h.Launch(spec)
	if err != nil {
		return "", err
	}
	select {
	case err := <-reply:
		if err != nil {
			delete(h.live, id)
			return "", err
		}
		return id, nil
	case <-h.t.Done():
		return "", runner.ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Send queues any runner command.
func (h *Host) Send(cmd runner.Command) error { return h.t.Send(cmd) }

// Remove closes an instance and drops its texture.
func (h *Host) Remove(id runner.InstanceID) error {
	h.forget(id)
	return h.t.Send(runner.Remove{ID: id})
}

// Emit sends v to page listeners of its registered outbound method on
// instance id, or on every instance when id is empty.
func Emit[T any](h *Host, id runner.InstanceID, v T) error {
	cmd, err := events.Encode(h.registry, id, v)
	if err != nil {
		return err
	}
	return h.t.Send(cmd)
}

// Texture returns the latest frame of id, or nil if none arrived yet. The
// image is reused across updates while the size stays the same.
func (h *Host) Texture(id runner.InstanceID) *pixel.Image { return h.textures[id] }

// Update runs one host cycle and returns the instances whose texture
// changed. It only fails once the runner has stopped.
func (h *Host) Update() ([]runner.InstanceID, error) {
	h.registry.Freeze()

	for id, reply := range h.pending {
		select {
		case err := <-reply:
			delete(h.pending, id)
			if err != nil {
				h.forget(id)
			}
		default:
		}
	}

	for _, req := range h.t.DrainRequests() {
		h.route(req)
	}

	var updated []runner.InstanceID
	for _, f := range h.t.LatestFrames() {
		if h.store(f) {
			updated = append(updated, f.ID)
		}
	}

	if err := h.t.Send(runner.Tick{}); err != nil {
		return updated, err
	}
	return updated, nil
}

func (h *Host) route(req runner.Request) {
	if events.IsBuiltin(req.RPC) {
		cmd, err := events.BuiltinCommand(req.ID, req.RPC)
		if err != nil {
			h.log.Warn("bad builtin request", "instance", req.ID, "err", err)
			return
		}
		if cmd, ok := cmd.(runner.Remove); ok {
			h.forget(cmd.ID)
		}
		_ = h.t.Send(cmd)
		return
	}

	n, err := h.registry.Dispatch(req)
	if err != nil {
		h.metrics.DecodeError()
		h.log.Warn("dropped request", "instance", req.ID, "method", req.RPC.Method, "err", err)
	}
	if n == 0 {
		h.metrics.Fallthrough()
		h.log.Warn("unhandled request", "instance", req.ID, "method", req.RPC.Method, "params", string(req.RPC.Params))
		if h.onFallthrough != nil {
			h.onFallthrough(req)
		}
	}
}

func (h *Host) forget(id runner.InstanceID) {
	delete(h.live, id)
	delete(h.pending, id)
	delete(h.textures, id)
}

func (h *Host) store(f runner.Frame) bool {
	if !h.live[f.ID] {
		return false
	}
	dst, ok := h.textures[f.ID]
	if ok {
		same, err := pixel.Reconcile(dst, f.Buffer)
		if err != nil {
			h.log.Warn("frame rejected", "instance", f.ID, "err", err)
			return false
		}
		if same {
			return true
		}
	}
	img, err := pixel.NewImage(f.Buffer)
	if err != nil {
		h.log.Warn("frame rejected", "instance", f.ID, "err", err)
		return false
	}
	h.textures[f.ID] = img
	return true
}

// Close shuts the runner down, closing every instance.
func (h *Host) Close(ctx context.Context) error {
	if err := h.t.Shutdown(ctx); err != nil && !errors.Is(err, runner.ErrStopped) {
		return fmt.Errorf("host: shutdown: %w", err)
	}
	return nil
}

// Done is closed when the runner has exited.
func (h *Host) Done() <-chan struct{} { return h.t.Done() }
