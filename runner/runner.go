// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package runner owns every engine instance on one dedicated OS thread and
// drives them through a command queue.
package runner

import (
	"context"
	"errors"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/internal/metrics"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

// Options configure a runner. All fields are optional.
type Options struct {
	TickMode engine.TickMode // defaults to engine.Immediate
	Logger   *log.Logger
	Metrics  *metrics.Metrics
}

type instance struct {
	id             InstanceID
	engine         engine.Engine
	rpcInitialized bool
}

type runner struct {
	backend engine.Backend
	t       *Transport
	mode    engine.TickMode
	log     *log.Logger
	metrics *metrics.Metrics

	instances map[InstanceID]*instance
	order     []InstanceID
	// hostGone is set when an output queue refuses a push.
	hostGone bool
}

// Start launches the runner goroutine, locked to its own OS thread, and
// returns the host's end of it.
func Start(backend engine.Backend, opts Options) *Transport {
	t := newTransport()
	r := &runner{
		backend:   backend,
		t:         t,
		mode:      opts.TickMode,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		instances: make(map[InstanceID]*instance),
	}
	if r.mode == nil {
		r.mode = engine.Immediate{}
	}
	if r.log == nil {
		r.log = log.Default().WithPrefix("runner")
	}
	go r.run()
	return t
}

func (r *runner) run() {
	// Native engines require every call to come from the same thread. The
	// thread is discarded when this goroutine returns.
	runtime.LockOSThread()
	defer close(r.t.done)

	for {
		cmd, ok := r.t.commands.Pop(context.Background())
		if !ok {
			r.log.Warn("command queue closed without AppExit")
			break
		}
		r.metrics.Command(cmd.kind())
		if stop := r.handle(cmd); stop {
			break
		}
		if r.hostGone {
			r.log.Warn("host receiver dropped, shutting down")
			break
		}
	}
	r.closeAll()
	r.t.commands.Close()
	r.t.frames.Close()
	r.t.requests.Close()
}

func (r *runner) handle(cmd Command) (stop bool) {
	switch c := cmd.(type) {
	case Launch:
		r.launch(c)
	case SetRPCInitialized:
		if inst, ok := r.instances[c.ID]; ok {
			inst.rpcInitialized = true
		}
	case Input:
		if inst, ok := r.instances[c.ID]; ok {
			forwardInput(inst.engine, c.Event)
		}
	case Resize:
		r.resize(c)
	case RunCommand:
		for _, inst := range r.targets(c.ID) {
			r.runWebCommand(inst, c.Command)
		}
	case SendOutputEvent:
		r.sendOutput(c)
	case Tick:
		r.tick()
	case Remove:
		if inst, ok := r.instances[c.ID]; ok {
			inst.engine.Close()
			r.forget(c.ID)
			r.log.Debug("removed", "instance", c.ID)
		}
	case SetVisibility:
		if inst, ok := r.instances[c.ID]; ok {
			inst.engine.SetVisible(c.Visible)
		}
	case AppExit:
		return true
	default:
		r.log.Warn("unknown command", "type", c)
	}
	return false
}

func (r *runner) launch(c Launch) {
	err := r.create(c)
	if err != nil {
		r.metrics.LaunchFailure()
		r.log.Error("launch failed", "instance", c.ID, "err", err)
	}
	if c.Spec.Reply != nil {
		select {
		case c.Spec.Reply <- err:
		default:
		}
	}
}

func (r *runner) create(c Launch) error {
	if _, ok := r.instances[c.ID]; ok {
		return &engine.ConstructionError{Backend: r.backend.Name(), Err: errors.New("instance id in use: " + string(c.ID))}
	}
	wattrs := c.Spec.Window
	if wattrs.Size == (window.Size{}) {
		wattrs.Size = window.DefaultSize
	}
	if !c.Spec.Attributes.Color.Opaque() {
		wattrs.Transparent = true
	}
	w, err := r.backend.NewWindow(wattrs)
	if err != nil {
		return &engine.ConstructionError{Backend: r.backend.Name(), Err: err}
	}

	attrs := c.Spec.Attributes
	attrs.RPCHandler = r.rpcHandler(c.ID, attrs.RPCHandler)
	e, err := r.backend.NewEngine(w, attrs)
	if err != nil {
		return &engine.ConstructionError{Backend: r.backend.Name(), Err: err}
	}

	r.instances[c.ID] = &instance{id: c.ID, engine: e}
	r.order = append(r.order, c.ID)
	r.metrics.Instances(len(r.instances))
	r.log.Debug("launched", "instance", c.ID, "size", w.InnerSize())
	return nil
}

// rpcHandler forwards every page request to the host. Requests with an id
// are answered by user when it returns a response, otherwise with a null
// result so the page promise settles.
func (r *runner) rpcHandler(id InstanceID, user rpc.Handler) rpc.Handler {
	return func(w window.Window, req *rpc.Request) *rpc.Response {
		if !r.t.requests.Push(Request{ID: id, RPC: req}) {
			r.hostGone = true
		}
		r.metrics.Request()

		var resp *rpc.Response
		if user != nil {
			resp = user(w, req)
		}
		if resp == nil && req.HasID() {
			resp = &rpc.Response{JSONRPC: rpc.Version, ID: req.ID}
		}
		return resp
	}
}

func forwardInput(e engine.Engine, ev UserInput) {
	size := e.Window().InnerSize()
	toPixels := func(p engine.Position) engine.Position {
		return engine.Position{X: p.X * float64(size.Width), Y: p.Y * float64(size.Height)}
	}
	switch in := ev.(type) {
	case MouseMotion:
		e.SendMousePosition(toPixels(in.Position))
	case Hover:
		e.SendMousePosition(toPixels(in.Position))
	case Click:
		e.SendMouseEvent(engine.MouseEvent{Button: in.Button, State: in.State, Position: toPixels(in.Position)})
	case TypeKeyboard:
		e.SendKeyboardInput(in.Key)
	}
}

func (r *runner) resize(c Resize) {
	inst, ok := r.instances[c.ID]
	if !ok {
		return
	}
	if inst.engine.Window().InnerSize() == c.Size {
		return
	}
	if err := inst.engine.Resize(c.Size); err != nil {
		r.log.Error("resize failed", "instance", c.ID, "size", c.Size, "err", err)
	}
}

func (r *runner) runWebCommand(inst *instance, cmd WebCommand) {
	switch wc := cmd.(type) {
	case LoadURI:
		inst.engine.LoadURI(wc.URI)
	case LoadHTML:
		inst.engine.LoadHTML(wc.HTML)
	case Reload:
		inst.engine.Reload()
	case RunJavascript:
		if err := inst.engine.EvaluateScript(wc.Script); err != nil {
			r.log.Error("script failed", "instance", inst.id, "err", err)
		}
	}
}

func (r *runner) sendOutput(c SendOutputEvent) {
	script, err := rpc.MessageScript(c.Method, c.Payload)
	if err != nil {
		r.log.Error("bad output event", "method", c.Method, "err", err)
		return
	}
	for _, inst := range r.targets(c.ID) {
		if !inst.rpcInitialized {
			continue
		}
		if err := inst.engine.EvaluateScript(script); err != nil {
			r.log.Error("output event failed", "instance", inst.id, "method", c.Method, "err", err)
		}
	}
}

func (r *runner) tick() {
	for _, id := range r.order {
		inst := r.instances[id]
		engine.Tick(inst.engine, r.mode)
		buf, err := inst.engine.CaptureFrame()
		if err != nil {
			r.log.Error("capture failed", "instance", id, "err", err)
			continue
		}
		if buf == nil {
			continue
		}
		if !r.t.frames.Push(Frame{ID: id, Buffer: buf}) {
			r.hostGone = true
			return
		}
		r.metrics.Frame()
	}
}

// targets resolves id to one instance, or all of them in launch order when
// id is empty.
func (r *runner) targets(id InstanceID) []*instance {
	if id != "" {
		if inst, ok := r.instances[id]; ok {
			return []*instance{inst}
		}
		return nil
	}
	out := make([]*instance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.instances[id])
	}
	return out
}

func (r *runner) forget(id InstanceID) {
	delete(r.instances, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.metrics.Instances(len(r.instances))
}

func (r *runner) closeAll() {
	for _, id := range r.order {
		r.instances[id].engine.Close()
	}
	r.instances = make(map[InstanceID]*instance)
	r.order = nil
	r.metrics.Instances(0)
}
