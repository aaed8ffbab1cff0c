// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/engine/enginetest"
	"github.com/YindSoft/webview-ebitengine/pixel"
	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/window"
)

func start(t *testing.T, b engine.Backend) *Transport {
	t.Helper()
	tr := Start(b, Options{Logger: log.New(io.Discard)})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tr.Shutdown(ctx)
	})
	return tr
}

// stop shuts the runner down so recorded engine state can be inspected.
func stop(t *testing.T, tr *Transport) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tr.Shutdown(ctx))
}

func launch(t *testing.T, tr *Transport, id InstanceID, w, h int) {
	t.Helper()
	reply := make(chan error, 1)
	attrs := engine.DefaultAttributes()
	attrs.HTML = "<body></body>"
	require.NoError(t, tr.Send(Launch{ID: id, Spec: LaunchSpec{
		Window:     window.Attributes{Size: window.Size{Width: w, Height: h}},
		Attributes: attrs,
		Reply:      reply,
	}}))
	select {
	case err := <-reply:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("launch did not reply")
	}
}

func waitFrames(t *testing.T, tr *Transport, n int) []Frame {
	t.Helper()
	var frames []Frame
	require.Eventually(t, func() bool {
		frames = append(frames, tr.DrainFrames()...)
		return len(frames) >= n
	}, 5*time.Second, time.Millisecond)
	return frames
}

func TestLaunchAndTickProducesFrame(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 600, 400)

	require.NoError(t, tr.Send(Tick{}))
	frames := waitFrames(t, tr, 1)
	assert.Equal(t, InstanceID("a"), frames[0].ID)
	assert.Equal(t, 600, frames[0].Buffer.Width)
	assert.Equal(t, 400, frames[0].Buffer.Height)
	require.NoError(t, frames[0].Buffer.Validate())
}

func TestLaunchFailureIsReported(t *testing.T) {
	b := enginetest.NewBackend()
	cause := errors.New("no gpu")
	b.FailEngine = cause
	tr := start(t, b)

	reply := make(chan error, 1)
	require.NoError(t, tr.Send(Launch{ID: "broken", Spec: LaunchSpec{Reply: reply}}))
	err := <-reply
	var ce *engine.ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, cause)

	b.FailEngine = nil
	launch(t, tr, "ok", 10, 10)
	require.NoError(t, tr.Send(Tick{}))
	frames := waitFrames(t, tr, 1)
	for _, f := range frames {
		assert.Equal(t, InstanceID("ok"), f.ID)
	}
}

func TestLaunchRejectsDuplicateID(t *testing.T) {
	tr := start(t, enginetest.NewBackend())
	launch(t, tr, "a", 10, 10)

	reply := make(chan error, 1)
	require.NoError(t, tr.Send(Launch{ID: "a", Spec: LaunchSpec{Reply: reply}}))
	require.Error(t, <-reply)
}

func TestResizeThenTickSeesNewSize(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 600, 400)

	require.NoError(t, tr.Send(Resize{ID: "a", Size: window.Size{Width: 400, Height: 300}}))
	require.NoError(t, tr.Send(Tick{}))
	frames := waitFrames(t, tr, 1)
	assert.Equal(t, 400, frames[0].Buffer.Width)
	assert.Equal(t, 300, frames[0].Buffer.Height)
}

func TestResizeToSameSizeIsElided(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 100, 100)

	require.NoError(t, tr.Send(Resize{ID: "a", Size: window.Size{Width: 100, Height: 100}}))
	require.NoError(t, tr.Send(Resize{ID: "a", Size: window.Size{Width: 50, Height: 50}}))
	require.NoError(t, tr.Send(Resize{ID: "a", Size: window.Size{Width: 50, Height: 50}}))
	require.NoError(t, tr.Send(Resize{ID: "missing", Size: window.Size{Width: 50, Height: 50}}))
	stop(t, tr)

	assert.Equal(t, []window.Size{{Width: 50, Height: 50}}, b.Engines()[0].Resizes())
}

func TestInputIsScaledToWindow(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 400, 200)

	key := engine.KeyboardInput{State: engine.Pressed, Key: "a", Code: "KeyA", Text: "a"}
	for _, cmd := range []Command{
		Input{ID: "a", Event: MouseMotion{Position: engine.Position{X: 0.5, Y: 0.5}}},
		Input{ID: "a", Event: Hover{Position: engine.Position{X: 1, Y: 0}}},
		Input{ID: "a", Event: Click{Button: engine.MouseLeft, State: engine.Pressed, Position: engine.Position{X: 0.5, Y: 0.25}}},
		Input{ID: "a", Event: TypeKeyboard{Key: key}},
		Input{ID: "nobody", Event: TypeKeyboard{Key: key}},
	} {
		require.NoError(t, tr.Send(cmd))
	}
	stop(t, tr)

	e := b.Engines()[0]
	assert.Equal(t, []engine.Position{{X: 200, Y: 100}, {X: 400, Y: 0}}, e.Positions())
	assert.Equal(t, []engine.MouseEvent{{Button: engine.MouseLeft, State: engine.Pressed, Position: engine.Position{X: 200, Y: 50}}}, e.MouseEvents())
	assert.Equal(t, []engine.KeyboardInput{key}, e.Keys())
}

func TestRunCommandTargetsAndBroadcast(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 10, 10)
	launch(t, tr, "b", 10, 10)

	require.NoError(t, tr.Send(RunCommand{ID: "b", Command: LoadURI{URI: "app:///b.html"}}))
	require.NoError(t, tr.Send(RunCommand{Command: Reload{}}))
	require.NoError(t, tr.Send(RunCommand{ID: "a", Command: RunJavascript{Script: "go()"}}))
	require.NoError(t, tr.Send(RunCommand{Command: LoadHTML{HTML: "<p>all</p>"}}))
	stop(t, tr)

	a, bb := b.Engines()[0], b.Engines()[1]
	assert.Equal(t, []string{"html:<body></body>", "reload", "html:<p>all</p>"}, a.Loads())
	assert.Equal(t, []string{"html:<body></body>", "uri:app:///b.html", "reload", "html:<p>all</p>"}, bb.Loads())
	assert.Contains(t, a.Scripts(), "go()")
	assert.NotContains(t, bb.Scripts(), "go()")
}

func TestOutputEventsOnlyReachInitializedInstances(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 10, 10)
	launch(t, tr, "b", 10, 10)

	require.NoError(t, tr.Send(SendOutputEvent{Method: "early", Payload: json.RawMessage(`1`)}))
	require.NoError(t, tr.Send(SetRPCInitialized{ID: "b"}))
	require.NoError(t, tr.Send(SendOutputEvent{Method: "score", Payload: json.RawMessage(`{"n":3}`)}))
	require.NoError(t, tr.Send(SendOutputEvent{ID: "a", Method: "direct", Payload: json.RawMessage(`2`)}))
	require.NoError(t, tr.Send(SendOutputEvent{ID: "ghost", Method: "x", Payload: json.RawMessage(`2`)}))
	stop(t, tr)

	want, err := rpc.MessageScript("score", json.RawMessage(`{"n":3}`))
	require.NoError(t, err)
	assert.Empty(t, b.Engines()[0].Scripts())
	assert.Equal(t, []string{want}, b.Engines()[1].Scripts())
}

func TestPageRequestsReachHost(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 10, 10)

	b.Engines()[0].Post(`{"jsonrpc":"2.0","id":4,"method":"ping","params":["x"]}`)
	b.Engines()[0].Post(`not json`)
	require.NoError(t, tr.Send(Tick{}))

	var reqs []Request
	require.Eventually(t, func() bool {
		reqs = append(reqs, tr.DrainRequests()...)
		return len(reqs) >= 2
	}, 5*time.Second, time.Millisecond)
	stop(t, tr)

	require.Len(t, reqs, 2)
	assert.Equal(t, rpc.BuiltinMethod, reqs[0].RPC.Method)
	assert.Equal(t, "ping", reqs[1].RPC.Method)
	assert.Equal(t, InstanceID("a"), reqs[1].ID)
	// Requests with an id are acknowledged so page promises settle.
	assert.Equal(t, []string{`window.external.rpc._result(4, null)`}, b.Engines()[0].Scripts())
}

func TestUserHandlerAnswers(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)

	reply := make(chan error, 1)
	attrs := engine.DefaultAttributes()
	attrs.HTML = "<body></body>"
	attrs.RPCHandler = func(_ window.Window, req *rpc.Request) *rpc.Response {
		if req.Method != "ping" {
			return nil
		}
		resp, _ := rpc.NewResult(req.ID, "pong")
		return resp
	}
	require.NoError(t, tr.Send(Launch{ID: "a", Spec: LaunchSpec{Attributes: attrs, Reply: reply}}))
	require.NoError(t, <-reply)

	b.Engines()[0].Post(`{"jsonrpc":"2.0","id":"7","method":"ping"}`)
	require.NoError(t, tr.Send(Tick{}))
	stop(t, tr)

	assert.Equal(t, []string{`window.external.rpc._result("7", "pong")`}, b.Engines()[0].Scripts())
	assert.Len(t, tr.DrainRequests(), 2)
}

func TestHiddenInstanceProducesNoFrames(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 10, 10)
	launch(t, tr, "b", 10, 10)

	require.NoError(t, tr.Send(SetVisibility{ID: "a", Visible: false}))
	require.NoError(t, tr.Send(Tick{}))
	require.NoError(t, tr.Send(Tick{}))
	stop(t, tr)

	for _, f := range tr.DrainFrames() {
		assert.Equal(t, InstanceID("b"), f.ID)
	}
	assert.False(t, b.Engines()[0].Visible())
}

func TestRemoveAndAppExitCloseEngines(t *testing.T) {
	b := enginetest.NewBackend()
	tr := start(t, b)
	launch(t, tr, "a", 10, 10)
	launch(t, tr, "b", 10, 10)

	require.NoError(t, tr.Send(Remove{ID: "a"}))
	require.NoError(t, tr.Send(Tick{}))
	stop(t, tr)

	assert.Equal(t, 1, b.Engines()[0].Closed())
	assert.Equal(t, 1, b.Engines()[1].Closed())
	for _, f := range tr.DrainFrames() {
		assert.Equal(t, InstanceID("b"), f.ID)
	}

	<-tr.Done()
	assert.ErrorIs(t, tr.Send(Tick{}), ErrStopped)
}

func TestDetachStopsRunner(t *testing.T) {
	b := enginetest.NewBackend()
	tr := Start(b, Options{Logger: log.New(io.Discard)})
	launch(t, tr, "a", 10, 10)

	tr.Detach()
	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after detach")
	}
	assert.Equal(t, 1, b.Engines()[0].Closed())
}

func TestCoalesceKeepsLatestPerInstance(t *testing.T) {
	f := func(id InstanceID, w int) Frame {
		return Frame{ID: id, Buffer: pixel.NewBuffer(w, 1, pixel.RGBA8)}
	}
	out := Coalesce([]Frame{f("a", 1), f("b", 1), f("a", 2), f("c", 1), f("b", 3)})
	require.Len(t, out, 3)
	assert.Equal(t, InstanceID("a"), out[0].ID)
	assert.Equal(t, 2, out[0].Buffer.Width)
	assert.Equal(t, InstanceID("c"), out[1].ID)
	assert.Equal(t, InstanceID("b"), out[2].ID)
	assert.Equal(t, 3, out[2].Buffer.Width)
}

func TestNewInstanceIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewInstanceID(), NewInstanceID())
}
