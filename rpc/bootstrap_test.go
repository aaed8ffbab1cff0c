// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package rpc

import (
	"encoding/json"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageVM runs the bootstrap in a bare goja VM and records everything sent
// through window.external.invoke.
func pageVM(t *testing.T) (*goja.Runtime, *[]string) {
	t.Helper()
	vm := goja.New()
	sent := &[]string{}
	require.NoError(t, vm.Set("__capture", func(msg string) { *sent = append(*sent, msg) }))
	_, err := vm.RunString(`var window = this; window.external = { invoke: __capture };`)
	require.NoError(t, err)
	_, err = vm.RunString(BootstrapScript)
	require.NoError(t, err)
	return vm, sent
}

func TestBootstrapAnnouncesInitialize(t *testing.T) {
	_, sent := pageVM(t)
	require.Len(t, *sent, 1)

	req, err := Parse((*sent)[0])
	require.NoError(t, err)
	assert.Equal(t, BuiltinMethod, req.Method)
	assert.False(t, req.HasID())
	assert.JSONEq(t, `{"initialize":null}`, string(req.Param(0)))
}

func TestBootstrapCallResolves(t *testing.T) {
	vm, sent := pageVM(t)
	_, err := vm.RunString(`var got; rpc.call("ping", 1, "two").then(function (v) { got = v; });`)
	require.NoError(t, err)
	require.Len(t, *sent, 2)

	req, err := Parse((*sent)[1])
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
	assert.JSONEq(t, `[1,"two"]`, string(req.Params))
	require.True(t, req.HasID())

	resp, err := NewResult(req.ID, map[string]int{"n": 5})
	require.NoError(t, err)
	_, err = vm.RunString(ResultScript(resp.ID, resp.Result))
	require.NoError(t, err)

	got, err := json.Marshal(vm.Get("got").Export())
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":5}`, string(got))
}

func TestBootstrapCallRejects(t *testing.T) {
	vm, sent := pageVM(t)
	_, err := vm.RunString(`var failed; rpc.call("boom").catch(function (e) { failed = e.reason; });`)
	require.NoError(t, err)

	req, err := Parse((*sent)[1])
	require.NoError(t, err)
	_, err = vm.RunString(ErrorScript(req.ID, json.RawMessage(`{"reason":"nope"}`)))
	require.NoError(t, err)
	assert.Equal(t, "nope", vm.Get("failed").Export())
}

func TestBootstrapMessageListeners(t *testing.T) {
	vm, _ := pageVM(t)
	_, err := vm.RunString(`
		var seen = [];
		function a(m) { seen.push("a:" + m.v); }
		function b(m) { seen.push("b:" + m.v); }
		rpc.on("evt", a);
		rpc.on("evt", b);
	`)
	require.NoError(t, err)

	script, err := MessageScript("evt", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	_, err = vm.RunString(script)
	require.NoError(t, err)

	_, err = vm.RunString(`rpc.off("evt", a);`)
	require.NoError(t, err)
	script, err = MessageScript("evt", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	_, err = vm.RunString(script)
	require.NoError(t, err)

	assert.Equal(t, []any{"a:1", "b:1", "b:2"}, vm.Get("seen").Export())
}
