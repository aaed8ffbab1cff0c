// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"fmt"

	"github.com/dop251/goja"
)

// Runtime selects the page script VM.
type Runtime string

const (
	RuntimeGoja    Runtime = "goja"
	RuntimeQuickJS Runtime = "quickjs"
)

// scriptVM is one page's script context. Implementations are not safe for
// concurrent use.
type scriptVM interface {
	Eval(js string) error
	// EvalString evaluates expr and returns it as a string, or "" for
	// null and undefined.
	EvalString(expr string) (string, error)
	// RegisterFunc exposes fn as a global function.
	RegisterFunc(name string, fn any) error
	// RunMicrotasks settles pending promise reactions.
	RunMicrotasks()
	Close()
}

func newScriptVM(r Runtime) (scriptVM, error) {
	switch r {
	case "", RuntimeGoja:
		return newGojaVM(), nil
	case RuntimeQuickJS:
		return newQuickJSVM()
	}
	return nil, fmt.Errorf("headless: unknown runtime %q", r)
}

func stringify(expr string) string {
	return "(function () { var v = (" + expr + "); return v === undefined || v === null ? \"\" : String(v); })()"
}

type gojaVM struct {
	vm *goja.Runtime
}

func newGojaVM() *gojaVM {
	return &gojaVM{vm: goja.New()}
}

func (g *gojaVM) Eval(js string) error {
	_, err := g.vm.RunString(js)
	return err
}

func (g *gojaVM) EvalString(expr string) (string, error) {
	v, err := g.vm.RunString(stringify(expr))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (g *gojaVM) RegisterFunc(name string, fn any) error {
	return g.vm.Set(name, fn)
}

// RunMicrotasks is a no-op: goja drains its job queue when RunString returns.
func (g *gojaVM) RunMicrotasks() {}

func (g *gojaVM) Close() {
	g.vm.Interrupt("closed")
}
