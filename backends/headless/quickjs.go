// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"fmt"
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

type quickjsVM struct {
	vm *quickjs.VM
}

func newQuickJSVM() (*quickjsVM, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("headless: quickjs: %w", err)
	}
	return &quickjsVM{vm: vm}, nil
}

func (q *quickjsVM) Eval(js string) error {
	v, err := q.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

func (q *quickjsVM) EvalString(expr string) (string, error) {
	result, err := q.vm.Eval(stringify(expr), quickjs.EvalGlobal)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprint(result), nil
}

// RegisterFunc exposes fn under name. The wrapper unwraps (T, error)
// results, which the VM returns as two-element arrays.
func (q *quickjsVM) RegisterFunc(name string, fn any) error {
	rawName := "__raw_" + name
	if err := q.vm.RegisterFunc(rawName, fn, false); err != nil {
		return err
	}
	return q.Eval(fmt.Sprintf(`(function() {
		var raw = globalThis[%q];
		globalThis[%q] = function() {
			var r = raw.apply(this, arguments);
			if (Array.isArray(r) && r.length === 2) {
				if (r[1] !== null && r[1] !== undefined) throw new TypeError(%q + ": " + r[1]);
				return r[0];
			}
			return r;
		};
		delete globalThis[%q];
	})()`, rawName, name, name, rawName))
}

// RunMicrotasks runs pending promise jobs. The VM wrapper never does, so
// the runtime handle is pulled out of its unexported fields.
func (q *quickjsVM) RunMicrotasks() {
	rt, tls, ok := quickjsRuntime(q.vm)
	if !ok {
		return
	}
	for lib.XJS_ExecutePendingJob(tls, rt, 0) > 0 {
	}
}

func (q *quickjsVM) Close() {
	q.vm.Close()
}

// quickjsRuntime reads VM.runtime.{cRuntime,tls}, as laid out in
// modernc.org/quickjs v0.17.1.
func quickjsRuntime(vm *quickjs.VM) (cRuntime uintptr, tls *libc.TLS, ok bool) {
	rtField := reflect.ValueOf(vm).Elem().FieldByName("runtime")
	if !rtField.IsValid() || rtField.IsNil() {
		return 0, nil, false
	}
	rtVal := reflect.NewAt(rtField.Type().Elem(), unsafe.Pointer(rtField.Pointer())).Elem()

	cRuntimeField := rtVal.FieldByName("cRuntime")
	if !cRuntimeField.IsValid() {
		return 0, nil, false
	}
	tlsField := rtVal.FieldByName("tls")
	if !tlsField.IsValid() || tlsField.IsNil() {
		return 0, nil, false
	}
	return uintptr(cRuntimeField.Uint()), (*libc.TLS)(unsafe.Pointer(tlsField.Pointer())), true
}
