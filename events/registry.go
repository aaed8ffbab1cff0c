// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package events maps Go types to bridge method names, so page requests
// arrive as typed values and typed values can be pushed to page listeners.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/YindSoft/webview-ebitengine/runner"
)

var (
	ErrAlreadyRegistered = errors.New("events: type already registered")
	ErrRegistryFrozen    = errors.New("events: registry is frozen")
	ErrNoOutboundMapping = errors.New("events: no outbound mapping for type")
	ErrMissingParams     = errors.New("events: request has no params")
)

// Event is a typed value received from one instance.
type Event[T any] struct {
	Instance runner.InstanceID
	Value    T
}

type inboundMapping struct {
	method  string
	decode  func(runner.InstanceID, json.RawMessage) (any, error)
	pending []any
}

// Registry holds the type to method mappings. Mappings are registered
// before traffic starts; Freeze makes them read-only.
type Registry struct {
	mu       sync.Mutex
	inbound  map[reflect.Type]*inboundMapping
	order    []reflect.Type
	outbound map[reflect.Type]string
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{
		inbound:  make(map[reflect.Type]*inboundMapping),
		outbound: make(map[reflect.Type]string),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterInbound delivers requests for method as Event[T]. The request's
// first param is decoded into T.
func RegisterInbound[T any](r *Registry, method string) error {
	t := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, ok := r.inbound[t]; ok {
		return fmt.Errorf("%w: inbound %s", ErrAlreadyRegistered, t)
	}
	r.inbound[t] = &inboundMapping{
		method: method,
		decode: func(id runner.InstanceID, raw json.RawMessage) (any, error) {
			if len(raw) == 0 {
				return nil, ErrMissingParams
			}
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return Event[T]{Instance: id, Value: v}, nil
		},
	}
	r.order = append(r.order, t)
	return nil
}

// RegisterOutbound sends values of type T under method.
func RegisterOutbound[T any](r *Registry, method string) error {
	t := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, ok := r.outbound[t]; ok {
		return fmt.Errorf("%w: outbound %s", ErrAlreadyRegistered, t)
	}
	r.outbound[t] = method
	return nil
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// DecodeError reports params that did not decode into a registered type.
type DecodeError struct {
	Method string
	Type   reflect.Type
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("events: decode %q into %s: %v", e.Method, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Dispatch tests req against every inbound mapping and queues a typed event
// for each match. It returns the number of matching mappings; zero means
// the request fell through. Mappings whose decode fails drop the request
// and report a *DecodeError.
func (r *Registry) Dispatch(req runner.Request) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := 0
	var errs []error
	for _, t := range r.order {
		m := r.inbound[t]
		if m.method != req.RPC.Method {
			continue
		}
		matched++
		ev, err := m.decode(req.ID, req.RPC.Param(0))
		if err != nil {
			errs = append(errs, &DecodeError{Method: m.method, Type: t, Err: err})
			continue
		}
		m.pending = append(m.pending, ev)
	}
	return matched, errors.Join(errs...)
}

// Read returns and clears the queued events of type T.
func Read[T any](r *Registry) []Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.inbound[typeOf[T]()]
	if !ok || len(m.pending) == 0 {
		return nil
	}
	out := make([]Event[T], len(m.pending))
	for i, ev := range m.pending {
		out[i] = ev.(Event[T])
	}
	m.pending = nil
	return out
}

// Encode wraps v in a SendOutputEvent for instance id, or for every
// instance when id is empty.
func Encode[T any](r *Registry, id runner.InstanceID, v T) (runner.SendOutputEvent, error) {
	r.mu.Lock()
	method, ok := r.outbound[typeOf[T]()]
	r.mu.Unlock()
	if !ok {
		return runner.SendOutputEvent{}, fmt.Errorf("%w: %s", ErrNoOutboundMapping, typeOf[T]())
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return runner.SendOutputEvent{}, fmt.Errorf("events: encode %q: %w", method, err)
	}
	return runner.SendOutputEvent{ID: id, Method: method, Payload: payload}, nil
}
