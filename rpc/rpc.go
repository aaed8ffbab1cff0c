// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package rpc implements the JSON-RPC style bridge between page script and
// the host: request parsing, reply scripts and the page bootstrap.
package rpc

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/YindSoft/webview-ebitengine/window"
)

// Version is the jsonrpc field written on every message.
const Version = "2.0"

// BuiltinMethod is reserved for page lifecycle notifications sent by
// the bootstrap script.
const BuiltinMethod = "_webview"

// BootstrapScript defines window.rpc (call, notify, on, off) on top of
// window.external.invoke. It must run before any page script.
//
//go:embed bootstrap.js
var BootstrapScript string

// Request is a message sent by page script.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// HasID reports whether the request expects a reply. A null id is treated
// like a missing one.
func (r *Request) HasID() bool { return hasID(r.ID) }

// Param returns params[i] when params is an array, nil otherwise.
func (r *Request) Param(i int) json.RawMessage {
	if len(r.Params) == 0 || r.Params[0] != '[' {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(r.Params, &list); err != nil || i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// Response is the host's reply to a Request.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// NewResult builds a success reply for id with v marshalled as the result.
func NewResult(id json.RawMessage, v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal result: %w", err)
	}
	return &Response{JSONRPC: Version, ID: id, Result: b}, nil
}

// NewError builds an error reply for id with v marshalled as the error.
func NewError(id json.RawMessage, v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal error: %w", err)
	}
	return &Response{JSONRPC: Version, ID: id, Error: b}, nil
}

// ScriptError reports a message from page script that could not be decoded.
type ScriptError struct {
	Raw string
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("rpc: bad script message %q: %v", e.Raw, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Parse decodes a raw message received from page script.
func Parse(raw string) (*Request, error) {
	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, &ScriptError{Raw: raw, Err: err}
	}
	if req.Method == "" {
		return nil, &ScriptError{Raw: raw, Err: fmt.Errorf("missing method")}
	}
	return &req, nil
}

// Handler answers page requests. It runs on the goroutine that owns the
// engine. Returning nil sends nothing back.
type Handler func(w window.Window, req *Request) *Response

// Proxy decodes raw, passes it to h and returns the script that delivers the
// reply to the page. The script is empty when there is nothing to send.
func Proxy(w window.Window, raw string, h Handler) (string, error) {
	req, err := Parse(raw)
	if err != nil {
		return "", err
	}
	if h == nil {
		return "", nil
	}
	resp := h(w, req)
	if resp == nil || !hasID(resp.ID) {
		return "", nil
	}
	if len(resp.Error) > 0 {
		return ErrorScript(resp.ID, resp.Error), nil
	}
	return ResultScript(resp.ID, resp.Result), nil
}

// ResultScript resolves the page promise waiting on id.
func ResultScript(id, result json.RawMessage) string {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return fmt.Sprintf("window.external.rpc._result(%s, %s)", compact(id), compact(result))
}

// ErrorScript rejects the page promise waiting on id.
func ErrorScript(id, errv json.RawMessage) string {
	return fmt.Sprintf("window.external.rpc._error(%s, %s)", compact(id), compact(errv))
}

// MessageScript delivers a host event to listeners registered with
// window.rpc.on(method, cb).
func MessageScript(method string, payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	if !json.Valid(payload) {
		return "", fmt.Errorf("rpc: invalid payload for %q", method)
	}
	m, _ := json.Marshal(method)
	p, _ := json.Marshal(string(payload))
	return fmt.Sprintf("window.external.rpc._message(%s, JSON.parse(%s))", m, p), nil
}

func hasID(id json.RawMessage) bool {
	id = bytes.TrimSpace(id)
	return len(id) > 0 && !bytes.Equal(id, []byte("null"))
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
