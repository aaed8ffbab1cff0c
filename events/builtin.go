// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package events

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/YindSoft/webview-ebitengine/rpc"
	"github.com/YindSoft/webview-ebitengine/runner"
)

// Builtin is a page lifecycle notification sent under rpc.BuiltinMethod.
type Builtin uint8

const (
	// Initialize is sent by the bootstrap once the bridge is ready.
	Initialize Builtin = iota + 1
	// Despawn asks the host to remove the instance.
	Despawn
)

func (b Builtin) String() string {
	switch b {
	case Initialize:
		return "initialize"
	case Despawn:
		return "despawn"
	}
	return fmt.Sprintf("Builtin(%d)", uint8(b))
}

// UnmarshalJSON accepts {"initialize": null} as well as "initialize".
func (b *Builtin) UnmarshalJSON(data []byte) error {
	name := ""
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if len(obj) != 1 {
			return fmt.Errorf("events: builtin wants one key, got %d", len(obj))
		}
		for k := range obj {
			name = k
		}
	} else if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "initialize":
		*b = Initialize
	case "despawn":
		*b = Despawn
	default:
		return fmt.Errorf("events: unknown builtin %q", name)
	}
	return nil
}

func (b Builtin) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{b.String(): nil})
}

// IsBuiltin reports whether req is a lifecycle notification.
func IsBuiltin(req *rpc.Request) bool {
	return req.Method == rpc.BuiltinMethod
}

// BuiltinCommand decodes a lifecycle notification from instance id into the
// runner command that answers it.
func BuiltinCommand(id runner.InstanceID, req *rpc.Request) (runner.Command, error) {
	raw := req.Param(0)
	if raw == nil {
		return nil, ErrMissingParams
	}
	var b Builtin
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	switch b {
	case Initialize:
		return runner.SetRPCInitialized{ID: id}, nil
	case Despawn:
		return runner.Remove{ID: id}, nil
	}
	return nil, fmt.Errorf("events: unhandled builtin %s", b)
}
