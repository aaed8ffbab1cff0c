// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package runner

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/window"
)

// InstanceID names one engine instance. The empty ID addresses every live
// instance where a command allows broadcast.
type InstanceID string

// NewInstanceID returns a random instance id.
func NewInstanceID() InstanceID { return InstanceID(uuid.NewString()) }

// Command is processed by the runner in submission order.
type Command interface {
	kind() string
}

// LaunchSpec describes a new instance.
type LaunchSpec struct {
	Window     window.Attributes
	Attributes engine.Attributes
	// Reply, if set, receives the construction result. It should be
	// buffered; the runner never blocks on it.
	Reply chan<- error
}

type (
	// Launch creates a window and an engine and adds them as instance ID.
	Launch struct {
		ID   InstanceID
		Spec LaunchSpec
	}

	// SetRPCInitialized marks an instance's page bridge as ready for
	// output events.
	SetRPCInitialized struct {
		ID InstanceID
	}

	// Input forwards user input to one instance.
	Input struct {
		ID    InstanceID
		Event UserInput
	}

	// Resize changes an instance's size. Requests for the current size are
	// ignored.
	Resize struct {
		ID   InstanceID
		Size window.Size
	}

	// RunCommand navigates or runs script on one instance, or on all of them
	// when ID is empty.
	RunCommand struct {
		ID      InstanceID
		Command WebCommand
	}

	// SendOutputEvent delivers an event to page listeners of Method. Only
	// instances whose bridge is initialized receive it. An empty ID
	// broadcasts.
	SendOutputEvent struct {
		ID      InstanceID
		Method  string
		Payload json.RawMessage
	}

	// Tick steps every instance and captures their frames.
	Tick struct{}

	// Remove closes and forgets an instance.
	Remove struct {
		ID InstanceID
	}

	// AppExit closes every instance and stops the runner.
	AppExit struct{}

	// SetVisibility shows or hides an instance.
	SetVisibility struct {
		ID      InstanceID
		Visible bool
	}
)

func (Launch) kind() string            { return "launch" }
func (SetRPCInitialized) kind() string { return "set_rpc_initialized" }
func (Input) kind() string             { return "input" }
func (Resize) kind() string            { return "resize" }
func (RunCommand) kind() string        { return "run_command" }
func (SendOutputEvent) kind() string   { return "send_output_event" }
func (Tick) kind() string              { return "tick" }
func (Remove) kind() string            { return "remove" }
func (AppExit) kind() string           { return "app_exit" }
func (SetVisibility) kind() string     { return "set_visibility" }

// UserInput is one input event. Positions are relative to the view, in
// [0, 1] with the origin at the top-left corner.
type UserInput interface {
	userInput()
}

type (
	MouseMotion struct {
		Position engine.Position
	}

	Click struct {
		Button   engine.MouseButton
		State    engine.ElementState
		Position engine.Position
	}

	Hover struct {
		Position engine.Position
	}

	TypeKeyboard struct {
		Key engine.KeyboardInput
	}
)

func (MouseMotion) userInput()  {}
func (Click) userInput()        {}
func (Hover) userInput()        {}
func (TypeKeyboard) userInput() {}

// WebCommand is a navigation or script action.
type WebCommand interface {
	webCommand()
}

type (
	LoadURI struct {
		URI string
	}

	LoadHTML struct {
		HTML string
	}

	Reload struct{}

	RunJavascript struct {
		Script string
	}
)

func (LoadURI) webCommand()       {}
func (LoadHTML) webCommand()      {}
func (Reload) webCommand()        {}
func (RunJavascript) webCommand() {}
