// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

// LoadState tracks the current page load. Backends map their native load
// events onto it explicitly.
type LoadState uint8

const (
	PreStart LoadState = iota
	Started
	Redirected
	Committed
	Finished
	Unknown
)

func (s LoadState) String() string {
	switch s {
	case PreStart:
		return "pre-start"
	case Started:
		return "started"
	case Redirected:
		return "redirected"
	case Committed:
		return "committed"
	case Finished:
		return "finished"
	}
	return "unknown"
}
