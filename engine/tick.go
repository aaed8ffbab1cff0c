// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import "time"

// Ticker is the part of Engine the tick policies drive.
type Ticker interface {
	TickOnce()
}

// TickMode decides how a runner tick maps onto TickOnce calls.
type TickMode interface {
	run(t Ticker)
}

// Immediate ticks once and returns.
type Immediate struct{}

// WaitFor sleeps until Duration has passed since the policy started, then
// ticks once. The tick itself is not counted against Duration.
type WaitFor struct {
	Duration time.Duration
}

// PeriodicWait ticks, then sleeps Interval, until Duration has elapsed. It
// always ticks at least once.
type PeriodicWait struct {
	Duration time.Duration
	Interval time.Duration
}

// Periodic60Hz returns a PeriodicWait with a 60 Hz interval.
func Periodic60Hz(d time.Duration) PeriodicWait {
	return PeriodicWait{Duration: d, Interval: time.Second / 60}
}

// Tick applies mode to t. A nil mode behaves like Immediate.
func Tick(t Ticker, mode TickMode) {
	if mode == nil {
		mode = Immediate{}
	}
	mode.run(t)
}

var (
	now   = time.Now
	sleep = time.Sleep
)

func (Immediate) run(t Ticker) { t.TickOnce() }

func (m WaitFor) run(t Ticker) {
	start := now()
	if remaining := m.Duration - now().Sub(start); remaining > 0 {
		sleep(remaining)
	}
	t.TickOnce()
}

func (m PeriodicWait) run(t Ticker) {
	start := now()
	for {
		t.TickOnce()
		sleep(m.Interval)
		if now().Sub(start) >= m.Duration {
			return
		}
	}
}
