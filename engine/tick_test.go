// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTicker struct{ n int }

func (c *countingTicker) TickOnce() { c.n++ }

// fakeClock replaces now and sleep; sleeping advances the clock.
func fakeClock(t *testing.T) *[]time.Duration {
	t.Helper()
	cur := time.Unix(0, 0)
	slept := &[]time.Duration{}
	prevNow, prevSleep := now, sleep
	now = func() time.Time { return cur }
	sleep = func(d time.Duration) {
		*slept = append(*slept, d)
		cur = cur.Add(d)
	}
	t.Cleanup(func() { now, sleep = prevNow, prevSleep })
	return slept
}

func TestTickImmediate(t *testing.T) {
	slept := fakeClock(t)
	c := &countingTicker{}
	Tick(c, Immediate{})
	Tick(c, nil)
	assert.Equal(t, 2, c.n)
	assert.Empty(t, *slept)
}

func TestTickWaitFor(t *testing.T) {
	slept := fakeClock(t)
	c := &countingTicker{}
	Tick(c, WaitFor{Duration: 20 * time.Millisecond})
	assert.Equal(t, 1, c.n)
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, *slept)

	*slept = nil
	Tick(c, WaitFor{})
	assert.Equal(t, 2, c.n)
	assert.Empty(t, *slept)
}

func TestTickPeriodicWait(t *testing.T) {
	slept := fakeClock(t)
	c := &countingTicker{}
	Tick(c, PeriodicWait{Duration: 50 * time.Millisecond, Interval: 10 * time.Millisecond})
	assert.Equal(t, 5, c.n)
	assert.Len(t, *slept, 5)
}

func TestTickPeriodicWaitTicksAtLeastOnce(t *testing.T) {
	fakeClock(t)
	c := &countingTicker{}
	Tick(c, PeriodicWait{Duration: time.Nanosecond, Interval: time.Millisecond})
	assert.Equal(t, 1, c.n)
}

func TestPeriodic60Hz(t *testing.T) {
	m := Periodic60Hz(time.Second)
	assert.Equal(t, time.Second, m.Duration)
	assert.Equal(t, time.Second/60, m.Interval)
}
