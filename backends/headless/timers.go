// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"sort"
	"time"
)

// timerEntry is a pending setTimeout or setInterval callback. The callback
// itself lives in the page (__timerCallbacks); Go only tracks deadlines.
type timerEntry struct {
	deadline time.Time
	interval time.Duration // 0 for setTimeout
	id       int
}

// timerTable holds a page's timers. Owned by the engine goroutine.
type timerTable struct {
	timers map[int]*timerEntry
	nextID int
}

func newTimerTable() *timerTable {
	return &timerTable{timers: make(map[int]*timerEntry)}
}

func (tt *timerTable) add(now time.Time, delay time.Duration, repeat bool) int {
	tt.nextID++
	e := &timerEntry{deadline: now.Add(delay), id: tt.nextID}
	if repeat {
		// Zero-delay intervals would fire every tick forever.
		e.interval = max(delay, time.Millisecond)
		e.deadline = now.Add(e.interval)
	}
	tt.timers[e.id] = e
	return e.id
}

func (tt *timerTable) clear(id int) {
	delete(tt.timers, id)
}

// due returns ids whose deadline has passed, earliest first. One-shot
// timers are removed and intervals rescheduled from now.
func (tt *timerTable) due(now time.Time) []int {
	var fired []*timerEntry
	for _, e := range tt.timers {
		if !e.deadline.After(now) {
			fired = append(fired, e)
		}
	}
	sort.Slice(fired, func(i, j int) bool {
		if fired[i].deadline.Equal(fired[j].deadline) {
			return fired[i].id < fired[j].id
		}
		return fired[i].deadline.Before(fired[j].deadline)
	})
	ids := make([]int, len(fired))
	for i, e := range fired {
		ids[i] = e.id
		if e.interval > 0 {
			e.deadline = now.Add(e.interval)
		} else {
			delete(tt.timers, e.id)
		}
	}
	return ids
}

func (tt *timerTable) pending() int {
	return len(tt.timers)
}
