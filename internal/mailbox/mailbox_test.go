// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		require.True(t, q.Push(i))
	}
	v, ok := q.Pop(context.Background())
	require.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, []int{1, 2, 3, 4}, q.Drain())
	assert.Empty(t, q.Drain())
}

func TestQueuePopWaits(t *testing.T) {
	q := New[string]()
	got := make(chan string)
	go func() {
		v, _ := q.Pop(context.Background())
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	q.Push("hello")
	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up")
	}
}

func TestQueueClose(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Close()
	q.Close()
	assert.True(t, q.Closed())
	assert.False(t, q.Push(2))

	v, ok := q.Pop(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = q.Pop(context.Background())
	assert.False(t, ok)
}

func TestQueuePopContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := q.Pop(ctx)
	assert.False(t, ok)
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Len())
	assert.Len(t, q.Drain(), 800)
}
