package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTimers records scheduled callbacks so tests can fire them by hand.
type manualTimers struct {
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	d       time.Duration
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) after(d time.Duration, f func()) Timer {
	t := &manualTimer{f: f, d: d}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualTimers) fireAll() {
	for _, t := range m.timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

func TestLaterCallReplacesPending(t *testing.T) {
	clock := &manualTimers{}
	d := New(50*time.Millisecond, WithAfterFunc(clock.after))
	var got []string

	d.Call("t1", func() { got = append(got, "a") })
	d.Call("t1", func() { got = append(got, "b") })
	clock.fireAll()

	assert.Equal(t, []string{"b"}, got)
	require.Len(t, clock.timers, 2)
	assert.Equal(t, 50*time.Millisecond, clock.timers[0].d)
	assert.False(t, d.Pending("t1"))
}

func TestKeysAreIndependent(t *testing.T) {
	clock := &manualTimers{}
	d := New(time.Millisecond, WithAfterFunc(clock.after))
	var got []string

	d.Call("a", func() { got = append(got, "a") })
	d.Call("b", func() { got = append(got, "b") })
	clock.fireAll()

	assert.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestFlushRunsPendingNow(t *testing.T) {
	clock := &manualTimers{}
	d := New(time.Second, WithAfterFunc(clock.after))
	calls := 0

	d.Call("k", func() { calls++ })
	assert.True(t, d.Flush("k"))
	assert.False(t, d.Flush("k"))
	clock.fireAll()

	assert.Equal(t, 1, calls)
}

func TestCancelDropsPending(t *testing.T) {
	clock := &manualTimers{}
	d := New(time.Second, WithAfterFunc(clock.after))
	calls := 0

	d.Call("k", func() { calls++ })
	assert.True(t, d.Cancel("k"))
	clock.fireAll()

	assert.Zero(t, calls)
	assert.False(t, d.Cancel("k"))
}

func TestStaleTimerIsIgnored(t *testing.T) {
	clock := &manualTimers{}
	d := New(time.Second, WithAfterFunc(clock.after))
	var got []string

	d.Call("k", func() { got = append(got, "old") })
	stale := clock.timers[0]
	d.Call("k", func() { got = append(got, "new") })

	// the first timer fires anyway, as a real timer may after Stop lost the race
	stale.f()
	assert.Empty(t, got)
	assert.True(t, d.Pending("k"))
}

func TestRealTimerFires(t *testing.T) {
	d := New(time.Millisecond)
	var fired atomic.Bool

	d.Call("k", func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, time.Millisecond)
}
