// Package debounce coalesces bursts of calls per key into a single deferred
// call. A later call for the same key replaces the pending one.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type pending struct {
	timer Timer
	fn    func()
	seq   uint64
}

type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	pending map[string]*pending
	seq     uint64
}

type Option func(*Debouncer)

// WithAfterFunc replaces the timer source, mostly for tests.
func WithAfterFunc(after AfterFunc) Option {
	return func(d *Debouncer) { d.after = after }
}

func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:   delay,
		after:   stdAfterFunc,
		pending: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call schedules fn for key, cancelling whatever was pending for it.
func (d *Debouncer) Call(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq
	p := &pending{fn: fn, seq: seq}
	d.pending[key] = p
	p.timer = d.after(d.delay, func() { d.fire(key, seq) })
}

func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq {
		// superseded or cancelled after the timer had already started
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	p.fn()
}

// Flush runs the pending call for key immediately. It reports whether
// anything was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		p.fn()
	}
	return ok
}

// Cancel drops the pending call for key without running it.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
	return ok
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// CancelAll drops every pending call.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, k)
	}
}
