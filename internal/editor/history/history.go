package history

import (
	"sync"
	"time"
)

// DefaultLimit is the number of past states kept before the oldest is dropped.
const DefaultLimit = 50

// ============================================================
// Entries
// ============================================================

// Entry is one immutable snapshot with the time it was taken.
type Entry[T any] struct {
	State     T
	Timestamp time.Time
}

// DebugEntry describes what changed between an entry and its successor.
type DebugEntry struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Changes   []string  `json:"changes"`
	Current   bool      `json:"current"`
}

// ============================================================
// Manager
// ============================================================

// Manager keeps linear undo/redo stacks of full-state snapshots. The present
// state belongs to the caller and is passed to Push, Undo and Redo. Callers
// push explicitly before a mutating gesture; nothing is recorded implicitly.
type Manager[T any] struct {
	mu      sync.Mutex
	past    []Entry[T]
	future  []Entry[T]
	limit   int
	clone   func(T) T
	diff    func(a, b T) []string
	now     func() time.Time
}

type Option[T any] func(*Manager[T])

func WithLimit[T any](n int) Option[T] {
	return func(m *Manager[T]) {
		if n > 0 {
			m.limit = n
		}
	}
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(m *Manager[T]) { m.now = now }
}

// WithDiff sets the function used by Debug to list changed fields.
func WithDiff[T any](diff func(a, b T) []string) Option[T] {
	return func(m *Manager[T]) { m.diff = diff }
}

// New creates a manager; clone must return a copy that shares no mutable
// memory with its argument.
func New[T any](clone func(T) T, opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		limit: DefaultLimit,
		clone: clone,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager[T]) entry(state T) Entry[T] {
	return Entry[T]{State: m.clone(state), Timestamp: m.now()}
}

// Push records current as the newest past entry and discards the redo branch.
func (m *Manager[T]) Push(current T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = append(m.past, m.entry(current))
	if len(m.past) > m.limit {
		m.past = append([]Entry[T](nil), m.past[len(m.past)-m.limit:]...)
	}
	m.future = nil
}

// Undo returns the most recent past state and moves current onto the redo
// stack. With an empty past it returns current unchanged and false.
func (m *Manager[T]) Undo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return current, false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append([]Entry[T]{m.entry(current)}, m.future...)
	return m.clone(prev.State), true
}

// Redo is the inverse of Undo. With an empty future it returns current
// unchanged and false.
func (m *Manager[T]) Redo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return current, false
	}
	next := m.future[0]
	m.future = m.future[1:]
	m.past = append(m.past, m.entry(current))
	if len(m.past) > m.limit {
		m.past = append([]Entry[T](nil), m.past[len(m.past)-m.limit:]...)
	}
	return m.clone(next.State), true
}

func (m *Manager[T]) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

func (m *Manager[T]) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Len returns the sizes of the past and future stacks.
func (m *Manager[T]) Len() (past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}

func (m *Manager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = nil
	m.future = nil
}

// Timestamps returns the timestamps of the past stack, oldest first.
func (m *Manager[T]) Timestamps() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.past))
	for i, e := range m.past {
		out[i] = e.Timestamp
	}
	return out
}

// ============================================================
// Debug view
// ============================================================

// Debug lists past entries followed by the live state, each with the
// fields that changed relative to the previous one. It is read-only.
func (m *Manager[T]) Debug(current T) []DebugEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]Entry[T], 0, len(m.past)+1)
	states = append(states, m.past...)
	states = append(states, Entry[T]{State: current, Timestamp: m.now()})

	out := make([]DebugEntry, len(states))
	for i, e := range states {
		d := DebugEntry{Index: i, Timestamp: e.Timestamp, Current: i == len(states)-1}
		if i > 0 && m.diff != nil {
			d.Changes = m.diff(states[i-1].State, e.State)
		}
		out[i] = d
	}
	return out
}
