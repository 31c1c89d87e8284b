// Package store holds the canonical scene graph of an editing session and
// every structural mutation on it. All mutations are atomic with respect to
// each other; listeners run after the mutation is committed.
package store

import (
	"math"
	"sync"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/regalagram/sspe-sub013/internal/editor/history"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// DefaultPrecision is the number of decimals kept for coordinates.
const DefaultPrecision = 2

// ============================================================
// State
// ============================================================

type State struct {
	Document      models.Document  `json:"document"`
	Selection     models.Selection `json:"selection"`
	Viewport      models.Viewport  `json:"viewport"`
	Mode          string           `json:"mode"`
	RenderVersion uint64           `json:"renderVersion"`
	Precision     int              `json:"precision"`
}

func (st State) Clone() State {
	out := st
	out.Document = st.Document.Clone()
	out.Selection = st.Selection.Clone()
	return out
}

// Change tells listeners which parts of the state a mutation touched.
type Change uint8

const (
	ChangeDocument Change = 1 << iota
	ChangeSelection
	ChangeViewport
	ChangeMode
)

func (c Change) Has(o Change) bool { return c&o != 0 }

type Listener func(Change)

// PresetLookup resolves predefined gradients referenced as url(#id).
type PresetLookup func(id string) (models.Gradient, bool)

// ============================================================
// Store
// ============================================================

type Store struct {
	mu      sync.Mutex
	state   State
	history *history.Manager[snapshot]
	newID   func() string
	presets PresetLookup

	// movement-sync groups already translated in the current move batch
	batch map[string]struct{}

	lmu       sync.Mutex
	listeners []*listenerEntry
}

type listenerEntry struct {
	fn Listener
}

type Option func(*Store)

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithPrecision(p int) Option {
	return func(s *Store) {
		if p >= 0 {
			s.state.Precision = p
		}
	}
}

func WithPresets(lookup PresetLookup) Option {
	return func(s *Store) { s.presets = lookup }
}

func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		s.history = newHistory(history.WithLimit[snapshot](n))
	}
}

func WithDocument(doc models.Document) Option {
	return func(s *Store) { s.state.Document = doc.Clone() }
}

func New(opts ...Option) *Store {
	s := &Store{
		state: State{
			Viewport:  models.Viewport{Zoom: 1},
			Mode:      "select",
			Precision: DefaultPrecision,
		},
		newID:   uuid.NewString,
		presets: func(string) (models.Gradient, bool) { return models.Gradient{}, false },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = newHistory()
	}
	return s
}

// update runs fn under the lock and notifies listeners with the returned
// change set once the lock is released. A zero change means no-op.
func (s *Store) update(fn func(st *State) Change) bool {
	s.mu.Lock()
	ch := fn(&s.state)
	s.mu.Unlock()

	if ch == 0 {
		return false
	}
	s.notify(ch)
	return true
}

func (s *Store) read(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(fn Listener) func() {
	entry := &listenerEntry{fn: fn}
	s.lmu.Lock()
	s.listeners = append(s.listeners, entry)
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, e := range s.listeners {
			if e == entry {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ch Change) {
	s.lmu.Lock()
	ls := make([]*listenerEntry, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.Unlock()

	for _, l := range ls {
		callListener(l.fn, ch)
	}
}

func callListener(fn Listener, ch Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[STORE] listener panic: %v", r)
		}
	}()
	fn(ch)
}

// ============================================================
// Reads
// ============================================================

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	var out State
	s.read(func(st *State) { out = st.Clone() })
	return out
}

func (s *Store) Document() models.Document {
	var out models.Document
	s.read(func(st *State) { out = st.Document.Clone() })
	return out
}

func (s *Store) Selection() models.Selection {
	var out models.Selection
	s.read(func(st *State) { out = st.Selection.Clone() })
	return out
}

func (s *Store) Viewport() models.Viewport {
	var out models.Viewport
	s.read(func(st *State) { out = st.Viewport })
	return out
}

func (s *Store) RenderVersion() uint64 {
	var out uint64
	s.read(func(st *State) { out = st.RenderVersion })
	return out
}

func (s *Store) Precision() int {
	var out int
	s.read(func(st *State) { out = st.Precision })
	return out
}

func (s *Store) Mode() string {
	var out string
	s.read(func(st *State) { out = st.Mode })
	return out
}

// SetMode is the store-level mode used when no tool manager owns the
// active tool.
func (s *Store) SetMode(mode string) {
	s.update(func(st *State) Change {
		if st.Mode == mode {
			return 0
		}
		st.Mode = mode
		return ChangeMode
	})
}

// ============================================================
// Helpers
// ============================================================

func round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

func (s *Store) roundPoint(st *State, p models.Point) models.Point {
	return models.Point{X: round(p.X, st.Precision), Y: round(p.Y, st.Precision)}
}

func idSet(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
