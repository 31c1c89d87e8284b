package store

import (
	"reflect"

	"github.com/regalagram/sspe-sub013/internal/editor/history"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// snapshot is what an undo step restores.
type snapshot struct {
	Document  models.Document
	Selection models.Selection
}

func cloneSnapshot(s snapshot) snapshot {
	return snapshot{Document: s.Document.Clone(), Selection: s.Selection.Clone()}
}

// diffSnapshot lists the top-level document collections and the selection
// when they differ between two entries.
func diffSnapshot(a, b snapshot) []string {
	var out []string
	da, db := reflect.ValueOf(a.Document), reflect.ValueOf(b.Document)
	t := da.Type()
	for i := range t.NumField() {
		if !reflect.DeepEqual(da.Field(i).Interface(), db.Field(i).Interface()) {
			out = append(out, t.Field(i).Name)
		}
	}
	if !reflect.DeepEqual(a.Selection, b.Selection) {
		out = append(out, "Selection")
	}
	return out
}

func newHistory(opts ...history.Option[snapshot]) *history.Manager[snapshot] {
	opts = append([]history.Option[snapshot]{history.WithDiff(diffSnapshot)}, opts...)
	return history.New(cloneSnapshot, opts...)
}

// ============================================================
// Undo / redo
// ============================================================

// PushToHistory records the current document and selection. Tools call it
// before a mutating gesture; store writes never push implicitly.
func (s *Store) PushToHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Push(snapshot{Document: s.state.Document, Selection: s.state.Selection})
}

func (s *Store) Undo() bool {
	return s.update(func(st *State) Change {
		prev, ok := s.history.Undo(snapshot{Document: st.Document, Selection: st.Selection})
		if !ok {
			return 0
		}
		return restore(st, prev)
	})
}

func (s *Store) Redo() bool {
	return s.update(func(st *State) Change {
		next, ok := s.history.Redo(snapshot{Document: st.Document, Selection: st.Selection})
		if !ok {
			return 0
		}
		return restore(st, next)
	})
}

func restore(st *State, snap snapshot) Change {
	st.Document = snap.Document.Clone()
	st.Selection = snap.Selection.Clone()
	st.RenderVersion++
	return ChangeDocument | ChangeSelection
}

func (s *Store) CanUndo() bool {
	var ok bool
	s.read(func(*State) { ok = s.history.CanUndo() })
	return ok
}

func (s *Store) CanRedo() bool {
	var ok bool
	s.read(func(*State) { ok = s.history.CanRedo() })
	return ok
}

// HistoryDebug is a read-only view of the recorded entries with the
// collections each one changed.
func (s *Store) HistoryDebug() []history.DebugEntry {
	var out []history.DebugEntry
	s.read(func(st *State) {
		out = s.history.Debug(snapshot{Document: st.Document, Selection: st.Selection})
	})
	return out
}
