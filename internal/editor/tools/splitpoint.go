package tools

import (
	"slices"
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
)

// pairKey identifies an unordered pair of command ids.
type pairKey struct{ a, b string }

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

type splitState struct {
	last   string
	single bool
}

// SplitPointManager disambiguates the two coincident endpoints of a closed
// looking subpath. The first click on either half selects both, clicking
// the same half again narrows to that half, and clicking the other half
// selects both again.
type SplitPointManager struct {
	mu      sync.Mutex
	store   *store.Store
	states  map[pairKey]*splitState
	applied []string
}

func NewSplitPointManager(s *store.Store) *SplitPointManager {
	return &SplitPointManager{store: s, states: make(map[pairKey]*splitState)}
}

// Partner returns the command coinciding with commandID at the other end
// of its subpath.
func (m *SplitPointManager) Partner(commandID string) (string, bool) {
	sp, ok := m.store.SubPathOf(commandID)
	if !ok {
		return "", false
	}
	return splitPartner(sp, commandID)
}

func splitPartner(sp models.SubPath, commandID string) (string, bool) {
	var ends []models.Command
	for _, c := range sp.Commands {
		if models.IsArrangeable(c) {
			ends = append(ends, c)
		}
	}
	if len(ends) < 2 {
		return "", false
	}
	first, last := ends[0], ends[len(ends)-1]
	if first.Point() != last.Point() {
		return "", false
	}
	switch commandID {
	case first.ID:
		return last.ID, true
	case last.ID:
		return first.ID, true
	}
	return "", false
}

// Next returns the ids to select after a click on clicked, one of the two
// halves a and b, and records the new state.
func (m *SplitPointManager) Next(a, b, clicked string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyOf(a, b)
	st, ok := m.states[k]
	switch {
	case !ok:
		st = &splitState{last: clicked}
		m.states[k] = st
	case !st.single && st.last == clicked:
		st.single = true
	case st.single && st.last == clicked:
	default:
		st.single = false
		st.last = clicked
	}
	if st.single {
		return []string{clicked}
	}
	return []string{a, b}
}

// HandleClick selects according to Next when commandID is half of a split
// point. It reports whether it handled the click.
func (m *SplitPointManager) HandleClick(commandID string) bool {
	partner, ok := m.Partner(commandID)
	if !ok {
		return false
	}
	ids := m.Next(commandID, partner, commandID)
	slices.Sort(ids)

	m.mu.Lock()
	m.applied = ids
	m.mu.Unlock()

	m.store.SelectMany(selection.Command, ids, false)
	return true
}

// OnSelectionChanged drops all pair state when the selection was changed
// by someone else.
func (m *SplitPointManager) OnSelectionChanged(sel models.Selection) {
	current := slices.Clone(sel.SelectedCommands)
	slices.Sort(current)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applied != nil && slices.Equal(current, m.applied) {
		return
	}
	m.applied = nil
	clear(m.states)
}

func (m *SplitPointManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = nil
	clear(m.states)
}
