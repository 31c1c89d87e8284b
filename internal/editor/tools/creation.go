package tools

import (
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

// CreationManager appends one command of the configured kind per click.
// The command goes to the subpath of the last selected command, the
// selected subpath, or the last subpath of the selected path; with nothing
// selected a new path is started. The new command becomes the selection so
// consecutive clicks extend the same stroke.
type CreationManager struct {
	base
	mu      sync.Mutex
	subMode models.CommandType
}

func NewCreationManager(s *store.Store, modes Modes) *CreationManager {
	return &CreationManager{
		base:    base{store: s, modes: modes, mode: toolmode.ModeCreation},
		subMode: models.LineTo,
	}
}

func (m *CreationManager) ActivateExternally() {
	sub := models.CommandType(m.modes.State().CreateSubMode)
	switch sub {
	case models.MoveTo, models.LineTo, models.CurveTo, models.ClosePath:
	default:
		sub = models.LineTo
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
	m.subMode = sub
}

func (m *CreationManager) DeactivateExternally() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

func (m *CreationManager) SubMode() models.CommandType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subMode
}

// targetSubPath resolves where the next command goes and the anchor it
// continues from.
func (m *CreationManager) targetSubPath() (string, *models.Point) {
	sel := m.store.Selection()
	if n := len(sel.SelectedCommands); n > 0 {
		id := sel.SelectedCommands[n-1]
		if sp, ok := m.store.SubPathOf(id); ok {
			return sp.ID, lastAnchor(sp)
		}
	}
	if n := len(sel.SelectedSubPaths); n > 0 {
		if sp, ok := m.store.FindSubPath(sel.SelectedSubPaths[n-1]); ok {
			return sp.ID, lastAnchor(sp)
		}
	}
	if n := len(sel.SelectedPaths); n > 0 {
		if p, ok := m.store.FindPath(sel.SelectedPaths[n-1]); ok && len(p.SubPaths) > 0 {
			sp := p.SubPaths[len(p.SubPaths)-1]
			return sp.ID, lastAnchor(sp)
		}
	}
	return "", nil
}

func lastAnchor(sp models.SubPath) *models.Point {
	for i := len(sp.Commands) - 1; i >= 0; i-- {
		if c := sp.Commands[i]; models.IsArrangeable(c) {
			p := c.Point()
			return &p
		}
	}
	return nil
}

func (m *CreationManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	if !m.active || e.Button != input.ButtonPrimary {
		m.mu.Unlock()
		return false
	}
	sub := m.subMode
	m.mu.Unlock()

	spID, from := m.targetSubPath()
	m.store.PushToHistory()
	if spID == "" {
		_, spID = m.store.AddPath(nil)
		from = nil
	}

	p := e.Point
	c := models.Command{Command: sub, X: p.X, Y: p.Y}
	switch sub {
	case models.CurveTo:
		if from == nil {
			from = &p
		}
		d := p.Sub(*from)
		c.X1, c.Y1 = from.X+d.X/3, from.Y+d.Y/3
		c.X2, c.Y2 = from.X+2*d.X/3, from.Y+2*d.Y/3
	case models.ClosePath:
		c.X, c.Y = 0, 0
	}

	id := m.store.AddCommand(spID, c)
	if id == "" {
		return true
	}
	if sub != models.ClosePath {
		m.store.Select(selection.Command, id, false)
	}
	return true
}

func (m *CreationManager) HandlePointerMove(input.PointerEvent) bool { return false }
func (m *CreationManager) HandlePointerUp(input.PointerEvent) bool   { return false }

func (m *CreationManager) HandleKey(e input.KeyEvent) bool {
	if !m.active || !isEscape(e) {
		return false
	}
	m.exit()
	return true
}
