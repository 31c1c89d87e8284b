package tools

import (
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

// closeRadius is how near the first anchor a click must land to close the
// curve.
const closeRadius = 8.0

// CurvesManager builds a bezier path anchor by anchor. A click adds an
// anchor, dragging pulls symmetric handles, clicking the first anchor
// closes the curve and Enter finishes it.
type CurvesManager struct {
	base
	mu sync.Mutex

	pathID    string
	subPathID string
	anchors   []models.Point
	lastCmd   string
	outHandle *models.Point
	dragging  bool
}

func NewCurvesManager(s *store.Store, modes Modes) *CurvesManager {
	return &CurvesManager{base: base{store: s, modes: modes, mode: toolmode.ModeCurves}}
}

func (m *CurvesManager) ActivateExternally() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
}

func (m *CurvesManager) DeactivateExternally() {
	m.finish()
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// PathID returns the path under construction, if any.
func (m *CurvesManager) PathID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pathID
}

func (m *CurvesManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	if !m.active || e.Button != input.ButtonPrimary {
		m.mu.Unlock()
		return false
	}
	p := e.Point

	if m.pathID == "" {
		m.mu.Unlock()
		m.store.PushToHistory()
		pathID, subPathID := m.store.AddPath(nil)
		id := m.store.AddCommand(subPathID, models.Command{Command: models.MoveTo, X: p.X, Y: p.Y})

		m.mu.Lock()
		m.pathID, m.subPathID, m.lastCmd = pathID, subPathID, id
		m.anchors = []models.Point{p}
		m.outHandle = nil
		m.dragging = true
		m.mu.Unlock()
		return true
	}

	if len(m.anchors) >= 2 && p.Dist(m.anchors[0]) <= closeRadius {
		subPathID := m.subPathID
		m.mu.Unlock()
		m.store.AddCommand(subPathID, models.Command{Command: models.ClosePath})
		m.reset()
		return true
	}

	c := models.Command{Command: models.LineTo, X: p.X, Y: p.Y}
	if m.outHandle != nil {
		c = models.Command{Command: models.CurveTo, X1: m.outHandle.X, Y1: m.outHandle.Y, X2: p.X, Y2: p.Y, X: p.X, Y: p.Y}
	}
	subPathID := m.subPathID
	m.mu.Unlock()

	id := m.store.AddCommand(subPathID, c)

	m.mu.Lock()
	m.lastCmd = id
	m.anchors = append(m.anchors, p)
	m.outHandle = nil
	m.dragging = true
	m.mu.Unlock()
	return true
}

// HandlePointerMove pulls the handles of the last anchor: the outgoing
// handle follows the pointer and the incoming one mirrors it.
func (m *CurvesManager) HandlePointerMove(e input.PointerEvent) bool {
	m.mu.Lock()
	if !m.dragging || len(m.anchors) == 0 {
		m.mu.Unlock()
		return false
	}
	anchor := m.anchors[len(m.anchors)-1]
	drag := e.Point
	out := drag
	m.outHandle = &out
	lastCmd := m.lastCmd
	var prev models.Point
	if n := len(m.anchors); n >= 2 {
		prev = m.anchors[n-2]
	}
	isFirst := len(m.anchors) == 1
	m.mu.Unlock()

	if isFirst {
		return true
	}
	mirror := models.Point{X: 2*anchor.X - drag.X, Y: 2*anchor.Y - drag.Y}
	c, ok := m.store.FindCommand(lastCmd)
	if !ok {
		return true
	}
	u := models.CommandUpdate{X2: &mirror.X, Y2: &mirror.Y}
	if c.Command == models.LineTo {
		curve := models.CurveTo
		u.Command = &curve
		u.X1, u.Y1 = &prev.X, &prev.Y
	}
	m.store.UpdateCommand(lastCmd, u)
	return true
}

func (m *CurvesManager) HandlePointerUp(e input.PointerEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.dragging
	m.dragging = false
	return was
}

func (m *CurvesManager) HandleKey(e input.KeyEvent) bool {
	if !m.active {
		return false
	}
	switch {
	case isEnter(e):
		m.finish()
		return true
	case isEscape(e):
		m.exit()
		return true
	}
	return false
}

// finish ends the current curve; a curve with a single anchor is removed.
func (m *CurvesManager) finish() {
	m.mu.Lock()
	pathID, n := m.pathID, len(m.anchors)
	m.mu.Unlock()
	if pathID != "" && n < 2 {
		m.store.RemovePath(pathID)
	}
	m.reset()
}

func (m *CurvesManager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pathID, m.subPathID, m.lastCmd = "", "", ""
	m.anchors = nil
	m.outHandle = nil
	m.dragging = false
}
