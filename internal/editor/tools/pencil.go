package tools

import (
	"math"
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

const (
	// DefaultSimplifyTolerance is the Ramer-Douglas-Peucker epsilon applied
	// when a stroke ends.
	DefaultSimplifyTolerance = 1.5
	minPencilStep            = 1.0
)

type stroke struct {
	pathID    string
	subPathID string
	points    []models.Point
}

// PencilManager draws freehand strokes, one per pointer, and simplifies
// each stroke when the pointer is released.
type PencilManager struct {
	base
	mu        sync.Mutex
	tolerance float64
	style     *models.Style
	strokes   map[int]*stroke
}

func NewPencilManager(s *store.Store, modes Modes) *PencilManager {
	return &PencilManager{
		base:      base{store: s, modes: modes, mode: toolmode.ModePencil},
		tolerance: DefaultSimplifyTolerance,
		strokes:   make(map[int]*stroke),
	}
}

// SetStyle sets the style of new strokes; nil restores the default.
func (m *PencilManager) SetStyle(style *models.Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.style = style
}

func (m *PencilManager) ActivateExternally() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
}

// DeactivateExternally finishes strokes still in progress.
func (m *PencilManager) DeactivateExternally() {
	m.mu.Lock()
	pending := m.strokes
	m.strokes = make(map[int]*stroke)
	m.active = false
	m.mu.Unlock()

	for _, st := range pending {
		m.finish(st)
	}
}

func (m *PencilManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	if !m.active || e.Button != input.ButtonPrimary {
		m.mu.Unlock()
		return false
	}
	style := m.style
	m.mu.Unlock()

	m.store.PushToHistory()
	pathID, subPathID := m.store.AddPath(style)
	m.store.AddCommand(subPathID, models.Command{Command: models.MoveTo, X: e.Point.X, Y: e.Point.Y})

	m.mu.Lock()
	m.strokes[e.PointerID] = &stroke{pathID: pathID, subPathID: subPathID, points: []models.Point{e.Point}}
	m.mu.Unlock()
	return true
}

func (m *PencilManager) HandlePointerMove(e input.PointerEvent) bool {
	m.mu.Lock()
	st, ok := m.strokes[e.PointerID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	last := st.points[len(st.points)-1]
	if e.Point.Dist(last) < minPencilStep || !e.Point.IsFinite() {
		m.mu.Unlock()
		return true
	}
	st.points = append(st.points, e.Point)
	subPathID := st.subPathID
	m.mu.Unlock()

	m.store.AddCommand(subPathID, models.Command{Command: models.LineTo, X: e.Point.X, Y: e.Point.Y})
	return true
}

func (m *PencilManager) HandlePointerUp(e input.PointerEvent) bool {
	m.mu.Lock()
	st, ok := m.strokes[e.PointerID]
	delete(m.strokes, e.PointerID)
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.finish(st)
	return true
}

// finish replaces the raw stroke by its simplification; a stroke that
// never moved is dropped.
func (m *PencilManager) finish(st *stroke) {
	if len(st.points) < 2 {
		m.store.RemovePath(st.pathID)
		return
	}
	pts := Simplify(st.points, m.tolerance)
	cmds := make([]models.Command, len(pts))
	for i, p := range pts {
		cmds[i] = models.Command{Command: models.LineTo, X: p.X, Y: p.Y}
	}
	cmds[0].Command = models.MoveTo
	m.store.ReplaceSubPathCommands(st.subPathID, cmds)
}

func (m *PencilManager) HandleKey(e input.KeyEvent) bool {
	if !m.active || !isEscape(e) {
		return false
	}
	m.exit()
	return true
}

// ============================================================
// Simplification
// ============================================================

// Simplify reduces a polyline with the Ramer-Douglas-Peucker algorithm.
// The first and last points are always kept.
func Simplify(pts []models.Point, epsilon float64) []models.Point {
	if len(pts) < 3 {
		return append([]models.Point(nil), pts...)
	}
	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true
	rdp(pts, 0, len(pts)-1, epsilon, keep)

	out := make([]models.Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func rdp(pts []models.Point, lo, hi int, epsilon float64, keep []bool) {
	if hi-lo < 2 {
		return
	}
	idx, dmax := -1, 0.0
	for i := lo + 1; i < hi; i++ {
		if d := segmentDistance(pts[i], pts[lo], pts[hi]); d > dmax {
			idx, dmax = i, d
		}
	}
	if idx < 0 || dmax <= epsilon {
		return
	}
	keep[idx] = true
	rdp(pts, lo, idx, epsilon, keep)
	rdp(pts, idx, hi, epsilon, keep)
}

func segmentDistance(p, a, b models.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return p.Dist(models.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
