package tools

import (
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
)

const (
	DefaultStickyRadius = 20.0
	DefaultStickyBreak  = 35.0
)

// ShouldStick applies the sticky hysteresis: a free point sticks within
// radius, a stuck point stays stuck until it is farther than breakDist.
func ShouldStick(stuck bool, dist, radius, breakDist float64) bool {
	if stuck {
		return dist <= breakDist
	}
	return dist <= radius
}

type StickyResult struct {
	Position    models.Point `json:"position"`
	ShouldStick bool         `json:"shouldStick"`
	TargetID    string       `json:"targetId,omitempty"`
}

// StickyManager snaps a dragged subpath endpoint onto the subpath's other
// endpoint.
type StickyManager struct {
	mu        sync.Mutex
	store     *store.Store
	radius    float64
	breakDist float64

	tracking bool
	dragID   string
	targetID string
	target   models.Point
	stuck    bool
}

func NewStickyManager(s *store.Store, radius, breakDist float64) *StickyManager {
	if radius <= 0 {
		radius = DefaultStickyRadius
	}
	if breakDist < radius {
		breakDist = max(DefaultStickyBreak, radius)
	}
	return &StickyManager{store: s, radius: radius, breakDist: breakDist}
}

// Begin starts tracking a drag of commandID. It reports false when the
// command is not an endpoint of an open stroke with a distinct partner.
func (m *StickyManager) Begin(commandID string) bool {
	sp, ok := m.store.SubPathOf(commandID)
	if !ok {
		return false
	}
	first, last := -1, -1
	for i, c := range sp.Commands {
		if !models.IsArrangeable(c) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return false
	}

	var partner models.Command
	switch commandID {
	case sp.Commands[first].ID:
		partner = sp.Commands[last]
	case sp.Commands[last].ID:
		partner = sp.Commands[first]
	default:
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking = true
	m.dragID = commandID
	m.targetID = partner.ID
	m.target = partner.Point()
	m.stuck = false
	return true
}

// Update feeds the raw drag position and returns where the point should go.
func (m *StickyManager) Update(pos models.Point) StickyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tracking {
		return StickyResult{Position: pos}
	}
	m.stuck = ShouldStick(m.stuck, pos.Dist(m.target), m.radius, m.breakDist)
	return m.result(pos)
}

func (m *StickyManager) result(pos models.Point) StickyResult {
	if m.stuck {
		return StickyResult{Position: m.target, ShouldStick: true, TargetID: m.targetID}
	}
	return StickyResult{Position: pos}
}

// End stops tracking and returns the final state of the drag.
func (m *StickyManager) End() StickyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := StickyResult{ShouldStick: m.stuck}
	if m.stuck {
		res.Position, res.TargetID = m.target, m.targetID
	}
	m.tracking, m.stuck = false, false
	m.dragID, m.targetID = "", ""
	return res
}

func (m *StickyManager) Tracking() (commandID string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragID, m.tracking
}
