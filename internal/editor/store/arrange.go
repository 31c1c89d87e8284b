package store

import (
	"math"
	"slices"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// ============================================================
// Align & distribute
// ============================================================

type axis int

const (
	axisX axis = iota
	axisY
)

func (a axis) of(p models.Point) float64 {
	if a == axisX {
		return p.X
	}
	return p.Y
}

func (a axis) with(p models.Point, v float64) models.Point {
	if a == axisX {
		p.X = v
	} else {
		p.Y = v
	}
	return p
}

type commandRef struct{ pi, si, ci int }

// pointGroup is a set of selected commands sharing one position; it is
// moved as a unit.
type pointGroup struct {
	pos  models.Point
	refs []commandRef
}

// arrangeGroups collects the selected, editable, arrangeable commands
// grouped by coincident position, in first-seen order. Commands of paths
// in a movement-sync group are left out.
func arrangeGroups(st *State) []*pointGroup {
	doc := &st.Document
	var groups []*pointGroup
	byPos := map[models.Point]*pointGroup{}
	for _, id := range st.Selection.SelectedCommands {
		pi, si, ci, ok := locateCommand(doc, id)
		if !ok || !subPathEditable(doc, pi, si) || hasGroupLock(doc, doc.Paths[pi].ID, models.LockFull) {
			continue
		}
		// members of a movement-sync group only move rigidly
		if syncGroup(doc, doc.Paths[pi].ID) != "" {
			continue
		}
		c := doc.Paths[pi].SubPaths[si].Commands[ci]
		if !models.IsArrangeable(c) {
			continue
		}
		pos := c.Point()
		g, ok := byPos[pos]
		if !ok {
			g = &pointGroup{pos: pos}
			byPos[pos] = g
			groups = append(groups, g)
		}
		g.refs = append(g.refs, commandRef{pi, si, ci})
	}
	return groups
}

// place moves every command of g so that its anchor lands on pos.
func place(st *State, g *pointGroup, pos models.Point) bool {
	pos = models.Point{X: round(pos.X, st.Precision), Y: round(pos.Y, st.Precision)}
	delta := pos.Sub(g.pos)
	if delta == (models.Point{}) {
		return false
	}
	for _, r := range g.refs {
		sp := &st.Document.Paths[r.pi].SubPaths[r.si]
		moveCommandAt(sp, r.ci, pos, delta, st.Precision)
	}
	g.pos = pos
	return true
}

type alignTarget int

const (
	alignMin alignTarget = iota
	alignMid
	alignMax
)

func (s *Store) align(a axis, target alignTarget) bool {
	return s.update(func(st *State) Change {
		groups := arrangeGroups(st)
		if len(groups) < 2 {
			return 0
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, g := range groups {
			v := a.of(g.pos)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		var to float64
		switch target {
		case alignMin:
			to = lo
		case alignMid:
			to = (lo + hi) / 2
		case alignMax:
			to = hi
		}
		moved := false
		for _, g := range groups {
			if place(st, g, a.with(g.pos, to)) {
				moved = true
			}
		}
		return s.arranged(st, moved)
	})
}

func (s *Store) distribute(a axis) bool {
	return s.update(func(st *State) Change {
		groups := arrangeGroups(st)
		if len(groups) < 3 {
			return 0
		}
		slices.SortStableFunc(groups, func(x, y *pointGroup) int {
			switch vx, vy := a.of(x.pos), a.of(y.pos); {
			case vx < vy:
				return -1
			case vx > vy:
				return 1
			}
			return 0
		})
		first, last := a.of(groups[0].pos), a.of(groups[len(groups)-1].pos)
		step := (last - first) / float64(len(groups)-1)
		moved := false
		for i := 1; i < len(groups)-1; i++ {
			g := groups[i]
			if place(st, g, a.with(g.pos, first+step*float64(i))) {
				moved = true
			}
		}
		return s.arranged(st, moved)
	})
}

func (s *Store) arranged(st *State, moved bool) Change {
	if !moved {
		return 0
	}
	ch := ChangeDocument
	if s.refreshSelectionBox(st) {
		ch |= ChangeSelection
	}
	st.RenderVersion++
	return ch
}

func (s *Store) AlignCommandsLeft() bool   { return s.align(axisX, alignMin) }
func (s *Store) AlignCommandsCenter() bool { return s.align(axisX, alignMid) }
func (s *Store) AlignCommandsRight() bool  { return s.align(axisX, alignMax) }
func (s *Store) AlignCommandsTop() bool    { return s.align(axisY, alignMin) }
func (s *Store) AlignCommandsMiddle() bool { return s.align(axisY, alignMid) }
func (s *Store) AlignCommandsBottom() bool { return s.align(axisY, alignMax) }

// DistributeCommandsHorizontally keeps the leftmost and rightmost positions
// and spaces the others evenly between them.
func (s *Store) DistributeCommandsHorizontally() bool { return s.distribute(axisX) }

func (s *Store) DistributeCommandsVertically() bool { return s.distribute(axisY) }

// Arrange runs an arrangement by name, as used by the HTTP layer.
func (s *Store) Arrange(op string) (bool, bool) {
	ops := map[string]func() bool{
		"align-left":              s.AlignCommandsLeft,
		"align-center":            s.AlignCommandsCenter,
		"align-right":             s.AlignCommandsRight,
		"align-top":               s.AlignCommandsTop,
		"align-middle":            s.AlignCommandsMiddle,
		"align-bottom":            s.AlignCommandsBottom,
		"distribute-horizontally": s.DistributeCommandsHorizontally,
		"distribute-vertically":   s.DistributeCommandsVertically,
	}
	fn, ok := ops[op]
	if !ok {
		return false, false
	}
	return fn(), true
}
