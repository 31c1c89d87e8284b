package store

import (
	"slices"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

// ============================================================
// Commands
// ============================================================

// AddCommand appends cmd to the subpath and returns its new id. A move-to
// never extends an existing stroke: it starts a new subpath at the end of
// the parent path. A non-move command added to an empty subpath becomes
// its move-to.
func (s *Store) AddCommand(subPathID string, cmd models.Command) string {
	var id string
	s.update(func(st *State) Change {
		pi, si, ok := locateSubPath(&st.Document, subPathID)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		cmd.ID = s.newID()
		roundCommand(&cmd, st.Precision)

		p := &st.Document.Paths[pi]
		sp := &p.SubPaths[si]
		switch {
		case len(sp.Commands) == 0:
			sp.Commands = ensureLeadingMove([]models.Command{cmd})
		case cmd.Command == models.MoveTo:
			p.SubPaths = append(p.SubPaths, models.SubPath{ID: s.newID(), Commands: []models.Command{cmd}})
		default:
			sp.Commands = append(sp.Commands, cmd)
		}
		id = cmd.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

// InsertCommandAfter inserts cmd right after afterID. Inserting a move-to
// splits the subpath: the move-to and everything after it become a new
// subpath placed right after the original.
func (s *Store) InsertCommandAfter(afterID string, cmd models.Command) string {
	var id string
	s.update(func(st *State) Change {
		pi, si, ci, ok := locateCommand(&st.Document, afterID)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		cmd.ID = s.newID()
		roundCommand(&cmd, st.Precision)

		p := &st.Document.Paths[pi]
		sp := &p.SubPaths[si]
		if cmd.Command == models.MoveTo {
			tail := append([]models.Command{cmd}, sp.Commands[ci+1:]...)
			sp.Commands = slices.Clone(sp.Commands[:ci+1])
			p.SubPaths = slices.Insert(p.SubPaths, si+1, models.SubPath{ID: s.newID(), Commands: tail})
		} else {
			sp.Commands = slices.Insert(sp.Commands, ci+1, cmd)
		}
		id = cmd.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

// UpdateCommand applies a partial update. Values are compared after
// rounding to the document precision; an update that changes nothing
// leaves the state, the render version and the selection box untouched.
func (s *Store) UpdateCommand(id string, u models.CommandUpdate) bool {
	return s.update(func(st *State) Change {
		pi, si, ci, ok := locateCommand(&st.Document, id)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		c := &st.Document.Paths[pi].SubPaths[si].Commands[ci]
		if !commandChanged(*c, u, st.Precision) {
			return 0
		}
		applyCommandUpdate(c, u, st.Precision)
		if ci == 0 && c.Command != models.MoveTo {
			sp := &st.Document.Paths[pi].SubPaths[si]
			sp.Commands = ensureLeadingMove(sp.Commands)
		}
		ch := ChangeDocument
		if s.refreshSelectionBox(st) {
			ch |= ChangeSelection
		}
		st.RenderVersion++
		return ch
	})
}

// MoveCommand moves the anchor of a command to pos. The command's own
// trailing control point moves with it, and so does the leading control
// point of a following curve, so curve shapes are preserved.
func (s *Store) MoveCommand(id string, pos models.Point) bool {
	if !pos.IsFinite() {
		log.Warnf("[STORE] ignoring non-finite position for command %s", id)
		return false
	}
	return s.update(func(st *State) Change {
		pi, si, ci, ok := locateCommand(&st.Document, id)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		sp := &st.Document.Paths[pi].SubPaths[si]
		c := sp.Commands[ci]
		if c.Command == models.ClosePath {
			return 0
		}
		pos = s.roundPoint(st, pos)
		delta := pos.Sub(c.Point())
		if delta == (models.Point{}) {
			return 0
		}
		ch := s.moveElement(st, st.Document.Paths[pi].ID, delta, func() {
			moveCommandAt(sp, ci, pos, delta, st.Precision)
		})
		if ch != 0 && s.refreshSelectionBox(st) {
			ch |= ChangeSelection
		}
		return ch
	})
}

// TranslateCommand moves a command by delta, see MoveCommand.
func (s *Store) TranslateCommand(id string, delta models.Point) bool {
	c, ok := s.FindCommand(id)
	if !ok {
		return false
	}
	return s.MoveCommand(id, c.Point().Add(delta))
}

// RemoveCommand deletes a command. An emptied subpath is removed (with the
// usual path cascade) and a surviving subpath is re-coerced to start with
// a move-to.
func (s *Store) RemoveCommand(id string) bool {
	return s.update(func(st *State) Change {
		pi, si, ci, ok := locateCommand(&st.Document, id)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		sp := &st.Document.Paths[pi].SubPaths[si]
		var removed map[string]struct{}
		if len(sp.Commands) == 1 {
			removed = removeSubPathAt(st, pi, si)
		} else {
			sp.Commands = slices.Delete(sp.Commands, ci, ci+1)
			sp.Commands = ensureLeadingMove(sp.Commands)
			removed = idSet(id)
		}
		ch := s.purge(st, removed)
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

// ============================================================
// Helpers
// ============================================================

func roundCommand(c *models.Command, p int) {
	c.X, c.Y = round(c.X, p), round(c.Y, p)
	c.X1, c.Y1 = round(c.X1, p), round(c.Y1, p)
	c.X2, c.Y2 = round(c.X2, p), round(c.Y2, p)
}

func commandChanged(c models.Command, u models.CommandUpdate, p int) bool {
	if u.Command != nil && *u.Command != c.Command {
		return true
	}
	differs := func(cur float64, next *float64) bool {
		return next != nil && round(*next, p) != round(cur, p)
	}
	return differs(c.X, u.X) || differs(c.Y, u.Y) ||
		differs(c.X1, u.X1) || differs(c.Y1, u.Y1) ||
		differs(c.X2, u.X2) || differs(c.Y2, u.Y2)
}

func applyCommandUpdate(c *models.Command, u models.CommandUpdate, p int) {
	if u.Command != nil {
		c.Command = *u.Command
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = round(*v, p)
		}
	}
	set(&c.X, u.X)
	set(&c.Y, u.Y)
	set(&c.X1, u.X1)
	set(&c.Y1, u.Y1)
	set(&c.X2, u.X2)
	set(&c.Y2, u.Y2)
}

func moveCommandAt(sp *models.SubPath, ci int, pos, delta models.Point, p int) {
	c := &sp.Commands[ci]
	c.X, c.Y = pos.X, pos.Y
	if c.Command == models.CurveTo {
		c.X2 = round(c.X2+delta.X, p)
		c.Y2 = round(c.Y2+delta.Y, p)
	}
	if ci+1 < len(sp.Commands) {
		if next := &sp.Commands[ci+1]; next.Command == models.CurveTo {
			next.X1 = round(next.X1+delta.X, p)
			next.Y1 = round(next.Y1+delta.Y, p)
		}
	}
}

// refreshSelectionBox recomputes the marquee box when more than one
// command is selected and clears it otherwise. It reports whether the box
// changed.
func (s *Store) refreshSelectionBox(st *State) bool {
	old := st.Selection.SelectionBox
	var next *models.BBox
	if len(st.Selection.SelectedCommands) > 1 {
		if box, ok := selection.CommandsBox(st.Document, st.Selection.SelectedCommands); ok {
			next = &box
		}
	}
	st.Selection.SelectionBox = next
	switch {
	case old == nil && next == nil:
		return false
	case old == nil || next == nil:
		return true
	default:
		return *old != *next
	}
}
