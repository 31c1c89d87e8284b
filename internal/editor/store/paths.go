package store

import (
	"slices"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

// ============================================================
// Paths
// ============================================================

func DefaultPathStyle() models.Style {
	return models.Style{
		Fill:        models.Paint{Value: "none"},
		Stroke:      models.Paint{Value: "#000000"},
		StrokeWidth: 2,
	}
}

// AddPath creates a path holding one empty subpath and returns both ids.
func (s *Store) AddPath(style *models.Style) (pathID, subPathID string) {
	s.update(func(st *State) Change {
		p := models.Path{ID: s.newID(), Style: DefaultPathStyle()}
		if style != nil {
			p.Style = style.Clone()
		}
		sp := models.SubPath{ID: s.newID(), Commands: []models.Command{}}
		p.SubPaths = []models.SubPath{sp}
		s.registerStyle(st, &p.Style)

		st.Document.Paths = append(st.Document.Paths, p)
		st.RenderVersion++
		pathID, subPathID = p.ID, sp.ID
		return ChangeDocument
	})
	return pathID, subPathID
}

// InsertPath adds a fully built path. Missing ids are generated and every
// subpath is coerced to start with a move-to.
func (s *Store) InsertPath(p models.Path) string {
	p = p.Clone()
	s.update(func(st *State) Change {
		if p.ID == "" {
			p.ID = s.newID()
		}
		if len(p.SubPaths) == 0 {
			p.SubPaths = []models.SubPath{{Commands: []models.Command{}}}
		}
		for i := range p.SubPaths {
			sp := &p.SubPaths[i]
			if sp.ID == "" {
				sp.ID = s.newID()
			}
			for j := range sp.Commands {
				if sp.Commands[j].ID == "" {
					sp.Commands[j].ID = s.newID()
				}
			}
			sp.Commands = ensureLeadingMove(sp.Commands)
		}
		s.registerStyle(st, &p.Style)
		st.Document.Paths = append(st.Document.Paths, p)
		st.RenderVersion++
		return ChangeDocument
	})
	return p.ID
}

func (s *Store) RemovePath(id string) bool {
	return s.update(func(st *State) Change {
		pi := pathIndex(&st.Document, id)
		if pi < 0 || !pathEditable(&st.Document, pi) {
			return 0
		}
		removed := removePathAt(st, pi)
		ch := s.purge(st, removed)
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

func (s *Store) UpdatePathStyle(id string, u models.StyleUpdate) bool {
	return s.update(func(st *State) Change {
		pi := pathIndex(&st.Document, id)
		if pi < 0 || !pathEditable(&st.Document, pi) {
			return 0
		}
		p := &st.Document.Paths[pi]
		p.Style = p.Style.Apply(u)
		s.registerStyle(st, &p.Style)
		st.RenderVersion++
		return ChangeDocument
	})
}

func (s *Store) SetPathLocked(id string, locked bool) bool {
	return s.update(func(st *State) Change {
		pi := pathIndex(&st.Document, id)
		if pi < 0 || st.Document.Paths[pi].Locked == locked {
			return 0
		}
		st.Document.Paths[pi].Locked = locked
		return ChangeDocument
	})
}

// MovePath translates every command of the path by delta.
func (s *Store) MovePath(id string, delta models.Point) bool {
	return s.update(func(st *State) Change {
		pi := pathIndex(&st.Document, id)
		if pi < 0 || st.Document.Paths[pi].Locked {
			return 0
		}
		return s.moveElement(st, id, delta, func() {
			translatePath(&st.Document.Paths[pi], delta, st.Precision)
		})
	})
}

// ============================================================
// SubPaths
// ============================================================

// AddSubPath appends an empty subpath to the path.
func (s *Store) AddSubPath(pathID string) string {
	var id string
	s.update(func(st *State) Change {
		pi := pathIndex(&st.Document, pathID)
		if pi < 0 || !pathEditable(&st.Document, pi) {
			return 0
		}
		id = s.newID()
		st.Document.Paths[pi].SubPaths = append(st.Document.Paths[pi].SubPaths, models.SubPath{ID: id, Commands: []models.Command{}})
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

// RemoveSubPath removes the subpath; removing the last one removes the path
// together with every text path bound to it.
func (s *Store) RemoveSubPath(id string) bool {
	return s.update(func(st *State) Change {
		pi, si, ok := locateSubPath(&st.Document, id)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		removed := removeSubPathAt(st, pi, si)
		ch := s.purge(st, removed)
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

func (s *Store) SetSubPathLocked(id string, locked bool) bool {
	return s.update(func(st *State) Change {
		pi, si, ok := locateSubPath(&st.Document, id)
		if !ok {
			return 0
		}
		sp := &st.Document.Paths[pi].SubPaths[si]
		if sp.Locked == locked {
			return 0
		}
		sp.Locked = locked
		return ChangeDocument
	})
}

func (s *Store) MoveSubPath(id string, delta models.Point) bool {
	return s.update(func(st *State) Change {
		pi, si, ok := locateSubPath(&st.Document, id)
		if !ok || st.Document.Paths[pi].Locked || st.Document.Paths[pi].SubPaths[si].Locked {
			return 0
		}
		return s.moveElement(st, st.Document.Paths[pi].ID, delta, func() {
			translateSubPath(&st.Document.Paths[pi].SubPaths[si], delta, st.Precision)
		})
	})
}

// ReplaceSubPathCommands swaps the whole command list. Every command gets a
// fresh id and selections of the old ids are dropped.
func (s *Store) ReplaceSubPathCommands(id string, cmds []models.Command) bool {
	return s.update(func(st *State) Change {
		pi, si, ok := locateSubPath(&st.Document, id)
		if !ok || !subPathEditable(&st.Document, pi, si) {
			return 0
		}
		sp := &st.Document.Paths[pi].SubPaths[si]
		old := make(map[string]struct{}, len(sp.Commands))
		for _, c := range sp.Commands {
			old[c.ID] = struct{}{}
		}

		next := make([]models.Command, len(cmds))
		for i, c := range cmds {
			c.ID = s.newID()
			next[i] = c
		}
		sp.Commands = ensureLeadingMove(next)

		ch := ChangeDocument
		if sel, changed := selection.Prune(st.Selection, old); changed {
			st.Selection = sel
			ch |= ChangeSelection
		}
		if s.refreshSelectionBox(st) {
			ch |= ChangeSelection
		}
		st.RenderVersion++
		return ch
	})
}

// ============================================================
// Removal cascade (callers hold the lock)
// ============================================================

func removePathAt(st *State, pi int) map[string]struct{} {
	p := st.Document.Paths[pi]
	removed := idSet(p.ID)
	for _, sp := range p.SubPaths {
		removed[sp.ID] = struct{}{}
		for _, c := range sp.Commands {
			removed[c.ID] = struct{}{}
		}
	}
	st.Document.Paths = slices.Delete(st.Document.Paths, pi, pi+1)
	st.Document.TextPaths = slices.DeleteFunc(st.Document.TextPaths, func(tp models.TextPath) bool {
		if tp.PathRef != p.ID {
			return false
		}
		removed[tp.ID] = struct{}{}
		return true
	})
	return removed
}

func removeSubPathAt(st *State, pi, si int) map[string]struct{} {
	p := &st.Document.Paths[pi]
	if len(p.SubPaths) == 1 {
		return removePathAt(st, pi)
	}
	sp := p.SubPaths[si]
	removed := idSet(sp.ID)
	for _, c := range sp.Commands {
		removed[c.ID] = struct{}{}
	}
	p.SubPaths = slices.Delete(p.SubPaths, si, si+1)
	return removed
}

// purge drops removed ids from the selection and from group children.
func (s *Store) purge(st *State, removed map[string]struct{}) Change {
	var ch Change
	for gi := range st.Document.Groups {
		g := &st.Document.Groups[gi]
		before := len(g.Children)
		g.Children = slices.DeleteFunc(g.Children, func(c models.GroupChild) bool {
			_, gone := removed[c.ID]
			return gone
		})
		if len(g.Children) != before {
			ch |= ChangeDocument
		}
	}
	if sel, changed := selection.Prune(st.Selection, removed); changed {
		st.Selection = sel
		ch |= ChangeSelection
	}
	if s.refreshSelectionBox(st) {
		ch |= ChangeSelection
	}
	return ch
}

// ============================================================
// Geometry helpers
// ============================================================

// ensureLeadingMove drops leading close commands and turns the first
// remaining command into a move-to at its anchor.
func ensureLeadingMove(cmds []models.Command) []models.Command {
	for len(cmds) > 0 && cmds[0].Command == models.ClosePath {
		cmds = cmds[1:]
	}
	if len(cmds) == 0 {
		return []models.Command{}
	}
	if cmds[0].Command != models.MoveTo {
		first := cmds[0]
		cmds[0] = models.Command{ID: first.ID, Command: models.MoveTo, X: first.X, Y: first.Y}
	}
	return cmds
}

func translateCommand(c *models.Command, d models.Point, precision int) {
	if c.Command == models.ClosePath {
		return
	}
	c.X = round(c.X+d.X, precision)
	c.Y = round(c.Y+d.Y, precision)
	if c.Command == models.CurveTo {
		c.X1 = round(c.X1+d.X, precision)
		c.Y1 = round(c.Y1+d.Y, precision)
		c.X2 = round(c.X2+d.X, precision)
		c.Y2 = round(c.Y2+d.Y, precision)
	}
}

func translateSubPath(sp *models.SubPath, d models.Point, precision int) {
	for i := range sp.Commands {
		translateCommand(&sp.Commands[i], d, precision)
	}
}

func translatePath(p *models.Path, d models.Point, precision int) {
	for i := range p.SubPaths {
		translateSubPath(&p.SubPaths[i], d, precision)
	}
}
