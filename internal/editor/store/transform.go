package store

import (
	"math"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// ============================================================
// Selection transforms
// ============================================================

// MoveSelection translates everything selected by delta in one change.
// Commands and subpaths are skipped when their path is selected as well,
// and a movement-sync group moves once however many members are selected.
func (s *Store) MoveSelection(delta models.Point) bool {
	if !delta.IsFinite() {
		log.Warnf("[STORE] ignoring non-finite selection delta")
		return false
	}
	if delta == (models.Point{}) {
		return false
	}
	return s.update(func(st *State) Change {
		if s.batch == nil {
			s.batch = make(map[string]struct{})
			defer func() { s.batch = nil }()
		}
		doc := &st.Document
		sel := st.Selection
		paths := idSet(sel.SelectedPaths...)
		subPaths := idSet(sel.SelectedSubPaths...)
		var ch Change

		for _, id := range sel.SelectedPaths {
			pi := pathIndex(doc, id)
			if pi < 0 || !pathEditable(doc, pi) {
				continue
			}
			ch |= s.moveElement(st, id, delta, func() {
				translatePath(&doc.Paths[pi], delta, st.Precision)
			})
		}
		for _, id := range sel.SelectedSubPaths {
			pi, si, ok := locateSubPath(doc, id)
			if !ok || !subPathEditable(doc, pi, si) {
				continue
			}
			if _, dup := paths[doc.Paths[pi].ID]; dup {
				continue
			}
			ch |= s.moveElement(st, doc.Paths[pi].ID, delta, func() {
				translateSubPath(&doc.Paths[pi].SubPaths[si], delta, st.Precision)
			})
		}
		for _, id := range sel.SelectedCommands {
			pi, si, ci, ok := locateCommand(doc, id)
			if !ok || !subPathEditable(doc, pi, si) {
				continue
			}
			sp := &doc.Paths[pi].SubPaths[si]
			_, pathSel := paths[doc.Paths[pi].ID]
			_, spSel := subPaths[sp.ID]
			if pathSel || spSel || sp.Commands[ci].Command == models.ClosePath {
				continue
			}
			pos := s.roundPoint(st, sp.Commands[ci].Point().Add(delta))
			d := pos.Sub(sp.Commands[ci].Point())
			ch |= s.moveElement(st, doc.Paths[pi].ID, delta, func() {
				moveCommandAt(sp, ci, pos, d, st.Precision)
			})
		}
		for _, id := range sel.SelectedTexts {
			ti := textIndex(doc, id)
			if ti < 0 || !textEditable(doc, ti) {
				continue
			}
			ch |= s.moveElement(st, id, delta, func() {
				t := &doc.Texts[ti]
				t.X, t.Y = round(t.X+delta.X, st.Precision), round(t.Y+delta.Y, st.Precision)
			})
		}
		for _, id := range sel.SelectedImages {
			ii := imageIndex(doc, id)
			if ii < 0 || doc.Images[ii].Locked {
				continue
			}
			ch |= s.moveElement(st, id, delta, func() {
				img := &doc.Images[ii]
				img.X, img.Y = round(img.X+delta.X, st.Precision), round(img.Y+delta.Y, st.Precision)
			})
		}
		for _, id := range sel.SelectedGroups {
			gi := groupIndex(doc, id)
			if gi < 0 || doc.Groups[gi].Locked || hasGroupLock(doc, id, models.LockFull) {
				continue
			}
			if g := syncGroup(doc, id); g != "" {
				ch |= s.translateGroupOnce(st, g, delta)
				continue
			}
			ch |= s.translateGroupOnce(st, id, delta)
		}
		if ch != 0 && s.refreshSelectionBox(st) {
			ch |= ChangeSelection
		}
		return ch
	})
}

// ScaleSelection scales the selected elements about origin. Texts keep
// their font size; only their anchor moves.
func (s *Store) ScaleSelection(origin models.Point, sx, sy float64) bool {
	if !origin.IsFinite() || !finiteScale(sx) || !finiteScale(sy) {
		log.Warnf("[STORE] ignoring invalid scale %v,%v", sx, sy)
		return false
	}
	if sx == 1 && sy == 1 {
		return false
	}
	sc := scaler{origin: origin, sx: sx, sy: sy}
	return s.update(func(st *State) Change {
		doc := &st.Document
		sel := st.Selection
		sc.precision = st.Precision
		paths := idSet(sel.SelectedPaths...)
		subPaths := idSet(sel.SelectedSubPaths...)
		seenGroups := map[string]bool{}
		changed := false

		for _, id := range sel.SelectedPaths {
			if pi := pathIndex(doc, id); pi >= 0 && pathEditable(doc, pi) {
				sc.path(&doc.Paths[pi])
				changed = true
			}
		}
		for _, id := range sel.SelectedSubPaths {
			pi, si, ok := locateSubPath(doc, id)
			if !ok || !subPathEditable(doc, pi, si) {
				continue
			}
			if _, dup := paths[doc.Paths[pi].ID]; !dup {
				sc.subPath(&doc.Paths[pi].SubPaths[si])
				changed = true
			}
		}
		for _, id := range sel.SelectedCommands {
			pi, si, ci, ok := locateCommand(doc, id)
			if !ok || !subPathEditable(doc, pi, si) {
				continue
			}
			_, pathSel := paths[doc.Paths[pi].ID]
			_, spSel := subPaths[doc.Paths[pi].SubPaths[si].ID]
			if !pathSel && !spSel {
				sc.command(&doc.Paths[pi].SubPaths[si].Commands[ci])
				changed = true
			}
		}
		for _, id := range sel.SelectedTexts {
			if ti := textIndex(doc, id); ti >= 0 && textEditable(doc, ti) {
				sc.text(&doc.Texts[ti])
				changed = true
			}
		}
		for _, id := range sel.SelectedImages {
			if ii := imageIndex(doc, id); ii >= 0 && !doc.Images[ii].Locked && !hasGroupLock(doc, id, models.LockFull) {
				sc.image(&doc.Images[ii])
				changed = true
			}
		}
		for _, id := range sel.SelectedGroups {
			gi := groupIndex(doc, id)
			if gi < 0 || doc.Groups[gi].Locked || hasGroupLock(doc, id, models.LockFull, models.LockEditing) {
				continue
			}
			sc.group(doc, gi, seenGroups)
			changed = true
		}
		if !changed {
			return 0
		}
		st.RenderVersion++
		ch := ChangeDocument
		if s.refreshSelectionBox(st) {
			ch |= ChangeSelection
		}
		return ch
	})
}

func finiteScale(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

type scaler struct {
	origin    models.Point
	sx, sy    float64
	precision int
}

func (c scaler) xy(x, y float64) (float64, float64) {
	return round(c.origin.X+(x-c.origin.X)*c.sx, c.precision),
		round(c.origin.Y+(y-c.origin.Y)*c.sy, c.precision)
}

func (c scaler) command(cmd *models.Command) {
	if cmd.Command == models.ClosePath {
		return
	}
	cmd.X, cmd.Y = c.xy(cmd.X, cmd.Y)
	if cmd.Command == models.CurveTo {
		cmd.X1, cmd.Y1 = c.xy(cmd.X1, cmd.Y1)
		cmd.X2, cmd.Y2 = c.xy(cmd.X2, cmd.Y2)
	}
}

func (c scaler) subPath(sp *models.SubPath) {
	for i := range sp.Commands {
		c.command(&sp.Commands[i])
	}
}

func (c scaler) path(p *models.Path) {
	for i := range p.SubPaths {
		c.subPath(&p.SubPaths[i])
	}
}

func (c scaler) text(t *models.Text) {
	t.X, t.Y = c.xy(t.X, t.Y)
}

// image scales the box and keeps its size positive on a mirrored axis.
func (c scaler) image(img *models.Image) {
	x0, y0 := c.xy(img.X, img.Y)
	x1, y1 := c.xy(img.X+img.Width, img.Y+img.Height)
	box := models.BoxFromPoints(models.Point{X: x0, Y: y0}, models.Point{X: x1, Y: y1})
	img.X, img.Y, img.Width, img.Height = box.X, box.Y, box.Width, box.Height
}

func (c scaler) group(doc *models.Document, gi int, seen map[string]bool) {
	g := doc.Groups[gi]
	if seen[g.ID] {
		return
	}
	seen[g.ID] = true
	for _, ch := range g.Children {
		switch ch.Type {
		case models.KindPath:
			if i := pathIndex(doc, ch.ID); i >= 0 && !doc.Paths[i].Locked {
				c.path(&doc.Paths[i])
			}
		case models.KindText:
			if i := textIndex(doc, ch.ID); i >= 0 && !doc.Texts[i].Locked {
				c.text(&doc.Texts[i])
			}
		case models.KindImage:
			if i := imageIndex(doc, ch.ID); i >= 0 && !doc.Images[i].Locked {
				c.image(&doc.Images[i])
			}
		case models.KindGroup:
			if i := groupIndex(doc, ch.ID); i >= 0 {
				c.group(doc, i, seen)
			}
		}
	}
}
