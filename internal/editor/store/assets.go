package store

import (
	"slices"
	"strings"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// ============================================================
// Gradient auto-registration
// ============================================================

func (s *Store) registerStyle(st *State, style *models.Style) {
	s.registerPaint(st, &style.Fill)
	s.registerPaint(st, &style.Stroke)
}

// registerPaint adds the gradient behind p to the document when it is not
// there yet. Inline gradient objects are registered as is; url(#id) values
// are resolved through the preset lookup. An inline gradient without an id
// gets one, written back into p.
func (s *Store) registerPaint(st *State, p *models.Paint) {
	var g models.Gradient
	switch {
	case p.Gradient != nil:
		g = p.Gradient.Clone()
		if g.ID == "" {
			g.ID = s.newID()
			own := g.Clone()
			p.Gradient = &own
		}
	case strings.HasPrefix(p.Value, "url(#") && strings.HasSuffix(p.Value, ")"):
		id := strings.TrimSuffix(strings.TrimPrefix(p.Value, "url(#"), ")")
		if gradientIndex(&st.Document, id) >= 0 {
			return
		}
		preset, ok := s.presets(id)
		if !ok {
			return
		}
		g = preset.Clone()
		g.ID = id
	default:
		return
	}
	if gradientIndex(&st.Document, g.ID) >= 0 {
		return
	}
	st.Document.Gradients = append(st.Document.Gradients, g)
}

// ============================================================
// Images
// ============================================================

func (s *Store) AddImage(img models.Image) string {
	var id string
	s.update(func(st *State) Change {
		img.ID = s.newID()
		img.X, img.Y = round(img.X, st.Precision), round(img.Y, st.Precision)
		st.Document.Images = append(st.Document.Images, img)
		id = img.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

func (s *Store) UpdateImage(id string, fn func(*models.Image)) bool {
	return s.update(func(st *State) Change {
		i := imageIndex(&st.Document, id)
		if i < 0 || st.Document.Images[i].Locked || hasGroupLock(&st.Document, id, models.LockEditing, models.LockFull) {
			return 0
		}
		img := st.Document.Images[i]
		fn(&img)
		img.ID = id
		if img == st.Document.Images[i] {
			return 0
		}
		st.Document.Images[i] = img
		st.RenderVersion++
		return ChangeDocument
	})
}

func (s *Store) MoveImage(id string, delta models.Point) bool {
	return s.update(func(st *State) Change {
		i := imageIndex(&st.Document, id)
		if i < 0 || st.Document.Images[i].Locked {
			return 0
		}
		return s.moveElement(st, id, delta, func() {
			img := &st.Document.Images[i]
			img.X = round(img.X+delta.X, st.Precision)
			img.Y = round(img.Y+delta.Y, st.Precision)
		})
	})
}

func (s *Store) RemoveImage(id string) bool {
	return s.update(func(st *State) Change {
		i := imageIndex(&st.Document, id)
		if i < 0 || !imageEditable(&st.Document, i) {
			return 0
		}
		st.Document.Images = slices.Delete(st.Document.Images, i, i+1)
		ch := s.purge(st, idSet(id))
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

// ============================================================
// Gradients
// ============================================================

// AddGradient stores g and returns its id; an empty id is generated.
func (s *Store) AddGradient(g models.Gradient) string {
	g = g.Clone()
	var id string
	s.update(func(st *State) Change {
		if g.ID == "" {
			g.ID = s.newID()
		}
		if gradientIndex(&st.Document, g.ID) >= 0 {
			id = g.ID
			return 0
		}
		for i := range g.Stops {
			if g.Stops[i].ID == "" {
				g.Stops[i].ID = s.newID()
			}
		}
		st.Document.Gradients = append(st.Document.Gradients, g)
		id = g.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

func (s *Store) UpdateGradient(g models.Gradient) bool {
	g = g.Clone()
	return s.update(func(st *State) Change {
		i := gradientIndex(&st.Document, g.ID)
		if i < 0 {
			return 0
		}
		st.Document.Gradients[i] = g
		st.RenderVersion++
		return ChangeDocument
	})
}

func (s *Store) RemoveGradient(id string) bool {
	return s.update(func(st *State) Change {
		i := gradientIndex(&st.Document, id)
		if i < 0 {
			return 0
		}
		st.Document.Gradients = slices.Delete(st.Document.Gradients, i, i+1)
		ch := s.purge(st, idSet(id))
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

// ============================================================
// Filters
// ============================================================

func (s *Store) AddFilter(f models.Filter) string {
	f = f.Clone()
	var id string
	s.update(func(st *State) Change {
		if f.ID == "" || filterIndex(&st.Document, f.ID) >= 0 {
			f.ID = s.newID()
		}
		st.Document.Filters = append(st.Document.Filters, f)
		id = f.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

func (s *Store) UpdateFilter(f models.Filter) bool {
	f = f.Clone()
	return s.update(func(st *State) Change {
		i := filterIndex(&st.Document, f.ID)
		if i < 0 {
			return 0
		}
		st.Document.Filters[i] = f
		st.RenderVersion++
		return ChangeDocument
	})
}

func (s *Store) RemoveFilter(id string) bool {
	return s.update(func(st *State) Change {
		i := filterIndex(&st.Document, id)
		if i < 0 {
			return 0
		}
		st.Document.Filters = slices.Delete(st.Document.Filters, i, i+1)
		ch := s.purge(st, idSet(id))
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

// ============================================================
// Animations
// ============================================================

// AddAnimation stores a. The target is not checked: animations may point
// at ids that do not exist (yet), and they survive removal of their target.
func (s *Store) AddAnimation(a models.Animation) string {
	var id string
	s.update(func(st *State) Change {
		a.ID = s.newID()
		st.Document.Animations = append(st.Document.Animations, a)
		id = a.ID
		return ChangeDocument
	})
	return id
}

func (s *Store) UpdateAnimation(a models.Animation) bool {
	return s.update(func(st *State) Change {
		i := animationIndex(&st.Document, a.ID)
		if i < 0 || st.Document.Animations[i] == a {
			return 0
		}
		st.Document.Animations[i] = a
		return ChangeDocument
	})
}

func (s *Store) RemoveAnimation(id string) bool {
	return s.update(func(st *State) Change {
		i := animationIndex(&st.Document, id)
		if i < 0 {
			return 0
		}
		st.Document.Animations = slices.Delete(st.Document.Animations, i, i+1)
		return ChangeDocument | s.purge(st, idSet(id))
	})
}

// AnimationsFor returns the animations targeting elementID.
func (s *Store) AnimationsFor(elementID string) []models.Animation {
	var out []models.Animation
	s.read(func(st *State) {
		for _, a := range st.Document.Animations {
			if a.TargetElementID == elementID {
				out = append(out, a)
			}
		}
	})
	return out
}
