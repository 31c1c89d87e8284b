package store

import (
	"slices"
	"strings"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

// ============================================================
// Selection
// ============================================================

// ownerID returns the id of the top-level element an entity belongs to,
// which is what group locks are checked against. ok is false when the
// entity does not exist.
func ownerID(doc *models.Document, k selection.Kind, id string) (string, bool) {
	switch k {
	case selection.Path:
		return id, pathIndex(doc, id) >= 0
	case selection.SubPath:
		if pi, _, ok := locateSubPath(doc, id); ok {
			return doc.Paths[pi].ID, true
		}
	case selection.Command:
		if pi, _, _, ok := locateCommand(doc, id); ok {
			return doc.Paths[pi].ID, true
		}
	case selection.ControlPoint:
		// control points are addressed as <commandID>:<1|2>
		cmd, _, _ := strings.Cut(id, ":")
		if pi, _, _, ok := locateCommand(doc, cmd); ok {
			return doc.Paths[pi].ID, true
		}
	case selection.Text:
		return id, textIndex(doc, id) >= 0
	case selection.TextSpan:
		for _, t := range doc.Texts {
			for _, sp := range t.Spans {
				if sp.ID == id {
					return t.ID, true
				}
			}
		}
	case selection.TextPath:
		return id, textPathIndex(doc, id) >= 0
	case selection.Group:
		return id, groupIndex(doc, id) >= 0
	case selection.Image:
		return id, imageIndex(doc, id) >= 0
	case selection.Gradient:
		return id, gradientIndex(doc, id) >= 0
	case selection.Filter:
		return id, filterIndex(doc, id) >= 0
	case selection.Animation:
		return id, animationIndex(doc, id) >= 0
	}
	return "", false
}

func canSelect(doc *models.Document, k selection.Kind, id string) bool {
	owner, ok := ownerID(doc, k, id)
	return ok && selectable(doc, owner)
}

// Select selects one entity. Without add, every other selection is
// replaced. Unknown ids and members of selection-locked groups are refused.
func (s *Store) Select(k selection.Kind, id string, add bool) bool {
	return s.SelectMany(k, []string{id}, add)
}

func (s *Store) SelectMany(k selection.Kind, ids []string, add bool) bool {
	return s.update(func(st *State) Change {
		valid := make([]string, 0, len(ids))
		for _, id := range ids {
			if canSelect(&st.Document, k, id) {
				valid = append(valid, id)
			}
		}
		if len(valid) == 0 {
			return 0
		}
		return s.setSelection(st, selection.SelectMany(st.Selection, k, valid, add))
	})
}

func (s *Store) Deselect(k selection.Kind, id string) bool {
	return s.update(func(st *State) Change {
		if !selection.Contains(st.Selection, k, id) {
			return 0
		}
		return s.setSelection(st, selection.Deselect(st.Selection, k, id))
	})
}

// ToggleSelection flips one entity, keeping the rest of the selection.
func (s *Store) ToggleSelection(k selection.Kind, id string) bool {
	return s.update(func(st *State) Change {
		if !selection.Contains(st.Selection, k, id) && !canSelect(&st.Document, k, id) {
			return 0
		}
		return s.setSelection(st, selection.Toggle(st.Selection, k, id))
	})
}

func (s *Store) ClearSelection() {
	s.update(func(st *State) Change {
		if selection.IsEmpty(st.Selection) && st.Selection.SelectionBox == nil {
			return 0
		}
		st.Selection = selection.Clear()
		return ChangeSelection
	})
}

// SetSelection replaces the selection wholesale, dropping ids that do not
// exist or cannot be selected.
func (s *Store) SetSelection(sel models.Selection) bool {
	return s.update(func(st *State) Change {
		next := models.Selection{}
		for _, k := range selection.Kinds() {
			var keep []string
			for _, id := range selection.IDs(sel, k) {
				if canSelect(&st.Document, k, id) {
					keep = append(keep, id)
				}
			}
			if len(keep) > 0 {
				next = selection.SelectMany(next, k, keep, true)
			}
		}
		return s.setSelection(st, next)
	})
}

// SelectAll selects every selectable path, text, text path and image.
func (s *Store) SelectAll() bool {
	return s.update(func(st *State) Change {
		doc := &st.Document
		var next models.Selection
		for _, p := range doc.Paths {
			if selectable(doc, p.ID) {
				next.SelectedPaths = append(next.SelectedPaths, p.ID)
			}
		}
		for _, t := range doc.Texts {
			if selectable(doc, t.ID) {
				next.SelectedTexts = append(next.SelectedTexts, t.ID)
			}
		}
		for _, tp := range doc.TextPaths {
			if selectable(doc, tp.ID) {
				next.SelectedTextPaths = append(next.SelectedTextPaths, tp.ID)
			}
		}
		for _, img := range doc.Images {
			if selectable(doc, img.ID) {
				next.SelectedImages = append(next.SelectedImages, img.ID)
			}
		}
		return s.setSelection(st, next)
	})
}

// SelectInBox selects everything inside box, possibly of several kinds at
// once. With add the result is merged into the current selection.
func (s *Store) SelectInBox(box models.BBox, add bool) bool {
	if !box.IsFinite() {
		return false
	}
	return s.update(func(st *State) Change {
		doc := &st.Document
		skip := map[string]struct{}{}
		for _, p := range doc.Paths {
			if !selectable(doc, p.ID) {
				skip[p.ID] = struct{}{}
			}
		}
		for _, t := range doc.Texts {
			if !selectable(doc, t.ID) {
				skip[t.ID] = struct{}{}
			}
		}
		for _, img := range doc.Images {
			if !selectable(doc, img.ID) {
				skip[img.ID] = struct{}{}
			}
		}
		found := selection.InBox(st.Document, box, skip)
		next := found
		if add {
			next = st.Selection.Clone()
			for _, k := range selection.Kinds() {
				if ids := selection.IDs(found, k); len(ids) > 0 {
					next = selection.SelectMany(next, k, ids, true)
				}
			}
		}
		return s.setSelection(st, next)
	})
}

// setSelection installs next and refreshes the derived box.
func (s *Store) setSelection(st *State, next models.Selection) Change {
	next.SelectionBox = st.Selection.SelectionBox
	same := selectionEqual(st.Selection, next)
	st.Selection = next
	boxChanged := s.refreshSelectionBox(st)
	if same && !boxChanged {
		return 0
	}
	return ChangeSelection
}

func selectionEqual(a, b models.Selection) bool {
	for _, k := range selection.Kinds() {
		if !slices.Equal(selection.IDs(a, k), selection.IDs(b, k)) {
			return false
		}
	}
	return true
}

// SelectionBounds returns the union box of everything selected.
func (s *Store) SelectionBounds() (models.BBox, bool) {
	var box models.BBox
	var ok bool
	s.read(func(st *State) { box, ok = selection.Bounds(st.Document, st.Selection) })
	return box, ok
}

// ============================================================
// Delete selection
// ============================================================

// DeleteSelection removes every selected entity that is not locked against
// editing. Selected groups are removed together with their members.
func (s *Store) DeleteSelection() bool {
	return s.update(func(st *State) Change {
		doc := &st.Document
		sel := st.Selection.Clone()
		removed := map[string]struct{}{}
		merge := func(ids map[string]struct{}) {
			for id := range ids {
				removed[id] = struct{}{}
			}
		}

		for _, id := range sel.SelectedCommands {
			pi, si, ci, ok := locateCommand(doc, id)
			if !ok || !subPathEditable(doc, pi, si) {
				continue
			}
			sp := &doc.Paths[pi].SubPaths[si]
			if len(sp.Commands) == 1 {
				merge(removeSubPathAt(st, pi, si))
				continue
			}
			sp.Commands = ensureLeadingMove(slices.Delete(sp.Commands, ci, ci+1))
			removed[id] = struct{}{}
		}
		for _, id := range sel.SelectedSubPaths {
			if pi, si, ok := locateSubPath(doc, id); ok && subPathEditable(doc, pi, si) {
				merge(removeSubPathAt(st, pi, si))
			}
		}
		for _, id := range sel.SelectedPaths {
			if pi := pathIndex(doc, id); pi >= 0 && pathEditable(doc, pi) {
				merge(removePathAt(st, pi))
			}
		}
		for _, id := range sel.SelectedTexts {
			if ti := textIndex(doc, id); ti >= 0 && textEditable(doc, ti) {
				merge(removeTextAt(st, ti))
			}
		}
		for _, id := range sel.SelectedTextPaths {
			if i := textPathIndex(doc, id); i >= 0 && textPathEditable(doc, i) {
				merge(removeElement(st, models.GroupChild{ID: id, Type: models.KindTextPath}))
			}
		}
		for _, id := range sel.SelectedImages {
			if i := imageIndex(doc, id); i >= 0 && imageEditable(doc, i) {
				merge(removeElement(st, models.GroupChild{ID: id, Type: models.KindImage}))
			}
		}
		for _, id := range sel.SelectedGroups {
			if gi := groupIndex(doc, id); gi >= 0 && groupRemovable(doc, gi) {
				removeGroupTree(st, id, removed)
			}
		}
		for _, id := range sel.SelectedGradients {
			if i := gradientIndex(doc, id); i >= 0 {
				doc.Gradients = slices.Delete(doc.Gradients, i, i+1)
				removed[id] = struct{}{}
			}
		}
		for _, id := range sel.SelectedFilters {
			if i := filterIndex(doc, id); i >= 0 {
				doc.Filters = slices.Delete(doc.Filters, i, i+1)
				removed[id] = struct{}{}
			}
		}
		for _, id := range sel.SelectedAnimations {
			if i := animationIndex(doc, id); i >= 0 {
				doc.Animations = slices.Delete(doc.Animations, i, i+1)
				removed[id] = struct{}{}
			}
		}
		if len(removed) == 0 {
			return 0
		}
		ch := s.purge(st, removed)
		st.RenderVersion++
		return ChangeDocument | ch
	})
}
