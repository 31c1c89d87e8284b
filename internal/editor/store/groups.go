package store

import (
	"slices"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

// ============================================================
// Lock policy
// ============================================================

// hasGroupLock reports whether any group containing id (directly or
// transitively) uses one of the given lock levels or is fully locked.
func hasGroupLock(doc *models.Document, id string, levels ...models.LockLevel) bool {
	for _, gi := range ancestors(doc, id) {
		g := doc.Groups[gi]
		if g.Locked || slices.Contains(levels, g.LockLevel) {
			return true
		}
	}
	return false
}

func pathEditable(doc *models.Document, pi int) bool {
	p := doc.Paths[pi]
	return !p.Locked && !hasGroupLock(doc, p.ID, models.LockEditing, models.LockFull)
}

func subPathEditable(doc *models.Document, pi, si int) bool {
	return pathEditable(doc, pi) && !doc.Paths[pi].SubPaths[si].Locked
}

func textPathEditable(doc *models.Document, i int) bool {
	tp := doc.TextPaths[i]
	return !tp.Locked && !hasGroupLock(doc, tp.ID, models.LockEditing, models.LockFull)
}

func imageEditable(doc *models.Document, i int) bool {
	img := doc.Images[i]
	return !img.Locked && !hasGroupLock(doc, img.ID, models.LockEditing, models.LockFull)
}

// groupRemovable reports whether the group may be deleted or dissolved.
func groupRemovable(doc *models.Document, gi int) bool {
	g := doc.Groups[gi]
	return !g.Locked && g.LockLevel != models.LockFull && !hasGroupLock(doc, g.ID, models.LockFull)
}

// memberLocked reports whether c is locked on its own.
func memberLocked(doc *models.Document, c models.GroupChild) bool {
	switch c.Type {
	case models.KindPath:
		i := pathIndex(doc, c.ID)
		return i >= 0 && doc.Paths[i].Locked
	case models.KindText:
		i := textIndex(doc, c.ID)
		return i >= 0 && doc.Texts[i].Locked
	case models.KindTextPath:
		i := textPathIndex(doc, c.ID)
		return i >= 0 && doc.TextPaths[i].Locked
	case models.KindImage:
		i := imageIndex(doc, c.ID)
		return i >= 0 && doc.Images[i].Locked
	case models.KindGroup:
		i := groupIndex(doc, c.ID)
		return i >= 0 && (doc.Groups[i].Locked || doc.Groups[i].LockLevel == models.LockFull)
	}
	return false
}

func selectable(doc *models.Document, id string) bool {
	return !hasGroupLock(doc, id, models.LockSelection, models.LockFull)
}

// syncGroup returns the outermost movement-sync group containing id.
func syncGroup(doc *models.Document, id string) string {
	found := ""
	for _, gi := range ancestors(doc, id) {
		if doc.Groups[gi].LockLevel == models.LockMovementSync {
			found = doc.Groups[gi].ID
		}
	}
	return found
}

// ============================================================
// Movement
// ============================================================

// BeginMoveBatch starts one step of a multi-element drag. Within a batch a
// movement-sync group is translated at most once, however many of its
// members are moved.
func (s *Store) BeginMoveBatch() {
	s.mu.Lock()
	s.batch = make(map[string]struct{})
	s.mu.Unlock()
}

func (s *Store) EndMoveBatch() {
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
}

// moveElement applies direct, or routes the move through the element's
// movement-sync group. Callers hold the lock.
func (s *Store) moveElement(st *State, id string, delta models.Point, direct func()) Change {
	if !delta.IsFinite() {
		log.Warnf("[STORE] ignoring non-finite delta for %s", id)
		return 0
	}
	if hasGroupLock(&st.Document, id, models.LockFull) {
		return 0
	}
	if g := syncGroup(&st.Document, id); g != "" {
		return s.translateGroupOnce(st, g, delta)
	}
	direct()
	st.RenderVersion++
	return ChangeDocument
}

func (s *Store) translateGroupOnce(st *State, groupID string, delta models.Point) Change {
	if s.batch != nil {
		if _, done := s.batch[groupID]; done {
			return 0
		}
		s.batch[groupID] = struct{}{}
	}
	gi := groupIndex(&st.Document, groupID)
	if gi < 0 {
		return 0
	}
	translateGroup(st, gi, delta, map[string]bool{})
	st.RenderVersion++
	return ChangeDocument
}

func translateGroup(st *State, gi int, d models.Point, seen map[string]bool) {
	g := st.Document.Groups[gi]
	if seen[g.ID] {
		return
	}
	seen[g.ID] = true
	p := st.Precision
	for _, c := range g.Children {
		switch c.Type {
		case models.KindPath:
			if i := pathIndex(&st.Document, c.ID); i >= 0 {
				translatePath(&st.Document.Paths[i], d, p)
			}
		case models.KindText:
			if i := textIndex(&st.Document, c.ID); i >= 0 {
				t := &st.Document.Texts[i]
				t.X, t.Y = round(t.X+d.X, p), round(t.Y+d.Y, p)
			}
		case models.KindImage:
			if i := imageIndex(&st.Document, c.ID); i >= 0 {
				img := &st.Document.Images[i]
				img.X, img.Y = round(img.X+d.X, p), round(img.Y+d.Y, p)
			}
		case models.KindGroup:
			if i := groupIndex(&st.Document, c.ID); i >= 0 {
				translateGroup(st, i, d, seen)
			}
		}
	}
}

// MoveGroup translates every member of the group.
func (s *Store) MoveGroup(id string, delta models.Point) bool {
	if !delta.IsFinite() {
		log.Warnf("[STORE] ignoring non-finite delta for group %s", id)
		return false
	}
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, id)
		if gi < 0 {
			return 0
		}
		g := st.Document.Groups[gi]
		if g.Locked || g.LockLevel == models.LockFull || hasGroupLock(&st.Document, id, models.LockFull) {
			return 0
		}
		if outer := syncGroup(&st.Document, id); outer != "" {
			return s.translateGroupOnce(st, outer, delta)
		}
		if g.LockLevel == models.LockMovementSync {
			return s.translateGroupOnce(st, id, delta)
		}
		translateGroup(st, gi, delta, map[string]bool{})
		st.RenderVersion++
		return ChangeDocument
	})
}

// ============================================================
// Groups
// ============================================================

func elementExists(doc *models.Document, c models.GroupChild) bool {
	switch c.Type {
	case models.KindPath:
		return pathIndex(doc, c.ID) >= 0
	case models.KindText:
		return textIndex(doc, c.ID) >= 0
	case models.KindTextPath:
		return textPathIndex(doc, c.ID) >= 0
	case models.KindImage:
		return imageIndex(doc, c.ID) >= 0
	case models.KindGroup:
		return groupIndex(doc, c.ID) >= 0
	}
	return false
}

// detach removes childID from whatever group currently lists it.
func detach(doc *models.Document, childID string) {
	if gi := parentGroup(doc, childID); gi >= 0 {
		g := &doc.Groups[gi]
		g.Children = slices.DeleteFunc(g.Children, func(c models.GroupChild) bool { return c.ID == childID })
	}
}

// CreateGroup groups existing elements; unknown children are skipped and a
// child already in another group is moved. Returns "" when nothing valid
// remains.
func (s *Store) CreateGroup(name string, children []models.GroupChild) string {
	var id string
	s.update(func(st *State) Change {
		var valid []models.GroupChild
		for _, c := range children {
			if elementExists(&st.Document, c) && !slices.Contains(valid, c) {
				valid = append(valid, c)
			}
		}
		if len(valid) == 0 {
			return 0
		}
		for _, c := range valid {
			detach(&st.Document, c.ID)
		}
		id = s.newID()
		if name == "" {
			name = "Group " + id[:min(len(id), 8)]
		}
		st.Document.Groups = append(st.Document.Groups, models.Group{
			ID:        id,
			Name:      name,
			Children:  valid,
			LockLevel: models.LockNone,
			Visible:   true,
		})
		return ChangeDocument
	})
	return id
}

// GroupSelection groups the selected paths, texts, text paths, images and
// groups and selects the new group.
func (s *Store) GroupSelection(name string) string {
	sel := s.Selection()
	var children []models.GroupChild
	add := func(ids []string, kind models.ElementKind) {
		for _, id := range ids {
			children = append(children, models.GroupChild{ID: id, Type: kind})
		}
	}
	add(sel.SelectedPaths, models.KindPath)
	add(sel.SelectedTexts, models.KindText)
	add(sel.SelectedTextPaths, models.KindTextPath)
	add(sel.SelectedImages, models.KindImage)
	add(sel.SelectedGroups, models.KindGroup)

	id := s.CreateGroup(name, children)
	if id != "" {
		s.Select(selection.Group, id, false)
	}
	return id
}

// Ungroup dissolves the group; its children move to the enclosing group,
// or to the top level.
func (s *Store) Ungroup(id string) bool {
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, id)
		if gi < 0 || !groupRemovable(&st.Document, gi) {
			return 0
		}
		children := st.Document.Groups[gi].Children
		if pi := parentGroup(&st.Document, id); pi >= 0 {
			parent := &st.Document.Groups[pi]
			parent.Children = slices.DeleteFunc(parent.Children, func(c models.GroupChild) bool { return c.ID == id })
			parent.Children = append(parent.Children, children...)
		}
		gi = groupIndex(&st.Document, id)
		st.Document.Groups = slices.Delete(st.Document.Groups, gi, gi+1)
		return ChangeDocument | s.purge(st, idSet(id))
	})
}

// RemoveGroup removes the group. With deleteChildren every member is
// removed too (recursively); otherwise members are released like Ungroup.
// A locked or fully locked group is refused, and locked members survive
// at the top level.
func (s *Store) RemoveGroup(id string, deleteChildren bool) bool {
	if !deleteChildren {
		return s.Ungroup(id)
	}
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, id)
		if gi < 0 || !groupRemovable(&st.Document, gi) {
			return 0
		}
		removed := map[string]struct{}{}
		removeGroupTree(st, id, removed)
		ch := s.purge(st, removed)
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

func removeGroupTree(st *State, id string, removed map[string]struct{}) {
	gi := groupIndex(&st.Document, id)
	if gi < 0 {
		return
	}
	if _, done := removed[id]; done {
		return
	}
	removed[id] = struct{}{}
	children := slices.Clone(st.Document.Groups[gi].Children)
	st.Document.Groups = slices.Delete(st.Document.Groups, gi, gi+1)

	for _, c := range children {
		if memberLocked(&st.Document, c) {
			continue
		}
		switch c.Type {
		case models.KindGroup:
			removeGroupTree(st, c.ID, removed)
		default:
			for k := range removeElement(st, c) {
				removed[k] = struct{}{}
			}
		}
	}
}

// removeElement removes one non-group element and returns the ids that
// disappeared with it.
func removeElement(st *State, c models.GroupChild) map[string]struct{} {
	doc := &st.Document
	switch c.Type {
	case models.KindPath:
		if i := pathIndex(doc, c.ID); i >= 0 {
			return removePathAt(st, i)
		}
	case models.KindText:
		if i := textIndex(doc, c.ID); i >= 0 {
			return removeTextAt(st, i)
		}
	case models.KindTextPath:
		if i := textPathIndex(doc, c.ID); i >= 0 {
			doc.TextPaths = slices.Delete(doc.TextPaths, i, i+1)
			return idSet(c.ID)
		}
	case models.KindImage:
		if i := imageIndex(doc, c.ID); i >= 0 {
			doc.Images = slices.Delete(doc.Images, i, i+1)
			return idSet(c.ID)
		}
	}
	return nil
}

func (s *Store) SetGroupLockLevel(id string, level models.LockLevel) bool {
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, id)
		if gi < 0 || st.Document.Groups[gi].LockLevel == level {
			return 0
		}
		st.Document.Groups[gi].LockLevel = level
		ch := ChangeDocument
		if level == models.LockSelection || level == models.LockFull {
			// members can no longer be selected individually
			members := map[string]struct{}{}
			collectMembers(&st.Document, id, members)
			if sel, changed := selection.Prune(st.Selection, members); changed {
				st.Selection = sel
				ch |= ChangeSelection
			}
		}
		return ch
	})
}

func collectMembers(doc *models.Document, groupID string, out map[string]struct{}) {
	gi := groupIndex(doc, groupID)
	if gi < 0 {
		return
	}
	for _, c := range doc.Groups[gi].Children {
		if _, done := out[c.ID]; done {
			continue
		}
		out[c.ID] = struct{}{}
		if c.Type == models.KindGroup {
			collectMembers(doc, c.ID, out)
		}
	}
}

func (s *Store) SetGroupVisibility(id string, visible bool) bool {
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, id)
		if gi < 0 || st.Document.Groups[gi].Visible == visible {
			return 0
		}
		st.Document.Groups[gi].Visible = visible
		st.RenderVersion++
		return ChangeDocument
	})
}

// AddChildToGroup moves an existing element into the group. A group cannot
// contain itself or one of its ancestors.
func (s *Store) AddChildToGroup(groupID string, child models.GroupChild) bool {
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, groupID)
		if gi < 0 || st.Document.Groups[gi].Locked || !elementExists(&st.Document, child) {
			return 0
		}
		if child.Type == models.KindGroup {
			if child.ID == groupID {
				return 0
			}
			for _, ai := range ancestors(&st.Document, groupID) {
				if st.Document.Groups[ai].ID == child.ID {
					return 0
				}
			}
		}
		detach(&st.Document, child.ID)
		gi = groupIndex(&st.Document, groupID)
		st.Document.Groups[gi].Children = append(st.Document.Groups[gi].Children, child)
		return ChangeDocument
	})
}

func (s *Store) RemoveChildFromGroup(groupID, childID string) bool {
	return s.update(func(st *State) Change {
		gi := groupIndex(&st.Document, groupID)
		if gi < 0 || st.Document.Groups[gi].Locked {
			return 0
		}
		g := &st.Document.Groups[gi]
		before := len(g.Children)
		g.Children = slices.DeleteFunc(g.Children, func(c models.GroupChild) bool { return c.ID == childID })
		if len(g.Children) == before {
			return 0
		}
		return ChangeDocument
	})
}
