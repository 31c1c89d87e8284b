package store

import (
	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// ============================================================
// Index lookups (callers hold the lock)
// ============================================================

func pathIndex(doc *models.Document, id string) int {
	for i := range doc.Paths {
		if doc.Paths[i].ID == id {
			return i
		}
	}
	return -1
}

func locateSubPath(doc *models.Document, id string) (int, int, bool) {
	for pi := range doc.Paths {
		for si := range doc.Paths[pi].SubPaths {
			if doc.Paths[pi].SubPaths[si].ID == id {
				return pi, si, true
			}
		}
	}
	return -1, -1, false
}

func locateCommand(doc *models.Document, id string) (int, int, int, bool) {
	for pi := range doc.Paths {
		for si := range doc.Paths[pi].SubPaths {
			cmds := doc.Paths[pi].SubPaths[si].Commands
			for ci := range cmds {
				if cmds[ci].ID == id {
					return pi, si, ci, true
				}
			}
		}
	}
	return -1, -1, -1, false
}

func textIndex(doc *models.Document, id string) int {
	for i := range doc.Texts {
		if doc.Texts[i].ID == id {
			return i
		}
	}
	return -1
}

func textPathIndex(doc *models.Document, id string) int {
	for i := range doc.TextPaths {
		if doc.TextPaths[i].ID == id {
			return i
		}
	}
	return -1
}

func groupIndex(doc *models.Document, id string) int {
	for i := range doc.Groups {
		if doc.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

func imageIndex(doc *models.Document, id string) int {
	for i := range doc.Images {
		if doc.Images[i].ID == id {
			return i
		}
	}
	return -1
}

func gradientIndex(doc *models.Document, id string) int {
	for i := range doc.Gradients {
		if doc.Gradients[i].ID == id {
			return i
		}
	}
	return -1
}

func filterIndex(doc *models.Document, id string) int {
	for i := range doc.Filters {
		if doc.Filters[i].ID == id {
			return i
		}
	}
	return -1
}

func animationIndex(doc *models.Document, id string) int {
	for i := range doc.Animations {
		if doc.Animations[i].ID == id {
			return i
		}
	}
	return -1
}

// parentGroup returns the index of the group listing childID, or -1.
func parentGroup(doc *models.Document, childID string) int {
	for gi := range doc.Groups {
		for _, c := range doc.Groups[gi].Children {
			if c.ID == childID {
				return gi
			}
		}
	}
	return -1
}

// ancestors returns the indices of the groups containing id, innermost first.
func ancestors(doc *models.Document, id string) []int {
	var out []int
	seen := map[string]bool{id: true}
	for cur := id; ; {
		gi := parentGroup(doc, cur)
		if gi < 0 || seen[doc.Groups[gi].ID] {
			return out
		}
		out = append(out, gi)
		cur = doc.Groups[gi].ID
		seen[cur] = true
	}
}

// ============================================================
// Public finders
// ============================================================

func (s *Store) FindPath(id string) (models.Path, bool) {
	var out models.Path
	var ok bool
	s.read(func(st *State) {
		if i := pathIndex(&st.Document, id); i >= 0 {
			out, ok = st.Document.Paths[i].Clone(), true
		}
	})
	return out, ok
}

func (s *Store) FindSubPath(id string) (models.SubPath, bool) {
	var out models.SubPath
	var ok bool
	s.read(func(st *State) {
		if pi, si, found := locateSubPath(&st.Document, id); found {
			out, ok = st.Document.Paths[pi].SubPaths[si].Clone(), true
		}
	})
	return out, ok
}

func (s *Store) FindCommand(id string) (models.Command, bool) {
	var out models.Command
	var ok bool
	s.read(func(st *State) {
		if pi, si, ci, found := locateCommand(&st.Document, id); found {
			out, ok = st.Document.Paths[pi].SubPaths[si].Commands[ci], true
		}
	})
	return out, ok
}

// SubPathOf returns the subpath containing commandID.
func (s *Store) SubPathOf(commandID string) (models.SubPath, bool) {
	var out models.SubPath
	var ok bool
	s.read(func(st *State) {
		if pi, si, _, found := locateCommand(&st.Document, commandID); found {
			out, ok = st.Document.Paths[pi].SubPaths[si].Clone(), true
		}
	})
	return out, ok
}

// PathOfSubPath returns the id of the path owning subPathID.
func (s *Store) PathOfSubPath(subPathID string) (string, bool) {
	var out string
	var ok bool
	s.read(func(st *State) {
		if pi, _, found := locateSubPath(&st.Document, subPathID); found {
			out, ok = st.Document.Paths[pi].ID, true
		}
	})
	return out, ok
}

func (s *Store) FindText(id string) (models.Text, bool) {
	var out models.Text
	var ok bool
	s.read(func(st *State) {
		if i := textIndex(&st.Document, id); i >= 0 {
			out, ok = st.Document.Texts[i].Clone(), true
		}
	})
	return out, ok
}

func (s *Store) FindGroup(id string) (models.Group, bool) {
	var out models.Group
	var ok bool
	s.read(func(st *State) {
		if i := groupIndex(&st.Document, id); i >= 0 {
			out, ok = st.Document.Groups[i].Clone(), true
		}
	})
	return out, ok
}
