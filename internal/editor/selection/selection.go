// Package selection implements the pure selection rules shared by the
// store and the pointer layer: exclusive-by-kind selection, pruning of
// deleted ids and box queries over a document.
package selection

import (
	"slices"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

type Kind string

const (
	Path         Kind = "path"
	SubPath      Kind = "subpath"
	Command      Kind = "command"
	ControlPoint Kind = "controlPoint"
	Text         Kind = "text"
	TextSpan     Kind = "textSpan"
	TextPath     Kind = "textPath"
	Group        Kind = "group"
	Image        Kind = "image"
	Gradient     Kind = "gradient"
	Filter       Kind = "filter"
	Animation    Kind = "animation"
)

// Kinds lists every selectable kind in a stable order.
func Kinds() []Kind {
	return []Kind{Path, SubPath, Command, ControlPoint, Text, TextSpan, TextPath, Group, Image, Gradient, Filter, Animation}
}

func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

func list(sel *models.Selection, k Kind) *[]string {
	switch k {
	case Path:
		return &sel.SelectedPaths
	case SubPath:
		return &sel.SelectedSubPaths
	case Command:
		return &sel.SelectedCommands
	case ControlPoint:
		return &sel.SelectedControlPoints
	case Text:
		return &sel.SelectedTexts
	case TextSpan:
		return &sel.SelectedTextSpans
	case TextPath:
		return &sel.SelectedTextPaths
	case Group:
		return &sel.SelectedGroups
	case Image:
		return &sel.SelectedImages
	case Gradient:
		return &sel.SelectedGradients
	case Filter:
		return &sel.SelectedFilters
	case Animation:
		return &sel.SelectedAnimations
	}
	return nil
}

// IDs returns the selected ids of kind k.
func IDs(sel models.Selection, k Kind) []string {
	if l := list(&sel, k); l != nil {
		return *l
	}
	return nil
}

func Contains(sel models.Selection, k Kind, id string) bool {
	return slices.Contains(IDs(sel, k), id)
}

func IsEmpty(sel models.Selection) bool {
	for _, k := range Kinds() {
		if len(IDs(sel, k)) > 0 {
			return false
		}
	}
	return true
}

// Count returns the number of selected ids across all kinds.
func Count(sel models.Selection) int {
	n := 0
	for _, k := range Kinds() {
		n += len(IDs(sel, k))
	}
	return n
}

func Clear() models.Selection {
	return models.Selection{}
}

// Select selects id of kind k. Without add every other kind is cleared and
// the kind's list is replaced; with add the id is appended once.
func Select(sel models.Selection, k Kind, id string, add bool) models.Selection {
	return SelectMany(sel, k, []string{id}, add)
}

func SelectMany(sel models.Selection, k Kind, ids []string, add bool) models.Selection {
	var out models.Selection
	if add {
		out = sel.Clone()
	}
	l := list(&out, k)
	if l == nil {
		return sel
	}
	for _, id := range ids {
		if !slices.Contains(*l, id) {
			*l = append(*l, id)
		}
	}
	return out
}

// Deselect removes id from kind k only.
func Deselect(sel models.Selection, k Kind, id string) models.Selection {
	out := sel.Clone()
	if l := list(&out, k); l != nil {
		*l = slices.DeleteFunc(*l, func(s string) bool { return s == id })
	}
	return out
}

// Toggle adds id when absent and removes it when present, keeping other kinds.
func Toggle(sel models.Selection, k Kind, id string) models.Selection {
	if Contains(sel, k, id) {
		return Deselect(sel, k, id)
	}
	return Select(sel, k, id, true)
}

// Prune drops every id in ids from every kind. It reports whether anything
// was removed.
func Prune(sel models.Selection, ids map[string]struct{}) (models.Selection, bool) {
	if len(ids) == 0 {
		return sel, false
	}
	out := sel.Clone()
	changed := false
	for _, k := range Kinds() {
		l := list(&out, k)
		before := len(*l)
		*l = slices.DeleteFunc(*l, func(s string) bool {
			_, drop := ids[s]
			return drop
		})
		if len(*l) != before {
			changed = true
		}
	}
	return out, changed
}
