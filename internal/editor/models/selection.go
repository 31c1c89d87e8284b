package models

// ============================================================
// Selection
// ============================================================

// Selection holds one id list per selectable kind. SelectionBox is derived
// from the selected commands and is never the source of truth.
type Selection struct {
	SelectedPaths         []string `json:"selectedPaths"`
	SelectedSubPaths      []string `json:"selectedSubPaths"`
	SelectedCommands      []string `json:"selectedCommands"`
	SelectedControlPoints []string `json:"selectedControlPoints"`
	SelectedTexts         []string `json:"selectedTexts"`
	SelectedTextSpans     []string `json:"selectedTextSpans"`
	SelectedTextPaths     []string `json:"selectedTextPaths"`
	SelectedGroups        []string `json:"selectedGroups"`
	SelectedImages        []string `json:"selectedImages"`
	SelectedGradients     []string `json:"selectedGradients"`
	SelectedFilters       []string `json:"selectedFilters"`
	SelectedAnimations    []string `json:"selectedAnimations"`
	SelectionBox          *BBox    `json:"selectionBox,omitempty"`
}

func (s Selection) Clone() Selection {
	out := Selection{
		SelectedPaths:         cloneStrings(s.SelectedPaths),
		SelectedSubPaths:      cloneStrings(s.SelectedSubPaths),
		SelectedCommands:      cloneStrings(s.SelectedCommands),
		SelectedControlPoints: cloneStrings(s.SelectedControlPoints),
		SelectedTexts:         cloneStrings(s.SelectedTexts),
		SelectedTextSpans:     cloneStrings(s.SelectedTextSpans),
		SelectedTextPaths:     cloneStrings(s.SelectedTextPaths),
		SelectedGroups:        cloneStrings(s.SelectedGroups),
		SelectedImages:        cloneStrings(s.SelectedImages),
		SelectedGradients:     cloneStrings(s.SelectedGradients),
		SelectedFilters:       cloneStrings(s.SelectedFilters),
		SelectedAnimations:    cloneStrings(s.SelectedAnimations),
	}
	if s.SelectionBox != nil {
		box := *s.SelectionBox
		out.SelectionBox = &box
	}
	return out
}
