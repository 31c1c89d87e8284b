package selection

import "github.com/regalagram/sspe-sub013/internal/editor/models"

// ============================================================
// Bounding boxes
// ============================================================

// CommandsBox returns the box around the anchors of the given commands.
func CommandsBox(doc models.Document, ids []string) (models.BBox, bool) {
	if len(ids) == 0 {
		return models.BBox{}, false
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var pts []models.Point
	for _, p := range doc.Paths {
		for _, sp := range p.SubPaths {
			for _, c := range sp.Commands {
				if _, ok := want[c.ID]; ok && c.Command != models.ClosePath {
					pts = append(pts, c.Point())
				}
			}
		}
	}
	return models.PointsBounds(pts)
}

// Bounds returns the union of the boxes of everything selected.
func Bounds(doc models.Document, sel models.Selection) (models.BBox, bool) {
	var box models.BBox
	found := false
	add := func(b models.BBox) {
		if !found {
			box, found = b, true
			return
		}
		box = box.Union(b)
	}

	for _, p := range doc.Paths {
		if Contains(sel, Path, p.ID) {
			if b, ok := models.PathBounds(p); ok {
				add(b)
			}
			continue
		}
		for _, sp := range p.SubPaths {
			if Contains(sel, SubPath, sp.ID) {
				if b, ok := models.SubPathBounds(sp); ok {
					add(b)
				}
			}
		}
	}
	if b, ok := CommandsBox(doc, sel.SelectedCommands); ok {
		add(b)
	}
	for _, t := range doc.Texts {
		if Contains(sel, Text, t.ID) {
			add(models.TextBounds(t))
		}
	}
	for _, img := range doc.Images {
		if Contains(sel, Image, img.ID) {
			add(models.ImageBounds(img))
		}
	}
	return box, found
}

// InBox returns a mixed-kind selection of everything lying fully inside
// box: whole paths, texts and images, plus commands of partially covered
// paths. Elements listed in skip (for example members of selection-locked
// groups) are left out.
func InBox(doc models.Document, box models.BBox, skip map[string]struct{}) models.Selection {
	var out models.Selection
	skipped := func(id string) bool {
		_, ok := skip[id]
		return ok
	}

	for _, p := range doc.Paths {
		if skipped(p.ID) {
			continue
		}
		if b, ok := models.PathBounds(p); ok && box.Contains(b) {
			out.SelectedPaths = append(out.SelectedPaths, p.ID)
			continue
		}
		for _, sp := range p.SubPaths {
			for _, c := range sp.Commands {
				if c.Command != models.ClosePath && box.ContainsPoint(c.Point()) {
					out.SelectedCommands = append(out.SelectedCommands, c.ID)
				}
			}
		}
	}
	for _, t := range doc.Texts {
		if !skipped(t.ID) && box.Contains(models.TextBounds(t)) {
			out.SelectedTexts = append(out.SelectedTexts, t.ID)
		}
	}
	for _, img := range doc.Images {
		if !skipped(img.ID) && box.Contains(models.ImageBounds(img)) {
			out.SelectedImages = append(out.SelectedImages, img.ID)
		}
	}
	return out
}
