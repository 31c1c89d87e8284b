package store

import (
	"slices"
	"strings"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

// ============================================================
// Texts
// ============================================================

func DefaultTextStyle() models.TextStyle {
	return models.TextStyle{
		FontFamily: "Arial, sans-serif",
		FontSize:   16,
		Fill:       models.Paint{Value: "#000000"},
	}
}

func (s *Store) AddText(x, y float64, content string, style *models.TextStyle) string {
	t := models.Text{Type: models.TextSingle, X: x, Y: y, Content: content, Style: DefaultTextStyle()}
	if style != nil {
		t.Style = style.Clone()
	}
	return s.insertText(t)
}

// AddMultilineText creates a text with one span per line (at least one).
func (s *Store) AddMultilineText(x, y float64, lines []string, style *models.TextStyle) string {
	t := models.Text{Type: models.TextMultiline, X: x, Y: y, Style: DefaultTextStyle()}
	if style != nil {
		t.Style = style.Clone()
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	for _, l := range lines {
		t.Spans = append(t.Spans, models.Span{Content: l})
	}
	return s.insertText(t)
}

func (s *Store) insertText(t models.Text) string {
	s.update(func(st *State) Change {
		t.ID = s.newID()
		t.X, t.Y = round(t.X, st.Precision), round(t.Y, st.Precision)
		for i := range t.Spans {
			t.Spans[i].ID = s.newID()
		}
		s.registerPaint(st, &t.Style.Fill)
		st.Document.Texts = append(st.Document.Texts, t)
		st.RenderVersion++
		return ChangeDocument
	})
	return t.ID
}

func textEditable(doc *models.Document, ti int) bool {
	t := doc.Texts[ti]
	return !t.Locked && !hasGroupLock(doc, t.ID, models.LockEditing, models.LockFull)
}

// TextEditable reports whether the text exists and may be edited.
func (s *Store) TextEditable(id string) bool {
	ok := false
	s.read(func(st *State) {
		if ti := textIndex(&st.Document, id); ti >= 0 {
			ok = textEditable(&st.Document, ti)
		}
	})
	return ok
}

func (s *Store) UpdateText(id string, u models.TextUpdate) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || !textEditable(&st.Document, ti) {
			return 0
		}
		t := &st.Document.Texts[ti]
		if u.X != nil {
			t.X = round(*u.X, st.Precision)
		}
		if u.Y != nil {
			t.Y = round(*u.Y, st.Precision)
		}
		if u.LineHeight != nil {
			t.LineHeight = *u.LineHeight
		}
		if u.Rotation != nil {
			t.Rotation = *u.Rotation
		}
		if u.Style != nil {
			t.Style = u.Style.Clone()
			s.registerPaint(st, &t.Style.Fill)
		}
		ch := ChangeDocument
		if u.Content != nil {
			ch |= s.setContent(st, ti, *u.Content)
		}
		st.RenderVersion++
		return ch
	})
}

// UpdateTextContent replaces the content. For multiline texts the content
// is split on newlines and reconciled against the spans.
func (s *Store) UpdateTextContent(id, content string) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || !textEditable(&st.Document, ti) {
			return 0
		}
		if strings.Join(st.Document.Texts[ti].Lines(), "\n") == content {
			return 0
		}
		ch := ChangeDocument | s.setContent(st, ti, content)
		st.RenderVersion++
		return ch
	})
}

// SetMultilineContent reconciles the spans of a multiline text against
// lines: existing spans are updated in place, missing ones are created and
// surplus ones deleted. At least one span always remains.
func (s *Store) SetMultilineContent(id string, lines []string) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || !textEditable(&st.Document, ti) || st.Document.Texts[ti].Type != models.TextMultiline {
			return 0
		}
		if slices.Equal(st.Document.Texts[ti].Lines(), normalizeLines(lines)) {
			return 0
		}
		ch := ChangeDocument | s.reconcileSpans(st, ti, lines)
		st.RenderVersion++
		return ch
	})
}

func normalizeLines(lines []string) []string {
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func (s *Store) setContent(st *State, ti int, content string) Change {
	t := &st.Document.Texts[ti]
	if t.Type != models.TextMultiline {
		t.Content = content
		return 0
	}
	return s.reconcileSpans(st, ti, strings.Split(content, "\n"))
}

func (s *Store) reconcileSpans(st *State, ti int, lines []string) Change {
	lines = normalizeLines(lines)
	t := &st.Document.Texts[ti]
	for i, line := range lines {
		if i < len(t.Spans) {
			t.Spans[i].Content = line
			continue
		}
		t.Spans = append(t.Spans, models.Span{ID: s.newID(), Content: line})
	}
	if len(t.Spans) > len(lines) {
		dropped := map[string]struct{}{}
		for _, sp := range t.Spans[len(lines):] {
			dropped[sp.ID] = struct{}{}
		}
		t.Spans = slices.Clone(t.Spans[:len(lines)])
		return s.purge(st, dropped)
	}
	return 0
}

// UpdateSpan changes one span's content and, when style is non-nil, its
// style override.
func (s *Store) UpdateSpan(textID, spanID, content string, style *models.TextStyle) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, textID)
		if ti < 0 || !textEditable(&st.Document, ti) {
			return 0
		}
		t := &st.Document.Texts[ti]
		for i := range t.Spans {
			if t.Spans[i].ID != spanID {
				continue
			}
			t.Spans[i].Content = content
			if style != nil {
				st2 := style.Clone()
				t.Spans[i].Style = &st2
			}
			st.RenderVersion++
			return ChangeDocument
		}
		return 0
	})
}

func (s *Store) RemoveText(id string) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || !textEditable(&st.Document, ti) {
			return 0
		}
		ch := s.purge(st, removeTextAt(st, ti))
		st.RenderVersion++
		return ChangeDocument | ch
	})
}

func removeTextAt(st *State, ti int) map[string]struct{} {
	t := st.Document.Texts[ti]
	removed := idSet(t.ID)
	for _, sp := range t.Spans {
		removed[sp.ID] = struct{}{}
	}
	st.Document.Texts = slices.Delete(st.Document.Texts, ti, ti+1)
	return removed
}

func (s *Store) MoveText(id string, delta models.Point) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || st.Document.Texts[ti].Locked {
			return 0
		}
		return s.moveElement(st, id, delta, func() {
			t := &st.Document.Texts[ti]
			t.X = round(t.X+delta.X, st.Precision)
			t.Y = round(t.Y+delta.Y, st.Precision)
		})
	})
}

func (s *Store) SetTextLocked(id string, locked bool) bool {
	return s.update(func(st *State) Change {
		ti := textIndex(&st.Document, id)
		if ti < 0 || st.Document.Texts[ti].Locked == locked {
			return 0
		}
		st.Document.Texts[ti].Locked = locked
		return ChangeDocument
	})
}

// ============================================================
// Text paths
// ============================================================

// AddTextPath binds text to an existing path; returns "" when the path is
// unknown.
func (s *Store) AddTextPath(pathRef, content string, style *models.TextStyle) string {
	var id string
	s.update(func(st *State) Change {
		if pathIndex(&st.Document, pathRef) < 0 {
			return 0
		}
		tp := models.TextPath{ID: s.newID(), PathRef: pathRef, Content: content, Style: DefaultTextStyle()}
		if style != nil {
			tp.Style = style.Clone()
		}
		st.Document.TextPaths = append(st.Document.TextPaths, tp)
		id = tp.ID
		st.RenderVersion++
		return ChangeDocument
	})
	return id
}

func (s *Store) UpdateTextPath(id string, content *string, startOffset *float64) bool {
	return s.update(func(st *State) Change {
		i := textPathIndex(&st.Document, id)
		if i < 0 || st.Document.TextPaths[i].Locked || hasGroupLock(&st.Document, id, models.LockEditing, models.LockFull) {
			return 0
		}
		tp := &st.Document.TextPaths[i]
		if content != nil {
			tp.Content = *content
		}
		if startOffset != nil {
			tp.StartOffset = *startOffset
		}
		st.RenderVersion++
		return ChangeDocument
	})
}

func (s *Store) RemoveTextPath(id string) bool {
	return s.update(func(st *State) Change {
		i := textPathIndex(&st.Document, id)
		if i < 0 || !textPathEditable(&st.Document, i) {
			return 0
		}
		st.Document.TextPaths = slices.Delete(st.Document.TextPaths, i, i+1)
		ch := s.purge(st, idSet(id))
		st.RenderVersion++
		return ChangeDocument | ch
	})
}
