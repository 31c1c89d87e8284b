package tools

import (
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

const DefaultTextContent = "Text"

// TextCreationManager places a new text on click and hands it over to the
// text editor.
type TextCreationManager struct {
	base
	mu       sync.Mutex
	textType models.TextType
	style    *models.TextStyle
}

func NewTextCreationManager(s *store.Store, modes Modes) *TextCreationManager {
	return &TextCreationManager{
		base:     base{store: s, modes: modes, mode: toolmode.ModeText},
		textType: models.TextSingle,
	}
}

func (m *TextCreationManager) SetStyle(style *models.TextStyle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.style = style
}

func (m *TextCreationManager) ActivateExternally() {
	typ := models.TextType(m.modes.State().TextType)
	if typ != models.TextMultiline {
		typ = models.TextSingle
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
	m.textType = typ
}

func (m *TextCreationManager) DeactivateExternally() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

func (m *TextCreationManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	if !m.active || e.Button != input.ButtonPrimary {
		m.mu.Unlock()
		return false
	}
	typ, style := m.textType, m.style
	m.mu.Unlock()

	m.store.PushToHistory()
	var id string
	if typ == models.TextMultiline {
		id = m.store.AddMultilineText(e.Point.X, e.Point.Y, []string{DefaultTextContent}, style)
	} else {
		id = m.store.AddText(e.Point.X, e.Point.Y, DefaultTextContent, style)
	}
	m.store.Select(selection.Text, id, false)
	m.modes.SetMode(toolmode.ModeTextEdit, toolmode.Options{EditingTextID: id, TextType: string(typ)})
	return true
}

func (m *TextCreationManager) HandlePointerMove(input.PointerEvent) bool { return false }
func (m *TextCreationManager) HandlePointerUp(input.PointerEvent) bool   { return false }

func (m *TextCreationManager) HandleKey(e input.KeyEvent) bool {
	if !m.active || !isEscape(e) {
		return false
	}
	m.exit()
	return true
}
