package tools

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/common/debounce"
	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

// DefaultTextDebounce is how long content edits are coalesced before they
// reach the store.
const DefaultTextDebounce = 50 * time.Millisecond

type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EditState is the observable state of the text editor.
type EditState struct {
	IsEditing       bool            `json:"isEditing"`
	EditingTextID   string          `json:"editingTextId,omitempty"`
	EditingType     models.TextType `json:"editingType,omitempty"`
	CursorPosition  int             `json:"cursorPosition"`
	SelectionRange  *Range          `json:"selectionRange,omitempty"`
	OriginalContent []string        `json:"originalContent,omitempty"`
}

type EditListener func(EditState)

// TextEditManager edits the content of one text at a time. Content updates
// are debounced per text; cancelling restores the content the session
// started with.
type TextEditManager struct {
	base
	mu       sync.Mutex
	state    EditState
	pushed   bool
	debounce *debounce.Debouncer

	lmu       sync.Mutex
	listeners []*editListener
}

type editListener struct{ fn EditListener }

type TextEditOption func(*TextEditManager)

func WithDebouncer(d *debounce.Debouncer) TextEditOption {
	return func(m *TextEditManager) { m.debounce = d }
}

func NewTextEditManager(s *store.Store, modes Modes, opts ...TextEditOption) *TextEditManager {
	m := &TextEditManager{base: base{store: s, modes: modes, mode: toolmode.ModeTextEdit}}
	for _, opt := range opts {
		opt(m)
	}
	if m.debounce == nil {
		m.debounce = debounce.New(DefaultTextDebounce)
	}
	return m
}

func (m *TextEditManager) State() EditState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEditState(m.state)
}

func cloneEditState(s EditState) EditState {
	s.OriginalContent = append([]string(nil), s.OriginalContent...)
	if s.SelectionRange != nil {
		r := *s.SelectionRange
		s.SelectionRange = &r
	}
	return s
}

// ActivateExternally starts editing the text named by the coordinator.
func (m *TextEditManager) ActivateExternally() {
	m.mu.Lock()
	m.active = true
	current := m.state.EditingTextID
	m.mu.Unlock()

	id := m.modes.State().EditingTextID
	if id != "" && id != current {
		m.StartTextEdit(id)
	}
}

// DeactivateExternally commits whatever is pending and ends the session.
func (m *TextEditManager) DeactivateExternally() {
	m.StopTextEdit(true)
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// StartTextEdit opens an edit session. It refuses missing or locked texts.
// A session already open on another text is dropped without saving.
func (m *TextEditManager) StartTextEdit(id string) bool {
	t, ok := m.store.FindText(id)
	if !ok || !m.store.TextEditable(id) {
		log.Debugf("[TEXTEDIT] refusing to edit %s", id)
		return false
	}

	m.mu.Lock()
	if m.state.IsEditing {
		prev := m.state.EditingTextID
		m.debounce.Cancel(prev)
		log.Debugf("[TEXTEDIT] discarding session on %s", prev)
	}
	lines := t.Lines()
	m.state = EditState{
		IsEditing:       true,
		EditingTextID:   id,
		EditingType:     t.Type,
		CursorPosition:  len([]rune(strings.Join(lines, "\n"))),
		OriginalContent: lines,
	}
	m.pushed = false
	st := cloneEditState(m.state)
	m.mu.Unlock()

	m.notify(st)
	return true
}

// UpdateContent schedules content for the text being edited. Only the last
// call within the debounce window reaches the store.
func (m *TextEditManager) UpdateContent(content string) bool {
	m.mu.Lock()
	if !m.state.IsEditing {
		m.mu.Unlock()
		return false
	}
	id := m.state.EditingTextID
	m.mu.Unlock()

	m.debounce.Call(id, func() { m.commit(id, content) })
	return true
}

// commit writes content; the first write of a session records history.
func (m *TextEditManager) commit(id, content string) {
	m.mu.Lock()
	if !m.state.IsEditing || m.state.EditingTextID != id {
		m.mu.Unlock()
		return
	}
	push := !m.pushed
	m.pushed = true
	typ := m.state.EditingType
	m.mu.Unlock()

	if push {
		m.store.PushToHistory()
	}
	if typ == models.TextMultiline {
		m.store.SetMultilineContent(id, strings.Split(content, "\n"))
		return
	}
	m.store.UpdateTextContent(id, content)
}

// SetCursor records the caret and an optional selection range.
func (m *TextEditManager) SetCursor(pos int, sel *Range) {
	m.mu.Lock()
	if !m.state.IsEditing {
		m.mu.Unlock()
		return
	}
	m.state.CursorPosition = pos
	m.state.SelectionRange = nil
	if sel != nil {
		r := *sel
		m.state.SelectionRange = &r
	}
	st := cloneEditState(m.state)
	m.mu.Unlock()
	m.notify(st)
}

// StopTextEdit ends the session, flushing the pending edit when save is
// set and dropping it otherwise.
func (m *TextEditManager) StopTextEdit(save bool) bool {
	m.mu.Lock()
	if !m.state.IsEditing {
		m.mu.Unlock()
		return false
	}
	id := m.state.EditingTextID
	m.mu.Unlock()

	if save {
		m.debounce.Flush(id)
	} else {
		m.debounce.Cancel(id)
	}

	m.mu.Lock()
	m.state = EditState{}
	m.pushed = false
	m.mu.Unlock()
	m.notify(EditState{})
	return true
}

// CancelTextEdit drops pending edits and restores the original content.
func (m *TextEditManager) CancelTextEdit() bool {
	m.mu.Lock()
	if !m.state.IsEditing {
		m.mu.Unlock()
		return false
	}
	id, typ := m.state.EditingTextID, m.state.EditingType
	original := append([]string(nil), m.state.OriginalContent...)
	m.mu.Unlock()

	m.debounce.Cancel(id)
	if typ == models.TextMultiline {
		m.store.SetMultilineContent(id, original)
	} else {
		m.store.UpdateTextContent(id, strings.Join(original, "\n"))
	}

	m.mu.Lock()
	m.state = EditState{}
	m.pushed = false
	m.mu.Unlock()
	m.notify(EditState{})
	return true
}

// HandleKey: Escape cancels, Enter on a single-line text commits. Both
// give control back to the select tool.
func (m *TextEditManager) HandleKey(e input.KeyEvent) bool {
	m.mu.Lock()
	editing, typ := m.state.IsEditing, m.state.EditingType
	m.mu.Unlock()
	if !editing {
		return false
	}
	switch {
	case isEscape(e):
		m.CancelTextEdit()
	case isEnter(e) && typ != models.TextMultiline && !e.Shift:
		m.StopTextEdit(true)
	default:
		return false
	}
	m.release()
	return true
}

// HandlePointerDown ends the session when the click lands outside the
// edited text; the click itself is left to lower handlers.
func (m *TextEditManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	editing, id := m.state.IsEditing, m.state.EditingTextID
	m.mu.Unlock()
	if !editing {
		return false
	}
	if e.Target.Kind == input.TargetText && e.Target.ID == id {
		return true
	}
	m.StopTextEdit(true)
	m.release()
	return false
}

func (m *TextEditManager) HandlePointerMove(input.PointerEvent) bool { return false }
func (m *TextEditManager) HandlePointerUp(input.PointerEvent) bool   { return false }

func (m *TextEditManager) release() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
	m.modes.NotifyModeDeactivated(toolmode.ModeTextEdit)
}

// ============================================================
// Listeners
// ============================================================

func (m *TextEditManager) Subscribe(fn EditListener) func() {
	e := &editListener{fn: fn}
	m.lmu.Lock()
	m.listeners = append(m.listeners, e)
	m.lmu.Unlock()
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		for i, x := range m.listeners {
			if x == e {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *TextEditManager) notify(st EditState) {
	m.lmu.Lock()
	ls := append([]*editListener(nil), m.listeners...)
	m.lmu.Unlock()
	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("[TEXTEDIT] listener panic: %v", r)
				}
			}()
			l.fn(cloneEditState(st))
		}()
	}
}
