// Package toolmode arbitrates which interactive tool owns pointer input.
// Exactly one mode is active; switching runs the previous tool's
// deactivation hook to completion before the next tool is activated.
package toolmode

import (
	"maps"
	"sync"

	"github.com/gofiber/fiber/v3/log"
)

type Mode string

const (
	ModeSelect      Mode = "select"
	ModePencil      Mode = "pencil"
	ModeCurves      Mode = "curves"
	ModeShapes      Mode = "shapes"
	ModeText        Mode = "text"
	ModeTextEdit    Mode = "text-edit"
	ModeCreation    Mode = "creation"
	ModeSubPathEdit Mode = "subpath-edit"
)

func Modes() []Mode {
	return []Mode{ModeSelect, ModePencil, ModeCurves, ModeShapes, ModeText, ModeTextEdit, ModeCreation, ModeSubPathEdit}
}

func (m Mode) Valid() bool {
	for _, k := range Modes() {
		if k == m {
			return true
		}
	}
	return false
}

// clearsSelection lists the modes whose activation deselects everything.
var clearsSelection = map[Mode]bool{
	ModePencil:   true,
	ModeCurves:   true,
	ModeShapes:   true,
	ModeText:     true,
	ModeCreation: true,
}

// ============================================================
// State
// ============================================================

// Options is the tool-specific payload of a mode.
type Options struct {
	CreateSubMode string            `json:"createSubMode,omitempty"`
	ShapeID       string            `json:"shapeId,omitempty"`
	TextType      string            `json:"textType,omitempty"`
	EditingTextID string            `json:"editingTextId,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func (o Options) sameConfig(other Options) bool {
	return o.CreateSubMode == other.CreateSubMode &&
		o.ShapeID == other.ShapeID &&
		o.TextType == other.TextType &&
		o.EditingTextID == other.EditingTextID
}

type State struct {
	ActiveMode Mode `json:"activeMode"`
	Options
}

func (s State) clone() State {
	s.Metadata = maps.Clone(s.Metadata)
	return s
}

// ============================================================
// Contracts
// ============================================================

// Activatable is implemented by every tool manager. The hooks are called
// by the coordinator only.
type Activatable interface {
	ActivateExternally()
	DeactivateExternally()
}

// Host is the editor state the coordinator acts on: selection clearing
// when a drawing tool starts, and the store-level mode used as fallback.
type Host interface {
	ClearSelection()
	SetMode(mode string)
}

type Listener func(State)

// ============================================================
// Coordinator
// ============================================================

type Coordinator struct {
	mu            sync.Mutex
	state         State
	host          Host
	managers      map[Mode]Activatable
	transitioning bool

	lmu       sync.Mutex
	listeners []*listenerEntry
}

type listenerEntry struct{ fn Listener }

func New(host Host) *Coordinator {
	return &Coordinator{
		state:    State{ActiveMode: ModeSelect},
		host:     host,
		managers: make(map[Mode]Activatable),
	}
}

func (c *Coordinator) SetManager(mode Mode, m Activatable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m == nil {
		delete(c.managers, mode)
		return
	}
	c.managers[mode] = m
}

func (c *Coordinator) SetPencilManager(m Activatable)   { c.SetManager(ModePencil, m) }
func (c *Coordinator) SetCurvesManager(m Activatable)   { c.SetManager(ModeCurves, m) }
func (c *Coordinator) SetShapeManager(m Activatable)    { c.SetManager(ModeShapes, m) }
func (c *Coordinator) SetTextManager(m Activatable)     { c.SetManager(ModeText, m) }
func (c *Coordinator) SetTextEditManager(m Activatable) { c.SetManager(ModeTextEdit, m) }
func (c *Coordinator) SetCreationManager(m Activatable) { c.SetManager(ModeCreation, m) }

// Manager returns the manager registered for mode, if any.
func (c *Coordinator) Manager(mode Mode) (Activatable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.managers[mode]
	return m, ok
}

// ActiveManager returns the manager owning the active mode, if any.
func (c *Coordinator) ActiveManager() (Activatable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.managers[c.state.ActiveMode]
	return m, ok
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Coordinator) ActiveMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActiveMode
}

func (c *Coordinator) IsActive(mode Mode) bool { return c.ActiveMode() == mode }

// SetMode switches to next. It is a no-op when next is already active with
// the same tool configuration, and while another transition is running.
// It reports whether a transition happened.
func (c *Coordinator) SetMode(next Mode, opts Options) bool {
	if !next.Valid() {
		log.Warnf("[TOOLMODE] unknown mode %q", next)
		return false
	}
	c.mu.Lock()
	if c.transitioning {
		c.mu.Unlock()
		log.Warnf("[TOOLMODE] ignoring switch to %s during a transition", next)
		return false
	}
	if c.state.ActiveMode == next && c.state.sameConfig(opts) {
		c.mu.Unlock()
		return false
	}
	prev := c.state.ActiveMode
	prevManager, hasPrev := c.managers[prev]
	c.transitioning = true
	c.mu.Unlock()

	c.deactivate(prev, prevManager, hasPrev)
	c.activate(next, opts)
	return true
}

// NotifyModeDeactivated lets a manager give up control on its own, for
// example on Escape. It is honored only while mode is still active; the
// manager has already cleaned up, so its deactivation hook is not called.
func (c *Coordinator) NotifyModeDeactivated(mode Mode) bool {
	c.mu.Lock()
	if c.transitioning || c.state.ActiveMode != mode || mode == ModeSelect {
		c.mu.Unlock()
		return false
	}
	c.transitioning = true
	c.mu.Unlock()

	log.Debugf("[TOOLMODE] %s released control", mode)
	c.activate(ModeSelect, Options{})
	return true
}

func (c *Coordinator) deactivate(mode Mode, m Activatable, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[TOOLMODE] deactivating %s panicked: %v", mode, r)
		}
	}()
	if ok {
		m.DeactivateExternally()
		return
	}
	if c.host != nil && mode != ModeSelect {
		c.host.SetMode(string(ModeSelect))
	}
}

func (c *Coordinator) activate(next Mode, opts Options) {
	c.mu.Lock()
	c.state = State{ActiveMode: next}
	c.state.Options = Options{
		CreateSubMode: opts.CreateSubMode,
		ShapeID:       opts.ShapeID,
		TextType:      opts.TextType,
		EditingTextID: opts.EditingTextID,
		Metadata:      maps.Clone(opts.Metadata),
	}
	m, ok := c.managers[next]
	c.mu.Unlock()

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("[TOOLMODE] activating %s panicked: %v", next, r)
			}
		}()
		if c.host != nil {
			c.host.SetMode(string(next))
			if clearsSelection[next] {
				c.host.ClearSelection()
			}
		}
		if ok {
			m.ActivateExternally()
		}
	}()

	c.mu.Lock()
	c.transitioning = false
	st := c.state.clone()
	c.mu.Unlock()

	log.Debugf("[TOOLMODE] active mode: %s", next)
	c.notify(st)
}

// ============================================================
// Listeners
// ============================================================

// Subscribe registers fn; listeners run synchronously in registration
// order after every transition.
func (c *Coordinator) Subscribe(fn Listener) func() {
	e := &listenerEntry{fn: fn}
	c.lmu.Lock()
	c.listeners = append(c.listeners, e)
	c.lmu.Unlock()
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		for i, x := range c.listeners {
			if x == e {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Coordinator) notify(st State) {
	c.lmu.Lock()
	ls := append([]*listenerEntry(nil), c.listeners...)
	c.lmu.Unlock()
	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("[TOOLMODE] listener panic: %v", r)
				}
			}()
			l.fn(st.clone())
		}()
	}
}
