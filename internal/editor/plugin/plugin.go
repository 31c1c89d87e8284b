// Package plugin keeps the registered editor plugins and dispatches their
// shortcuts and pointer handlers.
package plugin

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
)

var (
	ErrInvalidPlugin   = errors.New("plugin id is required")
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

type Modifier string

const (
	Ctrl  Modifier = "ctrl"
	Shift Modifier = "shift"
	Alt   Modifier = "alt"
	Meta  Modifier = "meta"
)

// UIComponent is an opaque toolbar or panel slot declared by a plugin.
type UIComponent struct {
	ID       string `json:"id"`
	Position string `json:"position,omitempty"`
	Order    int    `json:"order,omitempty"`
}

type Shortcut struct {
	Key         string     `json:"key"`
	Modifiers   []Modifier `json:"modifiers,omitempty"`
	Description string     `json:"description,omitempty"`
	Action      func()     `json:"-"`
}

// Matches reports whether e is exactly this key with exactly these
// modifiers held.
func (s Shortcut) Matches(e input.KeyEvent) bool {
	if !strings.EqualFold(s.Key, e.Key) {
		return false
	}
	has := func(m Modifier) bool { return slices.Contains(s.Modifiers, m) }
	return has(Ctrl) == e.Ctrl && has(Shift) == e.Shift && has(Alt) == e.Alt && has(Meta) == e.Meta
}

// PointerHandlers report whether they consumed the event.
type PointerHandlers struct {
	OnPointerDown func(input.PointerEvent) bool
	OnPointerMove func(input.PointerEvent) bool
	OnPointerUp   func(input.PointerEvent) bool
}

type FloatingAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action func() `json:"-"`
}

type Plugin struct {
	ID              string           `json:"id"`
	UI              []UIComponent    `json:"ui,omitempty"`
	Shortcuts       []Shortcut       `json:"shortcuts,omitempty"`
	PointerHandlers *PointerHandlers `json:"-"`
	FloatingActions []FloatingAction `json:"floatingActions,omitempty"`
}

// Registry holds plugins in registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(p Plugin) error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidPlugin
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.plugins {
		if x.ID == p.ID {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.ID)
		}
	}
	r.plugins = append(r.plugins, p)
	return nil
}

func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.plugins {
		if x.ID == id {
			r.plugins = slices.Delete(r.plugins, i, i+1)
			return true
		}
	}
	return false
}

func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.plugins)
}

// PointerHandlers returns the handlers of every plugin that declares them,
// in registration order.
func (r *Registry) PointerHandlers() []PointerHandlers {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PointerHandlers
	for _, p := range r.plugins {
		if p.PointerHandlers != nil {
			out = append(out, *p.PointerHandlers)
		}
	}
	return out
}

// ============================================================
// Dispatch
// ============================================================

func (r *Registry) PointerDown(e input.PointerEvent) bool {
	return r.dispatch("down", e, func(h PointerHandlers) func(input.PointerEvent) bool { return h.OnPointerDown })
}

func (r *Registry) PointerMove(e input.PointerEvent) bool {
	return r.dispatch("move", e, func(h PointerHandlers) func(input.PointerEvent) bool { return h.OnPointerMove })
}

func (r *Registry) PointerUp(e input.PointerEvent) bool {
	return r.dispatch("up", e, func(h PointerHandlers) func(input.PointerEvent) bool { return h.OnPointerUp })
}

// dispatch stops at the first handler that consumes the event. A panicking
// handler counts as not consuming it.
func (r *Registry) dispatch(phase string, e input.PointerEvent, pick func(PointerHandlers) func(input.PointerEvent) bool) bool {
	for _, h := range r.PointerHandlers() {
		fn := pick(h)
		if fn != nil && safeCall(phase, func() bool { return fn(e) }) {
			return true
		}
	}
	return false
}

// HandleKey runs the first shortcut matching e and reports whether one did.
func (r *Registry) HandleKey(e input.KeyEvent) bool {
	for _, p := range r.Plugins() {
		for _, s := range p.Shortcuts {
			if s.Action == nil || !s.Matches(e) {
				continue
			}
			safeCall("shortcut "+s.Key, func() bool {
				s.Action()
				return true
			})
			return true
		}
	}
	return false
}

func safeCall(what string, fn func() bool) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("[PLUGIN] %s handler panic: %v", what, rec)
			ok = false
		}
	}()
	return fn()
}
