// Package tools holds the interactive tool managers. Each manager owns the
// pointer logic of one tool, is switched on and off by the tool-mode
// coordinator, and edits the document only through the store.
package tools

import (
	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

// PointerHandler is implemented by managers that take pointer input. Each
// method reports whether the event was consumed.
type PointerHandler interface {
	HandlePointerDown(e input.PointerEvent) bool
	HandlePointerMove(e input.PointerEvent) bool
	HandlePointerUp(e input.PointerEvent) bool
}

// KeyHandler is implemented by managers that react to keys while active.
type KeyHandler interface {
	HandleKey(e input.KeyEvent) bool
}

// Manager is the full contract of a tool manager.
type Manager interface {
	toolmode.Activatable
	PointerHandler
	KeyHandler
}

// Modes is the part of the coordinator the managers call back into.
type Modes interface {
	State() toolmode.State
	SetMode(mode toolmode.Mode, opts toolmode.Options) bool
	NotifyModeDeactivated(mode toolmode.Mode) bool
}

// base carries what every manager shares: the store, the coordinator and
// whether the coordinator has activated it.
type base struct {
	store  *store.Store
	modes  Modes
	mode   toolmode.Mode
	active bool
}

func (b *base) IsActive() bool { return b.active }

// exit hands control back to the select tool through the coordinator,
// which runs this manager's deactivation hook.
func (b *base) exit() {
	b.modes.SetMode(toolmode.ModeSelect, toolmode.Options{})
}

func isEscape(e input.KeyEvent) bool { return e.Key == "Escape" }
func isEnter(e input.KeyEvent) bool  { return e.Key == "Enter" }
