// Package session assembles one editing session: a store, the tool-mode
// coordinator with every tool manager, the pointer dispatcher and the
// plugin registry, wired to each other without globals.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/common/config"
	"github.com/regalagram/sspe-sub013/internal/common/debounce"
	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/plugin"
	"github.com/regalagram/sspe-sub013/internal/editor/pointer"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
	"github.com/regalagram/sspe-sub013/internal/editor/tools"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

const CorePluginID = "core"

// ============================================================
// Editor
// ============================================================

type Editor struct {
	Store    *store.Store
	Modes    *toolmode.Coordinator
	Pointer  *pointer.Dispatcher
	Plugins  *plugin.Registry
	Pencil   *tools.PencilManager
	Curves   *tools.CurvesManager
	Shapes   *tools.ShapesManager
	Text     *tools.TextCreationManager
	TextEdit *tools.TextEditManager
	Creation *tools.CreationManager
	Sticky   *tools.StickyManager
	Split    *tools.SplitPointManager

	prefs *service.Prefs

	mu      sync.Mutex
	toolbar service.ToolbarState
	unsubs  []func()
}

type Option func(*options)

type options struct {
	storeOpts []store.Option
	debouncer *debounce.Debouncer
}

// WithStoreOptions passes extra options to the store, after the ones
// derived from the config.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

func WithTextDebouncer(d *debounce.Debouncer) Option {
	return func(o *options) { o.debouncer = d }
}

// New wires a fresh editor. prefs may be nil, in which case nothing is
// restored or remembered.
func New(cfg config.Config, prefs *service.Prefs, opts ...Option) *Editor {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.debouncer == nil {
		o.debouncer = debounce.New(time.Duration(cfg.TextDebounceMs) * time.Millisecond)
	}

	storeOpts := []store.Option{store.WithPrecision(cfg.Precision), store.WithHistoryLimit(cfg.HistoryLimit)}
	s := store.New(append(storeOpts, o.storeOpts...)...)
	modes := toolmode.New(s)

	e := &Editor{
		Store:    s,
		Modes:    modes,
		Plugins:  plugin.NewRegistry(),
		Pencil:   tools.NewPencilManager(s, modes),
		Curves:   tools.NewCurvesManager(s, modes),
		Shapes:   tools.NewShapesManager(s, modes),
		Text:     tools.NewTextCreationManager(s, modes),
		TextEdit: tools.NewTextEditManager(s, modes, tools.WithDebouncer(o.debouncer)),
		Creation: tools.NewCreationManager(s, modes),
		Sticky:   tools.NewStickyManager(s, float64(cfg.StickyRadius), float64(cfg.StickyBreak)),
		Split:    tools.NewSplitPointManager(s),
		prefs:    prefs,
		toolbar:  service.ToolbarState{ActiveMode: string(toolmode.ModeSelect)},
	}

	modes.SetPencilManager(e.Pencil)
	modes.SetCurvesManager(e.Curves)
	modes.SetShapeManager(e.Shapes)
	modes.SetTextManager(e.Text)
	modes.SetTextEditManager(e.TextEdit)
	modes.SetCreationManager(e.Creation)

	e.Pointer = pointer.New(s, modes,
		pointer.WithPlugins(e.Plugins),
		pointer.WithSticky(e.Sticky),
		pointer.WithSplitPoints(e.Split),
	)

	if err := e.Plugins.Register(e.corePlugin()); err != nil {
		log.Errorf("[EDITOR] register core plugin: %v", err)
	}

	e.unsubs = append(e.unsubs,
		s.Subscribe(func(ch store.Change) {
			if ch.Has(store.ChangeSelection) {
				e.Split.OnSelectionChanged(s.Selection())
			}
		}),
		modes.Subscribe(e.rememberToolbar),
	)

	e.restoreToolbar()
	return e
}

// Close detaches the internal subscriptions and ends the active tool.
func (e *Editor) Close() {
	e.Modes.SetMode(toolmode.ModeSelect, toolmode.Options{})
	e.mu.Lock()
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// ============================================================
// Input
// ============================================================

func (e *Editor) PointerDown(ev input.PointerEvent) bool { return e.Pointer.HandlePointerDown(ev) }
func (e *Editor) PointerMove(ev input.PointerEvent) bool { return e.Pointer.HandlePointerMove(ev) }
func (e *Editor) PointerUp(ev input.PointerEvent) bool   { return e.Pointer.HandlePointerUp(ev) }

// HandleKey offers the key to the active tool first, then to the plugin
// shortcuts. Unmodified keys typed while editing text never reach the
// shortcuts.
func (e *Editor) HandleKey(ev input.KeyEvent) bool {
	if m, ok := e.Modes.ActiveManager(); ok {
		if kh, ok := m.(tools.KeyHandler); ok && kh.HandleKey(ev) {
			return true
		}
	}
	if e.Modes.IsActive(toolmode.ModeTextEdit) && !ev.Primary() && ev.Key != "Escape" {
		return false
	}
	return e.Plugins.HandleKey(ev)
}

// ============================================================
// Core shortcuts
// ============================================================

func (e *Editor) corePlugin() plugin.Plugin {
	primary := func(key string, desc string, action func(), extra ...plugin.Modifier) []plugin.Shortcut {
		return []plugin.Shortcut{
			{Key: key, Modifiers: append([]plugin.Modifier{plugin.Ctrl}, extra...), Description: desc, Action: action},
			{Key: key, Modifiers: append([]plugin.Modifier{plugin.Meta}, extra...), Description: desc, Action: action},
		}
	}

	var shortcuts []plugin.Shortcut
	shortcuts = append(shortcuts, primary("a", "Select all", func() { e.Store.SelectAll() })...)
	shortcuts = append(shortcuts, primary("z", "Undo", func() { e.Store.Undo() })...)
	shortcuts = append(shortcuts, primary("z", "Redo", func() { e.Store.Redo() }, plugin.Shift)...)
	shortcuts = append(shortcuts, primary("y", "Redo", func() { e.Store.Redo() })...)
	shortcuts = append(shortcuts,
		plugin.Shortcut{Key: "Escape", Description: "Cancel tool", Action: e.escape},
		plugin.Shortcut{Key: "Escape", Modifiers: []plugin.Modifier{plugin.Shift}, Description: "Clear selection", Action: e.Store.ClearSelection},
		plugin.Shortcut{Key: "Delete", Description: "Delete selection", Action: e.deleteSelection},
		plugin.Shortcut{Key: "Backspace", Description: "Delete selection", Action: e.deleteSelection},
	)

	for key, mode := range map[string]toolmode.Mode{
		"v": toolmode.ModeSelect,
		"p": toolmode.ModePencil,
		"c": toolmode.ModeCurves,
		"s": toolmode.ModeShapes,
		"t": toolmode.ModeText,
	} {
		shortcuts = append(shortcuts, plugin.Shortcut{
			Key:         key,
			Description: "Switch to " + string(mode),
			Action:      func() { e.Modes.SetMode(mode, e.toolOptions(mode)) },
		})
	}

	return plugin.Plugin{ID: CorePluginID, Shortcuts: shortcuts}
}

func (e *Editor) escape() {
	if e.Modes.ActiveMode() != toolmode.ModeSelect {
		e.Modes.SetMode(toolmode.ModeSelect, toolmode.Options{})
		return
	}
	e.Store.ClearSelection()
}

func (e *Editor) deleteSelection() {
	if selection.IsEmpty(e.Store.Selection()) {
		return
	}
	e.Store.PushToHistory()
	e.Store.DeleteSelection()
}

// toolOptions reuses the last sub-options chosen for a tool.
func (e *Editor) toolOptions(mode toolmode.Mode) toolmode.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch mode {
	case toolmode.ModeShapes:
		return toolmode.Options{ShapeID: e.toolbar.ShapeID}
	case toolmode.ModeText:
		return toolmode.Options{TextType: e.toolbar.TextType}
	case toolmode.ModeCreation:
		return toolmode.Options{CreateSubMode: e.toolbar.CreateSubMode}
	}
	return toolmode.Options{}
}

// ============================================================
// Toolbar persistence
// ============================================================

// restorable lists the modes a new session may start in.
var restorable = map[toolmode.Mode]bool{
	toolmode.ModeSelect:   true,
	toolmode.ModePencil:   true,
	toolmode.ModeCurves:   true,
	toolmode.ModeShapes:   true,
	toolmode.ModeText:     true,
	toolmode.ModeCreation: true,
}

func (e *Editor) restoreToolbar() {
	var saved service.ToolbarState
	if !e.prefs.Load(context.Background(), service.KeyToolbarState, &saved) {
		return
	}
	mode := toolmode.Mode(saved.ActiveMode)
	if !restorable[mode] {
		mode = toolmode.ModeSelect
	}

	e.mu.Lock()
	e.toolbar = saved
	e.mu.Unlock()

	if mode != toolmode.ModeSelect {
		e.Modes.SetMode(mode, e.toolOptions(mode))
	}
}

func (e *Editor) rememberToolbar(st toolmode.State) {
	e.mu.Lock()
	next := e.toolbar
	next.ActiveMode = string(st.ActiveMode)
	if st.ShapeID != "" {
		next.ShapeID = st.ShapeID
	}
	if st.CreateSubMode != "" {
		next.CreateSubMode = st.CreateSubMode
	}
	if st.TextType != "" {
		next.TextType = st.TextType
	}
	changed := next != e.toolbar
	e.toolbar = next
	e.mu.Unlock()

	if changed {
		e.prefs.Save(context.Background(), service.KeyToolbarState, next)
	}
}

// Toolbar returns the remembered toolbar state.
func (e *Editor) Toolbar() service.ToolbarState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toolbar
}
