// Package pointer routes pointer events to whoever should handle them.
// Plugins see every event first, then the active tool manager, then the
// transform handles around the selection, and finally the selection logic
// of the select tool.
package pointer

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
	"github.com/regalagram/sspe-sub013/internal/editor/tools"
)

// dragThreshold is how far the pointer travels before a press on an
// element becomes a move.
const dragThreshold = 2.0

// Interceptor sees pointer events before anyone else.
type Interceptor interface {
	PointerDown(e input.PointerEvent) bool
	PointerMove(e input.PointerEvent) bool
	PointerUp(e input.PointerEvent) bool
}

// Modes resolves the manager owning the active tool.
type Modes interface {
	ActiveManager() (toolmode.Activatable, bool)
}

type dragKind int

const (
	dragNone dragKind = iota
	dragTool
	dragMove
	dragControl
	dragMarquee
	dragScale
)

type drag struct {
	kind    dragKind
	start   models.Point
	last    models.Point
	started bool
	add     bool

	// single endpoint drags snap through the sticky manager
	commandID string
	anchor    models.Point

	// control point drags
	handle int

	// scale drags
	bounds models.BBox
	origin models.Point
	axisX  bool
	axisY  bool
	sx, sy float64
}

type Dispatcher struct {
	mu      sync.Mutex
	store   *store.Store
	modes   Modes
	plugins Interceptor
	sticky  *tools.StickyManager
	split   *tools.SplitPointManager
	drag    drag
	marquee *models.BBox
}

type Option func(*Dispatcher)

func WithPlugins(p Interceptor) Option         { return func(d *Dispatcher) { d.plugins = p } }
func WithSticky(m *tools.StickyManager) Option { return func(d *Dispatcher) { d.sticky = m } }

func WithSplitPoints(m *tools.SplitPointManager) Option {
	return func(d *Dispatcher) { d.split = m }
}

func New(s *store.Store, modes Modes, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: s, modes: modes}
	for _, opt := range opts {
		opt(d)
	}
	if d.sticky == nil {
		d.sticky = tools.NewStickyManager(s, tools.DefaultStickyRadius, tools.DefaultStickyBreak)
	}
	if d.split == nil {
		d.split = tools.NewSplitPointManager(s)
	}
	return d
}

// Marquee returns the rubber band box while one is being dragged.
func (d *Dispatcher) Marquee() (models.BBox, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.marquee == nil {
		return models.BBox{}, false
	}
	return *d.marquee, true
}

func (d *Dispatcher) activeHandler() (tools.PointerHandler, bool) {
	if d.modes == nil {
		return nil, false
	}
	m, ok := d.modes.ActiveManager()
	if !ok {
		return nil, false
	}
	h, ok := m.(tools.PointerHandler)
	return h, ok
}

// ============================================================
// Down
// ============================================================

// HandlePointerDown reports whether anyone consumed the event.
func (d *Dispatcher) HandlePointerDown(e input.PointerEvent) bool {
	if !e.Point.IsFinite() {
		log.Warnf("[POINTER] dropping event with non-finite position")
		return false
	}
	if d.plugins != nil && d.plugins.PointerDown(e) {
		return true
	}
	if h, ok := d.activeHandler(); ok && h.HandlePointerDown(e) {
		d.begin(drag{kind: dragTool, start: e.Point, last: e.Point})
		return true
	}
	if e.Button != input.ButtonPrimary {
		return false
	}

	switch e.Target.Kind {
	case input.TargetHandle:
		return d.beginScale(e)
	case input.TargetCommand:
		return d.pressCommand(e)
	case input.TargetControlPoint:
		return d.pressControlPoint(e)
	case input.TargetPath:
		return d.pressElement(e, selection.Path)
	case input.TargetText:
		return d.pressElement(e, selection.Text)
	case input.TargetImage:
		return d.pressElement(e, selection.Image)
	case input.TargetGroup:
		return d.pressElement(e, selection.Group)
	}

	if !e.Shift {
		d.store.ClearSelection()
	}
	d.begin(drag{kind: dragMarquee, start: e.Point, last: e.Point, add: e.Shift})
	return true
}

func (d *Dispatcher) begin(dr drag) {
	d.mu.Lock()
	d.drag = dr
	d.marquee = nil
	d.mu.Unlock()
}

func (d *Dispatcher) pressElement(e input.PointerEvent, k selection.Kind) bool {
	id := e.Target.ID
	sel := d.store.Selection()
	switch {
	case e.Shift:
		d.store.ToggleSelection(k, id)
		if !selection.Contains(d.store.Selection(), k, id) {
			return true
		}
	case !selection.Contains(sel, k, id):
		if !d.store.Select(k, id, false) {
			return false
		}
	}
	d.begin(drag{kind: dragMove, start: e.Point, last: e.Point})
	return true
}

func (d *Dispatcher) pressCommand(e input.PointerEvent) bool {
	id := e.Target.ID
	switch {
	case e.Shift:
		d.store.ToggleSelection(selection.Command, id)
		if !selection.Contains(d.store.Selection(), selection.Command, id) {
			return true
		}
	case d.split.HandleClick(id):
	case !selection.Contains(d.store.Selection(), selection.Command, id):
		if !d.store.Select(selection.Command, id, false) {
			return false
		}
	}

	dr := drag{kind: dragMove, start: e.Point, last: e.Point}
	if sel := d.store.Selection().SelectedCommands; len(sel) == 1 && sel[0] == id {
		if c, ok := d.store.FindCommand(id); ok && d.sticky.Begin(id) {
			dr.commandID, dr.anchor = id, c.Point()
		}
	}
	d.begin(dr)
	return true
}

// pressControlPoint starts dragging the handle <commandID>:<1|2>.
func (d *Dispatcher) pressControlPoint(e input.PointerEvent) bool {
	cmdID, n, ok := strings.Cut(e.Target.ID, ":")
	if !ok || (n != "1" && n != "2") {
		return false
	}
	c, found := d.store.FindCommand(cmdID)
	if !found || c.Command != models.CurveTo {
		return false
	}
	if !d.store.Select(selection.ControlPoint, e.Target.ID, e.Shift) {
		return false
	}
	handle, anchor := 1, models.Point{X: c.X1, Y: c.Y1}
	if n == "2" {
		handle, anchor = 2, models.Point{X: c.X2, Y: c.Y2}
	}
	d.begin(drag{kind: dragControl, start: e.Point, last: e.Point, commandID: cmdID, anchor: anchor, handle: handle})
	return true
}

// beginScale starts a resize from one of the eight handles named by
// compass direction. The opposite side stays fixed.
func (d *Dispatcher) beginScale(e input.PointerEvent) bool {
	box, ok := d.store.SelectionBounds()
	if !ok {
		return false
	}
	dir := e.Target.ID
	dr := drag{kind: dragScale, start: e.Point, last: e.Point, bounds: box, sx: 1, sy: 1}
	dr.origin = models.Point{X: box.X + box.Width/2, Y: box.Y + box.Height/2}
	if strings.Contains(dir, "w") {
		dr.axisX, dr.origin.X = true, box.MaxX()
	} else if strings.Contains(dir, "e") {
		dr.axisX, dr.origin.X = true, box.X
	}
	if strings.HasPrefix(dir, "n") {
		dr.axisY, dr.origin.Y = true, box.MaxY()
	} else if strings.HasPrefix(dir, "s") {
		dr.axisY, dr.origin.Y = true, box.Y
	}
	if !dr.axisX && !dr.axisY {
		log.Warnf("[POINTER] unknown transform handle %q", dir)
		return false
	}
	d.begin(dr)
	return true
}

// ============================================================
// Move
// ============================================================

func (d *Dispatcher) HandlePointerMove(e input.PointerEvent) bool {
	if !e.Point.IsFinite() {
		return false
	}
	if d.plugins != nil && d.plugins.PointerMove(e) {
		return true
	}

	d.mu.Lock()
	dr := d.drag
	d.mu.Unlock()

	switch dr.kind {
	case dragTool:
		if h, ok := d.activeHandler(); ok {
			return h.HandlePointerMove(e)
		}
		return false
	case dragMove:
		return d.moveSelection(dr, e)
	case dragControl:
		return d.moveControlPoint(dr, e)
	case dragMarquee:
		box := models.BoxFromPoints(dr.start, e.Point)
		d.mu.Lock()
		d.marquee = &box
		d.drag.last = e.Point
		d.mu.Unlock()
		return true
	case dragScale:
		return d.scaleSelection(dr, e)
	}
	if h, ok := d.activeHandler(); ok {
		return h.HandlePointerMove(e)
	}
	return false
}

// startDrag records history once, when the drag first clears the threshold.
func (d *Dispatcher) startDrag(dr drag, p models.Point) bool {
	if dr.started {
		return true
	}
	if p.Dist(dr.start) < dragThreshold {
		return false
	}
	d.store.PushToHistory()
	d.mu.Lock()
	d.drag.started = true
	d.mu.Unlock()
	return true
}

func (d *Dispatcher) moveSelection(dr drag, e input.PointerEvent) bool {
	if !d.startDrag(dr, e.Point) {
		return true
	}
	if dr.commandID != "" {
		res := d.sticky.Update(dr.anchor.Add(e.Point.Sub(dr.start)))
		d.store.MoveCommand(dr.commandID, res.Position)
	} else {
		d.store.BeginMoveBatch()
		d.store.MoveSelection(e.Point.Sub(dr.last))
		d.store.EndMoveBatch()
	}
	d.mu.Lock()
	d.drag.last = e.Point
	d.mu.Unlock()
	return true
}

func (d *Dispatcher) moveControlPoint(dr drag, e input.PointerEvent) bool {
	if !d.startDrag(dr, e.Point) {
		return true
	}
	p := dr.anchor.Add(e.Point.Sub(dr.start))
	u := models.CommandUpdate{X1: &p.X, Y1: &p.Y}
	if dr.handle == 2 {
		u = models.CommandUpdate{X2: &p.X, Y2: &p.Y}
	}
	d.store.UpdateCommand(dr.commandID, u)
	return true
}

// scaleSelection applies the factor between the previous and the new
// pointer position, so each step composes with the ones before.
func (d *Dispatcher) scaleSelection(dr drag, e input.PointerEvent) bool {
	if !d.startDrag(dr, e.Point) {
		return true
	}
	total := func(axis bool, prev, origin, start, now float64) float64 {
		edge := start - origin
		if !axis || edge == 0 {
			return 1
		}
		f := (edge + now - start) / edge
		if f == 0 {
			return prev
		}
		return f
	}
	sx := total(dr.axisX, dr.sx, dr.origin.X, dr.start.X, e.Point.X)
	sy := total(dr.axisY, dr.sy, dr.origin.Y, dr.start.Y, e.Point.Y)
	if sx == dr.sx && sy == dr.sy {
		return true
	}
	if d.store.ScaleSelection(dr.origin, sx/dr.sx, sy/dr.sy) {
		d.mu.Lock()
		d.drag.sx, d.drag.sy = sx, sy
		d.mu.Unlock()
	}
	return true
}

// ============================================================
// Up
// ============================================================

func (d *Dispatcher) HandlePointerUp(e input.PointerEvent) bool {
	if d.plugins != nil && d.plugins.PointerUp(e) {
		d.begin(drag{})
		return true
	}

	d.mu.Lock()
	dr := d.drag
	d.drag = drag{}
	box := d.marquee
	d.marquee = nil
	d.mu.Unlock()

	switch dr.kind {
	case dragTool:
		if h, ok := d.activeHandler(); ok {
			return h.HandlePointerUp(e)
		}
		return false
	case dragMove:
		if dr.commandID != "" {
			d.sticky.End()
		}
		return true
	case dragMarquee:
		if box != nil && box.Width > 0 && box.Height > 0 {
			d.store.SelectInBox(*box, dr.add)
		}
		return true
	case dragControl, dragScale:
		return true
	}
	if h, ok := d.activeHandler(); ok {
		return h.HandlePointerUp(e)
	}
	return false
}
