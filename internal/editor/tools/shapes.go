package tools

import (
	"math"
	"sync"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
)

const (
	DefaultShape     = "rectangle"
	defaultShapeSize = 100.0
	minShapeDrag     = 2.0
	// kappa places cubic handles so four segments approximate a circle.
	kappa = 0.5522847498
)

// ShapeIDs lists the supported shape templates.
func ShapeIDs() []string {
	return []string{"rectangle", "square", "circle", "ellipse", "triangle", "line", "star"}
}

// ShapeCommands returns the commands of shape fitted to box. Square and
// circle use the larger side of box.
func ShapeCommands(shape string, box models.BBox) ([]models.Command, bool) {
	if shape == "square" || shape == "circle" {
		side := math.Max(box.Width, box.Height)
		box.Width, box.Height = side, side
	}
	x0, y0, x1, y1 := box.X, box.Y, box.MaxX(), box.MaxY()
	cx, cy := box.X+box.Width/2, box.Y+box.Height/2
	rx, ry := box.Width/2, box.Height/2
	mv := func(x, y float64) models.Command { return models.Command{Command: models.MoveTo, X: x, Y: y} }
	ln := func(x, y float64) models.Command { return models.Command{Command: models.LineTo, X: x, Y: y} }
	z := models.Command{Command: models.ClosePath}

	switch shape {
	case "rectangle", "square":
		return []models.Command{mv(x0, y0), ln(x1, y0), ln(x1, y1), ln(x0, y1), z}, true
	case "triangle":
		return []models.Command{mv(cx, y0), ln(x1, y1), ln(x0, y1), z}, true
	case "line":
		return []models.Command{mv(x0, y0), ln(x1, y1)}, true
	case "circle", "ellipse":
		kx, ky := rx*kappa, ry*kappa
		cu := func(x1, y1, x2, y2, x, y float64) models.Command {
			return models.Command{Command: models.CurveTo, X1: x1, Y1: y1, X2: x2, Y2: y2, X: x, Y: y}
		}
		return []models.Command{
			mv(cx+rx, cy),
			cu(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry),
			cu(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy),
			cu(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry),
			cu(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy),
			z,
		}, true
	case "star":
		cmds := make([]models.Command, 0, 11)
		for i := range 10 {
			a := -math.Pi/2 + float64(i)*math.Pi/5
			f := 1.0
			if i%2 == 1 {
				f = 0.4
			}
			x, y := cx+rx*f*math.Cos(a), cy+ry*f*math.Sin(a)
			if i == 0 {
				cmds = append(cmds, mv(x, y))
			} else {
				cmds = append(cmds, ln(x, y))
			}
		}
		return append(cmds, z), true
	}
	return nil, false
}

// ShapesManager creates one shape per gesture: drag to size it, or click
// for a default-sized shape. After creating a shape it selects it and
// hands control back to the select tool.
type ShapesManager struct {
	base
	mu sync.Mutex

	shape     string
	start     *models.Point
	pathID    string
	subPathID string
}

func NewShapesManager(s *store.Store, modes Modes) *ShapesManager {
	return &ShapesManager{base: base{store: s, modes: modes, mode: toolmode.ModeShapes}, shape: DefaultShape}
}

func (m *ShapesManager) ActivateExternally() {
	shape := m.modes.State().ShapeID
	if _, ok := ShapeCommands(shape, models.BBox{Width: 1, Height: 1}); !ok {
		shape = DefaultShape
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
	m.shape = shape
}

// DeactivateExternally keeps a shape that is being dragged.
func (m *ShapesManager) DeactivateExternally() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.start = nil
	m.pathID, m.subPathID = "", ""
}

func (m *ShapesManager) Shape() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shape
}

func (m *ShapesManager) HandlePointerDown(e input.PointerEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active || e.Button != input.ButtonPrimary {
		return false
	}
	p := e.Point
	m.start = &p
	return true
}

func (m *ShapesManager) HandlePointerMove(e input.PointerEvent) bool {
	m.mu.Lock()
	if m.start == nil {
		m.mu.Unlock()
		return false
	}
	start, shape := *m.start, m.shape
	pathID, subPathID := m.pathID, m.subPathID
	m.mu.Unlock()

	if pathID == "" && e.Point.Dist(start) < minShapeDrag {
		return true
	}
	cmds, _ := ShapeCommands(shape, models.BoxFromPoints(start, e.Point))
	if pathID == "" {
		m.store.PushToHistory()
		pathID, subPathID = m.store.AddPath(nil)
		m.mu.Lock()
		m.pathID, m.subPathID = pathID, subPathID
		m.mu.Unlock()
	}
	m.store.ReplaceSubPathCommands(subPathID, cmds)
	return true
}

func (m *ShapesManager) HandlePointerUp(e input.PointerEvent) bool {
	m.mu.Lock()
	if m.start == nil {
		m.mu.Unlock()
		return false
	}
	start, shape, pathID := *m.start, m.shape, m.pathID
	m.start = nil
	m.pathID, m.subPathID = "", ""
	// one-shot: release before handing control back
	m.active = false
	m.mu.Unlock()

	if pathID == "" {
		cmds, _ := ShapeCommands(shape, models.BBox{X: start.X, Y: start.Y, Width: defaultShapeSize, Height: defaultShapeSize})
		m.store.PushToHistory()
		pathID = m.store.InsertPath(models.Path{
			Style:    store.DefaultPathStyle(),
			SubPaths: []models.SubPath{{Commands: cmds}},
		})
	}
	m.store.Select(selection.Path, pathID, false)
	m.modes.NotifyModeDeactivated(toolmode.ModeShapes)
	return true
}

// HandleKey cancels a shape being dragged and returns to select on Escape.
func (m *ShapesManager) HandleKey(e input.KeyEvent) bool {
	if !m.active || !isEscape(e) {
		return false
	}
	m.mu.Lock()
	pathID := m.pathID
	m.start = nil
	m.pathID, m.subPathID = "", ""
	m.mu.Unlock()
	if pathID != "" {
		m.store.RemovePath(pathID)
	}
	m.exit()
	return true
}
