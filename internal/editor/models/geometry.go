package models

import "math"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoxFromPoints returns the axis-aligned box spanning a and b in any order.
func BoxFromPoints(a, b Point) BBox {
	return BBox{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

func (b BBox) MaxX() float64 { return b.X + b.Width }
func (b BBox) MaxY() float64 { return b.Y + b.Height }

func (b BBox) ContainsPoint(p Point) bool {
	return p.X >= b.X && p.X <= b.MaxX() && p.Y >= b.Y && p.Y <= b.MaxY()
}

// Contains reports whether o lies fully inside b.
func (b BBox) Contains(o BBox) bool {
	return o.X >= b.X && o.Y >= b.Y && o.MaxX() <= b.MaxX() && o.MaxY() <= b.MaxY()
}

func (b BBox) Intersects(o BBox) bool {
	return b.X <= o.MaxX() && o.X <= b.MaxX() && b.Y <= o.MaxY() && o.Y <= b.MaxY()
}

func (b BBox) Union(o BBox) BBox {
	minX := math.Min(b.X, o.X)
	minY := math.Min(b.Y, o.Y)
	return BBox{
		X:      minX,
		Y:      minY,
		Width:  math.Max(b.MaxX(), o.MaxX()) - minX,
		Height: math.Max(b.MaxY(), o.MaxY()) - minY,
	}
}

func (b BBox) IsFinite() bool {
	return isFinite(b.X) && isFinite(b.Y) && isFinite(b.Width) && isFinite(b.Height)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ============================================================
// Element bounds
// ============================================================

// Point returns the anchor of a command.
func (c Command) Point() Point { return Point{X: c.X, Y: c.Y} }

// IsArrangeable reports whether align/distribute may move the command.
// Close commands carry no position of their own.
func IsArrangeable(c Command) bool {
	return c.Command != ClosePath
}

// PointsBounds returns the box around pts; ok is false for an empty slice.
func PointsBounds(pts []Point) (BBox, bool) {
	if len(pts) == 0 {
		return BBox{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

func commandPoints(cmds []Command, out []Point) []Point {
	for _, c := range cmds {
		switch c.Command {
		case ClosePath:
			continue
		case CurveTo:
			out = append(out, Point{c.X1, c.Y1}, Point{c.X2, c.Y2})
		}
		out = append(out, c.Point())
	}
	return out
}

// SubPathBounds uses anchors and control points, which over-approximates
// curves but never under-approximates them.
func SubPathBounds(sp SubPath) (BBox, bool) {
	return PointsBounds(commandPoints(sp.Commands, nil))
}

func PathBounds(p Path) (BBox, bool) {
	var pts []Point
	for _, sp := range p.SubPaths {
		pts = commandPoints(sp.Commands, pts)
	}
	return PointsBounds(pts)
}

const defaultFontSize = 16

// TextBounds estimates the box of a text from its font size; glyph metrics
// belong to the renderer.
func TextBounds(t Text) BBox {
	size := t.Style.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	lineHeight := t.LineHeight
	if lineHeight <= 0 {
		lineHeight = size * 1.2
	}
	lines := t.Lines()
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return BBox{
		X:      t.X,
		Y:      t.Y - size,
		Width:  float64(longest) * size * 0.6,
		Height: size + float64(len(lines)-1)*lineHeight,
	}
}

func ImageBounds(img Image) BBox {
	return BBox{X: img.X, Y: img.Y, Width: img.Width, Height: img.Height}
}
