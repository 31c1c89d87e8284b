package store

import (
	"math"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

const (
	MinZoom = 0.1
	MaxZoom = 20
)

// ============================================================
// Viewport
// ============================================================

// Viewport writes never let a non-finite number into the state: the last
// good value is kept and a warning logged.

func (s *Store) SetZoom(zoom float64) bool {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 {
		log.Warnf("[STORE] invalid zoom %v, keeping last value", zoom)
		return false
	}
	zoom = math.Min(math.Max(zoom, MinZoom), MaxZoom)
	return s.update(func(st *State) Change {
		if st.Viewport.Zoom == zoom {
			return 0
		}
		st.Viewport.Zoom = zoom
		return ChangeViewport
	})
}

// ZoomAt multiplies the zoom by factor keeping the canvas point under the
// screen position anchor fixed.
func (s *Store) ZoomAt(factor float64, anchor models.Point) bool {
	return s.update(func(st *State) Change {
		vp := st.Viewport
		next := math.Min(math.Max(vp.Zoom*factor, MinZoom), MaxZoom)
		canvas := screenToCanvas(vp, anchor)
		pan := models.Point{X: anchor.X - canvas.X*next, Y: anchor.Y - canvas.Y*next}
		if math.IsNaN(next) || math.IsInf(next, 0) || !pan.IsFinite() {
			log.Warnf("[STORE] zoom at %v by %v produced non-finite viewport, keeping last value", anchor, factor)
			return 0
		}
		if next == vp.Zoom && pan == vp.Pan {
			return 0
		}
		st.Viewport.Zoom, st.Viewport.Pan = next, pan
		return ChangeViewport
	})
}

func (s *Store) Pan(delta models.Point) bool {
	return s.SetPan(s.Viewport().Pan.Add(delta))
}

func (s *Store) SetPan(pan models.Point) bool {
	if !pan.IsFinite() {
		log.Warnf("[STORE] invalid pan %v, keeping last value", pan)
		return false
	}
	return s.update(func(st *State) Change {
		if st.Viewport.Pan == pan {
			return 0
		}
		st.Viewport.Pan = pan
		return ChangeViewport
	})
}

func (s *Store) SetViewBox(box models.BBox) bool {
	if !box.IsFinite() || box.Width < 0 || box.Height < 0 {
		log.Warnf("[STORE] invalid view box %v, keeping last value", box)
		return false
	}
	return s.update(func(st *State) Change {
		if st.Viewport.ViewBox == box {
			return 0
		}
		st.Viewport.ViewBox = box
		return ChangeViewport
	})
}

// ScreenToCanvas converts a screen position to document coordinates.
func (s *Store) ScreenToCanvas(p models.Point) models.Point {
	return screenToCanvas(s.Viewport(), p)
}

func screenToCanvas(vp models.Viewport, p models.Point) models.Point {
	zoom := vp.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return models.Point{X: (p.X - vp.Pan.X) / zoom, Y: (p.Y - vp.Pan.Y) / zoom}
}
