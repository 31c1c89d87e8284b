package models

// ============================================================
// Commands & Paths
// ============================================================

type CommandType string

const (
	MoveTo    CommandType = "M"
	LineTo    CommandType = "L"
	CurveTo   CommandType = "C"
	ClosePath CommandType = "Z"
)

// Command is one path-drawing instruction. X/Y is the anchor; X1/Y1 and
// X2/Y2 are the control points of a cubic curve (CurveTo only).
type Command struct {
	ID      string      `json:"id"`
	Command CommandType `json:"command"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	X1      float64     `json:"x1,omitempty"`
	Y1      float64     `json:"y1,omitempty"`
	X2      float64     `json:"x2,omitempty"`
	Y2      float64     `json:"y2,omitempty"`
}

// CommandUpdate is a partial update; nil fields are left untouched.
type CommandUpdate struct {
	Command *CommandType `json:"command,omitempty"`
	X       *float64     `json:"x,omitempty"`
	Y       *float64     `json:"y,omitempty"`
	X1      *float64     `json:"x1,omitempty"`
	Y1      *float64     `json:"y1,omitempty"`
	X2      *float64     `json:"x2,omitempty"`
	Y2      *float64     `json:"y2,omitempty"`
}

type SubPath struct {
	ID       string    `json:"id"`
	Commands []Command `json:"commands"`
	Locked   bool      `json:"locked"`
}

type Path struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	SubPaths []SubPath `json:"subPaths"`
	Style    Style     `json:"style"`
	Locked   bool      `json:"locked"`
}

// ============================================================
// Styles
// ============================================================

// Paint is either a plain value ("#000", "none", "url(#g1)") or an
// inline gradient/pattern object.
type Paint struct {
	Value    string    `json:"value,omitempty"`
	Gradient *Gradient `json:"gradient,omitempty"`
}

func (p Paint) IsZero() bool {
	return p.Value == "" && p.Gradient == nil
}

type Style struct {
	Fill          Paint   `json:"fill"`
	Stroke        Paint   `json:"stroke"`
	StrokeWidth   float64 `json:"strokeWidth,omitempty"`
	Opacity       float64 `json:"opacity,omitempty"`
	FillOpacity   float64 `json:"fillOpacity,omitempty"`
	StrokeOpacity float64 `json:"strokeOpacity,omitempty"`
	Filter        string  `json:"filter,omitempty"`
}

// StyleUpdate is a partial style update; nil fields are left untouched.
type StyleUpdate struct {
	Fill          *Paint   `json:"fill,omitempty"`
	Stroke        *Paint   `json:"stroke,omitempty"`
	StrokeWidth   *float64 `json:"strokeWidth,omitempty"`
	Opacity       *float64 `json:"opacity,omitempty"`
	FillOpacity   *float64 `json:"fillOpacity,omitempty"`
	StrokeOpacity *float64 `json:"strokeOpacity,omitempty"`
	Filter        *string  `json:"filter,omitempty"`
}

func (s Style) Apply(u StyleUpdate) Style {
	if u.Fill != nil {
		s.Fill = *u.Fill
	}
	if u.Stroke != nil {
		s.Stroke = *u.Stroke
	}
	if u.StrokeWidth != nil {
		s.StrokeWidth = *u.StrokeWidth
	}
	if u.Opacity != nil {
		s.Opacity = *u.Opacity
	}
	if u.FillOpacity != nil {
		s.FillOpacity = *u.FillOpacity
	}
	if u.StrokeOpacity != nil {
		s.StrokeOpacity = *u.StrokeOpacity
	}
	if u.Filter != nil {
		s.Filter = *u.Filter
	}
	return s
}

// ============================================================
// Text
// ============================================================

type TextType string

const (
	TextSingle    TextType = "text"
	TextMultiline TextType = "multiline-text"
)

type TextStyle struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	Fill       Paint   `json:"fill"`
}

type Span struct {
	ID      string     `json:"id"`
	Content string     `json:"content"`
	Style   *TextStyle `json:"style,omitempty"`
}

// Text covers both single-line texts (Content) and multiline texts (Spans,
// one per line).
type Text struct {
	ID         string    `json:"id"`
	Type       TextType  `json:"type"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Content    string    `json:"content,omitempty"`
	Spans      []Span    `json:"spans,omitempty"`
	LineHeight float64   `json:"lineHeight,omitempty"`
	Style      TextStyle `json:"style"`
	Rotation   float64   `json:"rotation,omitempty"`
	Locked     bool      `json:"locked"`
}

// Lines returns the text content split the way it is edited.
func (t Text) Lines() []string {
	if t.Type != TextMultiline {
		return []string{t.Content}
	}
	lines := make([]string, len(t.Spans))
	for i, s := range t.Spans {
		lines[i] = s.Content
	}
	return lines
}

type TextUpdate struct {
	X          *float64   `json:"x,omitempty"`
	Y          *float64   `json:"y,omitempty"`
	Content    *string    `json:"content,omitempty"`
	LineHeight *float64   `json:"lineHeight,omitempty"`
	Style      *TextStyle `json:"style,omitempty"`
	Rotation   *float64   `json:"rotation,omitempty"`
}

type TextPath struct {
	ID          string    `json:"id"`
	PathRef     string    `json:"pathRef"`
	Content     string    `json:"content"`
	StartOffset float64   `json:"startOffset,omitempty"`
	Style       TextStyle `json:"style"`
	Locked      bool      `json:"locked"`
}

// ============================================================
// Groups & Images
// ============================================================

type ElementKind string

const (
	KindPath     ElementKind = "path"
	KindText     ElementKind = "text"
	KindTextPath ElementKind = "textPath"
	KindGroup    ElementKind = "group"
	KindImage    ElementKind = "image"
)

type LockLevel string

const (
	LockNone         LockLevel = "none"
	LockSelection    LockLevel = "selection"
	LockEditing      LockLevel = "editing"
	LockMovementSync LockLevel = "movement-sync"
	LockFull         LockLevel = "full"
)

type GroupChild struct {
	ID   string      `json:"id"`
	Type ElementKind `json:"type"`
}

type Group struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Children  []GroupChild `json:"children"`
	LockLevel LockLevel    `json:"lockLevel"`
	Visible   bool         `json:"visible"`
	Locked    bool         `json:"locked"`
}

type Image struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Href   string  `json:"href"`
	Locked bool    `json:"locked"`
}

// ============================================================
// Gradients, Filters, Animations
// ============================================================

type GradientKind string

const (
	GradientLinear  GradientKind = "linear"
	GradientRadial  GradientKind = "radial"
	GradientPattern GradientKind = "pattern"
)

type GradientStop struct {
	ID      string  `json:"id"`
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Gradient struct {
	ID    string         `json:"id"`
	Kind  GradientKind   `json:"type"`
	Stops []GradientStop `json:"stops,omitempty"`
	X1    float64        `json:"x1,omitempty"`
	Y1    float64        `json:"y1,omitempty"`
	X2    float64        `json:"x2,omitempty"`
	Y2    float64        `json:"y2,omitempty"`
	CX    float64        `json:"cx,omitempty"`
	CY    float64        `json:"cy,omitempty"`
	R     float64        `json:"r,omitempty"`
}

type FilterPrimitive struct {
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type Filter struct {
	ID         string            `json:"id"`
	Primitives []FilterPrimitive `json:"primitives"`
}

type Animation struct {
	ID              string `json:"id"`
	TargetElementID string `json:"targetElementId"`
	Type            string `json:"type"` // animate, animateTransform, animateMotion
	AttributeName   string `json:"attributeName,omitempty"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	Dur             string `json:"dur,omitempty"`
	Begin           string `json:"begin,omitempty"`
	RepeatCount     string `json:"repeatCount,omitempty"`
}

// ============================================================
// Document
// ============================================================

type Document struct {
	Paths      []Path      `json:"paths"`
	Texts      []Text      `json:"texts"`
	TextPaths  []TextPath  `json:"textPaths"`
	Groups     []Group     `json:"groups"`
	Images     []Image     `json:"images"`
	Gradients  []Gradient  `json:"gradients"`
	Filters    []Filter    `json:"filters"`
	Animations []Animation `json:"animations"`
}

type Viewport struct {
	Zoom    float64 `json:"zoom"`
	Pan     Point   `json:"pan"`
	ViewBox BBox    `json:"viewBox"`
}
