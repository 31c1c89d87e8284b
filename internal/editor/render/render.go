// Package render serializes an editor document to a plain SVG string.
package render

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

const defaultSize = 1000

// ============================================================
// Path data
// ============================================================

// PathData builds the d attribute of a path, subpaths joined by a space.
func PathData(p models.Path) string {
	var parts []string
	for _, sp := range p.SubPaths {
		if d := SubPathData(sp); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}

func SubPathData(sp models.SubPath) string {
	var parts []string
	for _, c := range sp.Commands {
		switch c.Command {
		case models.MoveTo, models.LineTo:
			parts = append(parts, string(c.Command)+" "+formatPoint(c.X, c.Y))
		case models.CurveTo:
			parts = append(parts, "C "+formatPoint(c.X1, c.Y1)+" "+formatPoint(c.X2, c.Y2)+" "+formatPoint(c.X, c.Y))
		case models.ClosePath:
			parts = append(parts, "Z")
		}
	}
	return strings.Join(parts, " ")
}

// ============================================================
// Document
// ============================================================

// SVG собирает SVG-документ. Elements of hidden groups are left out.
func SVG(doc models.Document, vp models.Viewport) string {
	hidden := hiddenElements(doc)

	var elements []string
	elements = append(elements, renderPaths(doc, hidden)...)
	elements = append(elements, renderTexts(doc, hidden)...)
	elements = append(elements, renderTextPaths(doc, hidden)...)
	elements = append(elements, renderImages(doc, hidden)...)

	box := viewBox(doc, vp)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%s %s %s %s">`,
		formatFloat(box.X), formatFloat(box.Y), formatFloat(box.Width), formatFloat(box.Height)))
	builder.WriteString("\n")

	if defs := renderDefs(doc); len(defs) > 0 {
		builder.WriteString("  <defs>\n")
		for _, d := range defs {
			builder.WriteString("    ")
			builder.WriteString(d)
			builder.WriteString("\n")
		}
		builder.WriteString("  </defs>\n")
	}

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String()
}

func viewBox(doc models.Document, vp models.Viewport) models.BBox {
	if vp.ViewBox.Width > 0 && vp.ViewBox.Height > 0 {
		return vp.ViewBox
	}

	var box models.BBox
	found := false
	for _, p := range doc.Paths {
		b, ok := models.PathBounds(p)
		if !ok {
			continue
		}
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	if !found || box.Width <= 0 || box.Height <= 0 {
		return models.BBox{Width: defaultSize, Height: defaultSize}
	}
	return box
}

func hiddenElements(doc models.Document) map[string]bool {
	byID := make(map[string]models.Group, len(doc.Groups))
	for _, g := range doc.Groups {
		byID[g.ID] = g
	}

	hidden := make(map[string]bool)
	var hide func(g models.Group)
	hide = func(g models.Group) {
		for _, c := range g.Children {
			if hidden[c.ID] {
				continue
			}
			hidden[c.ID] = true
			if child, ok := byID[c.ID]; ok && c.Type == models.KindGroup {
				hide(child)
			}
		}
	}
	for _, g := range doc.Groups {
		if !g.Visible {
			hide(g)
		}
	}
	return hidden
}

// ============================================================
// Element renderers
// ============================================================

func renderPaths(doc models.Document, hidden map[string]bool) []string {
	var out []string
	for _, p := range doc.Paths {
		if hidden[p.ID] {
			continue
		}
		d := PathData(p)
		if d == "" {
			continue
		}
		out = append(out, fmt.Sprintf(`<path id="%s" d="%s"%s/>`, escape(p.ID), d, styleAttrs(p.Style)))
	}
	return out
}

func renderTexts(doc models.Document, hidden map[string]bool) []string {
	var out []string
	for _, t := range doc.Texts {
		if hidden[t.ID] {
			continue
		}
		attrs := fmt.Sprintf(`id="%s" x="%s" y="%s"%s`, escape(t.ID), formatFloat(t.X), formatFloat(t.Y), textStyleAttrs(t.Style))
		if t.Rotation != 0 {
			attrs += fmt.Sprintf(` transform="rotate(%s %s %s)"`, formatFloat(t.Rotation), formatFloat(t.X), formatFloat(t.Y))
		}

		if t.Type != models.TextMultiline {
			out = append(out, fmt.Sprintf(`<text %s>%s</text>`, attrs, escape(t.Content)))
			continue
		}

		var spans strings.Builder
		dy := lineAdvance(t)
		for i, s := range t.Spans {
			shift := "0"
			if i > 0 {
				shift = formatFloat(dy)
			}
			spans.WriteString(fmt.Sprintf(`<tspan id="%s" x="%s" dy="%s">%s</tspan>`,
				escape(s.ID), formatFloat(t.X), shift, escape(s.Content)))
		}
		out = append(out, fmt.Sprintf(`<text %s>%s</text>`, attrs, spans.String()))
	}
	return out
}

func lineAdvance(t models.Text) float64 {
	size := t.Style.FontSize
	if size <= 0 {
		size = 16
	}
	lh := t.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	return size * lh
}

func renderTextPaths(doc models.Document, hidden map[string]bool) []string {
	var out []string
	for _, tp := range doc.TextPaths {
		if hidden[tp.ID] {
			continue
		}
		offset := ""
		if tp.StartOffset != 0 {
			offset = fmt.Sprintf(` startOffset="%s"`, formatFloat(tp.StartOffset))
		}
		out = append(out, fmt.Sprintf(`<text id="%s"%s><textPath xlink:href="#%s"%s>%s</textPath></text>`,
			escape(tp.ID), textStyleAttrs(tp.Style), escape(tp.PathRef), offset, escape(tp.Content)))
	}
	return out
}

func renderImages(doc models.Document, hidden map[string]bool) []string {
	var out []string
	for _, img := range doc.Images {
		if hidden[img.ID] {
			continue
		}
		out = append(out, fmt.Sprintf(`<image id="%s" x="%s" y="%s" width="%s" height="%s" xlink:href="%s"/>`,
			escape(img.ID), formatFloat(img.X), formatFloat(img.Y), formatFloat(img.Width), formatFloat(img.Height), escape(img.Href)))
	}
	return out
}

// ============================================================
// Defs
// ============================================================

func renderDefs(doc models.Document) []string {
	var out []string
	for _, g := range doc.Gradients {
		if d := renderGradient(g); d != "" {
			out = append(out, d)
		}
	}
	for _, f := range doc.Filters {
		out = append(out, renderFilter(f))
	}
	return out
}

func renderGradient(g models.Gradient) string {
	var stops strings.Builder
	for _, s := range g.Stops {
		stops.WriteString(fmt.Sprintf(`<stop offset="%s" stop-color="%s"`, formatFloat(s.Offset), escape(s.Color)))
		if s.Opacity > 0 && s.Opacity < 1 {
			stops.WriteString(fmt.Sprintf(` stop-opacity="%s"`, formatFloat(s.Opacity)))
		}
		stops.WriteString("/>")
	}

	switch g.Kind {
	case models.GradientLinear:
		return fmt.Sprintf(`<linearGradient id="%s" x1="%s" y1="%s" x2="%s" y2="%s">%s</linearGradient>`,
			escape(g.ID), formatFloat(g.X1), formatFloat(g.Y1), formatFloat(g.X2), formatFloat(g.Y2), stops.String())
	case models.GradientRadial:
		return fmt.Sprintf(`<radialGradient id="%s" cx="%s" cy="%s" r="%s">%s</radialGradient>`,
			escape(g.ID), formatFloat(g.CX), formatFloat(g.CY), formatFloat(g.R), stops.String())
	}
	return ""
}

func renderFilter(f models.Filter) string {
	var prims strings.Builder
	for _, p := range f.Primitives {
		keys := make([]string, 0, len(p.Attrs))
		for k := range p.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		prims.WriteString("<" + p.Type)
		for _, k := range keys {
			prims.WriteString(fmt.Sprintf(` %s="%s"`, k, escape(p.Attrs[k])))
		}
		prims.WriteString("/>")
	}
	return fmt.Sprintf(`<filter id="%s">%s</filter>`, escape(f.ID), prims.String())
}

// ============================================================
// Attributes
// ============================================================

func paint(p models.Paint) string {
	if p.Gradient != nil {
		return "url(#" + p.Gradient.ID + ")"
	}
	return p.Value
}

func styleAttrs(s models.Style) string {
	var b strings.Builder
	if v := paint(s.Fill); v != "" {
		b.WriteString(fmt.Sprintf(` fill="%s"`, escape(v)))
	}
	if v := paint(s.Stroke); v != "" {
		b.WriteString(fmt.Sprintf(` stroke="%s"`, escape(v)))
	}
	if s.StrokeWidth > 0 {
		b.WriteString(fmt.Sprintf(` stroke-width="%s"`, formatFloat(s.StrokeWidth)))
	}
	opacity := func(name string, v float64) {
		if v > 0 && v < 1 {
			b.WriteString(fmt.Sprintf(` %s="%s"`, name, formatFloat(v)))
		}
	}
	opacity("opacity", s.Opacity)
	opacity("fill-opacity", s.FillOpacity)
	opacity("stroke-opacity", s.StrokeOpacity)
	if s.Filter != "" {
		b.WriteString(fmt.Sprintf(` filter="%s"`, escape(s.Filter)))
	}
	return b.String()
}

func textStyleAttrs(s models.TextStyle) string {
	var b strings.Builder
	if s.FontFamily != "" {
		b.WriteString(fmt.Sprintf(` font-family="%s"`, escape(s.FontFamily)))
	}
	if s.FontSize > 0 {
		b.WriteString(fmt.Sprintf(` font-size="%s"`, formatFloat(s.FontSize)))
	}
	if s.FontWeight != "" {
		b.WriteString(fmt.Sprintf(` font-weight="%s"`, escape(s.FontWeight)))
	}
	if v := paint(s.Fill); v != "" {
		b.WriteString(fmt.Sprintf(` fill="%s"`, escape(v)))
	}
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(x, y float64) string {
	return formatFloat(x) + " " + formatFloat(y)
}
