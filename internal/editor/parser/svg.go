package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v3/log"
	"github.com/tdewolff/parse/v2/strconv"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

var ErrNotSVG = errors.New("document is not an svg")

// ============================================================
// SVG Import
// ============================================================

// ImportSVG reads every <path> of an SVG document, including those nested
// in groups, into editor paths. Paths whose data cannot be parsed are
// skipped with a warning. Ids are left empty for the store to assign.
func ImportSVG(r io.Reader) ([]models.Path, error) {
	decoder := xml.NewDecoder(r)
	var paths []models.Path
	sawRoot := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode svg: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if el.Name.Local != "svg" {
				return nil, ErrNotSVG
			}
			sawRoot = true
			continue
		}
		if el.Name.Local != "path" {
			continue
		}

		attrs := attrMap(el.Attr)
		subPaths, err := ParsePathData(attrs["d"])
		if err != nil {
			log.Warnf("[PARSER] skipping path %q: %v", attrs["id"], err)
			continue
		}
		p := models.Path{Name: attrs["id"], Style: styleFrom(attrs)}
		for _, cmds := range subPaths {
			p.SubPaths = append(p.SubPaths, models.SubPath{Commands: cmds})
		}
		paths = append(paths, p)
	}
	if !sawRoot {
		return nil, ErrNotSVG
	}
	return paths, nil
}

// attrMap flattens attributes and the inline style declaration; style
// declarations win over presentation attributes.
func attrMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = strings.TrimSpace(a.Value)
	}
	for _, decl := range strings.Split(out["style"], ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

func styleFrom(attrs map[string]string) models.Style {
	s := models.Style{
		Fill:   models.Paint{Value: "#000000"},
		Stroke: models.Paint{Value: "none"},
	}
	if v, ok := attrs["fill"]; ok && v != "" {
		s.Fill.Value = v
	}
	if v, ok := attrs["stroke"]; ok && v != "" {
		s.Stroke.Value = v
	}
	s.StrokeWidth = number(attrs["stroke-width"], 1)
	s.Opacity = number(attrs["opacity"], 0)
	s.FillOpacity = number(attrs["fill-opacity"], 0)
	s.StrokeOpacity = number(attrs["stroke-opacity"], 0)
	if v := attrs["filter"]; v != "" {
		s.Filter = v
	}
	return s
}

func number(v string, def float64) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return def
	}
	f, n := strconv.ParseFloat([]byte(v))
	if n != len(v) {
		return def
	}
	return f
}
