package models

// ============================================================
// Deep copies
// ============================================================

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func (c Command) Clone() Command { return c }

func (sp SubPath) Clone() SubPath {
	out := sp
	if sp.Commands != nil {
		out.Commands = make([]Command, len(sp.Commands))
		copy(out.Commands, sp.Commands)
	}
	return out
}

func (p Paint) Clone() Paint {
	if p.Gradient != nil {
		g := p.Gradient.Clone()
		p.Gradient = &g
	}
	return p
}

func (s Style) Clone() Style {
	s.Fill = s.Fill.Clone()
	s.Stroke = s.Stroke.Clone()
	return s
}

func (p Path) Clone() Path {
	out := p
	out.Style = p.Style.Clone()
	if p.SubPaths != nil {
		out.SubPaths = make([]SubPath, len(p.SubPaths))
		for i, sp := range p.SubPaths {
			out.SubPaths[i] = sp.Clone()
		}
	}
	return out
}

func (ts TextStyle) Clone() TextStyle {
	ts.Fill = ts.Fill.Clone()
	return ts
}

func (t Text) Clone() Text {
	out := t
	out.Style = t.Style.Clone()
	if t.Spans != nil {
		out.Spans = make([]Span, len(t.Spans))
		for i, s := range t.Spans {
			out.Spans[i] = s
			if s.Style != nil {
				st := s.Style.Clone()
				out.Spans[i].Style = &st
			}
		}
	}
	return out
}

func (g Group) Clone() Group {
	out := g
	if g.Children != nil {
		out.Children = make([]GroupChild, len(g.Children))
		copy(out.Children, g.Children)
	}
	return out
}

func (g Gradient) Clone() Gradient {
	out := g
	if g.Stops != nil {
		out.Stops = make([]GradientStop, len(g.Stops))
		copy(out.Stops, g.Stops)
	}
	return out
}

func (f Filter) Clone() Filter {
	out := f
	if f.Primitives != nil {
		out.Primitives = make([]FilterPrimitive, len(f.Primitives))
		for i, p := range f.Primitives {
			out.Primitives[i] = FilterPrimitive{Type: p.Type}
			if p.Attrs != nil {
				out.Primitives[i].Attrs = make(map[string]string, len(p.Attrs))
				for k, v := range p.Attrs {
					out.Primitives[i].Attrs[k] = v
				}
			}
		}
	}
	return out
}

// Clone returns a deep copy; the result shares no memory with d.
func (d Document) Clone() Document {
	out := Document{}
	if d.Paths != nil {
		out.Paths = make([]Path, len(d.Paths))
		for i, p := range d.Paths {
			out.Paths[i] = p.Clone()
		}
	}
	if d.Texts != nil {
		out.Texts = make([]Text, len(d.Texts))
		for i, t := range d.Texts {
			out.Texts[i] = t.Clone()
		}
	}
	if d.TextPaths != nil {
		out.TextPaths = make([]TextPath, len(d.TextPaths))
		for i, tp := range d.TextPaths {
			out.TextPaths[i] = tp
			out.TextPaths[i].Style = tp.Style.Clone()
		}
	}
	if d.Groups != nil {
		out.Groups = make([]Group, len(d.Groups))
		for i, g := range d.Groups {
			out.Groups[i] = g.Clone()
		}
	}
	if d.Images != nil {
		out.Images = make([]Image, len(d.Images))
		copy(out.Images, d.Images)
	}
	if d.Gradients != nil {
		out.Gradients = make([]Gradient, len(d.Gradients))
		for i, g := range d.Gradients {
			out.Gradients[i] = g.Clone()
		}
	}
	if d.Filters != nil {
		out.Filters = make([]Filter, len(d.Filters))
		for i, f := range d.Filters {
			out.Filters[i] = f.Clone()
		}
	}
	if d.Animations != nil {
		out.Animations = make([]Animation, len(d.Animations))
		copy(out.Animations, d.Animations)
	}
	return out
}
