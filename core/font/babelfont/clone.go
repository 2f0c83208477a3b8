package babelfont

// Clone returns a deep copy of the font. The copy shares no mutable state
// with the original.
func (f *Font) Clone() *Font {
	if f == nil {
		return nil
	}
	c := &Font{
		Upm:     f.Upm,
		Version: f.Version,
		Names:   f.Names,
	}
	if f.Axes != nil {
		c.Axes = make([]Axis, len(f.Axes))
		copy(c.Axes, f.Axes)
	}
	if f.Masters != nil {
		c.Masters = make([]Master, len(f.Masters))
		for i := range f.Masters {
			c.Masters[i] = f.Masters[i].clone()
		}
	}
	if f.Glyphs != nil {
		c.Glyphs = make([]Glyph, len(f.Glyphs))
		for i := range f.Glyphs {
			c.Glyphs[i] = f.Glyphs[i].Clone()
		}
	}
	if f.Features != nil {
		c.Features = &Features{Code: f.Features.Code}
		if f.Features.Classes != nil {
			c.Features.Classes = make(map[string][]string, len(f.Features.Classes))
			for k, v := range f.Features.Classes {
				c.Features.Classes[k] = append([]string(nil), v...)
			}
		}
	}
	return c
}

func (m Master) clone() Master {
	c := m
	c.Location = cloneMap(m.Location)
	c.Metrics = cloneMap(m.Metrics)
	if m.Kerning != nil {
		c.Kerning = make([]Kern, len(m.Kerning))
		copy(c.Kerning, m.Kerning)
	}
	return c
}

// Clone returns a deep copy of a glyph.
func (g Glyph) Clone() Glyph {
	c := g
	if g.Codepoints != nil {
		c.Codepoints = append([]rune(nil), g.Codepoints...)
	}
	if g.Exported != nil {
		e := *g.Exported
		c.Exported = &e
	}
	if g.Layers != nil {
		c.Layers = make([]Layer, len(g.Layers))
		for i := range g.Layers {
			c.Layers[i] = g.Layers[i].Clone()
		}
	}
	return c
}

// Clone returns a deep copy of a layer.
func (l Layer) Clone() Layer {
	c := l
	c.Location = cloneMap(l.Location)
	if l.Shapes != nil {
		c.Shapes = make([]Shape, len(l.Shapes))
		for i, s := range l.Shapes {
			c.Shapes[i] = s
			if s.Nodes != nil {
				c.Shapes[i].Nodes = append(Nodes(nil), s.Nodes...)
			}
			if s.Transform != nil {
				t := *s.Transform
				c.Shapes[i].Transform = &t
			}
		}
	}
	if l.Anchors != nil {
		c.Anchors = append([]Anchor(nil), l.Anchors...)
	}
	return c
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
