package filter

import (
	"fmt"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
)

// NotDef is the name of the glyph for missing characters. It survives every
// subsetting.
const NotDef = ".notdef"

// RetainGlyphs removes all glyphs from a font which are not named in a list.
//
// Components referring to removed glyphs are decomposed, kerning pairs
// mentioning removed glyphs are dropped and removed glyphs are taken out of
// feature classes. Glyph order of the font is preserved.
type RetainGlyphs struct {
	names []string
}

var _ Filter = (*RetainGlyphs)(nil)

// NewRetainGlyphs creates a filter retaining the named glyphs.
func NewRetainGlyphs(names []string) *RetainGlyphs {
	return &RetainGlyphs{names: append([]string(nil), names...)}
}

// Apply subsets f in place. If a name of the list is not present in f,
// Apply fails and leaves f unchanged.
func (r *RetainGlyphs) Apply(f *babelfont.Font) error {
	keep := make(map[string]bool, len(r.names)+1)
	for _, name := range r.names {
		if f.Glyph(name) == nil {
			return fmt.Errorf("glyph %q not found in font", name)
		}
		keep[name] = true
	}
	if f.Glyph(NotDef) != nil {
		keep[NotDef] = true
	}
	// decompose first, as decomposition needs the glyphs about to be removed
	decomposed := make(map[string][]babelfont.Layer)
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		if !keep[g.Name] || !hasDroppedComponent(g, keep) {
			continue
		}
		layers, err := decomposeDropped(f, g, keep)
		if err != nil {
			return err
		}
		decomposed[g.Name] = layers
	}
	retained := make([]babelfont.Glyph, 0, len(keep))
	for _, g := range f.Glyphs {
		if !keep[g.Name] {
			continue
		}
		if layers, ok := decomposed[g.Name]; ok {
			tracer().Debugf("subsetting decomposes components of glyph %s", g.Name)
			g.Layers = layers
		}
		retained = append(retained, g)
	}
	tracer().Infof("subsetting retains %d of %d glyphs", len(retained), len(f.Glyphs))
	f.Glyphs = retained
	for i := range f.Masters {
		m := &f.Masters[i]
		kerning := m.Kerning[:0]
		for _, k := range m.Kerning {
			if keep[k.Left] && keep[k.Right] {
				kerning = append(kerning, k)
			}
		}
		m.Kerning = kerning
	}
	if f.Features != nil {
		for name, members := range f.Features.Classes {
			filtered := make([]string, 0, len(members))
			for _, g := range members {
				if keep[g] {
					filtered = append(filtered, g)
				}
			}
			f.Features.Classes[name] = filtered
		}
	}
	return nil
}

func hasDroppedComponent(g *babelfont.Glyph, keep map[string]bool) bool {
	for _, l := range g.Layers {
		for _, s := range l.Shapes {
			if s.IsComponent() && !keep[s.Ref] {
				return true
			}
		}
	}
	return false
}

func decomposeDropped(f *babelfont.Font, g *babelfont.Glyph, keep map[string]bool) ([]babelfont.Layer, error) {
	layers := make([]babelfont.Layer, len(g.Layers))
	for i, l := range g.Layers {
		layers[i] = l.Clone()
		shapes := make([]babelfont.Shape, 0, len(l.Shapes))
		for j := range l.Shapes {
			s := &layers[i].Shapes[j]
			if !s.IsComponent() || keep[s.Ref] {
				shapes = append(shapes, *s)
				continue
			}
			flat, err := f.DecomposeComponent(s, l.Master)
			if err != nil {
				return nil, fmt.Errorf("cannot decompose glyph %q: %w", g.Name, err)
			}
			shapes = append(shapes, flat...)
		}
		layers[i].Shapes = shapes
	}
	return layers, nil
}
