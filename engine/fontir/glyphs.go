package fontir

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
)

const notdefName = ".notdef"

// glyph is a glyph as it goes into the binary font.
type glyph struct {
	name       string // design name
	postName   string // name written to 'post'
	codepoints []rune
	advance    uint16
	contours   []contour
	xMin, yMin int16
	xMax, yMax int16
}

func (g *glyph) empty() bool {
	return len(g.contours) == 0
}

func (g *glyph) numPoints() int {
	n := 0
	for _, c := range g.contours {
		n += len(c)
	}
	return n
}

func (g *glyph) computeBounds() {
	first := true
	for _, c := range g.contours {
		for _, p := range c {
			if first {
				g.xMin, g.xMax, g.yMin, g.yMax = p.x, p.x, p.y, p.y
				first = false
				continue
			}
			if p.x < g.xMin {
				g.xMin = p.x
			}
			if p.x > g.xMax {
				g.xMax = p.x
			}
			if p.y < g.yMin {
				g.yMin = p.y
			}
			if p.y > g.yMax {
				g.yMax = p.y
			}
		}
	}
}

// buildGlyphs creates the glyph order: .notdef first, followed by the
// exported glyphs in source order.
func (c *compiler) buildGlyphs() error {
	f := c.font
	if nd := f.Glyph(notdefName); nd != nil {
		g, err := c.buildGlyph(nd)
		if err != nil {
			return err
		}
		c.glyphs = append(c.glyphs, g)
	} else {
		tracer().Debugf("font has no %s glyph, synthesizing one", notdefName)
		c.glyphs = append(c.glyphs, c.synthesizeNotdef())
	}
	for i := range f.Glyphs {
		src := &f.Glyphs[i]
		if src.Name == notdefName {
			continue
		}
		if !src.IsExported() {
			tracer().Debugf("skipping non-exporting glyph %s", src.Name)
			continue
		}
		g, err := c.buildGlyph(src)
		if err != nil {
			return err
		}
		c.glyphs = append(c.glyphs, g)
	}
	if len(c.glyphs) > 0xffff {
		return fmt.Errorf("too many glyphs: %d", len(c.glyphs))
	}
	c.gid = make(map[string]uint16, len(c.glyphs))
	for i, g := range c.glyphs {
		c.gid[g.name] = uint16(i)
	}
	return c.assignPostNames()
}

func (c *compiler) buildGlyph(src *babelfont.Glyph) (*glyph, error) {
	l := src.Layer(c.master.ID)
	if l == nil {
		return nil, fmt.Errorf("glyph %q has no layer for default master %q", src.Name, c.master.ID)
	}
	if l.Width < 0 || l.Width > 0xffff {
		return nil, fmt.Errorf("glyph %q: advance width %g out of range", src.Name, l.Width)
	}
	g := &glyph{
		name:       src.Name,
		codepoints: src.Codepoints,
		advance:    uint16(math.Round(l.Width)),
	}
	if c.opts.SkipOutlines {
		return g, nil
	}
	shapes, err := c.font.DecomposedShapes(src, c.master.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range shapes {
		if !s.Closed {
			tracer().Debugf("glyph %s: skipping open path", src.Name)
			continue
		}
		ct, err := pathToContour(s.Nodes)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", src.Name, err)
		}
		if len(ct) < 2 {
			continue
		}
		g.contours = append(g.contours, ct)
	}
	g.computeBounds()
	return g, nil
}

// synthesizeNotdef creates the customary box glyph.
func (c *compiler) synthesizeNotdef() *glyph {
	upm := c.font.Upm
	w, h, s := upm/2, upm*7/10, upm/20
	box := func(x0, y0, x1, y1 int) contour {
		return contour{
			{x: int16(x0), y: int16(y0), on: true},
			{x: int16(x0), y: int16(y1), on: true},
			{x: int16(x1), y: int16(y1), on: true},
			{x: int16(x1), y: int16(y0), on: true},
		}
	}
	g := &glyph{name: notdefName, advance: uint16(w)}
	if !c.opts.SkipOutlines {
		outer := box(s, 0, w-s, h)
		inner := reverse(box(2*s, s, w-2*s, h-s))
		g.contours = []contour{outer, inner}
		g.computeBounds()
	}
	return g
}

// --- Glyph names -----------------------------------------------------------

func (c *compiler) assignPostNames() error {
	used := make(map[string]bool, len(c.glyphs))
	for i, g := range c.glyphs {
		name := g.name
		if !c.opts.DontUseProductionNames {
			name = productionName(c.font.Glyph(g.name), g)
		}
		if len(name) > 255 {
			return fmt.Errorf("glyph name too long: %q", name)
		}
		unique := name
		for n := 1; used[unique]; n++ {
			unique = fmt.Sprintf("%s#%d", name, n)
		}
		used[unique] = true
		c.glyphs[i].postName = unique
	}
	return nil
}

// productionName returns the explicit production name of a glyph, the
// design name if it is usable as a production name, or a uniXXXX name
// derived from the glyph's first codepoint.
func productionName(src *babelfont.Glyph, g *glyph) string {
	if src != nil && src.ProductionName != "" {
		return src.ProductionName
	}
	if isProductionSafe(g.name) || len(g.codepoints) == 0 {
		return g.name
	}
	if r := g.codepoints[0]; r <= 0xffff {
		return fmt.Sprintf("uni%04X", r)
	}
	return fmt.Sprintf("u%05X", g.codepoints[0])
}

func isProductionSafe(name string) bool {
	if name == "" || !utf8.ValidString(name) || (name[0] >= '0' && name[0] <= '9') {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '.' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}
