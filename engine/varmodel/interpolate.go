package varmodel

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/core/font/ot"
)

// Normalize maps a user-space location to normalized coordinates. Axes
// missing from loc take their default. Tags not naming an axis of f and
// coordinates outside an axis' range are errors.
func Normalize(f *babelfont.Font, loc *Location) (NormLocation, error) {
	var err error
	loc.Each(func(tag ot.Tag, v float64) {
		if err != nil {
			return
		}
		a := f.Axis(tag.String())
		if a == nil {
			err = fmt.Errorf("font has no axis %q", tag.String())
			return
		}
		if v < a.Min || v > a.Max {
			err = fmt.Errorf("%s=%s outside of axis range [%s, %s]",
				a.Tag, formatFloat(v), formatFloat(a.Min), formatFloat(a.Max))
		}
	})
	if err != nil {
		return nil, err
	}
	norm := make(NormLocation, len(f.Axes))
	for i := range f.Axes {
		a := &f.Axes[i]
		v, ok := loc.Get(ot.T(a.Tag))
		if !ok {
			continue
		}
		if n := normalizeValue(v, a); n != 0 {
			norm[a.Tag] = n
		}
	}
	return norm, nil
}

func normalizeUser(user map[string]float64, f *babelfont.Font) NormLocation {
	norm := make(NormLocation, len(user))
	for tag, v := range user {
		if a := f.Axis(tag); a != nil {
			if n := normalizeValue(v, a); n != 0 {
				norm[tag] = n
			}
		}
	}
	return norm
}

func normalizeValue(v float64, a *babelfont.Axis) float64 {
	var n float64
	switch {
	case v < a.Default && a.Default > a.Min:
		n = (v - a.Default) / (a.Default - a.Min)
	case v > a.Default && a.Max > a.Default:
		n = (v - a.Default) / (a.Max - a.Default)
	}
	return clamp(n, -1, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// InterpolateGlyph computes the layer of a glyph at a location of the
// font's design space. Masters without a layer for the glyph do not take
// part in the interpolation; the default master must have one.
//
// The resulting layer carries the complete user-space location, with all
// axes of the font, and no master ID.
func InterpolateGlyph(f *babelfont.Font, glyphName string, loc *Location) (*babelfont.Layer, error) {
	g := f.Glyph(glyphName)
	if g == nil {
		return nil, fmt.Errorf("glyph %q not found", glyphName)
	}
	norm, err := Normalize(f, loc)
	if err != nil {
		return nil, err
	}
	dm := f.DefaultMaster()
	if dm == nil {
		return nil, fmt.Errorf("font has no default master")
	}
	base := g.Layer(dm.ID)
	if base == nil {
		return nil, fmt.Errorf("glyph %q has no layer for the default master %q", glyphName, dm.ID)
	}
	var locs []NormLocation
	var values [][]float64
	for i := range f.Masters {
		m := &f.Masters[i]
		l := g.Layer(m.ID)
		if l == nil {
			continue
		}
		if err := compatible(base, l); err != nil {
			return nil, fmt.Errorf("glyph %q: masters %q and %q are incompatible: %w",
				glyphName, dm.ID, m.ID, err)
		}
		locs = append(locs, normalizeUser(f.MasterLocation(m), f))
		values = append(values, flatten(l))
	}
	axisOrder := make([]string, len(f.Axes))
	for i, a := range f.Axes {
		axisOrder[i] = a.Tag
	}
	model, err := NewModel(locs, axisOrder)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", glyphName, err)
	}
	v, err := model.Interpolate(norm, values)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", glyphName, err)
	}
	out := unflatten(base, v)
	out.Master = ""
	out.Location = make(map[string]float64, len(f.Axes))
	for _, a := range f.Axes {
		out.Location[a.Tag] = a.Default
		if x, ok := loc.Get(ot.T(a.Tag)); ok {
			out.Location[a.Tag] = x
		}
	}
	tracer().Debugf("interpolated glyph %s at %s from %d masters", glyphName, loc, len(locs))
	return &out, nil
}

// compatible checks that two layers have the same structure.
func compatible(a, b *babelfont.Layer) error {
	if len(a.Shapes) != len(b.Shapes) {
		return fmt.Errorf("%d shapes vs. %d shapes", len(a.Shapes), len(b.Shapes))
	}
	for i := range a.Shapes {
		sa, sb := &a.Shapes[i], &b.Shapes[i]
		if sa.IsComponent() != sb.IsComponent() {
			return fmt.Errorf("shape %d is a component in one master only", i)
		}
		if sa.IsComponent() {
			if sa.Ref != sb.Ref {
				return fmt.Errorf("shape %d refers to %q vs. %q", i, sa.Ref, sb.Ref)
			}
			continue
		}
		if len(sa.Nodes) != len(sb.Nodes) {
			return fmt.Errorf("shape %d has %d nodes vs. %d nodes", i, len(sa.Nodes), len(sb.Nodes))
		}
		for j := range sa.Nodes {
			if sa.Nodes[j].Type != sb.Nodes[j].Type {
				return fmt.Errorf("shape %d, node %d: type %s vs. %s", i, j, sa.Nodes[j].Type, sb.Nodes[j].Type)
			}
		}
	}
	if len(a.Anchors) != len(b.Anchors) {
		return fmt.Errorf("%d anchors vs. %d anchors", len(a.Anchors), len(b.Anchors))
	}
	for i := range a.Anchors {
		if a.Anchors[i].Name != b.Anchors[i].Name {
			return fmt.Errorf("anchor %d is %q vs. %q", i, a.Anchors[i].Name, b.Anchors[i].Name)
		}
	}
	return nil
}

// flatten writes all interpolatable values of a layer into a vector:
// width, node coordinates, component transformations and anchor positions.
func flatten(l *babelfont.Layer) []float64 {
	v := []float64{l.Width}
	for _, s := range l.Shapes {
		if s.IsComponent() {
			t := babelfont.Identity
			if s.Transform != nil {
				t = *s.Transform
			}
			v = append(v, t[:]...)
			continue
		}
		for _, n := range s.Nodes {
			v = append(v, n.X, n.Y)
		}
	}
	for _, a := range l.Anchors {
		v = append(v, a.X, a.Y)
	}
	return v
}

// unflatten builds a layer with the structure of proto and the values of v.
func unflatten(proto *babelfont.Layer, v []float64) babelfont.Layer {
	l := proto.Clone()
	l.Width, v = v[0], v[1:]
	for i := range l.Shapes {
		s := &l.Shapes[i]
		if s.IsComponent() {
			var t babelfont.Transform
			copy(t[:], v[:6])
			v = v[6:]
			s.Transform = &t
			continue
		}
		for j := range s.Nodes {
			s.Nodes[j].X, s.Nodes[j].Y = v[0], v[1]
			v = v[2:]
		}
	}
	for i := range l.Anchors {
		l.Anchors[i].X, l.Anchors[i].Y = v[0], v[1]
		v = v[2:]
	}
	return l
}
