package babelfont

import "fmt"

// maxComponentDepth limits nesting of components. Deeper nesting is
// treated as a cycle.
const maxComponentDepth = 32

// DecomposeComponent flattens a component shape of a layer belonging to
// master masterID into path shapes. Nested components are resolved
// recursively, with transformations accumulated.
func (f *Font) DecomposeComponent(s *Shape, masterID string) ([]Shape, error) {
	if !s.IsComponent() {
		return []Shape{*s}, nil
	}
	return f.decompose(s, masterID, Identity, 0)
}

// DecomposedShapes returns the shapes of a glyph's layer for master
// masterID with all components flattened into paths.
func (f *Font) DecomposedShapes(g *Glyph, masterID string) ([]Shape, error) {
	l := g.Layer(masterID)
	if l == nil {
		return nil, fmt.Errorf("glyph %q has no layer for master %q", g.Name, masterID)
	}
	var shapes []Shape
	for i := range l.Shapes {
		s, err := f.DecomposeComponent(&l.Shapes[i], masterID)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", g.Name, err)
		}
		shapes = append(shapes, s...)
	}
	return shapes, nil
}

func (f *Font) decompose(s *Shape, masterID string, outer Transform, depth int) ([]Shape, error) {
	if depth > maxComponentDepth {
		return nil, fmt.Errorf("component nesting too deep at %q, possible cycle", s.Ref)
	}
	base := f.Glyph(s.Ref)
	if base == nil {
		return nil, fmt.Errorf("component refers to missing glyph %q", s.Ref)
	}
	l := base.Layer(masterID)
	if l == nil {
		return nil, fmt.Errorf("component base %q has no layer for master %q", s.Ref, masterID)
	}
	t := outer
	if s.Transform != nil {
		t = outer.Concat(*s.Transform)
	}
	var shapes []Shape
	for i := range l.Shapes {
		inner := &l.Shapes[i]
		if inner.IsComponent() {
			flat, err := f.decompose(inner, masterID, t, depth+1)
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, flat...)
			continue
		}
		shapes = append(shapes, Shape{
			Nodes:  inner.Nodes.transformed(t),
			Closed: inner.Closed,
		})
	}
	return shapes, nil
}

func (nodes Nodes) transformed(t Transform) Nodes {
	out := make(Nodes, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].X, out[i].Y = t.Apply(n.X, n.Y)
	}
	return out
}
