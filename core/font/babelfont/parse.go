package babelfont

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/npillmayer/fontbridge/core/font/ot"
)

const defaultUpm = 1000

// Parse decodes a font description from its JSON text and checks it for
// consistency. Errors carry the decoder's or validator's diagnostic.
func Parse(text string) (*Font, error) {
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return nil, errors.New("empty font description")
	}
	f := &Font{}
	if err := json.Unmarshal([]byte(text), f); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed font %q: %d glyphs, %d masters, %d axes",
		f.Names.FamilyName, len(f.Glyphs), len(f.Masters), len(f.Axes))
	return f, nil
}

// Validate checks the structural consistency of a font and fills in
// defaults for missing optional values.
func (f *Font) Validate() error {
	if f.Upm == 0 {
		f.Upm = defaultUpm
	}
	if f.Upm < 16 || f.Upm > 16384 {
		return fmt.Errorf("units per em out of range: %d", f.Upm)
	}
	for i := range f.Axes {
		a := &f.Axes[i]
		if _, err := ot.ParseTag(a.Tag); err != nil {
			return fmt.Errorf("axis %q: %w", a.Name, err)
		}
		if f.Axis(a.Tag) != a {
			return fmt.Errorf("duplicate axis tag %q", a.Tag)
		}
		if !(a.Min <= a.Default && a.Default <= a.Max) {
			return fmt.Errorf("axis %s: expected min <= default <= max, have %g, %g, %g",
				a.Tag, a.Min, a.Default, a.Max)
		}
	}
	if len(f.Masters) == 0 {
		return errors.New("font has no masters")
	}
	for i := range f.Masters {
		m := &f.Masters[i]
		if m.ID == "" {
			return fmt.Errorf("master #%d has no id", i)
		}
		if f.Master(m.ID) != m {
			return fmt.Errorf("duplicate master id %q", m.ID)
		}
		for tag, v := range m.Location {
			a := f.Axis(tag)
			if a == nil {
				return fmt.Errorf("master %q: location refers to unknown axis %q", m.ID, tag)
			}
			if v < a.Min || v > a.Max {
				return fmt.Errorf("master %q: %s=%g outside of axis range", m.ID, tag, v)
			}
		}
	}
	if f.DefaultMaster() == nil {
		return errors.New("no master at the default location")
	}
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		if g.Name == "" {
			return fmt.Errorf("glyph #%d has no name", i)
		}
		if f.Glyph(g.Name) != g {
			return fmt.Errorf("duplicate glyph name %q", g.Name)
		}
		for j := range g.Layers {
			l := &g.Layers[j]
			if f.Master(l.Master) == nil {
				return fmt.Errorf("glyph %q: layer #%d refers to unknown master %q", g.Name, j, l.Master)
			}
			if g.Layer(l.Master) != l {
				return fmt.Errorf("glyph %q: more than one layer for master %q", g.Name, l.Master)
			}
			for k := range l.Shapes {
				if s := &l.Shapes[k]; !s.IsComponent() && len(s.Nodes) == 0 {
					return fmt.Errorf("glyph %q: shape #%d is neither a path nor a component", g.Name, k)
				}
			}
		}
	}
	return nil
}

// --- Layer serialization ---------------------------------------------------

// MarshalLayer serializes a layer to JSON text. Output is deterministic, and
// UnmarshalLayer restores an equal layer.
func MarshalLayer(l *Layer) (string, error) {
	if l == nil {
		return "", errors.New("cannot serialize nil layer")
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalLayer decodes a layer serialized by MarshalLayer.
func UnmarshalLayer(text string) (*Layer, error) {
	l := &Layer{}
	if err := json.Unmarshal([]byte(text), l); err != nil {
		return nil, err
	}
	return l, nil
}
