package babelfont

// Font is the in-memory representation of a font's sources. It is the
// value which is held in the bridge's cache slot, subsetted by filters and
// handed to the compiler and the interpolation engine.
//
// A Font is not safe for concurrent modification; clients owning a Font
// either hold it exclusively or work on a Clone.
type Font struct {
	Upm      int       `json:"upm"`
	Version  [2]int    `json:"version"`
	Names    Names     `json:"names"`
	Axes     []Axis    `json:"axes,omitempty"`
	Masters  []Master  `json:"masters"`
	Glyphs   []Glyph   `json:"glyphs"`
	Features *Features `json:"features,omitempty"`
}

// Names holds the naming metadata of a font.
type Names struct {
	FamilyName   string `json:"family_name"`
	StyleName    string `json:"style_name,omitempty"`
	Designer     string `json:"designer,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Copyright    string `json:"copyright,omitempty"`
	License      string `json:"license,omitempty"`
}

// Axis is a design-variation axis. Min, Default and Max are user-space
// coordinates.
type Axis struct {
	Name    string  `json:"name"`
	Tag     string  `json:"tag"`
	Min     float64 `json:"min"`
	Default float64 `json:"default"`
	Max     float64 `json:"max"`
}

// Master is a source at a fixed location in design space. Location maps axis
// tags to user-space coordinates; axes missing from the map sit at their
// default.
type Master struct {
	ID       string             `json:"id"`
	Name     string             `json:"name,omitempty"`
	Location map[string]float64 `json:"location,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Kerning  []Kern             `json:"kerning,omitempty"`
}

// Kern is a kerning pair between two glyphs.
type Kern struct {
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Value float64 `json:"value"`
}

// Glyph is a named glyph with one layer per master (sparse masters may
// omit layers).
type Glyph struct {
	Name           string  `json:"name"`
	ProductionName string  `json:"production_name,omitempty"`
	Codepoints     []rune  `json:"codepoints,omitempty"`
	Category       string  `json:"category,omitempty"`
	Exported       *bool   `json:"exported,omitempty"`
	Layers         []Layer `json:"layers"`
}

// IsExported is true unless the glyph has explicitly been marked as
// non-exporting.
func (g *Glyph) IsExported() bool {
	return g.Exported == nil || *g.Exported
}

// Layer is the outline data of a glyph for one master, or, for interpolated
// layers, at one location.
type Layer struct {
	Master   string             `json:"master,omitempty"`
	Location map[string]float64 `json:"location,omitempty"`
	Width    float64            `json:"width"`
	Shapes   []Shape            `json:"shapes,omitempty"`
	Anchors  []Anchor           `json:"anchors,omitempty"`
}

// Shape is either a path (Nodes set) or a component (Ref set).
type Shape struct {
	Nodes     Nodes      `json:"nodes,omitempty"`
	Closed    bool       `json:"closed,omitempty"`
	Ref       string     `json:"ref,omitempty"`
	Transform *Transform `json:"transform,omitempty"`
}

// IsComponent is true for shapes referencing another glyph.
func (s *Shape) IsComponent() bool {
	return s.Ref != ""
}

// Transform is an affine transformation [xx xy yx yy dx dy], applied as
//
//	x' = xx*x + yx*y + dx
//	y' = xy*x + yy*y + dy
type Transform [6]float64

// Identity is the neutral transformation.
var Identity = Transform{1, 0, 0, 1, 0, 0}

// Apply transforms a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// Concat returns the transformation which first applies inner, then t.
func (t Transform) Concat(inner Transform) Transform {
	return Transform{
		t[0]*inner[0] + t[2]*inner[1],
		t[1]*inner[0] + t[3]*inner[1],
		t[0]*inner[2] + t[2]*inner[3],
		t[1]*inner[2] + t[3]*inner[3],
		t[0]*inner[4] + t[2]*inner[5] + t[4],
		t[1]*inner[4] + t[3]*inner[5] + t[5],
	}
}

// Anchor is a named attachment point.
type Anchor struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Features holds feature code and the glyph classes it refers to. Class
// names are given without the leading '@'.
type Features struct {
	Classes map[string][]string `json:"classes,omitempty"`
	Code    string              `json:"code,omitempty"`
}

// --- Lookups ---------------------------------------------------------------

// Glyph returns the glyph with a given name, or nil.
func (f *Font) Glyph(name string) *Glyph {
	for i := range f.Glyphs {
		if f.Glyphs[i].Name == name {
			return &f.Glyphs[i]
		}
	}
	return nil
}

// GlyphNames returns the names of all glyphs in font order.
func (f *Font) GlyphNames() []string {
	names := make([]string, len(f.Glyphs))
	for i := range f.Glyphs {
		names[i] = f.Glyphs[i].Name
	}
	return names
}

// Master returns the master with a given ID, or nil.
func (f *Font) Master(id string) *Master {
	for i := range f.Masters {
		if f.Masters[i].ID == id {
			return &f.Masters[i]
		}
	}
	return nil
}

// Axis returns the axis with a given tag, or nil.
func (f *Font) Axis(tag string) *Axis {
	for i := range f.Axes {
		if f.Axes[i].Tag == tag {
			return &f.Axes[i]
		}
	}
	return nil
}

// DefaultMaster returns the master sitting at the default location of every
// axis. For fonts without axes this is the first master. Fonts which passed
// Parse always have a default master.
func (f *Font) DefaultMaster() *Master {
	for i := range f.Masters {
		if f.isDefaultLocation(f.Masters[i].Location) {
			return &f.Masters[i]
		}
	}
	return nil
}

func (f *Font) isDefaultLocation(loc map[string]float64) bool {
	for _, a := range f.Axes {
		if v, ok := loc[a.Tag]; ok && v != a.Default {
			return false
		}
	}
	return true
}

// MasterLocation returns a master's complete user-space location, with
// missing axes filled in with their defaults.
func (f *Font) MasterLocation(m *Master) map[string]float64 {
	loc := make(map[string]float64, len(f.Axes))
	for _, a := range f.Axes {
		loc[a.Tag] = a.Default
		if v, ok := m.Location[a.Tag]; ok {
			loc[a.Tag] = v
		}
	}
	return loc
}

// Layer returns the glyph's layer for a master, or nil.
func (g *Glyph) Layer(masterID string) *Layer {
	for i := range g.Layers {
		if g.Layers[i].Master == masterID {
			return &g.Layers[i]
		}
	}
	return nil
}
