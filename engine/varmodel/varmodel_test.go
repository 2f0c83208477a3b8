package varmodel

import (
	"testing"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/core/font/babelfont/babeltest"
	"github.com/npillmayer/fontbridge/core/font/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	loc := NewLocation().Set(ot.T("wght"), 550).Set(ot.T("ital"), 1).Set(ot.T("opsz"), 12)
	assert.Equal(t, 3, loc.Len())
	assert.Equal(t, []ot.Tag{ot.T("ital"), ot.T("opsz"), ot.T("wght")}, loc.Tags())
	v, ok := loc.Get(ot.T("wght"))
	assert.True(t, ok)
	assert.Equal(t, 550.0, v)
	_, ok = loc.Get(ot.T("wdth"))
	assert.False(t, ok)
	loc.Set(ot.T("wght"), 600)
	assert.Equal(t, map[string]float64{"ital": 1, "opsz": 12, "wght": 600}, loc.Map())
	assert.Equal(t, "{ital=1 opsz=12 wght=600}", loc.String())
	var none *Location
	assert.Equal(t, 0, none.Len())
	assert.Empty(t, none.Map())
}

func TestModelOrderAndWeights(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	locations := []NormLocation{
		{"wght": 100}, {"wght": -100}, {"wght": -180}, {"wdth": .3},
		{"wght": 120, "wdth": .3}, {"wght": 120, "wdth": .2}, {},
		{"wght": 180, "wdth": .3}, {"wght": 180},
	}
	m, err := NewModel(locations, []string{"wght"})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []NormLocation{
		{}, {"wght": -100}, {"wght": -180}, {"wght": 100}, {"wght": 180},
		{"wdth": .3}, {"wdth": .3, "wght": 180}, {"wdth": .3, "wght": 120},
		{"wdth": .2, "wght": 120},
	}, m.locations)
	expected := []map[int]float64{
		{}, {0: 1}, {0: 1}, {0: 1}, {0: 1}, {0: 1},
		{0: 1, 4: 1, 5: 1},
		{0: 1, 3: 0.75, 4: 0.25, 5: 1, 6: 2.0 / 3},
		{0: 1, 3: 0.75, 4: 0.25, 5: 2.0 / 3, 6: 4.0 / 9, 7: 2.0 / 3},
	}
	if assert.Len(t, m.deltaWeights, len(expected)) {
		for i, w := range expected {
			assert.Len(t, m.deltaWeights[i], len(w), "weights of master %d", i)
			for j, x := range w {
				assert.InDelta(t, x, m.deltaWeights[i][j], 1e-9, "weight %d of master %d", j, i)
			}
		}
	}
}

func TestModelInterpolation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	m, err := NewModel([]NormLocation{{"wght": 1}, {}}, []string{"wght"})
	if !assert.NoError(t, err) {
		return
	}
	values := [][]float64{{200, 10}, {100, 10}}
	v, err := m.Interpolate(NormLocation{"wght": 0.25}, values)
	assert.NoError(t, err)
	assert.Equal(t, []float64{125, 10}, v)
	v, _ = m.Interpolate(NormLocation{}, values)
	assert.Equal(t, []float64{100, 10}, v)
	_, err = m.Interpolate(NormLocation{}, values[:1])
	assert.Error(t, err)
	_, err = NewModel([]NormLocation{{"wght": 1}}, nil)
	assert.Error(t, err, "model without base master")
	_, err = NewModel([]NormLocation{{}, {"wght": 0}}, nil)
	assert.Error(t, err, "duplicate master location")
}

func TestNormalize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, babeltest.TwoMasters)
	n, err := Normalize(f, NewLocation().Set(ot.T("wght"), 550))
	assert.NoError(t, err)
	assert.Equal(t, NormLocation{"wght": 0.5}, n)
	n, err = Normalize(f, nil)
	assert.NoError(t, err)
	assert.Empty(t, n)
	_, err = Normalize(f, NewLocation().Set(ot.T("wdth"), 100))
	assert.Error(t, err)
	_, err = Normalize(f, NewLocation().Set(ot.T("wght"), 800))
	assert.Error(t, err)
	a := &babelfont.Axis{Tag: "wdth", Min: 50, Default: 100, Max: 100}
	assert.Equal(t, -0.5, normalizeValue(75, a))
	assert.Equal(t, 0.0, normalizeValue(100, a))
}

func TestInterpolateGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, babeltest.TwoMasters)
	l, err := InterpolateGlyph(f, "A", NewLocation().Set(ot.T("wght"), 550))
	if assert.NoError(t, err) {
		assert.Equal(t, 650.0, l.Width)
		assert.Equal(t, "", l.Master)
		assert.Equal(t, map[string]float64{"wght": 550}, l.Location)
		assert.Equal(t, 325.0, l.Shapes[0].Nodes[1].X)
		assert.Equal(t, babelfont.Line, l.Shapes[0].Nodes[1].Type)
		assert.Equal(t, 325.0, l.Anchors[0].X)
	}
	l, err = InterpolateGlyph(f, "A", nil)
	if assert.NoError(t, err) {
		light := f.Glyph("A").Layer("light")
		assert.Equal(t, light.Shapes, l.Shapes)
		assert.Equal(t, map[string]float64{"wght": 400}, l.Location)
	}
	l, err = InterpolateGlyph(f, "D", NewLocation().Set(ot.T("wght"), 700))
	if assert.NoError(t, err) {
		assert.Equal(t, 740.0, l.Width)
		assert.Equal(t, "C", l.Shapes[0].Ref)
		assert.Equal(t, babelfont.Transform{1, 0, 0, 1, 50, 0}, *l.Shapes[0].Transform)
	}
	assert.Equal(t, 600.0, f.Glyph("A").Layer("light").Width, "font must not change")
}

func TestInterpolateGlyphErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, babeltest.TwoMasters)
	_, err := InterpolateGlyph(f, "Z", nil)
	assert.Error(t, err)
	_, err = InterpolateGlyph(f, "A", NewLocation().Set(ot.T("wdth"), 100))
	assert.Error(t, err)
	//
	g := f.Glyph("B")
	g.Layers[1].Shapes[0].Nodes = g.Layers[1].Shapes[0].Nodes[:3]
	_, err = InterpolateGlyph(f, "B", nil)
	assert.Error(t, err, "incompatible masters")
	//
	g = f.Glyph("C")
	g.Layers = g.Layers[1:]
	_, err = InterpolateGlyph(f, "C", nil)
	assert.Error(t, err, "no default master layer")
}

func TestSparseMaster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, babeltest.TwoMasters)
	g := f.Glyph("B")
	g.Layers = g.Layers[:1]
	l, err := InterpolateGlyph(f, "B", NewLocation().Set(ot.T("wght"), 700))
	if assert.NoError(t, err) {
		assert.Equal(t, 600.0, l.Width)
	}
}

const intermediateMaster = `{
  "upm": 1000,
  "axes": [{"name": "Weight", "tag": "wght", "min": 100, "default": 400, "max": 900}],
  "masters": [
    {"id": "regular", "location": {"wght": 400}},
    {"id": "thin", "location": {"wght": 100}},
    {"id": "semi", "location": {"wght": 600}},
    {"id": "black", "location": {"wght": 900}}
  ],
  "glyphs": [{"name": "I", "codepoints": [73], "layers": [
    {"master": "regular", "width": 400}, {"master": "thin", "width": 100},
    {"master": "semi", "width": 650}, {"master": "black", "width": 700}
  ]}]
}`

const cornerMaster = `{
  "upm": 1000,
  "axes": [
    {"name": "Weight", "tag": "wght", "min": 0, "default": 0, "max": 100},
    {"name": "Width", "tag": "wdth", "min": 0, "default": 0, "max": 100}
  ],
  "masters": [
    {"id": "origin", "location": {"wght": 0, "wdth": 0}},
    {"id": "bold", "location": {"wght": 100, "wdth": 0}},
    {"id": "wide", "location": {"wght": 0, "wdth": 100}},
    {"id": "boldwide", "location": {"wght": 100, "wdth": 100}}
  ],
  "glyphs": [{"name": "I", "codepoints": [73], "layers": [
    {"master": "origin", "width": 100}, {"master": "bold", "width": 200},
    {"master": "wide", "width": 300}, {"master": "boldwide", "width": 500}
  ]}]
}`

func TestNormalizeWithAsymmetricAxis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, intermediateMaster)
	n, err := Normalize(f, NewLocation().Set(ot.T("wght"), 250))
	assert.NoError(t, err)
	assert.Equal(t, NormLocation{"wght": -0.5}, n)
	n, err = Normalize(f, NewLocation().Set(ot.T("wght"), 650))
	assert.NoError(t, err)
	assert.InDelta(t, 0.5, n["wght"], 1e-9)
}

func TestIntermediateMaster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, intermediateMaster)
	for wght, width := range map[float64]float64{
		100: 100, 250: 250, 400: 400, 500: 525, 600: 650, 750: 675, 900: 700,
	} {
		l, err := InterpolateGlyph(f, "I", NewLocation().Set(ot.T("wght"), wght))
		if assert.NoError(t, err) {
			assert.InDelta(t, width, l.Width, 1e-9, "width at wght=%g", wght)
		}
	}
}

func TestCornerMaster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.interpolate")
	defer teardown()
	//
	f := babeltest.Parse(t, cornerMaster)
	at := func(wght, wdth float64) float64 {
		l, err := InterpolateGlyph(f, "I", NewLocation().Set(ot.T("wght"), wght).Set(ot.T("wdth"), wdth))
		if !assert.NoError(t, err) {
			return 0
		}
		return l.Width
	}
	assert.InDelta(t, 100.0, at(0, 0), 1e-9)
	assert.InDelta(t, 500.0, at(100, 100), 1e-9)
	assert.InDelta(t, 150.0, at(50, 0), 1e-9)
	assert.InDelta(t, 275.0, at(50, 50), 1e-9)
	assert.InDelta(t, 400.0, at(50, 100), 1e-9)
}
