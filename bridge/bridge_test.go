package bridge

import (
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/core/font/babelfont/babeltest"
	"github.com/npillmayer/fontbridge/core/font/ot"
	"github.com/npillmayer/fontbridge/core/option"
	"github.com/npillmayer/fontbridge/engine/fontir"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

func TestStoreThenCompileEqualsCompileOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	once, err := b.CompileOnce(babeltest.TwoMasters, nil)
	assert.NoError(t, err)
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	cached, err := b.CompileCached(nil)
	assert.NoError(t, err)
	assert.Equal(t, once, cached)
	payload := map[string]interface{}{"skip_kerning": true}
	once, _ = b.CompileOnce(babeltest.TwoMasters, payload)
	cached, _ = b.CompileCached(payload)
	assert.Equal(t, once, cached)
}

func TestClearMakesOperationsFail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(NewSlot())
	_, err := b.CompileCached(nil)
	assert.Equal(t, core.ENOTCACHED, core.Code(err), "fresh slot is empty")
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	assert.False(t, b.Slot().IsEmpty())
	b.Clear()
	assert.True(t, b.Slot().IsEmpty())
	_, err = b.CompileCached(nil)
	assert.Equal(t, core.ENOTCACHED, core.Code(err))
	_, err = b.InterpolateGlyph("A", `{"wght": 500}`)
	assert.Equal(t, core.ENOTCACHED, core.Code(err))
	_, err = b.InterpolateGlyph("A", `not even json`)
	assert.Equal(t, core.ENOTCACHED, core.Code(err), "empty slot is reported before bad location")
	_, err = b.Interpolate("A", nil)
	assert.Equal(t, core.ENOTCACHED, core.Code(err))
}

func TestStoreFailureKeepsCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.Simple))
	err := b.Store(`{"upm": `)
	assert.Equal(t, core.EPARSE, core.Code(err))
	assert.Contains(t, err.Error(), "JSON parse error")
	_, err = b.CompileCached(nil)
	assert.NoError(t, err)
}

func TestSubsetDoesNotMutateCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	before, err := b.InterpolateGlyph("D", `{"wght": 550}`)
	assert.NoError(t, err)
	full, err := b.CompileCached(nil)
	assert.NoError(t, err)
	_, err = b.CompileCached(map[string]interface{}{"subset_glyphs": []interface{}{"A", "D"}})
	assert.NoError(t, err)
	after, err := b.InterpolateGlyph("D", `{"wght": 550}`)
	assert.NoError(t, err)
	assert.Equal(t, before, after)
	again, err := b.CompileCached(nil)
	assert.NoError(t, err)
	assert.Equal(t, full, again)
}

func TestEmptySubsetIsNoOp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	plain, err := b.CompileOnce(babeltest.Simple, nil)
	assert.NoError(t, err)
	for _, payload := range []interface{}{
		map[string]interface{}{"subset_glyphs": []interface{}{}},
		map[string]interface{}{"subset_glyphs": nil},
		map[string]interface{}{"subset_glyphs": "A"},
		map[string]interface{}{"subset_glyphs": []interface{}{1, true}},
	} {
		out, err := b.CompileOnce(babeltest.Simple, payload)
		assert.NoError(t, err)
		assert.Equal(t, plain, out, "payload %v", payload)
	}
}

func TestSubsetRetainsListedGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	out, err := b.CompileOnce(babeltest.Simple, map[string]interface{}{
		"subset_glyphs": []interface{}{"A", "B"},
	})
	if !assert.NoError(t, err) {
		return
	}
	sf, err := sfnt.Parse(out)
	if !assert.NoError(t, err) {
		return
	}
	var buf sfnt.Buffer
	var names []string
	for i := 0; i < sf.NumGlyphs(); i++ {
		name, _ := sf.GlyphName(&buf, sfnt.GlyphIndex(i))
		names = append(names, name)
	}
	assert.Equal(t, []string{".notdef", "A", "B"}, names)
	otf, err := ot.Parse(out)
	if assert.NoError(t, err) {
		for gid := ot.GlyphIndex(1); gid < 3; gid++ {
			assert.NotZero(t, otf.Loca.GlyphDataSize(gid), "glyph %d must have an outline", gid)
		}
	}
}

// gsubGlyphs returns the feature tags of a GSUB table and, per lookup, its
// type and every glyph ID it references.
func gsubGlyphs(b []byte) (tags []string, kinds []int, glyphs [][]int) {
	u16 := func(at int) int { return int(binary.BigEndian.Uint16(b[at:])) }
	fl, ll := u16(6), u16(8)
	for i := 0; i < u16(fl); i++ {
		tags = append(tags, string(b[fl+2+6*i:fl+6+6*i]))
	}
	for i := 0; i < u16(ll); i++ {
		lookup := ll + u16(ll+2+2*i)
		sub := lookup + u16(lookup+6)
		cov := sub + u16(sub+2)
		var ids []int
		for k := 0; k < u16(cov+2); k++ {
			ids = append(ids, u16(cov+4+2*k))
		}
		kind := u16(lookup)
		switch kind {
		case 1:
			for k := 0; k < u16(sub+4); k++ {
				ids = append(ids, u16(sub+6+2*k))
			}
		case 4:
			for k := 0; k < u16(sub+4); k++ {
				set := sub + u16(sub+6+2*k)
				for m := 0; m < u16(set); m++ {
					lig := set + u16(set+2+2*m)
					ids = append(ids, u16(lig))
					for c := 1; c < u16(lig+2); c++ {
						ids = append(ids, u16(lig+2+2*c))
					}
				}
			}
		}
		kinds = append(kinds, kind)
		glyphs = append(glyphs, ids)
	}
	return
}

func TestSubsetPrunesFeaturesAndKerning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	subset := func(glyphs ...interface{}) (*sfnt.Font, *ot.Font) {
		out, err := b.CompileOnce(babeltest.TwoMasters, map[string]interface{}{"subset_glyphs": glyphs})
		if !assert.NoError(t, err, "subset %v", glyphs) {
			t.FailNow()
		}
		sf, err := sfnt.Parse(out)
		assert.NoError(t, err)
		otf, err := ot.Parse(out)
		assert.NoError(t, err)
		return sf, otf
	}
	assertReferencesInRange := func(otf *ot.Font, glyphs [][]int) {
		for _, ids := range glyphs {
			for _, id := range ids {
				assert.Less(t, id, otf.MaxP.NumGlyphs, "lookup references glyph %d", id)
			}
		}
	}
	var buf sfnt.Buffer
	// A B: ligature A B -> D and ss01 (@caps -> C) lose their outputs
	sf, otf := subset("A", "B")
	assert.Equal(t, 3, sf.NumGlyphs())
	assert.False(t, otf.HasTable(ot.T("GSUB")))
	k, err := sf.Kern(&buf, 1, 2, fixed.I(1000), xfont.HintingNone)
	assert.NoError(t, err)
	assert.Equal(t, fixed.I(-40), k)
	// A C: @caps shrinks to [A], kerning pair A/B is gone
	sf, otf = subset("A", "C")
	assert.Equal(t, 3, sf.NumGlyphs())
	assert.False(t, otf.HasTable(ot.T("kern")))
	if assert.True(t, otf.HasTable(ot.T("GSUB"))) {
		tags, kinds, glyphs := gsubGlyphs(otf.Table(ot.T("GSUB")).Binary())
		assert.Equal(t, []string{"ss01"}, tags)
		assert.Equal(t, []int{1}, kinds)
		assert.Equal(t, [][]int{{1, 2}}, glyphs)
		assertReferencesInRange(otf, glyphs)
	}
	// A B D: D keeps its outline with C decomposed, the ligature survives
	sf, otf = subset("A", "B", "D")
	assert.Equal(t, 4, sf.NumGlyphs())
	segs, err := sf.LoadGlyph(&buf, 3, fixed.I(1000), nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, segs)
	if assert.True(t, otf.HasTable(ot.T("GSUB"))) {
		tags, kinds, glyphs := gsubGlyphs(otf.Table(ot.T("GSUB")).Binary())
		assert.Equal(t, []string{"liga"}, tags)
		assert.Equal(t, []int{4}, kinds)
		assert.Equal(t, [][]int{{1, 3, 2}}, glyphs)
		assertReferencesInRange(otf, glyphs)
	}
	// single glyphs
	for _, g := range []string{"A", "C", "D"} {
		sf, otf = subset(g)
		assert.Equal(t, 2, sf.NumGlyphs())
		assert.False(t, otf.HasTable(ot.T("GSUB")), "subset [%s]", g)
		assert.False(t, otf.HasTable(ot.T("kern")), "subset [%s]", g)
	}
}

func TestSubsetFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	_, err := b.CompileOnce(babeltest.Simple, map[string]interface{}{
		"subset_glyphs": []interface{}{"A", "Q"},
	})
	assert.Equal(t, core.ESUBSET, core.Code(err))
	assert.Contains(t, err.Error(), `"Q"`)
	assert.NoError(t, b.Store(babeltest.Simple))
	_, err = b.CompileCached(map[string]interface{}{"subset_glyphs": []interface{}{"Q"}})
	assert.Equal(t, core.ESUBSET, core.Code(err))
	_, err = b.CompileCached(nil)
	assert.NoError(t, err, "failed subsetting must not affect the cache")
}

func TestCompileErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	_, err := b.CompileOnce("", nil)
	assert.Equal(t, core.EPARSE, core.Code(err))
	f := babeltest.Parse(t, babeltest.Simple)
	f.Glyphs[1].Codepoints = []rune{'A'}
	b.Slot().Store(f)
	_, err = b.CompileCached(nil)
	assert.Equal(t, core.ECOMPILE, core.Code(err))
	assert.Contains(t, core.UserMessage(err), "U+0041")
	_, err = b.CompileGlyphs("{}")
	assert.Equal(t, core.ECOMPILE, core.Code(err))
	assert.Contains(t, err.Error(), "CompileOnce")
}

func TestResolveIsTotal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	for _, payload := range []interface{}{
		nil, 42, "skip_kerning", []interface{}{true},
		map[string]interface{}{},
		map[string]interface{}{"skip_kerning": "yes", "skip_features": 1, "unknown": true},
		option.Payload{"skip_metrics": nil},
	} {
		r := Resolve(payload)
		assert.Equal(t, fontir.Options{}, r.Options, "payload %v", payload)
		assert.False(t, r.IsSubsetting())
	}
	r := Resolve(map[string]interface{}{
		"skip_kerning":              true,
		"skip_features":             true,
		"skip_metrics":              true,
		"skip_outlines":             true,
		"dont_use_production_names": true,
		"subset_glyphs":             []interface{}{"A", 3, "B"},
	})
	assert.Equal(t, fontir.Options{
		SkipKerning: true, SkipFeatures: true, SkipMetrics: true,
		SkipOutlines: true, DontUseProductionNames: true,
	}, r.Options)
	assert.Equal(t, []string{"A", "B"}, r.Subset)
	r = Resolve(map[string]bool{"skip_outlines": true})
	assert.True(t, r.Options.SkipOutlines)
}

func TestLocationRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	in := map[string]interface{}{"wght": 550.0, "wdth": 75, "opsz": float32(12), "XHGT": 0.5}
	loc, err := ParseLocation(in)
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]float64{"wght": 550, "wdth": 75, "opsz": 12, "XHGT": 0.5}, loc.Map())
	}
	loc, err = ParseLocationText(`{"wght": 550, "ital": 1}`)
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]float64{"wght": 550, "ital": 1}, loc.Map())
	}
	loc, err = ParseLocationText(`{}`)
	assert.NoError(t, err)
	assert.Equal(t, 0, loc.Len())
}

func TestLocationErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	_, err := ParseLocation(map[string]interface{}{"wght": 400, "ww": 1})
	assert.Equal(t, core.EINVALIDTAG, core.Code(err))
	assert.Contains(t, err.Error(), `"ww"`)
	_, err = ParseLocation(map[string]interface{}{"wght": "heavy"})
	assert.Equal(t, core.ELOCATION, core.Code(err))
	_, err = ParseLocation(map[string]interface{}{"ww": 1, "wght": "x"})
	assert.Equal(t, core.EINVALIDTAG, core.Code(err), "invalid tag wins over a bad value")
	assert.Contains(t, err.Error(), `"ww"`)
	_, err = ParseLocationText(`{"aaaa": "x", "zz": 1}`)
	assert.Equal(t, core.EINVALIDTAG, core.Code(err))
	assert.Contains(t, err.Error(), `"zz"`)
	for _, text := range []string{``, `null`, `[1, 2]`, `{"wght": }`, `{"wght": "x"}`, `{} {}`} {
		_, err = ParseLocationText(text)
		assert.Equal(t, core.ELOCATION, core.Code(err), "location text %q", text)
	}
}

func TestInterpolate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	at550, err := b.InterpolateGlyph("A", `{"wght": 550.0}`)
	assert.NoError(t, err)
	at400, err := b.InterpolateGlyph("A", `{"wght": 400.0}`)
	assert.NoError(t, err)
	assert.NotEqual(t, at550, at400)
	layer, err := babelfont.UnmarshalLayer(at550)
	if assert.NoError(t, err) {
		assert.Equal(t, 650.0, layer.Width)
		assert.Equal(t, map[string]float64{"wght": 550}, layer.Location)
	}
	same, err := b.Interpolate("A", map[string]interface{}{"wght": 550})
	assert.NoError(t, err)
	assert.Equal(t, at550, same)
}

func TestInterpolateErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	_, err := b.InterpolateGlyph("A", `{"ww": 500}`)
	assert.Equal(t, core.EINVALIDTAG, core.Code(err))
	assert.Contains(t, core.UserMessage(err), `"ww"`)
	_, err = b.InterpolateGlyph("A", `{"wght": [500]}`)
	assert.Equal(t, core.ELOCATION, core.Code(err))
	_, err = b.InterpolateGlyph("Z", `{"wght": 500}`)
	assert.Equal(t, core.EINTERPOLATE, core.Code(err))
	_, err = b.InterpolateGlyph("A", `{"wght": 900}`)
	assert.Equal(t, core.EINTERPOLATE, core.Code(err))
	_, err = b.InterpolateGlyph("A", `{"wdth": 100}`)
	assert.Equal(t, core.EINTERPOLATE, core.Code(err))
}

func TestPanicPoisonsSlot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.Simple))
	_, err := WithCached(b.Slot(), func(f *babelfont.Font) (int, error) {
		panic("boom")
	})
	assert.Equal(t, core.EINTERNAL, core.Code(err))
	_, err = b.CompileCached(nil)
	assert.Equal(t, core.EINTERNAL, core.Code(err), "slot stays poisoned")
	b.Clear()
	_, err = b.CompileCached(nil)
	assert.Equal(t, core.ENOTCACHED, core.Code(err))
	assert.NoError(t, b.Store(babeltest.Simple))
	_, err = b.CompileCached(nil)
	assert.NoError(t, err)
}

func TestWithCachedPassesErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	s := NewSlot()
	s.Store(babeltest.Parse(t, babeltest.Simple))
	boom := errors.New("boom")
	n, err := WithCached(s, func(f *babelfont.Font) (int, error) {
		return len(f.Glyphs), boom
	})
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentRequests(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	b := New(nil)
	assert.NoError(t, b.Store(babeltest.TwoMasters))
	want, err := b.CompileCached(nil)
	assert.NoError(t, err)
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				out, err := b.CompileCached(nil)
				if err == nil && string(out) != string(want) {
					err = errors.New("compiled output differs")
				}
				errs <- err
			case 1:
				_, err := b.CompileCached(map[string]interface{}{"subset_glyphs": []interface{}{"A"}})
				errs <- err
			case 2:
				_, err := b.InterpolateGlyph("C", `{"wght": 600}`)
				errs <- err
			case 3:
				errs <- b.Store(babeltest.TwoMasters)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(Version(), "fontbridge v"))
}
