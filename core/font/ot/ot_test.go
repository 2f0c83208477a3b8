package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.font")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cvt")
	if tag.String() != "cvt " {
		t.Errorf("expected tag T(cvt) to be padded, is %q", tag.String())
	}
}

func TestParseTag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.font")
	defer teardown()
	//
	for _, s := range []string{"wght", "wdth", "opsz", "XOPQ", "cvt ", "ab  "} {
		tag, err := ParseTag(s)
		if assert.NoError(t, err, "expected %q to be a valid tag", s) {
			assert.Equal(t, s, tag.String())
		}
	}
	for _, s := range []string{"", "ww", "wghtx", " wgh", "w ht", "wgh\x00", "wghä"} {
		_, err := ParseTag(s)
		assert.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestParseDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.font")
	defer teardown()
	//
	head := make([]byte, 56)
	binary.BigEndian.PutUint16(head[18:], 1000)
	binary.BigEndian.PutUint16(head[50:], 0) // short loca
	maxp := make([]byte, 8)
	binary.BigEndian.PutUint16(maxp[4:], 2)
	loca := []byte{0, 0, 0, 0, 0, 6} // glyph 0 empty, glyph 1 has 12 bytes
	otf, err := Parse(buildFont(map[string][]byte{"head": head, "loca": loca, "maxp": maxp}))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []Tag{T("head"), T("loca"), T("maxp")}, otf.TableTags())
	assert.True(t, otf.HasTable(T("loca")))
	assert.False(t, otf.HasTable(T("glyf")))
	assert.Equal(t, uint16(1000), otf.Head.UnitsPerEm)
	assert.Equal(t, 2, otf.MaxP.NumGlyphs)
	assert.Equal(t, uint32(0), otf.Loca.GlyphDataSize(0))
	assert.Equal(t, uint32(12), otf.Loca.GlyphDataSize(1))
	assert.Equal(t, uint32(0), otf.Loca.GlyphDataSize(7))
}

func TestParseRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.font")
	defer teardown()
	//
	_, err := Parse([]byte("not a font at all"))
	assert.Error(t, err)
	_, err = Parse(nil)
	assert.Error(t, err)
}

// buildFont writes a minimal table directory. Tags are expected in ascending order
// when iterating sorted keys.
func buildFont(tables map[string][]byte) []byte {
	tags := []string{}
	for _, k := range []string{"head", "loca", "maxp"} {
		if _, ok := tables[k]; ok {
			tags = append(tags, k)
		}
	}
	out := make([]byte, 12+16*len(tags))
	binary.BigEndian.PutUint32(out[0:], 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(len(tags)))
	for i, tag := range tags {
		data := tables[tag]
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
		rec := out[12+16*i:]
		copy(rec[0:4], tag)
		binary.BigEndian.PutUint32(rec[8:], uint32(len(out)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		out = append(out, data...)
	}
	return out
}
