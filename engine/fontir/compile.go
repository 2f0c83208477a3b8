package fontir

import (
	"errors"
	"sort"
	"strings"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/core/font/ot"
)

type compiler struct {
	font    *babelfont.Font
	master  *babelfont.Master
	opts    Options
	glyphs  []*glyph
	gid     map[string]uint16
	metrics verticalMetrics
	context int // maximum length of a substitution context, for OS/2
	tables  map[ot.Tag][]byte
}

type verticalMetrics struct {
	ascender, descender, lineGap int
	xHeight, capHeight           int
}

// Compile builds a static TrueType font from the default master of f.
func Compile(f *babelfont.Font, opts Options) ([]byte, error) {
	if f == nil {
		return nil, errors.New("no font to compile")
	}
	dm := f.DefaultMaster()
	if dm == nil {
		return nil, errors.New("font has no default master")
	}
	tracer().Debugf("compiling %q from master %s with options %s", f.Names.FamilyName, dm.ID, opts)
	c := &compiler{
		font:   f,
		master: dm,
		opts:   opts,
		tables: make(map[ot.Tag][]byte),
	}
	if err := c.buildGlyphs(); err != nil {
		return nil, err
	}
	c.metrics = c.verticalMetrics()
	if !opts.SkipFeatures {
		if err := c.compileFeatures(); err != nil {
			return nil, err
		}
	}
	if !opts.SkipKerning {
		c.compileKerning()
	}
	if !opts.SkipOutlines {
		c.tables[ot.T("glyf")], c.tables[ot.T("loca")] = c.glyfAndLoca()
	}
	cmap, err := c.cmap()
	if err != nil {
		return nil, err
	}
	c.tables[ot.T("cmap")] = cmap
	c.tables[ot.T("hmtx")] = c.hmtx()
	c.tables[ot.T("hhea")] = c.hhea()
	c.tables[ot.T("maxp")] = c.maxp()
	c.tables[ot.T("OS/2")] = c.os2()
	c.tables[ot.T("name")] = c.name()
	c.tables[ot.T("post")] = c.post()
	c.tables[ot.T("head")] = c.head()
	font := assemble(c.tables)
	tracer().Infof("compiled %q: %d glyphs, %d tables, %d bytes",
		f.Names.FamilyName, len(c.glyphs), len(c.tables), len(font))
	return font, nil
}

func (c *compiler) verticalMetrics() verticalMetrics {
	upm := c.font.Upm
	vm := verticalMetrics{
		ascender:  upm * 8 / 10,
		descender: -upm * 2 / 10,
		xHeight:   upm / 2,
		capHeight: upm * 7 / 10,
	}
	if c.opts.SkipMetrics {
		return vm
	}
	m := c.master.Metrics
	set := func(dst *int, key string) {
		if v, ok := m[key]; ok {
			*dst = int(roundInt(v))
		}
	}
	set(&vm.ascender, "ascender")
	set(&vm.descender, "descender")
	set(&vm.lineGap, "lineGap")
	set(&vm.xHeight, "xHeight")
	set(&vm.capHeight, "capHeight")
	return vm
}

// macStyle returns head.macStyle and OS/2.fsSelection for the font's
// style name.
func (c *compiler) styleBits() (macStyle, fsSelection uint16) {
	style := strings.ToLower(c.font.Names.StyleName)
	if strings.Contains(style, "bold") {
		macStyle |= 1
		fsSelection |= 1 << 5
	}
	if strings.Contains(style, "italic") {
		macStyle |= 2
		fsSelection |= 1
	}
	if fsSelection == 0 {
		fsSelection = 1 << 6 // REGULAR
	}
	return macStyle, fsSelection | 1<<7 // USE_TYPO_METRICS
}

// --- Font assembly ---------------------------------------------------------

// assemble writes the table directory followed by the tables in tag order,
// and patches head.checkSumAdjustment.
func assemble(tables map[ot.Tag][]byte) []byte {
	tags := make([]ot.Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := len(tags)
	var font buffer
	font.u32(0x00010000)
	font.u16(uint16(n))
	sr, es, rs := searchParams(n, 16)
	font.u16(sr)
	font.u16(es)
	font.u16(rs)
	offset := 12 + 16*n
	headOffset := -1
	for _, tag := range tags {
		data := tables[tag]
		if tag == ot.T("head") {
			headOffset = offset
		}
		font.tag(tag)
		font.u32(checksum(data))
		font.u32(uint32(offset))
		font.u32(uint32(len(data)))
		offset += (len(data) + 3) &^ 3
	}
	for _, tag := range tags {
		data := tables[tag]
		font.bytes(data)
		font.zeros(((len(data) + 3) &^ 3) - len(data))
	}
	if headOffset >= 0 {
		font.setU32(headOffset+8, 0xb1b0afba-checksum(font))
	}
	return font
}
