package fontir

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/fontbridge/core/font/ot"
	"golang.org/x/text/encoding/unicode"
)

func roundInt(x float64) int {
	return int(math.Round(x))
}

// --- head ------------------------------------------------------------------

func (c *compiler) head() []byte {
	var b buffer
	b.u32(0x00010000)
	b.u32(fontRevision(c.font.Version))
	b.u32(0) // checkSumAdjustment, patched after assembly
	b.u32(0x5f0f3cf5)
	b.u16(0x0003) // baseline at y=0, lsb at x=0
	b.u16(uint16(c.font.Upm))
	b.zeros(16) // created and modified; fixed for reproducible output
	xMin, yMin, xMax, yMax := c.fontBounds()
	b.i16(xMin)
	b.i16(yMin)
	b.i16(xMax)
	b.i16(yMax)
	macStyle, _ := c.styleBits()
	b.u16(macStyle)
	b.u16(6) // lowestRecPPEM
	b.i16(2) // fontDirectionHint
	b.i16(1) // indexToLocFormat: long offsets
	b.i16(0) // glyphDataFormat
	return b
}

// fontRevision encodes version [major, minor] as Fixed major.minor, with
// minor counted in thousandths.
func fontRevision(v [2]int) uint32 {
	return uint32(int32(math.Round((float64(v[0]) + float64(v[1])/1000) * 65536)))
}

func (c *compiler) fontBounds() (xMin, yMin, xMax, yMax int16) {
	first := true
	for _, g := range c.glyphs {
		if g.empty() {
			continue
		}
		if first {
			xMin, yMin, xMax, yMax = g.xMin, g.yMin, g.xMax, g.yMax
			first = false
			continue
		}
		if g.xMin < xMin {
			xMin = g.xMin
		}
		if g.yMin < yMin {
			yMin = g.yMin
		}
		if g.xMax > xMax {
			xMax = g.xMax
		}
		if g.yMax > yMax {
			yMax = g.yMax
		}
	}
	return
}

// --- hhea, hmtx ------------------------------------------------------------

func (c *compiler) hhea() []byte {
	var advMax uint16
	minLsb, minRsb, maxExtent := 0, 0, 0
	first := true
	for _, g := range c.glyphs {
		if g.advance > advMax {
			advMax = g.advance
		}
		if g.empty() {
			continue
		}
		lsb, rsb := int(g.xMin), int(g.advance)-int(g.xMax)
		extent := int(g.xMax)
		if first || lsb < minLsb {
			minLsb = lsb
		}
		if first || rsb < minRsb {
			minRsb = rsb
		}
		if first || extent > maxExtent {
			maxExtent = extent
		}
		first = false
	}
	var b buffer
	b.u32(0x00010000)
	b.i16(clampI16(c.metrics.ascender))
	b.i16(clampI16(c.metrics.descender))
	b.i16(clampI16(c.metrics.lineGap))
	b.u16(advMax)
	b.i16(clampI16(minLsb))
	b.i16(clampI16(minRsb))
	b.i16(clampI16(maxExtent))
	b.i16(1) // caretSlopeRise
	b.i16(0) // caretSlopeRun
	b.i16(0) // caretOffset
	b.zeros(8)
	b.i16(0) // metricDataFormat
	b.u16(uint16(len(c.glyphs)))
	return b
}

func (c *compiler) hmtx() []byte {
	var b buffer
	for _, g := range c.glyphs {
		b.u16(g.advance)
		b.i16(g.xMin)
	}
	return b
}

// --- maxp ------------------------------------------------------------------

func (c *compiler) maxp() []byte {
	maxPoints, maxContours := 0, 0
	for _, g := range c.glyphs {
		if n := g.numPoints(); n > maxPoints {
			maxPoints = n
		}
		if n := len(g.contours); n > maxContours {
			maxContours = n
		}
	}
	var b buffer
	b.u32(0x00010000)
	b.u16(uint16(len(c.glyphs)))
	b.u16(clampU16(maxPoints))
	b.u16(clampU16(maxContours))
	b.u16(0) // maxCompositePoints
	b.u16(0) // maxCompositeContours
	b.u16(2) // maxZones
	b.zeros(16)
	return b
}

// --- glyf, loca ------------------------------------------------------------

func (c *compiler) glyfAndLoca() (glyf, loca []byte) {
	var g, l buffer
	for _, gl := range c.glyphs {
		l.u32(uint32(len(g)))
		if gl.empty() {
			continue
		}
		g.bytes(encodeSimpleGlyph(gl))
		g.zeros(((len(g) + 3) &^ 3) - len(g))
	}
	l.u32(uint32(len(g)))
	return g, l
}

// encodeSimpleGlyph writes a glyph description with full 16-bit coordinate
// deltas and no instructions.
func encodeSimpleGlyph(g *glyph) []byte {
	var b buffer
	b.i16(int16(len(g.contours)))
	b.i16(g.xMin)
	b.i16(g.yMin)
	b.i16(g.xMax)
	b.i16(g.yMax)
	end := -1
	for _, ct := range g.contours {
		end += len(ct)
		b.u16(uint16(end))
	}
	b.u16(0) // instructionLength
	for _, ct := range g.contours {
		for _, p := range ct {
			if p.on {
				b.u8(1)
			} else {
				b.u8(0)
			}
		}
	}
	var x, y int16
	for _, ct := range g.contours {
		for _, p := range ct {
			b.i16(p.x - x)
			x = p.x
		}
	}
	for _, ct := range g.contours {
		for _, p := range ct {
			b.i16(p.y - y)
			y = p.y
		}
	}
	return b
}

// --- cmap ------------------------------------------------------------------

type cmapEntry struct {
	r   rune
	gid uint16
}

func (c *compiler) cmap() ([]byte, error) {
	owner := make(map[rune]string)
	var entries []cmapEntry
	for i, g := range c.glyphs {
		for _, r := range g.codepoints {
			if other, ok := owner[r]; ok {
				return nil, fmt.Errorf("codepoint U+%04X assigned to both %q and %q", r, other, g.name)
			}
			owner[r] = g.name
			entries = append(entries, cmapEntry{r: r, gid: uint16(i)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].r < entries[j].r })
	bmp := entries[:0:0]
	full := false
	for _, e := range entries {
		if e.r < 0xffff {
			bmp = append(bmp, e)
		} else if e.r > 0xffff {
			full = true
		}
	}
	f4 := cmapFormat4(bmp)
	var b buffer
	b.u16(0) // version
	if !full {
		b.u16(2)
		b.u16(0) // Unicode BMP
		b.u16(3)
		b.u32(20)
		b.u16(3) // Windows Unicode BMP
		b.u16(1)
		b.u32(20)
		b.bytes(f4)
		return b, nil
	}
	f12 := cmapFormat12(entries)
	off4, off12 := uint32(4+4*8), uint32(4+4*8+len(f4))
	b.u16(4)
	for _, rec := range []struct {
		platform, encoding uint16
		offset             uint32
	}{{0, 3, off4}, {0, 4, off12}, {3, 1, off4}, {3, 10, off12}} {
		b.u16(rec.platform)
		b.u16(rec.encoding)
		b.u32(rec.offset)
	}
	b.bytes(f4)
	b.bytes(f12)
	return b, nil
}

type cmapSegment struct {
	start, end rune
	delta      uint16
}

// segments merges runs of consecutive codepoints mapping to consecutive
// glyphs.
func segments(entries []cmapEntry) []cmapSegment {
	var segs []cmapSegment
	for _, e := range entries {
		delta := uint16(int(e.gid) - int(e.r))
		if n := len(segs); n > 0 && segs[n-1].end+1 == e.r && segs[n-1].delta == delta {
			segs[n-1].end = e.r
			continue
		}
		segs = append(segs, cmapSegment{start: e.r, end: e.r, delta: delta})
	}
	return segs
}

func cmapFormat4(entries []cmapEntry) []byte {
	segs := append(segments(entries), cmapSegment{start: 0xffff, end: 0xffff, delta: 1})
	n := len(segs)
	var b buffer
	b.u16(4)
	b.u16(uint16(16 + 8*n))
	b.u16(0) // language
	b.u16(uint16(2 * n))
	sr, es, rs := searchParams(n, 2)
	b.u16(sr)
	b.u16(es)
	b.u16(rs)
	for _, s := range segs {
		b.u16(uint16(s.end))
	}
	b.u16(0) // reservedPad
	for _, s := range segs {
		b.u16(uint16(s.start))
	}
	for _, s := range segs {
		b.u16(s.delta)
	}
	b.zeros(2 * n) // idRangeOffsets
	return b
}

func cmapFormat12(entries []cmapEntry) []byte {
	type group struct {
		start, end rune
		gid        uint16
	}
	var groups []group
	for _, e := range entries {
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			if last.end+1 == e.r && int(last.gid)+int(last.end-last.start)+1 == int(e.gid) {
				last.end = e.r
				continue
			}
		}
		groups = append(groups, group{start: e.r, end: e.r, gid: e.gid})
	}
	var b buffer
	b.u16(12)
	b.u16(0)
	b.u32(uint32(16 + 12*len(groups)))
	b.u32(0) // language
	b.u32(uint32(len(groups)))
	for _, g := range groups {
		b.u32(uint32(g.start))
		b.u32(uint32(g.end))
		b.u32(uint32(g.gid))
	}
	return b
}

// --- OS/2 ------------------------------------------------------------------

func (c *compiler) os2() []byte {
	upm := c.font.Upm
	vm := c.metrics
	sum, cnt := 0, 0
	var first, last rune = -1, 0
	yMax, yMin := 0, 0
	for _, g := range c.glyphs {
		if g.advance > 0 {
			sum += int(g.advance)
			cnt++
		}
		for _, r := range g.codepoints {
			if first < 0 || r < first {
				first = r
			}
			if r > last {
				last = r
			}
		}
		if !g.empty() {
			if int(g.yMax) > yMax {
				yMax = int(g.yMax)
			}
			if int(g.yMin) < yMin {
				yMin = int(g.yMin)
			}
		}
	}
	avg := 0
	if cnt > 0 {
		avg = roundInt(float64(sum) / float64(cnt))
	}
	if first < 0 {
		first = 0
	}
	_, fsSelection := c.styleBits()
	var b buffer
	b.u16(4) // version
	b.i16(clampI16(avg))
	b.u16(c.weightClass())
	b.u16(5)                        // usWidthClass: medium
	b.u16(0)                        // fsType: installable
	b.i16(clampI16(upm * 65 / 100)) // subscript x size
	b.i16(clampI16(upm * 60 / 100)) // subscript y size
	b.i16(0)
	b.i16(clampI16(upm * 75 / 1000))
	b.i16(clampI16(upm * 65 / 100)) // superscript x size
	b.i16(clampI16(upm * 60 / 100)) // superscript y size
	b.i16(0)
	b.i16(clampI16(upm * 35 / 100))
	b.i16(clampI16(upm * 5 / 100)) // strikeout size
	b.i16(clampI16(vm.xHeight / 2))
	b.i16(0)    // sFamilyClass
	b.zeros(10) // panose
	b.zeros(16) // ulUnicodeRange1-4
	b.tag(ot.T("NONE"))
	b.u16(fsSelection)
	b.u16(clampU16(int(first)))
	b.u16(clampU16(int(last)))
	b.i16(clampI16(vm.ascender))
	b.i16(clampI16(vm.descender))
	b.i16(clampI16(vm.lineGap))
	b.u16(clampU16(max(yMax, vm.ascender)))
	b.u16(clampU16(max(-yMin, -vm.descender)))
	b.zeros(8) // ulCodePageRange1-2
	b.i16(clampI16(vm.xHeight))
	b.i16(clampI16(vm.capHeight))
	b.u16(0)  // usDefaultChar
	b.u16(32) // usBreakChar
	b.u16(uint16(c.context))
	return b
}

// weightClass is taken from the default of a weight axis, or 400.
func (c *compiler) weightClass() uint16 {
	if a := c.font.Axis("wght"); a != nil {
		w := roundInt(a.Default)
		if w < 1 {
			w = 1
		} else if w > 1000 {
			w = 1000
		}
		return uint16(w)
	}
	return 400
}

// --- name ------------------------------------------------------------------

const (
	nameCopyright    = 0
	nameFamily       = 1
	nameSubfamily    = 2
	nameUniqueID     = 3
	nameFull         = 4
	nameVersion      = 5
	namePostScript   = 6
	nameManufacturer = 8
	nameDesigner     = 9
	nameLicense      = 13
)

func (c *compiler) name() []byte {
	n := c.font.Names
	style := n.StyleName
	if style == "" {
		style = "Regular"
	}
	family := n.FamilyName
	if family == "" {
		family = "Untitled"
	}
	full := family
	if style != "Regular" {
		full = family + " " + style
	}
	ps := postScriptName(family, style)
	version := fmt.Sprintf("%d.%03d", c.font.Version[0], c.font.Version[1])
	records := map[uint16]string{
		nameCopyright:    n.Copyright,
		nameFamily:       family,
		nameSubfamily:    style,
		nameUniqueID:     version + ";NONE;" + ps,
		nameFull:         full,
		nameVersion:      "Version " + version,
		namePostScript:   ps,
		nameManufacturer: n.Manufacturer,
		nameDesigner:     n.Designer,
		nameLicense:      n.License,
	}
	ids := make([]int, 0, len(records))
	for id, s := range records {
		if s != "" {
			ids = append(ids, int(id))
		}
	}
	sort.Ints(ids)
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	var storage buffer
	var b buffer
	b.u16(0) // format
	b.u16(uint16(len(ids)))
	b.u16(uint16(6 + 12*len(ids)))
	for _, id := range ids {
		s, err := enc.Bytes([]byte(records[uint16(id)]))
		if err != nil {
			tracer().Errorf("cannot encode name %d: %v", id, err)
			s = nil
		}
		b.u16(3)      // Windows
		b.u16(1)      // Unicode BMP
		b.u16(0x0409) // en-US
		b.u16(uint16(id))
		b.u16(uint16(len(s)))
		b.u16(uint16(len(storage)))
		storage.bytes(s)
	}
	b.bytes(storage)
	return b
}

func postScriptName(family, style string) string {
	keep := func(r rune) rune {
		if r < 33 || r > 126 || strings.ContainsRune("[](){}<>/%", r) {
			return -1
		}
		return r
	}
	ps := strings.Map(keep, family) + "-" + strings.Map(keep, style)
	if len(ps) > 63 {
		ps = ps[:63]
	}
	return ps
}

// --- post ------------------------------------------------------------------

// post writes a version 2 table. All glyph names are stored as custom names.
func (c *compiler) post() []byte {
	var b buffer
	b.u32(0x00020000)
	b.u32(0) // italicAngle
	b.i16(clampI16(-c.font.Upm / 10))
	b.i16(clampI16(c.font.Upm / 20))
	b.u32(0) // isFixedPitch
	b.zeros(16)
	b.u16(uint16(len(c.glyphs)))
	for i := range c.glyphs {
		b.u16(uint16(258 + i))
	}
	for _, g := range c.glyphs {
		b.u8(uint8(len(g.postName)))
		b.bytes([]byte(g.postName))
	}
	return b
}

// --- kern ------------------------------------------------------------------

type kernPair struct {
	left, right uint16
	value       int16
}

// compileKerning writes the default master's kerning to a format 0 'kern'
// table. Pairs naming glyphs not in the font are skipped.
func (c *compiler) compileKerning() {
	index := make(map[uint32]int)
	var pairs []kernPair
	for _, k := range c.master.Kerning {
		l, okl := c.gid[k.Left]
		r, okr := c.gid[k.Right]
		if !okl || !okr {
			tracer().Debugf("skipping kerning pair %s/%s", k.Left, k.Right)
			continue
		}
		key := uint32(l)<<16 | uint32(r)
		p := kernPair{left: l, right: r, value: clampI16(roundInt(k.Value))}
		if i, ok := index[key]; ok {
			pairs[i] = p
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, p)
	}
	kept := pairs[:0]
	for _, p := range pairs {
		if p.value != 0 {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].left != kept[j].left {
			return kept[i].left < kept[j].left
		}
		return kept[i].right < kept[j].right
	})
	n := len(kept)
	var b buffer
	b.u16(0) // version
	b.u16(1) // nTables
	b.u16(0) // subtable version
	b.u16(uint16(14 + 6*n))
	b.u16(0x0001) // horizontal, format 0
	b.u16(uint16(n))
	sr, es, rs := searchParams(n, 6)
	b.u16(sr)
	b.u16(es)
	b.u16(rs)
	for _, p := range kept {
		b.u16(p.left)
		b.u16(p.right)
		b.i16(p.value)
	}
	c.tables[ot.T("kern")] = b
	tracer().Debugf("kern table with %d pairs", n)
}
