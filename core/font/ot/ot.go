package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// Font represents the table directory of an OpenType font binary.
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	Head   *HeadTable
	MaxP   *MaxPTable
	Loca   *LocaTable
}

// FontHeader is a directory of the top-level tables in a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// HasTable is a shortcut for checking the presence of a table.
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns a list of tags, one for each table contained in the font,
// in directory order.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Table is a raw table of a font.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; read-only for clients
	NameTag() Tag             // 4-letter name of the table
}

type tableBase struct {
	data   binarySegm
	name   Tag
	offset uint32
	length uint32
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

// NameTag returns the 4-letter name of a table.
func (tb *tableBase) NameTag() Tag {
	return tb.name
}

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	Flags            uint16
	UnitsPerEm       uint16
	IndexToLocFormat uint16 // needed to interpret loca table
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
type LocaTable struct {
	tableBase
	long   bool
	locCnt int
}

// IndexToLocation returns the offset of glyph gid's data within the 'glyf' table.
// Out of range glyphs link to the 'missing character' at location 0.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	if int(gid) >= t.locCnt {
		return 0
	}
	if t.long {
		loc, err := t.data.u32(int(gid) * 4)
		if err != nil {
			return 0
		}
		return loc
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0
	}
	return uint32(loc) * 2
}

// GlyphDataSize returns the number of bytes glyph gid occupies in table 'glyf'.
// Glyphs without an outline have size 0.
func (t *LocaTable) GlyphDataSize(gid GlyphIndex) uint32 {
	if int(gid)+1 >= t.locCnt {
		return 0
	}
	from, to := t.IndexToLocation(gid), t.IndexToLocation(gid+1)
	if to < from {
		return 0
	}
	return to - from
}

// --- Parsing ---------------------------------------------------------------

// Parse parses the table directory of an OpenType font from a byte slice.
// Table data is not copied: the Font keeps views into font.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("header")
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		if uint64(off)+uint64(size) > uint64(len(src)) {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		base := tableBase{data: src[off : off+size], name: tag, offset: off, length: size}
		otf.tables[tag], err = parseTable(otf, base)
		if err != nil {
			return nil, err
		}
	}
	if otf.Loca != nil {
		if otf.Head == nil || otf.MaxP == nil {
			return nil, errFontFormat("loca table requires head and maxp")
		}
		otf.Loca.long = otf.Head.IndexToLocFormat == 1
		otf.Loca.locCnt = otf.MaxP.NumGlyphs + 1
	}
	return otf, nil
}

func parseTable(otf *Font, base tableBase) (Table, error) {
	b := base.data
	switch base.name {
	case T("head"):
		if base.length < 54 {
			return nil, errFontFormat("size of head table")
		}
		t := &HeadTable{tableBase: base}
		t.Flags, _ = b.u16(16)
		t.UnitsPerEm, _ = b.u16(18)
		t.IndexToLocFormat, _ = b.u16(50)
		otf.Head = t
		return t, nil
	case T("maxp"):
		if base.length < 6 {
			return nil, errFontFormat("size of maxp table")
		}
		t := &MaxPTable{tableBase: base}
		n, _ := b.u16(4)
		t.NumGlyphs = int(n)
		otf.MaxP = t
		return t, nil
	case T("loca"):
		t := &LocaTable{tableBase: base}
		otf.Loca = t
		return t, nil
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", base.name)
	return &base, nil
}
