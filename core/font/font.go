package font

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/ot"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// CompiledFont is a font binary together with its parsed forms.
type CompiledFont struct {
	Fontname string
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // nil if sfnt cannot read the binary
	OT       *ot.Font   // table directory
}

// LoadCompiledFont reads a font binary from a file.
func LoadCompiledFont(fontfile string) (*CompiledFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	return ParseCompiledFont(bytez)
}

// ParseCompiledFont parses a font binary. It fails only if the table
// directory is unreadable.
func ParseCompiledFont(fbytes []byte) (f *CompiledFont, err error) {
	f = &CompiledFont{Binary: fbytes}
	if f.OT, err = ot.Parse(fbytes); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "not a font binary: %v", err)
	}
	if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
		tracer().Debugf("sfnt cannot read font binary, using table directory only: %v", err)
		f.SFNT = nil
		return f, nil
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}

// HasOutlines is true if the glyphs of the font can be rendered.
func (cf *CompiledFont) HasOutlines() bool {
	return cf.SFNT != nil && cf.OT.HasTable(ot.T("glyf"))
}

// Metrics returns the font-wide metrics at a point size, for 72 DPI.
func (cf *CompiledFont) Metrics(ptsize float64) (xfont.Metrics, error) {
	if cf.SFNT == nil {
		return xfont.Metrics{}, fmt.Errorf("font %q has no usable outline data", cf.Fontname)
	}
	if ptsize < 1 || ptsize > 1000 {
		return xfont.Metrics{}, fmt.Errorf("font size must be between 1pt and 1000pt, is %g", ptsize)
	}
	face, err := opentype.NewFace(cf.SFNT, &opentype.FaceOptions{
		Size: ptsize,
		DPI:  72,
	})
	if err != nil {
		return xfont.Metrics{}, err
	}
	defer face.Close()
	return face.Metrics(), nil
}

// --- Summary ---------------------------------------------------------------

// Summary describes a compiled font.
type Summary struct {
	Fontname   string
	Family     string
	Tables     []string // table tags in directory order
	NumGlyphs  int
	UnitsPerEm int
	GlyphNames []string // empty if unavailable
	Size       int      // in bytes
}

// Inspect summarizes a font binary.
func Inspect(fbytes []byte) (*Summary, error) {
	cf, err := ParseCompiledFont(fbytes)
	if err != nil {
		return nil, err
	}
	return cf.Summary(), nil
}

// Summary summarizes the font.
func (cf *CompiledFont) Summary() *Summary {
	s := &Summary{Fontname: cf.Fontname, Size: len(cf.Binary)}
	for _, tag := range cf.OT.TableTags() {
		s.Tables = append(s.Tables, tag.String())
	}
	if cf.OT.MaxP != nil {
		s.NumGlyphs = cf.OT.MaxP.NumGlyphs
	}
	if cf.OT.Head != nil {
		s.UnitsPerEm = int(cf.OT.Head.UnitsPerEm)
	}
	if cf.SFNT == nil {
		return s
	}
	var buf sfnt.Buffer
	s.Family, _ = cf.SFNT.Name(&buf, sfnt.NameIDFamily)
	s.NumGlyphs = cf.SFNT.NumGlyphs()
	s.UnitsPerEm = int(cf.SFNT.UnitsPerEm())
	for i := 0; i < s.NumGlyphs; i++ {
		name, err := cf.SFNT.GlyphName(&buf, sfnt.GlyphIndex(i))
		if err != nil || name == "" {
			tracer().Debugf("font has no name for glyph %d", i)
			s.GlyphNames = nil
			break
		}
		s.GlyphNames = append(s.GlyphNames, name)
	}
	return s
}

// String renders a one-line summary.
func (s *Summary) String() string {
	name := s.Fontname
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s: %d glyphs, %d units/em, %d bytes, tables [%s]",
		name, s.NumGlyphs, s.UnitsPerEm, s.Size, strings.Join(s.Tables, " "))
}
