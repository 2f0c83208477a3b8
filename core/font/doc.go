/*
Package font inspects compiled font binaries.

Fonts produced by the compiler are static TrueType fonts. This package reads
them back, either for display in a host or for checking compiler output:
the table directory, the number of glyphs, units per em and the glyph
names. Fonts are parsed with golang.org/x/image/font/sfnt; binaries sfnt
refuses (e.g., fonts compiled without outlines) are summarized from the
table directory alone.

Please note that Go (Golang) does use the terms "font" and "face"
differently from typographers. A "face" in Go is a font at a given size.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package font

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.font'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.font")
}
