/*
Package fontir compiles a babelfont source into a static TrueType font binary.

The compiler works on the default master of a font. Components are
decomposed, cubic outlines are converted to quadratic splines and glyph
positioning from the master's kerning is written to a format 0 'kern' table.
Glyph substitutions are read from the font's feature code (a subset of the
OpenType feature file syntax, see ParseFeatures) and written to 'GSUB'.

Output is deterministic: compiling the same font with the same options
always yields identical bytes. Compile never modifies its input.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package fontir

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.compile'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.compile")
}

// Options control which parts of a font the compiler produces. The zero
// value compiles everything.
type Options struct {
	SkipKerning            bool // do not write a 'kern' table
	SkipFeatures           bool // do not compile feature code into 'GSUB'
	SkipMetrics            bool // ignore master metrics, derive vertical metrics from units per em
	SkipOutlines           bool // omit 'glyf' and 'loca'
	DontUseProductionNames bool // write design names to 'post'
}

func (o Options) String() string {
	return fmt.Sprintf("{kern:%v fea:%v metrics:%v outlines:%v prodnames:%v}",
		!o.SkipKerning, !o.SkipFeatures, !o.SkipMetrics, !o.SkipOutlines, !o.DontUseProductionNames)
}
