/*
Package ot provides OpenType tags and read access to the table directory of
an OpenType font binary.

The package is deliberately small. It decodes 4-byte tags, as used for table
names and design-variation axes, and it reads the table directory plus the
handful of tables needed to check a compiled font (head, maxp, loca). It does
not interpret layout tables.

Code comments often cite passages from the OpenType specification version
1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package ot

import (
	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.font'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.font")
}

func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
