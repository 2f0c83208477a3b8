/*
Package filter holds transformations which modify a babelfont.Font in place.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package filter

import (
	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.font'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.font")
}

// Filter is a transformation of a font, applied in place.
type Filter interface {
	Apply(f *babelfont.Font) error
}
