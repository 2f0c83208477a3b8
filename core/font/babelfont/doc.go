/*
Package babelfont holds the source representation of a font: axes, masters,
glyphs with one layer per master, kerning and feature code.

Font descriptions are exchanged as JSON text in a babelfont-like format.
Parse decodes and validates such a description; the resulting Font is the
value the bridge caches, subsets (see package filter), compiles and
interpolates. Path outlines use a compact node notation, see Nodes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package babelfont

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'fontbridge.font'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.font")
}
