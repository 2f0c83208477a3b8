/*
Package bridge is the request layer between a loosely typed host and the font
compiler and interpolation engine.

A Bridge accepts font descriptions as JSON text and option payloads as
untyped maps. It either compiles a description in one shot, or holds a
parsed font in a single cache slot, so that repeated compile and
interpolation requests avoid re-parsing:

	b := bridge.New(bridge.NewSlot())
	if err := b.Store(text); err != nil {
	    ...
	}
	ttf, err := b.CompileCached(map[string]interface{}{
	    "skip_kerning":  true,
	    "subset_glyphs": []interface{}{"A", "B"},
	})
	layer, err := b.InterpolateGlyph("A", `{"wght": 550}`)

All failures are application errors (see package core) with codes EPARSE,
ESUBSET, ECOMPILE, ENOTCACHED, EINVALIDTAG, ELOCATION, EINTERPOLATE and
ESERIALIZE. Their messages include the diagnostic of the component which
failed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package bridge

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.bridge'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.bridge")
}

// version of the font bridge.
const version = "0.3.0"

// Version returns a human readable version string.
func Version() string {
	return "fontbridge v" + version
}
