/*
Package varmodel interpolates glyphs of a multi-master font at arbitrary
locations in its design space.

Interpolation follows the OpenType variation model: master locations are
normalized to the range [-1, 1] per axis, each master gets a region of
influence (its support), and values at a location are the sum of master
deltas weighted by the support scalars of the location.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package varmodel

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.interpolate'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.interpolate")
}
