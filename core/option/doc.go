/*
Package option resolves optional values from loosely typed payloads.

Hosts hand options to the bridge as untyped key/value maps, usually decoded
from JSON. Package option turns those into concrete values with a total,
non-failing resolution: every lookup either yields a value of the requested
type or the caller's default. Matching follows a Maybe/Of style:

	v, _ := payload.Lookup("skip_kerning").Match(option.Maybe{
	     option.None:  false,
	     option.Some:  asBool,
	     option.Error: false,
	})

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package option

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.option'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.option")
}
