/*
Package autocompile compiles the cached font of a bridge shortly after the
last edit.

Editors call Touch whenever the font description changes. Once no Touch has
arrived for the configured delay, the scheduler compiles the cached font
and hands the result to a callback. A Touch during the delay restarts the
timer; a compilation which has been overtaken by a later Touch is not
reported.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package autocompile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontbridge.bridge'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.bridge")
}
