package bridge

import (
	"github.com/npillmayer/fontbridge/core/option"
	"github.com/npillmayer/fontbridge/engine/fontir"
)

// Option keys of a request payload.
const (
	KeySkipKerning            = "skip_kerning"
	KeySkipFeatures           = "skip_features"
	KeySkipMetrics            = "skip_metrics"
	KeySkipOutlines           = "skip_outlines"
	KeyDontUseProductionNames = "dont_use_production_names"
	KeySubsetGlyphs           = "subset_glyphs"
)

// Request is the resolved form of an option payload.
type Request struct {
	Options fontir.Options
	Subset  []string // glyphs to retain; empty for no subsetting
}

// Resolve turns an option payload into a request. It never fails: a
// payload which is not a map counts as absent, missing or non-boolean
// switches are false, unknown keys are ignored. Subset glyphs are taken
// from a list value, skipping non-string elements.
func Resolve(payload interface{}) Request {
	p := option.FromAny(payload)
	r := Request{
		Options: fontir.Options{
			SkipKerning:            p.Bool(KeySkipKerning, false),
			SkipFeatures:           p.Bool(KeySkipFeatures, false),
			SkipMetrics:            p.Bool(KeySkipMetrics, false),
			SkipOutlines:           p.Bool(KeySkipOutlines, false),
			DontUseProductionNames: p.Bool(KeyDontUseProductionNames, false),
		},
		Subset: p.Strings(KeySubsetGlyphs),
	}
	tracer().Debugf("resolved options %s, subset of %d glyphs", r.Options, len(r.Subset))
	return r
}

// IsSubsetting is true if the request asks for a glyph subset.
func (r Request) IsSubsetting() bool {
	return len(r.Subset) > 0
}
