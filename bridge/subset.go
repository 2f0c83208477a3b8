package bridge

import (
	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/core/font/babelfont/filter"
)

// subsetGate narrows f to the glyphs named, in place. An empty list leaves
// f untouched.
func subsetGate(f *babelfont.Font, glyphs []string) error {
	if len(glyphs) == 0 {
		return nil
	}
	if err := filter.NewRetainGlyphs(glyphs).Apply(f); err != nil {
		return core.WrapError(err, core.ESUBSET, "subsetting failed: %v", err)
	}
	return nil
}
