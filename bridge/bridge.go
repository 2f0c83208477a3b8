package bridge

import (
	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/npillmayer/fontbridge/engine/fontir"
	"github.com/npillmayer/fontbridge/engine/varmodel"
)

// Bridge orchestrates compilation and interpolation requests. All methods
// are synchronous and safe for concurrent use; requests working on the
// cached font are serialized by the bridge's slot.
type Bridge struct {
	slot *Slot
}

// New creates a bridge working with a cache slot. If slot is nil, the
// bridge gets a slot of its own.
func New(slot *Slot) *Bridge {
	if slot == nil {
		slot = NewSlot()
	}
	return &Bridge{slot: slot}
}

// Slot returns the bridge's cache slot.
func (b *Bridge) Slot() *Slot {
	return b.slot
}

func parse(text string) (*babelfont.Font, error) {
	f, err := babelfont.Parse(text)
	if err != nil {
		tracer().Errorf("cannot parse font description: %v", err)
		return nil, core.WrapError(err, core.EPARSE, "parsing failed: %v", err)
	}
	return f, nil
}

func compile(f *babelfont.Font, opts fontir.Options) ([]byte, error) {
	ttf, err := fontir.Compile(f, opts)
	if err != nil {
		tracer().Errorf("compilation failed: %v", err)
		return nil, core.WrapError(err, core.ECOMPILE, "compilation failed: %v", err)
	}
	return ttf, nil
}

// CompileOnce parses a font description, optionally subsets it and compiles
// it with the options of payload. The cache slot is not involved.
func (b *Bridge) CompileOnce(text string, payload interface{}) ([]byte, error) {
	f, err := parse(text)
	if err != nil {
		return nil, err
	}
	req := Resolve(payload)
	if err := subsetGate(f, req.Subset); err != nil {
		return nil, err
	}
	return compile(f, req.Options)
}

// Store parses a font description and caches the font, replacing a font
// cached before. If parsing fails, the slot remains unchanged.
func (b *Bridge) Store(text string) error {
	f, err := parse(text)
	if err != nil {
		return err
	}
	b.slot.Store(f)
	tracer().Infof("cached font %q with %d glyphs", f.Names.FamilyName, len(f.Glyphs))
	return nil
}

// Clear empties the cache slot.
func (b *Bridge) Clear() {
	b.slot.Clear()
	tracer().Infof("font cache cleared")
}

// CompileCached compiles the cached font with the options of payload. If a
// subset is requested, a copy of the cached font is subsetted; the cached
// font itself never changes.
func (b *Bridge) CompileCached(payload interface{}) ([]byte, error) {
	req := Resolve(payload)
	return WithCached(b.slot, func(f *babelfont.Font) ([]byte, error) {
		if req.IsSubsetting() {
			f = f.Clone()
			if err := subsetGate(f, req.Subset); err != nil {
				return nil, err
			}
		}
		return compile(f, req.Options)
	})
}

// InterpolateGlyph interpolates a glyph of the cached font at a location
// given as JSON text, and returns the resulting layer serialized as JSON.
func (b *Bridge) InterpolateGlyph(glyphName, locationText string) (string, error) {
	return WithCached(b.slot, func(f *babelfont.Font) (string, error) {
		loc, err := ParseLocationText(locationText)
		if err != nil {
			return "", err
		}
		return interpolate(f, glyphName, loc)
	})
}

// Interpolate is InterpolateGlyph for hosts holding a decoded location.
func (b *Bridge) Interpolate(glyphName string, location map[string]interface{}) (string, error) {
	return WithCached(b.slot, func(f *babelfont.Font) (string, error) {
		loc, err := ParseLocation(location)
		if err != nil {
			return "", err
		}
		return interpolate(f, glyphName, loc)
	})
}

func interpolate(f *babelfont.Font, glyphName string, loc *varmodel.Location) (string, error) {
	layer, err := varmodel.InterpolateGlyph(f, glyphName, loc)
	if err != nil {
		tracer().Errorf("interpolation of %s at %s failed: %v", glyphName, loc, err)
		return "", core.WrapError(err, core.EINTERPOLATE, "interpolation failed: %v", err)
	}
	text, err := babelfont.MarshalLayer(layer)
	if err != nil {
		return "", core.WrapError(err, core.ESERIALIZE, "serialization failed: %v", err)
	}
	return text, nil
}

// CompileGlyphs is the entry point of an earlier API generation. It always
// fails.
//
// Deprecated: use CompileOnce.
func (b *Bridge) CompileGlyphs(text string) ([]byte, error) {
	return nil, core.Error(core.ECOMPILE, "please use CompileOnce instead")
}
