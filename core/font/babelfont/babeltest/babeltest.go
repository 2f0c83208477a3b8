// Package babeltest provides font descriptions for tests of packages working
// with babelfont sources.
package babeltest

import (
	"testing"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
)

// TwoMasters is a font with a weight axis (400–700, default 400) and two
// masters at its extremes. Glyph D is a component of C shifted by 50 units.
const TwoMasters = `{
  "upm": 1000,
  "version": [1, 2],
  "names": {"family_name": "Test Sans", "designer": "Fontbridge Tests"},
  "axes": [{"name": "Weight", "tag": "wght", "min": 400, "default": 400, "max": 700}],
  "masters": [
    {"id": "light", "name": "Light", "location": {"wght": 400},
     "metrics": {"ascender": 780, "descender": -220, "xHeight": 500, "capHeight": 700},
     "kerning": [{"left": "A", "right": "B", "value": -40}]},
    {"id": "bold", "name": "Bold", "location": {"wght": 700},
     "metrics": {"ascender": 800, "descender": -200, "xHeight": 520, "capHeight": 700},
     "kerning": [{"left": "A", "right": "B", "value": -60}]}
  ],
  "glyphs": [
    {"name": "A", "codepoints": [65], "category": "base", "layers": [
      {"master": "light", "width": 600,
       "shapes": [{"nodes": "0 0 l 300 700 l 600 0 l 500 0 l 300 550 l 100 0 l", "closed": true}],
       "anchors": [{"name": "top", "x": 300, "y": 700}]},
      {"master": "bold", "width": 700,
       "shapes": [{"nodes": "0 0 l 350 700 l 700 0 l 540 0 l 350 500 l 160 0 l", "closed": true}],
       "anchors": [{"name": "top", "x": 350, "y": 700}]}
    ]},
    {"name": "B", "codepoints": [66], "category": "base", "layers": [
      {"master": "light", "width": 600,
       "shapes": [{"nodes": "100 0 l 100 700 l 500 700 l 500 0 l", "closed": true}]},
      {"master": "bold", "width": 640,
       "shapes": [{"nodes": "80 0 l 80 700 l 560 700 l 560 0 l", "closed": true}]}
    ]},
    {"name": "C", "codepoints": [67], "category": "base", "layers": [
      {"master": "light", "width": 600,
       "shapes": [{"nodes": "300 0 c 466 0 o 600 134 o 600 300 cs 600 466 o 466 600 o 300 600 cs 134 600 o 0 466 o 0 300 cs 0 134 o 134 0 o", "closed": true}]},
      {"master": "bold", "width": 640,
       "shapes": [{"nodes": "320 0 c 500 0 o 640 144 o 640 320 cs 640 496 o 500 640 o 320 640 cs 140 640 o 0 496 o 0 320 cs 0 144 o 140 0 o", "closed": true}]}
    ]},
    {"name": "D", "codepoints": [68], "category": "base", "layers": [
      {"master": "light", "width": 700, "shapes": [{"ref": "C", "transform": [1, 0, 0, 1, 50, 0]}]},
      {"master": "bold", "width": 740, "shapes": [{"ref": "C", "transform": [1, 0, 0, 1, 50, 0]}]}
    ]}
  ],
  "features": {
    "classes": {"caps": ["A", "B"]},
    "code": "feature liga { sub A B by D; } liga;\nfeature ss01 { sub @caps by C; } ss01;"
  }
}`

// Simple is a single-master font without axes, holding glyphs A, B and C.
const Simple = `{
  "upm": 1000,
  "names": {"family_name": "Simple"},
  "masters": [{"id": "m0", "metrics": {"ascender": 750, "descender": -250}}],
  "glyphs": [
    {"name": "A", "codepoints": [65], "layers": [
      {"master": "m0", "width": 500, "shapes": [{"nodes": "0 0 l 250 700 l 500 0 l", "closed": true}]}]},
    {"name": "B", "codepoints": [66], "layers": [
      {"master": "m0", "width": 520, "shapes": [{"nodes": "60 0 l 60 700 l 460 700 l 460 0 l", "closed": true}]}]},
    {"name": "C", "codepoints": [67], "layers": [
      {"master": "m0", "width": 540, "shapes": [{"nodes": "270 0 q 540 0 o 540 350 q 540 700 o 270 700 q 0 700 o 0 350 q 0 0 o", "closed": true}]}]}
  ]
}`

// Parse parses a font description and fails the test on error.
func Parse(t testing.TB, text string) *babelfont.Font {
	t.Helper()
	f, err := babelfont.Parse(text)
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	return f
}
