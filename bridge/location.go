package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/ot"
	"github.com/npillmayer/fontbridge/core/option"
	"github.com/npillmayer/fontbridge/engine/varmodel"
)

// ParseLocation turns a mapping of axis tags to coordinates into a design
// space location. All keys are checked before any value: the first key (in
// sorted order) which is not a valid axis tag fails the whole location with
// EINVALIDTAG. Values which are not numbers fail with ELOCATION.
func ParseLocation(m map[string]interface{}) (*varmodel.Location, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tags := make([]ot.Tag, len(keys))
	for i, k := range keys {
		tag, err := ot.ParseTag(k)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALIDTAG, "invalid axis tag %q: %v", k, err)
		}
		tags[i] = tag
	}
	loc := varmodel.NewLocation()
	for i, k := range keys {
		v, ok := option.Number(m[k])
		if !ok {
			err := fmt.Errorf("coordinate for axis %q is not a number: %v", k, m[k])
			return nil, core.WrapError(err, core.ELOCATION, "malformed location: %v", err)
		}
		loc.Set(tags[i], v)
	}
	return loc, nil
}

// ParseLocationText parses a location given as JSON text, e.g.
//
//	{"wght": 550, "wdth": 100}
func ParseLocationText(text string) (*varmodel.Location, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, core.WrapError(err, core.ELOCATION, "malformed location: %v", err)
	}
	if m == nil {
		err := fmt.Errorf("location must be an object, is %q", text)
		return nil, core.WrapError(err, core.ELOCATION, "malformed location: %v", err)
	}
	if dec.More() {
		err := fmt.Errorf("trailing data after location object")
		return nil, core.WrapError(err, core.ELOCATION, "malformed location: %v", err)
	}
	return ParseLocation(m)
}
