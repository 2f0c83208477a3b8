package varmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/fontbridge/core/font/ot"
)

// Location is a point in design space, given as a set of (axis tag,
// user-space coordinate) pairs ordered by tag. Axes not mentioned sit at
// their default.
//
// The zero value is not usable; create locations with NewLocation.
// A nil *Location is treated as the default location.
type Location struct {
	coords *treemap.Map
}

func tagComparator(a, b interface{}) int {
	ta, tb := a.(ot.Tag), b.(ot.Tag)
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}
	return 0
}

// NewLocation creates an empty location.
func NewLocation() *Location {
	return &Location{coords: treemap.NewWith(tagComparator)}
}

// Set sets the coordinate for an axis, replacing a previous value.
func (l *Location) Set(tag ot.Tag, value float64) *Location {
	l.coords.Put(tag, value)
	return l
}

// Get returns the coordinate for an axis, if set.
func (l *Location) Get(tag ot.Tag) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l.coords.Get(tag)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// Len returns the number of axes with a coordinate.
func (l *Location) Len() int {
	if l == nil {
		return 0
	}
	return l.coords.Size()
}

// Tags returns the axis tags of a location in ascending order.
func (l *Location) Tags() []ot.Tag {
	if l == nil {
		return nil
	}
	tags := make([]ot.Tag, 0, l.coords.Size())
	for _, k := range l.coords.Keys() {
		tags = append(tags, k.(ot.Tag))
	}
	return tags
}

// Each calls f for every (tag, coordinate) pair, in tag order.
func (l *Location) Each(f func(tag ot.Tag, value float64)) {
	if l == nil {
		return
	}
	it := l.coords.Iterator()
	for it.Next() {
		f(it.Key().(ot.Tag), it.Value().(float64))
	}
}

// Map returns the location as a map from tag strings to coordinates.
func (l *Location) Map() map[string]float64 {
	m := make(map[string]float64, l.Len())
	l.Each(func(tag ot.Tag, value float64) {
		m[tag.String()] = value
	})
	return m
}

func (l *Location) String() string {
	var parts []string
	l.Each(func(tag ot.Tag, value float64) {
		parts = append(parts, fmt.Sprintf("%s=%s", tag, strconv.FormatFloat(value, 'f', -1, 64)))
	})
	return "{" + strings.Join(parts, " ") + "}"
}
