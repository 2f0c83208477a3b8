package option

import (
	"encoding/json"
	"errors"
	"math"
)

var ErrNoSuchMatchPattern = errors.New("no such match pattern")
var ErrCannotMatchUnsetValue = errors.New("cannot match unset value")
var ErrCannotMatchValue = errors.New("cannot match value")

type MaybeOption int

const (
	None MaybeOption = iota
	Some
	Error
)

// Maybe is a type used for matching of optional types.
// It will match `Some` if a value is set, `None` if it is unset, or `Error`
// if an error occurs.
type Maybe map[MaybeOption]interface{}

// Of is a type used for matching of optional types.
// It will first try to match concrete values, and in case of no match will
// then try a Maybe match.
type Of map[interface{}]interface{}

// Type is a type for optional values.
type Type interface {
	Match(choices interface{}) (interface{}, error)
	Equals(other interface{}) bool
	IsNone() bool
}

// Match will do a standard matching of o against choices.
//
// choices are expected to be a map type, where keys of the map are either
// concrete values for o, or of type MaybeOption. Values of the map may be
// of any type.
//
// If choices is of unknown kind, nil and ErrNoSuchMatchPattern are returned.
func Match(o Type, choices interface{}) (value interface{}, err error) {
	switch c := choices.(type) {
	case Of:
		return c.Match(o)
	case Maybe:
		return c.Match(o)
	}
	return nil, ErrNoSuchMatchPattern
}

func (of Of) Match(o Type) (value interface{}, err error) {
	if o.IsNone() {
		if expr, ok := of[None]; ok {
			value, err = valueOrExpr(expr, o, None)
		} else {
			err = ErrCannotMatchUnsetValue
		}
		return value, err
	}
	err = ErrCannotMatchValue
	matched := false
	for k, expr := range of {
		if _, isLabel := k.(MaybeOption); isLabel {
			continue
		}
		if o.Equals(k) {
			matched = true
			value, err = valueOrExpr(expr, o, Some)
		}
	}
	if !matched {
		if expr, ok := of[Some]; ok {
			value, err = valueOrExpr(expr, o, Some)
		}
	}
	if err != nil {
		tracer().Debugf("option match: %v", err)
		if expr, ok := of[Error]; ok {
			value, err = valueOrExpr(expr, o, Error)
		}
	}
	return value, err
}

func (maybe Maybe) Match(o Type) (value interface{}, err error) {
	if o.IsNone() {
		if expr, ok := maybe[None]; ok {
			value, err = valueOrExpr(expr, o, None)
		} else {
			err = ErrCannotMatchUnsetValue
		}
		return value, err
	}
	if expr, ok := maybe[Some]; ok {
		value, err = valueOrExpr(expr, o, Some)
	} else {
		err = ErrCannotMatchValue
	}
	if err != nil {
		tracer().Debugf("option match: %v", err)
		if expr, ok := maybe[Error]; ok {
			value, err = valueOrExpr(expr, o, Error)
		}
	}
	return value, err
}

func valueOrExpr(op interface{}, value Type, t MaybeOption) (interface{}, error) {
	switch x := op.(type) {
	case func(interface{}, MaybeOption) (interface{}, error):
		return x(value, t)
	case func(interface{}) (interface{}, error):
		return x(value)
	}
	return op, nil
}

// Fail may be used as an option case, causing a Match to fail with an error.
// The error will be returned by Match(…), unless caught with an option.Error
// label.
func Fail(err error) func(interface{}) (interface{}, error) {
	localErr := err
	return func(interface{}) (interface{}, error) {
		return nil, localErr
	}
}

// Safe wraps a Match's return values and drops the error value.
func Safe(x interface{}, err error) interface{} {
	return x
}

// --- reference types -------------------------------------------------------

// RefT is an optional reference to an arbitrary value. A nil reference
// is None.
type RefT struct {
	ref interface{}
}

func (o RefT) Equals(other interface{}) bool {
	return o.ref == other
}

func (o RefT) IsNone() bool {
	return o.ref == nil
}

func (o RefT) Unwrap() interface{} {
	return o.ref
}

func Something(x interface{}) RefT {
	return RefT{ref: x}
}

func Nothing() RefT {
	return RefT{ref: nil}
}

func (o RefT) Match(choices interface{}) (value interface{}, err error) {
	return Match(o, choices)
}

var _ Type = RefT{}

// --- Type coercions --------------------------------------------------------

// AsBool is a match expression which accepts boolean values only.
func AsBool(x interface{}) (interface{}, error) {
	if b, ok := unref(x).(bool); ok {
		return b, nil
	}
	return nil, ErrCannotMatchValue
}

// AsStrings is a match expression which accepts lists. String elements are
// collected in order, all other elements are skipped.
func AsStrings(x interface{}) (interface{}, error) {
	switch l := unref(x).(type) {
	case []string:
		s := make([]string, len(l))
		copy(s, l)
		return s, nil
	case []interface{}:
		s := make([]string, 0, len(l))
		for _, e := range l {
			if str, ok := e.(string); ok {
				s = append(s, str)
			}
		}
		return s, nil
	}
	return nil, ErrCannotMatchValue
}

// Number converts a decoded numeric value to float64. It understands the
// numeric types produced by encoding/json as well as Go's built-in
// integer and float types. NaN and infinities are rejected.
func Number(x interface{}) (float64, bool) {
	var f float64
	switch n := unref(x).(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		v, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func unref(x interface{}) interface{} {
	if r, ok := x.(RefT); ok {
		return r.ref
	}
	return x
}
