package option_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/fontbridge/core/option"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestOptionMaybe(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	x := option.Something(42)
	y1, _ := x.Match(option.Maybe{
		option.None: 7,
		option.Some: stringify,
	})
	y2, _ := option.Nothing().Match(option.Maybe{
		option.None: "No Value",
		option.Some: stringify,
	})
	y3, err := x.Match(option.Maybe{
		option.None:  "No Value",
		option.Some:  nonsense,
		option.Error: "caught",
	})
	assert.Equal(t, "Value = 42", y1)
	assert.Equal(t, "No Value", y2)
	assert.Equal(t, "caught", y3)
	assert.NoError(t, err)
}

func TestOptionOf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	y, err := option.Something("hey").Match(option.Of{
		option.None: 0,
		"hey":       99,
		option.Some: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 99, y)
	y, err = option.Something("ho").Match(option.Of{
		option.None: 0,
		"hey":       99,
		option.Some: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, y)
}

func TestOptionFail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	_, err := option.Something(1).Match(option.Of{
		option.None:  7,
		1:            option.Fail(errors.New("Fail")),
		option.Error: option.Fail(errors.New("Caught Fail")),
	})
	if assert.Error(t, err) {
		assert.Equal(t, "Caught Fail", err.Error())
	}
	_, err = option.Nothing().Match(option.Maybe{option.Some: 1})
	assert.ErrorIs(t, err, option.ErrCannotMatchUnsetValue)
	_, err = option.Match(option.Nothing(), 5)
	assert.ErrorIs(t, err, option.ErrNoSuchMatchPattern)
}

func TestPayloadBool(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	var absent option.Payload
	assert.False(t, absent.Bool("skip_kerning", false))
	assert.True(t, absent.Bool("skip_kerning", true))
	p := option.Payload{
		"a": true,
		"b": "true",
		"c": 1,
		"d": nil,
		"e": false,
	}
	assert.True(t, p.Bool("a", false))
	assert.False(t, p.Bool("b", false), "strings are not booleans")
	assert.False(t, p.Bool("c", false), "numbers are not booleans")
	assert.True(t, p.Bool("d", true), "null resolves to the default")
	assert.False(t, p.Bool("e", true))
	assert.True(t, p.Bool("missing", true))
}

func TestPayloadStrings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	var p option.Payload
	err := json.Unmarshal([]byte(`{"glyphs":["A",1,"B",null,{"x":1}],"one":"A"}`), &p)
	assert.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, p.Strings("glyphs"))
	assert.Nil(t, p.Strings("one"))
	assert.Nil(t, p.Strings("missing"))
}

func TestFromAny(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	assert.Nil(t, option.FromAny(nil))
	assert.Nil(t, option.FromAny("skip_kerning"))
	assert.Nil(t, option.FromAny([]interface{}{true}))
	p := option.FromAny(map[string]interface{}{"x": true})
	assert.True(t, p.Bool("x", false))
	p = option.FromAny(map[string]bool{"y": true})
	assert.True(t, p.Bool("y", false))
}

func TestNumber(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.option")
	defer teardown()
	//
	for _, x := range []interface{}{550.0, float32(550), 550, int64(550), uint16(550), json.Number("550")} {
		f, ok := option.Number(x)
		assert.True(t, ok, "expected %T to be numeric", x)
		assert.Equal(t, 550.0, f)
	}
	_, ok := option.Number("550")
	assert.False(t, ok)
	_, ok = option.Number(json.Number("wide"))
	assert.False(t, ok)
	f, ok := option.Number(option.Something(1.5))
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)
}

// ---------------------------------------------------------------------------

func nonsense(x interface{}) (interface{}, error) {
	return nil, errors.New("ERROR")
}

func stringify(x interface{}) (interface{}, error) {
	return fmt.Sprintf("Value = %v", x.(option.RefT).Unwrap()), nil
}
