package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
	err := Error(ENOTCACHED, "no font cached")
	assert.Equal(t, ENOTCACHED, Code(err))
	assert.Equal(t, "no font cached", UserMessage(err))
	assert.Equal(t, "[133] no font cached", err.Error())
	wrapped := fmt.Errorf("request: %w", err)
	assert.Equal(t, ENOTCACHED, Code(wrapped), "code survives wrapping")
}

func TestWrapError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontbridge.bridge")
	defer teardown()
	//
	cause := errors.New("glyph \"Q\" not found")
	err := WrapError(cause, ESUBSET, "subsetting failed: %v", cause)
	assert.Equal(t, ESUBSET, Code(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, UserMessage(err), `"Q"`)
	assert.Equal(t, EPARSE, Code(WrapError(nil, EPARSE, "x")))
	assert.Equal(t, "parse error", UserMessage(ErrorWithCode(nil, EPARSE)))
	assert.Equal(t, "internal error", UserMessage(errors.New("plain")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestCodeNames(t *testing.T) {
	for code, name := range map[int]string{
		EPARSE: "parse", ESUBSET: "subset", ECOMPILE: "compilation",
		ENOTCACHED: "not-cached", EINVALIDTAG: "invalid-tag",
		ELOCATION: "location-parse", EINTERPOLATE: "interpolation",
		ESERIALIZE: "serialization", EINTERNAL: "internal", 999: "internal",
	} {
		assert.Equal(t, name, CodeName(code), "code %d", code)
	}
}
