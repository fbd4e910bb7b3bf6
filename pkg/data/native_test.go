package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNativeFromNative_RoundTrip(t *testing.T) {
	m := NewMap()
	m.SetInteger("count", 3)
	m.SetString("name", "agent")
	inner := NewMap()
	inner.SetDouble("ratio", 0.5)
	m.SetData("inner", inner)
	list := NewList()
	list.AddLastInteger(1)
	list.AddLastInteger(2)
	m.SetData("items", list)

	native := ToNative(m)
	rebuilt := FromNative(native)

	rm, ok := rebuilt.(*MapValue)
	assert.True(t, ok)
	assert.Equal(t, int64(3), rm.GetInteger("count"))
	assert.Equal(t, "agent", rm.GetString("name"))
	assert.Equal(t, 0.5, rm.GetDouble("inner.ratio"))

	items, ok := rm.GetData("items").(*ListValue)
	assert.True(t, ok)
	assert.Equal(t, 2, items.Count())
}

func TestFromNative_SkipsNonStringMapKeys(t *testing.T) {
	v := FromNative(map[any]any{1: "x", "ok": "y"})
	m, ok := v.(*MapValue)
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "y", m.GetString("ok"))
}

func TestToNative_NilIsNil(t *testing.T) {
	assert.Nil(t, ToNative(nil))
}
