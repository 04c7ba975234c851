package value_test

import (
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestFalsey(t *testing.T) {
	require.True(t, value.Nil.Falsey())
	require.True(t, value.Bool(false).Falsey())
	require.False(t, value.Bool(true).Falsey())
	require.False(t, value.Number(0).Falsey())
	require.False(t, value.FromObj(&value.ObjString{Chars: ""}).Falsey())
}

func TestEqual(t *testing.T) {
	require.True(t, value.Equal(value.Nil, value.Nil))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.False(t, value.Equal(value.Number(1), value.Bool(true)))

	s1 := &value.ObjString{Chars: "hi"}
	s2 := &value.ObjString{Chars: "hi"}
	require.True(t, value.Equal(value.FromObj(s1), value.FromObj(s1)))
	require.False(t, value.Equal(value.FromObj(s1), value.FromObj(s2)), "distinct objects with equal content are not Equal without interning")
}

func TestString(t *testing.T) {
	require.Equal(t, "nil", value.Nil.String())
	require.Equal(t, "true", value.Bool(true).String())
	require.Equal(t, "false", value.Bool(false).String())
	require.Equal(t, "1.5", value.Number(1.5).String())
	require.Equal(t, "3", value.Number(3).String())
	require.Equal(t, "0.333333", value.Number(1.0/3.0).String())
	require.Equal(t, "1.23457e+08", value.Number(123456789.123456).String())
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "nil", value.Nil.TypeName())
	require.Equal(t, "boolean", value.Bool(true).TypeName())
	require.Equal(t, "number", value.Number(1).TypeName())
	require.Equal(t, "string", value.FromObj(&value.ObjString{}).TypeName())
}

func TestHeapTrack(t *testing.T) {
	var h value.Heap
	s1 := &value.ObjString{Chars: "a"}
	s2 := &value.ObjString{Chars: "b"}

	h.Track(s1)
	h.Track(s2)

	require.Equal(t, value.Obj(s2), h.Head())
}

func TestFNV1a32(t *testing.T) {
	// the hash must be deterministic and distinguish distinct content
	require.Equal(t, value.FNV1a32("abc"), value.FNV1a32("abc"))
	require.NotEqual(t, value.FNV1a32("abc"), value.FNV1a32("abd"))
}

func TestUpvalueClose(t *testing.T) {
	slot := value.Number(42)
	up := &value.ObjUpvalue{Location: &slot}
	up.Close()
	require.Equal(t, value.Number(42), up.Closed)
	require.Equal(t, &up.Closed, up.Location)
}
