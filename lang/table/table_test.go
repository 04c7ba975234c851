package table_test

import (
	"testing"

	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func str(s string) *value.ObjString {
	return &value.ObjString{Chars: s, Hash: value.FNV1a32(s)}
}

func TestSetGetDelete(t *testing.T) {
	var tbl table.Table
	k := str("a")

	_, ok := tbl.Get(k)
	require.False(t, ok)

	isNew := tbl.Set(k, value.Number(1))
	require.True(t, isNew)

	got, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, value.Number(1), got)

	isNew = tbl.Set(k, value.Number(2))
	require.False(t, isNew, "setting an existing key is not a new insertion")
	got, _ = tbl.Get(k)
	require.Equal(t, value.Number(2), got)

	require.True(t, tbl.Delete(k))
	_, ok = tbl.Get(k)
	require.False(t, ok)
	require.False(t, tbl.Delete(k), "deleting an absent key reports false")
}

func TestTombstoneDoesNotBreakProbing(t *testing.T) {
	var tbl table.Table
	a, b, c := str("a"), str("b"), str("c")
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))
	tbl.Set(c, value.Number(3))

	require.True(t, tbl.Delete(b))

	// a and c must still resolve even though a tombstone sits between their
	// ideal buckets and wherever collision resolution placed them.
	va, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, value.Number(1), va)

	vc, ok := tbl.Get(c)
	require.True(t, ok)
	require.Equal(t, value.Number(3), vc)
}

func TestGrowthPreservesEntries(t *testing.T) {
	var tbl table.Table
	keys := make([]*value.ObjString, 0, 64)
	for i := 0; i < 64; i++ {
		k := str(string(rune('a' + (i % 26))) + string(rune('0'+(i/26))))
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}
	for i, k := range keys {
		got, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), got)
	}
}

func TestAddAll(t *testing.T) {
	var from, to table.Table
	x, y := str("x"), str("y")
	from.Set(x, value.Number(1))
	from.Set(y, value.Number(2))

	to.Set(y, value.Number(99))
	to.AddAll(&from)

	vx, ok := to.Get(x)
	require.True(t, ok)
	require.Equal(t, value.Number(1), vx)

	vy, ok := to.Get(y)
	require.True(t, ok)
	require.Equal(t, value.Number(2), vy, "AddAll overwrites existing keys")
}

func TestFindString(t *testing.T) {
	var tbl table.Table
	interned := str("hello")
	tbl.Set(interned, value.Bool(true))

	found := tbl.FindString("hello", value.FNV1a32("hello"))
	require.Same(t, interned, found)

	require.Nil(t, tbl.FindString("missing", value.FNV1a32("missing")))
}

func TestLen(t *testing.T) {
	var tbl table.Table
	require.Equal(t, 0, tbl.Len())
	a := str("a")
	tbl.Set(a, value.Number(1))
	tbl.Set(str("b"), value.Number(2))
	require.Equal(t, 2, tbl.Len())
	tbl.Delete(a)
	require.Equal(t, 1, tbl.Len(), "Len excludes tombstones")
}
