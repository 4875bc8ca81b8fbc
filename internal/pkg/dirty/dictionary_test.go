package dirty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_DirtyItemsYieldsOnlyDirtyEntries(t *testing.T) {
	d := NewDictionary[string, int]()
	d.Set("clean", 1)
	d.Set("changed", 2)
	d.SetDirty(false)

	d.Set("changed", 3)

	assert.Equal(t, map[string]int{"changed": 3}, collect(d.DirtyItems()))
	assert.True(t, d.Dirty())

	d.SetDirty(false)
	assert.False(t, d.Dirty())
	assert.Empty(t, collect(d.DirtyItems()))
}

func TestDictionary_SetEqualValueStaysClean(t *testing.T) {
	d := NewDictionary[string, string]()
	d.Set("k", "v")
	d.SetDirty(false)

	calls := 0
	d.OnChanged(func(Change) { calls++ })
	d.Set("k", "v")

	assert.False(t, d.Dirty())
	assert.Zero(t, calls)
}

func TestDictionary_Notifications(t *testing.T) {
	d := NewDictionary[string, int]()
	var changes []Change
	changing := 0
	d.OnChanging(func() { changing++ })
	d.OnChanged(func(c Change) { changes = append(changes, c) })

	d.Set("a", 1)
	d.Set("a", 2)
	assert.True(t, d.Remove("a"))
	assert.False(t, d.Remove("a"))

	require.Len(t, changes, 3)
	assert.Equal(t, Change{Action: Add, NewItems: []any{1}, NewIndex: -1, OldIndex: -1, Key: "a"}, changes[0])
	assert.Equal(t, Change{Action: Replace, NewItems: []any{2}, OldItems: []any{1}, NewIndex: -1, OldIndex: -1, Key: "a"}, changes[1])
	assert.Equal(t, Change{Action: Remove, OldItems: []any{2}, NewIndex: -1, OldIndex: -1, Key: "a"}, changes[2])
	assert.Equal(t, 3, changing)
}

func TestDictionary_ClearRaisesReset(t *testing.T) {
	d := NewDictionary[string, int]()
	d.Set("x", 1)
	d.Set("y", 2)

	var got Change
	d.OnChanged(func(c Change) { got = c })
	d.Clear()

	assert.Equal(t, Reset, got.Action)
	assert.Equal(t, []any{1, 2}, got.OldItems)
	assert.Zero(t, d.Len())

	got = Change{}
	d.Clear()
	assert.Zero(t, got.Action, "clearing an empty dictionary raises nothing")
}

func TestDictionary_Lookup(t *testing.T) {
	d := NewDictionary[string, int]()
	require.NoError(t, d.Add("a", 1))
	assert.ErrorIs(t, d.Add("a", 2), ErrArgumentInvalid)

	v, err := d.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = d.Get("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, ok := d.TryGet("missing")
	assert.False(t, ok)
	assert.True(t, d.ContainsKey("a"))
}

func TestDictionary_KeyFolding(t *testing.T) {
	d := NewDictionary[string, string](WithKeyFolding())
	d.Set("Color", "red")
	d.Set("COLOR", "blue")

	assert.Equal(t, 1, d.Len())
	v, err := d.Get("color")
	require.NoError(t, err)
	assert.Equal(t, "blue", v)
	assert.Equal(t, []string{"Color"}, slicesOf(d.Keys()))
}

func TestDictionary_InsertionOrder(t *testing.T) {
	d := NewDictionary[int, string]()
	for _, k := range []int{5, 1, 3} {
		d.Set(k, "v")
	}
	d.Remove(1)
	d.Set(1, "again")

	assert.Equal(t, []int{5, 3, 1}, slicesOf(d.Keys()))
}

func TestDictionary_CollectionView(t *testing.T) {
	a, b := newItem("a"), newItem("b")
	d := NewDictionary[string, *item]()
	d.Set("first", a)
	d.Set("second", b)

	var c Collection = d
	assert.True(t, c.Keyed())
	key, ok := c.KeyOfElement(b)
	assert.True(t, ok)
	assert.Equal(t, "second", key)
	_, ok = c.KeyOfElement(newItem("c"))
	assert.False(t, ok)
	assert.Equal(t, -1, c.IndexOfElement(a))
	assert.Equal(t, 2, len(slicesOf(c.Elements())))
}

func TestDictionary_ZeroValue(t *testing.T) {
	var d Dictionary[string, int]
	d.Set("a", 1)
	assert.True(t, d.ContainsKey("a"))
}
