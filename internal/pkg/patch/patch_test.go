package patch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

type line struct {
	graph.Node
	id  dirty.Value[string]
	sku dirty.Value[string]
	qty dirty.Value[int]
}

var lineSchema = graph.MustSchema("Line", []graph.Field{
	graph.Scalar("Id", func(l *line) *dirty.Value[string] { return &l.id }),
	graph.Scalar("SKU", func(l *line) *dirty.Value[string] { return &l.sku }),
	graph.Scalar("Qty", func(l *line) *dirty.Value[int] { return &l.qty }),
}, graph.WithIDField("Id"))

func newLine(id, sku string, qty int) *line {
	l := &line{id: dirty.NewValue(id), sku: dirty.NewValue(sku), qty: dirty.NewValue(qty)}
	graph.Init(l, lineSchema)
	return l
}

type bundle struct {
	graph.Node
	code dirty.Value[string]
}

var bundleSchema = graph.MustSchema("Bundle", []graph.Field{
	graph.Scalar("Code", func(b *bundle) *dirty.Value[string] { return &b.code }),
}, graph.SerializeWholeListWhenDirty())

func newBundle(code string) *bundle {
	b := &bundle{code: dirty.NewValue(code)}
	graph.Init(b, bundleSchema)
	return b
}

type address struct {
	graph.Node
	city dirty.Value[string]
}

var addressSchema = graph.MustSchema("Address", []graph.Field{
	graph.Scalar("City", func(a *address) *dirty.Value[string] { return &a.city }),
})

type order struct {
	graph.Node
	refID    dirty.Value[string]
	placed   dirty.Value[time.Time]
	memo     dirty.Value[string]
	shipping *address
	lines    *dirty.List[*line]
	bundles  *dirty.List[*bundle]
	tags     *dirty.List[string]
	attrs    *dirty.Dictionary[string, string]
	odd      dirty.Value[complex128]
}

var orderSchema = graph.MustSchema("Order", []graph.Field{
	graph.Scalar("RefId", func(o *order) *dirty.Value[string] { return &o.refID }),
	graph.Scalar("Placed", func(o *order) *dirty.Value[time.Time] { return &o.placed }),
	graph.Scalar("Memo", func(o *order) *dirty.Value[string] { return &o.memo }, graph.Ignored()),
	graph.Child("Shipping", func(o *order) **address { return &o.shipping }),
	graph.ListOf("Lines", func(o *order) **dirty.List[*line] { return &o.lines }),
	graph.ListOf("Bundles", func(o *order) **dirty.List[*bundle] { return &o.bundles }),
	graph.ListOf("Tags", func(o *order) **dirty.List[string] { return &o.tags }),
	graph.MapOf("Attrs", func(o *order) **dirty.Dictionary[string, string] { return &o.attrs }),
	graph.Scalar("Odd", func(o *order) *dirty.Value[complex128] { return &o.odd }),
}, graph.WithIDField("RefId"))

func newOrder() *order {
	o := &order{refID: dirty.NewValue("o-1")}
	graph.Init(o, orderSchema)
	o.shipping = &address{}
	graph.Init(o.shipping, addressSchema)
	o.lines = dirty.NewListFrom([]*line{newLine("l0", "A", 1), newLine("l1", "B", 2), newLine("l2", "C", 3)})
	o.bundles = dirty.NewListFrom([]*bundle{newBundle("x"), newBundle("y")})
	o.tags = dirty.NewListFrom([]string{"red", "blue"})
	o.attrs = dirty.NewDictionary[string, string]()
	o.attrs.Set("color", "red")
	o.attrs.Set("size", "m")
	o.SetDirty(false)
	return o
}

func build(t *testing.T, o *order) map[string]any {
	t.Helper()
	s, err := Build(o)
	require.NoError(t, err)
	return s.AsMap()
}

func TestBuild_CleanEntityIsEmpty(t *testing.T) {
	assert.Empty(t, build(t, newOrder()))
}

func TestBuild_DirtyScalarsOnly(t *testing.T) {
	o := newOrder()
	require.NoError(t, graph.Set(&o.Node, &o.refID, "RefId", "o-2"))
	require.NoError(t, graph.Set(&o.Node, &o.memo, "Memo", "ignored"))

	assert.Equal(t, map[string]any{"refId": "o-2"}, build(t, o))
}

func TestBuild_ElementByElement(t *testing.T) {
	o := newOrder()
	l1, err := o.lines.Get(1)
	require.NoError(t, err)
	require.NoError(t, graph.Set(&l1.Node, &l1.qty, "Qty", 5))

	assert.Equal(t, map[string]any{
		"lines": []any{map[string]any{"id": "l1", "qty": float64(5)}},
	}, build(t, o))
}

func TestBuild_WholeListPolicy(t *testing.T) {
	o := newOrder()
	b, err := o.bundles.Get(1)
	require.NoError(t, err)
	require.NoError(t, graph.Set(&b.Node, &b.code, "Code", "z"))

	assert.Equal(t, map[string]any{
		"bundles": []any{
			map[string]any{"code": "x"},
			map[string]any{"code": "z"},
		},
	}, build(t, o))
}

func TestBuild_ScalarListIsWhole(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.tags.Set(0, "green"))

	assert.Equal(t, map[string]any{"tags": []any{"green", "blue"}}, build(t, o))
}

func TestBuild_DictionaryDirtyItems(t *testing.T) {
	o := newOrder()
	o.attrs.Set("size", "l")

	assert.Equal(t, map[string]any{"attrs": map[string]any{"size": "l"}}, build(t, o))
}

func TestBuild_NestedChild(t *testing.T) {
	o := newOrder()
	require.NoError(t, graph.Set(&o.shipping.Node, &o.shipping.city, "City", "Oslo"))

	assert.Equal(t, map[string]any{"shipping": map[string]any{"city": "Oslo"}}, build(t, o))
}

func TestBuild_Time(t *testing.T) {
	o := newOrder()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, graph.Set(&o.Node, &o.placed, "Placed", at))

	assert.Equal(t, map[string]any{"placed": "2024-05-06T07:08:09Z"}, build(t, o))
}

func TestBuild_Extensions(t *testing.T) {
	o := newOrder()
	o.Extensions().Set("legacyFlag", `{"on":true}`)

	assert.Equal(t, map[string]any{"legacyFlag": map[string]any{"on": true}}, build(t, o))
}

func TestBuild_LeavesExtensionsUnallocated(t *testing.T) {
	o := newOrder()
	require.NoError(t, graph.Set(&o.Node, &o.refID, "RefId", "o-2"))
	build(t, o)
	assert.Nil(t, o.PeekExtensions())
	assert.Nil(t, o.shipping.PeekExtensions())
}

func TestBuild_UnsupportedValue(t *testing.T) {
	o := newOrder()
	o.odd = dirty.NewDirtyValue(complex(1, 2))

	_, err := Build(o)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestBuild_AlwaysSerialize(t *testing.T) {
	type filters struct {
		graph.Node
		attributes *dirty.List[string]
		name       dirty.Value[string]
	}
	s := graph.MustSchema("Filters", []graph.Field{
		graph.ListOf("Attributes", func(f *filters) **dirty.List[string] { return &f.attributes }),
		graph.Scalar("Name", func(f *filters) *dirty.Value[string] { return &f.name }),
	}, graph.AlwaysSerialize("Attributes"), graph.AlwaysDirty())
	f := &filters{attributes: dirty.NewListFrom([]string{"a"})}
	graph.Init(f, s)
	f.SetDirty(false)

	got, err := Build(f)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"attributes": []any{"a"}}, got.AsMap())
}

func TestFull(t *testing.T) {
	o := newOrder()
	// Odd has no JSON form, so render against the other fields only.
	graph.Init(o, graph.MustSchema("Order", orderSchema.Fields()[:8], graph.WithIDField("RefId")))

	s, err := Full(o)
	require.NoError(t, err)
	m := s.AsMap()
	assert.Equal(t, "o-1", m["refId"])
	assert.Len(t, m["lines"], 3)
	assert.Equal(t, map[string]any{"color": "red", "size": "m"}, m["attrs"])
	assert.Equal(t, map[string]any{"city": ""}, m["shipping"])
	assert.NotContains(t, m, "memo")
}

func TestMarshal(t *testing.T) {
	o := newOrder()
	require.NoError(t, graph.Set(&o.Node, &o.refID, "RefId", "o-9"))

	raw, err := Marshal(o)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]any{"refId": "o-9"}, got)
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestValue(t *testing.T) {
	s := "p"
	var nilString *string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "x", "x"},
		{"int64", int64(3), float64(3)},
		{"uint8", uint8(4), float64(4)},
		{"float", 1.5, 1.5},
		{"bool", true, true},
		{"pointer", &s, "p"},
		{"nil pointer", nilString, nil},
		{"stringer", label("a"), "label:a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Value(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.AsInterface())
		})
	}
}

func TestMember(t *testing.T) {
	o := newOrder()

	v, err := Member(o.shipping)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": ""}, v.AsInterface())

	v, err = Member(o.tags)
	require.NoError(t, err)
	assert.Equal(t, []any{"red", "blue"}, v.AsInterface())

	v, err = Member(o.attrs)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red", "size": "m"}, v.AsInterface())

	var unset *dirty.List[string]
	v, err = Member(unset)
	require.NoError(t, err)
	assert.Nil(t, v.AsInterface())

	v, err = Member(int64(9))
	require.NoError(t, err)
	assert.Equal(t, float64(9), v.AsInterface())
}
