package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

type cyc struct {
	Node
	other   *cyc
	reentry dirty.Value[*reentrant]
	flag    dirty.Value[bool]
}

var cycSchema = MustSchema("Cyc", []Field{
	Child("Other", func(c *cyc) **cyc { return &c.other }),
	Scalar("Reentry", func(c *cyc) *dirty.Value[*reentrant] { return &c.reentry }),
	Scalar("Flag", func(c *cyc) *dirty.Value[bool] { return &c.flag }),
})

func newCyc() *cyc {
	c := &cyc{}
	Init(c, cycSchema)
	return c
}

// reentrant re-enters its owner's Dirty while being evaluated.
type reentrant struct {
	owner     *cyc
	reentered []bool
}

func (p *reentrant) Dirty() bool {
	p.reentered = append(p.reentered, p.owner.Dirty())
	return false
}

func (p *reentrant) SetDirty(bool) {}

func TestDirty_AggregatesNestedMembers(t *testing.T) {
	r := newRoot()
	b := r.A().B()
	r.A().Items().Append(newLeaf("x"))
	r.A().ByKey().Set("k", newLeaf("y"))

	r.SetDirty(false)
	assert.False(t, r.Dirty())
	assert.False(t, r.A().Items().Dirty())

	require.NoError(t, b.SetAmount(1))
	assert.True(t, r.Dirty())
	assert.True(t, r.A().Dirty())

	r.SetDirty(false)
	assert.False(t, r.Dirty())
	assert.False(t, b.Dirty())

	el, err := r.A().Items().Get(0)
	require.NoError(t, err)
	require.NoError(t, el.SetAmount(2))
	assert.True(t, r.Dirty(), "list elements count")
	assert.Equal(t, map[int]*leaf{0: el}, collectDirty(r.A().Items()))

	r.SetDirty(false)
	v, _ := r.A().ByKey().TryGet("K")
	require.NoError(t, v.SetAmount(3))
	assert.True(t, r.Dirty(), "dictionary elements count")
}

func collectDirty(l *dirty.List[*leaf]) map[int]*leaf {
	out := map[int]*leaf{}
	for i, v := range l.DirtyItems() {
		out[i] = v
	}
	return out
}

func TestDirty_IgnoredFieldsDoNotCount(t *testing.T) {
	l := newLeaf("a")
	require.NoError(t, l.SetNote("scratch"))
	assert.False(t, l.Dirty())

	l.note.SetDirty(true)
	l.SetDirty(false)
	assert.True(t, l.note.Dirty(), "reset skips ignored fields")
}

func TestDirty_Extensions(t *testing.T) {
	l := newLeaf("a")
	l.Extensions().Set("Unmodeled", `"raw"`)
	assert.True(t, l.Dirty())

	l.SetDirty(false)
	assert.False(t, l.Extensions().Dirty())
	assert.False(t, l.Dirty())
}

func TestDirty_ReentrantEvaluationUnderReports(t *testing.T) {
	c := newCyc()
	p := &reentrant{owner: c}
	c.reentry = dirty.NewValue(p)
	c.flag = dirty.NewDirtyValue(true)

	assert.True(t, c.Dirty())
	assert.Equal(t, []bool{false}, p.reentered, "a node already being evaluated reports clean")
}

func TestDirty_CycleTerminates(t *testing.T) {
	a, b := newCyc(), newCyc()
	a.other, b.other = b, a

	assert.False(t, a.Dirty())

	b.flag = dirty.NewDirtyValue(true)
	assert.True(t, a.Dirty())

	a.SetDirty(false)
	assert.False(t, b.flag.Dirty())

	a.SetDirty(true)
	assert.True(t, b.Dirty())
}

func TestDirty_AlwaysDirtySchema(t *testing.T) {
	type always struct {
		Node
		v dirty.Value[int]
	}
	s := MustSchema("Always", []Field{
		Scalar("V", func(a *always) *dirty.Value[int] { return &a.v }),
	}, AlwaysDirty())
	a := &always{}
	Init(a, s)

	assert.True(t, a.Dirty())
	a.SetDirty(false)
	assert.True(t, a.Dirty())
}

func TestDirtyFields(t *testing.T) {
	l := newLeaf("a")
	l.SetDirty(false)
	require.NoError(t, l.SetAmount(4))

	var names []string
	for f := range DirtyFields(l) {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"Amount"}, names)

	type tagged struct {
		Node
		id   dirty.Value[string]
		tags *dirty.List[string]
	}
	s := MustSchema("Tagged", []Field{
		Scalar("Id", func(x *tagged) *dirty.Value[string] { return &x.id }),
		ListOf("Tags", func(x *tagged) **dirty.List[string] { return &x.tags }),
	}, AlwaysSerialize("tags"))
	x := &tagged{}
	Init(x, s)

	names = nil
	for f := range DirtyFields(x) {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"Tags"}, names)
}

func TestResolve(t *testing.T) {
	r := newRoot()
	b := r.A().B()
	second := newLeaf("second")
	r.A().Items().Append(newLeaf("first"))
	r.A().Items().Append(second)
	keyed := newLeaf("keyed")
	r.A().ByKey().Set("Primary", keyed)

	t.Run("child chain", func(t *testing.T) {
		owner, f, err := Resolve(r, "A.B.Amount")
		require.NoError(t, err)
		assert.Same(t, b, owner)
		assert.Equal(t, "Amount", f.Name())

		require.NoError(t, f.SetAny(owner, newCents(12)))
		assert.Equal(t, int64(12), b.amount.Get().v)
	})

	t.Run("list and dictionary members", func(t *testing.T) {
		owner, _, err := Resolve(r, "a.items[1].amount")
		require.NoError(t, err)
		assert.Same(t, second, owner)

		owner, _, err = Resolve(r, "A.ByKey[primary].Id")
		require.NoError(t, err)
		assert.Same(t, keyed, owner)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := Resolve(r, "A.Missing")
		assert.ErrorIs(t, err, ErrUnknownField)
		_, _, err = Resolve(r, "A.Items[5].Amount")
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = Resolve(r, "A.Items[0]")
		assert.ErrorIs(t, err, ErrNotSupported)
		_, _, err = Resolve(r, "A.Items.Amount")
		assert.ErrorIs(t, err, ErrArgumentInvalid)
		_, _, err = Resolve(r, "Name.X")
		assert.ErrorIs(t, err, ErrArgumentInvalid)
		_, _, err = Resolve(newRoot(), "A.B")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("typed assignment", func(t *testing.T) {
		owner, f, err := Resolve(r, "Name")
		require.NoError(t, err)
		assert.ErrorIs(t, f.SetAny(owner, 5), ErrArgumentInvalid)
		require.NoError(t, f.SetAny(owner, "named"))
		assert.Equal(t, "named", r.name.Get())

		_, child, err := Resolve(r, "A")
		require.NoError(t, err)
		assert.ErrorIs(t, child.SetAny(r, nil), ErrNotSupported)
	})
}

func TestNewSchema_Errors(t *testing.T) {
	v := func(l *leaf) *dirty.Value[string] { return &l.id }

	_, err := NewSchema("Dup", []Field{Scalar("Id", v), Scalar("id", v)})
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = NewSchema("NoID", []Field{Scalar("Id", v)}, WithIDField("Key"))
	assert.ErrorIs(t, err, ErrUnknownIDField)

	_, err = NewSchema("ChildID", []Field{Child("B", func(m *mid) **leaf { return &m.b })}, WithIDField("B"))
	assert.ErrorIs(t, err, ErrUnknownIDField)

	_, err = NewSchema("Always", []Field{Scalar("Id", v)}, AlwaysSerialize("Other"))
	assert.ErrorIs(t, err, ErrUnknownField)

	assert.Panics(t, func() { MustSchema("Dup", []Field{Scalar("Id", v), Scalar("Id", v)}) })
}
