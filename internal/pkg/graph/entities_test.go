package graph

import (
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

type cents struct {
	v int64
}

func newCents(v int64) *cents { return &cents{v: v} }

func (c *cents) Equal(o *cents) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.v == o.v
}

type leaf struct {
	Node
	id     dirty.Value[string]
	amount dirty.Value[*cents]
	note   dirty.Value[string]
	score  dirty.Value[int]
}

var leafSchema = MustSchema("Leaf", []Field{
	Scalar("Id", func(l *leaf) *dirty.Value[string] { return &l.id }),
	Scalar("Amount", func(l *leaf) *dirty.Value[*cents] { return &l.amount }),
	Scalar("Note", func(l *leaf) *dirty.Value[string] { return &l.note }, Ignored()),
	Scalar("Score", func(l *leaf) *dirty.Value[int] { return &l.score }, ReadOnly()),
}, WithIDField("Id"))

func newLeaf(id string) *leaf {
	l := &leaf{id: dirty.NewValue(id)}
	Init(l, leafSchema)
	return l
}

func (l *leaf) SetID(id string) error   { return Set(&l.Node, &l.id, "Id", id) }
func (l *leaf) SetAmount(v int64) error { return Set(&l.Node, &l.amount, "Amount", newCents(v)) }
func (l *leaf) SetNote(s string) error  { return Set(&l.Node, &l.note, "Note", s) }
func (l *leaf) SetScore(v int) error    { return Set(&l.Node, &l.score, "Score", v) }

type mid struct {
	Node
	b     *leaf
	items *dirty.List[*leaf]
	byKey *dirty.Dictionary[string, *leaf]
}

var midSchema = MustSchema("Mid", []Field{
	Child("B", func(m *mid) **leaf { return &m.b }),
	ListOf("Items", func(m *mid) **dirty.List[*leaf] { return &m.items }),
	MapOf("ByKey", func(m *mid) **dirty.Dictionary[string, *leaf] { return &m.byKey }),
})

func newMid() *mid {
	m := &mid{}
	Init(m, midSchema)
	return m
}

func (m *mid) B() *leaf {
	return GetChild(&m.Node, &m.b, "B", func() *leaf { return newLeaf("") })
}

func (m *mid) SetB(l *leaf) error { return SetChild(&m.Node, &m.b, "B", l) }

func (m *mid) Items() *dirty.List[*leaf] { return GetList(&m.Node, &m.items, "Items") }

func (m *mid) ByKey() *dirty.Dictionary[string, *leaf] {
	return GetMap(&m.Node, &m.byKey, "ByKey", dirty.WithKeyFolding())
}

type root struct {
	Node
	a    *mid
	name dirty.Value[string]
}

var rootSchema = MustSchema("Root", []Field{
	Child("A", func(r *root) **mid { return &r.a }),
	Scalar("Name", func(r *root) *dirty.Value[string] { return &r.name }),
})

func newRoot() *root {
	r := &root{}
	Init(r, rootSchema)
	return r
}

func (r *root) A() *mid {
	return GetChild(&r.Node, &r.a, "A", newMid)
}

// recorder collects changed events of one subscription.
type recorder struct {
	events []Event
}

func (r *recorder) record(ev Event) {
	if ev.Phase == Changed {
		r.events = append(r.events, ev)
	}
}

func (r *recorder) paths() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.PathString())
	}
	return out
}
