package graph

import (
	"fmt"

	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

type Kind int

const (
	KindScalar Kind = iota + 1
	KindChild
	KindCollection
)

type Access int

const (
	AccessReadWrite Access = iota
	AccessReadOnly
	AccessVirtual
)

func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "read-only"
	case AccessVirtual:
		return "virtual"
	default:
		return "read-write"
	}
}

// Field describes one declared member of an entity type. Accessors take the
// entity the schema was built for; any other type panics.
type Field interface {
	Name() string
	Kind() Kind
	// Ignored fields take part in neither dirty aggregation nor wiring.
	Ignored() bool
	Access() Access
	// Tracker returns the dirty state of the member, nil while it is unset.
	Tracker(e Entity) dirty.Tracker
	// Value returns the scalar content, the child entity or the collection.
	Value(e Entity) any
	Child(e Entity) Entity
	Collection(e Entity) dirty.Collection
	// SetAny assigns a scalar from an untyped value.
	SetAny(e Entity, v any) error
}

type fieldBase struct {
	name    string
	ignored bool
	access  Access
}

func (f *fieldBase) Name() string   { return f.name }
func (f *fieldBase) Ignored() bool  { return f.ignored }
func (f *fieldBase) Access() Access { return f.access }

func (f *fieldBase) Child(Entity) Entity                { return nil }
func (f *fieldBase) Collection(Entity) dirty.Collection { return nil }

func (f *fieldBase) SetAny(Entity, any) error {
	return fmt.Errorf("%s is not a scalar: %w", f.name, ErrNotSupported)
}

// FieldOption modifies a field descriptor.
type FieldOption func(*fieldBase)

func Ignored() FieldOption {
	return func(f *fieldBase) { f.ignored = true }
}

// ReadOnly fields are hydrated by their owner and reject assignment.
func ReadOnly() FieldOption {
	return func(f *fieldBase) { f.access = AccessReadOnly }
}

// Virtual fields are computed by the remote side and reject assignment.
func Virtual() FieldOption {
	return func(f *fieldBase) { f.access = AccessVirtual }
}

func newBase(name string, opts []FieldOption) fieldBase {
	b := fieldBase{name: name}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type scalarField[E Entity, T comparable] struct {
	fieldBase
	get func(E) *dirty.Value[T]
}

// Scalar declares a value field stored in a dirty.Value.
func Scalar[E Entity, T comparable](name string, get func(E) *dirty.Value[T], opts ...FieldOption) Field {
	return &scalarField[E, T]{fieldBase: newBase(name, opts), get: get}
}

func (f *scalarField[E, T]) Kind() Kind { return KindScalar }

func (f *scalarField[E, T]) Tracker(e Entity) dirty.Tracker {
	return f.get(e.(E))
}

func (f *scalarField[E, T]) Value(e Entity) any {
	return f.get(e.(E)).Get()
}

func (f *scalarField[E, T]) SetAny(e Entity, v any) error {
	var typed T
	if v != nil {
		t, ok := v.(T)
		if !ok {
			return fmt.Errorf("%s expects %T, got %T: %w", f.name, typed, v, ErrArgumentInvalid)
		}
		typed = t
	}
	return Set(e.Base(), f.get(e.(E)), f.name, typed)
}

// EntityRef is the constraint for pointers to entity structs.
type EntityRef interface {
	comparable
	Entity
}

type childField[E Entity, C EntityRef] struct {
	fieldBase
	get func(E) *C
}

// Child declares a nested entity owned by E.
func Child[E Entity, C EntityRef](name string, get func(E) *C, opts ...FieldOption) Field {
	return &childField[E, C]{fieldBase: newBase(name, opts), get: get}
}

func (f *childField[E, C]) Kind() Kind { return KindChild }

func (f *childField[E, C]) Child(e Entity) Entity {
	var zero C
	c := *f.get(e.(E))
	if c == zero {
		return nil
	}
	return c
}

func (f *childField[E, C]) Tracker(e Entity) dirty.Tracker {
	if c := f.Child(e); c != nil {
		return c.Base()
	}
	return nil
}

func (f *childField[E, C]) Value(e Entity) any {
	if c := f.Child(e); c != nil {
		return c
	}
	return nil
}

type listField[E Entity, T comparable] struct {
	fieldBase
	get func(E) **dirty.List[T]
}

// ListOf declares a list member created lazily by its owner.
func ListOf[E Entity, T comparable](name string, get func(E) **dirty.List[T], opts ...FieldOption) Field {
	return &listField[E, T]{fieldBase: newBase(name, opts), get: get}
}

func (f *listField[E, T]) Kind() Kind { return KindCollection }

func (f *listField[E, T]) Collection(e Entity) dirty.Collection {
	l := *f.get(e.(E))
	if l == nil {
		return nil
	}
	return l
}

func (f *listField[E, T]) Tracker(e Entity) dirty.Tracker {
	if c := f.Collection(e); c != nil {
		return c
	}
	return nil
}

func (f *listField[E, T]) Value(e Entity) any {
	if c := f.Collection(e); c != nil {
		return c
	}
	return nil
}

type mapField[E Entity, K comparable, V comparable] struct {
	fieldBase
	get func(E) **dirty.Dictionary[K, V]
}

// MapOf declares a dictionary member created lazily by its owner.
func MapOf[E Entity, K comparable, V comparable](name string, get func(E) **dirty.Dictionary[K, V], opts ...FieldOption) Field {
	return &mapField[E, K, V]{fieldBase: newBase(name, opts), get: get}
}

func (f *mapField[E, K, V]) Kind() Kind { return KindCollection }

func (f *mapField[E, K, V]) Collection(e Entity) dirty.Collection {
	d := *f.get(e.(E))
	if d == nil {
		return nil
	}
	return d
}

func (f *mapField[E, K, V]) Tracker(e Entity) dirty.Tracker {
	if c := f.Collection(e); c != nil {
		return c
	}
	return nil
}

func (f *mapField[E, K, V]) Value(e Entity) any {
	if c := f.Collection(e); c != nil {
		return c
	}
	return nil
}
