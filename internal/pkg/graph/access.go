package graph

import (
	"fmt"
	"iter"

	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

func (n *Node) writable(name string) error {
	if !n.initialized() {
		return fmt.Errorf("set %s: %w", name, ErrInvalidState)
	}
	f, ok := n.schema.Field(name)
	if !ok {
		return fmt.Errorf("set %s.%s: %w", n.schema.name, name, ErrUnknownField)
	}
	if a := f.Access(); a != AccessReadWrite {
		return fmt.Errorf("set %s field %s.%s: %w", a, n.schema.name, name, ErrNotSupported)
	}
	return nil
}

// Set assigns a scalar member of n. Equal values are ignored; otherwise the
// value is marked dirty and changing/changed events are raised.
func Set[T comparable](n *Node, field *dirty.Value[T], name string, next T) error {
	if err := n.writable(name); err != nil {
		return err
	}
	prior := field.Get()
	if dirty.Equal(prior, next) {
		return nil
	}
	n.propertyChanging(name, prior, next)
	field.Set(next)
	n.propertyChanged(name, prior, next)
	return nil
}

// SetChild assigns a nested entity. While n is observed the old child is
// detached and the new one attached.
func SetChild[C EntityRef](n *Node, field *C, name string, next C) error {
	if err := n.writable(name); err != nil {
		return err
	}
	var zero C
	if next != zero && !next.Base().initialized() {
		return fmt.Errorf("set %s.%s to an uninitialized entity: %w", n.schema.name, name, ErrInvalidState)
	}
	prior := *field
	if prior == next {
		return nil
	}
	n.propertyChanging(name, prior, next)
	*field = next
	if next != zero {
		next.Base().SetDirty(true)
	}
	n.rewire(name)
	n.propertyChanged(name, prior, next)
	return nil
}

// GetChild returns the nested entity, creating it with create when unset.
// A created child is wired immediately when n is observed.
func GetChild[C EntityRef](n *Node, field *C, name string, create func() C) C {
	var zero C
	if *field != zero || create == nil {
		return *field
	}
	*field = create()
	n.rewire(name)
	return *field
}

// SetList replaces a list member with a fresh list holding items. A nil
// items slice clears the member.
func SetList[T comparable](n *Node, field **dirty.List[T], name string, items []T, opts ...dirty.ListOption) error {
	if err := n.writable(name); err != nil {
		return err
	}
	prior := *field
	var next *dirty.List[T]
	if items != nil {
		next = dirty.NewListFrom(items, opts...)
	}
	n.propertyChanging(name, prior, next)
	*field = next
	n.rewire(name)
	n.propertyChanged(name, prior, next)
	return nil
}

// GetList returns the list member, creating an empty one when unset.
func GetList[T comparable](n *Node, field **dirty.List[T], name string, opts ...dirty.ListOption) *dirty.List[T] {
	if *field == nil {
		*field = dirty.NewList[T](opts...)
		n.rewire(name)
	}
	return *field
}

// SetMap replaces a dictionary member with a fresh dictionary holding the
// pairs of entries in order. A nil entries clears the member.
func SetMap[K comparable, V comparable](n *Node, field **dirty.Dictionary[K, V], name string, entries iter.Seq2[K, V], opts ...dirty.DictionaryOption[K]) error {
	if err := n.writable(name); err != nil {
		return err
	}
	prior := *field
	var next *dirty.Dictionary[K, V]
	if entries != nil {
		next = dirty.NewDictionary[K, V](opts...)
		for k, v := range entries {
			next.Set(k, v)
		}
	}
	n.propertyChanging(name, prior, next)
	*field = next
	n.rewire(name)
	n.propertyChanged(name, prior, next)
	return nil
}

// GetMap returns the dictionary member, creating an empty one when unset.
func GetMap[K comparable, V comparable](n *Node, field **dirty.Dictionary[K, V], name string, opts ...dirty.DictionaryOption[K]) *dirty.Dictionary[K, V] {
	if *field == nil {
		*field = dirty.NewDictionary[K, V](opts...)
		n.rewire(name)
	}
	return *field
}
