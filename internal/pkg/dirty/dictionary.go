package dirty

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/light-bringer/changegraph/internal/pkg/observer"
)

type dictionaryOptions[K comparable] struct {
	fold func(K) K
}

// DictionaryOption configures a Dictionary.
type DictionaryOption[K comparable] func(*dictionaryOptions[K])

// WithKeyFolding makes string keys case-insensitive. The first spelling of a
// key is the one enumerated.
func WithKeyFolding() DictionaryOption[string] {
	return func(o *dictionaryOptions[string]) {
		o.fold = strings.ToLower
	}
}

type entry[K, V comparable] struct {
	key   K
	value Value[V]
}

// Dictionary maps keys to dirty values and enumerates them in insertion
// order. The zero value is an empty dictionary ready to use.
type Dictionary[K comparable, V comparable] struct {
	entries map[K]*entry[K, V]
	order   []K
	fold    func(K) K

	changing observer.List[struct{}]
	changed  observer.List[Change]
}

// NewDictionary returns an empty dictionary.
func NewDictionary[K comparable, V comparable](opts ...DictionaryOption[K]) *Dictionary[K, V] {
	var o dictionaryOptions[K]
	for _, opt := range opts {
		opt(&o)
	}
	return &Dictionary[K, V]{fold: o.fold}
}

func (d *Dictionary[K, V]) folded(k K) K {
	if d.fold != nil {
		return d.fold(k)
	}
	return k
}

func (d *Dictionary[K, V]) lookup(k K) (*entry[K, V], bool) {
	e, ok := d.entries[d.folded(k)]
	return e, ok
}

// Set stores v under k and raises Add or Replace. Storing a value equal to
// the current one is a no-op.
func (d *Dictionary[K, V]) Set(k K, v V) {
	fk := d.folded(k)
	e, existed := d.entries[fk]
	if existed && Equal(e.value.value, v) {
		return
	}
	d.changing.Notify(struct{}{})
	if !existed {
		if d.entries == nil {
			d.entries = make(map[K]*entry[K, V])
		}
		d.entries[fk] = &entry[K, V]{key: k, value: NewDirtyValue(v)}
		d.order = append(d.order, fk)
		if d.changed.Len() > 0 {
			d.changed.Notify(Change{Action: Add, NewItems: []any{v}, NewIndex: -1, OldIndex: -1, Key: k})
		}
		return
	}
	var prior V
	observed := d.changed.Len() > 0
	if observed {
		prior = e.value.value
	}
	e.value = NewDirtyValue(v)
	if observed {
		d.changed.Notify(Change{Action: Replace, NewItems: []any{v}, OldItems: []any{prior}, NewIndex: -1, OldIndex: -1, Key: e.key})
	}
}

// Add stores v under a new key. An existing key fails with
// ErrArgumentInvalid.
func (d *Dictionary[K, V]) Add(k K, v V) error {
	if _, ok := d.lookup(k); ok {
		return fmt.Errorf("key %v already present: %w", k, ErrArgumentInvalid)
	}
	d.Set(k, v)
	return nil
}

// Get returns the value under k, or ErrKeyNotFound.
func (d *Dictionary[K, V]) Get(k K) (V, error) {
	e, ok := d.lookup(k)
	if !ok {
		var zero V
		return zero, fmt.Errorf("key %v: %w", k, ErrKeyNotFound)
	}
	return e.value.value, nil
}

// TryGet returns the value under k and whether k was present.
func (d *Dictionary[K, V]) TryGet(k K) (V, bool) {
	e, ok := d.lookup(k)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value.value, true
}

// ContainsKey reports whether k is present.
func (d *Dictionary[K, V]) ContainsKey(k K) bool {
	_, ok := d.lookup(k)
	return ok
}

// Remove deletes k and raises Remove. It reports whether k was present.
func (d *Dictionary[K, V]) Remove(k K) bool {
	fk := d.folded(k)
	e, ok := d.entries[fk]
	if !ok {
		return false
	}
	d.changing.Notify(struct{}{})
	delete(d.entries, fk)
	if i := slices.Index(d.order, fk); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
	d.changed.Notify(Change{Action: Remove, OldItems: []any{e.value.value}, NewIndex: -1, OldIndex: -1, Key: e.key})
	return true
}

// Clear removes every entry and raises Reset carrying the removed values.
func (d *Dictionary[K, V]) Clear() {
	if len(d.order) == 0 {
		return
	}
	d.changing.Notify(struct{}{})
	old := make([]any, 0, len(d.order))
	for _, fk := range d.order {
		old = append(old, d.entries[fk].value.value)
	}
	clear(d.entries)
	d.order = nil
	d.changed.Notify(Change{Action: Reset, OldItems: old, NewIndex: -1, OldIndex: -1})
}

// Len returns the number of entries.
func (d *Dictionary[K, V]) Len() int {
	return len(d.order)
}

// Keys yields the keys in insertion order, as first spelled.
func (d *Dictionary[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, fk := range d.order {
			if !yield(d.entries[fk].key) {
				return
			}
		}
	}
}

// All yields every key and value in insertion order.
func (d *Dictionary[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, fk := range d.order {
			e := d.entries[fk]
			if !yield(e.key, e.value.value) {
				return
			}
		}
	}
}

// DirtyItems lazily yields only the dirty entries.
func (d *Dictionary[K, V]) DirtyItems() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, fk := range d.order {
			e := d.entries[fk]
			if e.value.Dirty() && !yield(e.key, e.value.value) {
				return
			}
		}
	}
}

// Dirty reports whether any entry is dirty.
func (d *Dictionary[K, V]) Dirty() bool {
	for _, e := range d.entries {
		if e.value.Dirty() {
			return true
		}
	}
	return false
}

// SetDirty marks every entry dirty or clean.
func (d *Dictionary[K, V]) SetDirty(dirty bool) {
	for _, e := range d.entries {
		e.value.SetDirty(dirty)
	}
}

// OnChanging registers fn to run before each mutation.
func (d *Dictionary[K, V]) OnChanging(fn func()) (cancel func()) {
	return d.changing.Add(func(struct{}) { fn() })
}

// OnChanged registers fn to receive each mutation once it is applied.
func (d *Dictionary[K, V]) OnChanged(fn func(Change)) (cancel func()) {
	return d.changed.Add(fn)
}

// Elements yields the values in insertion order.
func (d *Dictionary[K, V]) Elements() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, fk := range d.order {
			if !yield(d.entries[fk].value.value) {
				return
			}
		}
	}
}

// Keyed is true: entries are addressed by key.
func (d *Dictionary[K, V]) Keyed() bool {
	return true
}

// IndexOfElement is always -1 for dictionaries.
func (d *Dictionary[K, V]) IndexOfElement(any) int {
	return -1
}

// KeyOfElement returns the rendered key of the first entry holding element.
func (d *Dictionary[K, V]) KeyOfElement(element any) (string, bool) {
	var v V
	if element != nil {
		typed, ok := element.(V)
		if !ok {
			return "", false
		}
		v = typed
	}
	for _, fk := range d.order {
		e := d.entries[fk]
		if e.value.value == v {
			return fmt.Sprint(e.key), true
		}
	}
	return "", false
}

// Entries yields key and value pairs in insertion order, only the dirty
// ones when onlyDirty is set.
func (d *Dictionary[K, V]) Entries(onlyDirty bool) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, fk := range d.order {
			e := d.entries[fk]
			if onlyDirty && !e.value.Dirty() {
				continue
			}
			if !yield(e.key, e.value.value) {
				return
			}
		}
	}
}
