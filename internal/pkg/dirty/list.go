package dirty

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/light-bringer/changegraph/internal/pkg/observer"
)

type listOptions struct {
	normalize func(string) string
}

// ListOption configures a List.
type ListOption func(*listOptions)

// WithIdentityNormalizer replaces the case-insensitive comparison of element
// ids with fn. Ids that normalize to the same string address the same entry.
func WithIdentityNormalizer(fn func(string) string) ListOption {
	return func(o *listOptions) {
		o.normalize = fn
	}
}

type slot[T comparable] struct {
	value   Value[T]
	unwatch func()
}

func (s *slot[T]) release() {
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
}

// List is an ordered sequence of dirty values. When T is Identifiable the
// list keeps an index from element id to position that follows every insert,
// removal, move and later id change.
//
// The zero value is an empty list ready to use. A List is not safe for
// concurrent mutation.
type List[T comparable] struct {
	slots     []*slot[T]
	ids       map[string]int
	normalize func(string) string

	changing observer.List[struct{}]
	changed  observer.List[Change]
}

// NewList returns an empty list.
func NewList[T comparable](opts ...ListOption) *List[T] {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &List[T]{normalize: o.normalize}
}

// NewListFrom returns a list holding items, each marked dirty.
func NewListFrom[T comparable](items []T, opts ...ListOption) *List[T] {
	l := NewList[T](opts...)
	for _, item := range items {
		l.insertSlot(len(l.slots), NewDirtyValue(item))
	}
	return l
}

func (l *List[T]) identifiable() bool {
	var zero T
	_, ok := any(zero).(Identifiable)
	return ok
}

func (l *List[T]) key(id string) string {
	if l.normalize != nil {
		return l.normalize(id)
	}
	return strings.ToLower(id)
}

func (l *List[T]) index() map[string]int {
	if l.ids == nil {
		l.ids = make(map[string]int)
	}
	return l.ids
}

func identityOf[T comparable](v T) string {
	var zero T
	if v == zero {
		return ""
	}
	if id, ok := any(v).(Identifiable); ok {
		return id.Identity()
	}
	return ""
}

// unregister drops the index entry that v at position at holds. Another
// element with the same id takes the entry over.
func (l *List[T]) unregister(v T, at int) {
	if id := identityOf(v); id != "" {
		l.unlink(l.key(id), at)
	}
}

func (l *List[T]) unlink(k string, at int) {
	if i, ok := l.ids[k]; !ok || i != at {
		return
	}
	delete(l.ids, k)
	for i, s := range l.slots {
		if i == at {
			continue
		}
		if id := identityOf(s.value.value); id != "" && l.key(id) == k {
			l.ids[k] = i
			return
		}
	}
}

func (l *List[T]) watch(s *slot[T]) {
	var zero T
	if s.value.value == zero {
		return
	}
	n, ok := any(s.value.value).(IdentityNotifier)
	if !ok {
		return
	}
	s.unwatch = n.WatchIdentity(func(prior, next string) {
		l.reidentify(s, prior, next)
	})
}

func (l *List[T]) reidentify(s *slot[T], prior, next string) {
	at := slices.Index(l.slots, s)
	if at < 0 {
		return
	}
	if prior != "" {
		l.unlink(l.key(prior), at)
	}
	if next != "" {
		l.index()[l.key(next)] = at
	}
}

func (l *List[T]) insertSlot(at int, v Value[T]) {
	s := &slot[T]{value: v}
	l.slots = slices.Insert(l.slots, at, s)
	if !l.identifiable() {
		return
	}
	if at < len(l.slots)-1 {
		for id, i := range l.ids {
			if i >= at {
				l.ids[id] = i + 1
			}
		}
	}
	if id := identityOf(v.value); id != "" {
		l.index()[l.key(id)] = at
	}
	l.watch(s)
}

func (l *List[T]) removeSlot(at int) T {
	s := l.slots[at]
	if l.identifiable() {
		l.unregister(s.value.value, at)
	}
	l.slots = slices.Delete(l.slots, at, at+1)
	if l.identifiable() {
		for id, i := range l.ids {
			if i > at {
				l.ids[id] = i - 1
			}
		}
		s.release()
	}
	return s.value.value
}

func (l *List[T]) checkIndex(i int) error {
	if i < 0 || i >= len(l.slots) {
		return fmt.Errorf("index %d of %d: %w", i, len(l.slots), ErrIndexOutOfRange)
	}
	return nil
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.slots)
}

// Get returns the element at i, or ErrIndexOutOfRange.
func (l *List[T]) Get(i int) (T, error) {
	if err := l.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return l.slots[i].value.value, nil
}

// Set replaces the element at i. Replacing an element with an equal one is
// a no-op.
func (l *List[T]) Set(i int, v T) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	s := l.slots[i]
	old := s.value.value
	if Equal(old, v) {
		return nil
	}
	l.changing.Notify(struct{}{})
	if l.identifiable() {
		l.unregister(old, i)
		s.release()
		if id := identityOf(v); id != "" {
			l.index()[l.key(id)] = i
		}
	}
	s.value = NewDirtyValue(v)
	if l.identifiable() {
		l.watch(s)
	}
	l.changed.Notify(Change{Action: Replace, NewItems: []any{v}, OldItems: []any{old}, NewIndex: i, OldIndex: i})
	return nil
}

// Insert places v at position i, shifting later elements up by one.
func (l *List[T]) Insert(i int, v T) error {
	if i < 0 || i > len(l.slots) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(l.slots), ErrIndexOutOfRange)
	}
	l.changing.Notify(struct{}{})
	l.insertSlot(i, NewDirtyValue(v))
	l.changed.Notify(Change{Action: Add, NewItems: []any{v}, NewIndex: i, OldIndex: -1})
	return nil
}

// Append adds v at the end.
func (l *List[T]) Append(v T) {
	_ = l.Insert(len(l.slots), v)
}

// AddRange appends items[start:start+length] and raises a single Add.
func (l *List[T]) AddRange(items []T, start, length int) error {
	if start < 0 || length < 0 || start+length > len(items) {
		return fmt.Errorf("range [%d:%d] of %d items: %w", start, start+length, len(items), ErrIndexOutOfRange)
	}
	if length == 0 {
		return nil
	}
	l.changing.Notify(struct{}{})
	at := len(l.slots)
	added := make([]any, 0, length)
	for _, item := range items[start : start+length] {
		l.insertSlot(len(l.slots), NewDirtyValue(item))
		added = append(added, item)
	}
	l.changed.Notify(Change{Action: Add, NewItems: added, NewIndex: at, OldIndex: -1})
	return nil
}

// AddRangeAny is AddRange for untyped input. Elements that are not T fail
// with ErrArgumentInvalid before anything is added.
func (l *List[T]) AddRangeAny(items []any, start, length int) error {
	if start < 0 || length < 0 || start+length > len(items) {
		return fmt.Errorf("range [%d:%d] of %d items: %w", start, start+length, len(items), ErrIndexOutOfRange)
	}
	typed := make([]T, 0, length)
	for i, item := range items[start : start+length] {
		if item == nil {
			var zero T
			typed = append(typed, zero)
			continue
		}
		v, ok := item.(T)
		if !ok {
			return fmt.Errorf("element %d is %T: %w", start+i, item, ErrArgumentInvalid)
		}
		typed = append(typed, v)
	}
	return l.AddRange(typed, 0, len(typed))
}

// RemoveAt removes and returns the element at i.
func (l *List[T]) RemoveAt(i int) (T, error) {
	if err := l.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	l.changing.Notify(struct{}{})
	v := l.removeSlot(i)
	l.changed.Notify(Change{Action: Remove, OldItems: []any{v}, NewIndex: -1, OldIndex: i})
	return v, nil
}

// Remove removes the first occurrence of v and reports whether it was found.
func (l *List[T]) Remove(v T) bool {
	i := l.IndexOf(v)
	if i < 0 {
		return false
	}
	_, err := l.RemoveAt(i)
	return err == nil
}

// Move shifts the element at from to position to. Elements in between move
// one step towards from, and only their entries in the identity index are
// rewritten.
func (l *List[T]) Move(from, to int) error {
	if err := l.checkIndex(from); err != nil {
		return fmt.Errorf("move from: %w", err)
	}
	if err := l.checkIndex(to); err != nil {
		return fmt.Errorf("move to: %w", err)
	}
	if from == to {
		return nil
	}
	l.changing.Notify(struct{}{})
	s := l.slots[from]
	if from < to {
		copy(l.slots[from:to], l.slots[from+1:to+1])
	} else {
		copy(l.slots[to+1:from+1], l.slots[to:from])
	}
	l.slots[to] = s
	if l.identifiable() {
		for i := min(from, to); i <= max(from, to); i++ {
			if id := identityOf(l.slots[i].value.value); id != "" {
				l.index()[l.key(id)] = i
			}
		}
	}
	v := s.value.value
	l.changed.Notify(Change{Action: Move, NewItems: []any{v}, OldItems: []any{v}, NewIndex: to, OldIndex: from})
	return nil
}

// Clear removes every element and raises one Remove carrying all of them.
func (l *List[T]) Clear() {
	if len(l.slots) == 0 {
		return
	}
	l.changing.Notify(struct{}{})
	old := make([]any, 0, len(l.slots))
	for _, s := range l.slots {
		old = append(old, s.value.value)
		s.release()
	}
	l.slots = nil
	clear(l.ids)
	l.changed.Notify(Change{Action: Remove, OldItems: old, NewIndex: -1, OldIndex: -1})
}

// IndexOf returns the position of v, or -1. Identifiable elements with an id
// are looked up in the identity index first. An element whose id another
// element holds the entry for is found by a scan.
func (l *List[T]) IndexOf(v T) int {
	if l.identifiable() {
		if id := identityOf(v); id != "" {
			if i, ok := l.ids[l.key(id)]; ok && l.slots[i].value.value == v {
				return i
			}
		}
	}
	for i, s := range l.slots {
		if Equal(s.value.value, v) {
			return i
		}
	}
	return -1
}

// IndexOfID returns the position of the element whose id is id, or -1.
func (l *List[T]) IndexOfID(id string) int {
	if id == "" {
		return -1
	}
	k := l.key(id)
	if l.identifiable() {
		if i, ok := l.ids[k]; ok {
			return i
		}
		return -1
	}
	for i, s := range l.slots {
		if other, ok := any(s.value.value).(Identifiable); ok && other != nil && l.key(other.Identity()) == k {
			return i
		}
	}
	return -1
}

// Contains reports whether v is in the list.
func (l *List[T]) Contains(v T) bool {
	return l.IndexOf(v) >= 0
}

// All yields every position and element in order.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, s := range l.slots {
			if !yield(i, s.value.value) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, s := range l.slots {
			if !yield(s.value.value) {
				return
			}
		}
	}
}

// DirtyItems lazily yields the position and value of every dirty element.
func (l *List[T]) DirtyItems() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, s := range l.slots {
			if s.value.Dirty() && !yield(i, s.value.value) {
				return
			}
		}
	}
}

// Dirty reports whether any element is dirty.
func (l *List[T]) Dirty() bool {
	for _, s := range l.slots {
		if s.value.Dirty() {
			return true
		}
	}
	return false
}

// SetDirty marks every element dirty or clean, down into held trackers.
func (l *List[T]) SetDirty(dirty bool) {
	for _, s := range l.slots {
		s.value.SetDirty(dirty)
	}
}

// OnChanging registers fn to run before each mutation.
func (l *List[T]) OnChanging(fn func()) (cancel func()) {
	return l.changing.Add(func(struct{}) { fn() })
}

// OnChanged registers fn to receive each mutation once it is applied.
func (l *List[T]) OnChanged(fn func(Change)) (cancel func()) {
	return l.changed.Add(fn)
}

// Elements yields the elements as untyped values.
func (l *List[T]) Elements() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, s := range l.slots {
			if !yield(s.value.value) {
				return
			}
		}
	}
}

// Keyed is false: list elements are addressed by position.
func (l *List[T]) Keyed() bool {
	return false
}

// IndexOfElement is IndexOf for an untyped element. Elements of another
// type are never found.
func (l *List[T]) IndexOfElement(element any) int {
	if element == nil {
		var zero T
		return l.IndexOf(zero)
	}
	v, ok := element.(T)
	if !ok {
		return -1
	}
	return l.IndexOf(v)
}

// KeyOfElement always fails for lists.
func (l *List[T]) KeyOfElement(any) (string, bool) {
	return "", false
}

// Entries yields position and element pairs, only the dirty ones when
// onlyDirty is set.
func (l *List[T]) Entries(onlyDirty bool) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for i, s := range l.slots {
			if onlyDirty && !s.value.Dirty() {
				continue
			}
			if !yield(i, s.value.value) {
				return
			}
		}
	}
}

// ReadOnly returns a view of l whose mutators fail with ErrNotSupported.
func (l *List[T]) ReadOnly() *ReadOnlyList[T] {
	return &ReadOnlyList[T]{list: l}
}

// ReadOnlyList is a fixed view over a List.
type ReadOnlyList[T comparable] struct {
	list *List[T]
}

func (r *ReadOnlyList[T]) Len() int                      { return r.list.Len() }
func (r *ReadOnlyList[T]) Get(i int) (T, error)          { return r.list.Get(i) }
func (r *ReadOnlyList[T]) IndexOf(v T) int               { return r.list.IndexOf(v) }
func (r *ReadOnlyList[T]) IndexOfID(id string) int       { return r.list.IndexOfID(id) }
func (r *ReadOnlyList[T]) Contains(v T) bool             { return r.list.Contains(v) }
func (r *ReadOnlyList[T]) All() iter.Seq2[int, T]        { return r.list.All() }
func (r *ReadOnlyList[T]) Values() iter.Seq[T]           { return r.list.Values() }
func (r *ReadOnlyList[T]) Dirty() bool                   { return r.list.Dirty() }
func (r *ReadOnlyList[T]) DirtyItems() iter.Seq2[int, T] { return r.list.DirtyItems() }

func (r *ReadOnlyList[T]) Set(int, T) error {
	return fmt.Errorf("set: %w", ErrNotSupported)
}

func (r *ReadOnlyList[T]) Insert(int, T) error {
	return fmt.Errorf("insert: %w", ErrNotSupported)
}

func (r *ReadOnlyList[T]) RemoveAt(int) (T, error) {
	var zero T
	return zero, fmt.Errorf("remove: %w", ErrNotSupported)
}

func (r *ReadOnlyList[T]) Move(int, int) error {
	return fmt.Errorf("move: %w", ErrNotSupported)
}

func (r *ReadOnlyList[T]) Clear() error {
	return fmt.Errorf("clear: %w", ErrNotSupported)
}
