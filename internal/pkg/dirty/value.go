// Package dirty provides scalar and collection wrappers that remember whether
// they were modified since the last synchronization point.
package dirty

// Tracker is implemented by anything that carries dirty state.
type Tracker interface {
	Dirty() bool
	SetDirty(dirty bool)
}

type equaler[T any] interface {
	Equal(T) bool
}

// Equal compares a and b with ==, then with an Equal(T) bool method when T
// declares one. Equal methods on pointer types must tolerate nil receivers.
func Equal[T comparable](a, b T) bool {
	if a == b {
		return true
	}
	if eq, ok := any(a).(equaler[T]); ok {
		return eq.Equal(b)
	}
	return false
}

// Value holds a value and its dirty flag. The zero value is a clean zero T.
type Value[T comparable] struct {
	value T
	dirty bool
}

// NewValue returns a clean value, as produced by hydration from the store.
func NewValue[T comparable](v T) Value[T] {
	return Value[T]{value: v}
}

// NewDirtyValue returns a value that is already marked dirty.
func NewDirtyValue[T comparable](v T) Value[T] {
	return Value[T]{value: v, dirty: true}
}

func (v *Value[T]) Get() T {
	return v.value
}

// Set stores next and marks the value dirty when next differs from the
// current content. It reports whether the content changed.
func (v *Value[T]) Set(next T) bool {
	if Equal(v.value, next) {
		return false
	}
	v.value = next
	v.dirty = true
	return true
}

// Current returns the content as an untyped value.
func (v *Value[T]) Current() any {
	return v.value
}

// Dirty reports the own flag, or the dirtiness of the content when it is a
// Tracker itself.
func (v *Value[T]) Dirty() bool {
	if v.dirty {
		return true
	}
	var zero T
	if v.value == zero {
		return false
	}
	if t, ok := any(v.value).(Tracker); ok {
		return t.Dirty()
	}
	return false
}

// SetDirty stores the own flag and cascades to a Tracker content.
func (v *Value[T]) SetDirty(dirty bool) {
	v.dirty = dirty
	var zero T
	if v.value == zero {
		return
	}
	if t, ok := any(v.value).(Tracker); ok {
		t.SetDirty(dirty)
	}
}
