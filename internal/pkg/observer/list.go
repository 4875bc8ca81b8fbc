// Package observer holds explicit observer lists used by the change-tracking
// packages in place of multicast delegates.
package observer

import "slices"

type handler[A any] struct {
	fn func(A)
}

// List is an ordered set of handlers. Handlers are removed by identity, so
// registering the same function twice yields two independent entries.
// The zero value is ready to use.
type List[A any] struct {
	handlers []*handler[A]
}

// Add registers fn and returns a function that removes it again.
// Calling the returned function more than once is a no-op.
func (l *List[A]) Add(fn func(A)) (cancel func()) {
	h := &handler[A]{fn: fn}
	l.handlers = append(l.handlers, h)
	return func() { l.remove(h) }
}

func (l *List[A]) remove(h *handler[A]) {
	for i, existing := range l.handlers {
		if existing == h {
			l.handlers = slices.Delete(l.handlers, i, i+1)
			return
		}
	}
}

// Len returns the number of registered handlers.
func (l *List[A]) Len() int {
	return len(l.handlers)
}

// Notify invokes every handler registered at the time of the call.
// Handlers may add or cancel registrations while being notified.
func (l *List[A]) Notify(arg A) {
	if len(l.handlers) == 0 {
		return
	}
	for _, h := range slices.Clone(l.handlers) {
		h.fn(arg)
	}
}

// Each invokes visit for every registered handler with the handler function,
// letting callers hand a different argument to each one.
func (l *List[A]) Each(visit func(fn func(A))) {
	for _, h := range slices.Clone(l.handlers) {
		visit(h.fn)
	}
}
