package dirty

import (
	"fmt"
	"iter"
)

// Action is the kind of a collection mutation. The zero value means the
// action is not known yet, as in a pre-mutation notification.
type Action int

const (
	Add Action = iota + 1
	Remove
	Replace
	Move
	Reset
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Move:
		return "move"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change describes one completed collection mutation. Indices are -1 when
// they do not apply. Key is set by dictionaries.
type Change struct {
	Action   Action
	NewItems []any
	OldItems []any
	NewIndex int
	OldIndex int
	Key      any
}

// Collection is the untyped view of a list or dictionary used by the graph
// and the patch builder.
type Collection interface {
	Tracker
	Len() int
	// Elements yields the contained values in enumeration order.
	Elements() iter.Seq[any]
	OnChanging(fn func()) (cancel func())
	OnChanged(fn func(Change)) (cancel func())
	// Keyed reports whether elements are addressed by key rather than index.
	Keyed() bool
	// IndexOfElement returns the current position of element or -1.
	IndexOfElement(element any) int
	// KeyOfElement returns the rendered key holding element.
	KeyOfElement(element any) (string, bool)
	// Entries yields index or key with each element, restricted to dirty
	// elements when onlyDirty is set.
	Entries(onlyDirty bool) iter.Seq2[any, any]
}

// Identifiable elements expose a string id used by the list identity index.
type Identifiable interface {
	Identity() string
}

// IdentityNotifier elements report later changes of their id.
type IdentityNotifier interface {
	Identifiable
	WatchIdentity(fn func(prior, next string)) (cancel func())
}
