package graph

import (
	"reflect"
	"slices"
	"sync"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

type Phase int

const (
	Changing Phase = iota + 1
	Changed
)

func (p Phase) String() string {
	if p == Changing {
		return "changing"
	}
	return "changed"
}

// Event is a mutation bubbling towards the root. Path holds the segments
// pushed so far; at the root it is the full location of the change.
type Event struct {
	Phase  Phase
	Action dirty.Action
	Prior  any
	Next   any
	Path   *changepath.Builder
	// Source is the entity that owns the mutated member.
	Source Entity

	// visited lists the nodes that raised the event so far. A cyclic graph
	// delivers an event to each node at most once.
	visited []*Node
}

func (e *Event) clone() *Event {
	c := *e
	c.Path = e.Path.Clone()
	c.visited = slices.Clone(e.visited)
	return &c
}

func (e Event) PathString() string {
	return e.Path.String()
}

func (e Event) AttributePath() string {
	return e.Path.AttributePath()
}

// PropertyChange is delivered to local property observers of one node,
// whether or not the node is observed from the root.
type PropertyChange struct {
	Name  string
	Prior any
	Next  any
}

// Subscription is one root listener. Close detaches it exactly once.
type Subscription struct {
	node   *Node
	cancel func()
	once   sync.Once
}

// Subscribe attaches fn to the subgraph of e. Every subscription counts as
// one listener on e.
func Subscribe(e Entity, fn func(Event)) (*Subscription, error) {
	n := e.Base()
	if n.self == nil {
		return nil, ErrInvalidState
	}
	cancel := n.events.Add(func(ev *Event) { fn(*ev) })
	if _, err := n.Attach(); err != nil {
		cancel()
		return nil, err
	}
	return &Subscription{node: n, cancel: cancel}, nil
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		_, err = s.node.Detach()
	})
	return err
}

// plain turns typed nil pointers into untyped nil so that consumers can
// compare prior values against nil.
func plain(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

func plainItems(items []any) any {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return plain(items[0])
	default:
		return items
	}
}
