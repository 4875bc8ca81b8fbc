// Package graph tracks changes across a tree of entities. Each entity embeds
// a Node and declares its members in a Schema. Listeners attached to the
// root are reference counted down the tree, and leaf mutations bubble up as
// events carrying their full path.
package graph

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/observer"
)

// Entity is implemented by every struct embedding Node.
type Entity interface {
	Base() *Node
}

// Node is the change-tracking state of one entity. Embed it by value and
// call Init from the entity constructor.
type Node struct {
	self   Entity
	schema *Schema

	listeners atomic.Int32
	// wrappers is allocated only while the node is observed.
	wrappers map[string]*contributor

	events     observer.List[*Event]
	properties observer.List[PropertyChange]
	extensions *dirty.Dictionary[string, string]

	gettingDirty atomic.Bool
	settingDirty atomic.Bool
}

// Init binds the node embedded in e to its concrete entity and schema.
func Init(e Entity, s *Schema) {
	n := e.Base()
	n.self = e
	n.schema = s
}

func (n *Node) Base() *Node {
	return n
}

func (n *Node) Schema() *Schema {
	return n.schema
}

func (n *Node) initialized() bool {
	return n.self != nil && n.schema != nil
}

func (n *Node) Listeners() int {
	return int(n.listeners.Load())
}

func (n *Node) Observed() bool {
	return n.listeners.Load() > 0
}

// Attach adds one listener chain and returns the previous count. The first
// chain wires every populated child and collection element.
func (n *Node) Attach() (int, error) {
	if !n.initialized() {
		return 0, fmt.Errorf("attach: %w", ErrInvalidState)
	}
	prior := n.listeners.Add(1) - 1
	if prior == 0 {
		n.wire()
	}
	return int(prior), nil
}

// Detach removes one listener chain and returns the previous count. The last
// chain tears down all wiring below this node.
func (n *Node) Detach() (int, error) {
	if !n.initialized() {
		return 0, fmt.Errorf("detach: %w", ErrInvalidState)
	}
	for {
		cur := n.listeners.Load()
		if cur == 0 {
			return 0, fmt.Errorf("detach %s without listeners: %w", n.schema.name, ErrInvalidState)
		}
		if n.listeners.CompareAndSwap(cur, cur-1) {
			if cur == 1 {
				n.unwire()
			}
			return int(cur), nil
		}
	}
}

func (n *Node) wire() {
	n.wrappers = make(map[string]*contributor)
	for _, f := range n.schema.fields {
		if !f.Ignored() {
			n.wireField(f)
		}
	}
	if glog.V(2) {
		glog.Infof("graph: %s observed, %d wrappers", n.schema.name, len(n.wrappers))
	}
}

func (n *Node) unwire() {
	for _, c := range n.wrappers {
		c.release()
	}
	n.wrappers = nil
	if glog.V(2) {
		glog.Infof("graph: %s unobserved", n.schema.name)
	}
}

func (n *Node) wireField(f Field) {
	switch f.Kind() {
	case KindChild:
		if child := f.Child(n.self); child != nil {
			n.wrappers[f.Name()] = wireChild(n, f.Name(), child.Base())
		}
	case KindCollection:
		if coll := f.Collection(n.self); coll != nil {
			n.wrappers[f.Name()] = wireCollection(n, f.Name(), coll)
		}
	}
}

// rewire replaces the wrapper of one member after it was reassigned.
func (n *Node) rewire(name string) {
	if !n.Observed() {
		return
	}
	if c, ok := n.wrappers[name]; ok {
		c.release()
		delete(n.wrappers, name)
	}
	if f, ok := n.schema.Field(name); ok && !f.Ignored() {
		n.wireField(f)
	}
}

// raise hands ev to every event observer. Each observer beyond the first
// gets its own copy of the path. An event that cycled back to a node it
// already passed is dropped.
func (n *Node) raise(ev *Event) {
	if slices.Contains(ev.visited, n) {
		return
	}
	ev.visited = append(ev.visited, n)
	if n.events.Len() <= 1 {
		n.events.Notify(ev)
		return
	}
	n.events.Each(func(fn func(*Event)) {
		fn(ev.clone())
	})
}

func (n *Node) propertyChanging(name string, prior, next any) {
	if !n.Observed() {
		return
	}
	n.raise(&Event{
		Phase:  Changing,
		Action: dirty.Replace,
		Prior:  plain(prior),
		Next:   plain(next),
		Path:   changepath.New().Push(name),
		Source: n.self,
	})
}

func (n *Node) propertyChanged(name string, prior, next any) {
	n.properties.Notify(PropertyChange{Name: name, Prior: prior, Next: next})
	if !n.Observed() {
		return
	}
	n.raise(&Event{
		Phase:  Changed,
		Action: dirty.Replace,
		Prior:  plain(prior),
		Next:   plain(next),
		Path:   changepath.New().Push(name),
		Source: n.self,
	})
}

// OnPropertyChanged registers a local observer for member assignments on this
// node only. It does not count as a listener.
func (n *Node) OnPropertyChanged(fn func(PropertyChange)) (cancel func()) {
	return n.properties.Add(fn)
}

// Identity returns the value of the schema id field, or "".
func (n *Node) Identity() string {
	if n == nil || n.schema == nil || n.schema.idField == nil {
		return ""
	}
	s, _ := n.schema.idField.Value(n.self).(string)
	return s
}

// WatchIdentity reports later changes of the id field.
func (n *Node) WatchIdentity(fn func(prior, next string)) (cancel func()) {
	if n.schema == nil || n.schema.idField == nil {
		return func() {}
	}
	id := n.schema.idField.Name()
	return n.properties.Add(func(pc PropertyChange) {
		if pc.Name != id {
			return
		}
		prior, _ := pc.Prior.(string)
		next, _ := pc.Next.(string)
		fn(prior, next)
	})
}

// Extensions holds raw members that the schema does not model. They take
// part in Dirty.
func (n *Node) Extensions() *dirty.Dictionary[string, string] {
	if n.extensions == nil {
		n.extensions = dirty.NewDictionary[string, string](dirty.WithKeyFolding())
	}
	return n.extensions
}

// PeekExtensions is Extensions without the allocation. It returns nil until
// Extensions was first called.
func (n *Node) PeekExtensions() *dirty.Dictionary[string, string] {
	return n.extensions
}

// Dirty reports whether any member changed since the last SetDirty(false).
// Re-entering the same node while it is being evaluated yields false, so a
// cycle can under-report.
func (n *Node) Dirty() bool {
	if n.schema == nil {
		return false
	}
	if n.schema.alwaysDirty {
		return true
	}
	if !n.gettingDirty.CompareAndSwap(false, true) {
		return false
	}
	defer n.gettingDirty.Store(false)

	if n.extensions != nil && n.extensions.Dirty() {
		return true
	}
	for _, f := range n.schema.fields {
		if f.Ignored() {
			continue
		}
		if t := f.Tracker(n.self); t != nil && t.Dirty() {
			return true
		}
	}
	return false
}

// SetDirty cascades d to every member.
func (n *Node) SetDirty(d bool) {
	if n.schema == nil {
		return
	}
	if !n.settingDirty.CompareAndSwap(false, true) {
		return
	}
	defer n.settingDirty.Store(false)

	for _, f := range n.schema.fields {
		if f.Ignored() {
			continue
		}
		if t := f.Tracker(n.self); t != nil {
			t.SetDirty(d)
		}
	}
	if n.extensions != nil {
		n.extensions.SetDirty(d)
	}
}
