package graph

import (
	"fmt"
	"reflect"

	"github.com/golang/glog"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

// contributor bridges events from one member of parent to parent itself,
// pushing the member name on the way. It is either a child property wrapper
// (child set) or a collection wrapper (collection set).
type contributor struct {
	parent *Node
	name   string

	child  *Node
	cancel func()

	collection     dirty.Collection
	cancelChanging func()
	cancelChanged  func()
	members        map[*Node]*membership
}

type membership struct {
	cancel func()
	refs   int
}

func wireChild(parent *Node, name string, child *Node) *contributor {
	c := &contributor{parent: parent, name: name, child: child}
	if _, err := child.Attach(); err != nil {
		glog.Warningf("graph: %s.%s not wired: %v", parent.schema.name, name, err)
		return c
	}
	c.cancel = child.events.Add(func(ev *Event) {
		ev.Path.Push(name)
		parent.raise(ev)
	})
	return c
}

func wireCollection(parent *Node, name string, coll dirty.Collection) *contributor {
	c := &contributor{
		parent:     parent,
		name:       name,
		collection: coll,
		members:    make(map[*Node]*membership),
	}
	c.cancelChanging = coll.OnChanging(c.changing)
	c.cancelChanged = coll.OnChanged(c.changed)
	for el := range coll.Elements() {
		c.join(el)
	}
	return c
}

func (c *contributor) release() {
	if c.child != nil {
		if c.cancel != nil {
			c.cancel()
			if _, err := c.child.Detach(); err != nil {
				glog.Warningf("graph: %s.%s: %v", c.parent.schema.name, c.name, err)
			}
		}
		return
	}
	c.cancelChanging()
	c.cancelChanged()
	for n, m := range c.members {
		m.cancel()
		for range m.refs {
			_, _ = n.Detach()
		}
	}
	c.members = nil
}

func asNode(el any) *Node {
	if el == nil {
		return nil
	}
	e, ok := el.(Entity)
	if !ok {
		return nil
	}
	if rv := reflect.ValueOf(el); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	n := e.Base()
	if !n.initialized() {
		return nil
	}
	return n
}

// join attaches an element that entered the collection.
func (c *contributor) join(el any) {
	n := asNode(el)
	if n == nil {
		return
	}
	m, ok := c.members[n]
	if !ok {
		m = &membership{}
		m.cancel = n.events.Add(func(ev *Event) { c.forward(n, ev) })
		c.members[n] = m
	}
	m.refs++
	_, _ = n.Attach()
}

// leave detaches an element that left the collection.
func (c *contributor) leave(el any) {
	n := asNode(el)
	if n == nil {
		return
	}
	m, ok := c.members[n]
	if !ok {
		return
	}
	m.refs--
	_, _ = n.Detach()
	if m.refs == 0 {
		m.cancel()
		delete(c.members, n)
	}
}

// forward re-raises an element event with the element's current position.
func (c *contributor) forward(n *Node, ev *Event) {
	c.pushMember(ev.Path, n.self)
	c.parent.raise(ev)
}

func (c *contributor) pushMember(p *changepath.Builder, el any) {
	if c.collection.Keyed() {
		if key, ok := c.collection.KeyOfElement(el); ok {
			p.PushKey(c.name, key)
			return
		}
	} else if i := c.collection.IndexOfElement(el); i >= 0 {
		p.PushIndex(c.name, i)
		return
	}
	p.Push(c.name)
}

func (c *contributor) changing() {
	c.parent.raise(&Event{
		Phase:  Changing,
		Path:   changepath.New().Push(c.name),
		Source: c.parent.self,
	})
}

func (c *contributor) changed(ch dirty.Change) {
	switch ch.Action {
	case dirty.Add:
		for _, el := range ch.NewItems {
			c.join(el)
		}
	case dirty.Remove, dirty.Reset:
		for _, el := range ch.OldItems {
			c.leave(el)
		}
	case dirty.Replace:
		for _, el := range ch.OldItems {
			c.leave(el)
		}
		for _, el := range ch.NewItems {
			c.join(el)
		}
	}
	c.parent.raise(&Event{
		Phase:  Changed,
		Action: ch.Action,
		Prior:  plainItems(ch.OldItems),
		Next:   plainItems(ch.NewItems),
		Path:   c.changePath(ch),
		Source: c.parent.self,
	})
}

func (c *contributor) changePath(ch dirty.Change) *changepath.Builder {
	p := changepath.New()
	if ch.Key != nil {
		return p.PushKey(c.name, fmt.Sprint(ch.Key))
	}
	items := ch.NewItems
	at := ch.NewIndex
	if ch.Action == dirty.Remove {
		items, at = ch.OldItems, ch.OldIndex
	}
	if len(items) == 1 && at >= 0 {
		return p.PushIndex(c.name, at)
	}
	return p.Push(c.name)
}
