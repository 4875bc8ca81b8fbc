package graph

import (
	"fmt"
	"iter"
	"strings"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
)

// DirtyFields yields the fields of e that are dirty or always serialized.
func DirtyFields(e Entity) iter.Seq[Field] {
	return func(yield func(Field) bool) {
		n := e.Base()
		if n.schema == nil {
			return
		}
		for _, f := range n.schema.fields {
			if f.Ignored() {
				continue
			}
			include := n.schema.AlwaysSerialized(f.Name())
			if !include {
				t := f.Tracker(e)
				include = t != nil && t.Dirty()
			}
			if include && !yield(f) {
				return
			}
		}
	}
}

// Resolve walks a model path such as Applications[0].Borrower.FirstName from
// root and returns the entity owning the last segment together with its
// field descriptor.
func Resolve(root Entity, path string) (Entity, Field, error) {
	p, err := changepath.Parse(path)
	if err != nil {
		return nil, nil, err
	}
	cur := root
	for i, seg := range p {
		n := cur.Base()
		if n.schema == nil {
			return nil, nil, fmt.Errorf("resolve %s: %w", path, ErrInvalidState)
		}
		f, ok := n.schema.Field(seg.Name)
		if !ok {
			return nil, nil, fmt.Errorf("resolve %s: %s.%s: %w", path, n.schema.name, seg.Name, ErrUnknownField)
		}
		if i == len(p)-1 {
			if _, member := memberOf(seg); member {
				return nil, nil, fmt.Errorf("resolve %s: path ends at an element: %w", path, ErrNotSupported)
			}
			return cur, f, nil
		}
		next, err := step(cur, f, seg)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		cur = next
	}
	return nil, nil, fmt.Errorf("resolve %s: %w", path, ErrNotFound)
}

func memberOf(seg changepath.Segment) (string, bool) {
	switch {
	case seg.Keyed:
		return seg.Key, true
	case seg.Index >= 0:
		return fmt.Sprint(seg.Index), true
	default:
		return "", false
	}
}

func step(cur Entity, f Field, seg changepath.Segment) (Entity, error) {
	want, member := memberOf(seg)
	switch f.Kind() {
	case KindChild:
		if member {
			return nil, fmt.Errorf("%s is not a collection: %w", f.Name(), ErrArgumentInvalid)
		}
		child := f.Child(cur)
		if child == nil {
			return nil, fmt.Errorf("%s is unset: %w", f.Name(), ErrNotFound)
		}
		return child, nil
	case KindCollection:
		if !member {
			return nil, fmt.Errorf("%s needs an index or key: %w", f.Name(), ErrArgumentInvalid)
		}
		coll := f.Collection(cur)
		if coll == nil {
			return nil, fmt.Errorf("%s is unset: %w", f.Name(), ErrNotFound)
		}
		for k, el := range coll.Entries(false) {
			if !strings.EqualFold(fmt.Sprint(k), want) {
				continue
			}
			if n := asNode(el); n != nil {
				return n.self, nil
			}
			return nil, fmt.Errorf("%s[%s] is not an entity: %w", f.Name(), want, ErrNotSupported)
		}
		return nil, fmt.Errorf("%s[%s]: %w", f.Name(), want, ErrNotFound)
	default:
		return nil, fmt.Errorf("%s is a scalar: %w", f.Name(), ErrArgumentInvalid)
	}
}
