// Package patch renders the dirty subset of an entity graph as a JSON
// document suitable for a partial update.
package patch

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"reflect"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

var ErrUnsupportedValue = errors.New("patch: unsupported value")

// Build returns the dirty members of e. Clean entities yield an empty
// struct.
func Build(e graph.Entity) (*structpb.Struct, error) {
	return render(e, false)
}

// Full returns every member of e regardless of dirty state.
func Full(e graph.Entity) (*structpb.Struct, error) {
	return render(e, true)
}

// Marshal renders Build(e) as JSON.
func Marshal(e graph.Entity) ([]byte, error) {
	s, err := Build(e)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// Member renders any member value in full: entities, lists and
// dictionaries as well as scalars.
func Member(v any) (*structpb.Value, error) {
	if e := entityOf(v); e != nil {
		s, err := render(e, true)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(s), nil
	}
	if coll, ok := v.(dirty.Collection); ok && !isNil(v) {
		if coll.Keyed() {
			return dictionaryValue(coll, true)
		}
		return listValue(coll, true)
	}
	return Value(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func allFields(s *graph.Schema) iter.Seq[graph.Field] {
	return func(yield func(graph.Field) bool) {
		for _, f := range s.Fields() {
			if !f.Ignored() && !yield(f) {
				return
			}
		}
	}
}

func render(e graph.Entity, full bool) (*structpb.Struct, error) {
	n := e.Base()
	s := n.Schema()
	if s == nil {
		return nil, fmt.Errorf("render: %w", graph.ErrInvalidState)
	}
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value)}

	fields := graph.DirtyFields(e)
	if full {
		fields = allFields(s)
	}
	for f := range fields {
		v, err := fieldValue(e, f, full)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name(), f.Name(), err)
		}
		out.Fields[changepath.CamelCase(f.Name())] = v
	}

	ext := n.PeekExtensions()
	if ext == nil {
		return out, nil
	}
	for k, raw := range ext.Entries(!full) {
		v := &structpb.Value{}
		if err := protojson.Unmarshal([]byte(raw.(string)), v); err != nil {
			return nil, fmt.Errorf("%s extension %v: %w", s.Name(), k, err)
		}
		out.Fields[fmt.Sprint(k)] = v
	}
	return out, nil
}

func fieldValue(e graph.Entity, f graph.Field, full bool) (*structpb.Value, error) {
	switch f.Kind() {
	case graph.KindChild:
		child := f.Child(e)
		if child == nil {
			return structpb.NewNullValue(), nil
		}
		s, err := render(child, full)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(s), nil
	case graph.KindCollection:
		coll := f.Collection(e)
		if coll == nil {
			return structpb.NewNullValue(), nil
		}
		if coll.Keyed() {
			return dictionaryValue(coll, full)
		}
		return listValue(coll, full)
	default:
		return Value(f.Value(e))
	}
}

func entityOf(el any) graph.Entity {
	if isNil(el) {
		return nil
	}
	e, ok := el.(graph.Entity)
	if !ok || e.Base().Schema() == nil {
		return nil
	}
	return e
}

// wholeList reports whether a dirty list is sent in full. The first element
// decides: scalars always are, entities when their schema asks for it.
func wholeList(coll dirty.Collection) bool {
	for el := range coll.Elements() {
		e := entityOf(el)
		return e == nil || e.Base().Schema().WholeList()
	}
	return true
}

func listValue(coll dirty.Collection, full bool) (*structpb.Value, error) {
	whole := full || wholeList(coll)
	values := make([]*structpb.Value, 0, coll.Len())
	for _, el := range coll.Entries(!whole) {
		v, err := elementValue(el, whole)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
}

func dictionaryValue(coll dirty.Collection, full bool) (*structpb.Value, error) {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	for k, el := range coll.Entries(!full) {
		v, err := elementValue(el, full)
		if err != nil {
			return nil, err
		}
		out.Fields[fmt.Sprint(k)] = v
	}
	return structpb.NewStructValue(out), nil
}

// elementValue renders one collection element. Entities rendered partially
// always carry their id so the remote side can match them.
func elementValue(el any, full bool) (*structpb.Value, error) {
	e := entityOf(el)
	if e == nil {
		return Value(el)
	}
	s, err := render(e, full)
	if err != nil {
		return nil, err
	}
	if id := e.Base().Schema().IDField(); id != nil && !full {
		key := changepath.CamelCase(id.Name())
		if _, ok := s.Fields[key]; !ok {
			v, err := Value(id.Value(e))
			if err != nil {
				return nil, err
			}
			s.Fields[key] = v
		}
	}
	return structpb.NewStructValue(s), nil
}

// Value converts a scalar to its JSON representation. Times are rendered
// as RFC 3339 and other Stringers by their String method.
func Value(v any) (*structpb.Value, error) {
	if isNil(v) {
		return structpb.NewNullValue(), nil
	}
	switch x := v.(type) {
	case string:
		return structpb.NewStringValue(x), nil
	case bool:
		return structpb.NewBoolValue(x), nil
	case int:
		return structpb.NewNumberValue(float64(x)), nil
	case int8:
		return structpb.NewNumberValue(float64(x)), nil
	case int16:
		return structpb.NewNumberValue(float64(x)), nil
	case int32:
		return structpb.NewNumberValue(float64(x)), nil
	case int64:
		return structpb.NewNumberValue(float64(x)), nil
	case uint:
		return structpb.NewNumberValue(float64(x)), nil
	case uint8:
		return structpb.NewNumberValue(float64(x)), nil
	case uint16:
		return structpb.NewNumberValue(float64(x)), nil
	case uint32:
		return structpb.NewNumberValue(float64(x)), nil
	case uint64:
		return structpb.NewNumberValue(float64(x)), nil
	case float32:
		return numberValue(float64(x))
	case float64:
		return numberValue(x)
	case time.Time:
		return structpb.NewStringValue(x.Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		return structpb.NewStringValue(x.String()), nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return Value(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("%T: %w", v, ErrUnsupportedValue)
}

func numberValue(f float64) (*structpb.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v: %w", f, ErrUnsupportedValue)
	}
	return structpb.NewNumberValue(f), nil
}
