package graph

import (
	"fmt"
	"strings"
)

// Schema is the static field table of one entity type. Build it once per
// type, usually in a package-level variable.
type Schema struct {
	name        string
	fields      []Field
	byName      map[string]Field
	idName      string
	idField     Field
	wholeList   bool
	alwaysDirty bool
	always      map[string]bool
}

type SchemaOption func(*Schema)

// WithIDField names the scalar string field that identifies instances in
// lists.
func WithIDField(name string) SchemaOption {
	return func(s *Schema) { s.idName = name }
}

// SerializeWholeListWhenDirty makes lists of this type serialize in full
// once any element is dirty.
func SerializeWholeListWhenDirty() SchemaOption {
	return func(s *Schema) { s.wholeList = true }
}

// AlwaysDirty makes instances report dirty regardless of their members.
func AlwaysDirty() SchemaOption {
	return func(s *Schema) { s.alwaysDirty = true }
}

// AlwaysSerialize names fields emitted in every patch even when clean.
func AlwaysSerialize(names ...string) SchemaOption {
	return func(s *Schema) {
		if s.always == nil {
			s.always = make(map[string]bool)
		}
		for _, n := range names {
			s.always[strings.ToLower(n)] = true
		}
	}
}

func NewSchema(name string, fields []Field, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: fields,
		byName: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		k := strings.ToLower(f.Name())
		if _, dup := s.byName[k]; dup {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name(), ErrDuplicateField)
		}
		s.byName[k] = f
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idName != "" {
		f, ok := s.byName[strings.ToLower(s.idName)]
		if !ok || f.Kind() != KindScalar {
			return nil, fmt.Errorf("%s.%s: %w", name, s.idName, ErrUnknownIDField)
		}
		s.idField = f
	}
	for n := range s.always {
		if _, ok := s.byName[n]; !ok {
			return nil, fmt.Errorf("%s: always serialized %q: %w", name, n, ErrUnknownField)
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level declarations.
func MustSchema(name string, fields []Field, opts ...SchemaOption) *Schema {
	s, err := NewSchema(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string {
	return s.name
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field looks a field up by name, ignoring case.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[strings.ToLower(name)]
	return f, ok
}

func (s *Schema) IDField() Field {
	return s.idField
}

func (s *Schema) WholeList() bool {
	return s.wholeList
}

func (s *Schema) AlwaysDirty() bool {
	return s.alwaysDirty
}

func (s *Schema) AlwaysSerialized(name string) bool {
	return s.always[strings.ToLower(name)]
}
