// Package changepath accumulates the location of a change while an event
// bubbles from a leaf to the root, and renders it as a dotted path.
package changepath

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// NoIndex marks a segment that is not a collection member.
	NoIndex = -1
	// AnyIndex marks a wildcard index, rendered as [*].
	AnyIndex = -2
)

// Segment is one property step of a path, optionally addressing a list
// position or a dictionary key.
type Segment struct {
	Name  string
	Index int
	Key   string
	Keyed bool
}

func Field(name string) Segment {
	return Segment{Name: name, Index: NoIndex}
}

func Indexed(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

func KeyedBy(name, key string) Segment {
	return Segment{Name: name, Index: NoIndex, Key: key, Keyed: true}
}

func (s Segment) member() (string, bool) {
	switch {
	case s.Keyed:
		return s.Key, true
	case s.Index == AnyIndex:
		return "*", true
	case s.Index >= 0:
		return strconv.Itoa(s.Index), true
	default:
		return "", false
	}
}

// Path is a forward sequence of segments, root first.
type Path []Segment

func (p Path) Render(f Format) string {
	sep := f.Separator
	if sep == "" {
		sep = "."
	}
	var sb strings.Builder
	for i, s := range p {
		if i > 0 {
			sb.WriteString(sep)
		}
		f.write(&sb, s)
	}
	return sb.String()
}

func (p Path) String() string {
	return p.Render(ModelFormat)
}

// Builder collects segments leaf first. Each ancestor pushes its own
// segment in front of the ones already collected.
type Builder struct {
	reversed []Segment
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) push(s Segment) *Builder {
	b.reversed = append(b.reversed, s)
	return b
}

func (b *Builder) Push(name string) *Builder {
	return b.push(Field(name))
}

func (b *Builder) PushIndex(name string, index int) *Builder {
	return b.push(Indexed(name, index))
}

func (b *Builder) PushKey(name, key string) *Builder {
	return b.push(KeyedBy(name, key))
}

func (b *Builder) Len() int {
	return len(b.reversed)
}

// Segments returns the collected segments in forward order.
func (b *Builder) Segments() []Segment {
	out := slices.Clone(b.reversed)
	slices.Reverse(out)
	return out
}

func (b *Builder) Path() Path {
	return Path(b.Segments())
}

func (b *Builder) Clone() *Builder {
	return &Builder{reversed: slices.Clone(b.reversed)}
}

// String renders the model path, e.g. Applications[0].Borrower.FirstName.
func (b *Builder) String() string {
	return b.Path().Render(ModelFormat)
}

// AttributePath renders the external form, e.g.
// applications[*].borrower.firstName.
func (b *Builder) AttributePath() string {
	return b.Path().Render(AttributeFormat)
}

func (b *Builder) Render(f Format) string {
	return b.Path().Render(f)
}
