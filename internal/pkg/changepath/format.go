package changepath

import (
	"strings"
	"unicode"
)

// Substitution replaces a segment whose transformed name is From and which
// carries no index with To.
type Substitution struct {
	From string
	To   Segment
}

// Format controls how a path is rendered.
type Format struct {
	// Transform is applied to every segment name.
	Transform func(string) string
	// Wildcard renders every index and key as [*].
	Wildcard      bool
	Substitutions []Substitution
	// Separator defaults to ".".
	Separator string
}

var (
	ModelFormat = Format{}

	// AttributeFormat is the webhook-filter form. The current application
	// is not a position of its own, so it stands for any application.
	AttributeFormat = Format{
		Transform: CamelCase,
		Substitutions: []Substitution{
			{From: "currentApplication", To: Segment{Name: "applications", Index: AnyIndex}},
		},
	}

	GenericFormat = Format{Wildcard: true}
)

func (f Format) write(sb *strings.Builder, s Segment) {
	name := s.Name
	if f.Transform != nil {
		name = f.Transform(name)
	}
	if _, ok := s.member(); !ok {
		for _, sub := range f.Substitutions {
			if sub.From == name {
				name = sub.To.Name
				s = sub.To
				break
			}
		}
	}
	sb.WriteString(name)
	member, ok := s.member()
	if !ok {
		return
	}
	if f.Wildcard {
		member = "*"
	}
	sb.WriteByte('[')
	sb.WriteString(member)
	sb.WriteByte(']')
}

// CamelCase lowers the leading run of upper-case letters, keeping the last
// one when it starts the next word: ID -> id, URLValue -> urlValue,
// TaxId -> taxId.
func CamelCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if !unicode.IsUpper(runes[0]) {
		return s
	}
	for i := range runes {
		if i == 1 && !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && !unicode.IsUpper(runes[i+1]) {
			if unicode.IsSpace(runes[i+1]) {
				runes[i] = unicode.ToLower(runes[i])
			}
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
