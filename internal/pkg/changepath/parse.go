package changepath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedPath = errors.New("changepath: malformed path")

// Parse reads a rendered path. Bracket contents made of digits become list
// indices, * becomes AnyIndex, anything else a dictionary key. Keys may
// contain dots.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path: %w", ErrMalformedPath)
	}
	var path Path
	rest := s
	for {
		end := strings.IndexAny(rest, ".[")
		name := rest
		if end >= 0 {
			name = rest[:end]
		}
		if name == "" {
			return nil, fmt.Errorf("%q: empty segment name: %w", s, ErrMalformedPath)
		}
		seg := Field(name)
		if end < 0 {
			return append(path, seg), nil
		}
		rest = rest[end:]
		if rest[0] == '[' {
			closing := strings.IndexByte(rest, ']')
			if closing < 0 {
				return nil, fmt.Errorf("%q: unterminated bracket: %w", s, ErrMalformedPath)
			}
			seg = member(name, rest[1:closing])
			rest = rest[closing+1:]
			if rest == "" {
				return append(path, seg), nil
			}
			if rest[0] != '.' {
				return nil, fmt.Errorf("%q: expected separator after %q: %w", s, name, ErrMalformedPath)
			}
		}
		path = append(path, seg)
		rest = rest[1:]
	}
}

func member(name, inner string) Segment {
	if inner == "*" {
		return Indexed(name, AnyIndex)
	}
	if i, err := strconv.Atoi(inner); err == nil && i >= 0 {
		return Indexed(name, i)
	}
	return KeyedBy(name, inner)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Normalize returns a case-folded canonical rendering of s, suitable as a
// lookup key for paths. Unparsable input is only case-folded.
func Normalize(s string) string {
	p, err := Parse(strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(s)
	}
	for i := range p {
		p[i].Name = strings.ToLower(p[i].Name)
		p[i].Key = strings.ToLower(p[i].Key)
	}
	return p.String()
}

// Match reports whether path matches pattern. A * name matches any name and
// a [*] member matches any index or key. Names compare case-insensitively.
func Match(pattern, path string) bool {
	pp, err := Parse(pattern)
	if err != nil {
		return false
	}
	p, err := Parse(path)
	if err != nil {
		return false
	}
	if len(pp) != len(p) {
		return false
	}
	for i, want := range pp {
		got := p[i]
		if want.Name != "*" && !strings.EqualFold(want.Name, got.Name) {
			return false
		}
		wantMember, wantOK := want.member()
		gotMember, gotOK := got.member()
		if wantOK != gotOK {
			return false
		}
		if wantOK && wantMember != "*" && !strings.EqualFold(wantMember, gotMember) {
			return false
		}
	}
	return true
}
