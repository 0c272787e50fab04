// Package pattern compiles route path patterns and matches request paths
// against them.
//
// A pattern is a sequence of /-separated segments. Each segment is either a
// literal ("/products"), a named capture ("/{id}") that binds exactly one
// segment, or a wildcard ("/*rest") that binds the remaining path suffix.
// Wildcards are only valid in the final position.
package pattern

import (
	"fmt"
	"strings"
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segCapture
	segWildcard
)

type segment struct {
	kind segmentKind
	// literal text for segLiteral, capture name otherwise
	value string
}

// Pattern is a compiled route pattern. A Pattern is immutable and safe for
// concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	wildcard bool
}

// Bindings maps capture names to the raw (undecoded) segment text they
// matched. A wildcard capture binds the joined remainder of the path.
type Bindings map[string]string

// Compile parses a route pattern. It returns an error for malformed segments,
// duplicate capture names, or a wildcard that is not the final segment.
func Compile(raw string) (*Pattern, error) {
	if raw == "" || raw[0] != '/' {
		return nil, fmt.Errorf("pattern %q must begin with '/'", raw)
	}

	p := &Pattern{raw: raw}
	seen := make(map[string]struct{})

	parts := splitPath(raw)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "{") || strings.HasSuffix(part, "}"):
			if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
				return nil, fmt.Errorf("pattern %q: malformed capture segment %q", raw, part)
			}
			name := part[1 : len(part)-1]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: capture segment with empty name", raw)
			}
			if strings.ContainsAny(name, "{}*/") {
				return nil, fmt.Errorf("pattern %q: invalid capture name %q", raw, name)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("pattern %q: duplicate capture name %q", raw, name)
			}
			seen[name] = struct{}{}
			p.segments = append(p.segments, segment{kind: segCapture, value: name})

		case strings.HasPrefix(part, "*"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: wildcard segment with empty name", raw)
			}
			if i != len(parts)-1 {
				return nil, fmt.Errorf("pattern %q: wildcard %q must be the final segment", raw, part)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("pattern %q: duplicate capture name %q", raw, name)
			}
			seen[name] = struct{}{}
			p.segments = append(p.segments, segment{kind: segWildcard, value: name})
			p.wildcard = true

		default:
			p.segments = append(p.segments, segment{kind: segLiteral, value: part})
		}
	}

	return p, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// patterns known at program start.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern source text.
func (p *Pattern) String() string { return p.raw }

// Match reports whether path matches the pattern, binding captures to the
// literal segment text they matched. A single trailing slash is stripped from
// the path before segmentation; beyond that, segment counts must match
// exactly unless the pattern ends in a wildcard.
func (p *Pattern) Match(path string) (Bindings, bool) {
	parts := splitPath(path)

	if p.wildcard {
		// Everything before the wildcard must match one-to-one.
		if len(parts) < len(p.segments)-1 {
			return nil, false
		}
	} else if len(parts) != len(p.segments) {
		return nil, false
	}

	var bindings Bindings
	for i, seg := range p.segments {
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return nil, false
			}
		case segCapture:
			if parts[i] == "" {
				return nil, false
			}
			if bindings == nil {
				bindings = make(Bindings)
			}
			bindings[seg.value] = parts[i]
		case segWildcard:
			if bindings == nil {
				bindings = make(Bindings)
			}
			bindings[seg.value] = strings.Join(parts[i:], "/")
			return bindings, true
		}
	}

	return bindings, true
}

// Compare orders patterns by match specificity: within patterns that can
// match the same path, a literal segment beats a capture and a capture beats
// a wildcard. It returns a negative value if p sorts before other, zero if
// they are equally ranked, and a positive value otherwise. The ordering is
// total, so sorting a route table gives the same result for every
// registration order; routers use this to guarantee literal-over-capture
// priority.
func (p *Pattern) Compare(other *Pattern) int {
	// A wildcard tail can swallow the extra segments of any longer pattern,
	// so wildcard patterns rank after every fixed-length pattern.
	switch {
	case p.wildcard && !other.wildcard:
		return 1
	case !p.wildcard && other.wildcard:
		return -1
	}

	// Fixed-length patterns of different lengths never match the same path,
	// so their relative order is free; grouping by length keeps the order
	// total. Between overlapping wildcard patterns the longer prefix is the
	// more specific one and ranks first.
	if d := len(p.segments) - len(other.segments); d != 0 {
		if p.wildcard {
			return -d
		}
		return d
	}

	for i := range p.segments {
		if d := int(p.segments[i].kind) - int(other.segments[i].kind); d != 0 {
			return d
		}
	}
	return 0
}

// splitPath strips a single trailing slash and splits the remainder into
// segments. The root path "/" yields a single empty segment.
func splitPath(path string) []string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	path = strings.TrimPrefix(path, "/")
	return strings.Split(path, "/")
}
