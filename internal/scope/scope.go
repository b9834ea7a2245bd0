// Package scope groups a flat ProtoSpec into a tree keyed by package
// segment.
package scope

import (
	"maps"
	"slices"
	"strings"

	"github.com/mattinsler/protos/internal/ir"
)

// Scope is one package segment. The root scope has an empty name and holds
// the entities whose package is empty. A segment with no entities of its
// own still exists when a deeper segment does.
//
// Nested declarations carry their parent message's fullname as package, so
// a message with nested types also appears as a segment of the same name.
type Scope struct {
	Name     string
	Fullname string
	Enums    []ir.EnumSpec
	Messages []ir.MessageSpec
	Services []ir.ServiceSpec
	Children map[string]*Scope
}

// New creates an empty scope.
func New(name, fullname string) *Scope {
	return &Scope{Name: name, Fullname: fullname, Children: make(map[string]*Scope)}
}

// From builds the scope tree for spec. Entities keep the order they have in
// spec within their scope.
func From(spec *ir.ProtoSpec) *Scope {
	root := New("", "")
	for _, e := range spec.Enums {
		s := root.ensure(e.Package)
		s.Enums = append(s.Enums, e)
	}
	for _, m := range spec.Messages {
		s := root.ensure(m.Package)
		s.Messages = append(s.Messages, m)
	}
	for _, sv := range spec.Services {
		s := root.ensure(sv.Package)
		s.Services = append(s.Services, sv)
	}
	return root
}

// ensure returns the scope for a dotted package, creating missing segments.
func (s *Scope) ensure(pkg string) *Scope {
	if pkg == "" {
		return s
	}
	current := s
	for _, seg := range strings.Split(pkg, ".") {
		child, ok := current.Children[seg]
		if !ok {
			child = New(seg, ir.JoinName(current.Fullname, seg))
			current.Children[seg] = child
		}
		current = child
	}
	return current
}

// SortedChildren returns the child scopes ordered by name.
func (s *Scope) SortedChildren() []*Scope {
	keys := slices.Sorted(maps.Keys(s.Children))
	out := make([]*Scope, len(keys))
	for i, k := range keys {
		out[i] = s.Children[k]
	}
	return out
}

// Lookup finds the scope for a dotted package name relative to s. The empty
// name returns s itself.
func (s *Scope) Lookup(fullname string) (*Scope, bool) {
	if fullname == "" {
		return s, true
	}
	current := s
	for _, seg := range strings.Split(fullname, ".") {
		child, ok := current.Children[seg]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// HasEntities reports whether s itself holds any declaration.
func (s *Scope) HasEntities() bool {
	return len(s.Enums)+len(s.Messages)+len(s.Services) > 0
}

// Walk calls fn for s and every descendant in depth-first name order,
// passing the depth below s. Returning false skips the scope's children.
func (s *Scope) Walk(fn func(sc *Scope, depth int) bool) {
	s.walk(fn, 0)
}

func (s *Scope) walk(fn func(*Scope, int) bool, depth int) {
	if !fn(s, depth) {
		return
	}
	for _, c := range s.SortedChildren() {
		c.walk(fn, depth+1)
	}
}
