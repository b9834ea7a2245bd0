package traverse

import "github.com/mattinsler/protos/internal/ast"

// Path wraps a node with a link to the path it was reached from. Paths are
// cheap values created during a walk; children and named fields are
// computed on each call.
type Path struct {
	Node   ast.Node
	Parent *Path
}

// NewPath returns a root path for node.
func NewPath(node ast.Node) *Path {
	return &Path{Node: node}
}

// Kind returns the wrapped node's kind.
func (p *Path) Kind() ast.Kind {
	return p.Node.Kind()
}

// Children wraps the node's ordered children.
func (p *Path) Children() []*Path {
	return p.wrap(p.Node.Children())
}

// Get returns the single named child field wrapped as a path, or nil when
// the node kind has no such field or it is unset.
func (p *Path) Get(name string) *Path {
	child, ok := ast.Child(p.Node, name)
	if !ok {
		return nil
	}
	return &Path{Node: child, Parent: p}
}

// GetList returns the named sequence child field wrapped as paths, or nil
// when the node kind has no such field.
func (p *Path) GetList(name string) []*Path {
	children, ok := ast.ChildList(p.Node, name)
	if !ok {
		return nil
	}
	return p.wrap(children)
}

// Depth is the number of parent links above p.
func (p *Path) Depth() int {
	d := 0
	for cur := p.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}

// Ancestor returns the closest enclosing path of the given kind, or nil.
func (p *Path) Ancestor(kind ast.Kind) *Path {
	for cur := p.Parent; cur != nil; cur = cur.Parent {
		if cur.Kind() == kind {
			return cur
		}
	}
	return nil
}

func (p *Path) wrap(children []ast.Node) []*Path {
	if len(children) == 0 {
		return nil
	}
	out := make([]*Path, len(children))
	for i, c := range children {
		out[i] = &Path{Node: c, Parent: p}
	}
	return out
}
