// Package traverse walks AST nodes depth-first with per-kind visitors.
//
// A kind's visitor either wraps descent with Enter/Exit hooks or replaces
// descent with a single Handle callback. Kinds without a visitor are passed
// through: the walk still descends into their children. The engine keeps
// no state between calls.
package traverse

import (
	"github.com/mattinsler/protos/internal/ast"
)

// Visit holds the callbacks for one node kind. Registering Handle together
// with Enter or Exit is a contract violation.
type Visit[N ast.Node] struct {
	Enter  func(p *Path, n N) error
	Exit   func(p *Path, n N) error
	Handle func(p *Path, n N) error
}

// Visitor has one optional Visit per node kind.
type Visitor struct {
	Root           Visit[*ast.Root]
	Package        Visit[*ast.Package]
	Enum           Visit[*ast.Enum]
	EnumValue      Visit[*ast.EnumValue]
	Message        Visit[*ast.Message]
	BasicField     Visit[*ast.BasicField]
	OneOfField     Visit[*ast.OneOfField]
	BasicType      Visit[*ast.BasicType]
	EnumType       Visit[*ast.EnumType]
	MapType        Visit[*ast.MapType]
	MessageType    Visit[*ast.MessageType]
	Service        Visit[*ast.Service]
	Method         Visit[*ast.Method]
	MethodRequest  Visit[*ast.MethodRequest]
	MethodResponse Visit[*ast.MethodResponse]
}

// Traverse walks node as a root path.
func Traverse(node ast.Node, v *Visitor) error {
	return Walk(NewPath(node), v)
}

// Walk visits p and, unless a Handle callback takes over, its descendants.
// The first error stops the walk.
func Walk(p *Path, v *Visitor) error {
	switch n := p.Node.(type) {
	case *ast.Root:
		return visit(p, n, v.Root, v)
	case *ast.Package:
		return visit(p, n, v.Package, v)
	case *ast.Enum:
		return visit(p, n, v.Enum, v)
	case *ast.EnumValue:
		return visit(p, n, v.EnumValue, v)
	case *ast.Message:
		return visit(p, n, v.Message, v)
	case *ast.BasicField:
		return visit(p, n, v.BasicField, v)
	case *ast.OneOfField:
		return visit(p, n, v.OneOfField, v)
	case *ast.BasicType:
		return visit(p, n, v.BasicType, v)
	case *ast.EnumType:
		return visit(p, n, v.EnumType, v)
	case *ast.MapType:
		return visit(p, n, v.MapType, v)
	case *ast.MessageType:
		return visit(p, n, v.MessageType, v)
	case *ast.Service:
		return visit(p, n, v.Service, v)
	case *ast.Method:
		return visit(p, n, v.Method, v)
	case *ast.MethodRequest:
		return visit(p, n, v.MethodRequest, v)
	case *ast.MethodResponse:
		return visit(p, n, v.MethodResponse, v)
	default:
		panic("traverse: unknown node kind")
	}
}

func visit[N ast.Node](p *Path, n N, cb Visit[N], v *Visitor) error {
	if cb.Handle != nil {
		if cb.Enter != nil || cb.Exit != nil {
			return &ContractError{Kind: n.Kind(), Reason: "handle registered together with enter/exit"}
		}
		if err := cb.Handle(p, n); err != nil {
			return wrapCallback(n.Kind(), "handle", err)
		}
		return nil
	}
	if cb.Enter != nil {
		if err := cb.Enter(p, n); err != nil {
			return wrapCallback(n.Kind(), "enter", err)
		}
	}
	if err := WalkChildren(p, v); err != nil {
		return err
	}
	if cb.Exit != nil {
		if err := cb.Exit(p, n); err != nil {
			return wrapCallback(n.Kind(), "exit", err)
		}
	}
	return nil
}

// WalkChildren walks each child of p in order. Handle callbacks use it to
// continue the walk below the node they took over.
func WalkChildren(p *Path, v *Visitor) error {
	for _, child := range p.Children() {
		if err := Walk(child, v); err != nil {
			return err
		}
	}
	return nil
}

// Aggregator is a visitor that accumulates a result over one walk.
type Aggregator[T any] interface {
	// Init resets the accumulator before the walk.
	Init() error
	Visitor() *Visitor
	// Finalize returns the result after the walk.
	Finalize() T
}

// Run walks node with agg and returns its result.
func Run[T any](node ast.Node, agg Aggregator[T]) (T, error) {
	return RunPath(NewPath(node), agg)
}

// RunPath is Run starting from an existing path. Finalize is called even
// when the walk fails so the aggregator can be reused.
func RunPath[T any](p *Path, agg Aggregator[T]) (T, error) {
	var zero T
	if err := agg.Init(); err != nil {
		return zero, err
	}
	err := Walk(p, agg.Visitor())
	out := agg.Finalize()
	if err != nil {
		return zero, err
	}
	return out, nil
}
