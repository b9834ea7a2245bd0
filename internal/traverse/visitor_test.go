package traverse

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattinsler/protos/internal/ast"
	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	tu "github.com/mattinsler/protos/internal/testutil"
)

func catalogRoot(t *testing.T) *ast.Root {
	t.Helper()
	spec, err := compiler.Build(tu.CatalogFiles()...)
	require.NoError(t, err)
	return ast.FromSpec(spec)
}

// countNodes counts every node reachable through Children.
func countNodes(n ast.Node) int {
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}

// recordAll registers Enter on every kind and records the kind names.
func recordAll(seen *[]string) *Visitor {
	rec := func(k ast.Kind) { *seen = append(*seen, k.String()) }
	return &Visitor{
		Root:           Visit[*ast.Root]{Enter: func(p *Path, n *ast.Root) error { rec(n.Kind()); return nil }},
		Package:        Visit[*ast.Package]{Enter: func(p *Path, n *ast.Package) error { rec(n.Kind()); return nil }},
		Enum:           Visit[*ast.Enum]{Enter: func(p *Path, n *ast.Enum) error { rec(n.Kind()); return nil }},
		EnumValue:      Visit[*ast.EnumValue]{Enter: func(p *Path, n *ast.EnumValue) error { rec(n.Kind()); return nil }},
		Message:        Visit[*ast.Message]{Enter: func(p *Path, n *ast.Message) error { rec(n.Kind()); return nil }},
		BasicField:     Visit[*ast.BasicField]{Enter: func(p *Path, n *ast.BasicField) error { rec(n.Kind()); return nil }},
		OneOfField:     Visit[*ast.OneOfField]{Enter: func(p *Path, n *ast.OneOfField) error { rec(n.Kind()); return nil }},
		BasicType:      Visit[*ast.BasicType]{Enter: func(p *Path, n *ast.BasicType) error { rec(n.Kind()); return nil }},
		EnumType:       Visit[*ast.EnumType]{Enter: func(p *Path, n *ast.EnumType) error { rec(n.Kind()); return nil }},
		MapType:        Visit[*ast.MapType]{Enter: func(p *Path, n *ast.MapType) error { rec(n.Kind()); return nil }},
		MessageType:    Visit[*ast.MessageType]{Enter: func(p *Path, n *ast.MessageType) error { rec(n.Kind()); return nil }},
		Service:        Visit[*ast.Service]{Enter: func(p *Path, n *ast.Service) error { rec(n.Kind()); return nil }},
		Method:         Visit[*ast.Method]{Enter: func(p *Path, n *ast.Method) error { rec(n.Kind()); return nil }},
		MethodRequest:  Visit[*ast.MethodRequest]{Enter: func(p *Path, n *ast.MethodRequest) error { rec(n.Kind()); return nil }},
		MethodResponse: Visit[*ast.MethodResponse]{Enter: func(p *Path, n *ast.MethodResponse) error { rec(n.Kind()); return nil }},
	}
}

func TestEnterExitOrder(t *testing.T) {
	msg := ast.NewMessage(ir.MessageSpec{Name: "M", Fields: []ir.Field{
		ir.BasicField{Name: "b", Number: 2, Type: ir.BasicType{Basic: ir.ScalarString}},
		ir.BasicField{Name: "a", Number: 1, Type: ir.EnumType{Enum: "x.E"}},
	}})

	var events []string
	v := &Visitor{
		Message: Visit[*ast.Message]{
			Enter: func(p *Path, n *ast.Message) error { events = append(events, "enter "+n.Name); return nil },
			Exit:  func(p *Path, n *ast.Message) error { events = append(events, "exit "+n.Name); return nil },
		},
		BasicField: Visit[*ast.BasicField]{
			Exit: func(p *Path, n *ast.BasicField) error { events = append(events, "field "+n.Name); return nil },
		},
		EnumType: Visit[*ast.EnumType]{
			Enter: func(p *Path, n *ast.EnumType) error {
				assert.Equal(t, ast.KindBasicField, p.Parent.Kind())
				assert.Equal(t, 2, p.Depth())
				events = append(events, "enum "+n.Name)
				return nil
			},
		},
	}
	require.NoError(t, Traverse(msg, v))
	assert.Equal(t, []string{"enter M", "enum x.E", "field a", "field b", "exit M"}, events)
}

func TestNoVisitorReachesEverything(t *testing.T) {
	root := catalogRoot(t)

	var seen []string
	v := recordAll(&seen)
	v.Package = Visit[*ast.Package]{}
	v.Message = Visit[*ast.Message]{}
	v.Service = Visit[*ast.Service]{}
	require.NoError(t, Traverse(root, v))

	// Unregistered Package, Message and Service still pass through to
	// their children.
	seenKinds := map[string]int{}
	for _, k := range seen {
		seenKinds[k]++
	}
	assert.Zero(t, seenKinds["Package"])
	assert.Equal(t, 2, seenKinds["Method"])
	assert.Equal(t, 3, seenKinds["EnumValue"])
	assert.Equal(t, 1, seenKinds["MapType"])

	var all []string
	require.NoError(t, Traverse(root, recordAll(&all)))
	assert.Len(t, all, countNodes(root), "each node visited exactly once")
}

func TestHandleShortCircuitsDescent(t *testing.T) {
	root := catalogRoot(t)

	var seen []string
	v := recordAll(&seen)
	handled := 0
	v.Message = Visit[*ast.Message]{Handle: func(p *Path, n *ast.Message) error {
		handled++
		return nil
	}}
	require.NoError(t, Traverse(root, v))

	assert.Equal(t, 6, handled)
	assert.NotContains(t, seen, "BasicField", "fields of handled messages are not visited")
	assert.NotContains(t, seen, "OneOfField")
	assert.Contains(t, seen, "EnumValue")
}

func TestHandleCanResumeWalk(t *testing.T) {
	msg := ast.NewMessage(ir.MessageSpec{Name: "M", Fields: []ir.Field{
		ir.BasicField{Name: "a", Number: 1, Type: ir.BasicType{Basic: ir.ScalarString}},
	}})

	var fields []string
	var v *Visitor
	v = &Visitor{
		Message: Visit[*ast.Message]{Handle: func(p *Path, n *ast.Message) error {
			return WalkChildren(p, v)
		}},
		BasicField: Visit[*ast.BasicField]{Enter: func(p *Path, n *ast.BasicField) error {
			fields = append(fields, n.Name)
			return nil
		}},
	}
	require.NoError(t, Traverse(msg, v))
	assert.Equal(t, []string{"a"}, fields)
}

func TestConflictingRegistrationIsContractViolation(t *testing.T) {
	called := false
	v := &Visitor{Enum: Visit[*ast.Enum]{
		Enter:  func(p *Path, n *ast.Enum) error { called = true; return nil },
		Handle: func(p *Path, n *ast.Enum) error { called = true; return nil },
	}}
	err := Traverse(ast.NewEnum(ir.EnumSpec{Name: "E"}), v)

	require.ErrorIs(t, err, ErrContractViolation)
	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ast.KindEnum, ce.Kind)
	assert.False(t, called, "no callback of the node runs")
}

func TestCallbackErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	count := 0
	v := &Visitor{EnumValue: Visit[*ast.EnumValue]{Enter: func(p *Path, n *ast.EnumValue) error {
		count++
		return boom
	}}}
	enum := ast.NewEnum(ir.EnumSpec{Name: "E", Values: []ir.EnumValue{{Name: "A"}, {Name: "B"}}})

	err := Traverse(enum, v)
	require.ErrorIs(t, err, boom)
	var cbErr *CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, ast.KindEnumValue, cbErr.Kind)
	assert.Equal(t, "enter", cbErr.Phase)
	assert.Equal(t, "EnumValue enter: boom", err.Error())
	assert.Equal(t, 1, count)
}

func TestNestedCallbackErrorIsNotRewrapped(t *testing.T) {
	boom := errors.New("boom")
	var v *Visitor
	v = &Visitor{
		Enum: Visit[*ast.Enum]{Handle: func(p *Path, n *ast.Enum) error { return WalkChildren(p, v) }},
		EnumValue: Visit[*ast.EnumValue]{Exit: func(p *Path, n *ast.EnumValue) error {
			return boom
		}},
	}
	err := Traverse(ast.NewEnum(ir.EnumSpec{Name: "E", Values: []ir.EnumValue{{Name: "A"}}}), v)
	assert.Equal(t, "EnumValue exit: boom", err.Error())
}

func TestPathAccessors(t *testing.T) {
	method := ast.NewMethod(ir.MethodSpec{
		Name:     "Get",
		Request:  ir.MethodEndpoint{Message: "a.In", Stream: true},
		Response: ir.MethodEndpoint{Message: "a.Out"},
	})
	svc := &ast.Service{Name: "S", Methods: []*ast.Method{method}}

	var req *Path
	v := &Visitor{Method: Visit[*ast.Method]{Handle: func(p *Path, n *ast.Method) error {
		req = p.Get("request")
		assert.Nil(t, p.Get("nope"))
		assert.Nil(t, p.GetList("request"))
		return nil
	}}}
	require.NoError(t, Traverse(svc, v))

	require.NotNil(t, req)
	assert.Equal(t, ast.KindMethodRequest, req.Kind())
	assert.True(t, req.Node.(*ast.MethodRequest).Stream)
	assert.Equal(t, ast.KindService, req.Ancestor(ast.KindService).Kind())
	assert.Nil(t, req.Ancestor(ast.KindPackage))

	inner := req.Get("type")
	require.NotNil(t, inner)
	assert.Equal(t, "a.In", inner.Node.(*ast.MessageType).Name)

	methods := NewPath(svc).GetList("methods")
	require.Len(t, methods, 1)
	assert.Same(t, method, methods[0].Node)
}

func TestRunCallsInitAndFinalize(t *testing.T) {
	agg := &countingAggregator{}
	n, err := Run[int](catalogRoot(t), agg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 1, agg.inits)
}

type countingAggregator struct {
	inits    int
	messages int
}

func (a *countingAggregator) Init() error {
	a.inits++
	a.messages = 0
	return nil
}

func (a *countingAggregator) Visitor() *Visitor {
	return &Visitor{Message: Visit[*ast.Message]{Enter: func(p *Path, n *ast.Message) error {
		a.messages++
		return nil
	}}}
}

func (a *countingAggregator) Finalize() int { return a.messages }

func TestHandleVisitsOnceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("handled messages are visited once with no descent", prop.ForAll(
		func(fieldCounts []int) bool {
			pkg := &ast.Package{Name: "p"}
			for i, count := range fieldCounts {
				spec := ir.MessageSpec{Name: string(rune('A' + i%26))}
				for j := 0; j < count; j++ {
					spec.Fields = append(spec.Fields, ir.BasicField{
						Name:   string(rune('a'+j%26)) + string(rune('0'+j/26)),
						Number: int32(j + 1),
						Type:   ir.BasicType{Basic: ir.ScalarInt32},
					})
				}
				pkg.Messages = append(pkg.Messages, ast.NewMessage(spec))
			}

			visits := map[*ast.Message]int{}
			fields := 0
			v := &Visitor{
				Message: Visit[*ast.Message]{Handle: func(p *Path, n *ast.Message) error {
					visits[n]++
					return nil
				}},
				BasicField: Visit[*ast.BasicField]{Enter: func(p *Path, n *ast.BasicField) error {
					fields++
					return nil
				}},
			}
			if err := Traverse(pkg, v); err != nil {
				return false
			}
			if fields != 0 || len(visits) != len(pkg.Messages) {
				return false
			}
			for _, c := range visits {
				if c != 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.TestingRun(t)
}
