package ast

import (
	"fmt"

	"github.com/mattinsler/protos/internal/ir"
	"github.com/mattinsler/protos/internal/scope"
)

// FromSpec builds the tree for a whole spec. When the root scope holds
// entities of its own (empty package), an unnamed Package comes first among
// the root's packages so that no entity is lost.
func FromSpec(spec *ir.ProtoSpec) *Root {
	tree := scope.From(spec)
	root := &Root{}
	if tree.HasEntities() {
		own := &Package{}
		fillEntities(own, tree)
		root.Packages = append(root.Packages, own)
	}
	for _, child := range tree.SortedChildren() {
		root.Packages = append(root.Packages, FromScope(child))
	}
	return root
}

// FromScope converts a scope and its descendants into Package nodes.
func FromScope(s *scope.Scope) *Package {
	pkg := &Package{Name: s.Name, Fullname: s.Fullname}
	fillEntities(pkg, s)
	for _, child := range s.SortedChildren() {
		pkg.Packages = append(pkg.Packages, FromScope(child))
	}
	return pkg
}

func fillEntities(pkg *Package, s *scope.Scope) {
	for _, e := range s.Enums {
		pkg.Enums = append(pkg.Enums, NewEnum(e))
	}
	for _, m := range s.Messages {
		pkg.Messages = append(pkg.Messages, NewMessage(m))
	}
	for _, sv := range s.Services {
		pkg.Services = append(pkg.Services, NewService(sv))
	}
}

// NewEnum converts an enum spec. Values keep declaration order.
func NewEnum(e ir.EnumSpec) *Enum {
	n := &Enum{
		Name:     e.Name,
		Fullname: e.Fullname,
		Package:  e.Package,
		Filename: e.Filename,
		Comments: e.Comments,
	}
	for _, v := range e.Values {
		n.Values = append(n.Values, &EnumValue{Name: v.Name, Value: v.Value, Comments: v.Comments})
	}
	return n
}

// NewMessage converts a message spec. Fields are sorted by name.
func NewMessage(m ir.MessageSpec) *Message {
	n := &Message{
		Name:     m.Name,
		Fullname: m.Fullname,
		Package:  m.Package,
		Filename: m.Filename,
		Comments: m.Comments,
	}
	for _, f := range m.Fields {
		n.Fields = append(n.Fields, NewField(f))
	}
	sortByName(n.Fields)
	return n
}

// NewField converts a basic field or a oneof group. Oneof members keep
// declaration order. f must be an ir.BasicField or ir.OneOfField value,
// as guaranteed by a spec that passes Validate; anything else panics.
func NewField(f ir.Field) Field {
	switch f := f.(type) {
	case ir.BasicField:
		return newBasicField(f)
	case ir.OneOfField:
		g := &OneOfField{Name: f.Name, Comments: f.Comments}
		for _, member := range f.OneOf {
			g.Fields = append(g.Fields, newBasicField(member))
		}
		return g
	default:
		panic(fmt.Sprintf("ast: unsupported field variant %T", f))
	}
}

func newBasicField(f ir.BasicField) *BasicField {
	return &BasicField{
		Name:     f.Name,
		Number:   f.Number,
		Required: f.Required,
		Repeated: f.Repeated,
		Type:     NewType(f.Type),
		Comments: f.Comments,
	}
}

// NewType converts a field type.
func NewType(t ir.Type) Type {
	switch t := t.(type) {
	case ir.BasicType:
		return &BasicType{Name: t.Basic}
	case ir.EnumType:
		return &EnumType{Name: t.Enum}
	case ir.MessageType:
		return &MessageType{Name: t.Message}
	case ir.MapType:
		return &MapType{Key: &BasicType{Name: t.KeyType.Basic}, Value: NewType(t.ValueType)}
	default:
		panic(fmt.Sprintf("ast: unsupported type variant %T", t))
	}
}

// NewService converts a service spec. Methods are sorted by name.
func NewService(s ir.ServiceSpec) *Service {
	n := &Service{
		Name:     s.Name,
		Fullname: s.Fullname,
		Package:  s.Package,
		Filename: s.Filename,
		Comments: s.Comments,
	}
	for _, m := range s.Methods {
		n.Methods = append(n.Methods, NewMethod(m))
	}
	sortByName(n.Methods)
	return n
}

// NewMethod converts a method spec into a Method with its request and
// response wrappers.
func NewMethod(m ir.MethodSpec) *Method {
	return &Method{
		Name:     m.Name,
		Comments: m.Comments,
		Request:  &MethodRequest{Stream: m.Request.Stream, Type: &MessageType{Name: m.Request.Message}},
		Response: &MethodResponse{Stream: m.Response.Stream, Type: &MessageType{Name: m.Response.Message}},
	}
}
