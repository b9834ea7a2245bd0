package ast

import (
	"cmp"
	"slices"

	"github.com/mattinsler/protos/internal/ir"
)

// Kind identifies a node kind.
type Kind int

// Node kinds.
const (
	KindRoot Kind = iota
	KindPackage
	KindEnum
	KindEnumValue
	KindMessage
	KindBasicField
	KindOneOfField
	KindBasicType
	KindEnumType
	KindMapType
	KindMessageType
	KindService
	KindMethod
	KindMethodRequest
	KindMethodResponse

	numKinds
)

var kindNames = [numKinds]string{
	KindRoot:           "Root",
	KindPackage:        "Package",
	KindEnum:           "Enum",
	KindEnumValue:      "EnumValue",
	KindMessage:        "Message",
	KindBasicField:     "BasicField",
	KindOneOfField:     "OneOfField",
	KindBasicType:      "BasicType",
	KindEnumType:       "EnumType",
	KindMapType:        "MapType",
	KindMessageType:    "MessageType",
	KindService:        "Service",
	KindMethod:         "Method",
	KindMethodRequest:  "MethodRequest",
	KindMethodResponse: "MethodResponse",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Node is a sealed interface over the AST node kinds.
type Node interface {
	isNode() // Sealed

	Kind() Kind
	// Children returns the node's children in traversal order.
	Children() []Node
}

// Named is implemented by nodes that sort by name among siblings.
type Named interface {
	Node
	NodeName() string
}

// Field is a message field node: *BasicField or *OneOfField.
type Field interface {
	Named
	isField()
}

// Type is a field type node: *BasicType, *EnumType, *MapType or *MessageType.
type Type interface {
	Node
	isType()
}

// Root is the top of a tree built from a whole spec.
type Root struct {
	Packages []*Package
}

// Package is one scope segment.
type Package struct {
	Name     string
	Fullname string
	Enums    []*Enum
	Messages []*Message
	Packages []*Package
	Services []*Service
}

// Enum is an enum declaration.
type Enum struct {
	Name     string
	Fullname string
	Package  string
	Filename string
	Comments ir.Comments
	Values   []*EnumValue
}

// EnumValue is a leaf.
type EnumValue struct {
	Name     string
	Value    int32
	Comments ir.Comments
}

// Message is a message declaration. Fields holds basic fields and oneof
// groups together, sorted by name.
type Message struct {
	Name     string
	Fullname string
	Package  string
	Filename string
	Comments ir.Comments
	Fields   []Field
}

// BasicField is a plain field with a single type child.
type BasicField struct {
	Name     string
	Number   int32
	Required bool
	Repeated bool
	Type     Type
	Comments ir.Comments
}

// OneOfField is a oneof group whose children are its member fields in
// declaration order.
type OneOfField struct {
	Name     string
	Fields   []*BasicField
	Comments ir.Comments
}

// BasicType is a scalar leaf.
type BasicType struct {
	Name ir.Scalar
}

// EnumType references an enum by fullname.
type EnumType struct {
	Name string
}

// MessageType references a message by fullname.
type MessageType struct {
	Name string
}

// MapType has a key and a value child.
type MapType struct {
	Key   *BasicType
	Value Type
}

// Service is a service declaration.
type Service struct {
	Name     string
	Fullname string
	Package  string
	Filename string
	Comments ir.Comments
	Methods  []*Method
}

// Method has a request and a response child.
type Method struct {
	Name     string
	Comments ir.Comments
	Request  *MethodRequest
	Response *MethodResponse
}

// MethodRequest is the input side of a method.
type MethodRequest struct {
	Stream bool
	Type   *MessageType
}

// MethodResponse is the output side of a method.
type MethodResponse struct {
	Stream bool
	Type   *MessageType
}

func (*Root) isNode()           {}
func (*Package) isNode()        {}
func (*Enum) isNode()           {}
func (*EnumValue) isNode()      {}
func (*Message) isNode()        {}
func (*BasicField) isNode()     {}
func (*OneOfField) isNode()     {}
func (*BasicType) isNode()      {}
func (*EnumType) isNode()       {}
func (*MapType) isNode()        {}
func (*MessageType) isNode()    {}
func (*Service) isNode()        {}
func (*Method) isNode()         {}
func (*MethodRequest) isNode()  {}
func (*MethodResponse) isNode() {}

func (*Root) Kind() Kind           { return KindRoot }
func (*Package) Kind() Kind        { return KindPackage }
func (*Enum) Kind() Kind           { return KindEnum }
func (*EnumValue) Kind() Kind      { return KindEnumValue }
func (*Message) Kind() Kind        { return KindMessage }
func (*BasicField) Kind() Kind     { return KindBasicField }
func (*OneOfField) Kind() Kind     { return KindOneOfField }
func (*BasicType) Kind() Kind      { return KindBasicType }
func (*EnumType) Kind() Kind       { return KindEnumType }
func (*MapType) Kind() Kind        { return KindMapType }
func (*MessageType) Kind() Kind    { return KindMessageType }
func (*Service) Kind() Kind        { return KindService }
func (*Method) Kind() Kind         { return KindMethod }
func (*MethodRequest) Kind() Kind  { return KindMethodRequest }
func (*MethodResponse) Kind() Kind { return KindMethodResponse }

func (*BasicField) isField() {}
func (*OneOfField) isField() {}

func (*BasicType) isType()   {}
func (*EnumType) isType()    {}
func (*MapType) isType()     {}
func (*MessageType) isType() {}

func (n *Package) NodeName() string    { return n.Name }
func (n *Enum) NodeName() string       { return n.Name }
func (n *Message) NodeName() string    { return n.Name }
func (n *Service) NodeName() string    { return n.Name }
func (n *BasicField) NodeName() string { return n.Name }
func (n *OneOfField) NodeName() string { return n.Name }
func (n *Method) NodeName() string     { return n.Name }

// Children returns the packages.
func (n *Root) Children() []Node { return nodes(n.Packages) }

// Children returns enums, messages, child packages and services merged and
// sorted by name. Ties keep that kind order.
func (n *Package) Children() []Node {
	members := make([]Named, 0, len(n.Enums)+len(n.Messages)+len(n.Packages)+len(n.Services))
	for _, e := range n.Enums {
		members = append(members, e)
	}
	for _, m := range n.Messages {
		members = append(members, m)
	}
	for _, p := range n.Packages {
		members = append(members, p)
	}
	for _, s := range n.Services {
		members = append(members, s)
	}
	sortByName(members)
	return nodes(members)
}

// Children returns the values in declaration order.
func (n *Enum) Children() []Node { return nodes(n.Values) }

// Children returns nothing.
func (n *EnumValue) Children() []Node { return nil }

// Children returns the fields sorted by name.
func (n *Message) Children() []Node { return nodes(n.Fields) }

// BasicFields returns the non-oneof fields sorted by name.
func (n *Message) BasicFields() []*BasicField {
	var out []*BasicField
	for _, f := range n.Fields {
		if bf, ok := f.(*BasicField); ok {
			out = append(out, bf)
		}
	}
	return out
}

// OneOf returns the first declared oneof group, or nil.
func (n *Message) OneOf() *OneOfField {
	groups := n.OneOfs()
	if len(groups) == 0 {
		return nil
	}
	return groups[0]
}

// OneOfs returns every oneof group in declaration order.
func (n *Message) OneOfs() []*OneOfField {
	var out []*OneOfField
	for _, f := range n.Fields {
		if g, ok := f.(*OneOfField); ok {
			out = append(out, g)
		}
	}
	return out
}

// Children returns the type.
func (n *BasicField) Children() []Node { return []Node{n.Type} }

// Children returns the member fields.
func (n *OneOfField) Children() []Node { return nodes(n.Fields) }

// Children returns nothing.
func (n *BasicType) Children() []Node { return nil }

// Children returns nothing.
func (n *EnumType) Children() []Node { return nil }

// Children returns the key and the value.
func (n *MapType) Children() []Node { return []Node{n.Key, n.Value} }

// Children returns nothing.
func (n *MessageType) Children() []Node { return nil }

// Children returns the methods sorted by name.
func (n *Service) Children() []Node { return nodes(n.Methods) }

// Children returns the request and the response.
func (n *Method) Children() []Node { return []Node{n.Request, n.Response} }

// Children returns the message type.
func (n *MethodRequest) Children() []Node { return []Node{n.Type} }

// Children returns the message type.
func (n *MethodResponse) Children() []Node { return []Node{n.Type} }

func nodes[N Node](in []N) []Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = n
	}
	return out
}

func sortByName[N Named](in []N) {
	slices.SortStableFunc(in, func(a, b N) int { return cmp.Compare(a.NodeName(), b.NodeName()) })
}
