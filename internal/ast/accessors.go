package ast

import "slices"

// accessor extracts one named child field of a node. Exactly one of one or
// many is set.
type accessor struct {
	one  func(Node) Node
	many func(Node) []Node
}

// accessors is indexed by kind and then by field name.
var accessors [numKinds]map[string]accessor

func one[N Node](fn func(N) Node) accessor {
	return accessor{one: func(n Node) Node { return fn(n.(N)) }}
}

func many[N Node](fn func(N) []Node) accessor {
	return accessor{many: func(n Node) []Node { return fn(n.(N)) }}
}

func init() {
	accessors[KindRoot] = map[string]accessor{
		"packages": many(func(n *Root) []Node { return nodes(n.Packages) }),
	}
	accessors[KindPackage] = map[string]accessor{
		"enums":    many(func(n *Package) []Node { return nodes(n.Enums) }),
		"messages": many(func(n *Package) []Node { return nodes(n.Messages) }),
		"packages": many(func(n *Package) []Node { return nodes(n.Packages) }),
		"services": many(func(n *Package) []Node { return nodes(n.Services) }),
	}
	accessors[KindEnum] = map[string]accessor{
		"values": many(func(n *Enum) []Node { return nodes(n.Values) }),
	}
	accessors[KindEnumValue] = map[string]accessor{}
	accessors[KindMessage] = map[string]accessor{
		"fields":      many(func(n *Message) []Node { return nodes(n.Fields) }),
		"basicFields": many(func(n *Message) []Node { return nodes(n.BasicFields()) }),
		"oneofs":      many(func(n *Message) []Node { return nodes(n.OneOfs()) }),
		"oneof": one(func(n *Message) Node {
			if g := n.OneOf(); g != nil {
				return g
			}
			return nil
		}),
	}
	accessors[KindBasicField] = map[string]accessor{
		"type": one(func(n *BasicField) Node { return n.Type }),
	}
	accessors[KindOneOfField] = map[string]accessor{
		"fields": many(func(n *OneOfField) []Node { return nodes(n.Fields) }),
	}
	accessors[KindBasicType] = map[string]accessor{}
	accessors[KindEnumType] = map[string]accessor{}
	accessors[KindMessageType] = map[string]accessor{}
	accessors[KindMapType] = map[string]accessor{
		"key":   one(func(n *MapType) Node { return n.Key }),
		"value": one(func(n *MapType) Node { return n.Value }),
	}
	accessors[KindService] = map[string]accessor{
		"methods": many(func(n *Service) []Node { return nodes(n.Methods) }),
	}
	accessors[KindMethod] = map[string]accessor{
		"request":  one(func(n *Method) Node { return n.Request }),
		"response": one(func(n *Method) Node { return n.Response }),
	}
	accessors[KindMethodRequest] = map[string]accessor{
		"type": one(func(n *MethodRequest) Node { return n.Type }),
	}
	accessors[KindMethodResponse] = map[string]accessor{
		"type": one(func(n *MethodResponse) Node { return n.Type }),
	}
}

// Child returns the single child field called name. It reports false when
// the kind has no such single field or the field is unset.
func Child(n Node, name string) (Node, bool) {
	acc, ok := accessors[n.Kind()][name]
	if !ok || acc.one == nil {
		return nil, false
	}
	child := acc.one(n)
	if child == nil {
		return nil, false
	}
	return child, true
}

// ChildList returns the sequence child field called name. It reports false
// when the kind has no such sequence field.
func ChildList(n Node, name string) ([]Node, bool) {
	acc, ok := accessors[n.Kind()][name]
	if !ok || acc.many == nil {
		return nil, false
	}
	return acc.many(n), true
}

// FieldNames returns the accessor names declared for kind, sorted.
func FieldNames(k Kind) []string {
	if k < 0 || k >= numKinds {
		return nil
	}
	names := make([]string, 0, len(accessors[k]))
	for name := range accessors[k] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
