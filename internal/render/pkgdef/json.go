package pkgdef

import (
	"fmt"
	"strings"

	"github.com/mattinsler/protos/internal/ir"
)

// Object is one node of the nested namespace JSON. encoding/json sorts its
// keys, so the encoding is deterministic.
type Object = map[string]any

// JSON builds the protobufjs-style nested namespace description of spec:
//
//	{"nested": {"pkg": {"nested": {"Msg": {"fields": {...}, "oneofs": {...}}}}}}
//
// Type references are made relative to the enclosing message or package
// when the remainder is a single segment. A map whose value is itself a
// map cannot be expressed and is an error.
func JSON(spec *ir.ProtoSpec) (Object, error) {
	root := Object{}

	for _, m := range spec.Messages {
		obj := declaration(root, m.Fullname)
		if err := fillMessage(obj, m); err != nil {
			return nil, err
		}
	}

	for _, e := range spec.Enums {
		values := Object{}
		for _, v := range e.Values {
			values[v.Name] = v.Value
		}
		declaration(root, e.Fullname)["values"] = values
	}

	for _, s := range spec.Services {
		methods := Object{}
		for _, m := range s.Methods {
			method := Object{
				"requestType":  relativeName(m.Request.Message, s.Package),
				"responseType": relativeName(m.Response.Message, s.Package),
			}
			if m.Request.Stream {
				method["requestStream"] = true
			}
			if m.Response.Stream {
				method["responseStream"] = true
			}
			methods[m.Name] = method
		}
		declaration(root, s.Fullname)["methods"] = methods
	}

	return root, nil
}

func fillMessage(obj Object, m ir.MessageSpec) error {
	fields := Object{}
	oneofs := Object{}

	add := func(f ir.BasicField) error {
		field := Object{"id": f.Number}
		if mt, ok := f.Type.(ir.MapType); ok {
			key, err := typeName(mt.KeyType, m.Fullname, m.Package)
			if err != nil {
				return fmt.Errorf("message %s field %s: %w", m.Fullname, f.Name, err)
			}
			value, err := typeName(mt.ValueType, m.Fullname, m.Package)
			if err != nil {
				return fmt.Errorf("message %s field %s: %w", m.Fullname, f.Name, err)
			}
			field["keyType"] = key
			field["type"] = value
		} else {
			name, err := typeName(f.Type, m.Fullname, m.Package)
			if err != nil {
				return fmt.Errorf("message %s field %s: %w", m.Fullname, f.Name, err)
			}
			field["type"] = name
		}
		if f.Repeated {
			field["rule"] = "repeated"
		}
		if f.Required {
			field["rule"] = "required"
		}
		fields[f.Name] = field
		return nil
	}

	for _, f := range m.BasicFields() {
		if err := add(f); err != nil {
			return err
		}
	}
	for _, g := range m.OneOfs() {
		names := make([]string, 0, len(g.OneOf))
		for _, member := range g.OneOf {
			if err := add(member); err != nil {
				return err
			}
			names = append(names, member.Name)
		}
		oneofs[g.Name] = Object{"oneof": names}
	}

	if len(fields) > 0 {
		obj["fields"] = fields
	}
	if len(oneofs) > 0 {
		obj["oneofs"] = oneofs
	}
	return nil
}

// declaration returns the object for fullname, creating it and any
// missing namespace on the way. An existing object is reused so a message
// and the namespace of its nested declarations merge.
func declaration(root Object, fullname string) Object {
	current := root
	for _, seg := range strings.Split(fullname, ".") {
		current = child(nested(current), seg)
	}
	return current
}

func nested(obj Object) Object {
	n, ok := obj["nested"].(Object)
	if !ok {
		n = Object{}
		obj["nested"] = n
	}
	return n
}

func child(obj Object, name string) Object {
	c, ok := obj[name].(Object)
	if !ok {
		c = Object{}
		obj[name] = c
	}
	return c
}

func typeName(t ir.Type, scopes ...string) (string, error) {
	switch t := t.(type) {
	case ir.BasicType:
		return string(t.Basic), nil
	case ir.EnumType:
		return relativeName(t.Enum, scopes...), nil
	case ir.MessageType:
		return relativeName(t.Message, scopes...), nil
	case ir.MapType:
		return "", fmt.Errorf("nested map types are not supported")
	default:
		return "", fmt.Errorf("unknown type %T", t)
	}
}

// relativeName strips the first scope that leaves a single-segment name.
func relativeName(fullname string, scopes ...string) string {
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		if local, ok := strings.CutPrefix(fullname, scope+"."); ok && !strings.Contains(local, ".") {
			return local
		}
	}
	return fullname
}
