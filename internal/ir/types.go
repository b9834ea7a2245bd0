package ir

import (
	"slices"
	"strings"
)

// Scalar is the name of a protobuf scalar type.
type Scalar string

// Scalar types recognized in the IR.
const (
	ScalarDouble   Scalar = "double"
	ScalarFloat    Scalar = "float"
	ScalarInt32    Scalar = "int32"
	ScalarInt64    Scalar = "int64"
	ScalarUint32   Scalar = "uint32"
	ScalarUint64   Scalar = "uint64"
	ScalarSint32   Scalar = "sint32"
	ScalarSint64   Scalar = "sint64"
	ScalarFixed32  Scalar = "fixed32"
	ScalarFixed64  Scalar = "fixed64"
	ScalarSfixed32 Scalar = "sfixed32"
	ScalarSfixed64 Scalar = "sfixed64"
	ScalarBool     Scalar = "bool"
	ScalarString   Scalar = "string"
	ScalarBytes    Scalar = "bytes"
)

// ValidScalars defines the allowed scalar names.
var ValidScalars = map[Scalar]bool{
	ScalarDouble:   true,
	ScalarFloat:    true,
	ScalarInt32:    true,
	ScalarInt64:    true,
	ScalarUint32:   true,
	ScalarUint64:   true,
	ScalarSint32:   true,
	ScalarSint64:   true,
	ScalarFixed32:  true,
	ScalarFixed64:  true,
	ScalarSfixed32: true,
	ScalarSfixed64: true,
	ScalarBool:     true,
	ScalarString:   true,
	ScalarBytes:    true,
}

// Type is a sealed interface over the four field type shapes.
// Only BasicType, EnumType, MapType and MessageType implement it.
type Type interface {
	isType() // Sealed
}

// BasicType references a scalar.
type BasicType struct {
	Basic Scalar
}

func (BasicType) isType() {}

// EnumType references an enum by fullname.
type EnumType struct {
	Enum string
}

func (EnumType) isType() {}

// MessageType references a message by fullname.
type MessageType struct {
	Message string
}

func (MessageType) isType() {}

// MapType is a key/value field type. The key is always a scalar.
type MapType struct {
	KeyType   BasicType
	ValueType Type
}

func (MapType) isType() {}

// Comments holds the trimmed comments attached to a declaration, in the
// order leading, detached..., trailing. A nil Comments encodes as [].
type Comments []string

// Field is a sealed interface over message field shapes.
// Only BasicField and OneOfField implement it. Fields are held by value;
// Validate rejects pointers to either variant.
type Field interface {
	isField() // Sealed

	// FieldName returns the declared name of the field or oneof group.
	FieldName() string
}

// BasicField is a plain (non-oneof) message field.
type BasicField struct {
	Name     string   `json:"name"`
	Number   int32    `json:"number"`
	Required bool     `json:"required"`
	Repeated bool     `json:"repeated"`
	Type     Type     `json:"type"`
	Comments Comments `json:"comments"`
}

func (BasicField) isField() {}

// FieldName implements Field.
func (f BasicField) FieldName() string { return f.Name }

// OneOfField is a oneof group. Its members are always basic fields.
type OneOfField struct {
	Name     string       `json:"name"`
	OneOf    []BasicField `json:"oneof"`
	Comments Comments     `json:"comments"`
}

func (OneOfField) isField() {}

// FieldName implements Field.
func (f OneOfField) FieldName() string { return f.Name }

// MessageSpec represents a compiled message declaration.
type MessageSpec struct {
	Filename string   `json:"filename"`
	Fullname string   `json:"fullname"`
	Name     string   `json:"name"`
	Package  string   `json:"package"`
	Fields   []Field  `json:"fields"`
	Comments Comments `json:"comments"`
}

// BasicFields returns the message's non-oneof fields in declaration order.
func (m MessageSpec) BasicFields() []BasicField {
	var out []BasicField
	for _, f := range m.Fields {
		if bf, ok := f.(BasicField); ok {
			out = append(out, bf)
		}
	}
	return out
}

// OneOfs returns the message's oneof groups in declaration order.
func (m MessageSpec) OneOfs() []OneOfField {
	var out []OneOfField
	for _, f := range m.Fields {
		if of, ok := f.(OneOfField); ok {
			out = append(out, of)
		}
	}
	return out
}

// EnumValue is one named value of an enum.
type EnumValue struct {
	Name     string   `json:"name"`
	Value    int32    `json:"value"`
	Comments Comments `json:"comments"`
}

// EnumSpec represents a compiled enum declaration.
type EnumSpec struct {
	Filename string      `json:"filename"`
	Fullname string      `json:"fullname"`
	Name     string      `json:"name"`
	Package  string      `json:"package"`
	Values   []EnumValue `json:"values"`
	Comments Comments    `json:"comments"`
}

// MethodEndpoint is one side (request or response) of an RPC.
type MethodEndpoint struct {
	Message string `json:"message"` // message fullname
	Stream  bool   `json:"stream"`
}

// MethodSpec represents one RPC of a service.
type MethodSpec struct {
	Name     string         `json:"name"`
	Request  MethodEndpoint `json:"request"`
	Response MethodEndpoint `json:"response"`
	Comments Comments       `json:"comments"`
}

// ServiceSpec represents a compiled service declaration.
type ServiceSpec struct {
	Filename string       `json:"filename"`
	Fullname string       `json:"fullname"`
	Name     string       `json:"name"`
	Package  string       `json:"package"`
	Methods  []MethodSpec `json:"methods"`
	Comments Comments     `json:"comments"`
}

// ProtoSpec is the merged IR of one compile pass.
// Each sequence is sorted by fullname.
type ProtoSpec struct {
	Enums    []EnumSpec    `json:"enums"`
	Messages []MessageSpec `json:"messages"`
	Services []ServiceSpec `json:"services"`
}

// Sort orders all sequences by fullname. Sorting an already sorted spec is
// a no-op.
func (s *ProtoSpec) Sort() {
	slices.SortStableFunc(s.Enums, func(a, b EnumSpec) int { return strings.Compare(a.Fullname, b.Fullname) })
	slices.SortStableFunc(s.Messages, func(a, b MessageSpec) int { return strings.Compare(a.Fullname, b.Fullname) })
	slices.SortStableFunc(s.Services, func(a, b ServiceSpec) int { return strings.Compare(a.Fullname, b.Fullname) })
}

// Message looks up a message by fullname. The spec must be sorted.
func (s *ProtoSpec) Message(fullname string) (MessageSpec, bool) {
	i, ok := slices.BinarySearchFunc(s.Messages, fullname, func(m MessageSpec, name string) int {
		return strings.Compare(m.Fullname, name)
	})
	if !ok {
		return MessageSpec{}, false
	}
	return s.Messages[i], true
}

// Enum looks up an enum by fullname. The spec must be sorted.
func (s *ProtoSpec) Enum(fullname string) (EnumSpec, bool) {
	i, ok := slices.BinarySearchFunc(s.Enums, fullname, func(e EnumSpec, name string) int {
		return strings.Compare(e.Fullname, name)
	})
	if !ok {
		return EnumSpec{}, false
	}
	return s.Enums[i], true
}

// Service looks up a service by fullname. The spec must be sorted.
func (s *ProtoSpec) Service(fullname string) (ServiceSpec, bool) {
	i, ok := slices.BinarySearchFunc(s.Services, fullname, func(sv ServiceSpec, name string) int {
		return strings.Compare(sv.Fullname, name)
	})
	if !ok {
		return ServiceSpec{}, false
	}
	return s.Services[i], true
}

// JoinName joins a package (possibly empty) and a name with a dot.
func JoinName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
