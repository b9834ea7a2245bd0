package testutil

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Shorthands for descriptor field types.
const (
	TypeInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	TypeInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	TypeUint64  = descriptorpb.FieldDescriptorProto_TYPE_UINT64
	TypeFixed32 = descriptorpb.FieldDescriptorProto_TYPE_FIXED32
	TypeBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	TypeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	TypeBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	TypeDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	TypeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	TypeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	TypeGroup   = descriptorpb.FieldDescriptorProto_TYPE_GROUP
)

// File builds a proto3 file descriptor. Declarations are appended by type:
// *descriptorpb.DescriptorProto, *descriptorpb.EnumDescriptorProto,
// *descriptorpb.ServiceDescriptorProto and *descriptorpb.SourceCodeInfo_Location.
func File(name, pkg string, decls ...any) *descriptorpb.FileDescriptorProto {
	f := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(name),
		Syntax: proto.String("proto3"),
	}
	if pkg != "" {
		f.Package = proto.String(pkg)
	}
	for _, d := range decls {
		switch d := d.(type) {
		case *descriptorpb.DescriptorProto:
			f.MessageType = append(f.MessageType, d)
		case *descriptorpb.EnumDescriptorProto:
			f.EnumType = append(f.EnumType, d)
		case *descriptorpb.ServiceDescriptorProto:
			f.Service = append(f.Service, d)
		case *descriptorpb.SourceCodeInfo_Location:
			if f.SourceCodeInfo == nil {
				f.SourceCodeInfo = &descriptorpb.SourceCodeInfo{}
			}
			f.SourceCodeInfo.Location = append(f.SourceCodeInfo.Location, d)
		default:
			panic("testutil.File: unsupported declaration")
		}
	}
	return f
}

// Message builds a message descriptor. Parts are fields, nested messages,
// nested enums and oneof declarations.
func Message(name string, parts ...any) *descriptorpb.DescriptorProto {
	m := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for _, p := range parts {
		switch p := p.(type) {
		case *descriptorpb.FieldDescriptorProto:
			m.Field = append(m.Field, p)
		case *descriptorpb.DescriptorProto:
			m.NestedType = append(m.NestedType, p)
		case *descriptorpb.EnumDescriptorProto:
			m.EnumType = append(m.EnumType, p)
		case *descriptorpb.OneofDescriptorProto:
			m.OneofDecl = append(m.OneofDecl, p)
		default:
			panic("testutil.Message: unsupported part")
		}
	}
	return m
}

// Field builds an optional scalar field.
func Field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// RefField builds a message or enum field referencing typeName
// (e.g. ".a.b.M").
func RefField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Field(name, number, typ)
	f.TypeName = proto.String(typeName)
	return f
}

// Repeated marks f as repeated and returns it.
func Repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

// Required marks f as proto2 required and returns it.
func Required(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	return f
}

// InOneof assigns f to the oneof declared at index and returns it.
func InOneof(f *descriptorpb.FieldDescriptorProto, index int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(index)
	return f
}

// WithJSONName sets the field's JSON name and returns it.
func WithJSONName(f *descriptorpb.FieldDescriptorProto, name string) *descriptorpb.FieldDescriptorProto {
	f.JsonName = proto.String(name)
	return f
}

// Oneof builds a oneof declaration.
func Oneof(name string) *descriptorpb.OneofDescriptorProto {
	return &descriptorpb.OneofDescriptorProto{Name: proto.String(name)}
}

// MapEntry builds the synthetic entry message protoc generates for a map
// field.
func MapEntry(name string, key, value *descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	key.Name, key.Number = proto.String("key"), proto.Int32(1)
	value.Name, value.Number = proto.String("value"), proto.Int32(2)
	m := Message(name, key, value)
	m.Options = &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)}
	return m
}

// Enum builds an enum whose values are numbered from zero in order.
func Enum(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v),
			Number: proto.Int32(int32(i)),
		})
	}
	return e
}

// Service builds a service descriptor.
func Service(name string, methods ...*descriptorpb.MethodDescriptorProto) *descriptorpb.ServiceDescriptorProto {
	return &descriptorpb.ServiceDescriptorProto{Name: proto.String(name), Method: methods}
}

// Method builds a method descriptor. in and out are resolved type names
// (".a.b.Req").
func Method(name, in, out string, clientStream, serverStream bool) *descriptorpb.MethodDescriptorProto {
	m := &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(in),
		OutputType: proto.String(out),
	}
	if clientStream {
		m.ClientStreaming = proto.Bool(true)
	}
	if serverStream {
		m.ServerStreaming = proto.Bool(true)
	}
	return m
}

// Location builds a source location record. Empty leading or trailing
// comments are left unset.
func Location(path []int32, leading string, detached []string, trailing string) *descriptorpb.SourceCodeInfo_Location {
	loc := &descriptorpb.SourceCodeInfo_Location{
		Path:                    path,
		Span:                    []int32{0, 0, 0},
		LeadingDetachedComments: detached,
	}
	if leading != "" {
		loc.LeadingComments = proto.String(leading)
	}
	if trailing != "" {
		loc.TrailingComments = proto.String(trailing)
	}
	return loc
}
