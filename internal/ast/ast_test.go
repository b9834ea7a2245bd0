package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	tu "github.com/mattinsler/protos/internal/testutil"
)

func catalog(t *testing.T) *Root {
	t.Helper()
	spec, err := compiler.Build(tu.CatalogFiles()...)
	require.NoError(t, err)
	return FromSpec(spec)
}

func names(ns []Node) []string {
	var out []string
	for _, n := range ns {
		switch n := n.(type) {
		case Named:
			out = append(out, n.Kind().String()+":"+n.NodeName())
		default:
			out = append(out, n.Kind().String())
		}
	}
	return out
}

func pkg(t *testing.T, root *Root, path ...string) *Package {
	t.Helper()
	current := root.Packages
	var found *Package
	for _, seg := range path {
		found = nil
		for _, p := range current {
			if p.Name == seg {
				found = p
				break
			}
		}
		require.NotNil(t, found, "package segment %q", seg)
		current = found.Packages
	}
	return found
}

func TestFromSpecRootPackages(t *testing.T) {
	root := catalog(t)

	assert.Equal(t, []string{"Package:", "Package:acme"}, names(root.Children()))
	require.Len(t, root.Packages[0].Messages, 1, "empty package is kept as an unnamed package")
	assert.Equal(t, "Ping", root.Packages[0].Messages[0].Name)

	acme := pkg(t, root, "acme")
	assert.Equal(t, []string{"Package:catalog", "Package:common"}, names(acme.Children()))
}

func TestFromSpecNoRootEntities(t *testing.T) {
	root := FromSpec(&ir.ProtoSpec{Messages: []ir.MessageSpec{{Fullname: "a.M", Name: "M", Package: "a"}}})
	require.Len(t, root.Packages, 1)
	assert.Equal(t, "a", root.Packages[0].Name)
}

func TestPackageChildrenSortedByName(t *testing.T) {
	v1 := pkg(t, catalog(t), "acme", "catalog", "v1")

	assert.Equal(t, "acme.catalog.v1", v1.Fullname)
	assert.Equal(t, []string{
		"Enum:Availability",
		"Service:Catalog",
		"Message:GetProductRequest",
		"Message:ListProductsRequest",
		"Message:Product",
		"Package:Product",
	}, names(v1.Children()), "ties keep enums, messages, packages, services order")
}

func TestChildrenAreComputedOnDemand(t *testing.T) {
	v1 := pkg(t, catalog(t), "acme", "catalog", "v1")
	first := v1.Children()
	v1.Enums = append(v1.Enums, &Enum{Name: "Zeta"})
	second := v1.Children()
	assert.Len(t, second, len(first)+1)
	assert.Equal(t, "Enum:Zeta", names(second)[len(second)-1])
}

func TestMessageViews(t *testing.T) {
	v1 := pkg(t, catalog(t), "acme", "catalog", "v1")
	var product *Message
	for _, m := range v1.Messages {
		if m.Name == "Product" {
			product = m
		}
	}
	require.NotNil(t, product)

	assert.Equal(t, []string{
		"BasicField:attributes",
		"BasicField:availability",
		"BasicField:dimensions",
		"OneOfField:discount",
		"BasicField:id",
		"BasicField:name",
		"BasicField:price",
		"BasicField:tags",
	}, names(product.Children()))

	assert.Len(t, product.BasicFields(), 7)
	group := product.OneOf()
	require.NotNil(t, group)
	assert.Equal(t, "discount", group.Name)
	assert.Equal(t, []string{"BasicField:percent_off", "BasicField:amount_off"}, names(group.Children()),
		"oneof members keep declaration order")

	assert.Nil(t, NewMessage(ir.MessageSpec{Name: "Empty"}).OneOf())
}

func TestTypeChildren(t *testing.T) {
	ty := NewType(ir.MapType{KeyType: ir.BasicType{Basic: ir.ScalarString}, ValueType: ir.MessageType{Message: "a.V"}})
	m, ok := ty.(*MapType)
	require.True(t, ok)
	assert.Equal(t, []string{"BasicType", "MessageType"}, names(m.Children()))
	assert.Equal(t, ir.ScalarString, m.Key.Name)
	assert.Equal(t, "a.V", m.Value.(*MessageType).Name)

	assert.Empty(t, (&BasicType{Name: ir.ScalarInt32}).Children())
	assert.Empty(t, (&EnumType{Name: "a.E"}).Children())
	assert.Empty(t, (&EnumValue{Name: "X"}).Children())
}

func TestServiceAndMethodChildren(t *testing.T) {
	svc := NewService(ir.ServiceSpec{
		Name: "S",
		Methods: []ir.MethodSpec{
			{Name: "Watch", Request: ir.MethodEndpoint{Message: "a.In"}, Response: ir.MethodEndpoint{Message: "a.Out", Stream: true}},
			{Name: "Get", Request: ir.MethodEndpoint{Message: "a.In"}, Response: ir.MethodEndpoint{Message: "a.Out"}},
		},
	})
	assert.Equal(t, []string{"Method:Get", "Method:Watch"}, names(svc.Children()))

	watch := svc.Methods[1]
	assert.Equal(t, []string{"MethodRequest", "MethodResponse"}, names(watch.Children()))
	assert.False(t, watch.Request.Stream)
	assert.True(t, watch.Response.Stream)
	assert.Equal(t, "a.Out", watch.Response.Children()[0].(*MessageType).Name)
}

func TestNamedFieldAccessors(t *testing.T) {
	method := NewMethod(ir.MethodSpec{Name: "Get", Request: ir.MethodEndpoint{Message: "a.In"}, Response: ir.MethodEndpoint{Message: "a.Out"}})

	req, ok := Child(method, "request")
	require.True(t, ok)
	assert.Same(t, method.Request, req)

	_, ok = Child(method, "missing")
	assert.False(t, ok)
	_, ok = ChildList(method, "request")
	assert.False(t, ok, "single field is not a list")

	msg := NewMessage(ir.MessageSpec{Name: "M", Fields: []ir.Field{
		ir.BasicField{Name: "b", Number: 2, Type: ir.BasicType{Basic: ir.ScalarBool}},
		ir.BasicField{Name: "a", Number: 1, Type: ir.BasicType{Basic: ir.ScalarBool}},
	}})
	fields, ok := ChildList(msg, "basicFields")
	require.True(t, ok)
	assert.Equal(t, []string{"BasicField:a", "BasicField:b"}, names(fields))

	_, ok = Child(msg, "oneof")
	assert.False(t, ok, "unset oneof view is absent")
}

func TestEveryKindHasAccessorTable(t *testing.T) {
	for _, k := range Kinds() {
		assert.NotNil(t, accessors[k], k.String())
	}
	assert.Equal(t, []string{"request", "response"}, FieldNames(KindMethod))
	assert.Empty(t, FieldNames(KindEnumValue))
	assert.Equal(t, "Kind(?)", Kind(99).String())
}

func TestNewFieldRejectsPointerVariants(t *testing.T) {
	assert.PanicsWithValue(t, "ast: unsupported field variant *ir.BasicField", func() {
		NewField(&ir.BasicField{Name: "a", Number: 1, Type: ir.BasicType{Basic: ir.ScalarBool}})
	})
	assert.PanicsWithValue(t, "ast: unsupported type variant *ir.EnumType", func() {
		NewType(&ir.EnumType{Enum: "a.E"})
	})
}
