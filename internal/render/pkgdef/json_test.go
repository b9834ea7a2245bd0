package pkgdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	tu "github.com/mattinsler/protos/internal/testutil"
)

func catalog(t *testing.T) *ir.ProtoSpec {
	t.Helper()
	spec, err := compiler.New(compiler.WithLogger(tu.DiscardLogger())).Build(tu.CatalogFiles())
	require.NoError(t, err)
	return spec
}

// at follows the nested chain for each segment.
func at(t *testing.T, obj Object, segments ...string) Object {
	t.Helper()
	for _, seg := range segments {
		nested, ok := obj["nested"].(Object)
		require.True(t, ok, "no nested namespace above %q", seg)
		obj, ok = nested[seg].(Object)
		require.True(t, ok, "missing %q", seg)
	}
	return obj
}

func TestJSON_Catalog(t *testing.T) {
	out, err := JSON(catalog(t))
	require.NoError(t, err)

	t.Run("root package at top level", func(t *testing.T) {
		assert.Equal(t, Object{}, at(t, out, "Ping"))
	})

	t.Run("enum values", func(t *testing.T) {
		enum := at(t, out, "acme", "catalog", "v1", "Availability")
		assert.Equal(t, Object{"AVAILABILITY_UNKNOWN": int32(0), "IN_STOCK": int32(1), "BACKORDER": int32(2)}, enum["values"])
	})

	product := at(t, out, "acme", "catalog", "v1", "Product")
	fields := product["fields"].(Object)

	t.Run("relative type names", func(t *testing.T) {
		assert.Equal(t, Object{"id": int32(5), "type": "Availability"}, fields["availability"])
		assert.Equal(t, Object{"id": int32(9), "type": "Dimensions"}, fields["dimensions"])
		assert.Equal(t, Object{"id": int32(3), "type": "acme.common.Money"}, fields["price"])
	})

	t.Run("repeated and map fields", func(t *testing.T) {
		assert.Equal(t, Object{"id": int32(4), "type": "string", "rule": "repeated"}, fields["tags"])
		assert.Equal(t, Object{"id": int32(6), "type": "string", "keyType": "string"}, fields["attributes"])
	})

	t.Run("oneof members are fields", func(t *testing.T) {
		assert.Equal(t, Object{"id": int32(7), "type": "int32"}, fields["percent_off"])
		assert.Equal(t, Object{"discount": Object{"oneof": []string{"percent_off", "amount_off"}}}, product["oneofs"])
	})

	t.Run("nested message merges with its parent", func(t *testing.T) {
		dims := at(t, product, "Dimensions")
		assert.Contains(t, dims["fields"], "width")
		assert.Contains(t, product, "fields")
	})

	t.Run("service methods", func(t *testing.T) {
		svc := at(t, out, "acme", "catalog", "v1", "Catalog")
		methods := svc["methods"].(Object)
		assert.Equal(t, Object{"requestType": "GetProductRequest", "responseType": "Product"}, methods["GetProduct"])
		assert.Equal(t, Object{"requestType": "ListProductsRequest", "responseType": "Product", "responseStream": true}, methods["WatchProducts"])
	})
}

func TestJSON_Empty(t *testing.T) {
	out, err := JSON(&ir.ProtoSpec{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSON_NestedMapIsError(t *testing.T) {
	spec := &ir.ProtoSpec{Messages: []ir.MessageSpec{{
		Fullname: "p.M", Name: "M", Package: "p",
		Fields: []ir.Field{ir.BasicField{
			Name: "grid", Number: 1,
			Type: ir.MapType{
				KeyType:   ir.BasicType{Basic: ir.ScalarString},
				ValueType: ir.MapType{KeyType: ir.BasicType{Basic: ir.ScalarString}, ValueType: ir.BasicType{Basic: ir.ScalarInt32}},
			},
		}},
	}}}

	_, err := JSON(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p.M field grid")
	assert.Contains(t, err.Error(), "nested map")
}

func TestRelativeName(t *testing.T) {
	tests := []struct {
		name     string
		fullname string
		scopes   []string
		want     string
	}{
		{"package sibling", "a.b.C", []string{"a.b.M", "a.b"}, "C"},
		{"message child", "a.b.M.N", []string{"a.b.M", "a.b"}, "N"},
		{"deeper stays qualified", "a.b.M.N.O", []string{"a.b.M", "a.b"}, "a.b.M.N.O"},
		{"other package", "x.Y", []string{"a.b"}, "x.Y"},
		{"empty scope skipped", "Ping", []string{""}, "Ping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeName(tt.fullname, tt.scopes...))
		})
	}
}

func TestJSON_Golden(t *testing.T) {
	spec := &ir.ProtoSpec{
		Enums: []ir.EnumSpec{{
			Fullname: "a.E", Name: "E", Package: "a",
			Values: []ir.EnumValue{{Name: "X", Value: 0}},
		}},
		Messages: []ir.MessageSpec{{
			Fullname: "a.M", Name: "M", Package: "a",
			Fields: []ir.Field{
				ir.BasicField{Name: "id", Number: 1, Type: ir.BasicType{Basic: ir.ScalarInt32}},
				ir.BasicField{Name: "tags", Number: 2, Repeated: true, Type: ir.BasicType{Basic: ir.ScalarString}},
			},
		}},
		Services: []ir.ServiceSpec{{
			Fullname: "a.S", Name: "S", Package: "a",
			Methods: []ir.MethodSpec{{
				Name:     "Get",
				Request:  ir.MethodEndpoint{Message: "a.M"},
				Response: ir.MethodEndpoint{Message: "a.M"},
			}},
		}},
	}

	out, err := JSON(spec)
	require.NoError(t, err)
	tu.AssertGoldenJSON(t, "small_pkgdef", out)
}
