package pkgdef

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	tu "github.com/mattinsler/protos/internal/testutil"
)

const catalogService = "acme.catalog.v1.Catalog"

func resolvedCatalog(t *testing.T) *ServiceDefinition {
	t.Helper()
	defs, err := Definitions(catalog(t))
	require.NoError(t, err)
	svc := defs[catalogService]
	require.NotNil(t, svc)

	files, err := compiler.Registry(tu.CatalogFiles())
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(files))
	return svc
}

func TestDefinitions_Catalog(t *testing.T) {
	defs, err := Definitions(catalog(t))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	svc := defs[catalogService]
	require.NotNil(t, svc)
	assert.Equal(t, "Catalog", svc.Name)
	assert.Equal(t, "acme/catalog/v1/catalog.proto", svc.Filename)
	require.Len(t, svc.Methods, 2)

	get := svc.Method("GetProduct")
	require.NotNil(t, get)
	assert.Equal(t, "/acme.catalog.v1.Catalog/GetProduct", get.Path)
	assert.Equal(t, "acme.catalog.v1.GetProductRequest", get.RequestType)
	assert.Equal(t, "acme.catalog.v1.Product", get.ResponseType)
	assert.False(t, get.RequestStream)
	assert.False(t, get.ResponseStream)

	watch := svc.Method("WatchProducts")
	require.NotNil(t, watch)
	assert.True(t, watch.ResponseStream)
	assert.Nil(t, svc.Method("Missing"))
}

func TestDefinitions_Empty(t *testing.T) {
	defs, err := Definitions(&ir.ProtoSpec{})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestResolve(t *testing.T) {
	svc := resolvedCatalog(t)

	req, err := svc.Method("GetProduct").NewRequest()
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("acme.catalog.v1.GetProductRequest"), req.Descriptor().FullName())

	resp, err := svc.Method("WatchProducts").NewResponse()
	require.NoError(t, err)
	assert.NotNil(t, resp.Descriptor().Fields().ByName("dimensions"))
}

func TestResolve_UnknownMessage(t *testing.T) {
	svc := &ServiceDefinition{
		Fullname: "x.S",
		Methods:  []*MethodDefinition{{Name: "M", Path: "/x.S/M", RequestType: "x.Missing", ResponseType: "x.Missing"}},
	}
	files, err := compiler.Registry(tu.CatalogFiles())
	require.NoError(t, err)

	err = svc.Resolve(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/x.S/M request")
}

func TestNewRequest_Unresolved(t *testing.T) {
	m := &MethodDefinition{Name: "M", Path: "/x.S/M"}
	_, err := m.NewRequest()
	assert.ErrorIs(t, err, ErrUnresolved)
	_, err = m.NewResponse()
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestGRPCServiceDesc_Register(t *testing.T) {
	svc := resolvedCatalog(t)
	desc := svc.GRPCServiceDesc(func(*MethodDefinition) grpc.StreamHandler {
		return func(any, grpc.ServerStream) error { return nil }
	})

	srv := grpc.NewServer()
	srv.RegisterService(&desc, nil)

	info, ok := srv.GetServiceInfo()[catalogService]
	require.True(t, ok)
	assert.Equal(t, "acme/catalog/v1/catalog.proto", info.Metadata)
	require.Len(t, info.Methods, 2)
	for _, m := range info.Methods {
		switch m.Name {
		case "GetProduct":
			assert.False(t, m.IsServerStream)
		case "WatchProducts":
			assert.True(t, m.IsServerStream)
		default:
			t.Errorf("unexpected method %s", m.Name)
		}
		assert.False(t, m.IsClientStream)
	}
}

func TestGRPCServiceDesc_Roundtrip(t *testing.T) {
	svc := resolvedCatalog(t)
	desc := svc.GRPCServiceDesc(func(m *MethodDefinition) grpc.StreamHandler {
		return func(_ any, stream grpc.ServerStream) error {
			req, err := m.NewRequest()
			if err != nil {
				return err
			}
			if err := stream.RecvMsg(req); err != nil {
				return err
			}
			resp, err := m.NewResponse()
			if err != nil {
				return err
			}
			id := req.Get(req.Descriptor().Fields().ByName("id"))
			resp.Set(resp.Descriptor().Fields().ByName("id"), id)
			return stream.SendMsg(resp)
		}
	})

	srv := grpc.NewServer()
	srv.RegisterService(&desc, nil)
	conn := dial(t, srv)

	get := svc.Method("GetProduct")
	req, err := get.NewRequest()
	require.NoError(t, err)
	req.Set(req.Descriptor().Fields().ByName("id"), protoreflect.ValueOfString("p-1"))
	resp, err := get.NewResponse()
	require.NoError(t, err)

	require.NoError(t, conn.Invoke(context.Background(), get.Path, req, resp))
	assert.Equal(t, "p-1", resp.Get(resp.Descriptor().Fields().ByName("id")).String())
}
