package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/mattinsler/protos/internal/compiler"
	tu "github.com/mattinsler/protos/internal/testutil"
)

func request(param string) *pluginpb.CodeGeneratorRequest {
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"acme/catalog/v1/catalog.proto"},
		ProtoFile:      tu.CatalogFiles(),
	}
	if param != "" {
		req.Parameter = proto.String(param)
	}
	return req
}

func TestGenerate_Default(t *testing.T) {
	resp := generate(request(""), tu.DiscardLogger())
	require.Empty(t, resp.GetError())
	assert.Equal(t, uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL), resp.GetSupportedFeatures())
	require.Len(t, resp.GetFile(), 1)

	f := resp.GetFile()[0]
	assert.Equal(t, "protos.json", f.GetName())

	spec, err := compiler.DecodeSpec([]byte(f.GetContent()))
	require.NoError(t, err)
	assert.Len(t, spec.Messages, 6)
	assert.NoError(t, compiler.CheckSpec(spec))
}

func TestGenerate_AllOutputs(t *testing.T) {
	resp := generate(request("out=ir/api.json,ts=ts/api.ts,pkgdef=api.pkgdef.json"), tu.DiscardLogger())
	require.Empty(t, resp.GetError())

	names := map[string]string{}
	for _, f := range resp.GetFile() {
		names[f.GetName()] = f.GetContent()
	}
	require.Len(t, names, 3)
	assert.Contains(t, names["ts/api.ts"], "export interface Catalog {")
	assert.Contains(t, names["api.pkgdef.json"], `"requestType": "GetProductRequest"`)
	assert.True(t, strings.HasPrefix(names["ir/api.json"], "{"))
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("bad option", func(t *testing.T) {
		resp := generate(request("lang=go"), tu.DiscardLogger())
		assert.Contains(t, resp.GetError(), `unknown option "lang"`)
		assert.Empty(t, resp.GetFile())
	})

	t.Run("option without value", func(t *testing.T) {
		resp := generate(request("ts"), tu.DiscardLogger())
		assert.Contains(t, resp.GetError(), "want key=value")
	})

	t.Run("structural violation", func(t *testing.T) {
		bad := tu.File("bad.proto", "bad",
			tu.Message("M", tu.InOneof(tu.Field("x", 1, tu.TypeInt32), 3)),
		)
		req := &pluginpb.CodeGeneratorRequest{ProtoFile: []*descriptorpb.FileDescriptorProto{bad}}

		resp := generate(req, tu.DiscardLogger())
		assert.Contains(t, resp.GetError(), "[E101]")
		assert.Empty(t, resp.GetFile())
	})
}
