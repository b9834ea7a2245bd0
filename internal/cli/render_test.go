package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Backends(t *testing.T) {
	path := compileCatalog(t, t.TempDir())

	tests := []struct {
		backend string
		args    []string
		want    []string
	}{
		{"ts", nil, []string{"export namespace acme {", "GetProduct(req: acme.catalog.v1.GetProductRequest): Promise<acme.catalog.v1.Product>;", "units?: string;"}},
		{"ts", []string{"--long", "bigint"}, []string{"units?: bigint;"}},
		{"pkgdef", nil, []string{`"requestType": "GetProductRequest"`, `"keyType": "string"`}},
		{"services", nil, []string{`"path": "/acme.catalog.v1.Catalog/GetProduct"`, `"responseStream": true`}},
		{"json", nil, []string{`"fullname": "acme.catalog.v1.Product.Dimensions"`}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			args := append([]string{"render", path, "--backend", tt.backend}, tt.args...)
			stdout, _, err := runCLI(t, args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, stdout, w)
			}
		})
	}
}

func TestRender_ToFile(t *testing.T) {
	dir := t.TempDir()
	path := compileCatalog(t, dir)
	out := filepath.Join(dir, "out", "pkgdef.json")

	stdout, _, err := runCLI(t, "render", path, "-b", "pkgdef", "-o", out, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, out, resp.Data.Output)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, resp.Data.Bytes)
	assert.True(t, json.Valid(data))
}

func TestRender_Errors(t *testing.T) {
	path := compileCatalog(t, t.TempDir())

	t.Run("unknown backend", func(t *testing.T) {
		stdout, _, err := runCLI(t, "render", path, "--backend", "xml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, stdout, "Error [E010]")
	})

	t.Run("invalid long type", func(t *testing.T) {
		stdout, _, err := runCLI(t, "render", path, "--long", "float")
		require.Error(t, err)
		assert.Contains(t, stdout, "Error [E010]")
	})

	t.Run("invalid IR", func(t *testing.T) {
		ir := writeIR(t, `{"enums":[],"services":[],"messages":[{"filename":"f","fullname":"p.M","name":"M","package":"p","comments":[],
			"fields":[{"name":"grid","number":1,"oneof":false,"repeated":false,"required":false,"comments":[],
				"type":{"map":{"keyType":{"basic":"string"},"valueType":{"map":{"keyType":{"basic":"string"},"valueType":{"basic":"int32"}}}}}}]}]}`)

		stdout, _, err := runCLI(t, "render", ir, "--backend", "pkgdef")
		require.Error(t, err)
		assert.Contains(t, stdout, "Error [E103]")
	})
}
