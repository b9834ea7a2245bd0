package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/mattinsler/protos/internal/testutil"
)

// The golden test runs in the package directory, where no protos.yaml
// exists, so it calls Execute directly instead of runCLI.
func TestTree_Text(t *testing.T) {
	dir := t.TempDir()
	set := writeCatalogSet(t, dir)
	path := filepath.Join(dir, "protos.json")

	var stdout, stderr bytes.Buffer
	require.NoError(t, Execute([]string{"compile", set, "-o", path}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, Execute([]string{"tree", path}, &stdout, &stderr))
	tu.AssertGolden(t, "tree_catalog", stdout.Bytes())
}

func TestTree_JSON(t *testing.T) {
	path := compileCatalog(t, t.TempDir())

	stdout, _, err := runCLI(t, "tree", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TreeNode `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	root := resp.Data
	assert.Equal(t, []string{"Ping"}, root.Messages)
	require.Len(t, root.Children, 1)

	acme := root.Children[0]
	assert.Equal(t, "acme", acme.Name)
	require.Len(t, acme.Children, 2)
	assert.Equal(t, "acme.catalog", acme.Children[0].Fullname)
	assert.Equal(t, []string{"Money"}, acme.Children[1].Messages)

	v1 := acme.Children[0].Children[0]
	assert.Equal(t, []string{"Availability"}, v1.Enums)
	assert.Equal(t, []string{"Catalog"}, v1.Services)
	require.Len(t, v1.Children, 1)
	assert.Equal(t, []string{"Dimensions"}, v1.Children[0].Messages)
}
