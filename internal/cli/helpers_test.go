package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	tu "github.com/mattinsler/protos/internal/testutil"
)

// writeCatalogSet writes the shared catalog fixture as a binary descriptor
// set and returns its path.
func writeCatalogSet(t *testing.T, dir string) string {
	t.Helper()
	data, err := proto.Marshal(&descriptorpb.FileDescriptorSet{File: tu.CatalogFiles()})
	require.NoError(t, err)
	path := filepath.Join(dir, "catalog.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// compileCatalog compiles the catalog fixture to an IR file and returns its
// path.
func compileCatalog(t *testing.T, dir string) string {
	t.Helper()
	out := filepath.Join(dir, "protos.json")
	_, _, err := runCLI(t, "compile", writeCatalogSet(t, dir), "-o", out)
	require.NoError(t, err)
	return out
}

// runCLI executes the root command. Without --config it runs in an empty
// working directory so no protos.yaml is picked up.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if !hasFlag(args, "--config") {
		t.Chdir(t.TempDir())
	}
	err := Execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
