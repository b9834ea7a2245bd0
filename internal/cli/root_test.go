package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "protos", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "validate", "render", "tree", "history", "serve", "call"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "protos.yaml", config.DefValue)
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	tests := []struct {
		command, flag, shorthand string
	}{
		{"compile", "output", "o"},
		{"compile", "db", ""},
		{"render", "backend", "b"},
		{"render", "long", ""},
		{"history", "show", ""},
		{"call", "method", "m"},
		{"serve", "addr", ""},
	}
	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, stderr, err := runCLI(t, "tree", "x.json", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "invalid format")
}

func TestExplicitConfigMustExist(t *testing.T) {
	stdout, _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "history")
	require.Error(t, err)
	assert.Contains(t, stdout, "Error [E008]")
}

func TestDefaultConfigIsPickedUp(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("protos.yaml", []byte("database: "+db+"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, Execute([]string{"history"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "No snapshots recorded")
	assert.FileExists(t, db)
}

func TestVerboseLogsToStderr(t *testing.T) {
	set := writeCatalogSet(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "protos.json")

	stdout, stderr, err := runCLI(t, "compile", set, "-o", out, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Loaded 3 file(s) from 1 descriptor set(s)")
	assert.Contains(t, stderr, "level=DEBUG")
	assert.NotContains(t, stdout, "level=DEBUG")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", errors.New("y"))))
}
