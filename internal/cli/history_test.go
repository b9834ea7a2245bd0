package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/store"
)

func compileToDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "protos.db")
	_, _, err := runCLI(t, "compile", writeCatalogSet(t, dir), "-o", filepath.Join(dir, "protos.json"), "--db", db)
	require.NoError(t, err)
	return db
}

func TestHistory_List(t *testing.T) {
	db := compileToDB(t)

	stdout, _, err := runCLI(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 enum(s), 6 message(s), 1 service(s)")

	stdout, _, err = runCLI(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []store.SnapshotSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	stdout, _, err := runCLI(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No snapshots recorded")
}

func TestHistory_ShowLatest(t *testing.T) {
	db := compileToDB(t)

	stdout, _, err := runCLI(t, "history", "--db", db, "--show", "latest")
	require.NoError(t, err)

	spec, err := compiler.DecodeSpec([]byte(stdout))
	require.NoError(t, err)
	assert.Len(t, spec.Messages, 6)
}

func TestHistory_ShowByID(t *testing.T) {
	db := compileToDB(t)

	stdout, _, err := runCLI(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)
	var list struct {
		Data []store.SnapshotSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &list))
	require.Len(t, list.Data, 1)

	stdout, _, err = runCLI(t, "history", "--db", db, "--show", list.Data[0].ID, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data store.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, list.Data[0].SpecHash, resp.Data.SpecHash)
	assert.Len(t, resp.Data.Sources, 1)
}

func TestHistory_Errors(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		stdout, _, err := runCLI(t, "history")
		require.Error(t, err)
		assert.Contains(t, stdout, "Error [E010]")
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		db := compileToDB(t)
		stdout, _, err := runCLI(t, "history", "--db", db, "--show", "nope")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, stdout, `Error [E009]: snapshot "nope" not found`)
	})
}
