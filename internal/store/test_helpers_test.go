package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	tu "github.com/mattinsler/protos/internal/testutil"
)

// createTestStore creates a store in a temp dir with deterministic IDs and
// timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(tu.NewSequentialIDGenerator().Generate),
		WithClock(tu.NewDeterministicClock().Now),
		WithLogger(tu.DiscardLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// catalogSpec builds the shared catalog fixture.
func catalogSpec(t *testing.T) ir.ProtoSpec {
	t.Helper()
	spec, err := compiler.New(compiler.WithLogger(tu.DiscardLogger())).Build(tu.CatalogFiles())
	require.NoError(t, err)
	return *spec
}

// smallSpec is a one-message spec distinct from the catalog.
func smallSpec(name string) ir.ProtoSpec {
	return ir.ProtoSpec{Messages: []ir.MessageSpec{{
		Filename: "small.proto",
		Fullname: "small." + name,
		Name:     name,
		Package:  "small",
		Fields: []ir.Field{
			ir.BasicField{Name: "id", Number: 1, Type: ir.BasicType{Basic: ir.ScalarString}},
		},
	}}}
}
