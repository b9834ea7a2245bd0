package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
	"github.com/mattinsler/protos/internal/render/tsclient"
	"github.com/mattinsler/protos/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output   string // IR JSON path
	Database string // snapshot store path
}

// CompileResult is the JSON payload of a successful compile.
type CompileResult struct {
	SpecHash string          `json:"spec_hash"`
	Stats    CompileStats    `json:"stats"`
	Output   string          `json:"output,omitempty"`
	Snapshot *SnapshotResult `json:"snapshot,omitempty"`
	Backends []BackendResult `json:"backends,omitempty"`
	Spec     *ir.ProtoSpec   `json:"spec,omitempty"`
}

// CompileStats holds summary counts.
type CompileStats struct {
	Files    int `json:"files"`
	Enums    int `json:"enums"`
	Messages int `json:"messages"`
	Services int `json:"services"`
}

// SnapshotResult reports the snapshot recorded for a compile.
type SnapshotResult struct {
	ID       string `json:"id"`
	Inserted bool   `json:"inserted"`
}

// BackendResult reports one configured backend run after compiling.
type BackendResult struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [descriptor-set...]",
		Short: "Compile descriptor sets to IR",
		Long: `Compile protobuf descriptor sets to the protos JSON IR.

Descriptor sets are produced by protoc --descriptor_set_out (binary) or
encoded as protojson when the file ends in .json. Pass --include_source_info
to protoc so comments are kept. Without arguments, the descriptors listed in
protos.yaml are compiled.

When protos.yaml is present its output path and backends are used; --output
overrides the output path. With --db the result is recorded as a snapshot.

Examples:
  protos compile api.pb -o protos.json
  protos compile api.pb --db protos.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "IR output file path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record a snapshot in this SQLite database")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.config()
	logger := opts.logger()

	sources := args
	if len(sources) == 0 {
		sources = cfg.Descriptors
	}
	if len(sources) == 0 {
		return formatter.fail(&compiler.LoadError{Code: compiler.ErrCodeNoFiles, Message: "no descriptor sets given"})
	}

	files, err := compiler.LoadDescriptorSets(sources...)
	if err != nil {
		return formatter.fail(err)
	}
	formatter.VerboseLog("Loaded %d file(s) from %d descriptor set(s)", len(files), len(sources))

	spec, err := compiler.New(compiler.WithLogger(logger)).Build(files)
	if err != nil {
		return formatter.fail(err)
	}
	if err := compiler.CheckSpec(spec); err != nil {
		return formatter.fail(err)
	}

	hash, err := ir.SpecHash(*spec)
	if err != nil {
		return formatter.fail(err)
	}

	result := &CompileResult{
		SpecHash: hash,
		Stats: CompileStats{
			Files:    len(files),
			Enums:    len(spec.Enums),
			Messages: len(spec.Messages),
			Services: len(spec.Services),
		},
		Output: opts.Output,
	}
	if result.Output == "" && opts.ConfigFile != "" {
		result.Output = cfg.Output
	}

	if result.Output != "" {
		data, err := marshalIndent(spec)
		if err != nil {
			return formatter.fail(err)
		}
		if err := writeFile(result.Output, data); err != nil {
			return formatter.fail(&compiler.LoadError{Code: compiler.ErrCodeWriteFailed, Path: result.Output, Message: err.Error()})
		}
		logger.Debug("wrote IR", "path", result.Output, "spec_hash", hash)
	} else {
		result.Spec = spec
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath != "" {
		snap, err := recordSnapshot(ctx, opts.RootOptions, dbPath, spec, sources)
		if err != nil {
			return formatter.fail(err)
		}
		result.Snapshot = snap
	}

	for _, b := range cfg.Backends {
		data, err := renderBackend(b.Name, spec, tsclient.LongString)
		if err != nil {
			return formatter.fail(withCode(ErrCodeRender, fmt.Errorf("backend %s: %w", b.Name, err)))
		}
		if err := writeFile(b.Output, data); err != nil {
			return formatter.fail(&compiler.LoadError{Code: compiler.ErrCodeWriteFailed, Path: b.Output, Message: err.Error()})
		}
		result.Backends = append(result.Backends, BackendResult{Name: b.Name, Output: b.Output})
	}

	return outputCompileSuccess(formatter, result)
}

func recordSnapshot(ctx context.Context, opts *RootOptions, path string, spec *ir.ProtoSpec, sources []string) (*SnapshotResult, error) {
	st, err := store.Open(path, store.WithLogger(opts.logger()))
	if err != nil {
		return nil, withCode(ErrCodeStore, err)
	}
	snap, inserted, err := st.WriteSnapshot(ctx, *spec, sources)
	closeErr := st.Close()
	if err = errors.Join(err, closeErr); err != nil {
		return nil, withCode(ErrCodeStore, err)
	}
	return &SnapshotResult{ID: snap.ID, Inserted: inserted}, nil
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompileResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Spec != nil {
		// No output file: the IR itself is the output, summary goes to
		// the diagnostics stream.
		data, err := marshalIndent(result.Spec)
		if err != nil {
			return err
		}
		_, _ = w.Write(data)
		w = formatter.GetErrWriter()
	}
	fmt.Fprintf(w, "✓ Compiled %d file(s): %d enum(s), %d message(s), %d service(s)\n",
		result.Stats.Files, result.Stats.Enums, result.Stats.Messages, result.Stats.Services)
	fmt.Fprintf(w, "  spec hash: %s\n", result.SpecHash)

	if result.Output != "" {
		fmt.Fprintf(w, "Wrote IR to %s\n", result.Output)
	}
	if result.Snapshot != nil {
		if result.Snapshot.Inserted {
			fmt.Fprintf(w, "Recorded snapshot %s\n", result.Snapshot.ID)
		} else {
			fmt.Fprintf(w, "Snapshot %s already holds this IR\n", result.Snapshot.ID)
		}
	}
	for _, b := range result.Backends {
		fmt.Fprintf(w, "Rendered %s to %s\n", b.Name, b.Output)
	}
	return nil
}
