package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/config"
	"github.com/mattinsler/protos/internal/render/tsclient"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Backend  string
	Output   string
	LongType string
}

// RenderResult is the JSON payload of render when writing to a file.
type RenderResult struct {
	Backend string `json:"backend"`
	Output  string `json:"output"`
	Bytes   int    `json:"bytes"`
}

var longTypes = []string{string(tsclient.LongString), string(tsclient.LongNumber), string(tsclient.LongBigInt)}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <ir.json>",
		Short: "Render an IR file with a backend",
		Long: `Render an IR JSON file with one of the backends:

  ts        TypeScript namespaces, enums, interfaces and service clients
  pkgdef    protobufjs-style nested namespace JSON
  services  gRPC service definitions with method paths
  json      the IR itself, re-encoded

Without --output the result is written to stdout.

Examples:
  protos render protos.json --backend ts -o client.ts
  protos render protos.json --backend ts --long bigint`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", config.BackendTS, fmt.Sprintf("backend (%v)", Backends))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.LongType, "long", string(tsclient.LongString), fmt.Sprintf("TypeScript type for 64-bit integers (%v)", longTypes))

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if !slices.Contains(Backends, opts.Backend) {
		return formatter.fail(withCode(ErrCodeUsage, fmt.Errorf("unknown backend %q: must be one of %v", opts.Backend, Backends)))
	}
	if !slices.Contains(longTypes, opts.LongType) {
		return formatter.fail(withCode(ErrCodeUsage, fmt.Errorf("invalid --long %q: must be one of %v", opts.LongType, longTypes)))
	}

	spec, err := compiler.LoadSpec(path)
	if err != nil {
		return formatter.fail(err)
	}
	spec.Sort()
	if err := compiler.CheckSpec(spec); err != nil {
		return formatter.fail(err)
	}

	data, err := renderBackend(opts.Backend, spec, tsclient.LongType(opts.LongType))
	if err != nil {
		return formatter.fail(withCode(ErrCodeRender, err))
	}
	opts.logger().Debug("rendered", "backend", opts.Backend, "bytes", len(data))

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFile(opts.Output, data); err != nil {
		return formatter.fail(&compiler.LoadError{Code: compiler.ErrCodeWriteFailed, Path: opts.Output, Message: err.Error()})
	}

	result := RenderResult{Backend: opts.Backend, Output: opts.Output, Bytes: len(data)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Rendered %s to %s\n", result.Backend, result.Output)
	return nil
}
