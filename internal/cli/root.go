package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/config"
)

// RootOptions holds global flags for all commands, plus the config and
// logger resolved before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is never nil once the root pre-run has executed. ConfigFile
	// is the path it was read from, or empty when defaults are in use.
	Config     *config.Config
	ConfigFile string
	Logger     *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the protos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "protos",
		Short: "protos - protobuf descriptors to a portable IR",
		Long: `Compile protobuf descriptor sets into a JSON intermediate representation
and render it through code generation backends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", ErrCodeUsage, msg)
				return NewExitError(ExitCommandError, msg)
			}
			if err := opts.loadConfig(cmd.Flags().Changed("config")); err != nil {
				f := newFormatter(opts, cmd)
				return f.fail(err)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultFile, "path to config file")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))

	return cmd
}

// loadConfig reads ConfigPath. A missing file is only an error when the
// path was given explicitly.
func (o *RootOptions) loadConfig(explicit bool) error {
	cfg, err := config.Load(o.ConfigPath)
	switch {
	case err == nil:
		o.Config, o.ConfigFile = cfg, o.ConfigPath
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		o.Config, o.ConfigFile = config.Default(), ""
	default:
		return withCode(ErrCodeConfig, err)
	}
	return nil
}

// newLogger writes text logs to w. --verbose forces debug level; otherwise
// the config's log_level applies.
func newLogger(w io.Writer, opts *RootOptions) *slog.Logger {
	level := opts.config().SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Execute runs the root command with args.
func Execute(args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// Main runs the CLI with the process arguments and returns the exit code.
func Main() int {
	err := Execute(os.Args[1:], os.Stdout, os.Stderr)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// Cobra usage errors (unknown flag, wrong arg count) are not
		// reported by the commands themselves.
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCommandError
	}
	return GetExitCode(err)
}
