package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one ir.ValidationError in JSON form.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <ir.json>",
		Short: "Validate an IR file",
		Long: `Validate an IR JSON file against the data model invariants: names and
fullnames agree, every sequence is sorted and free of duplicates, field
numbers and names are unique, map keys are scalar and methods name their
messages.

Exits 1 when the IR is invalid and 2 when it cannot be read.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := compiler.LoadSpec(path)
	if err != nil {
		return formatter.fail(err)
	}
	formatter.VerboseLog("Loaded %d enum(s), %d message(s), %d service(s) from %s",
		len(spec.Enums), len(spec.Messages), len(spec.Services), path)

	if errs := spec.Validate(); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter)
}

func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintln(formatter.Writer, "✓ IR valid")
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, errs []ir.ValidationError) error {
	issues := make([]ValidationIssue, len(errs))
	for i, e := range errs {
		issues[i] = ValidationIssue{Field: e.Field, Message: e.Message}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    compiler.CodeInvalidSpec,
				Message: errs[0].Error(),
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range issues {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", e.Field, compiler.CodeInvalidSpec, e.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
