package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/compiler"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Gates  []string                   `json:"gates,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <gates-dir>",
		Short: "Validate composite gate libraries",
		Long: `Validate CUE composite gate libraries against the standard catalog.

Compiles every .cue file, then checks body ops, qubit indices, parameter
references and counts, name collisions and recursive definitions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, gatesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadGates(gatesDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, gatesDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	validationErrors = append(validationErrors, validateComposites(loadResult.Composites, gate.Standard(), formatter)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, loadResult.Composites)
}

// validateComposites runs library validation against base.
func validateComposites(specs []ir.CompositeSpec, base compiler.KindLookup, formatter *OutputFormatter) []compiler.ValidationError {
	for _, spec := range specs {
		formatter.VerboseLog("Validating gate: %s", spec.Name)
	}
	return compiler.Validate(specs, base)
}

// loadErrorToValidation turns a load failure into a validation entry.
func loadErrorToValidation(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		field := "load"
		if loadErr.File != "" {
			field = loadErr.File
		}
		return compiler.ValidationError{
			Field:   field,
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    getLineFromCuePos(loadErr.Pos),
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// RenderText prints the gate count, or every validation error.
func (r ValidationResult) RenderText(w io.Writer) error {
	if r.Valid {
		fmt.Fprintf(w, "✓ All gates valid (%d)\n", len(r.Gates))
		return nil
	}
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Fprintf(w, "line %d\n", err.Line)
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return nil
}

func outputValidateSuccess(formatter *OutputFormatter, specs []ir.CompositeSpec) error {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return formatter.Success(ValidationResult{Valid: true, Gates: names})
}

// outputValidateError reports a library that could not be scanned at all.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	result := ValidationResult{Valid: false, Errors: errs}
	failure := &CLIError{Code: errs[0].Code, Message: errs[0].Message}
	if err := formatter.Emit(result, "", failure); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateGatesDir validates all gate libraries in a directory.
// This is a helper function for external callers.
func ValidateGatesDir(gatesDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadGates(gatesDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		errs = append(errs, loadErrorToValidation(err))
	}
	return append(errs, compiler.Validate(loadResult.Composites, gate.Standard())...), nil
}
