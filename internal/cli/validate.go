package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios int               `json:"scenarios"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes one scenario file that failed to load.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>...",
		Short: "Validate scenarios without running them",
		Long: `Parse and validate scenario files without starting a processor.

Checks YAML strictly (unknown fields are rejected), compiles CUE files,
and verifies every step. Faster than run for development feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runValidate(opts *RootOptions, paths []string, filter string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	files, err := FindScenarioFiles(paths, filter)
	if err != nil {
		code := ErrCodeGeneric
		var le *LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNoFiles, "no scenario files found", paths)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	loaded, loadErrs := LoadScenarioFiles(files)
	for _, ls := range loaded {
		formatter.VerboseLog("  ok %s (%s, %d steps)", ls.Path, ls.Scenario.Name, len(ls.Scenario.Steps))
	}

	result := ValidationResult{
		Valid:     len(loadErrs) == 0,
		Scenarios: len(loaded),
	}
	for _, err := range loadErrs {
		ve := ValidationError{Code: ErrCodeInvalid, Message: err.Error()}
		var le *LoadError
		if errors.As(err, &le) {
			ve.File = le.Path
			ve.Message = le.Message
		}
		result.Errors = append(result.Errors, ve)
	}

	if !result.Valid {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d scenario(s) invalid", len(result.Errors)), result)
		} else {
			for _, ve := range result.Errors {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s\n", ve.File, ve.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) invalid", len(result.Errors)))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %d scenario(s) valid", result.Scenarios))
}
