package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/tcademo/internal/config"
	"github.com/roach88/tcademo/internal/harness"
)

// ValidationError is one invalid file.
type ValidationError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate config and scenario files",
		Long: `Validate CUE configuration files and YAML scenario files without
running anything.

.cue files are unified with the configuration schema; .yaml and .yml files
are loaded as scenarios, which parses every action they send. Directories
are searched recursively.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := collectValidateFiles(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to collect files", err)
	}
	if len(files) == 0 {
		const msg = "no .cue or .yaml files found"
		_ = formatter.Error(ErrCodeInvalid, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	result := ValidationResult{Valid: true, Files: len(files)}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if verr := validateFile(file); verr != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *verr)
		}
	}

	if result.Valid {
		return formatter.Report(fmt.Sprintf("✓ %d file(s) valid\n", result.Files), result, "", "")
	}

	var text strings.Builder
	text.WriteString("✗ Validation failed\n\n")
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(&text, "%s:%d\n", e.File, e.Line)
		} else {
			fmt.Fprintf(&text, "%s\n", e.File)
		}
		fmt.Fprintf(&text, "  %s\n\n", e.Message)
	}
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
	if err := formatter.Report(text.String(), result, ErrCodeInvalid, msg); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

func isValidateExt(path string) bool {
	switch filepath.Ext(path) {
	case ".cue", ".yaml", ".yml":
		return true
	}
	return false
}

// collectValidateFiles expands directories and keeps the argument order
// for files named directly.
func collectValidateFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isValidateExt(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func validateFile(path string) *ValidationError {
	var err error
	switch filepath.Ext(path) {
	case ".cue":
		_, err = config.Load(path)
	case ".yaml", ".yml":
		_, err = harness.LoadScenario(path)
	default:
		return &ValidationError{File: path, Message: "unsupported file type (want .cue, .yaml or .yml)"}
	}
	if err == nil {
		return nil
	}
	return &ValidationError{File: path, Line: errorLine(err), Message: err.Error()}
}

// errorLine returns the line of the first positioned CUE error in err, or 0.
func errorLine(err error) int {
	for _, e := range cueerrors.Errors(err) {
		for _, pos := range cueerrors.Positions(e) {
			if pos.IsValid() {
				return pos.Line()
			}
		}
	}
	return 0
}
