package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stoichtab/stoichtab/internal/document"
)

// ValidationResult holds the outcome of a document validation.
type ValidationResult struct {
	Valid  bool                 `json:"valid"`
	Rows   int                  `json:"rows"`
	Errors document.ParseErrors `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("valid (%d rows)", r.Rows)
	}
	s := "invalid:"
	for _, e := range r.Errors {
		s += "\n  " + e.Error()
	}
	return s
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a sheet document",
		Long: `Validate a persisted sheet document: JSON syntax, the three-element
shape and every row against the document schema. Reports all violations,
not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		formatter.Error("CLI003", "read document", err.Error())
		return &ExitError{Code: ExitCommandError, Message: "read document", Err: err}
	}

	doc, err := document.Decode(data)
	if err != nil {
		var parseErrs document.ParseErrors
		if !errors.As(err, &parseErrs) {
			parseErrs = document.ParseErrors{{Code: document.ErrBadJSON, Message: err.Error()}}
		}
		result := ValidationResult{Valid: false, Errors: parseErrs}
		formatter.Success(result)
		return &ExitError{Code: ExitFailure, Message: "document invalid"}
	}

	return formatter.Success(ValidationResult{Valid: true, Rows: len(doc.Rows)})
}
