package cli

import (
	"github.com/spf13/cobra"

	"github.com/stoichtab/stoichtab/internal/classify"
)

// ClassifyResult is the payload of the classify command.
type ClassifyResult struct {
	Input string `json:"input"`
	Kind  string `json:"kind"`
}

func (r ClassifyResult) String() string { return r.Kind }

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Resolve a search string to an identifier kind",
		Long: `Resolve a raw search string to the identifier kind a lookup would use.

Runs the same recognizer cascade as the sheet's [auto] mode:
CAS number, InChI, InChIKey, CID, SMILES, falling back to a name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			input := classify.Normalize(args[0])
			kind := classify.Classify(input)
			formatter.VerboseLog("normalized input: %q", input)
			return formatter.Success(ClassifyResult{Input: input, Kind: string(kind)})
		},
	}
}
