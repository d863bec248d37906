package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stoichtab/stoichtab/internal/classify"
	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// LookupResult is the payload of the lookup command.
type LookupResult struct {
	Kind            string  `json:"kind"`
	Query           string  `json:"query"`
	CID             int64   `json:"cid"`
	Name            string  `json:"name"`
	CAS             string  `json:"cas,omitempty"`
	SMILES          string  `json:"smiles,omitempty"`
	InChI           string  `json:"inchi,omitempty"`
	InChIKey        string  `json:"inchikey,omitempty"`
	MolecularWeight float64 `json:"molecular_weight"`
	Density         any     `json:"density"` // number or "N/A"
	SourceURL       string  `json:"source_url"`
}

func (r LookupResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:     %s\n", r.Name)
	fmt.Fprintf(&b, "CID:      %d\n", r.CID)
	if r.CAS != "" {
		fmt.Fprintf(&b, "CAS:      %s\n", r.CAS)
	}
	if r.SMILES != "" {
		fmt.Fprintf(&b, "SMILES:   %s\n", r.SMILES)
	}
	if r.InChIKey != "" {
		fmt.Fprintf(&b, "InChIKey: %s\n", r.InChIKey)
	}
	fmt.Fprintf(&b, "MW:       %g g/mol\n", r.MolecularWeight)
	fmt.Fprintf(&b, "Density:  %v\n", r.Density)
	fmt.Fprintf(&b, "Source:   %s", r.SourceURL)
	return b.String()
}

// LookupOptions holds flags of the lookup command.
type LookupOptions struct {
	CachePath string
	Interval  time.Duration
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{}

	cmd := &cobra.Command{
		Use:   "lookup <kind> <value>",
		Short: "Resolve a compound against the remote database",
		Long: `Resolve one compound identifier against the remote compound database.

kind is one of: auto, CAS, Name, CID, SMILES, InChIKey, InChI.
"auto" classifies the value first, exactly as the sheet does.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "path to the sqlite lookup cache (optional)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", pubchem.DefaultInterval, "request gate spacing")

	return cmd
}

func runLookup(rootOpts *RootOptions, opts *LookupOptions, kindArg, value string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	query := classify.Normalize(value)
	kind, err := resolveKind(kindArg, query)
	if err != nil {
		formatter.Error("CLI001", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: err.Error()}
	}
	formatter.VerboseLog("resolved kind: %s", kind)

	clientOpts := []pubchem.Option{pubchem.WithInterval(opts.Interval)}
	if opts.CachePath != "" {
		cache, err := pubchem.OpenCache(opts.CachePath)
		if err != nil {
			formatter.Error("CLI002", "open lookup cache", err.Error())
			return &ExitError{Code: ExitCommandError, Message: "open lookup cache", Err: err}
		}
		defer cache.Close()
		clientOpts = append(clientOpts, pubchem.WithCache(cache))
	}

	client := pubchem.NewClient(clientOpts...)
	comp, err := client.Lookup(cmd.Context(), kind, query)
	if err != nil {
		code := "LOOKUP"
		var le *pubchem.LookupError
		if pubchem.IsNotFound(err) {
			code = "NOT_FOUND"
		} else if pubchem.IsRateLimited(err) {
			code = "RATE_LIMITED"
		}
		msg := err.Error()
		if errors.As(err, &le) {
			msg = le.Message
		}
		formatter.Error(code, msg, nil)
		return &ExitError{Code: ExitFailure, Message: msg, Err: err}
	}

	return formatter.Success(LookupResult{
		Kind:            string(kind),
		Query:           query,
		CID:             comp.CID,
		Name:            comp.Name,
		CAS:             comp.CAS,
		SMILES:          comp.SMILES,
		InChI:           comp.InChI,
		InChIKey:        comp.InChIKey,
		MolecularWeight: comp.MolecularWeight,
		Density:         sheet.ToGo(comp.Density),
		SourceURL:       comp.SourceURL,
	})
}

// resolveKind maps the kind argument to a concrete lookup kind, running the
// classifier for "auto".
func resolveKind(arg, query string) (sheet.Kind, error) {
	if strings.EqualFold(arg, "auto") {
		return classify.Classify(query), nil
	}
	for _, k := range sheet.Kinds {
		if k.Concrete() && strings.EqualFold(string(k), arg) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q: use auto, CAS, Name, CID, SMILES, InChIKey or InChI", arg)
}
