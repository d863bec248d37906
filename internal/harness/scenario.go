package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test scenario: an initial sheet, a
// scripted lookup client, a sequence of edit steps and the expected final
// cells.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rows holds the initial sheet content, one map per row keyed by
	// field path. Missing fields take their column defaults. Empty means
	// the sheet starts blank.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Lookups scripts the lookup client. Queries not listed here fail as
	// not-found.
	Lookups []LookupScript `yaml:"lookups,omitempty"`

	// Steps is the edit sequence to replay. The harness settles the
	// engine after each step.
	Steps []Step `yaml:"steps"`

	// Final lists the expected cell values after the last step settles.
	Final []CellExpect `yaml:"final"`

	// Calls optionally asserts the exact lookup invocations, in order.
	Calls []CallExpect `yaml:"calls,omitempty"`

	// Tokens optionally fixes the request tokens handed to searches.
	// If empty, a counting sequence (req-000001, ...) is used.
	Tokens []string `yaml:"tokens,omitempty"`
}

// LookupScript scripts one (kind, query) answer for the lookup client.
type LookupScript struct {
	// Kind is the identifier kind the engine resolves for the query
	// (Name, CAS, CID, SMILES, InChI, InChIKey).
	Kind string `yaml:"kind"`

	// Query is the normalized search text.
	Query string `yaml:"query"`

	// Compound is the successful result. Exactly one of Compound and
	// Error must be set.
	Compound *CompoundScript `yaml:"compound,omitempty"`

	// Error scripts a not-found failure with the given message.
	Error string `yaml:"error,omitempty"`
}

// CompoundScript is the YAML shape of a scripted lookup result.
type CompoundScript struct {
	CID      int64   `yaml:"cid"`
	Name     string  `yaml:"name,omitempty"`
	CAS      string  `yaml:"cas,omitempty"`
	SMILES   string  `yaml:"smiles,omitempty"`
	InChI    string  `yaml:"inchi,omitempty"`
	InChIKey string  `yaml:"inchikey,omitempty"`
	MW       float64 `yaml:"mw"`

	// Density is a number in g/cm³, the string "N/A" for a compound
	// whose record carries no parseable density, or absent.
	Density any `yaml:"density,omitempty"`

	Source string `yaml:"source,omitempty"`
}

// Step is one replayed action: a cell edit, or a row removal.
type Step struct {
	// Remove, when true, removes the row instead of editing a cell.
	Remove bool `yaml:"remove,omitempty"`

	// Row is the zero-based row index.
	Row int `yaml:"row"`

	// Field is the edited cell's field path (edit steps only).
	Field string `yaml:"field,omitempty"`

	// Value is the written value. Null writes a cleared cell.
	Value any `yaml:"value,omitempty"`
}

// CellExpect asserts one final cell value.
type CellExpect struct {
	Row   int    `yaml:"row"`
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// CallExpect asserts one recorded lookup invocation.
type CallExpect struct {
	Kind  string `yaml:"kind"`
	Query string `yaml:"query"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario in a directory, sorted by
// file name so test iteration order is stable.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Final) == 0 {
		return fmt.Errorf("final list is required and must be non-empty")
	}

	for i, l := range s.Lookups {
		if l.Kind == "" {
			return fmt.Errorf("lookups[%d]: kind is required", i)
		}
		if l.Query == "" {
			return fmt.Errorf("lookups[%d]: query is required", i)
		}
		if (l.Compound == nil) == (l.Error == "") {
			return fmt.Errorf("lookups[%d]: exactly one of compound and error is required", i)
		}
	}

	for i, step := range s.Steps {
		if step.Row < 0 {
			return fmt.Errorf("steps[%d]: row must be non-negative", i)
		}
		if !step.Remove && step.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for edit steps", i)
		}
		if step.Remove && step.Field != "" {
			return fmt.Errorf("steps[%d]: remove steps take no field", i)
		}
	}

	for i, exp := range s.Final {
		if exp.Row < 0 {
			return fmt.Errorf("final[%d]: row must be non-negative", i)
		}
		if exp.Field == "" {
			return fmt.Errorf("final[%d]: field is required", i)
		}
	}

	for i, call := range s.Calls {
		if call.Kind == "" || call.Query == "" {
			return fmt.Errorf("calls[%d]: kind and query are required", i)
		}
	}

	return nil
}
