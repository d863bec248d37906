package harness

import (
	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// TraceEvent is one applied cell write. Values are recorded in their log
// form (sheet.Format) so traces stay byte-stable across runs.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Old    string `json:"old"`
	New    string `json:"new"`
	Source string `json:"source"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every final-cell and
	// lookup-call expectation matched.
	Pass bool `json:"pass"`

	// Trace contains every applied cell write in order, direct edits and
	// rule-produced writes alike. Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failure messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`

	// Rows is the final sheet content, spare row excluded.
	Rows []sheet.Record `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

func (r *Result) addChange(ch grid.Change, source grid.Source) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    len(r.Trace) + 1,
		Row:    ch.Row,
		Field:  string(ch.Field),
		Old:    sheet.Format(ch.Old),
		New:    sheet.Format(ch.New),
		Source: string(source),
	})
}
