package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stoichtab/stoichtab/internal/engine"
	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
	"github.com/stoichtab/stoichtab/internal/testutil"
)

// settleTimeout bounds one whole scenario run. Scripted lookups complete
// immediately, so a scenario hitting this is broken, not slow.
const settleTimeout = 10 * time.Second

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh grid and engine wired to a scripted
// lookup client, so scenarios are fully isolated. The engine settles after
// every step; a step's lookup completion lands before the next step
// executes, which is what makes the trace deterministic.
func Run(scenario *Scenario) (*Result, error) {
	g := grid.New()
	if len(scenario.Rows) > 0 {
		records, err := buildRecords(scenario.Rows)
		if err != nil {
			return nil, err
		}
		g.LoadRows(records)
	}

	db := testutil.NewScriptedLookup()
	if err := script(db, scenario.Lookups); err != nil {
		return nil, err
	}

	result := NewResult()

	// The trace hook registers before the engine's dispatcher, so each
	// write is recorded before the rules it triggers write anything.
	g.OnChange(func(changes []grid.Change, source grid.Source) {
		for _, ch := range changes {
			result.addChange(ch, source)
		}
	})

	eng := engine.New(g, db,
		engine.WithLogger(testutil.DiscardLogger()),
		engine.WithTokenGenerator(tokenGenerator(scenario.Tokens)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	for i, step := range scenario.Steps {
		var ok bool
		if step.Remove {
			ok = eng.RemoveRow(step.Row)
		} else {
			ok = eng.Edit(step.Row, sheet.Field(step.Field), sheet.FromGo(step.Value))
		}
		if !ok {
			return nil, fmt.Errorf("steps[%d]: engine rejected the event", i)
		}
		if err := eng.Settle(ctx); err != nil {
			return nil, fmt.Errorf("steps[%d]: engine did not settle: %w", i, err)
		}
	}

	// Join the run goroutine before reading final state and trace.
	eng.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("engine run failed: %w", err)
	}

	result.Rows = g.Rows()
	checkFinal(result, g, scenario.Final)
	checkCalls(result, db.Calls(), scenario.Calls)
	return result, nil
}

// checkFinal compares each expected final cell against the grid.
func checkFinal(result *Result, g *grid.Grid, expects []CellExpect) {
	for i, exp := range expects {
		got := g.GetCell(exp.Row, sheet.Field(exp.Field))
		want := sheet.FromGo(exp.Value)
		if !sheet.Equal(got, want) {
			result.AddError(fmt.Sprintf("final[%d]: row %d %s: got %s, want %s",
				i, exp.Row, exp.Field, sheet.Format(got), sheet.Format(want)))
		}
	}
}

// checkCalls compares the recorded lookup invocations against the
// scenario's expectations, in order. An empty expectation list skips the
// check entirely; scenarios that never search should not have to say so.
func checkCalls(result *Result, calls []testutil.LookupCall, expects []CallExpect) {
	if len(expects) == 0 {
		return
	}
	if len(calls) != len(expects) {
		result.AddError(fmt.Sprintf("calls: got %d lookup invocations, want %d",
			len(calls), len(expects)))
		return
	}
	for i, exp := range expects {
		if string(calls[i].Kind) != exp.Kind || calls[i].Query != exp.Query {
			result.AddError(fmt.Sprintf("calls[%d]: got (%s, %q), want (%s, %q)",
				i, calls[i].Kind, calls[i].Query, exp.Kind, exp.Query))
		}
	}
}

// buildRecords converts scenario row maps into sheet records. Fields not
// listed keep their column defaults, matching what a document load does.
func buildRecords(rows []map[string]any) ([]sheet.Record, error) {
	records := make([]sheet.Record, len(rows))
	for i, row := range rows {
		rec := sheet.NewRecord()
		for path, val := range row {
			if path == "" {
				return nil, fmt.Errorf("rows[%d]: empty field path", i)
			}
			rec.Set(sheet.Field(path), sheet.FromGo(val))
		}
		records[i] = rec
	}
	return records, nil
}

// script loads the scenario's lookup table into the scripted client.
func script(db *testutil.ScriptedLookup, lookups []LookupScript) error {
	for i, l := range lookups {
		kind := sheet.Kind(l.Kind)
		if l.Error != "" {
			db.Fail(kind, l.Query, &pubchem.LookupError{
				Code:    pubchem.CodeNotFound,
				Kind:    kind,
				Query:   l.Query,
				Message: l.Error,
			})
			continue
		}

		c := l.Compound
		if c == nil {
			return fmt.Errorf("lookups[%d]: compound or error is required", i)
		}
		density := sheet.Value(sheet.NA)
		if c.Density != nil {
			density = sheet.FromGo(c.Density)
		}
		db.Answer(kind, l.Query, &pubchem.Compound{
			CID:             c.CID,
			Name:            c.Name,
			CAS:             c.CAS,
			SMILES:          c.SMILES,
			InChI:           c.InChI,
			InChIKey:        c.InChIKey,
			MolecularWeight: c.MW,
			Density:         density,
			SourceURL:       c.Source,
		})
	}
	return nil
}

// tokenGenerator returns the scenario's fixed tokens, or a counting
// sequence when none are given.
func tokenGenerator(tokens []string) engine.TokenGenerator {
	if len(tokens) > 0 {
		return engine.NewFixedGenerator(tokens...)
	}
	return &countingTokens{}
}

// countingTokens generates req-000001, req-000002, ... so scenarios that
// don't care about token values still get deterministic logs.
type countingTokens struct {
	mu sync.Mutex
	n  int
}

func (g *countingTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("req-%06d", g.n)
}
