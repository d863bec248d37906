package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EditDerivesMass(t *testing.T) {
	s := &Scenario{
		Name:        "edit-derives-mass",
		Description: "amount plus molecular weight derives the mass",
		Rows:        []map[string]any{{"prop.mw": 18}},
		Steps:       []Step{{Row: 0, Field: "amount", Value: 10}},
		Final: []CellExpect{
			{Row: 0, Field: "amount", Value: 10},
			{Row: 0, Field: "prop.mass", Value: 0.18},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "amount", result.Trace[0].Field)
	assert.Equal(t, "edit", result.Trace[0].Source)
	assert.Equal(t, "prop.mass", result.Trace[1].Field)
	assert.Equal(t, "updateProperties", result.Trace[1].Source)
	assert.Equal(t, 1, result.Trace[0].Seq)
	assert.Equal(t, 2, result.Trace[1].Seq)
}

func TestRun_FinalMismatchFails(t *testing.T) {
	s := &Scenario{
		Name:        "final-mismatch",
		Description: "a wrong expectation fails the scenario",
		Steps:       []Step{{Row: 0, Field: "amount", Value: 10}},
		Final:       []CellExpect{{Row: 0, Field: "amount", Value: 99}},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "got 10, want 99")
}

func TestRun_ScriptedSearch(t *testing.T) {
	s := &Scenario{
		Name:        "scripted-search",
		Description: "a search resolves through the scripted client",
		Lookups: []LookupScript{{
			Kind:  "Name",
			Query: "water",
			Compound: &CompoundScript{
				CID:  962,
				Name: "Water",
				MW:   18,
			},
		}},
		Steps: []Step{{Row: 0, Field: "search", Value: "water"}},
		Final: []CellExpect{
			{Row: 0, Field: "id.Name", Value: "Water"},
			{Row: 0, Field: "id.CID", Value: 962},
			{Row: 0, Field: "status", Value: "✅Compound found"},
		},
		Calls: []CallExpect{{Kind: "Name", Query: "water"}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnscriptedSearchFailsAsNotFound(t *testing.T) {
	s := &Scenario{
		Name:        "unscripted-search",
		Description: "a query without a scripted answer lands in an error status",
		Steps:       []Step{{Row: 0, Field: "search", Value: "kryptonite"}},
		Final: []CellExpect{
			{Row: 0, Field: "status", Value: `❌no scripted result for "kryptonite"`},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CallsMismatchFails(t *testing.T) {
	s := &Scenario{
		Name:        "calls-mismatch",
		Description: "an unexpected lookup count fails the scenario",
		Steps:       []Step{{Row: 0, Field: "amount", Value: 1}},
		Final:       []CellExpect{{Row: 0, Field: "amount", Value: 1}},
		Calls:       []CallExpect{{Kind: "Name", Query: "water"}},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "got 0 lookup invocations, want 1")
}

func TestRun_RemoveStep(t *testing.T) {
	s := &Scenario{
		Name:        "remove-step",
		Description: "removing the reference row promotes the next one",
		Rows: []map[string]any{
			{"amount": 4, "eq.val": 1, "eq.ref": true},
			{"amount": 2, "eq.val": 0.5},
		},
		Steps: []Step{{Remove: true, Row: 0}},
		Final: []CellExpect{
			{Row: 0, Field: "eq.ref", Value: true},
			{Row: 0, Field: "eq.val", Value: 1},
			{Row: 0, Field: "amount", Value: 2},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Rows, 1)
}
