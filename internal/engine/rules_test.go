package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
	"github.com/stoichtab/stoichtab/internal/testutil"
)

// setupEngine starts an engine on a fresh grid with its Run loop on a
// background goroutine, stopped via t.Cleanup.
func setupEngine(t *testing.T, db Lookup, opts ...Option) (*grid.Grid, *Engine) {
	t.Helper()
	g := grid.New()
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	e := New(g, db, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return g, e
}

func settle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Settle(ctx))
}

func cellNum(t *testing.T, g *grid.Grid, row int, f sheet.Field) float64 {
	t.Helper()
	n, ok := sheet.AsNumber(g.GetCell(row, f))
	require.True(t, ok, "cell %d/%s should be numeric, got %#v", row, f, g.GetCell(row, f))
	return n
}

func TestRules_MassFromAmount(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	// 10 mmol of water: mass = 10 * 18 / 1000 = 0.18 g
	e.Edit(0, sheet.FieldMW, sheet.Num(18))
	e.Edit(0, sheet.FieldAmount, sheet.Num(10))
	settle(t, e)

	assert.InDelta(t, 0.18, cellNum(t, g, 0, sheet.FieldMass), 1e-12)
}

func TestRules_AmountFromMass(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldMW, sheet.Num(18))
	e.Edit(0, sheet.FieldMass, sheet.Num(0.18))
	settle(t, e)

	assert.InDelta(t, 10, cellNum(t, g, 0, sheet.FieldAmount), 1e-12)
}

func TestRules_MolarityWinsOverDensity(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	// Both molarity and density present: volume must come from molarity.
	e.EditCells([]grid.Cell{
		{Row: 0, Field: sheet.FieldMW, Value: sheet.Num(18)},
		{Row: 0, Field: sheet.FieldDensity, Value: sheet.Num(0.9)},
		{Row: 0, Field: sheet.FieldMolarity, Value: sheet.Num(1)},
	})
	e.Edit(0, sheet.FieldAmount, sheet.Num(5))
	settle(t, e)

	// Volume = 5 mmol / 1 mol/L = 5 mL, not 5*18/(0.9*1000) = 0.1 mL.
	assert.InDelta(t, 5, cellNum(t, g, 0, sheet.FieldVolume), 1e-12)
}

func TestRules_VolumeFromDensity(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.EditCells([]grid.Cell{
		{Row: 0, Field: sheet.FieldMW, Value: sheet.Num(18)},
		{Row: 0, Field: sheet.FieldDensity, Value: sheet.Num(0.9)},
	})
	e.Edit(0, sheet.FieldAmount, sheet.Num(10))
	settle(t, e)

	assert.InDelta(t, 0.2, cellNum(t, g, 0, sheet.FieldVolume), 1e-12)
}

func TestRules_UnavailableDensityForcesVolumeNA(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.EditCells([]grid.Cell{
		{Row: 0, Field: sheet.FieldMW, Value: sheet.Num(18)},
		{Row: 0, Field: sheet.FieldDensity, Value: sheet.NA},
	})
	e.Edit(0, sheet.FieldAmount, sheet.Num(10))
	settle(t, e)

	assert.Equal(t, sheet.NA, g.GetCell(0, sheet.FieldVolume))
	// Mass is unaffected.
	assert.InDelta(t, 0.18, cellNum(t, g, 0, sheet.FieldMass), 1e-12)
}

func TestRules_AmountFromVolumeViaMolarity(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldMolarity, sheet.Num(2))
	e.Edit(0, sheet.FieldVolume, sheet.Num(5))
	settle(t, e)

	assert.InDelta(t, 10, cellNum(t, g, 0, sheet.FieldAmount), 1e-12)
}

func TestRules_AmountFromVolumeViaDensity(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.EditCells([]grid.Cell{
		{Row: 0, Field: sheet.FieldMW, Value: sheet.Num(100)},
		{Row: 0, Field: sheet.FieldDensity, Value: sheet.Num(1.2)},
	})
	e.Edit(0, sheet.FieldVolume, sheet.Num(5))
	settle(t, e)

	// Amount = 1.2 * 5 * 1000 / 100 = 60 mmol
	assert.InDelta(t, 60, cellNum(t, g, 0, sheet.FieldAmount), 1e-12)
}

func TestRules_EquivalentFollowsAmount(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(1, sheet.FieldAmount, sheet.Num(1))
	settle(t, e)

	assert.Equal(t, sheet.Number(1), g.GetCell(0, sheet.FieldEQ))
	assert.InDelta(t, 0.5, cellNum(t, g, 1, sheet.FieldEQ), 1e-12)
}

func TestRules_AmountFollowsEquivalent(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(1, sheet.FieldEQ, sheet.Num(2))
	settle(t, e)

	assert.InDelta(t, 4, cellNum(t, g, 1, sheet.FieldAmount), 1e-12)
}

func TestRules_ReferenceAmountChangeRescales(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(1, sheet.FieldAmount, sheet.Num(1))
	e.Edit(0, sheet.FieldAmount, sheet.Num(4))
	settle(t, e)

	// Amounts stay, equivalents rescale against the new reference.
	assert.InDelta(t, 1, cellNum(t, g, 1, sheet.FieldAmount), 1e-12)
	assert.InDelta(t, 0.25, cellNum(t, g, 1, sheet.FieldEQ), 1e-12)
	assert.Equal(t, sheet.Number(1), g.GetCell(0, sheet.FieldEQ))
}

func TestRules_ReferenceEquivalentPinnedToOne(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(0, sheet.FieldEQ, sheet.Num(5))
	settle(t, e)

	assert.Equal(t, sheet.Number(1), g.GetCell(0, sheet.FieldEQ))
}

func TestRules_SingleReferenceInvariant(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(1, sheet.FieldAmount, sheet.Num(3))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(1, sheet.FieldEQRef, sheet.Bool(true))
	settle(t, e)

	assert.Equal(t, sheet.Bool(false), g.GetCell(0, sheet.FieldEQRef))
	assert.Equal(t, sheet.Bool(true), g.GetCell(1, sheet.FieldEQRef))
}

func TestRules_ReferenceUncheckReverts(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(true))
	e.Edit(0, sheet.FieldEQRef, sheet.Bool(false))
	settle(t, e)

	// The reference moves or disappears with its row; it cannot be
	// switched off in place.
	assert.Equal(t, sheet.Bool(true), g.GetCell(0, sheet.FieldEQRef))
}

func TestRules_RemovingReferenceRowPromotesFirst(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldAmount, sheet.Num(2))
	e.Edit(1, sheet.FieldAmount, sheet.Num(3))
	e.Edit(1, sheet.FieldEQRef, sheet.Bool(true))
	e.RemoveRow(1)
	settle(t, e)

	assert.Equal(t, sheet.Bool(true), g.GetCell(0, sheet.FieldEQRef))
}

func TestRules_LockedTypeSetsLockedStatus(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldType, sheet.Str(string(sheet.KindLocked)))
	settle(t, e)

	assert.Equal(t, sheet.Str(sheet.StatusLocked), g.GetCell(0, sheet.FieldStatus))

	// Switching away clears the locked status.
	e.Edit(0, sheet.FieldType, sheet.Str(string(sheet.KindName)))
	settle(t, e)
	assert.Equal(t, sheet.Null{}, g.GetCell(0, sheet.FieldStatus))
}

func TestRules_ClearedTypeResetsToAuto(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldType, sheet.Str(string(sheet.KindCAS)))
	e.Edit(0, sheet.FieldType, sheet.Null{})
	settle(t, e)

	assert.Equal(t, sheet.Str(string(sheet.KindAuto)), g.GetCell(0, sheet.FieldType))
}

func TestRules_SourceEditReverted(t *testing.T) {
	g, e := setupEngine(t, testutil.NewScriptedLookup())

	e.Edit(0, sheet.FieldSource, sheet.Str("https://example.com/evil"))
	settle(t, e)

	assert.Equal(t, sheet.Null{}, g.GetCell(0, sheet.FieldSource))
}

func TestRules_SourceEditRevertedAfterLookup(t *testing.T) {
	db := testutil.NewScriptedLookup()
	db.Answer(sheet.KindName, "water", &pubchem.Compound{
		CID: 962, Name: "Water", MolecularWeight: 18.02,
		Density:   sheet.Num(1),
		SourceURL: "https://pubchem.ncbi.nlm.nih.gov/compound/962",
	})
	g, e := setupEngine(t, db)

	e.Edit(0, sheet.FieldSearch, sheet.Str("water"))
	settle(t, e)
	require.Equal(t, sheet.Str("https://pubchem.ncbi.nlm.nih.gov/compound/962"),
		g.GetCell(0, sheet.FieldSource))

	e.Edit(0, sheet.FieldSource, sheet.Str("https://example.com/evil"))
	settle(t, e)

	assert.Equal(t, sheet.Str("https://pubchem.ncbi.nlm.nih.gov/compound/962"),
		g.GetCell(0, sheet.FieldSource))
	// The revert must not strip the lookup highlight from the link.
	assert.True(t, sheet.HasHighlight(g.GetCell(0, sheet.FieldHighlight), sheet.FieldSource))
}

func TestRules_ManualOverwriteClearsFieldHighlight(t *testing.T) {
	db := testutil.NewScriptedLookup()
	db.Answer(sheet.KindName, "water", &pubchem.Compound{
		CID: 962, Name: "Water", MolecularWeight: 18.02, Density: sheet.NA,
	})
	g, e := setupEngine(t, db)

	e.Edit(0, sheet.FieldSearch, sheet.Str("water"))
	settle(t, e)
	require.Equal(t, searchClass, g.CellClass(0, sheet.FieldName))

	e.Edit(0, sheet.FieldName, sheet.Str("my water"))
	settle(t, e)

	hl := g.GetCell(0, sheet.FieldHighlight)
	assert.Empty(t, g.CellClass(0, sheet.FieldName))
	assert.False(t, sheet.HasHighlight(hl, sheet.FieldName))
	// Untouched lookup fields keep their mark.
	assert.True(t, sheet.HasHighlight(hl, sheet.FieldMW))
	assert.Equal(t, searchClass, g.CellClass(0, sheet.FieldMW))
}
