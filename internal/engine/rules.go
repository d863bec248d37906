package engine

import (
	"github.com/stoichtab/stoichtab/internal/classify"
	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// searchClass is the visual class marking cells filled by the last lookup.
const searchClass = "search-bg"

// dispatch is the grid change hook: the entry point of every propagation
// pass. For each applied change it fires, in this fixed order, every rule
// whose trigger matches the written field and whose source tag passes the
// rule's reentrancy guard. The grid already dropped writes that did not
// change the stored value.
func (e *Engine) dispatch(changes []grid.Change, source grid.Source) {
	for _, ch := range changes {
		// The source link is guarded separately and stops the pass for
		// this change: reverts must not strip its highlight.
		if ch.Field == sheet.FieldSource {
			e.guardSource(ch, source)
			continue
		}

		if ch.Field == sheet.FieldType && source != SourceTypeStatus {
			e.setTypeStatus(ch.Row, ch.New)
		}

		if ch.Field == sheet.FieldSearch {
			e.search(ch.Row, ch.New)
		}

		if sheet.Contains(sheet.SearchFilled, ch.Field) && source != SourceSearchFill {
			e.clearHighlight(ch.Row, ch.Field)
		}

		if ch.Field == sheet.FieldHighlight && source != SourceHighlight {
			e.redrawHighlight(ch.Row, ch.New)
		}

		// A lookup that fills the molecular weight must still refresh
		// mass and volume from any amount the user already typed.
		if ch.Field == sheet.FieldMW && source == SourceSearchFill {
			e.updateProperties(ch.Row)
		}
		if sheet.Contains(sheet.QuantityInputs, ch.Field) &&
			source != SourceSearchFill && source != SourceUpdateAmount {
			e.updateProperties(ch.Row)
		}

		if sheet.Contains(sheet.MassVolume, ch.Field) &&
			source != SourceSearchFill && source != SourceUpdateProperties &&
			source != SourceUpdateAmount {
			e.updateAmount(ch.Row, ch.Field, ch.New)
		}

		if ch.Field == sheet.FieldEQRef && source != SourceEQRef {
			e.updateEQRef(ch.Row, ch.Old, ch.New)
		}

		if sheet.Contains(sheet.EquivTriggers, ch.Field) && source != SourceUpdateEQs {
			e.updateEQs(ch.Row, ch.Field, ch.New)
		}
	}
}

// setTypeStatus mirrors the kind cell into the status cell: clearing the
// kind resets it to [auto], a locked kind shows the locked status.
func (e *Engine) setTypeStatus(row int, val sheet.Value) {
	if sheet.IsNull(val) {
		e.grid.SetCell(row, sheet.FieldType, sheet.Str(string(sheet.KindAuto)), SourceTypeStatus)
	}

	if val == sheet.String(sheet.KindLocked) {
		e.grid.SetCell(row, sheet.FieldStatus, sheet.Str(sheet.StatusLocked), SourceTypeStatus)
	} else {
		e.grid.SetCell(row, sheet.FieldStatus, sheet.Null{}, SourceTypeStatus)
	}
}

// search is the one asynchronous rule. It marks the row searching, clears
// the stale derived cells, resolves the effective identifier kind and hands
// the fetch to the lookup client; the result re-enters the engine as a
// completion event.
func (e *Engine) search(row int, val sheet.Value) {
	s, ok := val.(sheet.String)
	if !ok || s == "" {
		return
	}

	kind := sheet.KindAuto
	if ks, ok := e.grid.GetCell(row, sheet.FieldType).(sheet.String); ok && ks != "" {
		kind = sheet.Kind(ks)
	}
	if kind == sheet.KindLocked {
		return
	}

	query := classify.Normalize(string(s))
	effective := kind
	if !kind.Concrete() {
		effective = classify.Classify(query)
	}

	e.grid.SetCell(row, sheet.FieldStatus, sheet.Str(sheet.StatusSearching), SourceSearchFill)
	e.grid.SetCell(row, sheet.FieldMass, sheet.Null{}, SourceSearchFill)
	e.grid.SetCell(row, sheet.FieldVolume, sheet.Null{}, SourceSearchFill)

	token := e.tokens.Generate()
	e.log.Debug("search dispatched",
		"token", token,
		"row", row,
		"kind", effective,
		"query", query,
	)

	ctx := e.ctx
	e.pending.Add(1)
	go func() {
		comp, err := e.db.Lookup(ctx, effective, query)
		e.enqueueCompletion(&Completion{
			Row:      row,
			Token:    token,
			Kind:     effective,
			Query:    query,
			Compound: comp,
			Err:      err,
		})
		e.pending.Add(-1)
	}()
}

// guardSource keeps the source link lookup-only: any direct edit is
// reverted; an internal clear propagates to clearing the link's highlight.
func (e *Engine) guardSource(ch grid.Change, source grid.Source) {
	if source == grid.SourceEdit {
		e.grid.SetCell(ch.Row, sheet.FieldSource, ch.Old, SourceGuard)
		return
	}
	if sheet.IsNull(ch.New) {
		e.clearHighlight(ch.Row, sheet.FieldSource)
	}
}

// clearHighlight removes one field from the row's lookup-provenance set and
// clears its visual marker, leaving the rest of the set untouched.
func (e *Engine) clearHighlight(row int, field sheet.Field) {
	e.grid.SetCellClass(row, field, "")
	hl := e.grid.GetCell(row, sheet.FieldHighlight)
	e.grid.SetCell(row, sheet.FieldHighlight, sheet.RemoveHighlight(hl, field), SourceHighlight)
}

// setHighlight marks the whole lookup-filled field set, visually and in the
// highlight cell.
func (e *Engine) setHighlight(row int) {
	for _, f := range sheet.SearchFilled {
		e.grid.SetCellClass(row, f, searchClass)
	}
	e.grid.SetCell(row, sheet.FieldHighlight, sheet.FormatHighlight(sheet.SearchFilled), SourceHighlight)
}

// redrawHighlight re-applies visual markers after the highlight cell itself
// was rewritten, e.g. by a document load.
func (e *Engine) redrawHighlight(row int, val sheet.Value) {
	for _, f := range sheet.ParseHighlight(val) {
		e.grid.SetCellClass(row, f, searchClass)
	}
}

// updateProperties recomputes mass and volume from amount, molarity,
// molecular weight and density. Molarity takes precedence over density;
// a density known to be unavailable forces the volume to N/A.
func (e *Engine) updateProperties(row int) {
	amount := e.grid.GetCell(row, sheet.FieldAmount)
	molarity := e.grid.GetCell(row, sheet.FieldMolarity)
	mw := e.grid.GetCell(row, sheet.FieldMW)
	density := e.grid.GetCell(row, sheet.FieldDensity)

	if sheet.Positive(amount) && sheet.Positive(mw) {
		// Mass[g] = Amount[mmol] * MolecularWeight[g/mol] / 1000
		mass := numOf(amount) * numOf(mw) / 1000
		e.grid.SetCell(row, sheet.FieldMass, sheet.Num(mass), SourceUpdateProperties)
	}

	if sheet.Positive(amount) && sheet.Positive(molarity) {
		// Volume[mL] = Amount[mmol] / Molarity[mol/L]
		volume := numOf(amount) / numOf(molarity)
		e.grid.SetCell(row, sheet.FieldVolume, sheet.Num(volume), SourceUpdateProperties)
		return // molarity wins over density
	}

	if sheet.Positive(amount) && sheet.Positive(mw) && sheet.Positive(density) {
		// Volume[mL = cm³] = (Amount[mmol] * MolecularWeight[g/mol]) / (Density[g/cm³] * 1000)
		volume := numOf(amount) * numOf(mw) / (numOf(density) * 1000)
		e.grid.SetCell(row, sheet.FieldVolume, sheet.Num(volume), SourceUpdateProperties)
	}

	if sheet.IsNA(density) {
		e.grid.SetCell(row, sheet.FieldVolume, sheet.NA, SourceUpdateProperties)
	}
}

// updateAmount is the inverse of updateProperties: recompute the amount
// from whichever of mass or volume changed, with the same molarity
// precedence inverted.
func (e *Engine) updateAmount(row int, field sheet.Field, val sheet.Value) {
	molarity := e.grid.GetCell(row, sheet.FieldMolarity)
	mw := e.grid.GetCell(row, sheet.FieldMW)
	density := e.grid.GetCell(row, sheet.FieldDensity)

	if field == sheet.FieldMass && sheet.Positive(val) && sheet.Positive(mw) {
		// Amount[mmol] = (Mass[g] * 1000) / MolecularWeight[g/mol]
		amount := numOf(val) * 1000 / numOf(mw)
		e.grid.SetCell(row, sheet.FieldAmount, sheet.Num(amount), SourceUpdateAmount)
	}

	if field == sheet.FieldVolume && sheet.Positive(molarity) && sheet.Positive(val) {
		// Amount[mmol] = Molarity[mol/L] * Volume[mL]
		amount := numOf(molarity) * numOf(val)
		e.grid.SetCell(row, sheet.FieldAmount, sheet.Num(amount), SourceUpdateAmount)
		return // molarity wins over density
	}

	if field == sheet.FieldVolume && sheet.Positive(density) && sheet.Positive(val) && sheet.Positive(mw) {
		// Amount[mmol] = (Density[g/cm³] * Volume[mL = cm³] * 1000) / MolecularWeight[g/mol]
		amount := numOf(density) * numOf(val) * 1000 / numOf(mw)
		e.grid.SetCell(row, sheet.FieldAmount, sheet.Num(amount), SourceUpdateAmount)
	}

	if field == sheet.FieldVolume && sheet.IsNA(density) {
		// Without a density there is no volume to speak of.
		e.grid.SetCell(row, sheet.FieldVolume, sheet.NA, SourceUpdateAmount)
	}
}

// updateEQRef enforces the single-reference invariant: setting the flag on
// one row clears it on all others as one batched write, and a direct
// uncheck or clear is reverted. The reference only moves, or disappears
// with its row.
func (e *Engine) updateEQRef(row int, old, val sheet.Value) {
	if sheet.IsNull(val) || val == sheet.Bool(false) {
		e.grid.SetCell(row, sheet.FieldEQRef, old, SourceEQRef)
		return
	}

	n := e.grid.CountRows() - 1 // leave the spare row alone
	cells := make([]grid.Cell, 0, n)
	for i := 0; i < n; i++ {
		if i != row {
			cells = append(cells, grid.Cell{Row: i, Field: sheet.FieldEQRef, Value: sheet.Bool(false)})
		}
	}
	cells = append(cells, grid.Cell{Row: row, Field: sheet.FieldEQRef, Value: sheet.Bool(true)})
	e.grid.SetCells(cells, SourceEQRef)
}

// updateEQs resolves the two-way binding between amounts and equivalents.
// On the reference row, amount is primary: its change rescales every other
// row's equivalent, then every row's amount follows its equivalent. On any
// other row the written field recomputes its counterpart.
func (e *Engine) updateEQs(row int, field sheet.Field, val sheet.Value) {
	refRow := e.refRow()
	refAmount := sheet.Value(sheet.Null{})
	if refRow >= 0 {
		refAmount = e.grid.GetCell(refRow, sheet.FieldAmount)
	}

	if row == refRow && (field == sheet.FieldAmount || field == sheet.FieldEQRef) {
		amounts := e.grid.GetColumn(sheet.FieldAmount)
		eqs := e.grid.GetColumn(sheet.FieldEQ)
		eqs[refRow] = sheet.Number(1)

		n := len(amounts) - 1 // spare row excluded
		for i := 0; i < n; i++ {
			if sheet.Positive(amounts[i]) && sheet.Positive(refAmount) {
				eqs[i] = sheet.Num(numOf(amounts[i]) / numOf(refAmount))
			}
		}
		for i := 0; i < n; i++ {
			if sheet.Positive(eqs[i]) && sheet.Positive(refAmount) {
				amounts[i] = sheet.Num(numOf(eqs[i]) * numOf(refAmount))
			}
		}

		eqCells := make([]grid.Cell, n)
		amountCells := make([]grid.Cell, n)
		for i := 0; i < n; i++ {
			eqCells[i] = grid.Cell{Row: i, Field: sheet.FieldEQ, Value: eqs[i]}
			amountCells[i] = grid.Cell{Row: i, Field: sheet.FieldAmount, Value: amounts[i]}
		}
		e.grid.SetCells(eqCells, SourceUpdateEQs)
		e.grid.SetCells(amountCells, SourceUpdateEQs)
	}

	if row == refRow && field == sheet.FieldEQ {
		// The reference row is the definition of one equivalent.
		e.grid.SetCell(row, sheet.FieldEQ, sheet.Number(1), SourceUpdateEQs)
	}

	if row != refRow && field == sheet.FieldAmount {
		if sheet.Positive(val) && sheet.Positive(refAmount) {
			e.grid.SetCell(row, sheet.FieldEQ, sheet.Num(numOf(val)/numOf(refAmount)), SourceUpdateEQs)
		}
		if sheet.IsNull(val) {
			e.grid.SetCell(row, sheet.FieldEQ, sheet.Null{}, SourceUpdateEQs)
		}
	}

	if row != refRow && field == sheet.FieldEQ {
		if sheet.Positive(val) && sheet.Positive(refAmount) {
			e.grid.SetCell(row, sheet.FieldAmount, sheet.Num(numOf(val)*numOf(refAmount)), SourceUpdateEQs)
		}
		if sheet.IsNull(val) {
			e.grid.SetCell(row, sheet.FieldAmount, sheet.Null{}, SourceUpdateEQs)
		}
	}
}

// rowRemoved promotes the first remaining row to reference when the removed
// row held the flag.
func (e *Engine) rowRemoved(int) {
	if e.refRow() == -1 {
		e.grid.SetCell(0, sheet.FieldEQRef, sheet.Bool(true), grid.SourceEdit)
	}
}

// refRow returns the index of the reference row, or -1 when none is set.
func (e *Engine) refRow() int {
	for i, v := range e.grid.GetColumn(sheet.FieldEQRef) {
		if v == sheet.Bool(true) {
			return i
		}
	}
	return -1
}

func numOf(v sheet.Value) float64 {
	n, _ := sheet.AsNumber(v)
	return n
}
