// Package grid implements the row state store behind the sheet: the
// authoritative in-memory grid the propagation engine reads and writes.
//
// The grid mirrors the narrow surface of the embedding grid widget: cells
// addressed by row index and field path, source-tagged writes, a batch scope
// that coalesces the re-render signal, per-cell visual classes and change
// hooks. It carries no propagation logic of its own; rules live in the
// engine and subscribe through OnChange.
//
// The grid is not safe for concurrent use. All mutation happens on the
// engine's single writer goroutine; hooks run synchronously on that same
// goroutine and may write back into the grid (the engine's reentrancy guards
// are source tags, not locks).
package grid

import "github.com/stoichtab/stoichtab/internal/sheet"

// Source labels the origin of a write: "edit" for direct user edits, or the
// tag of the propagation rule that produced it. Rules compare tags to avoid
// re-firing on their own writes.
type Source string

// SourceEdit marks a direct user edit delivered by the host widget.
const SourceEdit Source = "edit"

// Change describes one applied cell write.
type Change struct {
	Row   int
	Field sheet.Field
	Old   sheet.Value
	New   sheet.Value
}

// Cell addresses one write in a batched SetCells call.
type Cell struct {
	Row   int
	Field sheet.Field
	Value sheet.Value
}

// ChangeHandler receives the applied changes of one write call and the
// source tag that produced them. Handlers run synchronously.
type ChangeHandler func(changes []Change, source Source)

// RemoveHandler runs after a row has been removed.
type RemoveHandler func(row int)

// RenderHandler receives the coalesced re-render signal.
type RenderHandler func()

type rowState struct {
	rec     sheet.Record
	classes map[sheet.Field]string
}

// Grid is the in-memory row state store.
//
// It always keeps a trailing blank spare row, the slot the user
// types the next substance into. Writing into the spare row grows the grid
// by a fresh spare. CountRows includes the spare; iteration bounds in the
// propagation rules subtract it.
type Grid struct {
	rows []rowState

	onChange []ChangeHandler
	onRemove []RemoveHandler
	onRender []RenderHandler

	batchDepth    int
	renderPending bool
}

// New returns an empty grid holding only the spare row.
func New() *Grid {
	g := &Grid{}
	g.rows = append(g.rows, newRowState())
	return g
}

func newRowState() rowState {
	return rowState{rec: sheet.NewRecord(), classes: make(map[sheet.Field]string)}
}

// OnChange registers a change hook. Hooks run in registration order.
func (g *Grid) OnChange(h ChangeHandler) { g.onChange = append(g.onChange, h) }

// OnRowRemoved registers a row-removal hook.
func (g *Grid) OnRowRemoved(h RemoveHandler) { g.onRemove = append(g.onRemove, h) }

// OnRender registers a render hook.
func (g *Grid) OnRender(h RenderHandler) { g.onRender = append(g.onRender, h) }

// CountRows returns the number of rows including the trailing spare.
func (g *Grid) CountRows() int { return len(g.rows) }

// GetCell reads a cell. Out-of-range rows and unset cells read as Null;
// reads never fail.
func (g *Grid) GetCell(row int, field sheet.Field) sheet.Value {
	if row < 0 || row >= len(g.rows) {
		return sheet.Null{}
	}
	return g.rows[row].rec.Get(field)
}

// GetColumn returns the column's values across all rows, spare included.
func (g *Grid) GetColumn(field sheet.Field) []sheet.Value {
	out := make([]sheet.Value, len(g.rows))
	for i := range g.rows {
		out[i] = g.rows[i].rec.Get(field)
	}
	return out
}

// SetCell writes one cell and fires the change hooks. Writes that do not
// change the stored value are dropped without firing, which is what finally
// terminates tag-guarded rule recursion.
func (g *Grid) SetCell(row int, field sheet.Field, value sheet.Value, source Source) {
	g.apply([]Cell{{Row: row, Field: field, Value: value}}, source)
}

// SetCells applies a batch of writes and fires the change hooks once with
// all applied changes, then emits a single render signal.
func (g *Grid) SetCells(cells []Cell, source Source) {
	g.apply(cells, source)
}

func (g *Grid) apply(cells []Cell, source Source) {
	changes := make([]Change, 0, len(cells))
	for _, c := range cells {
		if c.Row < 0 {
			continue
		}
		g.growTo(c.Row)
		old := g.rows[c.Row].rec.Get(c.Field)
		val := c.Value
		if val == nil {
			val = sheet.Null{}
		}
		if sheet.Equal(old, val) {
			continue
		}
		g.rows[c.Row].rec.Set(c.Field, val)
		changes = append(changes, Change{Row: c.Row, Field: c.Field, Old: old, New: val})
	}
	if len(changes) == 0 {
		return
	}
	g.ensureSpare()
	for _, h := range g.onChange {
		h(changes, source)
	}
	g.requestRender()
}

// growTo makes sure row exists, appending blank rows as needed.
func (g *Grid) growTo(row int) {
	for len(g.rows) <= row {
		g.rows = append(g.rows, newRowState())
	}
}

// ensureSpare keeps the trailing blank row invariant.
func (g *Grid) ensureSpare() {
	if len(g.rows) == 0 || !g.rows[len(g.rows)-1].rec.Blank() {
		g.rows = append(g.rows, newRowState())
	}
}

// RemoveRow deletes a row, fires the removal hooks and re-renders.
// The last remaining spare row cannot be removed.
func (g *Grid) RemoveRow(row int) {
	if row < 0 || row >= len(g.rows) || len(g.rows) == 1 {
		return
	}
	g.rows = append(g.rows[:row], g.rows[row+1:]...)
	g.ensureSpare()
	for _, h := range g.onRemove {
		h(row)
	}
	g.requestRender()
}

// Batch runs fn with render signals suppressed; a single signal fires at the
// end if any write inside requested one. Batches nest.
func (g *Grid) Batch(fn func()) {
	g.batchDepth++
	fn()
	g.batchDepth--
	if g.batchDepth == 0 && g.renderPending {
		g.renderPending = false
		g.emitRender()
	}
}

func (g *Grid) requestRender() {
	if g.batchDepth > 0 {
		g.renderPending = true
		return
	}
	g.emitRender()
}

func (g *Grid) emitRender() {
	for _, h := range g.onRender {
		h()
	}
}

// SetCellClass tags a cell with a visual class ("" clears the tag).
// Classes are presentation state; they are not persisted.
func (g *Grid) SetCellClass(row int, field sheet.Field, class string) {
	if row < 0 || row >= len(g.rows) {
		return
	}
	if class == "" {
		delete(g.rows[row].classes, field)
		return
	}
	g.rows[row].classes[field] = class
}

// CellClass returns the visual class of a cell, or "".
func (g *Grid) CellClass(row int, field sheet.Field) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	return g.rows[row].classes[field]
}

// Rows returns deep copies of all non-spare row records.
func (g *Grid) Rows() []sheet.Record {
	n := len(g.rows) - 1
	out := make([]sheet.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.rows[i].rec.Clone())
	}
	return out
}

// LoadRows replaces the whole grid content with the given records plus a
// fresh spare row. No change hooks fire; a single render signal does.
// Used by document load after the incoming sheet validated successfully.
func (g *Grid) LoadRows(records []sheet.Record) {
	g.rows = g.rows[:0]
	for _, r := range records {
		g.rows = append(g.rows, rowState{rec: r.Clone(), classes: make(map[sheet.Field]string)})
	}
	g.ensureSpare()
	g.requestRender()
}
