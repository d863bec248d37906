// Package engine implements the reactive recomputation engine of the sheet:
// the change dispatcher and the fixed set of propagation rules that keep the
// derived quantity cells consistent on every edit.
//
// ARCHITECTURE:
//
// Single-writer event loop:
// All grid mutation and rule evaluation happen in the one goroutine running
// Engine.Run. External entry points (Edit, EditCells, RemoveRow, lookup
// completions) enqueue events into a FIFO queue; the loop dequeues one event
// at a time and applies it inside a grid batch. This gives:
//   - a fixed, observable rule evaluation order per change
//   - no locks around the row state store
//   - strict ordering of host edits
//
// Rule evaluation:
// This is not a general dependency graph. Each rule is a fixed
// (trigger-field-set, effect) edge, applied in declaration order to every
// change of a settled write set. Every rule-originated write carries the
// rule's source tag, and a rule refuses to fire on writes carrying its own
// tag (or, for inverse pairs like mass/volume and amount, its counterpart's
// tag). Cycles terminate by tag comparison plus the grid's suppression of
// writes that do not change the stored value, never by topological sort.
//
// The asynchronous compound lookup is the only suspension point. The search
// rule starts the lookup on a separate goroutine and its result re-enters
// the loop as a completion event, an independent propagation pass. In-flight
// lookups are never cancelled; a stale response still applies under per-row
// last-write-wins semantics (an accepted race, observable through the
// request token in the logs).
package engine
