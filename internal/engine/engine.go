package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// Lookup is the compound database capability the engine consumes.
// Implemented by *pubchem.Client in production and by scripted clients in
// tests.
type Lookup interface {
	Lookup(ctx context.Context, kind sheet.Kind, value string) (*pubchem.Compound, error)
}

// Engine is the change dispatcher and propagation rule evaluator.
//
// Thread-safety model:
//   - Edit / EditCells / RemoveRow / Settle: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// All grid mutation happens in the Run goroutine; the rules recurse
// synchronously through the grid's change hook.
type Engine struct {
	grid   *grid.Grid
	db     Lookup
	queue  *eventQueue
	clock  *Clock
	tokens TokenGenerator
	log    *slog.Logger

	// ctx is the Run context; in-flight lookups inherit it.
	ctx context.Context

	// pending counts enqueued-but-unprocessed events plus in-flight
	// lookups. Zero means the sheet is settled.
	pending atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTokenGenerator replaces the request token generator. Tests use
// NewFixedGenerator for deterministic traces.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// New creates an Engine bound to a grid and a lookup client and registers
// its dispatcher on the grid's hooks. The grid must not have other writers.
func New(g *grid.Grid, db Lookup, opts ...Option) *Engine {
	e := &Engine{
		grid:   g,
		db:     db,
		queue:  newEventQueue(),
		clock:  NewClock(),
		tokens: UUIDv7Generator{},
		log:    slog.Default(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}

	g.OnChange(e.dispatch)
	g.OnRowRemoved(e.rowRemoved)
	return e
}

// Edit submits one direct user edit.
func (e *Engine) Edit(row int, field sheet.Field, value sheet.Value) bool {
	return e.EditCells([]grid.Cell{{Row: row, Field: field, Value: value}})
}

// EditCells submits one settled set of direct user edits as a single batch.
func (e *Engine) EditCells(cells []grid.Cell) bool {
	return e.enqueue(Event{Type: EventTypeEdit, Cells: cells, Source: grid.SourceEdit})
}

// RemoveRow submits an explicit row removal.
func (e *Engine) RemoveRow(row int) bool {
	return e.enqueue(Event{Type: EventTypeRemoveRow, Row: row})
}

func (e *Engine) enqueue(ev Event) bool {
	ev.Seq = e.clock.Next()
	e.pending.Add(1)
	if !e.queue.Enqueue(ev) {
		e.pending.Add(-1)
		return false
	}
	return true
}

// Run starts the single-writer event loop. Blocks until the context is
// cancelled or Stop is called.
//
// On event processing failure the error is logged with full context and
// processing continues; nothing in the propagation path is fatal. The worst
// case is a row stuck in an error or searching status, recoverable by a new
// edit.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx = ctx
	e.log.Info("engine starting")

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(event); err != nil {
				e.log.Error("event processing failed",
					"error", err,
					"event_type", event.Type,
					"seq", event.Seq,
				)
			}
			e.pending.Add(-1)
			continue
		}

		select {
		case <-ctx.Done():
			e.log.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// Wakeups can be stale: the dequeue fast path above does
			// not drain the signal. Only a closed and drained queue
			// ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.log.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine by closing the event queue.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Settle blocks until no event is queued and no lookup is in flight, or the
// context expires. Test and host support surface; "settled" is the state
// the derived-cell consistency invariant speaks about.
func (e *Engine) Settle(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		if e.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// QueueLen returns the number of pending events. Used for monitoring and
// tests.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// processEvent routes an event to its handler. Runs only on the Run
// goroutine; every handler mutates the grid inside a batch so the host sees
// one render signal per settled pass.
func (e *Engine) processEvent(ev Event) error {
	switch ev.Type {
	case EventTypeEdit:
		if len(ev.Cells) == 0 {
			return errors.New("edit event without cells")
		}
		e.grid.Batch(func() {
			e.grid.SetCells(ev.Cells, ev.Source)
		})
		return nil

	case EventTypeRemoveRow:
		e.grid.Batch(func() {
			e.grid.RemoveRow(ev.Row)
		})
		return nil

	case EventTypeCompletion:
		if ev.Completion == nil {
			return errors.New("completion event without completion data")
		}
		e.applyCompletion(ev.Completion)
		return nil

	default:
		return fmt.Errorf("unknown event type: %d", ev.Type)
	}
}

// applyCompletion re-enters a lookup result into the propagation path as an
// independent pass. Failures become a status write and touch nothing else.
func (e *Engine) applyCompletion(c *Completion) {
	if c.Err != nil {
		msg := c.Err.Error()
		var le *pubchem.LookupError
		if errors.As(c.Err, &le) {
			msg = le.Message
		}
		e.log.Info("lookup failed",
			"token", c.Token,
			"row", c.Row,
			"kind", c.Kind,
			"query", c.Query,
			"error", c.Err,
		)
		e.grid.Batch(func() {
			e.grid.SetCell(c.Row, sheet.FieldStatus, sheet.Str(sheet.StatusError(msg)), grid.SourceEdit)
		})
		return
	}

	comp := c.Compound
	e.log.Info("lookup completed",
		"token", c.Token,
		"row", c.Row,
		"cid", comp.CID,
		"name", comp.Name,
	)

	e.grid.Batch(func() {
		e.setHighlight(c.Row)
		e.grid.SetCells([]grid.Cell{
			{Row: c.Row, Field: sheet.FieldCAS, Value: strOrNull(comp.CAS)},
			{Row: c.Row, Field: sheet.FieldName, Value: strOrNull(comp.Name)},
			{Row: c.Row, Field: sheet.FieldInChI, Value: strOrNull(comp.InChI)},
			{Row: c.Row, Field: sheet.FieldInChIKey, Value: strOrNull(comp.InChIKey)},
			{Row: c.Row, Field: sheet.FieldCID, Value: sheet.Num(float64(comp.CID))},
			{Row: c.Row, Field: sheet.FieldSMILES, Value: strOrNull(comp.SMILES)},
			{Row: c.Row, Field: sheet.FieldMW, Value: sheet.Num(comp.MolecularWeight)},
			{Row: c.Row, Field: sheet.FieldDensity, Value: comp.Density},
			{Row: c.Row, Field: sheet.FieldSource, Value: strOrNull(comp.SourceURL)},
			{Row: c.Row, Field: sheet.FieldStatus, Value: sheet.Str(sheet.StatusFound)},
		}, SourceSearchFill)
	})
}

func (e *Engine) enqueueCompletion(c *Completion) {
	e.enqueue(Event{Type: EventTypeCompletion, Completion: c})
}

func strOrNull(s string) sheet.Value {
	if s == "" {
		return sheet.Null{}
	}
	return sheet.String(s)
}
