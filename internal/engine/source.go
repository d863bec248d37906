package engine

import "github.com/stoichtab/stoichtab/internal/grid"

// Write-origin tags. Every rule writes with its own tag and checks incoming
// tags before firing; this enumeration is the whole loop-prevention
// mechanism. "edit" (grid.SourceEdit) marks direct user edits.
const (
	// SourceTypeStatus tags writes of the Type→Status rule.
	SourceTypeStatus grid.Source = "setTypeStatus"

	// SourceSearchFill tags everything the search rule writes: the
	// searching status, the mass/volume reset, and the batched result
	// fields of a successful lookup.
	SourceSearchFill grid.Source = "searchFill"

	// SourceHighlight tags writes of the highlight cell itself, both when
	// the lookup marks its fields and when a manual edit removes one.
	SourceHighlight grid.Source = "setHighlight"

	// SourceGuard tags the revert writes of the source-field guard.
	SourceGuard grid.Source = "sourceGuard"

	// SourceUpdateProperties tags recomputed mass/volume writes.
	SourceUpdateProperties grid.Source = "updateProperties"

	// SourceUpdateAmount tags amount writes recomputed from mass/volume.
	SourceUpdateAmount grid.Source = "updateAmount"

	// SourceEQRef tags the batched reference-flag rewrite that keeps at
	// most one reference row.
	SourceEQRef grid.Source = "eqRefUpdate"

	// SourceUpdateEQs tags recomputed equivalent/amount writes.
	SourceUpdateEQs grid.Source = "updateEQs"
)
