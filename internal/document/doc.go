// Package document implements sheet persistence.
//
// A persisted document is a three-element JSON array: the row list, the view
// mode and the display precision. Rows serialize in the nested shape of the
// column schema, grouping the dotted field paths ("id.CAS" becomes
// {"id": {"CAS": ...}}); unset cells are omitted entirely.
//
// Decoding validates against an embedded CUE schema before any record is
// built, and collects every violation instead of failing on the first, so a
// rejected document reports all of its problems at once. Loading is
// all-or-nothing: Decode either returns a complete Document or an error,
// and callers swap the live sheet only on success.
package document
