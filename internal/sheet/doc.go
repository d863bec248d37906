// Package sheet defines the data model for the stoichiometry sheet.
//
// A sheet is an ordered list of rows, one per chemical substance. Each row
// stores its cells in a flat Record keyed by Field, where a Field is the
// dotted property path of the original column schema ("id.CAS", "prop.mw",
// "eq.val", ...). Cell contents are Values: a small closed set of variants
// (null, number, string, bool) so that identifier text, numeric quantities,
// the "N/A" sentinel and the reference checkbox can all live in the same
// store without reflection.
//
// The package also carries the fixed column metadata: declaration order,
// headers, defaults, read-only flags, the field groups the propagation rules
// trigger on, and the view-mode column sets. All of it is known at design
// time; nothing here is user-extensible.
package sheet
