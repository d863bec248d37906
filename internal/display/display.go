// Package display renders cell values for presentation: quantity scaling,
// significant figures, status glyphs and link labels. Pure string
// formatting; the engine and grid never depend on it.
package display

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

// Unit is a three-step unit ladder around a base unit. Quantities scale one
// step down or up so the shown number lands in [1, 1000) when possible.
type Unit struct {
	Micro string
	Base  string
	Kilo  string
}

var (
	// UnitAmount scales substance amounts around mmol.
	UnitAmount = Unit{Micro: "µmol", Base: "mmol", Kilo: "mol"}
	// UnitMass scales masses around grams.
	UnitMass = Unit{Micro: "mg", Base: "g", Kilo: "kg"}
	// UnitVolume scales volumes around millilitres.
	UnitVolume = Unit{Micro: "µL", Base: "mL", Kilo: "L"}
)

// SigFigs formats n with the given number of significant figures, using
// exponent notation only when the plain form would be unreasonable.
func SigFigs(n float64, figs int) string {
	return strconv.FormatFloat(n, 'g', figs, 64)
}

// Quantity renders a stored quantity cell with unit scaling and the
// precision's significant figures. N/A renders as-is, unset cells render
// empty.
func Quantity(v sheet.Value, u Unit, p sheet.Precision) string {
	if sheet.IsNA(v) {
		return string(sheet.NA)
	}
	n, ok := sheet.AsNumber(v)
	if !ok {
		return ""
	}

	unit := u.Base
	abs := math.Abs(n)
	switch {
	case abs > 0 && abs < 1:
		n *= 1000
		unit = u.Micro
	case abs >= 1000:
		n /= 1000
		unit = u.Kilo
	}
	return SigFigs(n, int(p)) + " " + unit
}

// Equivalent renders an eq cell: significant figures, no unit.
func Equivalent(v sheet.Value, p sheet.Precision) string {
	n, ok := sheet.AsNumber(v)
	if !ok {
		return ""
	}
	return SigFigs(n, int(p))
}

// MolecularWeight renders prop.mw with two fixed decimals in g/mol.
func MolecularWeight(v sheet.Value) string {
	n, ok := sheet.AsNumber(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.2f g/mol", n)
}

// Density renders prop.density with three fixed decimals in g/cm³.
// The unavailable sentinel renders as-is.
func Density(v sheet.Value) string {
	if sheet.IsNA(v) {
		return string(sheet.NA)
	}
	n, ok := sheet.AsNumber(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.3f g/cm³", n)
}

// Status splits a status cell into the glyph shown in the narrow status
// column and the full text shown as its tooltip.
func Status(v sheet.Value) (glyph, text string) {
	s, ok := v.(sheet.String)
	if !ok || s == "" {
		return "", ""
	}
	runes := []rune(string(s))
	return string(runes[0]), string(s)
}

// SourceLabel derives the link label for a source URL: the host without a
// leading "www.". Unparseable URLs label as the raw string.
func SourceLabel(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
