package sheet

// ViewMode selects which columns the grid widget shows. The engine never
// reads it; it travels with the persisted document so a reloaded sheet comes
// back in the same view.
type ViewMode string

const (
	ViewMinimal  ViewMode = "Minimal"
	ViewStandard ViewMode = "Standard"
	ViewExtended ViewMode = "Extended"
	ViewAll      ViewMode = "All"
)

var viewMinimal = []Field{
	FieldName, FieldAmount, FieldEQ, FieldMW, FieldMass, FieldVolume,
}

var viewStandard = append(append([]Field{}, viewMinimal...),
	FieldStatus, FieldType, FieldSearch, FieldEQRef, FieldMolarity,
	FieldCAS, FieldDensity, FieldNotes, FieldSource,
)

var viewExtended = append(append([]Field{}, viewStandard...),
	FieldCID, FieldSMILES, FieldInChIKey, FieldInChI,
)

// ViewFields returns the visible fields for a view mode. Unknown modes fall
// back to Standard.
func ViewFields(m ViewMode) []Field {
	switch m {
	case ViewMinimal:
		return viewMinimal
	case ViewExtended:
		return viewExtended
	case ViewAll:
		return Fields()
	default:
		return viewStandard
	}
}

// NextView cycles Standard → Minimal → Extended → Standard, the order the
// view toggle walks through.
func NextView(m ViewMode) ViewMode {
	switch m {
	case ViewStandard:
		return ViewMinimal
	case ViewMinimal:
		return ViewExtended
	default:
		return ViewStandard
	}
}

// ValidView reports whether m is a known view mode.
func ValidView(m ViewMode) bool {
	switch m {
	case ViewMinimal, ViewStandard, ViewExtended, ViewAll:
		return true
	}
	return false
}

// Precision is the display precision for derived quantities, in significant
// figures. Like ViewMode it is carried in the persisted document.
type Precision int

const (
	PrecisionRegular Precision = 3
	PrecisionHigh    Precision = 4
)

// ValidPrecision reports whether p is a supported precision.
func ValidPrecision(p Precision) bool {
	return p == PrecisionRegular || p == PrecisionHigh
}

// NextPrecision toggles between the two supported precisions.
func NextPrecision(p Precision) Precision {
	if p == PrecisionRegular {
		return PrecisionHigh
	}
	return PrecisionRegular
}
