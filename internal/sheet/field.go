package sheet

import "strings"

// Field is the dotted property path of a column ("id.CAS", "prop.mw", ...).
// The paths are fixed; they double as the JSON keys of persisted rows.
type Field string

const (
	FieldStatus   Field = "status"
	FieldType     Field = "type"
	FieldSearch   Field = "search"
	FieldName     Field = "id.Name"
	FieldAmount   Field = "amount"
	FieldEQ       Field = "eq.val"
	FieldEQRef    Field = "eq.ref"
	FieldMolarity Field = "molarity"

	FieldCAS      Field = "id.CAS"
	FieldCID      Field = "id.CID"
	FieldSMILES   Field = "id.SMILES"
	FieldInChIKey Field = "id.InChIKey"
	FieldInChI    Field = "id.InChI"

	FieldMW      Field = "prop.mw"
	FieldDensity Field = "prop.density"
	FieldMass    Field = "prop.mass"
	FieldVolume  Field = "prop.volume"

	FieldNotes     Field = "notes"
	FieldSource    Field = "source"
	FieldHighlight Field = "highlight"
)

// Split returns the top-level key and the nested key (empty for flat fields).
// "id.CAS" splits into ("id", "CAS"); "amount" into ("amount", "").
func (f Field) Split() (string, string) {
	head, tail, _ := strings.Cut(string(f), ".")
	return head, tail
}

// SearchFilled lists the fields written by a successful lookup, in the order
// they are batch-written. Writing any of them from another source clears
// that field's highlight.
var SearchFilled = []Field{
	FieldCAS,
	FieldName,
	FieldInChI,
	FieldInChIKey,
	FieldCID,
	FieldSMILES,
	FieldMW,
	FieldDensity,
	FieldSource,
}

// QuantityInputs are the fields whose change recomputes mass and volume.
var QuantityInputs = []Field{FieldAmount, FieldMolarity, FieldMW, FieldDensity}

// MassVolume are the derived fields whose change recomputes the amount.
var MassVolume = []Field{FieldMass, FieldVolume}

// EquivTriggers are the fields whose change recomputes equivalents.
var EquivTriggers = []Field{FieldAmount, FieldEQ, FieldEQRef}

// Contains reports whether f is in fields.
func Contains(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
