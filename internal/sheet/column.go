package sheet

// Column describes one column of the sheet: field path, header shown by the
// grid widget, default value for fresh rows and whether the user may write
// the cell directly.
type Column struct {
	Field    Field
	Name     string
	Default  Value
	ReadOnly bool
}

// Columns is the fixed column table in declaration order. The order is part
// of the contract: view modes and highlight bookkeeping reference columns by
// field, and persisted rows keep whatever cells they have regardless of
// order, so reordering here only changes presentation.
var Columns = []Column{
	{Field: FieldStatus, Name: "", ReadOnly: true},
	{Field: FieldType, Name: "Type", Default: String(KindAuto)},
	{Field: FieldSearch, Name: "Search"},
	{Field: FieldName, Name: "Name"},
	{Field: FieldAmount, Name: "Amount"},
	{Field: FieldEQ, Name: "Eq"},
	{Field: FieldEQRef, Name: "EqRef", Default: Bool(false)},
	{Field: FieldMolarity, Name: "Molarity"},
	{Field: FieldCAS, Name: "CAS"},
	{Field: FieldCID, Name: "CID"},
	{Field: FieldSMILES, Name: "SMILES"},
	{Field: FieldInChIKey, Name: "InChIKey"},
	{Field: FieldInChI, Name: "InChI"},
	{Field: FieldMW, Name: "MW"},
	{Field: FieldDensity, Name: "Density"},
	{Field: FieldMass, Name: "Mass"},
	{Field: FieldVolume, Name: "Volume"},
	{Field: FieldNotes, Name: "Notes"},
	{Field: FieldSource, Name: "Source", ReadOnly: true},
	{Field: FieldHighlight, Name: "", ReadOnly: true},
}

// Fields returns the column fields in declaration order.
func Fields() []Field {
	fields := make([]Field, len(Columns))
	for i, c := range Columns {
		fields[i] = c.Field
	}
	return fields
}

// ColumnOf returns the column metadata for a field. Unknown fields return a
// zero Column; the grid stores them anyway (reads never fail, writes of
// unknown fields are the caller's own cells).
func ColumnOf(f Field) Column {
	for _, c := range Columns {
		if c.Field == f {
			return c
		}
	}
	return Column{Field: f}
}

// Record is one row's cells, keyed by field path. Cells that were never
// written are simply absent and read as Null.
type Record map[Field]Value

// NewRecord returns a fresh row populated with the schema defaults.
func NewRecord() Record {
	r := make(Record, len(Columns))
	for _, c := range Columns {
		if c.Default != nil {
			r[c.Field] = c.Default
		}
	}
	return r
}

// Get reads a cell; missing cells read as Null.
func (r Record) Get(f Field) Value {
	if v, ok := r[f]; ok && v != nil {
		return v
	}
	return Null{}
}

// Set writes a cell. Null deletes the entry so blank rows stay blank.
func (r Record) Set(f Field, v Value) {
	if IsNull(v) {
		delete(r, f)
		return
	}
	r[f] = v
}

// Blank reports whether the row differs from a fresh default row in no cell.
func (r Record) Blank() bool {
	for _, c := range Columns {
		def := c.Default
		if def == nil {
			def = Null{}
		}
		if !Equal(r.Get(c.Field), def) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
