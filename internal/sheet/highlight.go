package sheet

import "strings"

// The highlight cell stores the set of fields last filled by a lookup as a
// comma-joined list of field paths. Helpers here keep the encoding in one
// place; the propagation rules only ever add the whole lookup set and remove
// single fields.

// ParseHighlight decodes a highlight cell into the contained fields.
func ParseHighlight(v Value) []Field {
	s, ok := v.(String)
	if !ok || s == "" {
		return nil
	}
	parts := strings.Split(string(s), ",")
	fields := make([]Field, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, Field(p))
		}
	}
	return fields
}

// FormatHighlight encodes a field set into a highlight cell value.
// An empty set encodes as Null so blank rows stay blank.
func FormatHighlight(fields []Field) Value {
	if len(fields) == 0 {
		return Null{}
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return String(strings.Join(parts, ","))
}

// RemoveHighlight returns v with the given field removed from the set.
func RemoveHighlight(v Value, f Field) Value {
	fields := ParseHighlight(v)
	out := fields[:0]
	for _, x := range fields {
		if x != f {
			out = append(out, x)
		}
	}
	return FormatHighlight(out)
}

// HasHighlight reports whether the field is in the highlight set.
func HasHighlight(v Value, f Field) bool {
	return Contains(ParseHighlight(v), f)
}
