package document

import (
	"encoding/json"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

// Document is a decoded sheet file: the substance rows plus the two display
// settings that travel with them.
type Document struct {
	Rows      []sheet.Record
	ViewMode  sheet.ViewMode
	Precision sheet.Precision
}

// New returns an empty document with the default display settings.
func New() *Document {
	return &Document{
		ViewMode:  sheet.ViewStandard,
		Precision: sheet.PrecisionRegular,
	}
}

// Encode serializes the document as the three-element array format.
func Encode(doc *Document) ([]byte, error) {
	rows := make([]map[string]any, len(doc.Rows))
	for i, r := range doc.Rows {
		rows[i] = recordToNested(r)
	}
	return json.Marshal([]any{rows, string(doc.ViewMode), int(doc.Precision)})
}

// Decode parses and validates a persisted document. It returns either a
// complete Document or a ParseErrors listing every violation; it never
// returns a partial result. Older one- and two-element files decode with
// default display settings.
func Decode(data []byte) (*Document, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		if _, ok := err.(*json.SyntaxError); ok {
			return nil, ParseErrors{{Code: ErrBadJSON, Message: err.Error()}}
		}
		return nil, ParseErrors{{Code: ErrBadShape, Message: "document is not a JSON array"}}
	}
	if len(arr) == 0 || len(arr) > 3 {
		return nil, ParseErrors{{
			Code:    ErrBadShape,
			Message: "document must be [rows], [rows, viewMode] or [rows, viewMode, precision]",
		}}
	}

	var errs ParseErrors

	var rawRows []any
	if err := json.Unmarshal(arr[0], &rawRows); err != nil {
		return nil, ParseErrors{{Code: ErrBadShape, Field: "rows", Message: "rows element is not an array"}}
	}

	viewMode := sheet.ViewStandard
	if len(arr) > 1 {
		var s string
		if err := json.Unmarshal(arr[1], &s); err != nil {
			errs = append(errs, ParseError{Code: ErrBadViewMode, Field: "viewMode", Message: "view mode is not a string"})
		} else if !sheet.ValidView(sheet.ViewMode(s)) {
			errs = append(errs, ParseError{Code: ErrBadViewMode, Field: "viewMode", Message: "unknown view mode " + s})
		} else {
			viewMode = sheet.ViewMode(s)
		}
	}

	precision := sheet.PrecisionRegular
	if len(arr) > 2 {
		var p int
		if err := json.Unmarshal(arr[2], &p); err != nil {
			errs = append(errs, ParseError{Code: ErrBadPrecision, Field: "precision", Message: "precision is not an integer"})
		} else if !sheet.ValidPrecision(sheet.Precision(p)) {
			errs = append(errs, ParseError{Code: ErrBadPrecision, Field: "precision", Message: "unsupported precision"})
		} else {
			precision = sheet.Precision(p)
		}
	}

	errs = append(errs, validateSchema(map[string]any{
		"rows":      rawRows,
		"viewMode":  string(viewMode),
		"precision": int(precision),
	})...)
	if len(errs) > 0 {
		return nil, errs
	}

	doc := &Document{ViewMode: viewMode, Precision: precision}
	for _, raw := range rawRows {
		m, _ := raw.(map[string]any)
		doc.Rows = append(doc.Rows, nestedToRecord(m))
	}
	return doc, nil
}

// recordToNested regroups a flat record into the nested persisted shape.
// Unset cells are omitted; the nested group objects only appear when they
// have at least one member.
func recordToNested(r sheet.Record) map[string]any {
	out := make(map[string]any)
	for _, f := range sheet.Fields() {
		v := r.Get(f)
		if sheet.IsNull(v) {
			continue
		}
		head, tail := f.Split()
		if tail == "" {
			out[head] = sheet.ToGo(v)
			continue
		}
		group, ok := out[head].(map[string]any)
		if !ok {
			group = make(map[string]any)
			out[head] = group
		}
		group[tail] = sheet.ToGo(v)
	}
	return out
}

// nestedToRecord flattens a decoded row object back into a record. Keys
// outside the column schema are dropped; the schema validation has already
// rejected them anyway.
func nestedToRecord(m map[string]any) sheet.Record {
	r := sheet.NewRecord()
	for _, f := range sheet.Fields() {
		head, tail := f.Split()
		raw, ok := m[head]
		if !ok {
			continue
		}
		if tail != "" {
			group, isMap := raw.(map[string]any)
			if !isMap {
				continue
			}
			raw, ok = group[tail]
			if !ok {
				continue
			}
		}
		if raw == nil {
			continue
		}
		r.Set(f, sheet.FromGo(raw))
	}
	return r
}
