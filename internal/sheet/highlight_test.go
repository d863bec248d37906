package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightRoundTrip(t *testing.T) {
	v := FormatHighlight([]Field{FieldCAS, FieldName, FieldMW})

	assert.Equal(t, String("id.CAS,id.Name,prop.mw"), v)
	assert.Equal(t, []Field{FieldCAS, FieldName, FieldMW}, ParseHighlight(v))
}

func TestHighlightEmptySetIsNull(t *testing.T) {
	assert.Equal(t, Null{}, FormatHighlight(nil))
	assert.Nil(t, ParseHighlight(Null{}))
	assert.Nil(t, ParseHighlight(String("")))
}

func TestRemoveHighlight(t *testing.T) {
	v := FormatHighlight([]Field{FieldCAS, FieldName})

	v = RemoveHighlight(v, FieldCAS)
	assert.False(t, HasHighlight(v, FieldCAS))
	assert.True(t, HasHighlight(v, FieldName))

	// Removing the last entry collapses back to Null.
	v = RemoveHighlight(v, FieldName)
	assert.Equal(t, Null{}, v)
}

func TestRemoveHighlightAbsentFieldIsNoop(t *testing.T) {
	v := FormatHighlight([]Field{FieldCAS})
	assert.Equal(t, v, RemoveHighlight(v, FieldMW))
}

func TestStatusError(t *testing.T) {
	s := StatusError("compound not found")
	assert.Equal(t, "❌compound not found", s)

	msg, ok := IsErrorStatus(String(s))
	assert.True(t, ok)
	assert.Equal(t, "compound not found", msg)

	_, ok = IsErrorStatus(String(StatusFound))
	assert.False(t, ok)
	_, ok = IsErrorStatus(Null{})
	assert.False(t, ok)
}
