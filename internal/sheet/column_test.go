package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordCarriesDefaults(t *testing.T) {
	r := NewRecord()

	assert.Equal(t, String(KindAuto), r.Get(FieldType))
	assert.Equal(t, Bool(false), r.Get(FieldEQRef))
	assert.Equal(t, Null{}, r.Get(FieldAmount))
}

func TestRecordSetNullDeletes(t *testing.T) {
	r := NewRecord()
	r.Set(FieldName, String("Water"))
	require.Equal(t, String("Water"), r.Get(FieldName))

	r.Set(FieldName, Null{})
	assert.Equal(t, Null{}, r.Get(FieldName))
	_, present := r[FieldName]
	assert.False(t, present)
}

func TestRecordBlank(t *testing.T) {
	r := NewRecord()
	assert.True(t, r.Blank())

	r.Set(FieldAmount, Number(1))
	assert.False(t, r.Blank())

	r.Set(FieldAmount, Null{})
	assert.True(t, r.Blank())

	// Defaults written back explicitly still count as blank.
	r.Set(FieldEQRef, Bool(false))
	assert.True(t, r.Blank())
}

func TestRecordClone(t *testing.T) {
	r := NewRecord()
	r.Set(FieldName, String("Water"))

	c := r.Clone()
	c.Set(FieldName, String("mutated"))

	assert.Equal(t, String("Water"), r.Get(FieldName))
}

func TestColumnOf(t *testing.T) {
	col := ColumnOf(FieldSource)
	assert.True(t, col.ReadOnly)

	col = ColumnOf(FieldType)
	assert.Equal(t, String(KindAuto), col.Default)

	// Unknown fields come back as a zero column, not an error.
	col = ColumnOf(Field("bogus"))
	assert.Equal(t, Field("bogus"), col.Field)
	assert.False(t, col.ReadOnly)
}

func TestFieldSplit(t *testing.T) {
	head, tail := FieldCAS.Split()
	assert.Equal(t, "id", head)
	assert.Equal(t, "CAS", tail)

	head, tail = FieldAmount.Split()
	assert.Equal(t, "amount", head)
	assert.Empty(t, tail)
}

func TestFieldsMatchesColumns(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, len(Columns))
	assert.Equal(t, FieldStatus, fields[0])
}
