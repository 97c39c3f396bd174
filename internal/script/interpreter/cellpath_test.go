package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *TableValue {
	return &TableValue{
		Columns: []string{"name", "age"},
		Rows: [][]Value{
			{&StringValue{Value: "Peter"}, &IntValue{Value: 42}},
			{&StringValue{Value: "Vlad"}, &IntValue{Value: 43}},
		},
	}
}

func TestCellPathGetRecordField(t *testing.T) {
	rec := NewRecord()
	rec.Set("name", &StringValue{Value: "Tom"})

	v, ok := CellPathGet(rec, []string{"name"})
	require.True(t, ok)
	assert.Equal(t, "Tom", v.String())

	_, ok = CellPathGet(rec, []string{"missing"})
	assert.False(t, ok)
}

func TestCellPathGetEmptyPathIsIdentity(t *testing.T) {
	rec := NewRecord()
	v, ok := CellPathGet(rec, nil)
	require.True(t, ok)
	assert.Same(t, Value(rec), v)
}

func TestCellPathGetTableColumn(t *testing.T) {
	v, ok := CellPathGet(sampleTable(), []string{"age"})
	require.True(t, ok)

	list, isList := v.(*ListValue)
	require.True(t, isList)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "42", list.Items[0].String())
}

func TestCellPathGetTableRow(t *testing.T) {
	v, ok := CellPathGet(sampleTable(), []string{"1", "name"})
	require.True(t, ok)
	assert.Equal(t, "Vlad", v.String())

	_, ok = CellPathGet(sampleTable(), []string{"9"})
	assert.False(t, ok)
}

func TestCellPathGetListIndex(t *testing.T) {
	list := &ListValue{Items: []Value{&IntValue{Value: 5}, &IntValue{Value: 6}}}

	v, ok := CellPathGet(list, []string{"0"})
	require.True(t, ok)
	assert.Equal(t, "5", v.String())

	_, ok = CellPathGet(list, []string{"2"})
	assert.False(t, ok)
}

func TestCellPathGetProjectsThroughList(t *testing.T) {
	a := NewRecord()
	a.Set("x", &IntValue{Value: 1})
	b := NewRecord()
	b.Set("x", &IntValue{Value: 2})
	list := &ListValue{Items: []Value{a, b}}

	v, ok := CellPathGet(list, []string{"x"})
	require.True(t, ok)
	assert.Equal(t, "[1, 2]", v.String())
}

func TestCellPathGetScalarDeadEnds(t *testing.T) {
	_, ok := CellPathGet(&IntValue{Value: 3}, []string{"x"})
	assert.False(t, ok)
}
