package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nush-sh/nush/internal/script/parser"
)

// ValueType represents the type of a runtime value
type ValueType int

const (
	// ValueTypeNull represents the absence of a value
	ValueTypeNull ValueType = iota
	// ValueTypeInt represents an integer value
	ValueTypeInt
	// ValueTypeFloat represents a float value
	ValueTypeFloat
	// ValueTypeString represents a string value
	ValueTypeString
	// ValueTypeBool represents a boolean value
	ValueTypeBool
	// ValueTypeList represents a list value
	ValueTypeList
	// ValueTypeRecord represents a record value
	ValueTypeRecord
	// ValueTypeTable represents a table value
	ValueTypeTable
	// ValueTypeClosure represents a closure value
	ValueTypeClosure
)

// String returns the name of the value type
func (vt ValueType) String() string {
	switch vt {
	case ValueTypeNull:
		return "nothing"
	case ValueTypeInt:
		return "int"
	case ValueTypeFloat:
		return "float"
	case ValueTypeString:
		return "string"
	case ValueTypeBool:
		return "bool"
	case ValueTypeList:
		return "list"
	case ValueTypeRecord:
		return "record"
	case ValueTypeTable:
		return "table"
	case ValueTypeClosure:
		return "closure"
	default:
		return "unknown"
	}
}

// Value represents a runtime value in the interpreter
type Value interface {
	Type() ValueType
	String() string
}

// NullValue represents the absence of a value
type NullValue struct{}

func (n *NullValue) Type() ValueType { return ValueTypeNull }
func (n *NullValue) String() string  { return "" }

// IntValue represents an integer value
type IntValue struct {
	Value int64
}

func (i *IntValue) Type() ValueType { return ValueTypeInt }
func (i *IntValue) String() string  { return strconv.FormatInt(i.Value, 10) }

// FloatValue represents a float value
type FloatValue struct {
	Value float64
}

func (f *FloatValue) Type() ValueType { return ValueTypeFloat }
func (f *FloatValue) String() string  { return strconv.FormatFloat(f.Value, 'f', -1, 64) }

// StringValue represents a string value
type StringValue struct {
	Value string
}

func (s *StringValue) Type() ValueType { return ValueTypeString }
func (s *StringValue) String() string  { return s.Value }

// BoolValue represents a boolean value
type BoolValue struct {
	Value bool
}

func (b *BoolValue) Type() ValueType { return ValueTypeBool }
func (b *BoolValue) String() string  { return strconv.FormatBool(b.Value) }

// ListValue represents a list of values
type ListValue struct {
	Items []Value
}

func (l *ListValue) Type() ValueType { return ValueTypeList }
func (l *ListValue) String() string {
	parts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		parts = append(parts, item.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RecordValue represents a record. Keys preserves declaration order; Fields
// holds the values.
type RecordValue struct {
	Keys   []string
	Fields map[string]Value
}

// NewRecord creates an empty record value.
func NewRecord() *RecordValue {
	return &RecordValue{Fields: make(map[string]Value)}
}

// Set adds or replaces a field, keeping declaration order for new keys.
func (r *RecordValue) Set(key string, value Value) {
	if _, ok := r.Fields[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Fields[key] = value
}

// Get returns the value stored under key.
func (r *RecordValue) Get(key string) (Value, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

func (r *RecordValue) Type() ValueType { return ValueTypeRecord }
func (r *RecordValue) String() string {
	parts := make([]string, 0, len(r.Keys))
	for _, k := range r.Keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, r.Fields[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TableValue represents a table: named columns over rows of cells
type TableValue struct {
	Columns []string
	Rows    [][]Value
}

func (t *TableValue) Type() ValueType { return ValueTypeTable }
func (t *TableValue) String() string {
	return fmt.Sprintf("[table %d columns %d rows]", len(t.Columns), len(t.Rows))
}

// Row returns row i as a record, or nil when out of range.
func (t *TableValue) Row(i int) *RecordValue {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	rec := NewRecord()
	for c, col := range t.Columns {
		if c < len(t.Rows[i]) {
			rec.Set(col, t.Rows[i][c])
		}
	}
	return rec
}

// ClosureValue represents a closure: a block plus the environment it captured
type ClosureValue struct {
	Params []string
	Body   *parser.Program
	Env    *Environment
}

func (c *ClosureValue) Type() ValueType { return ValueTypeClosure }
func (c *ClosureValue) String() string  { return "{closure}" }
