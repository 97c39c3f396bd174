package interpreter

import "strconv"

// CellPathGet descends through value following dot-path segments. A segment
// is a record field name, a table column name, or an integer index into a
// list or table. Descent through a list of records by field name projects
// the field across the list.
func CellPathGet(value Value, segs []string) (Value, bool) {
	for _, seg := range segs {
		next, ok := cellPathStep(value, seg)
		if !ok {
			return nil, false
		}
		value = next
	}
	return value, true
}

func cellPathStep(value Value, seg string) (Value, bool) {
	switch v := value.(type) {
	case *RecordValue:
		return v.Get(seg)
	case *TableValue:
		if idx, err := strconv.Atoi(seg); err == nil {
			row := v.Row(idx)
			if row == nil {
				return nil, false
			}
			return row, true
		}
		col := -1
		for c, name := range v.Columns {
			if name == seg {
				col = c
				break
			}
		}
		if col < 0 {
			return nil, false
		}
		items := make([]Value, 0, len(v.Rows))
		for _, row := range v.Rows {
			if col < len(row) {
				items = append(items, row[col])
			} else {
				items = append(items, &NullValue{})
			}
		}
		return &ListValue{Items: items}, true
	case *ListValue:
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= len(v.Items) {
				return nil, false
			}
			return v.Items[idx], true
		}
		items := make([]Value, 0, len(v.Items))
		for _, item := range v.Items {
			field, ok := cellPathStep(item, seg)
			if !ok {
				return nil, false
			}
			items = append(items, field)
		}
		return &ListValue{Items: items}, true
	}
	return nil, false
}
