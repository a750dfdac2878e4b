// File path: internal/table/table.go

// Package table holds in-memory tabular query results. Tables are ephemeral:
// they exist per request or per alert evaluation and are never persisted
// here. Row order always matches the order the database returned.
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Table is an ordered sequence of rows plus the column order reported by the
// driver.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the values of one column in row order. Missing cells come
// back as nil.
func (t *Table) Column(name string) []any {
	if t == nil {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}

// HasColumn reports whether any row carries the named column.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	for _, row := range t.Rows {
		if _, ok := row[name]; ok {
			return true
		}
	}
	return false
}

// NumericColumns lists the columns whose non-null values are all numeric, in
// the driver's column order.
func (t *Table) NumericColumns() []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, col := range t.Columns {
		numeric := false
		mixed := false
		for _, row := range t.Rows {
			v := row[col]
			if v == nil {
				continue
			}
			if _, ok := Float(v); ok {
				numeric = true
			} else {
				mixed = true
				break
			}
		}
		if numeric && !mixed {
			out = append(out, col)
		}
	}
	return out
}

// Floats returns the non-null numeric values of a column in row order.
func (t *Table) Floats(name string) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := Float(row[name]); ok {
			out = append(out, v)
		}
	}
	return out
}

// Float coerces a driver-returned scalar to float64. Strings are not
// coerced: a text column full of digits stays textual.
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// String renders a cell for display.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
