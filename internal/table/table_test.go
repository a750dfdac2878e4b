// File path: internal/table/table_test.go
package table

import "testing"

func TestNumericColumns(t *testing.T) {
	tbl := &Table{
		Columns: []string{"region", "revenue", "orders", "mixed"},
		Rows: []Row{
			{"region": "North", "revenue": 100.5, "orders": int64(3), "mixed": 1.0},
			{"region": "South", "revenue": 80.0, "orders": int64(2), "mixed": "two"},
		},
	}
	cols := tbl.NumericColumns()
	if len(cols) != 2 || cols[0] != "revenue" || cols[1] != "orders" {
		t.Fatalf("unexpected numeric columns: %v", cols)
	}
}

func TestNumericColumnsIgnoresNulls(t *testing.T) {
	tbl := &Table{
		Columns: []string{"v"},
		Rows:    []Row{{"v": nil}, {"v": 2.0}},
	}
	if cols := tbl.NumericColumns(); len(cols) != 1 {
		t.Fatalf("expected column with nulls to stay numeric, got %v", cols)
	}
	allNull := &Table{Columns: []string{"v"}, Rows: []Row{{"v": nil}}}
	if cols := allNull.NumericColumns(); len(cols) != 0 {
		t.Fatalf("expected all-null column to be excluded, got %v", cols)
	}
}

func TestFloatCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{float32(2), 2, true},
		{int(3), 3, true},
		{int32(4), 4, true},
		{int64(5), 5, true},
		{uint64(6), 6, true},
		{true, 1, true},
		{false, 0, true},
		{"7", 0, false},
		{nil, 0, false},
		{[]byte("8"), 0, false},
	}
	for _, c := range cases {
		got, ok := Float(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("Float(%v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFloatsSkipsNonNumeric(t *testing.T) {
	tbl := &Table{
		Columns: []string{"v"},
		Rows:    []Row{{"v": 1.0}, {"v": "skip"}, {"v": nil}, {"v": int64(2)}},
	}
	vals := tbl.Floats("v")
	if len(vals) != 2 || vals[0] != 1.0 || vals[1] != 2.0 {
		t.Fatalf("unexpected floats: %v", vals)
	}
}

func TestEmptyAndLen(t *testing.T) {
	var nilTable *Table
	if !nilTable.Empty() || nilTable.Len() != 0 {
		t.Fatal("nil table must be empty with zero length")
	}
	tbl := &Table{Rows: []Row{{"a": 1}}}
	if tbl.Empty() || tbl.Len() != 1 {
		t.Fatal("populated table must not be empty")
	}
}

func TestHasColumnFallsBackToRows(t *testing.T) {
	tbl := &Table{Rows: []Row{{"orphan": 1}}}
	if !tbl.HasColumn("orphan") {
		t.Fatal("expected column present in rows to be found")
	}
	if tbl.HasColumn("missing") {
		t.Fatal("expected absent column to be reported missing")
	}
}
