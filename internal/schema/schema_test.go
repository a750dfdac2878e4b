// File path: internal/schema/schema_test.go
package schema

import (
	"strings"
	"testing"
)

func TestFormatDeterministicOrder(t *testing.T) {
	ctx := Context{
		"zebra": {Columns: []Column{{Name: "id", Type: "integer"}}},
		"apple": {Columns: []Column{{Name: "id", Type: "integer"}}},
	}
	out := ctx.Format()
	if strings.Index(out, "Table: apple") > strings.Index(out, "Table: zebra") {
		t.Fatalf("expected sorted table order, got:\n%s", out)
	}
	for i := 0; i < 5; i++ {
		if ctx.Format() != out {
			t.Fatal("expected identical output across calls")
		}
	}
}

func TestFormatIncludesDescriptions(t *testing.T) {
	ctx := Context{
		"orders": {
			Description: "Customer orders",
			Columns: []Column{
				{Name: "id", Type: "integer", Description: "primary key"},
				{Name: "total", Type: "numeric"},
			},
		},
	}
	out := ctx.Format()
	for _, want := range []string{
		"Table: orders",
		"Description: Customer orders",
		"  - id (integer) - primary key",
		"  - total (numeric)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatEmptyContext(t *testing.T) {
	if out := (Context{}).Format(); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
