// File path: internal/schema/schema.go

// Package schema describes the tables a data source exposes, as text for
// grounding SQL generation. It is caller-supplied and never validated against
// the live database.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Column is one described column of a table.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Table is one described table.
type Table struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []Column `json:"columns" yaml:"columns"`
}

// Context maps table name to its description. Immutable per request.
type Context map[string]Table

// Format renders the context as the deterministic human-readable block fed to
// the SQL generation prompt. Tables are emitted in sorted name order so the
// same context always produces the same prompt.
func (c Context) Format() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		table := c[name]
		fmt.Fprintf(&out, "Table: %s\n", name)
		if table.Description != "" {
			fmt.Fprintf(&out, "Description: %s\n", table.Description)
		}
		out.WriteString("Columns:\n")
		for _, col := range table.Columns {
			if col.Description != "" {
				fmt.Fprintf(&out, "  - %s (%s) - %s\n", col.Name, col.Type, col.Description)
			} else {
				fmt.Fprintf(&out, "  - %s (%s)\n", col.Name, col.Type)
			}
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}
