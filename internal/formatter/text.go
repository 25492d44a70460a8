package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil {
				return err
			}
		}
		if err := f.FormatTable(table, s); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable writes one table. s may be nil.
func (f *TextFormatter) FormatTable(table schema.Table, s *schema.Schema) error {
	var b strings.Builder

	pk := ""
	if len(table.PrimaryKey) > 0 {
		pk = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	fmt.Fprintf(&b, "TABLE %s%s\n", table.Name, pk)

	for _, col := range table.Columns {
		fmt.Fprintf(&b, "  %s\n", textColumn(col))
	}

	if len(table.Relations) > 0 {
		b.WriteString("\n  RELATIONS:\n")
		for _, rel := range table.Relations {
			fmt.Fprintf(&b, "    %s → %s.%s (%s%s)\n",
				rel.SourceColumn, rel.TargetTable, rel.TargetColumn, rel.Cardinality, onDelete(rel))
		}
	}

	if len(table.Indexes) > 0 {
		b.WriteString("\n  INDEXES:\n")
		for _, idx := range table.Indexes {
			unique := ""
			if idx.IsUnique {
				unique = " UNIQUE"
			}
			fmt.Fprintf(&b, "    %s (%s)%s\n", idx.Name, strings.Join(idx.Columns, ", "), unique)
		}
	}

	if incoming := incomingRelations(table.Name, s); len(incoming) > 0 {
		b.WriteString("\n  REFERENCED BY:\n")
		for _, in := range incoming {
			fmt.Fprintf(&b, "    %s.%s%s\n", in.SourceTable, in.SourceColumn, onDelete(in.Relation))
		}
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

func textColumn(col schema.Column) string {
	parts := []string{col.Name + ":", typeWithValues(col)}

	if col.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.DefaultValue != nil {
		parts = append(parts, "DEFAULT "+*col.DefaultValue)
	}
	return strings.Join(parts, " ")
}
