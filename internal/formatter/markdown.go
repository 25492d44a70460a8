package formatter

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	if _, err := fmt.Fprint(f.writer, "# Database Schema\n\n"); err != nil {
		return err
	}
	for _, table := range s.Tables {
		if err := f.FormatTable(table, s); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable writes one table. s is used to list the tables referencing
// it and may be nil.
func (f *MarkdownFormatter) FormatTable(table schema.Table, s *schema.Schema) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", table.Name)

	b.WriteString("### Columns\n\n")
	for _, col := range table.Columns {
		line := fmt.Sprintf("- **%s:** %s", col.Name, typeWithValues(col))
		if c := markdownConstraints(col, table.PrimaryKey); c != "" {
			line += ", " + c
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(table.Relations) > 0 {
		b.WriteString("### References\n\n")
		for _, rel := range table.Relations {
			fmt.Fprintf(&b, "- %s → %s.%s (%s%s)\n",
				rel.SourceColumn, rel.TargetTable, rel.TargetColumn, rel.Cardinality, onDelete(rel))
		}
		b.WriteString("\n")
	}

	if len(table.Indexes) > 0 {
		b.WriteString("### Indexes\n\n")
		for _, idx := range table.Indexes {
			unique := ""
			if idx.IsUnique {
				unique = ", unique"
			}
			fmt.Fprintf(&b, "- %s on (%s)%s\n", idx.Name, strings.Join(idx.Columns, ", "), unique)
		}
		b.WriteString("\n")
	}

	if incoming := incomingRelations(table.Name, s); len(incoming) > 0 {
		b.WriteString("### Referenced by\n\n")
		for _, in := range incoming {
			fmt.Fprintf(&b, "- %s.%s → %s (%s%s)\n",
				in.SourceTable, in.SourceColumn, in.TargetColumn, in.Cardinality, onDelete(in.Relation))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

func markdownConstraints(col schema.Column, primaryKey []string) string {
	var constraints []string

	if slices.Contains(primaryKey, col.Name) {
		constraints = append(constraints, "PK")
	}
	if col.IsUnique {
		constraints = append(constraints, "UNIQUE")
	}
	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	if col.DefaultValue != nil {
		constraints = append(constraints, "DEFAULT "+*col.DefaultValue)
	}
	// Enum checks are already shown as the value list
	if col.CheckConstraint != nil && len(col.EnumValues) == 0 {
		constraints = append(constraints, fmt.Sprintf("CHECK(%s)", *col.CheckConstraint))
	}
	return strings.Join(constraints, ", ")
}
