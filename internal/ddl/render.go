package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

// CreateTable returns the statements that create t and its indexes
func CreateTable(d Dialect, t *Table) []string {
	var defs []string
	for _, c := range t.Columns {
		defs = append(defs, columnDef(d, c))
	}

	for _, c := range t.Columns {
		if c.IsUnique {
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)",
				d.Quote(UniqueName(t.Name, c.Name)), d.Quote(c.Name)))
		}
		if c.Kind == KindEnum {
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s IN (%s))",
				d.Quote(CheckName(t.Name, c.Name)), d.Quote(c.Name), quoteValues(c.Values)))
		}
	}

	for _, c := range t.References() {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			d.Quote(ForeignKeyName(t.Name, c.Name)), d.Quote(c.Name),
			d.Quote(c.Ref.Table), d.Quote(c.Ref.Column), c.Ref.OnDelete))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)%s",
		d.Quote(t.Name), strings.Join(defs, ",\n\t"), d.TableOptions())}

	for _, idx := range t.Indexes {
		stmts = append(stmts, CreateIndex(d, t.Name, idx))
	}
	return stmts
}

// CreateIndex returns the CREATE INDEX statement for idx
func CreateIndex(d Dialect, table string, idx Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = d.Quote(c)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, d.Quote(idx.Name), d.Quote(table), strings.Join(cols, ", "))
}

// DropTable returns the DROP TABLE statement for t. Indexes go with the table.
func DropTable(d Dialect, t *Table) string {
	return "DROP TABLE " + d.Quote(t.Name)
}

// DropTableIfExists is DropTable for a table that may not have been created
func DropTableIfExists(d Dialect, t *Table) string {
	return "DROP TABLE IF EXISTS " + d.Quote(t.Name)
}

func columnDef(d Dialect, c *Column) string {
	parts := []string{d.Quote(c.Name), d.ColumnType(c)}
	if c.Kind == KindID {
		return strings.Join(parts, " ")
	}
	if !c.IsNullable {
		parts = append(parts, "NOT NULL")
	}
	if def := defaultExpr(d, c); def != "" {
		parts = append(parts, "DEFAULT "+def)
	}
	return strings.Join(parts, " ")
}

func defaultExpr(d Dialect, c *Column) string {
	if c.DefaultNow {
		if c.Kind == KindDate {
			if d.Name() == MySQLName {
				return "(CURRENT_DATE)"
			}
			return "CURRENT_DATE"
		}
		return d.CurrentTimestamp()
	}
	switch v := c.DefaultVal.(type) {
	case nil:
		return ""
	case bool:
		return d.BoolLiteral(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return quoteLiteral(v)
	default:
		return quoteLiteral(fmt.Sprint(v))
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteLiteral(v)
	}
	return strings.Join(quoted, ", ")
}

// Describe converts a declared table into the introspection model so it can
// be formatted or compared against a live database
func Describe(d Dialect, t *Table) schema.Table {
	out := schema.Table{Name: t.Name}
	for _, c := range t.Columns {
		col := schema.Column{
			Name:     c.Name,
			Type:     d.ColumnType(c),
			Nullable: c.IsNullable,
			IsUnique: c.IsUnique,
		}
		if c.Kind == KindID {
			col.Type = strings.Fields(col.Type)[0]
			out.PrimaryKey = append(out.PrimaryKey, c.Name)
		}
		if def := defaultExpr(d, c); def != "" {
			col.DefaultValue = &def
		}
		if c.Kind == KindEnum {
			col.EnumValues = append([]string(nil), c.Values...)
			check := fmt.Sprintf("%s IN (%s)", c.Name, quoteValues(c.Values))
			col.CheckConstraint = &check
		}
		out.Columns = append(out.Columns, col)
	}
	for _, c := range t.References() {
		out.Relations = append(out.Relations, schema.Relation{
			SourceColumn: c.Name,
			TargetTable:  c.Ref.Table,
			TargetColumn: c.Ref.Column,
			Cardinality:  "N:1",
			OnDelete:     string(c.Ref.OnDelete),
		})
	}
	for _, idx := range t.Indexes {
		out.Indexes = append(out.Indexes, schema.Index{
			Name:     idx.Name,
			Columns:  append([]string(nil), idx.Columns...),
			IsUnique: idx.Unique,
		})
	}
	return out
}
