package migrations

import (
	"strings"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/schema"
)

// Target is what a constraint name resolves to
type Target struct {
	Table   string
	Columns []string
	Kind    dberr.Kind
	Allowed []string
}

// Catalog indexes the declared tables and their named constraints
type Catalog struct {
	tables      []*ddl.Table
	byName      map[string]*ddl.Table
	constraints map[string]Target
}

// NewCatalog builds a catalog over the tables created by list, in order
func NewCatalog(list []Migration) *Catalog {
	c := &Catalog{
		byName:      make(map[string]*ddl.Table),
		constraints: make(map[string]Target),
	}
	for _, mig := range list {
		for _, t := range mig.Tables {
			c.tables = append(c.tables, t)
			c.byName[t.Name] = t
			c.indexConstraints(t)
		}
	}
	return c
}

func (c *Catalog) indexConstraints(t *ddl.Table) {
	for _, col := range t.Columns {
		cols := []string{col.Name}
		if col.IsUnique {
			c.constraints[ddl.UniqueName(t.Name, col.Name)] = Target{Table: t.Name, Columns: cols, Kind: dberr.KindUnique}
		}
		if col.Kind == ddl.KindEnum {
			c.constraints[ddl.CheckName(t.Name, col.Name)] = Target{Table: t.Name, Columns: cols, Kind: dberr.KindEnum, Allowed: col.Values}
		}
		if col.Ref != nil {
			c.constraints[ddl.ForeignKeyName(t.Name, col.Name)] = Target{Table: t.Name, Columns: cols, Kind: dberr.KindForeignKey}
		}
	}
	for _, idx := range t.Indexes {
		if idx.Unique {
			c.constraints[idx.Name] = Target{Table: t.Name, Columns: idx.Columns, Kind: dberr.KindUnique}
		}
	}
}

// Tables returns the declared tables in creation order
func (c *Catalog) Tables() []*ddl.Table {
	return c.tables
}

// Table returns the declared table or nil
func (c *Catalog) Table(name string) *ddl.Table {
	return c.byName[name]
}

// Column returns the declared column or nil
func (c *Catalog) Column(table, column string) *ddl.Column {
	t := c.byName[table]
	if t == nil {
		return nil
	}
	return t.Column(column)
}

// Constraint resolves a constraint name. MySQL may prefix it with the table name.
func (c *Catalog) Constraint(name string) (Target, bool) {
	if t, ok := c.constraints[name]; ok {
		return t, true
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		t, ok := c.constraints[name[i+1:]]
		return t, ok
	}
	return Target{}, false
}

// Resolve fills in the table, column and allowed values of v from its
// constraint name, or the allowed values from the column when only the
// column is known.
func (c *Catalog) Resolve(v *dberr.ConstraintViolation) {
	if v.Constraint != "" && (v.Table == "" || v.Column == "") {
		if t, ok := c.Constraint(v.Constraint); ok {
			v.Table = t.Table
			v.Column = strings.Join(t.Columns, ", ")
			if v.Kind == "" || v.Kind == dberr.KindCheck {
				v.Kind = t.Kind
			}
		}
	}
	if v.Kind == dberr.KindEnum && len(v.Allowed) == 0 {
		if col := c.Column(v.Table, v.Column); col != nil {
			v.Allowed = col.Values
		}
	}
	if v.Constraint == "" && v.Table != "" && v.Column != "" {
		v.Constraint = c.constraintFor(v.Kind, v.Table, v.Column)
	}
}

func (c *Catalog) constraintFor(kind dberr.Kind, table, column string) string {
	switch kind {
	case dberr.KindUnique:
		if col := c.Column(table, column); col != nil && col.IsUnique {
			return ddl.UniqueName(table, column)
		}
		if t := c.byName[table]; t != nil {
			for _, idx := range t.Indexes {
				if idx.Unique && strings.Join(idx.Columns, ", ") == column {
					return idx.Name
				}
			}
		}
	case dberr.KindEnum:
		return ddl.CheckName(table, column)
	case dberr.KindForeignKey:
		return ddl.ForeignKeyName(table, column)
	}
	return ""
}

// Describe returns the declared schema as rendered for dialect d
func (c *Catalog) Describe(d ddl.Dialect) *schema.Schema {
	s := &schema.Schema{}
	for _, t := range c.tables {
		s.Tables = append(s.Tables, ddl.Describe(d, t))
	}
	return s
}
