// Package ddl declares relational tables with shared column helpers and
// renders them as CREATE/DROP statements for PostgreSQL, MySQL and SQLite.
package ddl

import (
	"fmt"
	"strings"
)

// Kind is the logical type of a column
type Kind int

const (
	KindID Kind = iota
	KindForeignID
	KindString
	KindChar
	KindText
	KindEnum
	KindDecimal
	KindInteger
	KindBoolean
	KindDate
	KindTimestamp
)

// Action is the referential action applied when a referenced row is deleted
type Action string

const (
	NoAction Action = "NO ACTION"
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
)

// Reference describes a foreign key from a column to another table
type Reference struct {
	Table    string
	Column   string
	OnDelete Action
}

// Column is a declared table column
type Column struct {
	Name       string
	Kind       Kind
	Length     int
	Precision  int
	Scale      int
	Values     []string
	IsNullable bool
	IsUnique   bool
	DefaultVal any
	DefaultNow bool
	Ref        *Reference

	table *Table
}

// Index is a declared secondary index
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is a declared table
type Table struct {
	Name    string
	Columns []*Column
	Indexes []Index
}

// NewTable declares a table and lets build add its columns and indexes
func NewTable(name string, build func(t *Table)) *Table {
	t := &Table{Name: name}
	build(t)
	return t
}

func (t *Table) add(c *Column) *Column {
	c.table = t
	t.Columns = append(t.Columns, c)
	return c
}

// ID adds the auto-increment primary key column "id"
func (t *Table) ID() *Column {
	return t.add(&Column{Name: "id", Kind: KindID})
}

// ForeignID adds a reference to table(id). Without an explicit action,
// deletes of the referenced row are refused.
func (t *Table) ForeignID(name, table string) *Column {
	return t.add(&Column{
		Name: name,
		Kind: KindForeignID,
		Ref:  &Reference{Table: table, Column: "id", OnDelete: NoAction},
	})
}

func (t *Table) String(name string, length int) *Column {
	return t.add(&Column{Name: name, Kind: KindString, Length: length})
}

func (t *Table) Char(name string, length int) *Column {
	return t.add(&Column{Name: name, Kind: KindChar, Length: length})
}

func (t *Table) Text(name string) *Column {
	return t.add(&Column{Name: name, Kind: KindText})
}

// Enum adds a string column restricted to values through a CHECK constraint
func (t *Table) Enum(name string, values ...string) *Column {
	length := 0
	for _, v := range values {
		length = max(length, len(v))
	}
	return t.add(&Column{Name: name, Kind: KindEnum, Values: values, Length: max(length, 16)})
}

// Decimal adds a fixed-point column with the given precision and scale
func (t *Table) Decimal(name string, precision, scale int) *Column {
	return t.add(&Column{Name: name, Kind: KindDecimal, Precision: precision, Scale: scale})
}

func (t *Table) Integer(name string) *Column {
	return t.add(&Column{Name: name, Kind: KindInteger})
}

func (t *Table) Boolean(name string) *Column {
	return t.add(&Column{Name: name, Kind: KindBoolean})
}

func (t *Table) Date(name string) *Column {
	return t.add(&Column{Name: name, Kind: KindDate})
}

func (t *Table) Timestamp(name string) *Column {
	return t.add(&Column{Name: name, Kind: KindTimestamp})
}

// Timestamps adds created_at and updated_at, both defaulting to now
func (t *Table) Timestamps() {
	t.Timestamp("created_at").UseCurrent()
	t.Timestamp("updated_at").UseCurrent()
}

// Index adds a secondary index over columns
func (t *Table) Index(columns ...string) {
	t.Indexes = append(t.Indexes, Index{Name: IndexName(t.Name, columns), Columns: columns})
}

// UniqueIndex adds a composite unique index over columns
func (t *Table) UniqueIndex(columns ...string) {
	t.Indexes = append(t.Indexes, Index{Name: UniqueName(t.Name, strings.Join(columns, "_")), Columns: columns, Unique: true})
}

// Column returns the declared column or nil
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// References returns the columns that carry a foreign key, in declaration order
func (t *Table) References() []*Column {
	var refs []*Column
	for _, c := range t.Columns {
		if c.Ref != nil {
			refs = append(refs, c)
		}
	}
	return refs
}

func (c *Column) Nullable() *Column {
	c.IsNullable = true
	return c
}

func (c *Column) Unique() *Column {
	c.IsUnique = true
	return c
}

// Default sets a literal default (string, bool or int)
func (c *Column) Default(v any) *Column {
	c.DefaultVal = v
	return c
}

// UseCurrent defaults the column to the current timestamp
func (c *Column) UseCurrent() *Column {
	c.DefaultNow = true
	return c
}

// CascadeOnDelete removes this row when the referenced row is deleted
func (c *Column) CascadeOnDelete() *Column {
	c.mustRef().OnDelete = Cascade
	return c
}

// NullOnDelete clears this column when the referenced row is deleted.
// The column becomes nullable.
func (c *Column) NullOnDelete() *Column {
	c.mustRef().OnDelete = SetNull
	c.IsNullable = true
	return c
}

func (c *Column) mustRef() *Reference {
	if c.Ref == nil {
		panic(fmt.Sprintf("ddl: column %s.%s is not a foreign key", c.table.Name, c.Name))
	}
	return c.Ref
}

// Constraint names. They are stable so driver errors can be mapped back
// to the column that caused them.

func UniqueName(table, column string) string {
	return "uq_" + table + "_" + column
}

func ForeignKeyName(table, column string) string {
	return "fk_" + table + "_" + column
}

func CheckName(table, column string) string {
	return "chk_" + table + "_" + column
}

func IndexName(table string, columns []string) string {
	return "idx_" + table + "_" + strings.Join(columns, "_")
}
