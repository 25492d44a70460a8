package ddl

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect renders the parts of DDL and DML that differ between databases
type Dialect interface {
	Name() string
	// ColumnType returns the type and, for identity columns, the key clause
	ColumnType(c *Column) string
	BoolLiteral(b bool) string
	CurrentTimestamp() string
	// Placeholder returns the n-th (1-based) bind parameter
	Placeholder(n int) string
	Quote(ident string) string
	// Returning reports whether inserts read the new id with RETURNING
	Returning() bool
	TableOptions() string
}

const (
	PostgresName = "postgres"
	MySQLName    = "mysql"
	SQLiteName   = "sqlite"
)

// ForName returns the dialect for a database type name
func ForName(name string) (Dialect, error) {
	switch name {
	case PostgresName:
		return Postgres{}, nil
	case MySQLName:
		return MySQL{}, nil
	case SQLiteName:
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

// Postgres renders PostgreSQL DDL
type Postgres struct{}

func (Postgres) Name() string { return PostgresName }

func (Postgres) ColumnType(c *Column) string {
	switch c.Kind {
	case KindID:
		return "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case KindForeignID:
		return "BIGINT"
	case KindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return commonType(c)
	}
}

func (Postgres) BoolLiteral(b bool) string { return strconv.FormatBool(b) }
func (Postgres) CurrentTimestamp() string  { return "CURRENT_TIMESTAMP" }
func (Postgres) Placeholder(n int) string  { return "$" + strconv.Itoa(n) }
func (Postgres) Quote(ident string) string { return `"` + ident + `"` }
func (Postgres) Returning() bool           { return true }
func (Postgres) TableOptions() string      { return "" }

// MySQL renders MySQL 8 (InnoDB) DDL. CHECK constraints are enforced from 8.0.16.
type MySQL struct{}

func (MySQL) Name() string { return MySQLName }

func (MySQL) ColumnType(c *Column) string {
	switch c.Kind {
	case KindID:
		return "BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY"
	case KindForeignID:
		return "BIGINT UNSIGNED"
	case KindBoolean:
		return "TINYINT(1)"
	case KindTimestamp:
		return "DATETIME(6)"
	default:
		return commonType(c)
	}
}

func (MySQL) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (MySQL) CurrentTimestamp() string  { return "CURRENT_TIMESTAMP(6)" }
func (MySQL) Placeholder(int) string    { return "?" }
func (MySQL) Quote(ident string) string { return "`" + ident + "`" }
func (MySQL) Returning() bool           { return false }
func (MySQL) TableOptions() string      { return " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4" }

// SQLite renders SQLite DDL. Decimals are stored as TEXT because SQLite
// has no fixed-point storage class and NUMERIC affinity converts to REAL.
type SQLite struct{}

func (SQLite) Name() string { return SQLiteName }

func (SQLite) ColumnType(c *Column) string {
	switch c.Kind {
	case KindID:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case KindForeignID:
		return "INTEGER"
	case KindDecimal:
		return "TEXT"
	case KindTimestamp:
		return "DATETIME"
	default:
		return commonType(c)
	}
}

func (SQLite) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (SQLite) CurrentTimestamp() string  { return "CURRENT_TIMESTAMP" }
func (SQLite) Placeholder(int) string    { return "?" }
func (SQLite) Quote(ident string) string { return `"` + ident + `"` }
func (SQLite) Returning() bool           { return false }
func (SQLite) TableOptions() string      { return "" }

func commonType(c *Column) string {
	switch c.Kind {
	case KindString, KindEnum:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	case KindChar:
		return fmt.Sprintf("CHAR(%d)", c.Length)
	case KindText:
		return "TEXT"
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
	case KindInteger:
		return "INTEGER"
	case KindBoolean:
		return "BOOLEAN"
	case KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Rebind rewrites ? placeholders into the dialect's bind syntax
func Rebind(d Dialect, query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
