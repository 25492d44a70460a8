package dberr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgNumericOutOfRange   = "22003"
	pgDuplicateTable      = "42P07"
	pgDuplicateObject     = "42710"
)

// MySQL server error numbers
const (
	myDupEntry          = 1062
	myRowIsReferenced   = 1451
	myNoReferencedRow   = 1452
	myCheckViolated     = 3819
	myBadNull           = 1048
	myOutOfRange        = 1264
	myTableExists       = 1050
	myDupKeyName        = 1061
	myDupForeignKeyName = 1826
	myDupCheckName      = 3822
)

var (
	pgKeyDetail     = regexp.MustCompile(`Key \((.+)\)=\((.*)\)`)
	pgRelationName  = regexp.MustCompile(`relation "([^"]+)" already exists`)
	myDupEntryMsg   = regexp.MustCompile(`Duplicate entry '(.*)' for key '([^']+)'`)
	myConstraintMsg = regexp.MustCompile("CONSTRAINT `([^`]+)`")
	myCheckMsg      = regexp.MustCompile(`Check constraint '([^']+)' is violated`)
	myColumnMsg     = regexp.MustCompile(`[Cc]olumn '([^']+)'`)
	myQuotedName    = regexp.MustCompile(`'([^']+)'`)
	liteExistsMsg   = regexp.MustCompile(`(table|index) "?([^" ]+)"? already exists`)
)

// Classify maps a driver error onto ConstraintViolation or SchemaConflict.
// Constraint names are left for a catalog to resolve. Errors that are
// neither are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(pgErr, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return classifyMySQL(myErr, err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr, err)
	}

	return err
}

func classifyPostgres(e *pgconn.PgError, err error) error {
	v := &ConstraintViolation{Table: e.TableName, Column: e.ColumnName, Constraint: e.ConstraintName, Err: err}

	switch e.Code {
	case pgUniqueViolation:
		v.Kind = KindUnique
	case pgForeignKeyViolation:
		v.Kind = KindForeignKey
	case pgCheckViolation:
		v.Kind = KindCheck
	case pgNotNullViolation:
		v.Kind = KindNotNull
	case pgNumericOutOfRange:
		v.Kind = KindRange
		v.Detail = e.Message
	case pgDuplicateTable:
		name := e.TableName
		if m := pgRelationName.FindStringSubmatch(e.Message); m != nil {
			name = m[1]
		}
		return &SchemaConflict{Object: "relation", Name: name, Err: err}
	case pgDuplicateObject:
		return &SchemaConflict{Object: "object", Name: e.ConstraintName, Err: err}
	default:
		return err
	}

	if m := pgKeyDetail.FindStringSubmatch(e.Detail); m != nil {
		if v.Column == "" && !strings.Contains(m[1], ",") {
			v.Column = m[1]
		}
		v.Value = m[2]
	}
	return v
}

func classifyMySQL(e *mysql.MySQLError, err error) error {
	v := &ConstraintViolation{Err: err}

	switch e.Number {
	case myDupEntry:
		v.Kind = KindUnique
		if m := myDupEntryMsg.FindStringSubmatch(e.Message); m != nil {
			v.Value = m[1]
			v.Constraint = m[2]
		}
	case myNoReferencedRow, myRowIsReferenced:
		v.Kind = KindForeignKey
		if m := myConstraintMsg.FindStringSubmatch(e.Message); m != nil {
			v.Constraint = m[1]
		}
	case myCheckViolated:
		v.Kind = KindCheck
		if m := myCheckMsg.FindStringSubmatch(e.Message); m != nil {
			v.Constraint = m[1]
		}
	case myBadNull:
		v.Kind = KindNotNull
		if m := myColumnMsg.FindStringSubmatch(e.Message); m != nil {
			v.Column = m[1]
		}
	case myOutOfRange:
		v.Kind = KindRange
		v.Detail = e.Message
		if m := myColumnMsg.FindStringSubmatch(e.Message); m != nil {
			v.Column = m[1]
		}
	case myTableExists:
		return &SchemaConflict{Object: "table", Name: firstQuoted(e.Message), Err: err}
	case myDupKeyName:
		return &SchemaConflict{Object: "index", Name: firstQuoted(e.Message), Err: err}
	case myDupForeignKeyName, myDupCheckName:
		return &SchemaConflict{Object: "constraint", Name: firstQuoted(e.Message), Err: err}
	default:
		return err
	}
	return v
}

func classifySQLite(e sqlite3.Error, err error) error {
	msg := e.Error()

	if e.Code == sqlite3.ErrError {
		if m := liteExistsMsg.FindStringSubmatch(msg); m != nil {
			return &SchemaConflict{Object: m[1], Name: m[2], Err: err}
		}
		return err
	}
	if e.Code != sqlite3.ErrConstraint {
		return err
	}

	v := &ConstraintViolation{Err: err}
	_, detail, _ := strings.Cut(msg, "constraint failed: ")

	switch e.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		v.Kind = KindUnique
		v.Table, v.Column = splitColumns(detail)
	case sqlite3.ErrConstraintForeignKey:
		// SQLite does not say which key failed; callers look the references up.
		v.Kind = KindForeignKey
	case sqlite3.ErrConstraintCheck:
		v.Kind = KindCheck
		v.Constraint = strings.TrimSpace(detail)
	case sqlite3.ErrConstraintNotNull:
		v.Kind = KindNotNull
		v.Table, v.Column = splitColumns(detail)
	default:
		return err
	}
	return v
}

// splitColumns turns "t.a, t.b" into ("t", "a, b")
func splitColumns(detail string) (table, columns string) {
	var cols []string
	for _, part := range strings.Split(detail, ",") {
		part = strings.TrimSpace(part)
		if t, c, ok := strings.Cut(part, "."); ok {
			table = t
			part = c
		}
		if part != "" {
			cols = append(cols, part)
		}
	}
	return table, strings.Join(cols, ", ")
}

func firstQuoted(msg string) string {
	if m := myQuotedName.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}
