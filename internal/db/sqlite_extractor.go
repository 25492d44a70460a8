package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

var sqliteCheckDef = regexp.MustCompile(`(?m)CONSTRAINT\s+"?(\w+)"?\s+CHECK\s*\((.*)\),?\s*$`)

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	return extract(ctx, e, tables)
}

func pragma(name, arg string) string {
	return fmt.Sprintf(`PRAGMA %s("%s")`, name, strings.ReplaceAll(arg, `"`, `""`))
}

func (e *SQLiteExtractor) tableNames(ctx context.Context) ([]string, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}
	return tableList, rows.Err()
}

type sqliteColumn struct {
	schema.Column
	pk int
}

func (e *SQLiteExtractor) tableInfo(ctx context.Context, tableName string) ([]sqliteColumn, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, pragma("table_info", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var cid, notNull int
		var col sqliteColumn
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &col.pk); err != nil {
			return nil, err
		}
		col.Nullable = notNull == 0
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (e *SQLiteExtractor) columns(ctx context.Context, tableName string) ([]schema.Column, error) {
	info, err := e.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	indexes, err := e.indexList(ctx, tableName, true)
	if err != nil {
		return nil, err
	}

	columns := make([]schema.Column, len(info))
	for i, c := range info {
		columns[i] = c.Column
		if c.pk > 0 {
			continue
		}
		for _, idx := range indexes {
			if idx.IsUnique && len(idx.Columns) == 1 && idx.Columns[0] == c.Name {
				columns[i].IsUnique = true
			}
		}
	}

	checks, err := e.checkClauses(ctx, tableName)
	if err != nil {
		return nil, err
	}
	attachChecks(tableName, columns, checks)

	return columns, nil
}

// checkClauses reads named CHECK constraints out of the stored CREATE TABLE
// statement, which SQLite does not expose through any pragma
func (e *SQLiteExtractor) checkClauses(ctx context.Context, tableName string) (map[string]string, error) {
	var ddlText sql.NullString
	err := e.client.GetDB().QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName).Scan(&ddlText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	checks := make(map[string]string)
	for _, m := range sqliteCheckDef.FindAllStringSubmatch(ddlText.String, -1) {
		checks[m[1]] = m[2]
	}
	return checks, nil
}

func (e *SQLiteExtractor) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	info, err := e.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	// pk holds the 1-based position within the key
	slices.SortStableFunc(info, func(a, b sqliteColumn) int { return a.pk - b.pk })
	var pk []string
	for _, c := range info {
		if c.pk > 0 {
			pk = append(pk, c.Name)
		}
	}
	return pk, nil
}

func (e *SQLiteExtractor) relations(ctx context.Context, tableName string) ([]schema.Relation, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, pragma("foreign_key_list", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []schema.Relation
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, toCol, onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		relations = append(relations, schema.Relation{
			SourceColumn: fromCol,
			TargetTable:  targetTable,
			TargetColumn: toCol,
			Cardinality:  "N:1",
			OnDelete:     onDelete,
		})
	}
	return relations, rows.Err()
}

func (e *SQLiteExtractor) indexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	return e.indexList(ctx, tableName, false)
}

// indexList returns the indexes of a table with their columns. Indexes
// SQLite creates for UNIQUE clauses are included only when withAuto is set.
func (e *SQLiteExtractor) indexList(ctx context.Context, tableName string, withAuto bool) ([]schema.Index, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, pragma("index_list", tableName))
	if err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if origin == "pk" || (!withAuto && strings.HasPrefix(name, "sqlite_autoindex")) {
			continue
		}
		indexes = append(indexes, schema.Index{Name: name, IsUnique: unique == 1})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// The index_list cursor is drained before index_info runs, so the
	// pool does not need a second connection.
	out := indexes[:0]
	for _, idx := range indexes {
		if idx.Columns, err = e.indexColumns(ctx, idx.Name); err != nil {
			return nil, err
		}
		if len(idx.Columns) > 0 {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, pragma("index_info", indexName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}
