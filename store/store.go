// Package store is the typed write path over the school schema. Every write
// is validated against the declared constraints first; whatever the
// database still rejects is classified into a *dberr.ConstraintViolation
// that names the table, column and constraint involved.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/migrations"
	"github.com/tordrt/schoolschema/model"
)

// dbtx is satisfied by *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes school records
type Store struct {
	db       *sql.DB
	dialect  ddl.Dialect
	catalog  *migrations.Catalog
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Store over a database migrated with migrations.All.
// A nil logger discards output.
func New(db *sql.DB, dialect ddl.Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:       db,
		dialect:  dialect,
		catalog:  migrations.NewCatalog(migrations.All()),
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// stamp is the current time as stored in timestamp columns
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// touch sets both timestamps of a new record
func (s *Store) touch(ts *model.Timestamps) {
	now := s.stamp()
	ts.CreatedAt, ts.UpdatedAt = now, now
}

// dateOnly drops the time of day so DATE columns compare equal everywhere
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

// field binds one column to the value written on insert and the target
// it is scanned into on read
type field struct {
	col  string
	val  any
	dest any
}

func columnsOf(fields []field) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.col
	}
	return cols
}

func valuesOf(fields []field) []any {
	vals := make([]any, len(fields))
	for i, f := range fields {
		vals[i] = f.val
	}
	return vals
}

func destsOf(fields []field) []any {
	dests := make([]any, len(fields))
	for i, f := range fields {
		dests[i] = f.dest
	}
	return dests
}

func (s *Store) quoteAll(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = s.dialect.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// insert writes one row and returns its id. fields must not include id.
func (s *Store) insert(ctx context.Context, q dbtx, table string, fields []field) (int64, error) {
	cols, args := columnsOf(fields), valuesOf(fields)
	query := ddl.Rebind(s.dialect, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.Quote(table), s.quoteAll(cols), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")))

	if s.dialect.Returning() {
		var id int64
		if err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, s.explain(ctx, q, table, cols, args, err)
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.explain(ctx, q, table, cols, args, err)
	}
	return res.LastInsertId()
}

// get scans the row with the given id into fields
func (s *Store) get(ctx context.Context, q dbtx, table string, id int64, fields []field) error {
	query := ddl.Rebind(s.dialect, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?",
		s.quoteAll(columnsOf(fields)), s.dialect.Quote(table)))
	err := q.QueryRowContext(ctx, query, id).Scan(destsOf(fields)...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", table, id, dberr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s %d: %w", table, id, err)
	}
	return nil
}

// update sets fields on the row with the given id, stamping updated_at
func (s *Store) update(ctx context.Context, q dbtx, table string, id int64, fields []field) error {
	fields = append(fields, field{col: "updated_at", val: s.stamp()})
	cols, args := columnsOf(fields), valuesOf(fields)

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = s.dialect.Quote(c) + " = ?"
	}
	query := ddl.Rebind(s.dialect, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		s.dialect.Quote(table), strings.Join(sets, ", ")))

	res, err := q.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return s.explain(ctx, q, table, cols, args, err)
	}
	return requireRow(res, table, id)
}

// remove deletes the row with the given id. Dependent rows follow the
// declared ON DELETE rules.
func (s *Store) remove(ctx context.Context, table string, id int64) error {
	query := ddl.Rebind(s.dialect, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.dialect.Quote(table)))
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return s.explain(ctx, s.db, table, nil, nil, err)
	}
	if err := requireRow(res, table, id); err != nil {
		return err
	}
	s.logger.Debug("row deleted", zap.String("table", table), zap.Int64("id", id))
	return nil
}

func requireRow(res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, dberr.ErrNotFound)
	}
	return nil
}

// inTx runs fn in a transaction, committing only if it returns nil
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// explain turns a driver error from a write on table into a typed error.
// cols and args are the columns and values of the statement, used to
// report the offending value and to find the broken reference on SQLite.
func (s *Store) explain(ctx context.Context, q dbtx, table string, cols []string, args []any, err error) error {
	classified := dberr.Classify(err)

	var v *dberr.ConstraintViolation
	if !errors.As(classified, &v) {
		return fmt.Errorf("write to %s failed: %w", table, err)
	}
	if v.Table == "" && v.Constraint == "" {
		v.Table = table
	}
	if v.Kind == dberr.KindForeignKey && v.Column == "" && v.Constraint == "" {
		s.findMissingReference(ctx, q, table, cols, args, v)
	}
	s.catalog.Resolve(v)
	if v.Value == nil {
		v.Value = valueFor(v.Column, cols, args)
	}

	s.logger.Debug("write rejected",
		zap.String("table", v.Table),
		zap.String("column", v.Column),
		zap.String("kind", string(v.Kind)),
		zap.String("constraint", v.Constraint))
	return v
}

// findMissingReference finds the foreign key whose target row is missing.
// SQLite reports only that some foreign key failed.
func (s *Store) findMissingReference(ctx context.Context, q dbtx, table string, cols []string, args []any, v *dberr.ConstraintViolation) {
	t := s.catalog.Table(table)
	if t == nil {
		return
	}
	for _, ref := range t.References() {
		val := valueFor(ref.Name, cols, args)
		if val == nil {
			continue
		}
		var n int
		query := ddl.Rebind(s.dialect, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?",
			s.dialect.Quote(ref.Ref.Table), s.dialect.Quote(ref.Ref.Column)))
		if err := q.QueryRowContext(ctx, query, val).Scan(&n); err != nil {
			return
		}
		if n == 0 {
			v.Table, v.Column, v.Value = table, ref.Name, val
			return
		}
	}
}

// valueFor returns the driver value bound to column, or nil
func valueFor(column string, cols []string, args []any) any {
	for i, c := range cols {
		if c != column || i >= len(args) {
			continue
		}
		v, err := driver.DefaultParameterConverter.ConvertValue(args[i])
		if err != nil {
			return args[i]
		}
		return v
	}
	return nil
}

// checkDecimal rejects values that do not fit the declared precision and
// scale. Values are never rounded to fit.
func (s *Store) checkDecimal(table, column string, d decimal.Decimal) error {
	col := s.catalog.Column(table, column)
	if col == nil || col.Kind != ddl.KindDecimal {
		return nil
	}

	var detail string
	switch {
	case !d.Equal(d.Truncate(int32(col.Scale))):
		detail = fmt.Sprintf("more than %d decimal places", col.Scale)
	case d.Abs().GreaterThanOrEqual(decimal.New(1, int32(col.Precision-col.Scale))):
		detail = fmt.Sprintf("does not fit decimal(%d,%d)", col.Precision, col.Scale)
	default:
		return nil
	}
	return &dberr.ConstraintViolation{
		Kind:   dberr.KindRange,
		Table:  table,
		Column: column,
		Value:  d.String(),
		Detail: detail,
	}
}

// amount pairs a decimal column with the value about to be written
type amount struct {
	col string
	d   decimal.Decimal
}

func (s *Store) checkDecimals(table string, amounts ...amount) error {
	for _, a := range amounts {
		if err := s.checkDecimal(table, a.col, a.d); err != nil {
			return err
		}
	}
	return nil
}

// enumValue rejects a value outside its column's declared set
func (s *Store) enumValue(table, column, value string, valid bool) error {
	if valid {
		return nil
	}
	v := &dberr.ConstraintViolation{Kind: dberr.KindEnum, Table: table, Column: column, Value: value}
	s.catalog.Resolve(v)
	return v
}
