// Package kpi computes period-over-period indicators for the school
// dashboard. Each indicator compares the window ending now with the window
// of the same length before it.
package kpi

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Trend is one indicator over the current and the previous window
type Trend struct {
	Name      string          `json:"name"`
	Current   decimal.Decimal `json:"current"`
	Previous  decimal.Decimal `json:"previous"`
	Delta     decimal.Decimal `json:"delta"`
	Direction Direction       `json:"direction"`
}

// NewTrend derives delta and direction from the two window values
func NewTrend(name string, current, previous decimal.Decimal) Trend {
	delta := current.Sub(previous)
	dir := Flat
	switch delta.Sign() {
	case 1:
		dir = Up
	case -1:
		dir = Down
	}
	return Trend{Name: name, Current: current, Previous: previous, Delta: delta, Direction: dir}
}

// Indicator names, in the order Summary returns them
const (
	NewStudents    = "new_students"
	NewTeachers    = "new_teachers"
	NewCourses     = "new_courses"
	EventsStarting = "events_starting"
	PaidRevenue    = "paid_revenue"
	CantineOrders  = "cantine_orders"
)

// window is the half-open interval [from, to)
type window struct {
	from, to time.Time
}

type measure func(ctx context.Context, w window) (decimal.Decimal, error)

// Reader runs the indicator queries
type Reader struct {
	db      *sql.DB
	dialect ddl.Dialect
	logger  *zap.Logger
}

// New creates a Reader. A nil logger discards output.
func New(db *sql.DB, dialect ddl.Dialect, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{db: db, dialect: dialect, logger: logger}
}

// Summary computes every indicator for [now-period, now) against
// [now-2*period, now-period). Queries run concurrently; the first failure
// cancels the rest.
func (r *Reader) Summary(ctx context.Context, now time.Time, period time.Duration) ([]Trend, error) {
	if period <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", period)
	}
	now = now.UTC()
	current := window{from: now.Add(-period), to: now}
	previous := window{from: now.Add(-2 * period), to: current.from}

	measures := []struct {
		name string
		fn   measure
	}{
		{NewStudents, r.countBetween(m.TableStudents, "created_at")},
		{NewTeachers, r.countBetween(m.TableTeachers, "created_at")},
		{NewCourses, r.countBetween(m.TableCourses, "created_at")},
		{EventsStarting, r.countBetween(m.TableEvents, "start_date")},
		{PaidRevenue, r.paidRevenue},
		{CantineOrders, r.countBetween(m.TableCantines, "date")},
	}

	values := make([][2]decimal.Decimal, len(measures))
	g, gctx := errgroup.WithContext(ctx)
	for i, ms := range measures {
		for j, w := range []window{current, previous} {
			g.Go(func() error {
				v, err := ms.fn(gctx, w)
				if err != nil {
					return fmt.Errorf("%s: %w", ms.name, err)
				}
				values[i][j] = v
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trends := make([]Trend, len(measures))
	for i, ms := range measures {
		trends[i] = NewTrend(ms.name, values[i][0], values[i][1])
	}
	r.logger.Debug("kpi summary computed",
		zap.Time("from", current.from),
		zap.Time("to", current.to),
		zap.Int("indicators", len(trends)))
	return trends, nil
}

// countBetween counts rows of table whose column falls in the window
func (r *Reader) countBetween(table, column string) measure {
	query := ddl.Rebind(r.dialect, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s >= ? AND %s < ?",
		r.dialect.Quote(table), r.dialect.Quote(column), r.dialect.Quote(column)))

	return func(ctx context.Context, w window) (decimal.Decimal, error) {
		var n int64
		if err := r.db.QueryRowContext(ctx, query, w.from, w.to).Scan(&n); err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(n), nil
	}
}

// paidRevenue sums the amounts of payments paid in the window. Amounts are
// added in Go so SQLite's text decimals stay exact.
func (r *Reader) paidRevenue(ctx context.Context, w window) (decimal.Decimal, error) {
	query := ddl.Rebind(r.dialect, fmt.Sprintf(
		"SELECT amount FROM %s WHERE %s = ? AND paid_date IS NOT NULL AND paid_date >= ? AND paid_date < ?",
		r.dialect.Quote(m.TablePayments), r.dialect.Quote("status")))

	rows, err := r.db.QueryContext(ctx, query, string(m.PaymentPaid), w.from, w.to)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}
