package store

import (
	"context"
	"database/sql"

	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

func cantineFields(c *m.Cantine) []field {
	return []field{
		{"student_id", c.StudentID, &c.StudentID},
		{"date", dateOnly(c.Date), &c.Date},
		{"meal_type", string(c.MealType), &c.MealType},
		{"total_amount", c.TotalAmount, &c.TotalAmount},
		{"status", string(c.Status), &c.Status},
		{"payment_status", string(c.PaymentStatus), &c.PaymentStatus},
		{"created_at", c.CreatedAt, &c.CreatedAt},
		{"updated_at", c.UpdatedAt, &c.UpdatedAt},
	}
}

// CreateCantine inserts a cafeteria order with its items, in order, and
// sets its ID. Date defaults to today, status and payment status to
// pending, and the total to the sum of the items.
func (s *Store) CreateCantine(ctx context.Context, c *m.Cantine) error {
	if c.Date.IsZero() {
		c.Date = dateOnly(s.now().UTC())
	}
	if c.Status == "" {
		c.Status = m.CantinePending
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = m.CantineUnpaid
	}
	if c.TotalAmount.IsZero() && len(c.Items) > 0 {
		c.TotalAmount = m.ItemsTotal(c.Items)
	}
	if err := s.check(m.TableCantines, c); err != nil {
		return err
	}
	for _, it := range c.Items {
		if err := s.checkDecimal(m.TableCantineItems, "unit_price", it.UnitPrice); err != nil {
			return err
		}
	}
	if err := s.checkDecimal(m.TableCantines, "total_amount", c.TotalAmount); err != nil {
		return err
	}
	s.touch(&c.Timestamps)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.insert(ctx, tx, m.TableCantines, cantineFields(c))
		if err != nil {
			return err
		}
		for i, it := range c.Items {
			if _, err := s.insert(ctx, tx, m.TableCantineItems, []field{
				{col: "cantine_id", val: id},
				{col: "position", val: i},
				{col: "name", val: it.Name},
				{col: "quantity", val: it.Quantity},
				{col: "unit_price", val: it.UnitPrice},
				{col: "created_at", val: c.CreatedAt},
				{col: "updated_at", val: c.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		c.ID = id
		return nil
	})
}

// GetCantine returns the cafeteria order with its items in order
func (s *Store) GetCantine(ctx context.Context, id int64) (*m.Cantine, error) {
	c := &m.Cantine{ID: id}
	if err := s.get(ctx, s.db, m.TableCantines, id, cantineFields(c)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, ddl.Rebind(s.dialect,
		"SELECT name, quantity, unit_price FROM cantine_items WHERE cantine_id = ? ORDER BY position, id"), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it m.CantineItem
		if err := rows.Scan(&it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// SetCantineStatus moves a cafeteria order to status
func (s *Store) SetCantineStatus(ctx context.Context, id int64, status m.CantineStatus) error {
	if err := s.enumValue(m.TableCantines, "status", string(status), status.Valid()); err != nil {
		return err
	}
	return s.update(ctx, s.db, m.TableCantines, id, []field{{col: "status", val: string(status)}})
}

// MarkCantinePaid records a cafeteria order as paid
func (s *Store) MarkCantinePaid(ctx context.Context, id int64) error {
	return s.update(ctx, s.db, m.TableCantines, id, []field{{col: "payment_status", val: string(m.CantinePaid)}})
}

// DeleteCantine removes a cafeteria order with its items
func (s *Store) DeleteCantine(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableCantines, id)
}
