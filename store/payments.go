package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tordrt/schoolschema/dberr"
	m "github.com/tordrt/schoolschema/model"
)

const defaultCurrency = "USD"

func paymentFields(p *m.Payment) []field {
	return []field{
		{"student_id", p.StudentID, &p.StudentID},
		{"type", string(p.Type), &p.Type},
		{"amount", p.Amount, &p.Amount},
		{"currency", p.Currency, &p.Currency},
		{"status", string(p.Status), &p.Status},
		{"due_date", dateOnly(p.DueDate), &p.DueDate},
		{"paid_date", dateOnlyPtr(p.PaidDate), &p.PaidDate},
		{"payment_method", nullableString(p.PaymentMethod), &p.PaymentMethod},
		{"receipt_number", p.ReceiptNumber, &p.ReceiptNumber},
		{"description", p.Description, &p.Description},
		{"created_at", p.CreatedAt, &p.CreatedAt},
		{"updated_at", p.UpdatedAt, &p.UpdatedAt},
	}
}

// CreatePayment inserts p and sets its ID. Currency defaults to USD and
// status to pending. Receipt numbers are unique when present; any number of
// payments may have none. A blank receipt number counts as none.
func (s *Store) CreatePayment(ctx context.Context, p *m.Payment) error {
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Status == "" {
		p.Status = m.PaymentPending
	}
	if blank(p.ReceiptNumber) {
		p.ReceiptNumber = nil
	}
	if err := s.check(m.TablePayments, p); err != nil {
		return err
	}
	if p.Amount.IsNegative() {
		return &dberr.ConstraintViolation{
			Kind: dberr.KindRange, Table: m.TablePayments, Column: "amount",
			Value: p.Amount.String(), Detail: "must not be negative",
		}
	}
	if err := s.checkDecimal(m.TablePayments, "amount", p.Amount); err != nil {
		return err
	}
	s.touch(&p.Timestamps)

	id, err := s.insert(ctx, s.db, m.TablePayments, paymentFields(p))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetPayment returns the payment with the given id
func (s *Store) GetPayment(ctx context.Context, id int64) (*m.Payment, error) {
	p := &m.Payment{ID: id}
	if err := s.get(ctx, s.db, m.TablePayments, id, paymentFields(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaymentPaid records a payment as paid on paidDate with method. A
// receipt number is issued unless the payment already has a non-blank one.
func (s *Store) MarkPaymentPaid(ctx context.Context, id int64, method m.PaymentMethod, paidDate time.Time) (*m.Payment, error) {
	if err := s.enumValue(m.TablePayments, "payment_method", string(method), method.Valid()); err != nil {
		return nil, err
	}

	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt := current.ReceiptNumber
	if blank(receipt) {
		r := m.NewReceiptNumber()
		receipt = &r
	}

	err = s.update(ctx, s.db, m.TablePayments, id, []field{
		{col: "status", val: string(m.PaymentPaid)},
		{col: "paid_date", val: dateOnly(paidDate)},
		{col: "payment_method", val: string(method)},
		{col: "receipt_number", val: *receipt},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment marked paid",
		zap.Int64("id", id),
		zap.String("method", string(method)),
		zap.String("receipt_number", *receipt))
	return s.GetPayment(ctx, id)
}

// SetPaymentStatus moves a payment to status
func (s *Store) SetPaymentStatus(ctx context.Context, id int64, status m.PaymentStatus) error {
	if err := s.enumValue(m.TablePayments, "status", string(status), status.Valid()); err != nil {
		return err
	}
	return s.update(ctx, s.db, m.TablePayments, id, []field{{col: "status", val: string(status)}})
}

// DeletePayment removes a payment
func (s *Store) DeletePayment(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TablePayments, id)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
