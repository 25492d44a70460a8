package kpi_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tordrt/schoolschema/internal/dbtest"
	"github.com/tordrt/schoolschema/internal/kpi"
	m "github.com/tordrt/schoolschema/model"
	"github.com/tordrt/schoolschema/store"
)

func TestNewTrend(t *testing.T) {
	tests := []struct {
		current, previous int64
		delta             int64
		direction         kpi.Direction
	}{
		{5, 3, 2, kpi.Up},
		{3, 5, -2, kpi.Down},
		{4, 4, 0, kpi.Flat},
		{0, 0, 0, kpi.Flat},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_vs_%d", tt.current, tt.previous), func(t *testing.T) {
			tr := kpi.NewTrend("x", decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.previous))
			if !tr.Delta.Equal(decimal.NewFromInt(tt.delta)) {
				t.Errorf("Expected delta %d, got %s", tt.delta, tr.Delta)
			}
			if tr.Direction != tt.direction {
				t.Errorf("Expected direction %s, got %s", tt.direction, tr.Direction)
			}
		})
	}
}

func byName(trends []kpi.Trend) map[string]kpi.Trend {
	out := make(map[string]kpi.Trend, len(trends))
	for _, tr := range trends {
		out[tr.Name] = tr
	}
	return out
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Migrated(t)
	s := store.New(conn.DB, conn.Dialect, nil)

	now := time.Now().UTC().Add(time.Minute)
	week := 7 * 24 * time.Hour

	var students []*m.Student
	for i := range 2 {
		u := &m.User{Name: "Student", Email: fmt.Sprintf("s%d@school.test", i)}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		st := &m.Student{UserID: u.ID, StudentNumber: fmt.Sprintf("S-%d", i), Level: "Grade 7"}
		if err := s.CreateStudent(ctx, st); err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}
		students = append(students, st)
	}

	for _, start := range []time.Time{now.Add(-time.Hour), now.Add(-8 * 24 * time.Hour), now.Add(-9 * 24 * time.Hour)} {
		e := &m.Event{Title: "Assembly", Type: m.EventMeeting, StartDate: start, EndDate: start.Add(time.Hour)}
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	paid := []struct {
		amount string
		on     time.Time
	}{
		{"100.50", now.Add(-2 * 24 * time.Hour)},
		{"0.25", now.Add(-3 * 24 * time.Hour)},
		{"20.25", now.Add(-10 * 24 * time.Hour)},
	}
	for _, p := range paid {
		pay := &m.Payment{StudentID: students[0].ID, Type: m.PaymentTuition,
			Amount: decimal.RequireFromString(p.amount), DueDate: p.on}
		if err := s.CreatePayment(ctx, pay); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
		if _, err := s.MarkPaymentPaid(ctx, pay.ID, m.MethodCash, p.on); err != nil {
			t.Fatalf("MarkPaymentPaid failed: %v", err)
		}
	}
	unpaid := &m.Payment{StudentID: students[1].ID, Type: m.PaymentExam,
		Amount: decimal.NewFromInt(999), DueDate: now}
	if err := s.CreatePayment(ctx, unpaid); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	order := &m.Cantine{StudentID: students[1].ID, MealType: m.MealBreakfast,
		Date: now.Add(-3 * 24 * time.Hour), TotalAmount: decimal.RequireFromString("2.00")}
	if err := s.CreateCantine(ctx, order); err != nil {
		t.Fatalf("CreateCantine failed: %v", err)
	}

	trends, err := kpi.New(conn.DB, conn.Dialect, nil).Summary(ctx, now, week)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(trends) != 6 {
		t.Fatalf("Expected 6 indicators, got %d", len(trends))
	}
	got := byName(trends)

	expect := []struct {
		name              string
		current, previous string
		direction         kpi.Direction
	}{
		{kpi.NewStudents, "2", "0", kpi.Up},
		{kpi.NewTeachers, "0", "0", kpi.Flat},
		{kpi.NewCourses, "0", "0", kpi.Flat},
		{kpi.EventsStarting, "1", "2", kpi.Down},
		{kpi.PaidRevenue, "100.75", "20.25", kpi.Up},
		{kpi.CantineOrders, "1", "0", kpi.Up},
	}
	for _, e := range expect {
		tr, ok := got[e.name]
		if !ok {
			t.Errorf("Missing indicator %s", e.name)
			continue
		}
		if !tr.Current.Equal(decimal.RequireFromString(e.current)) || !tr.Previous.Equal(decimal.RequireFromString(e.previous)) {
			t.Errorf("%s: expected %s vs %s, got %s vs %s", e.name, e.current, e.previous, tr.Current, tr.Previous)
		}
		if tr.Direction != e.direction {
			t.Errorf("%s: expected direction %s, got %s", e.name, e.direction, tr.Direction)
		}
	}
}

func TestSummaryRejectsEmptyWindow(t *testing.T) {
	conn := dbtest.Migrated(t)
	if _, err := kpi.New(conn.DB, conn.Dialect, nil).Summary(context.Background(), time.Now(), 0); err == nil {
		t.Error("Expected an error for a zero window")
	}
}
