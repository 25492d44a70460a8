package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// letterThresholds are the minimum percentages for each letter, best first
var letterThresholds = []struct {
	min    decimal.Decimal
	letter LetterGrade
}{
	{decimal.NewFromInt(90), GradeAPlus},
	{decimal.NewFromInt(80), GradeA},
	{decimal.NewFromInt(75), GradeBPlus},
	{decimal.NewFromInt(70), GradeB},
	{decimal.NewFromInt(65), GradeCPlus},
	{decimal.NewFromInt(60), GradeC},
	{decimal.NewFromInt(50), GradeD},
}

// Percentage returns marks/total*100 rounded half-up to two places.
// total must be positive.
func Percentage(marks, total decimal.Decimal) decimal.Decimal {
	return marks.Mul(hundred).DivRound(total, 2)
}

// LetterFor maps a percentage to its letter grade
func LetterFor(pct decimal.Decimal) LetterGrade {
	for _, t := range letterThresholds {
		if pct.GreaterThanOrEqual(t.min) {
			return t.letter
		}
	}
	return GradeF
}

// Derive fills Percentage and Grade when they were not given
func (g *Grade) Derive() {
	if !g.TotalMarks.IsPositive() {
		return
	}
	if g.Percentage == nil {
		pct := Percentage(g.Marks, g.TotalMarks)
		g.Percentage = &pct
	}
	if g.Grade == nil {
		letter := LetterFor(*g.Percentage)
		g.Grade = &letter
	}
}

// NewReceiptNumber returns a unique payment receipt number
func NewReceiptNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RCPT-" + strings.ToUpper(id[:16])
}

// ItemsTotal sums quantity*unit_price over items
func ItemsTotal(items []CantineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}
