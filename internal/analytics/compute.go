// Package analytics aggregates a user's transactions into period summaries,
// a daily chart and an expense breakdown. The functions in this file are
// pure; Service loads the rows.
package analytics

import (
	"sort"
	"time"

	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/money"
)

const (
	topCategories = 3
	othersBucket  = "others"
	dayKey        = "2006-01-02"
)

// Totals are cents, always non-negative regardless of the stored sign.
type Totals struct {
	Income   int64
	Expenses int64
	Count    int
}

func (t Totals) Balance() int64 { return t.Income - t.Expenses }

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func Sum(rows []models.Transaction) Totals {
	var t Totals
	for _, r := range rows {
		switch r.Type {
		case models.TransactionIncome:
			t.Income += abs(r.Amount)
		case models.TransactionExpense:
			t.Expenses += abs(r.Amount)
		}
		t.Count++
	}
	return t
}

// PercentageChange compares cur against prev: 0 when both are 0, 100 when
// only prev is 0, otherwise the change relative to |prev|, two decimals.
func PercentageChange(prev, cur int64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return money.Percent(cur-prev, abs(prev), 2)
}

// PriorWindow is the comparison period for r: the same number of days
// right before it, or one calendar year back for yearly presets.
func PriorWindow(r daterange.Range) (from, to time.Time, ok bool) {
	if r.IsAllTime() {
		return time.Time{}, time.Time{}, false
	}
	if r.IsYearly() {
		return minusYear(*r.From), minusYear(*r.To), true
	}
	days := int(r.To.Sub(*r.From)/(24*time.Hour)) + 1
	return r.From.AddDate(0, 0, -days), r.To.AddDate(0, 0, -days), true
}

// minusYear maps Feb 29 to Feb 28 instead of rolling into March.
func minusYear(t time.Time) time.Time {
	y, m, d := t.Date()
	if m == time.February && d == 29 {
		d = 28
	}
	return time.Date(y-1, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

type SavingRate struct {
	Percentage   float64 `json:"percentage"`
	ExpenseRatio float64 `json:"expenseRatio"`
}

type PreviousValues struct {
	IncomeAmount  float64 `json:"incomeAmount"`
	ExpenseAmount float64 `json:"expenseAmount"`
	BalanceAmount float64 `json:"balanceAmount"`
}

type Change struct {
	Income         float64        `json:"income"`
	Expenses       float64        `json:"expenses"`
	Balance        float64        `json:"balance"`
	PrevPeriodFrom *time.Time     `json:"prevPeriodFrom"`
	PrevPeriodTo   *time.Time     `json:"prevPeriodTo"`
	PreviousValues PreviousValues `json:"previousValues"`
}

type Summary struct {
	AvailableBalance float64         `json:"availableBalance"`
	TotalIncome      float64         `json:"totalIncome"`
	TotalExpenses    float64         `json:"totalExpenses"`
	SavingRate       SavingRate      `json:"savingRate"`
	TransactionCount int             `json:"transactionCount"`
	PercentageChange Change          `json:"percentageChange"`
	Preset           daterange.Range `json:"preset"`
}

// BuildSummary turns current totals into the summary payload. prev is nil
// when no comparison applies (all-time).
func BuildSummary(cur Totals, prev *Totals, r daterange.Range, prevFrom, prevTo *time.Time) Summary {
	s := Summary{
		AvailableBalance: money.ToMajor(cur.Balance()),
		TotalIncome:      money.ToMajor(cur.Income),
		TotalExpenses:    money.ToMajor(cur.Expenses),
		TransactionCount: cur.Count,
		Preset:           r,
	}
	if cur.Income > 0 {
		s.SavingRate = SavingRate{
			Percentage:   money.Percent(cur.Balance(), cur.Income, 2),
			ExpenseRatio: money.Percent(cur.Expenses, cur.Income, 2),
		}
	}
	if prev != nil {
		s.PercentageChange = Change{
			Income:         PercentageChange(prev.Income, cur.Income),
			Expenses:       PercentageChange(prev.Expenses, cur.Expenses),
			Balance:        PercentageChange(prev.Balance(), cur.Balance()),
			PrevPeriodFrom: prevFrom,
			PrevPeriodTo:   prevTo,
			PreviousValues: PreviousValues{
				IncomeAmount:  money.ToMajor(prev.Income),
				ExpenseAmount: money.ToMajor(prev.Expenses),
				BalanceAmount: money.ToMajor(prev.Balance()),
			},
		}
	}
	return s
}

type ChartPoint struct {
	Date     string  `json:"date"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type Chart struct {
	ChartData         []ChartPoint    `json:"chartData"`
	TotalIncomeCount  int             `json:"totalIncomeCount"`
	TotalExpenseCount int             `json:"totalExpenseCount"`
	Preset            daterange.Range `json:"preset"`
}

// BuildChart groups rows by UTC calendar day, oldest first.
func BuildChart(rows []models.Transaction, r daterange.Range) Chart {
	type bucket struct{ income, expenses int64 }
	days := map[string]*bucket{}
	c := Chart{ChartData: []ChartPoint{}, Preset: r}

	for _, row := range rows {
		key := row.Date.UTC().Format(dayKey)
		b, ok := days[key]
		if !ok {
			b = &bucket{}
			days[key] = b
		}
		switch row.Type {
		case models.TransactionIncome:
			b.income += abs(row.Amount)
			c.TotalIncomeCount++
		case models.TransactionExpense:
			b.expenses += abs(row.Amount)
			c.TotalExpenseCount++
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c.ChartData = append(c.ChartData, ChartPoint{
			Date:     k,
			Income:   money.ToMajor(days[k].income),
			Expenses: money.ToMajor(days[k].expenses),
		})
	}
	return c
}

type BreakdownEntry struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage int     `json:"percentage"`
}

type Breakdown struct {
	TotalSpent float64          `json:"totalSpent"`
	Breakdown  []BreakdownEntry `json:"breakdown"`
	Preset     daterange.Range  `json:"preset"`
}

// BuildBreakdown keeps the three largest expense categories and folds the
// rest into "others". Percentages are of the retained total.
func BuildBreakdown(rows []models.Transaction, r daterange.Range) Breakdown {
	sums := map[string]int64{}
	for _, row := range rows {
		if row.Type != models.TransactionExpense {
			continue
		}
		sums[row.Category] += abs(row.Amount)
	}

	type cat struct {
		name  string
		value int64
	}
	cats := make([]cat, 0, len(sums))
	for name, v := range sums {
		cats = append(cats, cat{name, v})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].value != cats[j].value {
			return cats[i].value > cats[j].value
		}
		return cats[i].name < cats[j].name
	})

	kept := cats
	if len(cats) > topCategories {
		kept = append([]cat{}, cats[:topCategories]...)
		var others int64
		for _, c := range cats[topCategories:] {
			others += c.value
		}
		if others > 0 {
			kept = append(kept, cat{othersBucket, others})
		}
	}

	var total int64
	for _, c := range kept {
		total += c.value
	}

	b := Breakdown{
		TotalSpent: money.ToMajor(total),
		Breakdown:  make([]BreakdownEntry, 0, len(kept)),
		Preset:     r,
	}
	for _, c := range kept {
		b.Breakdown = append(b.Breakdown, BreakdownEntry{
			Name:       c.name,
			Value:      money.ToMajor(c.value),
			Percentage: int(money.Percent(c.value, total, 0)),
		})
	}
	return b
}
