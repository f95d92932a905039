package analytics

import (
	"context"
	"testing"
	"time"

	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/testutil"
	"fintrack-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
)

func TestSummaryThisMonthScenario(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	store := transaction.NewStore(db)
	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")

	now := time.Now().UTC()
	for _, tx := range []models.Transaction{
		{UserID: alice.ID, Type: models.TransactionExpense, Title: "Lunch", Amount: 1000, Category: "Food", Date: now},
		{UserID: alice.ID, Type: models.TransactionExpense, Title: "Dinner", Amount: 2000, Category: "Food", Date: now},
		{UserID: alice.ID, Type: models.TransactionIncome, Title: "Pay", Amount: 10000, Category: "Salary", Date: now},
		{UserID: bob.ID, Type: models.TransactionIncome, Title: "Bonus", Amount: 777700, Category: "Salary", Date: now},
	} {
		tx.Status, tx.PaymentMethod = models.StatusCompleted, models.PaymentCash
		if err := store.Create(context.Background(), &tx); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewService(store)
	app, api := testutil.App(cfg)
	api.Get("/analytics/summary", SummaryHandler(svc))
	api.Get("/analytics/chart", ChartHandler(svc))
	api.Get("/analytics/expense-breakdown", ExpenseBreakdownHandler(svc))
	token := testutil.Token(t, cfg, alice)

	var summary struct {
		Data Summary `json:"data"`
	}
	if status := testutil.Do(t, app, testutil.Request(t, "GET", "/api/analytics/summary?preset=this-month", nil, token), &summary); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	s := summary.Data
	if s.TotalIncome != 100 || s.TotalExpenses != 30 || s.AvailableBalance != 70 || s.TransactionCount != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Preset.Value != "this-month" || s.Preset.Label != "This Month" || s.PercentageChange.PrevPeriodTo == nil {
		t.Fatalf("unexpected preset or comparison %+v / %+v", s.Preset, s.PercentageChange)
	}

	if status := testutil.Do(t, app, testutil.Request(t, "GET", "/api/analytics/summary?preset=bogus", nil, token), &summary); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if summary.Data.Preset.Value != "all-time" || summary.Data.PercentageChange.PrevPeriodFrom != nil {
		t.Fatalf("unknown preset should fall back to all-time, got %+v", summary.Data.Preset)
	}

	var chart struct {
		Data Chart `json:"data"`
	}
	testutil.Do(t, app, testutil.Request(t, "GET", "/api/analytics/chart?preset=today", nil, token), &chart)
	if len(chart.Data.ChartData) != 1 || chart.Data.TotalExpenseCount != 2 || chart.Data.TotalIncomeCount != 1 {
		t.Fatalf("unexpected chart %+v", chart.Data)
	}

	var breakdown struct {
		Data Breakdown `json:"data"`
	}
	testutil.Do(t, app, testutil.Request(t, "GET", "/api/analytics/expense-breakdown", nil, token), &breakdown)
	if len(breakdown.Data.Breakdown) != 1 || breakdown.Data.Breakdown[0].Name != "Food" || breakdown.Data.Breakdown[0].Percentage != 100 {
		t.Fatalf("unexpected breakdown %+v", breakdown.Data)
	}
}

func TestSummaryPriorWindowBoundaries(t *testing.T) {
	db := testutil.DB(t)
	store := transaction.NewStore(db)
	user := testutil.CreateUser(t, db, "carol@example.com")

	r := daterange.Resolve("custom", "2026-03-11", "2026-03-20", time.Now())
	prevFrom, prevTo, ok := PriorWindow(r)
	if !ok {
		t.Fatal("expected a prior window for a custom range")
	}
	if !prevFrom.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) || !prevTo.Equal(r.From.Add(-time.Nanosecond)) {
		t.Fatalf("unexpected prior window %v .. %v", prevFrom, prevTo)
	}

	for _, tx := range []models.Transaction{
		// current window, first instant
		{Type: models.TransactionIncome, Title: "Pay", Amount: 200000, Category: "Salary", Date: *r.From},
		{Type: models.TransactionExpense, Title: "Rent", Amount: 50000, Category: "Housing", Date: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
		// prior window, both edges
		{Type: models.TransactionIncome, Title: "Old pay", Amount: 100000, Category: "Salary", Date: prevTo},
		{Type: models.TransactionExpense, Title: "Old rent", Amount: 40000, Category: "Housing", Date: prevFrom},
		// before the prior window
		{Type: models.TransactionExpense, Title: "Too early", Amount: 99900, Category: "Housing", Date: prevFrom.Add(-time.Hour)},
	} {
		tx.UserID, tx.Status, tx.PaymentMethod = user.ID, models.StatusCompleted, models.PaymentCash
		if err := store.Create(context.Background(), &tx); err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewService(store).Summary(context.Background(), user.ID, r)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TotalIncome != 2000 || s.TotalExpenses != 500 || s.TransactionCount != 2 {
		t.Fatalf("unexpected current totals %+v", s)
	}

	pc := s.PercentageChange
	want := PreviousValues{IncomeAmount: 1000, ExpenseAmount: 400, BalanceAmount: 600}
	if pc.PreviousValues != want {
		t.Fatalf("expected previous values %+v, got %+v", want, pc.PreviousValues)
	}
	if pc.Income != 100 || pc.Expenses != 25 || pc.Balance != 150 {
		t.Fatalf("unexpected percentage change %+v", pc)
	}
	if pc.PrevPeriodFrom == nil || !pc.PrevPeriodFrom.Equal(prevFrom) || pc.PrevPeriodTo == nil || !pc.PrevPeriodTo.Equal(prevTo) {
		t.Fatalf("unexpected prior period %v .. %v", pc.PrevPeriodFrom, pc.PrevPeriodTo)
	}
}
