package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"fintrack-backend/internal/logger"
)

func TestMonthlyReportJSON(t *testing.T) {
	msg := &MonthlyReport{
		ReportID: 7, UserID: 3, Email: "a@example.com", Period: "March 2026",
		TotalIncome: 100, TotalExpense: 30, Balance: 70, Transactions: 3,
		Timestamp: time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC),
	}
	b, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"availableBalance":70`) {
		t.Fatalf("unexpected payload %s", b)
	}
	back, err := MonthlyReportFromJSON(b)
	if err != nil || back.Period != "March 2026" || back.ReportID != 7 {
		t.Fatalf("decode: %+v (%v)", back, err)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Log: logger.NewWithWriter(&buf, "info")}
	if err := p.PublishMonthlyReport(context.Background(), &MonthlyReport{ReportID: 1, Period: "May 2026"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "May 2026") {
		t.Fatalf("expected the period in the log, got %q", buf.String())
	}
}
