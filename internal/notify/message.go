package notify

import (
	"encoding/json"
	"time"
)

// MonthlyReport is the payload a mail worker consumes to send the user's
// report for one closed month.
type MonthlyReport struct {
	ReportID     uint      `json:"reportId"`
	UserID       uint      `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Period       string    `json:"period"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalIncome  float64   `json:"totalIncome"`
	TotalExpense float64   `json:"totalExpenses"`
	Balance      float64   `json:"availableBalance"`
	SavingsRate  float64   `json:"savingsRate"`
	Transactions int       `json:"transactionCount"`
	TopExpenses  []string  `json:"topExpenseCategories"`
	Timestamp    time.Time `json:"timestamp"`
}

func (m *MonthlyReport) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MonthlyReportFromJSON(data []byte) (*MonthlyReport, error) {
	var msg MonthlyReport
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
