package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/money"
	"fintrack-backend/internal/recurrence"
	"fintrack-backend/internal/validation"
)

// Amounts are in major units. The upper bound keeps cents well inside int64.
const (
	minAmount = 1
	maxAmount = 1e13
)

// CreateRequest is the body of POST /transactions/create. Amount is in major
// units; Date accepts "2006-01-02" or RFC 3339 and defaults to now.
type CreateRequest struct {
	Title             string                    `json:"title" validate:"required,max=255"`
	Type              models.TransactionType    `json:"type" validate:"required,enum"`
	Amount            float64                   `json:"amount" validate:"gte=1,lte=10000000000000"`
	Category          string                    `json:"category" validate:"required,max=100"`
	Date              string                    `json:"date"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurringInterval *models.RecurringInterval `json:"recurringInterval" validate:"omitnil,enum"`
	ReceiptURL        *string                   `json:"receiptUrl"`
	Description       *string                   `json:"description"`
	PaymentMethod     models.PaymentMethod      `json:"paymentMethod" validate:"omitempty,enum"`
}

// Build validates the request and returns the row to insert for userID.
func (r CreateRequest) Build(userID uint, now time.Time) (models.Transaction, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)

	errs := validation.Struct(r)

	date := now
	if strings.TrimSpace(r.Date) != "" {
		d, ok := daterange.ParseDate(r.Date)
		if !ok {
			errs.Add("date", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		date = d
	}

	cents := toCents(errs, r.Amount)

	method := r.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}

	if err := errs.Err(); err != nil {
		return models.Transaction{}, err
	}

	tx := models.Transaction{
		UserID:        userID,
		Type:          r.Type,
		Title:         r.Title,
		Amount:        cents,
		Category:      r.Category,
		ReceiptURL:    emptyToNil(r.ReceiptURL),
		Description:   emptyToNil(r.Description),
		Date:          date.UTC(),
		IsRecurring:   r.IsRecurring,
		Status:        models.StatusCompleted,
		PaymentMethod: method,
	}
	if err := applyRecurrence(&tx, r.IsRecurring, r.RecurringInterval, now); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// toCents converts a validated amount, recording a field error when it does
// not fit.
func toCents(errs validation.Errors, amount float64) int64 {
	if amount < minAmount || amount > maxAmount {
		return 0
	}
	cents, err := money.FromMajor(amount)
	if err != nil {
		errs.Add("amount", err.Error())
	}
	return cents
}

// applyRecurrence keeps the recurring columns consistent: a non-recurring
// row never carries an interval or a next date.
func applyRecurrence(tx *models.Transaction, isRecurring bool, interval *models.RecurringInterval, now time.Time) error {
	if !isRecurring || interval == nil {
		tx.IsRecurring = isRecurring && interval != nil
		tx.RecurringInterval = nil
		tx.NextRecurringDate = nil
		return nil
	}
	next, err := recurrence.Schedule(true, interval, tx.Date, now)
	if err != nil {
		return err
	}
	iv := *interval
	tx.IsRecurring = true
	tx.RecurringInterval = &iv
	tx.NextRecurringDate = next
	return nil
}

// NullableInterval tells an absent recurringInterval apart from an explicit null.
type NullableInterval struct {
	Set   bool
	Value *models.RecurringInterval
}

func (n *NullableInterval) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v models.RecurringInterval
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// UpdateRequest has partial semantics: nil fields keep their stored value.
type UpdateRequest struct {
	Title             *string                   `json:"title" validate:"omitnil,required,max=255"`
	Type              *models.TransactionType   `json:"type" validate:"omitnil,enum"`
	Amount            *float64                  `json:"amount" validate:"omitnil,gte=1,lte=10000000000000"`
	Category          *string                   `json:"category" validate:"omitnil,required,max=100"`
	Date              *string                   `json:"date"`
	IsRecurring       *bool                     `json:"isRecurring"`
	RecurringInterval NullableInterval          `json:"recurringInterval" validate:"-"`
	ReceiptURL        *string                   `json:"receiptUrl"`
	Description       *string                   `json:"description"`
	PaymentMethod     *models.PaymentMethod     `json:"paymentMethod" validate:"omitnil,enum"`
	Status            *models.TransactionStatus `json:"status" validate:"omitnil,enum"`
}

// Apply validates the request and merges it into tx.
func (r UpdateRequest) Apply(tx *models.Transaction, now time.Time) error {
	r.Title = trimmed(r.Title)
	r.Category = trimmed(r.Category)

	errs := validation.Struct(r)

	if r.Title != nil {
		tx.Title = *r.Title
	}
	if r.Type != nil {
		tx.Type = *r.Type
	}
	if r.Amount != nil {
		tx.Amount = toCents(errs, *r.Amount)
	}
	if r.Category != nil {
		tx.Category = *r.Category
	}
	if r.Date != nil {
		d, ok := daterange.ParseDate(*r.Date)
		if !ok {
			errs.Add("date", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		tx.Date = d
	}
	if r.ReceiptURL != nil {
		tx.ReceiptURL = emptyToNil(r.ReceiptURL)
	}
	if r.Description != nil {
		tx.Description = emptyToNil(r.Description)
	}
	if r.PaymentMethod != nil {
		tx.PaymentMethod = *r.PaymentMethod
	}
	if r.Status != nil {
		tx.Status = *r.Status
	}

	isRecurring := tx.IsRecurring
	if r.IsRecurring != nil {
		isRecurring = *r.IsRecurring
	}
	interval := tx.RecurringInterval
	if r.RecurringInterval.Set {
		interval = r.RecurringInterval.Value
		if interval != nil && !interval.Valid() {
			errs.Add("recurringInterval", "is not a supported value")
		}
	}

	if err := errs.Err(); err != nil {
		return err
	}
	return applyRecurrence(tx, isRecurring, interval, now)
}

// BulkItem is one entry of POST /transactions/bulk-transaction. Bulk rows
// are never recurring.
type BulkItem struct {
	Title         string                 `json:"title" validate:"required,max=255"`
	Type          models.TransactionType `json:"type" validate:"required,enum"`
	Amount        float64                `json:"amount" validate:"gte=1,lte=10000000000000"`
	Category      string                 `json:"category" validate:"required,max=100"`
	Date          string                 `json:"date"`
	ReceiptURL    *string                `json:"receiptUrl"`
	Description   *string                `json:"description"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod" validate:"omitempty,enum"`
}

type BulkCreateRequest struct {
	Transactions []BulkItem `json:"transactions" validate:"dive"`
}

const maxBulkItems = 300

func (r BulkCreateRequest) Build(userID uint, now time.Time) ([]models.Transaction, error) {
	errs := validation.Errors{}
	if len(r.Transactions) == 0 {
		errs.Add("transactions", "At least one transaction is required")
		return nil, errs
	}
	if len(r.Transactions) > maxBulkItems {
		errs.Add("transactions", fmt.Sprintf("Must not exceed %d transactions", maxBulkItems))
		return nil, errs
	}

	errs = validation.Struct(r)
	rows := make([]models.Transaction, 0, len(r.Transactions))
	for i, item := range r.Transactions {
		tx, err := CreateRequest{
			Title:         item.Title,
			Type:          item.Type,
			Amount:        item.Amount,
			Category:      item.Category,
			Date:          item.Date,
			ReceiptURL:    item.ReceiptURL,
			Description:   item.Description,
			PaymentMethod: item.PaymentMethod,
		}.Build(userID, now)
		if verr, ok := err.(validation.Errors); ok {
			errs.Merge("transactions["+strconv.Itoa(i)+"]", verr)
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, tx)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

type BulkDeleteRequest struct {
	TransactionIDs []uint `json:"transactionIds"`
}

func (r BulkDeleteRequest) Validate() error {
	if len(r.TransactionIDs) == 0 {
		return validation.Errors{"transactionIds": "At least one transaction id is required"}
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
