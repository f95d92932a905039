package transaction

import (
	"time"

	"fintrack-backend/internal/models"
	"fintrack-backend/internal/money"
)

// Response is the API view of a transaction; Amount is in major units.
type Response struct {
	ID                uint                      `json:"id"`
	UserID            uint                      `json:"userId"`
	Type              models.TransactionType    `json:"type"`
	Title             string                    `json:"title"`
	Amount            float64                   `json:"amount"`
	Category          string                    `json:"category"`
	ReceiptURL        *string                   `json:"receiptUrl"`
	Description       *string                   `json:"description"`
	Date              time.Time                 `json:"date"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurringInterval *models.RecurringInterval `json:"recurringInterval"`
	NextRecurringDate *time.Time                `json:"nextRecurringDate"`
	LastProcessed     *time.Time                `json:"lastProcessed"`
	Status            models.TransactionStatus  `json:"status"`
	PaymentMethod     models.PaymentMethod      `json:"paymentMethod"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

func ToResponse(t models.Transaction) Response {
	return Response{
		ID:                t.ID,
		UserID:            t.UserID,
		Type:              t.Type,
		Title:             t.Title,
		Amount:            money.ToMajor(t.Amount),
		Category:          t.Category,
		ReceiptURL:        t.ReceiptURL,
		Description:       t.Description,
		Date:              t.Date,
		IsRecurring:       t.IsRecurring,
		RecurringInterval: t.RecurringInterval,
		NextRecurringDate: t.NextRecurringDate,
		LastProcessed:     t.LastProcessed,
		Status:            t.Status,
		PaymentMethod:     t.PaymentMethod,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func ToResponses(rows []models.Transaction) []Response {
	out := make([]Response, 0, len(rows))
	for _, t := range rows {
		out = append(out, ToResponse(t))
	}
	return out
}

type Pagination struct {
	PageSize   int   `json:"pageSize"`
	PageNumber int   `json:"pageNumber"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	Skip       int   `json:"skip"`
}

func PaginationOf(p Page) Pagination {
	return Pagination{
		PageSize:   p.Filter.PageSize,
		PageNumber: p.Filter.PageNumber,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages(),
		Skip:       p.Filter.Skip(),
	}
}
