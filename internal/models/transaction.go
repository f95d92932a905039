package models

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense:
		return true
	}
	return false
}

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

func (i RecurringInterval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "CARD"
	PaymentBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentAutoDebit     PaymentMethod = "AUTO_DEBIT"
	PaymentCash          PaymentMethod = "CASH"
	PaymentOther         PaymentMethod = "OTHER"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCard, PaymentBankTransfer, PaymentMobilePayment, PaymentAutoDebit, PaymentCash, PaymentOther:
		return true
	}
	return false
}

// Transaction amounts are stored in cents and are always non-negative;
// the sign comes from Type.
type Transaction struct {
	ID                uint               `gorm:"primaryKey"`
	UserID            uint               `gorm:"index;not null"`
	User              *User              `gorm:"constraint:OnDelete:CASCADE"`
	Type              TransactionType    `gorm:"size:10;index;not null"`
	Title             string             `gorm:"size:255;not null"`
	Amount            int64              `gorm:"not null"`
	Category          string             `gorm:"size:100;not null"`
	ReceiptURL        *string            `gorm:"size:512"`
	Description       *string            `gorm:"size:1000"`
	Date              time.Time          `gorm:"index;not null"`
	IsRecurring       bool               `gorm:"not null;default:false"`
	RecurringInterval *RecurringInterval `gorm:"size:10"`
	NextRecurringDate *time.Time         `gorm:"index"`
	LastProcessed     *time.Time
	Status            TransactionStatus `gorm:"size:10;not null;default:COMPLETED"`
	PaymentMethod     PaymentMethod     `gorm:"size:20;not null;default:CASH"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
