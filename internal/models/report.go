package models

import "time"

type ReportStatus string

const (
	ReportSent       ReportStatus = "SENT"
	ReportPending    ReportStatus = "PENDING"
	ReportFailed     ReportStatus = "FAILED"
	ReportNoActivity ReportStatus = "NO_ACTIVITY"
)

type ReportFrequency string

const (
	FrequencyMonthly ReportFrequency = "MONTHLY"
)

type Report struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"index;not null" json:"userId"`
	User      *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Period    string       `gorm:"size:100;not null" json:"period"`
	SentDate  time.Time    `gorm:"not null" json:"sentDate"`
	Status    ReportStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ReportSettings is one-to-one with User.
type ReportSettings struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"userId"`
	User           *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Frequency      ReportFrequency `gorm:"size:20;not null;default:MONTHLY" json:"frequency"`
	IsEnabled      bool            `gorm:"not null;default:false" json:"isEnabled"`
	NextReportDate *time.Time      `gorm:"index" json:"nextReportDate"`
	LastSentDate   *time.Time      `json:"lastSentDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
