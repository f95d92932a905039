package models

import "time"

// User owns transactions, reports and one ReportSettings row; the
// dependents reference it with ON DELETE CASCADE.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	ProfilePicture *string   `gorm:"size:512" json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
