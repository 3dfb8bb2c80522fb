package models

import "time"

// Expense represents a single dated expense owned by a user.
//
// Amount is stored as integer cents (BIGINT) rather than a floating-point
// value so that aggregate sums never accumulate rounding drift.
type Expense struct {
	Base
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	CategoryID  *uint     `json:"category_id,omitempty"`
	Description string    `json:"description"`
	ExpenseDate time.Time `gorm:"type:date;not null" json:"expense_date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
