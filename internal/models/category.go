package models

// Category represents an expense category. Categories are global: every user
// records expenses against the same set, seeded by migration and extended
// through administrative inserts.
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	Expenses []Expense `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
