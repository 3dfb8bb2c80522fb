package models

// User represents a registered user. Users are created at registration and
// are immutable afterwards.
type User struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Expenses []Expense `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
