package services

import (
	"time"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CategoryServicer defines the contract for category-related business logic.
// Categories are global; none of these operations are user-scoped.
type CategoryServicer interface {
	ListCategories() ([]models.Category, error)
	GetCategoryByID(categoryID uint) (*models.Category, error)
	CreateCategory(name, description string) (*models.Category, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *uint
}

// CategoryTotal is one row of the per-category aggregate: the live sum and
// count of a user's expenses in a category. A nil CategoryID marks the
// bucket of uncategorized expenses.
type CategoryTotal struct {
	CategoryID   *uint  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
	Count        int64  `json:"count"`
}

// ExpenseServicer defines the contract for expense-related business logic.
// Every operation takes the owning user's id explicitly; queries are always
// scoped to that user.
type ExpenseServicer interface {
	CreateExpense(userID uint, title string, amount int64, categoryID *uint, description string, date time.Time) (*models.Expense, error)
	GetUserExpenses(userID uint, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	RecentExpenses(userID uint, limit int) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID uint) (*models.Expense, error)
	UpdateExpense(userID, expenseID uint, title string, amount int64, categoryID *uint, description string, date time.Time) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
	TotalAmount(userID uint, from, to *time.Time) (int64, error)
	CategoryTotals(userID uint, from, to *time.Time) ([]CategoryTotal, error)
}
