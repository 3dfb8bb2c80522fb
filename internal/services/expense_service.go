package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, categoryService CategoryServicer) ExpenseServicer {
	return &expenseService{
		db:              db,
		categoryService: categoryService,
	}
}

// CreateExpense creates a new expense owned by the given user. The amount is
// integer cents and must be positive; the category is optional but must
// exist when given.
func (s *expenseService) CreateExpense(
	userID uint,
	title string,
	amount int64,
	categoryID *uint,
	description string,
	date time.Time,
) (*models.Expense, error) {
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if date.IsZero() {
		return nil, apperrors.ErrInvalidDate
	}

	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(*categoryID); err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		CategoryID:  categoryID,
		Description: description,
		ExpenseDate: date,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// GetUserExpenses retrieves a paginated, filtered list of the user's
// expenses, newest expense date first.
func (s *expenseService) GetUserExpenses(userID uint, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.From != nil {
		q = q.Where("expense_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("expense_date <= ?", *f.To)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// RecentExpenses returns the user's most recent expenses, newest first.
func (s *expenseService) RecentExpenses(userID uint, limit int) ([]models.Expense, error) {
	if limit <= 0 {
		limit = 10
	}

	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Preload("Category").
		Order("expense_date DESC, id DESC").
		Limit(limit).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user. An expense
// owned by another user is indistinguishable from a missing one.
func (s *expenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).
		Preload("Category").
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates an expense owned by the given user.
func (s *expenseService) UpdateExpense(
	userID uint,
	expenseID uint,
	title string,
	amount int64,
	categoryID *uint,
	description string,
	date time.Time,
) (*models.Expense, error) {
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if date.IsZero() {
		return nil, apperrors.ErrInvalidDate
	}

	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(*categoryID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"title":        title,
		"amount":       amount,
		"category_id":  categoryID,
		"description":  description,
		"expense_date": date,
	}

	// The WHERE clause repeats the owner scope so a concurrent delete cannot
	// turn this into a write against another row.
	res := s.db.Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrExpenseNotFound
	}

	expense.Title = title
	expense.Amount = amount
	expense.CategoryID = categoryID
	expense.Description = description
	expense.ExpenseDate = date
	expense.Category = nil
	return expense, nil
}

// DeleteExpense deletes an expense owned by the given user. Deleting an
// expense that does not exist or is not owned reports not-found.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// TotalAmount returns the live sum of the user's expense amounts in cents,
// optionally restricted to a date range.
func (s *expenseService) TotalAmount(userID uint, from, to *time.Time) (int64, error) {
	q := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	q = applyExpenseFilters(q, ExpenseFilter{From: from, To: to})

	var total int64
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// CategoryTotals returns the user's per-category expense sums and counts,
// optionally restricted to a date range. Uncategorized expenses land in
// their own bucket so the rows always add up to TotalAmount over the same
// range. Categories without expenses in the range are omitted.
func (s *expenseService) CategoryTotals(userID uint, from, to *time.Time) ([]CategoryTotal, error) {
	q := s.db.Model(&models.Expense{}).
		Select("expenses.category_id AS category_id, COALESCE(categories.name, 'Uncategorized') AS category_name, SUM(expenses.amount) AS total, COUNT(expenses.id) AS count").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userID).
		Group("expenses.category_id, categories.name").
		Order("total DESC")
	if from != nil {
		q = q.Where("expenses.expense_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("expenses.expense_date <= ?", *to)
	}

	var totals []CategoryTotal
	if err := q.Scan(&totals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return totals, nil
}
