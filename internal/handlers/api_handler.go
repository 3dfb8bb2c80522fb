package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

// APIHandler serves the JSON endpoints under /api.
type APIHandler struct {
	expenseService  services.ExpenseServicer
	categoryService services.CategoryServicer
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(expenseService services.ExpenseServicer, categoryService services.CategoryServicer) *APIHandler {
	return &APIHandler{
		expenseService:  expenseService,
		categoryService: categoryService,
	}
}

// ListExpensesQuery represents the query parameters accepted by ListExpenses.
type ListExpensesQuery struct {
	pagination.PageRequest
	From       string `form:"from" binding:"omitempty,dateonly"`
	To         string `form:"to" binding:"omitempty,dateonly"`
	CategoryID *uint  `form:"category_id" binding:"omitempty,min=1"`
}

// ExpenseResponse represents an expense in API responses. Amounts are
// decimal strings so 12.50 reads back as exactly "12.50".
type ExpenseResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Amount       string `json:"amount"`
	CategoryID   *uint  `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Description  string `json:"description,omitempty"`
	ExpenseDate  string `json:"expense_date"`
	CreatedAt    string `json:"created_at"`
}

// CategoryTotalResponse is one per-category aggregate row.
type CategoryTotalResponse struct {
	CategoryID   *uint  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	TotalExpense     string                  `json:"total_expense"`
	MonthlyExpense   string                  `json:"monthly_expense"`
	CategoryExpenses []CategoryTotalResponse `json:"category_expenses"`
}

func toExpenseResponse(e models.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      money.Format(e.Amount),
		CategoryID:  e.CategoryID,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format(time.DateOnly),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.Category != nil {
		resp.CategoryName = e.Category.Name
	}
	return resp
}

func toExpenseResponses(expenses []models.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toCategoryTotalResponses(totals []services.CategoryTotal) []CategoryTotalResponse {
	out := make([]CategoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, CategoryTotalResponse{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Total:        money.Format(t.Total),
			Count:        t.Count,
		})
	}
	return out
}

// ListExpenses returns the authenticated user's expenses.
// @Summary     List expenses
// @Description Get a paginated list of the authenticated user's expenses
// @Tags        expenses
// @Produce     json
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to query string false "End date (YYYY-MM-DD)"
// @Param       category_id query int false "Filter by category"
// @Success     200 {object} pagination.PageResponse[ExpenseResponse]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /api/expenses [get]
func (h *APIHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListExpensesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ExpenseFilter{CategoryID: query.CategoryID}
	if query.From != "" {
		from, _ := time.Parse(time.DateOnly, query.From)
		filter.From = &from
	}
	if query.To != "" {
		to, _ := time.Parse(time.DateOnly, query.To)
		filter.To = &to
	}

	result, err := h.expenseService.GetUserExpenses(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := pagination.NewPageResponse(toExpenseResponses(result.Data), result.Page, result.PageSize, result.TotalItems)
	c.JSON(http.StatusOK, resp)
}

// ExpensesByCategory returns the user's expenses in a single category.
// @Summary     List expenses by category
// @Description Get the authenticated user's expenses within one category
// @Tags        expenses
// @Produce     json
// @Param       id path int true "Category ID"
// @Success     200 {object} pagination.PageResponse[ExpenseResponse]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /api/expenses/category/{id} [get]
func (h *APIHandler) ExpensesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := h.categoryService.GetCategoryByID(categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.expenseService.GetUserExpenses(userID, page, services.ExpenseFilter{CategoryID: &categoryID})
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := pagination.NewPageResponse(toExpenseResponses(result.Data), result.Page, result.PageSize, result.TotalItems)
	c.JSON(http.StatusOK, resp)
}

// ListCategories returns all categories.
// @Summary     List categories
// @Description Get all expense categories, ordered by name
// @Tags        categories
// @Produce     json
// @Success     200 {array} models.Category
// @Router      /api/categories [get]
func (h *APIHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Stats returns the authenticated user's spending statistics.
// @Summary     Spending statistics
// @Description All-time total, current-month total, and per-category totals
// @Tags        stats
// @Produce     json
// @Success     200 {object} StatsResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /api/stats [get]
func (h *APIHandler) Stats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.expenseService.TotalAmount(userID, nil, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	first, last := currentMonthRange()
	monthly, err := h.expenseService.TotalAmount(userID, &first, &last)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.expenseService.CategoryTotals(userID, nil, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TotalExpense:     money.Format(total),
		MonthlyExpense:   money.Format(monthly),
		CategoryExpenses: toCategoryTotalResponses(totals),
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
