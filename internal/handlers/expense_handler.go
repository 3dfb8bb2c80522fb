package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/flash"
	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

// recentExpenseCount is how many expenses the dashboard lists.
const recentExpenseCount = 10

// ExpenseHandler handles the server-rendered expense pages.
type ExpenseHandler struct {
	expenseService  services.ExpenseServicer
	categoryService services.CategoryServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer, categoryService services.CategoryServicer) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService:  expenseService,
		categoryService: categoryService,
	}
}

// ExpenseForm represents the add/edit expense form payload. Amount stays a
// string here; it is parsed to cents only after validation.
type ExpenseForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Amount      string `form:"amount" binding:"required,money"`
	CategoryID  string `form:"category_id"`
	ExpenseDate string `form:"expense_date" binding:"required,dateonly"`
	Description string `form:"description" binding:"max=2000"`
}

// parse converts the validated form values into their domain types.
func (f *ExpenseForm) parse() (amount int64, categoryID *uint, date time.Time, err error) {
	amount, err = money.ParseToCents(f.Amount)
	if err != nil {
		return 0, nil, time.Time{}, err
	}
	if f.CategoryID != "" {
		id, perr := strconv.ParseUint(f.CategoryID, 10, 32)
		if perr != nil {
			return 0, nil, time.Time{}, perr
		}
		cid := uint(id)
		categoryID = &cid
	}
	date, err = time.Parse(time.DateOnly, f.ExpenseDate)
	if err != nil {
		return 0, nil, time.Time{}, err
	}
	return amount, categoryID, date, nil
}

// Dashboard renders the landing page: recent expenses, the all-time and
// current-month totals, and the per-category breakdown.
func (h *ExpenseHandler) Dashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	empty := gin.H{
		"Title":          "Dashboard",
		"RecentExpenses": []models.Expense{},
		"Total":          int64(0),
		"MonthlyTotal":   int64(0),
		"CategoryTotals": []services.CategoryTotal{},
	}

	recent, err := h.expenseService.RecentExpenses(userID, recentExpenseCount)
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Error loading dashboard.")
		render(c, "index.html", empty)
		return
	}

	total, err := h.expenseService.TotalAmount(userID, nil, nil)
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Error loading dashboard.")
		render(c, "index.html", empty)
		return
	}

	first, last := currentMonthRange()
	monthlyTotal, err := h.expenseService.TotalAmount(userID, &first, &last)
	if err != nil {
		monthlyTotal = 0
	}

	categoryTotals, err := h.expenseService.CategoryTotals(userID, nil, nil)
	if err != nil {
		categoryTotals = nil
	}

	render(c, "index.html", gin.H{
		"Title":          "Dashboard",
		"RecentExpenses": recent,
		"Total":          total,
		"MonthlyTotal":   monthlyTotal,
		"CategoryTotals": categoryTotals,
	})
}

// renderExpenseForm renders the shared add/edit form.
func (h *ExpenseHandler) renderExpenseForm(c *gin.Context, form ExpenseForm, editMode bool, expenseID uint) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		categories = nil
	}
	title := "Add Expense"
	if editMode {
		title = "Edit Expense"
	}
	render(c, "expense_form.html", gin.H{
		"Title":      title,
		"Form":       form,
		"Categories": categories,
		"EditMode":   editMode,
		"ExpenseID":  expenseID,
	})
}

// ShowAddExpense renders the empty add-expense form with today's date
// preselected.
func (h *ExpenseHandler) ShowAddExpense(c *gin.Context) {
	form := ExpenseForm{ExpenseDate: time.Now().Format(time.DateOnly)}
	h.renderExpenseForm(c, form, false, 0)
}

// AddExpense handles the add-expense form submission.
func (h *ExpenseHandler) AddExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form ExpenseForm
	if err := c.ShouldBind(&form); err != nil {
		flash.Set(c, flash.LevelDanger, "Title, a valid amount, and a date are required.")
		h.renderExpenseForm(c, form, false, 0)
		return
	}

	amount, categoryID, date, err := form.parse()
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Invalid input: "+err.Error())
		h.renderExpenseForm(c, form, false, 0)
		return
	}

	if _, err := h.expenseService.CreateExpense(userID, form.Title, amount, categoryID, form.Description, date); err != nil {
		flash.Set(c, flash.LevelDanger, err.Error())
		h.renderExpenseForm(c, form, false, 0)
		return
	}

	flash.Set(c, flash.LevelSuccess, "Expense added successfully!")
	c.Redirect(http.StatusFound, "/")
}

// ShowEditExpense renders the edit form prefilled with the expense's values.
func (h *ExpenseHandler) ShowEditExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Expense not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Expense not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	form := ExpenseForm{
		Title:       expense.Title,
		Amount:      money.Format(expense.Amount),
		ExpenseDate: expense.ExpenseDate.Format(time.DateOnly),
		Description: expense.Description,
	}
	if expense.CategoryID != nil {
		form.CategoryID = strconv.FormatUint(uint64(*expense.CategoryID), 10)
	}
	h.renderExpenseForm(c, form, true, expense.ID)
}

// EditExpense handles the edit-expense form submission.
func (h *ExpenseHandler) EditExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Expense not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form ExpenseForm
	if err := c.ShouldBind(&form); err != nil {
		flash.Set(c, flash.LevelDanger, "Title, a valid amount, and a date are required.")
		h.renderExpenseForm(c, form, true, expenseID)
		return
	}

	amount, categoryID, date, err := form.parse()
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Invalid input: "+err.Error())
		h.renderExpenseForm(c, form, true, expenseID)
		return
	}

	if _, err := h.expenseService.UpdateExpense(userID, expenseID, form.Title, amount, categoryID, form.Description, date); err != nil {
		if errors.Is(err, apperrors.ErrExpenseNotFound) {
			flash.Set(c, flash.LevelDanger, "Expense not found or not yours.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		flash.Set(c, flash.LevelDanger, err.Error())
		h.renderExpenseForm(c, form, true, expenseID)
		return
	}

	flash.Set(c, flash.LevelSuccess, "Expense updated successfully!")
	c.Redirect(http.StatusFound, "/")
}

// DeleteExpense removes an expense and returns to the dashboard.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err == nil {
		err = h.expenseService.DeleteExpense(userID, expenseID)
	}
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Expense not found or not yours.")
	} else {
		flash.Set(c, flash.LevelSuccess, "Expense deleted successfully!")
	}
	c.Redirect(http.StatusFound, "/")
}

// Reports renders the date-range report. The range defaults to the current
// month.
func (h *ExpenseHandler) Reports(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	first, last := currentMonthRange()
	from, to := first, last
	if s := c.Query("start_date"); s != "" {
		if parsed, perr := time.Parse(time.DateOnly, s); perr == nil {
			from = parsed
		}
	}
	if s := c.Query("end_date"); s != "" {
		if parsed, perr := time.Parse(time.DateOnly, s); perr == nil {
			to = parsed
		}
	}

	page := pagination.PageRequest{Page: 1, PageSize: 100}
	expenses, err := h.expenseService.GetUserExpenses(userID, page, services.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Error loading report.")
		render(c, "reports.html", gin.H{
			"Title":          "Reports",
			"Expenses":       []models.Expense{},
			"Total":          int64(0),
			"CategoryTotals": []services.CategoryTotal{},
			"StartDate":      from.Format(time.DateOnly),
			"EndDate":        to.Format(time.DateOnly),
		})
		return
	}

	total, err := h.expenseService.TotalAmount(userID, &from, &to)
	if err != nil {
		total = 0
	}

	categoryTotals, err := h.expenseService.CategoryTotals(userID, &from, &to)
	if err != nil {
		categoryTotals = nil
	}

	render(c, "reports.html", gin.H{
		"Title":          "Reports",
		"Expenses":       expenses.Data,
		"Total":          total,
		"CategoryTotals": categoryTotals,
		"StartDate":      from.Format(time.DateOnly),
		"EndDate":        to.Format(time.DateOnly),
	})
}
