package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/models"
	"spendwise/internal/services"
	"spendwise/internal/validator"
	"spendwise/web"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Expense{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db, categoryService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, categoryService)
	apiHandler := handlers.NewAPIHandler(expenseService, categoryService)

	// Router, mirroring the production wiring
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	templates, err := web.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(templates)

	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)

	pages := router.Group("/")
	pages.Use(middleware.RequireAuth())
	pages.GET("", expenseHandler.Dashboard)
	pages.GET("/add_expense", expenseHandler.ShowAddExpense)
	pages.POST("/add_expense", expenseHandler.AddExpense)
	pages.GET("/edit_expense/:id", expenseHandler.ShowEditExpense)
	pages.POST("/edit_expense/:id", expenseHandler.EditExpense)
	pages.GET("/delete_expense/:id", expenseHandler.DeleteExpense)
	pages.GET("/reports", expenseHandler.Reports)
	pages.GET("/logout", authHandler.ShowLogout)
	pages.POST("/logout", authHandler.Logout)

	api := router.Group("/api")
	api.GET("/categories", apiHandler.ListCategories)

	apiAuth := api.Group("/")
	apiAuth.Use(middleware.RequireAuthAPI())
	apiAuth.GET("/expenses", apiHandler.ListExpenses)
	apiAuth.GET("/expenses/category/:id", apiHandler.ExpensesByCategory)
	apiAuth.GET("/stats", apiHandler.Stats)

	return &testApp{DB: db, Router: router}
}

// request makes a JSON/plain request; a non-empty token is sent as the
// session both ways the middleware accepts it.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// submitForm posts a URL-encoded form, carrying the session cookie when a
// token is given.
func (app *testApp) submitForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

// registerAndLogin registers a user through the web forms and returns the
// session token from the login response.
func (app *testApp) registerAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()

	rec := app.submitForm("/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	}, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.submitForm("/login", url.Values{
		"email":    {email},
		"password": {password},
	}, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	token := sessionCookie(rec)
	if token == "" {
		t.Fatal("login did not set a session cookie")
	}
	return token
}

// createCategory inserts a category directly; the live system seeds these
// through migrations or the addcategory tool.
func (app *testApp) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	cat := &models.Category{Name: name}
	if err := app.DB.Create(cat).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return cat
}

// addExpense submits the add-expense form as the given session.
func (app *testApp) addExpense(t *testing.T, token, title, amount, date, categoryID string) {
	t.Helper()
	form := url.Values{
		"title":        {title},
		"amount":       {amount},
		"expense_date": {date},
	}
	if categoryID != "" {
		form.Set("category_id", categoryID)
	}
	rec := app.submitForm("/add_expense", form, token)
	if rec.Code != http.StatusFound {
		t.Fatalf("add expense failed: %d %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("add expense did not redirect home: %s", loc)
	}
}
