package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/middleware"
	"spendwise/internal/models"
	"spendwise/internal/services"
	"spendwise/internal/validator"
	"spendwise/web"
)

// --- mock user service ---

type mockUserService struct {
	createUserFn     func(name, email, password string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id uint) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
	verifyPasswordFn func(user *models.User, password string) bool
}

func (m *mockUserService) CreateUser(name, email, password string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(name, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// newWebRouter returns an engine with the embedded templates loaded, ready
// for page handlers.
func newWebRouter(t *testing.T) *gin.Engine {
	t.Helper()
	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	return r
}

func setupAuthRouter(t *testing.T, handler *AuthHandler) *gin.Engine {
	r := newWebRouter(t)
	r.GET("/register", handler.ShowRegister)
	r.POST("/register", handler.Register)
	r.GET("/login", handler.ShowLogin)
	r.POST("/login", handler.Login)
	r.GET("/logout", injectUserID(1), handler.ShowLogout)
	r.POST("/logout", injectUserID(1), handler.Logout)
	return r
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Set("userName", "Test User")
		c.Set("userEmail", "test@example.com")
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// doForm submits a URL-encoded form the way a browser would.
func doForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("redirects to login on success", func(t *testing.T) {
		var createdEmail string
		userSvc := &mockUserService{
			createUserFn: func(name, email, _ string) (*models.User, error) {
				createdEmail = email
				return &models.User{Base: models.Base{ID: 1}, Name: name, Email: email}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/register", url.Values{
			"name":     {"Jane Doe"},
			"email":    {"jane@example.com"},
			"password": {"password123"},
		})

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("expected redirect to /login, got %s", loc)
		}
		if createdEmail != "jane@example.com" {
			t.Errorf("expected service called with jane@example.com, got %s", createdEmail)
		}
	})

	t.Run("re-renders form on short password", func(t *testing.T) {
		called := false
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				called = true
				return &models.User{}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/register", url.Values{
			"name":     {"Jane Doe"},
			"email":    {"jane@example.com"},
			"password": {"short"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 re-render, got %d", rec.Code)
		}
		if called {
			t.Error("service should not be called on invalid form")
		}
		body := rec.Body.String()
		if !strings.Contains(body, "alert-danger") {
			t.Error("expected the validation message to render on this response")
		}
		if !strings.Contains(body, "at least 6 characters") {
			t.Error("expected the password hint in the rendered alert")
		}
	})

	t.Run("re-renders form on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/register", url.Values{
			"name":     {"Jane Doe"},
			"email":    {"dup@example.com"},
			"password": {"password123"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 re-render, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "already exists") {
			t.Error("expected the duplicate-email message to render on this response")
		}
	})

	t.Run("renders registration page", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(t, handler)

		rec := doRequest(r, "GET", "/register", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Register") {
			t.Error("expected registration page content")
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("sets session cookie and redirects on success", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 7}, Name: "Jane", Email: email}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/login", url.Values{
			"email":    {"jane@example.com"},
			"password": {"password123"},
		})

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %s", loc)
		}

		cookie := responseCookie(rec, middleware.SessionCookieName)
		if cookie == nil || cookie.Value == "" {
			t.Fatal("expected a session cookie")
		}
		claims, err := middleware.ParseSessionToken(cookie.Value)
		if err != nil {
			t.Fatalf("session cookie does not parse: %v", err)
		}
		if claims.UserID != 7 || claims.Name != "Jane" {
			t.Errorf("unexpected session claims: %+v", claims)
		}
	})

	t.Run("re-renders with generic message on bad credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/login", url.Values{
			"email":    {"jane@example.com"},
			"password": {"wrong"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 re-render, got %d", rec.Code)
		}
		if cookie := responseCookie(rec, middleware.SessionCookieName); cookie != nil {
			t.Error("no session cookie should be set on failed login")
		}
		if !strings.Contains(rec.Body.String(), "Invalid email or password") {
			t.Error("expected the generic credentials message to render on this response")
		}
	})

	t.Run("redirects logged-in users away from login page", func(t *testing.T) {
		user := &models.User{Base: models.Base{ID: 3}, Name: "Jane", Email: "jane@example.com"}
		token, err := middleware.GenerateSessionToken(user)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(t, handler)

		req := httptest.NewRequest("GET", "/login", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %s", loc)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("renders confirmation page", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(t, handler)

		rec := doRequest(r, "GET", "/logout", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("clears session and redirects to login", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(t, handler)

		rec := doForm(r, "/logout", url.Values{})

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("expected redirect to /login, got %s", loc)
		}

		cookie := responseCookie(rec, middleware.SessionCookieName)
		if cookie == nil {
			t.Fatal("expected the session cookie to be cleared")
		}
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Errorf("expected an expired empty cookie, got value=%q maxage=%d", cookie.Value, cookie.MaxAge)
		}
	})
}
