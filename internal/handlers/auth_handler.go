package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/flash"
	"spendwise/internal/middleware"
	"spendwise/internal/services"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterForm represents the registration form payload
type RegisterForm struct {
	Name     string `form:"name" binding:"required,max=100"`
	Email    string `form:"email" binding:"required,email,max=255"`
	Password string `form:"password" binding:"required,min=6,max=128"`
}

// LoginForm represents the login form payload
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// redirectIfLoggedIn sends users that already have a session to the
// dashboard. Returns true when a redirect was written.
func redirectIfLoggedIn(c *gin.Context) bool {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie == "" {
		return false
	}
	if _, err := middleware.ParseSessionToken(cookie); err != nil {
		return false
	}
	c.Redirect(http.StatusFound, "/")
	return true
}

// ShowRegister renders the registration page.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	render(c, "register.html", gin.H{"Title": "Register"})
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		flash.Set(c, flash.LevelDanger, "All fields are required and the password must be at least 6 characters long.")
		render(c, "register.html", gin.H{"Title": "Register", "Name": form.Name, "Email": form.Email})
		return
	}

	if _, err := h.userService.CreateUser(form.Name, form.Email, form.Password); err != nil {
		flash.Set(c, flash.LevelDanger, err.Error())
		render(c, "register.html", gin.H{"Title": "Register", "Name": form.Name, "Email": form.Email})
		return
	}

	flash.Set(c, flash.LevelSuccess, "Registration successful! Please log in.")
	c.Redirect(http.StatusFound, "/login")
}

// ShowLogin renders the login page.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	render(c, "login.html", gin.H{"Title": "Log In"})
}

// Login handles the login form submission. Invalid credentials always yield
// the same generic message.
func (h *AuthHandler) Login(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		flash.Set(c, flash.LevelDanger, "Email and password are required.")
		render(c, "login.html", gin.H{"Title": "Log In", "Email": form.Email})
		return
	}

	user, err := h.userService.AttemptLogin(form.Email, form.Password)
	if err != nil {
		flash.Set(c, flash.LevelDanger, apperrors.ErrInvalidCredentials.Message)
		render(c, "login.html", gin.H{"Title": "Log In", "Email": form.Email})
		return
	}

	token, err := middleware.GenerateSessionToken(user)
	if err != nil {
		flash.Set(c, flash.LevelDanger, "Could not establish a session. Please try again.")
		render(c, "login.html", gin.H{"Title": "Log In", "Email": form.Email})
		return
	}

	middleware.SetSessionCookie(c, token)
	flash.Set(c, flash.LevelSuccess, "Welcome back, "+user.Name+"!")
	c.Redirect(http.StatusFound, "/")
}

// ShowLogout renders the logout confirmation page.
func (h *AuthHandler) ShowLogout(c *gin.Context) {
	render(c, "logout.html", gin.H{"Title": "Log Out"})
}

// Logout clears the session and redirects to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	name := c.GetString("userName")
	middleware.ClearSessionCookie(c)
	flash.Set(c, flash.LevelSuccess, "Goodbye "+name+"! You have been logged out.")
	c.Redirect(http.StatusFound, "/login")
}
