package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spendwise/internal/config"
	"spendwise/internal/flash"
	"spendwise/internal/models"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session"

// getSessionKey returns the session signing key from configuration
func getSessionKey() []byte {
	return []byte(config.Get().SessionSecret)
}

// SessionClaims identifies the logged-in user. The token doubles as the
// session state: id, name and email ride along so rendered pages never need
// a user lookup.
type SessionClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed session token for a user.
func GenerateSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "spendwise",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSessionKey())
}

// ParseSessionToken parses and validates a session token.
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getSessionKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// SetSessionCookie establishes the session on the client.
func SetSessionCookie(c *gin.Context, token string) {
	cfg := config.Get()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(cfg.SessionTTL.Seconds()), "/", "", cfg.SecureCookies, true)
}

// ClearSessionCookie removes all session state from the client.
func ClearSessionCookie(c *gin.Context) {
	cfg := config.Get()
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.SecureCookies, true)
}

// sessionFromRequest extracts session claims from the session cookie or,
// failing that, from a Bearer Authorization header.
func sessionFromRequest(c *gin.Context) (*SessionClaims, error) {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return ParseSessionToken(cookie)
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return ParseSessionToken(parts[1])
	}

	return nil, fmt.Errorf("no session")
}

// setSessionContext exposes the logged-in user to downstream handlers.
func setSessionContext(c *gin.Context, claims *SessionClaims) {
	c.Set("userID", claims.UserID)
	c.Set("userName", claims.Name)
	c.Set("userEmail", claims.Email)
}

// RequireAuth protects browser routes. Unauthenticated requests are sent to
// the login page with a flash message.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionFromRequest(c)
		if err != nil {
			flash.Set(c, flash.LevelWarning, "Please log in to access this page.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		setSessionContext(c, claims)
		c.Next()
	}
}

// RequireAuthAPI protects JSON routes. Unauthenticated requests get a 401
// JSON error.
func RequireAuthAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionFromRequest(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			}})
			c.Abort()
			return
		}
		setSessionContext(c, claims)
		c.Next()
	}
}
