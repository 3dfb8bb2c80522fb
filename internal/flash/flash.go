// Package flash implements one-time notices shown on the next rendered page.
// Messages travel in a short-lived cookie and are cleared as soon as they
// are read. A message set and rendered within the same request is delivered
// through the request context instead, so form errors show up on the
// re-rendered page immediately.
package flash

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "flash"
	contextKey = "flashMessage"
)

// Message levels, matching the Bootstrap alert classes the templates use.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Message is a one-time user-facing notice.
type Message struct {
	Level string
	Text  string
}

// Set stores a flash message for the next rendered page. The message rides
// in the request context for same-request renders and in a cookie for
// renders after a redirect.
func Set(c *gin.Context, level, text string) {
	c.Set(contextKey, Message{Level: level, Text: text})
	// Gin URL-escapes cookie values, so the separator cannot collide with
	// user-provided text.
	c.SetCookie(cookieName, level+"|"+text, 60, "/", "", false, true)
}

// Take returns the pending flash message, if any, and clears it. A message
// set earlier in the same request wins over one carried in from a previous
// response.
func Take(c *gin.Context) (Message, bool) {
	if v, ok := c.Get(contextKey); ok {
		// Consumed on this render; the cookie written by Set must not
		// resurface the message on the next page.
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		return v.(Message), true
	}

	value, err := c.Cookie(cookieName)
	if err != nil || value == "" {
		return Message{}, false
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	level, text, found := strings.Cut(value, "|")
	if !found {
		return Message{Level: LevelInfo, Text: value}, true
	}
	return Message{Level: level, Text: text}, true
}
