package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, rec
}

func clearingCookie(rec *httptest.ResponseRecorder) bool {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "flash" && ck.Value == "" && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestSameRequestDelivery(t *testing.T) {
	t.Run("set then take within one request", func(t *testing.T) {
		c, rec := newTestContext()

		Set(c, LevelDanger, "Title is required.")

		msg, ok := Take(c)
		if !ok {
			t.Fatal("expected the message set this request")
		}
		if msg.Level != LevelDanger || msg.Text != "Title is required." {
			t.Errorf("unexpected message: %+v", msg)
		}
		if !clearingCookie(rec) {
			t.Error("expected the flash cookie to be cleared after same-request delivery")
		}
	})

	t.Run("same-request message wins over a pending cookie", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.AddCookie(&http.Cookie{Name: "flash", Value: "success%7COld+notice"})

		Set(c, LevelWarning, "New notice")

		msg, ok := Take(c)
		if !ok || msg.Text != "New notice" {
			t.Fatalf("expected the new message, got %+v (ok=%v)", msg, ok)
		}
	})

	t.Run("take without set finds nothing", func(t *testing.T) {
		c, _ := newTestContext()

		if _, ok := Take(c); ok {
			t.Fatal("expected no message")
		}
	})
}

func TestCookieDelivery(t *testing.T) {
	t.Run("message from a previous response", func(t *testing.T) {
		c, rec := newTestContext()
		c.Request.AddCookie(&http.Cookie{Name: "flash", Value: "success%7CExpense+added+successfully%21"})

		msg, ok := Take(c)
		if !ok {
			t.Fatal("expected the pending message")
		}
		if msg.Level != LevelSuccess || msg.Text != "Expense added successfully!" {
			t.Errorf("unexpected message: %+v", msg)
		}
		if !clearingCookie(rec) {
			t.Error("expected the flash cookie to be cleared")
		}
	})

	t.Run("value without separator falls back to info", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.AddCookie(&http.Cookie{Name: "flash", Value: "just+text"})

		msg, ok := Take(c)
		if !ok || msg.Level != LevelInfo || msg.Text != "just text" {
			t.Fatalf("expected info-level fallback, got %+v (ok=%v)", msg, ok)
		}
	})
}
