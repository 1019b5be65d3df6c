package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		if err := IssueSessionCookie(c, "abcd1234"); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	auth := r.Group("/", SessionAuth())
	auth.GET("/me", func(c *gin.Context) {
		id, _ := c.Get("unique_id")
		c.JSON(http.StatusOK, gin.H{"unique_id": id})
	})
	return r
}

func TestSessionCookieRoundTrip(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	r := setupRouter()

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d", login.Code)
	}
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)

	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", me.Code, me.Body.String())
	}
	if body := me.Body.String(); body != `{"unique_id":"abcd1234"}` {
		t.Errorf("body = %s", body)
	}
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	r := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"success":false`) {
		t.Errorf("error body missing success flag: %s", body)
	}
}

func TestSessionAuthRejectsTamperedToken(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	r := setupRouter()

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	// token signed with a different secret must be rejected
	t.Setenv("SESSION_SECRET", "rotated-secret")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuthRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	r := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when the secret is unset", w.Code)
	}
}
