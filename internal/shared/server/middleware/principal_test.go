package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPrincipalPrefersHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Principal())
	var got string
	router.GET("/who", func(c *gin.Context) {
		got = UserIDFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/who?userId=query-user", nil)
	req.Header.Set("X-User-Id", " header-user ")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "header-user" {
		t.Fatalf("expected header-user, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/who?userId=query-user", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "query-user" {
		t.Fatalf("expected query-user, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "" {
		t.Fatalf("expected empty principal, got %q", got)
	}
}
