package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWriteRateLimitWithoutLimiterPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(srv.WriteRateLimit())
	router.POST("/api/expenses", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/expenses", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("request %d: expected status 201, got %d", i, resp.Code)
		}
		if resp.Header().Get("Retry-After") != "" {
			t.Fatalf("request %d: unexpected Retry-After header", i)
		}
	}
}

func TestIsWriteMethod(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if !isWriteMethod(method) {
			t.Fatalf("expected %s to be a write", method)
		}
	}
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if isWriteMethod(method) {
			t.Fatalf("expected %s to be a read", method)
		}
	}
}

func TestNormalizeRateLimitEndpointPrefersRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	router := gin.New()
	router.DELETE("/api/expenses/:id", func(c *gin.Context) {
		got = normalizeRateLimitEndpoint(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/expenses/123", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/api/expenses/:id" {
		t.Fatalf("expected route template, got %q", got)
	}
	if normalizeRateLimitEndpoint(nil) != "unknown" {
		t.Fatal("expected unknown for nil context")
	}
}
