package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newHTTPMetrics(prometheus.NewRegistry(), Config{ServiceName: "bizledger"})

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/1", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/projects/:id", "404"))
	if got != 3 {
		t.Fatalf("expected 3 requests, got %v", got)
	}
}
