package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/v1/victims/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/v1/victims/:slug", "200"))
	for _, p := range []string{"/v1/victims/a", "/v1/victims/b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/v1/victims/:slug", "200"))
	if after-before != 2 {
		t.Fatalf("expected 2 requests counted under the template, got %v", after-before)
	}
}
