package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSweep(t *testing.T) {
	m := New()
	m.ObserveSweep("overdue_sweep", 5, 3, 1, 1, 250*time.Millisecond)
	m.ObserveSweep("overdue_sweep", 2, 2, 0, 0, 100*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.sweepRuns.WithLabelValues("overdue_sweep")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.sweepItems.WithLabelValues("overdue_sweep", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sweepItems.WithLabelValues("overdue_sweep", "failed")))
}

func TestHandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `arrendamientos_http_requests_total{method="GET",route="/ping",status="200"} 1`))
}
