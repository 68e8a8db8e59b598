package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveCheckout(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCheckout(OutcomeSuccess, 40*time.Millisecond)
	m.ObserveCheckout("INSUFFICIENT_FUNDS", 5*time.Millisecond)
	m.ObserveCheckout("INSUFFICIENT_FUNDS", 5*time.Millisecond)
	m.AddBonusPoints(100, 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("INSUFFICIENT_FUNDS")))
	assert.Equal(t, 200.0, testutil.ToFloat64(m.BonusPoints.WithLabelValues("earned")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/42", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `storefront_http_requests_total{handler="/products/:id",status="200"} 1`))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheckout(OutcomeSuccess, time.Second)
		m.CacheLookup(true)
	})
}
