package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Should count requests by matched route", func(t *testing.T) {
		m := New()
		router := gin.New()
		router.Use(m.Middleware())
		router.GET("/ticker/:symbol/info", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		for _, symbol := range []string{"AAPL", "MSFT"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticker/"+symbol+"/info", http.NoBody))
		}

		count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/ticker/:symbol/info", "404"))
		assert.Equal(t, 2.0, count)
	})

	t.Run("Should count upstream calls by endpoint and code", func(t *testing.T) {
		m := New()

		m.ObserveUpstream("chart", 200, 15*time.Millisecond)
		m.ObserveUpstream("chart", 200, 25*time.Millisecond)
		m.ObserveUpstream("quoteSummary", 0, time.Second)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.upstream.WithLabelValues("chart", "200")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("quoteSummary", "0")))
	})

	t.Run("Should expose the registry over HTTP", func(t *testing.T) {
		m := New()
		m.ObserveUpstream("chart", 200, time.Millisecond)

		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "tickerproxy_upstream_requests_total")
	})
}
