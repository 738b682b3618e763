// Package metrics 提供 Prometheus 指标收集单元测试
package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestMetrics() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New("test", reg), reg
}

func TestNew(t *testing.T) {
	m, _ := newTestMetrics()
	require.NotNil(t, m)
	assert.NotNil(t, m.httpRequestsTotal)
	assert.NotNil(t, m.bookingsTotal)
	assert.NotNil(t, m.roomLockWait)

	// 独立注册表可重复创建
	assert.NotNil(t, New("", prometheus.NewRegistry()))
}

func TestMetrics_RecordBooking(t *testing.T) {
	m, _ := newTestMetrics()

	m.RecordBooking(BookingResultCreated)
	m.RecordBooking(BookingResultCreated)
	m.RecordBooking(BookingResultConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(BookingResultCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(BookingResultConflict)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(BookingResultLocked)))
}

func TestMetrics_RecordOrderAndCache(t *testing.T) {
	m, _ := newTestMetrics()

	m.RecordOrder("pending")
	m.RecordCacheHit("food_categories")
	m.RecordCacheMiss("food_categories")
	m.RecordCacheMiss("food_categories")
	m.RecordDBQuery("query", "rooms", 3*time.Millisecond)
	m.ObserveRoomLockWait(20 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersTotal.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHitsTotal.WithLabelValues("food_categories")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMissesTotal.WithLabelValues("food_categories")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueriesTotal.WithLabelValues("query", "rooms")))
}

func TestMetrics_Middleware(t *testing.T) {
	m, _ := newTestMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/rooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/rooms/:id", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpRequestsInFlight))
}

func TestMetrics_Handler(t *testing.T) {
	m, _ := newTestMetrics()
	m.RecordBooking(BookingResultCreated)

	r := gin.New()
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_bookings_total{result="created"} 1`)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	m := New("app", reg)
	m.RecordOrder("delivered")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["app_orders_total"])
}
