package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

type chanStore struct {
	ch chan *models.OperationLog
}

func (s *chanStore) Create(_ context.Context, log *models.OperationLog) error {
	s.ch <- log
	return nil
}

func newChanStore() *chanStore {
	return &chanStore{ch: make(chan *models.OperationLog, 4)}
}

func (s *chanStore) next(t *testing.T) *models.OperationLog {
	t.Helper()
	select {
	case log := <-s.ch:
		return log
	case <-time.After(2 * time.Second):
		t.Fatal("operation log not saved")
		return nil
	}
}

func (s *chanStore) expectNone(t *testing.T) {
	t.Helper()
	select {
	case log := <-s.ch:
		t.Fatalf("unexpected operation log: %+v", log)
	case <-time.After(100 * time.Millisecond):
	}
}

func setupOperationLogRouter(store OperationLogStore, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("user_id", int64(9))
		c.Set("role", role)
	})
	api.Use(NewOperationLogger(store).Log())

	api.PUT("/bookings/:id/status", func(c *gin.Context) {
		var body map[string]interface{}
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"status": body["status"]})
	})
	api.POST("/foods", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	api.GET("/foods", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	api.POST("/rooms/:id/misc", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestOperationLogger_RecordsAdminWrite(t *testing.T) {
	store := newChanStore()
	r := setupOperationLogRouter(store, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPut, "/api/bookings/42/status",
		strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ops-console")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// 处理函数仍能读到完整请求体
	assert.Contains(t, w.Body.String(), "confirmed")

	log := store.next(t)
	assert.Equal(t, int64(9), log.AdminID)
	assert.Equal(t, "booking", log.Module)
	assert.Equal(t, "update_status", log.Action)
	require.NotNil(t, log.TargetType)
	assert.Equal(t, "booking", *log.TargetType)
	require.NotNil(t, log.TargetID)
	assert.Equal(t, int64(42), *log.TargetID)
	assert.Equal(t, http.StatusOK, log.StatusCode)
	assert.Equal(t, "confirmed", log.RequestData["status"])
	require.NotNil(t, log.UserAgent)
	assert.Equal(t, "ops-console", *log.UserAgent)
}

func TestOperationLogger_MasksSensitiveFields(t *testing.T) {
	store := newChanStore()
	r := setupOperationLogRouter(store, models.RoleAdmin)

	body := `{"name":"Soup","secretKey":"k","nested":{"password":"p"},"list":[{"token":"t"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/foods", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	log := store.next(t)
	assert.Equal(t, "food", log.Module)
	assert.Equal(t, "create", log.Action)
	assert.Nil(t, log.TargetID)
	assert.Equal(t, "Soup", log.RequestData["name"])
	assert.Equal(t, "***", log.RequestData["secretKey"])
	assert.Equal(t, "***", log.RequestData["nested"].(map[string]interface{})["password"])
	first := log.RequestData["list"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "***", first["token"])
}

func TestOperationLogger_SkipsReadsAndNonAdmins(t *testing.T) {
	t.Run("read request", func(t *testing.T) {
		store := newChanStore()
		r := setupOperationLogRouter(store, models.RoleAdmin)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/foods", nil))
		store.expectNone(t)
	})

	t.Run("regular user", func(t *testing.T) {
		store := newChanStore()
		r := setupOperationLogRouter(store, models.RoleUser)
		req := httptest.NewRequest(http.MethodPost, "/api/foods", strings.NewReader(`{}`))
		r.ServeHTTP(httptest.NewRecorder(), req)
		store.expectNone(t)
	})
}

func TestOperationLogger_NilStore(t *testing.T) {
	r := setupOperationLogRouter(nil, models.RoleAdmin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/foods", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestResolveOperation_Fallback(t *testing.T) {
	cfg := resolveOperation(http.MethodPost, "/api/rooms/:id/misc")
	assert.Equal(t, "room", cfg.Module)
	assert.Equal(t, "create", cfg.Action)

	cfg = resolveOperation(http.MethodDelete, "/api/other")
	assert.Equal(t, "unknown", cfg.Module)
	assert.Equal(t, "delete", cfg.Action)
}

func TestTracing_SetsRouteSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing(&TracingConfig{ServiceName: "test", SkipPaths: []string{"/health"}}))
	r.GET("/health", func(c *gin.Context) {
		assert.Equal(t, "", GetTraceID(c))
		c.Status(http.StatusOK)
	})
	r.GET("/api/rooms/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
