package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dumeirei/foodstay-backend/internal/common/config"
	"github.com/dumeirei/foodstay-backend/internal/common/jwt"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
)

// fakeUsers 用户 ID 到当前角色，角色为空表示已停用
type fakeUsers map[int64]string

func (f fakeUsers) CurrentRole(_ context.Context, userID int64) (string, bool, error) {
	role, ok := f[userID]
	return role, ok && role != "", nil
}

func newJWT() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{Secret: "middleware-test", ExpireTime: time.Hour, Issuer: "test"})
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

// ==================== 认证测试 ====================

func TestUserAuth(t *testing.T) {
	manager := newJWT()
	users := fakeUsers{1: "user", 2: ""}
	r := newEngine(UserAuth(manager, users))

	active, _, err := manager.GenerateToken(1, "user")
	require.NoError(t, err)
	inactive, _, err := manager.GenerateToken(2, "user")
	require.NoError(t, err)
	missing, _, err := manager.GenerateToken(3, "user")
	require.NoError(t, err)

	t.Run("no token", func(t *testing.T) {
		w := doGet(r, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token provided, authorization denied", message(t, w))
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doGet(r, "/protected", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token is not valid", message(t, w))
	})

	t.Run("valid token", func(t *testing.T) {
		w := doGet(r, "/protected", active)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":1,"role":"user"}`, w.Body.String())
	})

	t.Run("token in query", func(t *testing.T) {
		w := doGet(r, "/protected?token="+active, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		w := doGet(r, "/protected", inactive)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		w := doGet(r, "/protected", missing)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminAuth(t *testing.T) {
	manager := newJWT()
	users := fakeUsers{1: "user", 9: "admin"}
	r := newEngine(AdminAuth(manager, users))

	userToken, _, _ := manager.GenerateToken(1, "user")
	adminToken, _, _ := manager.GenerateToken(9, "admin")

	w := doGet(r, "/protected", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin privileges required", message(t, w))

	w = doGet(r, "/protected", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":9,"role":"admin"}`, w.Body.String())
}

func TestAdminAuth_UsesCurrentRole(t *testing.T) {
	manager := newJWT()
	users := fakeUsers{9: "admin"}
	r := newEngine(AdminAuth(manager, users))
	adminToken, _, _ := manager.GenerateToken(9, "admin")

	w := doGet(r, "/protected", adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	// 降级后旧令牌立即失去管理权限
	users[9] = "user"
	w = doGet(r, "/protected", adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 升级后旧的普通令牌立即获得管理权限
	users[1] = "admin"
	userToken, _, _ := manager.GenerateToken(1, "user")
	w = doGet(r, "/protected", userToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles(t *testing.T) {
	manager := newJWT()
	users := fakeUsers{1: "user", 9: "admin"}
	r := newEngine(UserAuth(manager, users), RequireRoles("admin"))

	userToken, _, _ := manager.GenerateToken(1, "user")
	// 令牌签发时仍是普通用户，数据库中已是管理员
	promotedToken, _, _ := manager.GenerateToken(9, "user")

	w := doGet(r, "/protected", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(r, "/protected", promotedToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(newEngine(RequireRoles("admin")), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleSet(t *testing.T) {
	assert.True(t, newRoleSet().allows("user"))
	assert.True(t, newRoleSet("admin", "user").allows("user"))
	assert.False(t, newRoleSet("admin").allows("user"))
	assert.False(t, newRoleSet("admin").allows(""))
}

// ==================== 通用中间件测试 ====================

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := doGet(r, "/protected", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.Request.RemoteAddr) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := doGet(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", message(t, w))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	doGet(r, "/health", "")
	doGet(r, "/rooms?type=suite", "")
	doGet(r, "/missing", "")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request served", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/rooms", fields["path"])
	assert.Equal(t, "type=suite", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status_code"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestSecureHeaders(t *testing.T) {
	w := doGet(newEngine(SecureHeaders()), "/protected", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(&config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, AllowCredentials: true, MaxAge: 600}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// ==================== 限流测试 ====================

func TestIPRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := newEngine(IPRateLimit(client, "auth", 2, time.Minute))

	assert.Equal(t, http.StatusOK, doGet(r, "/protected", "").Code)
	w := doGet(r, "/protected", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doGet(r, "/protected", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 窗口过期后恢复
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doGet(r, "/protected", "").Code)
}

func TestRateLimit_RedisDownAllows(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	r := newEngine(GlobalRateLimit(client, 1, time.Minute))
	assert.Equal(t, http.StatusOK, doGet(r, "/protected", "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/protected", "").Code)
}
