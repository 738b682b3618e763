package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/models"
)

// OperationLogStore 操作日志持久化
type OperationLogStore interface {
	Create(ctx context.Context, log *models.OperationLog) error
}

// OperationConfig 路由对应的模块与操作
type OperationConfig struct {
	Module     string
	Action     string
	TargetType string
}

// 管理端写操作路由映射，键为 "METHOD gin.FullPath()"
var moduleActionMap = map[string]OperationConfig{
	"POST /api/foods":              {Module: "food", Action: "create", TargetType: "food"},
	"PUT /api/foods/:id":           {Module: "food", Action: "update", TargetType: "food"},
	"DELETE /api/foods/:id":        {Module: "food", Action: "delete", TargetType: "food"},
	"POST /api/rooms":              {Module: "room", Action: "create", TargetType: "room"},
	"PUT /api/rooms/:id":           {Module: "room", Action: "update", TargetType: "room"},
	"DELETE /api/rooms/:id":        {Module: "room", Action: "delete", TargetType: "room"},
	"PUT /api/bookings/:id/status": {Module: "booking", Action: "update_status", TargetType: "booking"},
	"PUT /api/orders/:id/status":   {Module: "order", Action: "update_status", TargetType: "order"},
	"POST /api/uploads/image":      {Module: "upload", Action: "upload_image"},
}

// 请求体中需要脱敏的字段
var sensitiveFields = []string{"password", "token", "secret", "idnumber", "id_number"}

// maxLoggedBody 超过该大小的请求体不记录（如图片上传）
const maxLoggedBody = 64 << 10

// OperationLogger 管理员操作审计
type OperationLogger struct {
	store OperationLogStore
	log   *zap.Logger
}

// NewOperationLogger 创建操作日志中间件
func NewOperationLogger(store OperationLogStore) *OperationLogger {
	return &OperationLogger{
		store: store,
		log:   logger.Named("operation_log"),
	}
}

// Log 记录管理员的写操作。请求字段在请求结束前同步采集，落库异步进行
func (l *OperationLogger) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil && c.Request.ContentLength <= maxLoggedBody &&
			!strings.HasPrefix(c.ContentType(), "multipart/") {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		start := time.Now()
		c.Next()

		entry, ok := l.buildEntry(c, body, time.Since(start))
		if !ok || l.store == nil {
			return
		}

		go l.save(entry)
	}
}

func (l *OperationLogger) save(entry *models.OperationLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Create(ctx, entry); err != nil {
		l.log.Warn("save operation log failed",
			logger.Module(entry.Module),
			logger.Action(entry.Action),
			zap.Error(err),
		)
	}
}

// buildEntry 从 gin.Context 提取日志字段，必须在处理函数返回前调用
func (l *OperationLogger) buildEntry(c *gin.Context, body []byte, latency time.Duration) (*models.OperationLog, bool) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return nil, false
	}

	cfg := resolveOperation(c.Request.Method, c.FullPath())
	entry := &models.OperationLog{
		AdminID:    adminID,
		Module:     cfg.Module,
		Action:     cfg.Action,
		StatusCode: c.Writer.Status(),
		LatencyMs:  latency.Milliseconds(),
		IP:         c.ClientIP(),
	}

	if ua := c.Request.UserAgent(); ua != "" {
		entry.UserAgent = &ua
	}
	if cfg.TargetType != "" {
		targetType := cfg.TargetType
		entry.TargetType = &targetType
		if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
			entry.TargetID = &id
		}
	}

	if len(body) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			entry.RequestData = filterSensitiveData(data).(map[string]interface{})
		}
	}

	return entry, true
}

func adminIDFromContext(c *gin.Context) (int64, bool) {
	if role, _ := c.Get("role"); role != models.RoleAdmin {
		return 0, false
	}
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// resolveOperation 未登记的路由按路径和方法推断
func resolveOperation(method, path string) OperationConfig {
	if cfg, ok := moduleActionMap[method+" "+path]; ok {
		return cfg
	}

	module := "unknown"
	for _, m := range []string{"foods", "rooms", "bookings", "orders", "uploads"} {
		if strings.Contains(path, "/"+m) {
			module = strings.TrimSuffix(m, "s")
			break
		}
	}

	action := "unknown"
	switch method {
	case http.MethodPost:
		action = "create"
	case http.MethodPut, http.MethodPatch:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	}
	return OperationConfig{Module: module, Action: action}
}

func filterSensitiveData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitiveKey(key) {
				result[key] = "***"
				continue
			}
			result[key] = filterSensitiveData(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = filterSensitiveData(item)
		}
		return result
	default:
		return data
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range sensitiveFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
