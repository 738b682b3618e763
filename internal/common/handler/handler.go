// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、参数绑定、认证检查等操作
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/common/validator"
	"github.com/dumeirei/foodstay-backend/internal/middleware"
)

// ============================================================================
// 统一错误处理
// ============================================================================

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（调用方应该 return）
//
// 非 AppError 视为意外错误：记录日志，仅在 debug 模式下返回错误详情
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	appErr := errors.GetAppError(err)
	if appErr.Kind == errors.KindUnexpected {
		logger.Error("Unexpected error",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Method(c.Request.Method),
			logger.Path(c.Request.URL.Path),
			zap.Error(err),
		)
		message := appErr.Message
		if gin.Mode() == gin.DebugMode {
			message = err.Error()
		}
		response.Error(c, appErr.HTTPStatus(), message)
		return true
	}

	response.Error(c, appErr.HTTPStatus(), appErr.Message)
	return true
}

// MustSucceed 便捷封装：如果有错误则返回错误响应，否则返回成功响应
//
// 使用示例:
//
//	result, err := service.GetData()
//	MustSucceed(c, err, result)
//	return  // 注意：调用 MustSucceed 后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedWithMessage 便捷封装：带自定义成功消息
func MustSucceedWithMessage(c *gin.Context, err error, message string, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.SuccessWithMessage(c, message, data)
}

// MustCreate 便捷封装：创建成功返回 201
func MustCreate(c *gin.Context, err error, message string, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, message, data)
}

// MustSucceedPage 便捷封装：分页响应版本
//
// 使用示例:
//
//	list, total, err := service.List(ctx, filter)
//	MustSucceedPage(c, err, list, total, p.Page, p.Limit)
//	return
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, limit int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, limit)
}

// ============================================================================
// 请求绑定
// ============================================================================

// BindJSON 绑定并校验 JSON 请求体，失败时已发送 400 响应
func BindJSON(c *gin.Context, obj interface{}) bool {
	return handleBindError(c, c.ShouldBindJSON(obj))
}

// BindQuery 绑定并校验查询参数，失败时已发送 400 响应
func BindQuery(c *gin.Context, obj interface{}) bool {
	return handleBindError(c, c.ShouldBindQuery(obj))
}

func handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if fields, ok := validator.Translate(err); ok {
		response.ValidationFailed(c, "", fields)
		return false
	}
	response.BadRequest(c, "Invalid request data")
	return false
}

// ============================================================================
// 用户认证检查
// ============================================================================

// RequireUserID 获取当前用户ID，如果未登录则返回401响应
//
// 使用示例:
//
//	userID, ok := handler.RequireUserID(c)
//	if !ok {
//	    return
//	}
func RequireUserID(c *gin.Context) (int64, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, errors.ErrUnauthorized.Message)
		return 0, false
	}
	return userID, true
}

// ============================================================================
// ID 参数解析
// ============================================================================

// ParseID 解析路径参数 "id" 为 int64
// 返回 (0, false) 表示解析失败（已发送400响应，调用方应该 return）
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为 int64
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+resourceName+" ID")
		return 0, false
	}
	return id, true
}

// RequireUserAndParseID 组合：检查用户登录 + 解析ID参数
func RequireUserAndParseID(c *gin.Context, resourceName string) (userID, resourceID int64, ok bool) {
	userID, ok = RequireUserID(c)
	if !ok {
		return 0, 0, false
	}
	resourceID, ok = ParseID(c, resourceName)
	if !ok {
		return 0, 0, false
	}
	return userID, resourceID, true
}

// ============================================================================
// 分页处理
// ============================================================================

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, limit=10, 最大 limit=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageLimit)))
	p.Normalize()
	return p
}
