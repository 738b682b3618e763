// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/jwt"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	"github.com/dumeirei/foodstay-backend/internal/models"
)

// UserLookup 认证时读取用户当前角色与启用状态，角色以数据库为准而非令牌
type UserLookup interface {
	CurrentRole(ctx context.Context, userID int64) (role string, active bool, err error)
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTManager    *jwt.Manager
	Users         UserLookup // 为空时信任令牌中的角色
	RequiredRoles []string   // 允许的角色，为空表示任意已登录用户
}

// 上下文键
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// Auth 认证中间件
func Auth(config *AuthConfig) gin.HandlerFunc {
	allowed := newRoleSet(config.RequiredRoles...)
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := config.JWTManager.ParseToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, apperrors.ErrTokenExpired)
			} else {
				abortWithError(c, apperrors.ErrTokenInvalid)
			}
			return
		}

		role := claims.Role
		if config.Users != nil {
			current, active, err := config.Users.CurrentRole(c.Request.Context(), claims.UserID)
			if err != nil {
				response.InternalError(c, "")
				c.Abort()
				return
			}
			if !active {
				abortWithError(c, apperrors.ErrTokenInvalid)
				return
			}
			role = current
		}

		if !allowed.allows(role) {
			abortWithError(c, apperrors.ErrPermissionDenied)
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, role)

		c.Next()
	}
}

// UserAuth 用户认证中间件
func UserAuth(jwtManager *jwt.Manager, users UserLookup) gin.HandlerFunc {
	return Auth(&AuthConfig{
		JWTManager: jwtManager,
		Users:      users,
	})
}

// AdminAuth 管理员认证中间件
func AdminAuth(jwtManager *jwt.Manager, users UserLookup) gin.HandlerFunc {
	return Auth(&AuthConfig{
		JWTManager:    jwtManager,
		Users:         users,
		RequiredRoles: []string{models.RoleAdmin},
	})
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	response.Error(c, err.HTTPStatus(), err.Message)
	c.Abort()
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 优先从 Authorization 头获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 其次从查询参数获取，供二维码、PDF 等直接打开的链接使用
	return c.Query("token")
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) int64 {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	id, _ := userID.(int64)
	return id
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	r, _ := role.(string)
	return r
}

// IsAdmin 当前用户是否管理员
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == models.RoleAdmin
}
