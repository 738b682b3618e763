package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/dumeirei/foodstay-backend/internal/common/errors"
)

// roleSet 允许的角色集合，空集合表示不限角色
type roleSet map[string]struct{}

func newRoleSet(roles ...string) roleSet {
	set := make(roleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) allows(role string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}

// RequireRoles 要求当前用户角色在给定集合内
// 须挂在 UserAuth 之后，角色取自认证阶段写入上下文的当前角色
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := newRoleSet(roles...)
	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !allowed.allows(role) {
			abortWithError(c, apperrors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}
