// Package auth 提供认证与账户相关的 HTTP Handler
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	authService "github.com/dumeirei/foodstay-backend/internal/service/auth"
)

// Handler 认证处理器
type Handler struct {
	authService *authService.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(authSvc *authService.AuthService) *Handler {
	return &Handler{authService: authSvc}
}

// Register 用户注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.RegisterRequest true "注册信息"
// @Success 201 {object} response.Response{data=authService.AuthResponse}
// @Failure 400 {object} response.Response
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req authService.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	handler.MustCreate(c, err, "User registered successfully", result)
}

// Login 用户登录
// @Summary 邮箱密码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.LoginRequest true "登录信息"
// @Success 200 {object} response.Response{data=authService.AuthResponse}
// @Failure 401 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	handler.MustSucceedWithMessage(c, err, "Login successful", result)
}

// Me 获取当前用户
// @Summary 获取当前用户
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	handler.MustSucceed(c, err, user)
}

// UpdateProfile 修改资料
// @Summary 修改用户名与资料
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.UpdateProfileRequest true "资料"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/auth/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req authService.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	handler.MustSucceedWithMessage(c, err, "Profile updated successfully", user)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.ChangePasswordRequest true "密码"
// @Success 200 {object} response.Response
// @Router /api/auth/change-password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req authService.ChangePasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if handler.HandleError(c, h.authService.ChangePassword(c.Request.Context(), userID, &req)) {
		return
	}
	response.SuccessWithMessage(c, "Password changed successfully", nil)
}
