// Package upload 提供图片上传 HTTP Handler
package upload

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	uploadService "github.com/dumeirei/foodstay-backend/internal/service/upload"
)

// Handler 上传处理器
type Handler struct {
	uploadService *uploadService.UploadService
}

// NewHandler 创建上传处理器
func NewHandler(uploadSvc *uploadService.UploadService) *Handler {
	return &Handler{uploadService: uploadSvc}
}

// UploadImage 上传图片
// @Summary 上传菜品或房间图片（管理端）
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param file formData file true "图片文件"
// @Param type formData string false "用途" Enums(food, room)
// @Success 201 {object} response.Response{data=uploadService.UploadImageResponse}
// @Failure 400 {object} response.Response
// @Router /api/uploads/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	// 缺少文件时交给服务层返回统一错误
	file, _ := c.FormFile("file")

	result, err := h.uploadService.UploadImage(c.Request.Context(), &uploadService.UploadImageRequest{
		File: file,
		Kind: c.PostForm("type"),
	})
	handler.MustCreate(c, err, "Image uploaded successfully", result)
}
