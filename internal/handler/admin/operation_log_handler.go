// Package admin 提供管理端审计 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	adminService "github.com/dumeirei/foodstay-backend/internal/service/admin"
)

// OperationLogHandler 操作日志处理器
type OperationLogHandler struct {
	logService *adminService.OperationLogService
}

// NewOperationLogHandler 创建操作日志处理器
func NewOperationLogHandler(logSvc *adminService.OperationLogService) *OperationLogHandler {
	return &OperationLogHandler{logService: logSvc}
}

// List 操作日志列表
// @Summary 管理员操作日志
// @Tags 审计
// @Produce json
// @Security Bearer
// @Param admin query int false "管理员ID"
// @Param module query string false "模块"
// @Param action query string false "操作"
// @Param from query string false "开始日期"
// @Param to query string false "结束日期"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.OperationLog}
// @Router /api/admin/operation-logs [get]
func (h *OperationLogHandler) List(c *gin.Context) {
	var req adminService.ListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	logs, total, err := h.logService.List(c.Request.Context(), &req, p)
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.Limit)
}
