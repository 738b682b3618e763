// Package admin 提供管理端审计查询服务
package admin

import (
	"context"
	"time"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// OperationLogService 操作日志服务
type OperationLogService struct {
	logRepo *repository.OperationLogRepository
}

// NewOperationLogService 创建操作日志服务
func NewOperationLogService(logRepo *repository.OperationLogRepository) *OperationLogService {
	return &OperationLogService{logRepo: logRepo}
}

// ListRequest 操作日志过滤条件
type ListRequest struct {
	AdminID int64  `form:"admin" binding:"omitempty,min=1"`
	Module  string `form:"module"`
	Action  string `form:"action"`
	From    string `form:"from"`
	To      string `form:"to"`
}

// List 获取操作日志列表，日期按整天计算
func (s *OperationLogService) List(ctx context.Context, req *ListRequest, page utils.Pagination) ([]*models.OperationLog, int64, error) {
	page.Normalize()
	filter := repository.OperationLogFilter{
		AdminID: req.AdminID,
		Module:  req.Module,
		Action:  req.Action,
	}
	if req.From != "" {
		from, ok := utils.ParseTime(req.From)
		if !ok {
			return nil, 0, errors.ErrInvalidParams.WithMessagef("Invalid date: %s", req.From)
		}
		filter.From = &from
	}
	if req.To != "" {
		to, ok := utils.ParseTime(req.To)
		if !ok {
			return nil, 0, errors.ErrInvalidParams.WithMessagef("Invalid date: %s", req.To)
		}
		end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		filter.To = &end
	}

	logs, total, err := s.logRepo.List(ctx, page.GetOffset(), page.Limit, filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return logs, total, nil
}
