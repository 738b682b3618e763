package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// OperationLogFilter 操作日志过滤条件，时间区间左闭右开
type OperationLogFilter struct {
	AdminID int64
	Module  string
	Action  string
	From    *time.Time
	To      *time.Time
}

// OperationLogRepository 管理员审计日志仓储
type OperationLogRepository struct {
	db *gorm.DB
}

// NewOperationLogRepository 创建审计日志仓储
func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

// Create 写入一条审计日志
func (r *OperationLogRepository) Create(ctx context.Context, entry *models.OperationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List 按过滤条件分页查询，最新的在前
func (r *OperationLogRepository) List(ctx context.Context, offset, limit int, filter OperationLogFilter) ([]*models.OperationLog, int64, error) {
	var entries []*models.OperationLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.OperationLog{}).Scopes(filter.scope)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (f OperationLogFilter) scope(db *gorm.DB) *gorm.DB {
	if f.AdminID > 0 {
		db = db.Where("admin_id = ?", f.AdminID)
	}
	if f.Module != "" {
		db = db.Where("module = ?", f.Module)
	}
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	return db
}
