package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// OrderRepository 外卖订单仓储
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 创建订单及明细，tx 为 nil 时不使用事务
func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return conn(r.db, tx).WithContext(ctx).Omit("User").Create(order).Error
}

// GetByID 根据 ID 获取订单（包含明细）
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateFields 更新指定字段
func (r *OrderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateFieldsIfStatus 仅当当前状态在 statuses 内时更新，返回是否命中
func (r *OrderRepository) UpdateFieldsIfStatus(ctx context.Context, id int64, statuses []string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, statuses).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// ListByUser 获取用户订单列表，按创建时间倒序
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, offset, limit int, status string) ([]*models.Order, int64, error) {
	return r.List(ctx, offset, limit, map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})
}

// List 获取订单列表
func (r *OrderRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if userID, ok := filters["user_id"].(int64); ok && userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
