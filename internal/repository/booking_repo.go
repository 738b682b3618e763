package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// DB 返回底层连接，供服务层开启事务
func (r *BookingRepository) DB() *gorm.DB {
	return r.db
}

// Create 创建预订，tx 为 nil 时不使用事务
func (r *BookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails 根据 ID 获取预订（包含房间与用户）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNumber 根据预订号获取预订
func (r *BookingRepository) GetByBookingNumber(ctx context.Context, bookingNumber string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("booking_number = ?", bookingNumber).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateFields 更新指定字段，tx 为 nil 时不使用事务
func (r *BookingRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return conn(r.db, tx).WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateFieldsIfStatus 仅当当前状态在 statuses 内时更新，返回是否命中
func (r *BookingRepository) UpdateFieldsIfStatus(ctx context.Context, tx *gorm.DB, id int64, statuses []string, fields map[string]interface{}) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, statuses).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// CountOverlapping 统计与区间重叠的有效预订数
// 区间端点包含在内：existing.check_in <= checkOut 且 existing.check_out >= checkIn
func (r *BookingRepository) CountOverlapping(ctx context.Context, tx *gorm.DB, roomID int64, checkIn, checkOut time.Time, excludeID int64) (int64, error) {
	var count int64
	query := conn(r.db, tx).WithContext(ctx).Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("check_in <= ? AND check_out >= ?", checkOut, checkIn)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// OverlappingRoomIDs 区间内存在有效预订的房间
func (r *BookingRepository) OverlappingRoomIDs(ctx context.Context, checkIn, checkOut time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("check_in <= ? AND check_out >= ?", checkOut, checkIn).
		Distinct("room_id").
		Pluck("room_id", &ids).Error
	return ids, err
}

// ExistsByRoom 房间是否有任何预订
func (r *BookingRepository) ExistsByRoom(ctx context.Context, roomID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).Where("room_id = ?", roomID).Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户预订列表，按创建时间倒序
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, offset, limit int, status string) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Room").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// List 获取预订列表（管理端）
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if roomID, ok := filters["room_id"].(int64); ok && roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	if userID, ok := filters["user_id"].(int64); ok && userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Room").Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListByCheckInRange 获取入住时间落在 [from, to) 内的预订，用于导出
func (r *BookingRepository) ListByCheckInRange(ctx context.Context, from, to time.Time, status string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("check_in >= ? AND check_in < ?", from, to)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("check_in ASC, id ASC").Find(&bookings).Error
	return bookings, err
}
