package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// 房间列表可排序字段
var roomSortColumns = map[string]string{
	"price":      "price",
	"capacity":   "capacity",
	"roomNumber": "room_number",
	"rating":     "rating_average",
	"createdAt":  "created_at",
}

// RoomFilter 房间列表过滤条件
type RoomFilter struct {
	Type          string
	MinPrice      *float64
	MaxPrice      *float64
	MinCapacity   int
	AvailableOnly bool
	SortBy        string
	SortOrder     string
}

// RoomRepository 房间仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByRoomNumber 房间号是否被其他房间占用，excludeID 为 0 时不排除
func (r *RoomRepository) ExistsByRoomNumber(ctx context.Context, roomNumber string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).Where("room_number = ?", roomNumber)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Update 保存房间全部字段
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// Delete 删除房间
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

// List 获取房间列表
func (r *RoomRepository) List(ctx context.Context, offset, limit int, filter RoomFilter) ([]*models.Room, int64, error) {
	var rooms []*models.Room
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Room{})

	if filter.Type != "" && filter.Type != "all" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinCapacity > 0 {
		query = query.Where("capacity >= ?", filter.MinCapacity)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortClause(roomSortColumns, filter.SortBy, "price", filter.SortOrder, "asc")
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// ListAvailableExcluding 获取可预订且不在排除集合内的房间
func (r *RoomRepository) ListAvailableExcluding(ctx context.Context, excludedIDs []int64) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).Where("is_available = ?", true)
	if len(excludedIDs) > 0 {
		query = query.Where("id NOT IN ?", excludedIDs)
	}
	err := query.Order("price ASC, id ASC").Find(&rooms).Error
	return rooms, err
}

// DistinctTypes 当前存在的房型
func (r *RoomRepository) DistinctTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Distinct("type").
		Order("type").
		Pluck("type", &types).Error
	return types, err
}

// ListRoomNumbers 获取全部房间号
func (r *RoomRepository) ListRoomNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.Room{}).Pluck("room_number", &numbers).Error
	return numbers, err
}

// DeleteWithoutBookings 删除没有任何预订引用的房间
func (r *RoomRepository) DeleteWithoutBookings(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.Model(&models.Booking{}).Select("room_id")).
		Delete(&models.Room{})
	return result.RowsAffected, result.Error
}

// CreateBatch 批量创建房间
func (r *RoomRepository) CreateBatch(ctx context.Context, rooms []*models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rooms).Error
}
