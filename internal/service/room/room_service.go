// Package room 提供房间目录服务
package room

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
	"github.com/dumeirei/foodstay-backend/internal/service/hotel"
)

const cacheNameTypes = "room_types"

// RoomService 房间服务
type RoomService struct {
	roomRepo    *repository.RoomRepository
	bookingRepo *repository.BookingRepository
	checker     *hotel.AvailabilityChecker
	cache       *cache.Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewRoomService 创建房间服务，c 与 m 可为 nil
func NewRoomService(
	roomRepo *repository.RoomRepository,
	bookingRepo *repository.BookingRepository,
	checker *hotel.AvailabilityChecker,
	c *cache.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
		checker:     checker,
		cache:       c,
		cacheTTL:    cacheTTL,
		metrics:     m,
	}
}

// ListRequest 房间列表查询参数
type ListRequest struct {
	Type      string   `form:"type"`
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Capacity  int      `form:"capacity" binding:"omitempty,min=0"`
	Available string   `form:"available"`
	SortBy    string   `form:"sortBy" binding:"omitempty,oneof=price capacity roomNumber rating createdAt"`
	SortOrder string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// CreateRequest 创建房间请求
type CreateRequest struct {
	RoomNumber      string   `json:"roomNumber" binding:"required,max=20"`
	Type            string   `json:"type" binding:"required,room_type"`
	Price           *float64 `json:"price" binding:"required,gte=0"`
	Capacity        int      `json:"capacity" binding:"required,min=1"`
	Size            string   `json:"size" binding:"omitempty,max=50"`
	Amenities       []string `json:"amenities"`
	Features        []string `json:"features"`
	Image           string   `json:"image" binding:"omitempty,max=500"`
	Description     string   `json:"description" binding:"omitempty,max=2000"`
	IsAvailable     *bool    `json:"isAvailable"`
	BedType         string   `json:"bedType" binding:"omitempty,bed_type"`
	View            string   `json:"view" binding:"omitempty,room_view"`
	Smoking         bool     `json:"smoking"`
	Wifi            *bool    `json:"wifi"`
	AirConditioning *bool    `json:"airConditioning"`
	Television      *bool    `json:"television"`
	Minibar         bool     `json:"minibar"`
	RoomService     bool     `json:"roomService"`
}

// UpdateRequest 修改房间请求，nil 字段保持不变
type UpdateRequest struct {
	RoomNumber      *string  `json:"roomNumber" binding:"omitempty,min=1,max=20"`
	Type            *string  `json:"type" binding:"omitempty,room_type"`
	Price           *float64 `json:"price" binding:"omitempty,gte=0"`
	Capacity        *int     `json:"capacity" binding:"omitempty,min=1"`
	Size            *string  `json:"size" binding:"omitempty,max=50"`
	Amenities       []string `json:"amenities"`
	Features        []string `json:"features"`
	Image           *string  `json:"image" binding:"omitempty,max=500"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	IsAvailable     *bool    `json:"isAvailable"`
	BedType         *string  `json:"bedType" binding:"omitempty,bed_type"`
	View            *string  `json:"view" binding:"omitempty,room_view"`
	Smoking         *bool    `json:"smoking"`
	Wifi            *bool    `json:"wifi"`
	AirConditioning *bool    `json:"airConditioning"`
	Television      *bool    `json:"television"`
	Minibar         *bool    `json:"minibar"`
	RoomService     *bool    `json:"roomService"`
}

// List 获取房间列表
func (s *RoomService) List(ctx context.Context, req *ListRequest, page utils.Pagination) ([]*models.Room, int64, error) {
	page.Normalize()
	filter := repository.RoomFilter{
		Type:          strings.TrimSpace(req.Type),
		MinPrice:      req.MinPrice,
		MaxPrice:      req.MaxPrice,
		MinCapacity:   req.Capacity,
		AvailableOnly: req.Available == "true",
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}

	rooms, total, err := s.roomRepo.List(ctx, page.GetOffset(), page.Limit, filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return rooms, total, nil
}

// Get 获取房间详情
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// Types 获取当前存在的房型，结果走缓存
func (s *RoomService) Types(ctx context.Context) ([]string, error) {
	types, hit, err := cache.GetOrLoad(ctx, s.cache, cache.KeyRoomTypes, s.cacheTTL, s.roomRepo.DistinctTypes)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	logger.Debug("room types loaded", zap.Bool("cache_hit", hit), zap.Int("count", len(types)))
	if s.metrics != nil && s.cache != nil {
		if hit {
			s.metrics.RecordCacheHit(cacheNameTypes)
		} else {
			s.metrics.RecordCacheMiss(cacheNameTypes)
		}
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

// CheckAvailability 检查单个房间在区间内的可用性
func (s *RoomService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut string) (*hotel.RoomAvailability, error) {
	in, out, err := hotel.ParseStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, roomID); err != nil {
		return nil, err
	}
	return s.checker.IsAvailable(ctx, roomID, in, out, 0)
}

// Create 创建房间
func (s *RoomService) Create(ctx context.Context, adminID int64, req *CreateRequest) (*models.Room, error) {
	number := normalizeRoomNumber(req.RoomNumber)
	if number == "" {
		return nil, errors.ErrInvalidParams.WithMessage("Room number is required")
	}
	if err := s.ensureRoomNumberFree(ctx, number, 0); err != nil {
		return nil, err
	}

	room := &models.Room{
		RoomNumber:      number,
		Type:            req.Type,
		Price:           utils.RoundMoney(*req.Price),
		Capacity:        req.Capacity,
		Size:            strings.TrimSpace(req.Size),
		Amenities:       req.Amenities,
		Features:        req.Features,
		Image:           req.Image,
		Description:     strings.TrimSpace(req.Description),
		IsAvailable:     boolOr(req.IsAvailable, true),
		BedType:         req.BedType,
		View:            req.View,
		Smoking:         req.Smoking,
		Wifi:            boolOr(req.Wifi, true),
		AirConditioning: boolOr(req.AirConditioning, true),
		Television:      boolOr(req.Television, true),
		Minibar:         req.Minibar,
		RoomService:     req.RoomService,
		CreatedBy:       &adminID,
	}
	if room.View == "" {
		room.View = models.RoomViewCity
	}
	normalizeLists(room)

	if err := s.roomRepo.Create(ctx, room); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrRoomNumberExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return room, nil
}

// Update 修改房间
func (s *RoomService) Update(ctx context.Context, id int64, req *UpdateRequest) (*models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil {
		number := normalizeRoomNumber(*req.RoomNumber)
		if number == "" {
			return nil, errors.ErrInvalidParams.WithMessage("Room number is required")
		}
		if number != room.RoomNumber {
			if err := s.ensureRoomNumberFree(ctx, number, room.ID); err != nil {
				return nil, err
			}
			room.RoomNumber = number
		}
	}
	if req.Type != nil {
		room.Type = *req.Type
	}
	if req.Price != nil {
		room.Price = utils.RoundMoney(*req.Price)
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Size != nil {
		room.Size = strings.TrimSpace(*req.Size)
	}
	if req.Amenities != nil {
		room.Amenities = req.Amenities
	}
	if req.Features != nil {
		room.Features = req.Features
	}
	if req.Image != nil {
		room.Image = *req.Image
	}
	if req.Description != nil {
		room.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if req.BedType != nil {
		room.BedType = *req.BedType
	}
	if req.View != nil {
		room.View = *req.View
	}
	room.Smoking = boolOr(req.Smoking, room.Smoking)
	room.Wifi = boolOr(req.Wifi, room.Wifi)
	room.AirConditioning = boolOr(req.AirConditioning, room.AirConditioning)
	room.Television = boolOr(req.Television, room.Television)
	room.Minibar = boolOr(req.Minibar, room.Minibar)
	room.RoomService = boolOr(req.RoomService, room.RoomService)
	normalizeLists(room)

	if err := s.roomRepo.Update(ctx, room); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrRoomNumberExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return room, nil
}

// Delete 删除房间，存在任何预订时拒绝
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hasBookings, err := s.bookingRepo.ExistsByRoom(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if hasBookings {
		return errors.ErrRoomHasBookings
	}

	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return nil
}

// Seed 清理无预订的房间并写入房间号未被占用的演示房间
func (s *RoomService) Seed(ctx context.Context) ([]*models.Room, error) {
	if _, err := s.roomRepo.DeleteWithoutBookings(ctx); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	existing, err := s.roomRepo.ListRoomNumbers(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	rooms := make([]*models.Room, 0, 4)
	for _, room := range demoRooms() {
		if !utils.Contains(existing, room.RoomNumber) {
			rooms = append(rooms, room)
		}
	}
	if err := s.roomRepo.CreateBatch(ctx, rooms); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return rooms, nil
}

func (s *RoomService) ensureRoomNumberFree(ctx context.Context, number string, excludeID int64) error {
	exists, err := s.roomRepo.ExistsByRoomNumber(ctx, number, excludeID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return errors.ErrRoomNumberExists
	}
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	cache.Invalidate(ctx, s.cache, cache.KeyRoomTypes)
}

// normalizeRoomNumber 房间号去空格并转大写
func normalizeRoomNumber(n string) string {
	return strings.ToUpper(strings.TrimSpace(n))
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func normalizeLists(room *models.Room) {
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	if room.Features == nil {
		room.Features = []string{}
	}
}
