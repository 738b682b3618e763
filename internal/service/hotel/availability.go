// Package hotel 提供房间可用性检查、预订生命周期与预订单据服务
package hotel

import (
	"context"
	"time"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// AvailabilityChecker 房间可用性检查，只读无副作用
type AvailabilityChecker struct {
	bookingRepo *repository.BookingRepository
	roomRepo    *repository.RoomRepository
}

// NewAvailabilityChecker 创建可用性检查器
func NewAvailabilityChecker(bookingRepo *repository.BookingRepository, roomRepo *repository.RoomRepository) *AvailabilityChecker {
	return &AvailabilityChecker{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
	}
}

// RoomAvailability 单个房间的可用性
type RoomAvailability struct {
	IsAvailable         bool  `json:"isAvailable"`
	ConflictingBookings int64 `json:"conflictingBookings"`
}

// AvailableRoomsResult 区间内可预订房间
type AvailableRoomsResult struct {
	AvailableRooms []*models.Room `json:"availableRooms"`
	TotalAvailable int            `json:"totalAvailable"`
	CheckIn        time.Time      `json:"checkIn"`
	CheckOut       time.Time      `json:"checkOut"`
	Nights         int            `json:"nights"`
}

// ValidateStay 校验入住区间
func ValidateStay(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return errors.ErrDateRangeRequired
	}
	if !checkIn.Before(checkOut) {
		return errors.ErrInvalidDateRange
	}
	return nil
}

// IsAvailable 房间在区间内是否没有有效预订，excludeBookingID 为 0 时不排除
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (*RoomAvailability, error) {
	if err := ValidateStay(checkIn, checkOut); err != nil {
		return nil, err
	}

	count, err := c.bookingRepo.CountOverlapping(ctx, nil, roomID, checkIn.UTC(), checkOut.UTC(), excludeBookingID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &RoomAvailability{
		IsAvailable:         count == 0,
		ConflictingBookings: count,
	}, nil
}

// ExcludedRooms 区间内因冲突不可预订的房间集合
func (c *AvailabilityChecker) ExcludedRooms(ctx context.Context, checkIn, checkOut time.Time) (map[int64]struct{}, error) {
	if err := ValidateStay(checkIn, checkOut); err != nil {
		return nil, err
	}

	ids, err := c.bookingRepo.OverlappingRoomIDs(ctx, checkIn.UTC(), checkOut.UTC())
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	excluded := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// AvailableRooms 区间内可预订的房间列表
func (c *AvailabilityChecker) AvailableRooms(ctx context.Context, checkIn, checkOut time.Time) (*AvailableRoomsResult, error) {
	excluded, err := c.ExcludedRooms(ctx, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	rooms, err := c.roomRepo.ListAvailableExcluding(ctx, ids)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}

	return &AvailableRoomsResult{
		AvailableRooms: rooms,
		TotalAvailable: len(rooms),
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Nights:         models.Nights(checkIn, checkOut),
	}, nil
}
