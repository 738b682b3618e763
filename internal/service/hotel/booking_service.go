package hotel

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/crypto"
	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/tracing"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// 预订号冲突时的最大重试次数
const maxBookingNoAttempts = 3

// BookingService 预订服务
type BookingService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	roomRepo    *repository.RoomRepository
	userRepo    *repository.UserRepository
	locker      *cache.Locker
	aes         *crypto.AES
	metrics     *metrics.Metrics
}

// NewBookingService 创建预订服务，m 可为 nil
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	userRepo *repository.UserRepository,
	locker *cache.Locker,
	aes *crypto.AES,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		locker:      locker,
		aes:         aes,
		metrics:     m,
	}
}

// GuestsInput 入住人数
type GuestsInput struct {
	Adults   int `json:"adults" binding:"required,min=1"`
	Children int `json:"children" binding:"omitempty,min=0"`
}

// GuestDetailsInput 入住人信息
type GuestDetailsInput struct {
	FirstName string `json:"firstName" binding:"omitempty,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,max=50"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
	IDNumber  string `json:"idNumber" binding:"omitempty,max=50"`
	IDType    string `json:"idType" binding:"omitempty,id_type"`
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID            int64              `json:"room" binding:"required,min=1"`
	CheckIn           string             `json:"checkIn" binding:"required"`
	CheckOut          string             `json:"checkOut" binding:"required"`
	Guests            GuestsInput        `json:"guests"`
	SpecialRequests   string             `json:"specialRequests" binding:"omitempty,max=500"`
	GuestDetails      *GuestDetailsInput `json:"guestDetails"`
	RoomService       bool               `json:"roomService"`
	BreakfastIncluded bool               `json:"breakfastIncluded"`
	ParkingRequired   bool               `json:"parkingRequired"`
	PaymentMethod     string             `json:"paymentMethod" binding:"omitempty,payment_method"`
}

// UpdateStatusRequest 修改预订状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,booking_status"`
}

// CancelRequest 取消预订请求
type CancelRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"omitempty,max=500"`
}

// FeedbackRequest 预订评价请求
type FeedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback" binding:"omitempty,max=1000"`
}

// ListRequest 管理端预订列表过滤条件
type ListRequest struct {
	Status string `form:"status" binding:"omitempty,booking_status"`
	RoomID int64  `form:"room" binding:"omitempty,min=1"`
	UserID int64  `form:"user" binding:"omitempty,min=1"`
}

// ParseStay 解析入住与退房时间
func ParseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	if strings.TrimSpace(checkIn) == "" || strings.TrimSpace(checkOut) == "" {
		return time.Time{}, time.Time{}, errors.ErrDateRangeRequired
	}
	in, ok := utils.ParseTime(checkIn)
	if !ok {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithMessagef("Invalid check-in date: %s", checkIn)
	}
	out, ok := utils.ParseTime(checkOut)
	if !ok {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithMessagef("Invalid check-out date: %s", checkOut)
	}
	if err := ValidateStay(in, out); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// Create 创建预订
// 同一房间的冲突检查与写入在房间锁和数据库事务内完成
func (s *BookingService) Create(ctx context.Context, userID int64, req *CreateBookingRequest) (booking *models.Booking, err error) {
	ctx, span := tracing.Start(ctx, "BookingService.Create", tracing.WithUserID(userID), tracing.WithRoomID(req.RoomID))
	defer func() {
		tracing.SetError(span, err)
		span.End()
	}()

	// 1. 校验日期
	checkIn, checkOut, err := ParseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	// 2. 校验房间
	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !room.IsAvailable {
		return nil, errors.ErrRoomNotAvailable
	}
	guests := models.Guests{Adults: req.Guests.Adults, Children: req.Guests.Children}
	if guests.Total() > room.Capacity {
		return nil, errors.ErrGuestsExceedRoom.WithMessagef("Number of guests exceeds room capacity of %d", room.Capacity)
	}

	// 3. 入住人信息，未填写时取用户资料
	details, err := s.buildGuestDetails(ctx, userID, req.GuestDetails)
	if err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}
	nights := models.Nights(checkIn, checkOut)
	booking = &models.Booking{
		UserID:            userID,
		RoomID:            room.ID,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Guests:            guests,
		TotalAmount:       utils.RoundMoney(float64(nights) * room.Price),
		Status:            models.BookingStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		PaymentMethod:     paymentMethod,
		SpecialRequests:   strings.TrimSpace(req.SpecialRequests),
		GuestDetails:      details,
		RoomService:       req.RoomService,
		BreakfastIncluded: req.BreakfastIncluded,
		ParkingRequired:   req.ParkingRequired,
	}

	// 4. 加锁后在事务内复查冲突并写入
	err = s.withRoomLock(ctx, room.ID, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			count, err := s.bookingRepo.CountOverlapping(ctx, tx, room.ID, checkIn, checkOut, 0)
			if err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			if count > 0 {
				return errors.ErrBookingConflict
			}
			return s.insertBooking(ctx, tx, booking)
		})
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrBookingConflict) {
			s.recordBooking(metrics.BookingResultConflict)
		}
		return nil, err
	}

	s.recordBooking(metrics.BookingResultCreated)
	span.SetAttributes(tracing.WithBookingNo(booking.BookingNumber))
	logger.Info("booking created",
		logger.BookingNo(booking.BookingNumber),
		logger.UserID(userID),
		logger.RoomID(room.ID),
		zap.Int("nights", nights),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	booking.Room = room
	s.present(booking)
	return booking, nil
}

// insertBooking 生成预订号并写入，预订号冲突时重新生成
func (s *BookingService) insertBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	var err error
	for attempt := 0; attempt < maxBookingNoAttempts; attempt++ {
		booking.BookingNumber = utils.GenerateBookingNo()
		// SAVEPOINT 保证重试时事务仍可用
		err = tx.Transaction(func(inner *gorm.DB) error {
			return s.bookingRepo.Create(ctx, inner, booking)
		})
		if err == nil {
			return nil
		}
		if !repository.IsDuplicateKey(err) {
			break
		}
		booking.ID = 0
	}
	return errors.ErrDatabaseError.WithError(err)
}

// UpdateStatus 修改预订状态（管理端）
// 任意状态之间均可切换；切换为占房状态时重新检查冲突
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, req *UpdateStatusRequest) (*models.Booking, error) {
	if !models.IsOneOf(req.Status, models.BookingStatuses) {
		return nil, errors.ErrInvalidStatus
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{"status": req.Status}
	switch req.Status {
	case models.BookingStatusCheckedIn:
		fields["checked_in_at"] = now
	case models.BookingStatusCheckedOut:
		fields["checked_out_at"] = now
	}

	update := func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if models.IsActiveBookingStatus(req.Status) && !models.IsActiveBookingStatus(booking.Status) {
				count, err := s.bookingRepo.CountOverlapping(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.ID)
				if err != nil {
					return errors.ErrDatabaseError.WithError(err)
				}
				if count > 0 {
					return errors.ErrBookingConflict
				}
			}
			if err := s.bookingRepo.UpdateFields(ctx, tx, booking.ID, fields); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			return nil
		})
	}

	if models.IsActiveBookingStatus(req.Status) {
		err = s.withRoomLock(ctx, booking.RoomID, update)
	} else {
		err = update(ctx)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("booking status updated",
		logger.BookingNo(booking.BookingNumber),
		zap.String("from", booking.Status),
		zap.String("to", req.Status),
	)
	return s.getBookingWithDetails(ctx, booking.ID)
}

// Cancel 用户取消预订，仅待确认和已确认状态可取消
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID int64, req *CancelRequest) (*models.Booking, error) {
	booking, err := s.getOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanCancel() {
		return nil, errors.ErrBookingCannotCancel
	}

	// 条件更新，并发的状态变更先落库时不覆盖
	reason := strings.TrimSpace(req.CancellationReason)
	updated, err := s.bookingRepo.UpdateFieldsIfStatus(ctx, nil, booking.ID, models.CancellableBookingStatuses, map[string]interface{}{
		"status":              models.BookingStatusCancelled,
		"cancellation_reason": reason,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !updated {
		return nil, errors.ErrBookingCannotCancel
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = reason
	s.present(booking)
	return booking, nil
}

// Feedback 已退房的预订添加评价，重复提交覆盖
func (s *BookingService) Feedback(ctx context.Context, userID, bookingID int64, req *FeedbackRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrBookingNotCompleted
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if booking.UserID != userID || booking.Status != models.BookingStatusCheckedOut {
		return nil, errors.ErrBookingNotCompleted
	}

	rating := req.Rating
	feedback := strings.TrimSpace(req.Feedback)
	err = s.bookingRepo.UpdateFields(ctx, nil, booking.ID, map[string]interface{}{
		"rating":   rating,
		"feedback": feedback,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	booking.Rating = &rating
	booking.Feedback = feedback
	s.present(booking)
	return booking, nil
}

// Get 获取预订详情，非管理员只能查看自己的预订
func (s *BookingService) Get(ctx context.Context, userID int64, isAdmin bool, bookingID int64) (*models.Booking, error) {
	booking, err := s.getBookingWithDetails(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}

// MyBookings 获取用户预订列表
func (s *BookingService) MyBookings(ctx context.Context, userID int64, status string, page utils.Pagination) ([]*models.Booking, int64, error) {
	page.Normalize()
	bookings, total, err := s.bookingRepo.ListByUser(ctx, userID, page.GetOffset(), page.Limit, status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	s.presentAll(bookings)
	return bookings, total, nil
}

// ListAll 获取全部预订（管理端）
func (s *BookingService) ListAll(ctx context.Context, req *ListRequest, page utils.Pagination) ([]*models.Booking, int64, error) {
	page.Normalize()
	filters := map[string]interface{}{
		"status":  req.Status,
		"room_id": req.RoomID,
		"user_id": req.UserID,
	}
	bookings, total, err := s.bookingRepo.List(ctx, page.GetOffset(), page.Limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	s.presentAll(bookings)
	return bookings, total, nil
}

// withRoomLock 持有房间锁执行 fn
func (s *BookingService) withRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context) error) error {
	lock, err := s.locker.Acquire(ctx, cache.RoomLockKey(roomID))
	if err != nil {
		if stderrors.Is(err, cache.ErrLockTimeout) {
			s.recordBooking(metrics.BookingResultLocked)
			return errors.ErrRoomLocked
		}
		return errors.ErrCacheError.WithError(err)
	}
	if s.metrics != nil {
		s.metrics.ObserveRoomLockWait(lock.Waited)
	}
	tracing.AddEvent(ctx, "room lock acquired", tracing.WithRoomID(roomID))
	defer func() {
		// 请求已取消时仍需释放锁
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			logger.Warn("failed to release room lock", logger.RoomID(roomID), zap.Error(err))
		}
	}()

	return fn(ctx)
}

// buildGuestDetails 组装入住人信息并加密证件号
func (s *BookingService) buildGuestDetails(ctx context.Context, userID int64, in *GuestDetailsInput) (models.GuestDetails, error) {
	if in == nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return models.GuestDetails{}, errors.ErrUserNotFound
			}
			return models.GuestDetails{}, errors.ErrDatabaseError.WithError(err)
		}
		return models.GuestDetails{
			FirstName: user.Profile.FirstName,
			LastName:  user.Profile.LastName,
			Email:     user.Email,
			Phone:     user.Profile.Phone,
		}, nil
	}

	details := models.GuestDetails{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     utils.NormalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		IDType:    in.IDType,
	}
	if id := strings.TrimSpace(in.IDNumber); id != "" {
		encrypted, err := s.aes.Encrypt(id)
		if err != nil {
			return models.GuestDetails{}, errors.ErrInternalError.WithError(err)
		}
		details.IDNumberEncrypted = encrypted
		details.IDNumber = id
	}
	return details, nil
}

// present 对外输出前将证件号替换为脱敏值
func (s *BookingService) present(b *models.Booking) {
	maskGuestID(s.aes, b)
}

func (s *BookingService) presentAll(bookings []*models.Booking) {
	for _, b := range bookings {
		maskGuestID(s.aes, b)
	}
}

func maskGuestID(aes *crypto.AES, b *models.Booking) {
	if b.GuestDetails.IDNumber == "" && b.GuestDetails.IDNumberEncrypted != "" {
		plain, err := aes.Decrypt(b.GuestDetails.IDNumberEncrypted)
		if err != nil {
			logger.Warn("failed to decrypt guest id number", logger.BookingNo(b.BookingNumber), zap.Error(err))
			return
		}
		b.GuestDetails.IDNumber = plain
	}
	b.GuestDetails.IDNumber = crypto.MaskIDNumber(b.GuestDetails.IDNumber)
}

func (s *BookingService) recordBooking(result string) {
	if s.metrics != nil {
		s.metrics.RecordBooking(result)
	}
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return booking, nil
}

func (s *BookingService) getBookingWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.present(booking)
	return booking, nil
}

func (s *BookingService) getOwnedBooking(ctx context.Context, userID, id int64) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}
