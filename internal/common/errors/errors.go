// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind 错误类别，决定 HTTP 状态码
type Kind int

const (
	// KindUnexpected 存储或基础设施故障
	KindUnexpected Kind = iota
	// KindValidation 输入缺失或格式错误
	KindValidation
	// KindNotFound 引用的实体不存在
	KindNotFound
	// KindConflict 时段重叠、重复评价、唯一字段冲突
	KindConflict
	// KindInvalidState 当前状态不允许该操作
	KindInvalidState
	// KindUnauthorized 令牌缺失、无效或过期
	KindUnauthorized
	// KindForbidden 角色不足
	KindForbidden
	// KindRateLimited 请求过于频繁
	KindRateLimited
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is(err, ErrBookingConflict) 对 WithMessage 派生的错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 返回错误对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的应用错误
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: message,
		Err:     e.Err,
	}
}

// WithMessagef 格式化修改错误消息
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, KindUnexpected, "Internal server error")
	ErrInvalidParams   = New(1001, KindValidation, "Validation failed")
	ErrNotFound        = New(1002, KindNotFound, "Resource not found")
	ErrAlreadyExists   = New(1003, KindConflict, "Resource already exists")
	ErrDatabaseError   = New(1004, KindUnexpected, "Database error")
	ErrCacheError      = New(1005, KindUnexpected, "Cache error")
	ErrInternalError   = New(1006, KindUnexpected, "Internal server error")
	ErrRateLimitExceed = New(1008, KindRateLimited, "Too many requests, please try again later")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized       = New(2000, KindUnauthorized, "No token provided, authorization denied")
	ErrTokenExpired       = New(2001, KindUnauthorized, "Token has expired")
	ErrTokenInvalid       = New(2002, KindUnauthorized, "Token is not valid")
	ErrPermissionDenied   = New(2004, KindForbidden, "Access denied. Admin privileges required")
	ErrAccountDisabled    = New(2005, KindUnauthorized, "Account is disabled")
	ErrInvalidCredentials = New(2007, KindUnauthorized, "Invalid credentials")
	ErrPasswordIncorrect  = New(2008, KindValidation, "Current password is incorrect")
	ErrUserNotFound       = New(2100, KindNotFound, "User not found")
	ErrUserExists         = New(2101, KindConflict, "User already exists with this email or username")
)

// 目录错误码 (3000-3999)
var (
	ErrFoodNotFound      = New(3000, KindNotFound, "Food not found")
	ErrFoodNotAvailable  = New(3001, KindInvalidState, "Food item is not available")
	ErrReviewExists      = New(3002, KindConflict, "You have already reviewed this food")
	ErrRoomNotFound      = New(3100, KindNotFound, "Room not found")
	ErrRoomNotAvailable  = New(3101, KindInvalidState, "Room is not available for booking")
	ErrRoomNumberExists  = New(3102, KindConflict, "Room number already exists")
	ErrRoomHasBookings   = New(3103, KindConflict, "Room has bookings and cannot be deleted")
	ErrDateRangeRequired = New(3104, KindValidation, "Check-in and check-out dates are required")
)

// 预订错误码 (4000-4999)
var (
	ErrBookingNotFound     = New(4000, KindNotFound, "Booking not found")
	ErrBookingConflict     = New(4001, KindConflict, "Room is not available for the selected dates")
	ErrBookingCannotCancel = New(4002, KindInvalidState, "Booking cannot be cancelled at this stage")
	ErrBookingNotCompleted = New(4003, KindInvalidState, "Booking not found or not completed")
	ErrInvalidDateRange    = New(4004, KindValidation, "Check-out date must be after check-in date")
	ErrGuestsExceedRoom    = New(4005, KindValidation, "Number of guests exceeds room capacity")
	ErrRoomLocked          = New(4006, KindConflict, "Room is being booked by another request, please retry")
	ErrInvalidStatus       = New(4007, KindValidation, "Invalid status")
)

// 订单错误码 (5000-5999)
var (
	ErrOrderNotFound     = New(5000, KindNotFound, "Order not found")
	ErrOrderCannotCancel = New(5001, KindInvalidState, "Order cannot be cancelled at this stage")
	ErrOrderNotDelivered = New(5002, KindInvalidState, "Order not found or not delivered")
	ErrOrderEmpty        = New(5003, KindValidation, "Order must contain at least one item")
)

// 上传错误码 (6000-6999)
var (
	ErrUploadFileMissing = New(6000, KindValidation, "Please choose a file to upload")
	ErrUploadFileTooBig  = New(6001, KindValidation, "File is too large")
	ErrUploadFileType    = New(6002, KindValidation, "Unsupported file type")
	ErrUploadFailed      = New(6003, KindUnexpected, "File upload failed")
)

// GetAppError 获取应用错误，非应用错误包装为未知错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
