// Package booking 提供房间预订相关的 HTTP Handler
package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	"github.com/dumeirei/foodstay-backend/internal/middleware"
	hotelService "github.com/dumeirei/foodstay-backend/internal/service/hotel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler 预订处理器
type Handler struct {
	bookingService  *hotelService.BookingService
	documentService *hotelService.DocumentService
	checker         *hotelService.AvailabilityChecker
}

// NewHandler 创建预订处理器
func NewHandler(
	bookingSvc *hotelService.BookingService,
	documentSvc *hotelService.DocumentService,
	checker *hotelService.AvailabilityChecker,
) *Handler {
	return &Handler{
		bookingService:  bookingSvc,
		documentService: documentSvc,
		checker:         checker,
	}
}

// Availability 区间内可预订的房间
// @Summary 查询区间内可预订的房间
// @Tags 预订
// @Produce json
// @Param checkIn query string true "入住日期"
// @Param checkOut query string true "退房日期"
// @Success 200 {object} response.Response{data=hotelService.AvailableRoomsResult}
// @Failure 400 {object} response.Response
// @Router /api/bookings/availability [get]
func (h *Handler) Availability(c *gin.Context) {
	checkIn, checkOut, err := hotelService.ParseStay(c.Query("checkIn"), c.Query("checkOut"))
	if handler.HandleError(c, err) {
		return
	}

	result, err := h.checker.AvailableRooms(c.Request.Context(), checkIn, checkOut)
	handler.MustSucceed(c, err, result)
}

// Create 创建预订
// @Summary 创建预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.CreateBookingRequest true "预订信息"
// @Success 201 {object} response.Response{data=models.Booking}
// @Failure 400 {object} response.Response
// @Router /api/bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req hotelService.CreateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), userID, &req)
	handler.MustCreate(c, err, "Booking created successfully", booking)
}

// MyBookings 我的预订
// @Summary 我的预订列表
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param status query string false "状态"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Booking}
// @Router /api/bookings/my-bookings [get]
func (h *Handler) MyBookings(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	p := handler.BindPagination(c)

	bookings, total, err := h.bookingService.MyBookings(c.Request.Context(), userID, c.Query("status"), p)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.Limit)
}

// Get 预订详情
// @Summary 预订详情
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 404 {object} response.Response
// @Router /api/bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "booking")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), userID, middleware.IsAdmin(c), bookingID)
	handler.MustSucceed(c, err, booking)
}

// QRCode 预订二维码
// @Summary 入住核验二维码
// @Tags 预订
// @Produce png
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {file} binary
// @Router /api/bookings/{id}/qrcode [get]
func (h *Handler) QRCode(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "booking")
	if !ok {
		return
	}

	png, _, err := h.documentService.QRCode(c.Request.Context(), userID, middleware.IsAdmin(c), bookingID)
	if handler.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Receipt 预订收据
// @Summary 下载 PDF 收据
// @Tags 预订
// @Produce application/pdf
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {file} binary
// @Router /api/bookings/{id}/receipt [get]
func (h *Handler) Receipt(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "booking")
	if !ok {
		return
	}

	pdf, booking, err := h.documentService.Receipt(c.Request.Context(), userID, middleware.IsAdmin(c), bookingID)
	if handler.HandleError(c, err) {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, booking.BookingNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Cancel 取消预订
// @Summary 取消预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body hotelService.CancelRequest false "取消原因"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/bookings/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "booking")
	if !ok {
		return
	}
	var req hotelService.CancelRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), userID, bookingID, &req)
	handler.MustSucceedWithMessage(c, err, "Booking cancelled successfully", booking)
}

// Feedback 预订评价
// @Summary 已退房预订评价
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body hotelService.FeedbackRequest true "评价"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/bookings/{id}/feedback [put]
func (h *Handler) Feedback(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "booking")
	if !ok {
		return
	}
	var req hotelService.FeedbackRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Feedback(c.Request.Context(), userID, bookingID, &req)
	handler.MustSucceedWithMessage(c, err, "Feedback added successfully", booking)
}

// ListAll 全部预订
// @Summary 预订列表（管理端）
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param status query string false "状态"
// @Param room query int false "房间ID"
// @Param user query int false "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Booking}
// @Router /api/bookings [get]
func (h *Handler) ListAll(c *gin.Context) {
	var req hotelService.ListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	bookings, total, err := h.bookingService.ListAll(c.Request.Context(), &req, p)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.Limit)
}

// UpdateStatus 修改预订状态
// @Summary 修改预订状态（管理端）
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body hotelService.UpdateStatusRequest true "状态"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/bookings/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	bookingID, ok := handler.ParseID(c, "booking")
	if !ok {
		return
	}
	var req hotelService.UpdateStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), bookingID, &req)
	handler.MustSucceedWithMessage(c, err, "Booking status updated successfully", booking)
}

// Export 导出预订
// @Summary 导出入住日期在区间内的预订（Excel）
// @Tags 预订管理
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security Bearer
// @Param from query string true "开始日期"
// @Param to query string true "结束日期"
// @Param status query string false "状态"
// @Success 200 {file} binary
// @Router /api/bookings/export [get]
func (h *Handler) Export(c *gin.Context) {
	var req hotelService.ExportRequest
	if !handler.BindQuery(c, &req) {
		return
	}

	data, err := h.documentService.Export(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}
	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Lookup 扫码查找预订
// @Summary 前台扫码或输入预订号查找预订
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param code query string true "二维码内容或预订号"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 404 {object} response.Response
// @Router /api/bookings/lookup [get]
func (h *Handler) Lookup(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		handler.HandleError(c, errInvalidCode)
		return
	}

	booking, err := h.documentService.Lookup(c.Request.Context(), code)
	handler.MustSucceed(c, err, booking)
}

var errInvalidCode = apperrors.ErrInvalidParams.WithMessage("Booking code is required")
