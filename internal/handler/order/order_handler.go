// Package order 提供外卖订单相关的 HTTP Handler
package order

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	"github.com/dumeirei/foodstay-backend/internal/middleware"
	orderService "github.com/dumeirei/foodstay-backend/internal/service/order"
)

// Handler 订单处理器
type Handler struct {
	orderService *orderService.OrderService
}

// NewHandler 创建订单处理器
func NewHandler(orderSvc *orderService.OrderService) *Handler {
	return &Handler{orderService: orderSvc}
}

// Create 下单
// @Summary 创建外卖订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body orderService.CreateOrderRequest true "订单信息"
// @Success 201 {object} response.Response{data=models.Order}
// @Failure 400 {object} response.Response
// @Router /api/orders [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req orderService.CreateOrderRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, &req)
	handler.MustCreate(c, err, "Order created successfully", order)
}

// MyOrders 我的订单
// @Summary 我的订单列表
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param status query string false "状态"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Order}
// @Router /api/orders/my-orders [get]
func (h *Handler) MyOrders(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	p := handler.BindPagination(c)

	orders, total, err := h.orderService.MyOrders(c.Request.Context(), userID, c.Query("status"), p)
	handler.MustSucceedPage(c, err, orders, total, p.Page, p.Limit)
}

// Get 订单详情
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=models.Order}
// @Failure 404 {object} response.Response
// @Router /api/orders/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, orderID, ok := handler.RequireUserAndParseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), userID, middleware.IsAdmin(c), orderID)
	handler.MustSucceed(c, err, order)
}

// Cancel 取消订单
// @Summary 取消订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.CancelRequest false "取消原因"
// @Success 200 {object} response.Response{data=models.Order}
// @Router /api/orders/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	userID, orderID, ok := handler.RequireUserAndParseID(c, "order")
	if !ok {
		return
	}
	var req orderService.CancelRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), userID, orderID, &req)
	handler.MustSucceedWithMessage(c, err, "Order cancelled successfully", order)
}

// Feedback 订单评价
// @Summary 已送达订单评价
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.FeedbackRequest true "评价"
// @Success 200 {object} response.Response{data=models.Order}
// @Router /api/orders/{id}/feedback [put]
func (h *Handler) Feedback(c *gin.Context) {
	userID, orderID, ok := handler.RequireUserAndParseID(c, "order")
	if !ok {
		return
	}
	var req orderService.FeedbackRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Feedback(c.Request.Context(), userID, orderID, &req)
	handler.MustSucceedWithMessage(c, err, "Feedback added successfully", order)
}

// ListAll 全部订单
// @Summary 订单列表（管理端）
// @Tags 订单管理
// @Produce json
// @Security Bearer
// @Param status query string false "状态"
// @Param user query int false "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Order}
// @Router /api/orders [get]
func (h *Handler) ListAll(c *gin.Context) {
	var req orderService.ListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	orders, total, err := h.orderService.ListAll(c.Request.Context(), &req, p)
	handler.MustSucceedPage(c, err, orders, total, p.Page, p.Limit)
}

// UpdateStatus 修改订单状态
// @Summary 修改订单状态（管理端）
// @Tags 订单管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.UpdateStatusRequest true "状态"
// @Success 200 {object} response.Response{data=models.Order}
// @Router /api/orders/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	orderID, ok := handler.ParseID(c, "order")
	if !ok {
		return
	}
	var req orderService.UpdateStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, &req)
	handler.MustSucceedWithMessage(c, err, "Order status updated successfully", order)
}
