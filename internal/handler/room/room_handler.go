// Package room 提供房间相关的 HTTP Handler
package room

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	roomService "github.com/dumeirei/foodstay-backend/internal/service/room"
)

// Handler 房间处理器
type Handler struct {
	roomService *roomService.RoomService
}

// NewHandler 创建房间处理器
func NewHandler(roomSvc *roomService.RoomService) *Handler {
	return &Handler{roomService: roomSvc}
}

// List 房间列表
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Param type query string false "房型，all 表示全部"
// @Param minPrice query number false "最低价格"
// @Param maxPrice query number false "最高价格"
// @Param capacity query int false "最少容纳人数"
// @Param available query string false "仅可预订" Enums(true)
// @Param sortBy query string false "排序字段" Enums(price, capacity, roomNumber, rating, createdAt)
// @Param sortOrder query string false "排序方向" Enums(asc, desc)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/rooms [get]
func (h *Handler) List(c *gin.Context) {
	var req roomService.ListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	rooms, total, err := h.roomService.List(c.Request.Context(), &req, p)
	handler.MustSucceedPage(c, err, rooms, total, p.Page, p.Limit)
}

// Types 房型列表
// @Summary 当前存在的房型
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/rooms/types [get]
func (h *Handler) Types(c *gin.Context) {
	types, err := h.roomService.Types(c.Request.Context())
	handler.MustSucceed(c, err, types)
}

// Get 房间详情
// @Summary 房间详情
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Failure 404 {object} response.Response
// @Router /api/rooms/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "room")
	if !ok {
		return
	}

	room, err := h.roomService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// CheckAvailability 单个房间可用性
// @Summary 检查房间在区间内是否可预订
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Param checkIn query string true "入住日期"
// @Param checkOut query string true "退房日期"
// @Success 200 {object} response.Response{data=hotelService.RoomAvailability}
// @Router /api/rooms/{id}/availability [get]
func (h *Handler) CheckAvailability(c *gin.Context) {
	id, ok := handler.ParseID(c, "room")
	if !ok {
		return
	}

	result, err := h.roomService.CheckAvailability(c.Request.Context(), id, c.Query("checkIn"), c.Query("checkOut"))
	handler.MustSucceed(c, err, result)
}

// Create 创建房间
// @Summary 创建房间
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body roomService.CreateRequest true "房间信息"
// @Success 201 {object} response.Response{data=models.Room}
// @Router /api/rooms [post]
func (h *Handler) Create(c *gin.Context) {
	adminID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req roomService.CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), adminID, &req)
	handler.MustCreate(c, err, "Room created successfully", room)
}

// Update 修改房间
// @Summary 修改房间
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body roomService.UpdateRequest true "房间信息"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/rooms/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "room")
	if !ok {
		return
	}
	var req roomService.UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.Update(c.Request.Context(), id, &req)
	handler.MustSucceedWithMessage(c, err, "Room updated successfully", room)
}

// Delete 删除房间
// @Summary 删除房间（存在预订时拒绝）
// @Tags 房间管理
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response
// @Router /api/rooms/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "room")
	if !ok {
		return
	}

	if handler.HandleError(c, h.roomService.Delete(c.Request.Context(), id)) {
		return
	}
	response.SuccessWithMessage(c, "Room deleted successfully", nil)
}

// Seed 写入演示房间
// @Summary 写入演示房间
// @Tags 房间管理
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/rooms/seed [post]
func (h *Handler) Seed(c *gin.Context) {
	rooms, err := h.roomService.Seed(c.Request.Context())
	handler.MustSucceedWithMessage(c, err, "Demo rooms seeded successfully", rooms)
}
