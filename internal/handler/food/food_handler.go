// Package food 提供菜品与评价相关的 HTTP Handler
package food

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/foodstay-backend/internal/common/handler"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	foodService "github.com/dumeirei/foodstay-backend/internal/service/food"
)

// Handler 菜品处理器
type Handler struct {
	foodService   *foodService.FoodService
	reviewService *foodService.ReviewService
}

// NewHandler 创建菜品处理器
func NewHandler(foodSvc *foodService.FoodService, reviewSvc *foodService.ReviewService) *Handler {
	return &Handler{
		foodService:   foodSvc,
		reviewService: reviewSvc,
	}
}

// List 菜品列表
// @Summary 菜品列表
// @Tags 菜品
// @Produce json
// @Param category query string false "分类"
// @Param minPrice query number false "最低价格"
// @Param maxPrice query number false "最高价格"
// @Param search query string false "名称/描述/配料关键词"
// @Param vegetarian query bool false "素食"
// @Param vegan query bool false "纯素"
// @Param glutenFree query bool false "无麸质"
// @Param sortBy query string false "排序字段" Enums(createdAt, price, name, rating, preparationTime)
// @Param sortOrder query string false "排序方向" Enums(asc, desc)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.Food}
// @Router /api/foods [get]
func (h *Handler) List(c *gin.Context) {
	var req foodService.ListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	foods, total, err := h.foodService.List(c.Request.Context(), &req, p)
	handler.MustSucceedPage(c, err, foods, total, p.Page, p.Limit)
}

// Categories 菜品分类
// @Summary 当前存在的菜品分类
// @Tags 菜品
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/foods/categories [get]
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.foodService.Categories(c.Request.Context())
	handler.MustSucceed(c, err, categories)
}

// Get 菜品详情
// @Summary 菜品详情（含评价）
// @Tags 菜品
// @Produce json
// @Param id path int true "菜品ID"
// @Success 200 {object} response.Response{data=models.Food}
// @Failure 404 {object} response.Response
// @Router /api/foods/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "food")
	if !ok {
		return
	}

	food, err := h.foodService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, food)
}

// Create 创建菜品
// @Summary 创建菜品
// @Tags 菜品管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body foodService.CreateRequest true "菜品信息"
// @Success 201 {object} response.Response{data=models.Food}
// @Router /api/foods [post]
func (h *Handler) Create(c *gin.Context) {
	adminID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}
	var req foodService.CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	food, err := h.foodService.Create(c.Request.Context(), adminID, &req)
	handler.MustCreate(c, err, "Food created successfully", food)
}

// Update 修改菜品
// @Summary 修改菜品
// @Tags 菜品管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Param request body foodService.UpdateRequest true "菜品信息"
// @Success 200 {object} response.Response{data=models.Food}
// @Router /api/foods/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "food")
	if !ok {
		return
	}
	var req foodService.UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	food, err := h.foodService.Update(c.Request.Context(), id, &req)
	handler.MustSucceedWithMessage(c, err, "Food updated successfully", food)
}

// Delete 删除菜品
// @Summary 删除菜品
// @Tags 菜品管理
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Success 200 {object} response.Response
// @Router /api/foods/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "food")
	if !ok {
		return
	}

	if handler.HandleError(c, h.foodService.Delete(c.Request.Context(), id)) {
		return
	}
	response.SuccessWithMessage(c, "Food deleted successfully", nil)
}

// Seed 写入演示菜品
// @Summary 写入演示菜品
// @Tags 菜品管理
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Food}
// @Router /api/foods/seed [post]
func (h *Handler) Seed(c *gin.Context) {
	foods, err := h.foodService.Seed(c.Request.Context())
	handler.MustSucceedWithMessage(c, err, "Demo foods seeded successfully", foods)
}

// AddReview 添加评价
// @Summary 添加菜品评价
// @Tags 菜品
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Param request body foodService.AddReviewRequest true "评价"
// @Success 201 {object} response.Response{data=foodService.ReviewResult}
// @Router /api/foods/{id}/reviews [post]
func (h *Handler) AddReview(c *gin.Context) {
	userID, foodID, ok := handler.RequireUserAndParseID(c, "food")
	if !ok {
		return
	}
	var req foodService.AddReviewRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.reviewService.AddReview(c.Request.Context(), userID, foodID, &req)
	handler.MustCreate(c, err, "Review added successfully", result)
}

// ListReviews 评价列表
// @Summary 菜品评价列表
// @Tags 菜品
// @Produce json
// @Param id path int true "菜品ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=[]models.FoodReview}
// @Router /api/foods/{id}/reviews [get]
func (h *Handler) ListReviews(c *gin.Context) {
	foodID, ok := handler.ParseID(c, "food")
	if !ok {
		return
	}
	p := handler.BindPagination(c)

	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), foodID, p)
	handler.MustSucceedPage(c, err, reviews, total, p.Page, p.Limit)
}
