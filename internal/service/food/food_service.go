// Package food 提供菜品目录与评价服务
package food

import (
	"context"
	"strings"
	"time"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

const cacheNameCategories = "food_categories"

// FoodService 菜品服务
type FoodService struct {
	foodRepo *repository.FoodRepository
	cache    *cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewFoodService 创建菜品服务，c 与 m 可为 nil
func NewFoodService(foodRepo *repository.FoodRepository, c *cache.Cache, cacheTTL time.Duration, m *metrics.Metrics) *FoodService {
	return &FoodService{
		foodRepo: foodRepo,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

// ListRequest 菜品列表查询参数
type ListRequest struct {
	Category   string   `form:"category"`
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Search     string   `form:"search"`
	Vegetarian bool     `form:"vegetarian"`
	Vegan      bool     `form:"vegan"`
	GlutenFree bool     `form:"glutenFree"`
	SortBy     string   `form:"sortBy" binding:"omitempty,oneof=createdAt price name rating preparationTime"`
	SortOrder  string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// CreateRequest 创建菜品请求
type CreateRequest struct {
	Name            string                 `json:"name" binding:"required,min=2,max=100"`
	Description     string                 `json:"description" binding:"required,min=10,max=1000"`
	Price           *float64               `json:"price" binding:"required,gte=0"`
	Category        string                 `json:"category" binding:"required,food_category"`
	Image           string                 `json:"image" binding:"omitempty,max=500"`
	Ingredients     []string               `json:"ingredients"`
	PreparationTime int                    `json:"preparationTime" binding:"required,min=1"`
	IsAvailable     *bool                  `json:"isAvailable"`
	IsVegetarian    bool                   `json:"isVegetarian"`
	IsVegan         bool                   `json:"isVegan"`
	IsGlutenFree    bool                   `json:"isGlutenFree"`
	SpiceLevel      string                 `json:"spiceLevel" binding:"omitempty,spice_level"`
	NutritionalInfo models.NutritionalInfo `json:"nutritionalInfo"`
	Tags            []string               `json:"tags"`
}

// UpdateRequest 修改菜品请求，nil 字段保持不变
type UpdateRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string                 `json:"description" binding:"omitempty,min=10,max=1000"`
	Price           *float64                `json:"price" binding:"omitempty,gte=0"`
	Category        *string                 `json:"category" binding:"omitempty,food_category"`
	Image           *string                 `json:"image" binding:"omitempty,max=500"`
	Ingredients     []string                `json:"ingredients"`
	PreparationTime *int                    `json:"preparationTime" binding:"omitempty,min=1"`
	IsAvailable     *bool                   `json:"isAvailable"`
	IsVegetarian    *bool                   `json:"isVegetarian"`
	IsVegan         *bool                   `json:"isVegan"`
	IsGlutenFree    *bool                   `json:"isGlutenFree"`
	SpiceLevel      *string                 `json:"spiceLevel" binding:"omitempty,spice_level"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
	Tags            []string                `json:"tags"`
}

// List 获取上架菜品列表
func (s *FoodService) List(ctx context.Context, req *ListRequest, page utils.Pagination) ([]*models.Food, int64, error) {
	page.Normalize()
	filter := repository.FoodFilter{
		Category:   strings.TrimSpace(req.Category),
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		Search:     strings.TrimSpace(req.Search),
		Vegetarian: req.Vegetarian,
		Vegan:      req.Vegan,
		GlutenFree: req.GlutenFree,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}

	foods, total, err := s.foodRepo.List(ctx, page.GetOffset(), page.Limit, filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return foods, total, nil
}

// Get 获取菜品详情及最新评价
func (s *FoodService) Get(ctx context.Context, id int64) (*models.Food, error) {
	food, err := s.foodRepo.GetByIDWithReviews(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrFoodNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return food, nil
}

// Categories 获取当前存在的菜品分类，结果走缓存
func (s *FoodService) Categories(ctx context.Context) ([]string, error) {
	categories, hit, err := cache.GetOrLoad(ctx, s.cache, cache.KeyFoodCategories, s.cacheTTL, s.foodRepo.DistinctCategories)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.recordCache(hit)
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Create 创建菜品
func (s *FoodService) Create(ctx context.Context, adminID int64, req *CreateRequest) (*models.Food, error) {
	food := &models.Food{
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Price:           utils.RoundMoney(*req.Price),
		Category:        req.Category,
		Image:           req.Image,
		Ingredients:     req.Ingredients,
		PreparationTime: req.PreparationTime,
		IsAvailable:     true,
		IsVegetarian:    req.IsVegetarian,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
		SpiceLevel:      req.SpiceLevel,
		NutritionalInfo: req.NutritionalInfo,
		Tags:            req.Tags,
		CreatedBy:       &adminID,
	}
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}
	if food.SpiceLevel == "" {
		food.SpiceLevel = models.SpiceLevelMild
	}
	normalizeLists(food)

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return food, nil
}

// Update 修改菜品
func (s *FoodService) Update(ctx context.Context, id int64, req *UpdateRequest) (*models.Food, error) {
	food, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrFoodNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if req.Name != nil {
		food.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		food.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		food.Price = utils.RoundMoney(*req.Price)
	}
	if req.Category != nil {
		food.Category = *req.Category
	}
	if req.Image != nil {
		food.Image = *req.Image
	}
	if req.Ingredients != nil {
		food.Ingredients = req.Ingredients
	}
	if req.PreparationTime != nil {
		food.PreparationTime = *req.PreparationTime
	}
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}
	if req.IsVegetarian != nil {
		food.IsVegetarian = *req.IsVegetarian
	}
	if req.IsVegan != nil {
		food.IsVegan = *req.IsVegan
	}
	if req.IsGlutenFree != nil {
		food.IsGlutenFree = *req.IsGlutenFree
	}
	if req.SpiceLevel != nil {
		food.SpiceLevel = *req.SpiceLevel
	}
	if req.NutritionalInfo != nil {
		food.NutritionalInfo = *req.NutritionalInfo
	}
	if req.Tags != nil {
		food.Tags = req.Tags
	}
	normalizeLists(food)

	if err := s.foodRepo.Update(ctx, food); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return food, nil
}

// Delete 删除菜品及其评价
func (s *FoodService) Delete(ctx context.Context, id int64) error {
	if err := s.foodRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrFoodNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return nil
}

// Seed 用演示数据替换整个菜品目录
func (s *FoodService) Seed(ctx context.Context) ([]*models.Food, error) {
	foods := demoFoods()
	if err := s.foodRepo.ReplaceAll(ctx, foods); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx)
	return foods, nil
}

func (s *FoodService) invalidate(ctx context.Context) {
	cache.Invalidate(ctx, s.cache, cache.KeyFoodCategories)
}

func (s *FoodService) recordCache(hit bool) {
	if s.metrics == nil || s.cache == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit(cacheNameCategories)
	} else {
		s.metrics.RecordCacheMiss(cacheNameCategories)
	}
}

// normalizeLists 保证 JSON 列写入 [] 而不是 null
func normalizeLists(food *models.Food) {
	if food.Ingredients == nil {
		food.Ingredients = []string{}
	}
	if food.Tags == nil {
		food.Tags = []string{}
	}
}
