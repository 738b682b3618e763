package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// 菜品列表可排序字段
var foodSortColumns = map[string]string{
	"createdAt":       "created_at",
	"price":           "price",
	"name":            "name",
	"rating":          "rating_average",
	"preparationTime": "preparation_time",
}

// latestReviewLimit 菜品详情附带的最新评价数
const latestReviewLimit = 10

// FoodFilter 菜品列表过滤条件
type FoodFilter struct {
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
	SortBy     string
	SortOrder  string
}

// FoodRepository 菜品仓储
type FoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository 创建菜品仓储
func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

// Create 创建菜品
func (r *FoodRepository) Create(ctx context.Context, food *models.Food) error {
	return r.db.WithContext(ctx).Omit("Reviews").Create(food).Error
}

// GetByID 根据 ID 获取菜品
func (r *FoodRepository) GetByID(ctx context.Context, id int64) (*models.Food, error) {
	var food models.Food
	err := r.db.WithContext(ctx).First(&food, id).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

// GetByIDWithReviews 根据 ID 获取菜品及最新评价
func (r *FoodRepository) GetByIDWithReviews(ctx context.Context, id int64) (*models.Food, error) {
	var food models.Food
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC").Limit(latestReviewLimit)
		}).
		Preload("Reviews.User").
		First(&food, id).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

// GetByIDs 批量获取菜品
func (r *FoodRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Food, error) {
	var foods []*models.Food
	if len(ids) == 0 {
		return foods, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&foods).Error
	return foods, err
}

// Update 保存菜品全部字段
func (r *FoodRepository) Update(ctx context.Context, food *models.Food) error {
	return r.db.WithContext(ctx).Omit("Reviews").Save(food).Error
}

// Delete 删除菜品及其评价
func (r *FoodRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("food_id = ?", id).Delete(&models.FoodReview{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Food{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 获取上架菜品列表
func (r *FoodRepository) List(ctx context.Context, offset, limit int, filter FoodFilter) ([]*models.Food, int64, error) {
	var foods []*models.Food
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Food{}).Where("is_available = ?", true)

	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(CAST(ingredients AS TEXT)) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Vegetarian {
		query = query.Where("is_vegetarian = ?", true)
	}
	if filter.Vegan {
		query = query.Where("is_vegan = ?", true)
	}
	if filter.GlutenFree {
		query = query.Where("is_gluten_free = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortClause(foodSortColumns, filter.SortBy, "createdAt", filter.SortOrder, "desc")
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&foods).Error; err != nil {
		return nil, 0, err
	}

	return foods, total, nil
}

// DistinctCategories 当前存在的菜品分类
func (r *FoodRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Food{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// ReplaceAll 清空菜品目录（含评价）并写入新数据
func (r *FoodRepository) ReplaceAll(ctx context.Context, foods []*models.Food) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FoodReview{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Food{}).Error; err != nil {
			return err
		}
		if len(foods) == 0 {
			return nil
		}
		return tx.Omit("Reviews").Create(&foods).Error
	})
}
