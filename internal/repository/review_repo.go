package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

// ReviewRepository 菜品评价仓储
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Exists 用户是否已评价该菜品
func (r *ReviewRepository) Exists(ctx context.Context, foodID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FoodReview{}).
		Where("food_id = ? AND user_id = ?", foodID, userID).
		Count(&count).Error
	return count > 0, err
}

// CreateAndRecompute 在同一事务内写入评价并重算菜品评分
func (r *ReviewRepository) CreateAndRecompute(ctx context.Context, review *models.FoodReview) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(review).Error; err != nil {
			return err
		}

		var stats struct {
			Average float64
			Count   int
		}
		err := tx.Model(&models.FoodReview{}).
			Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
			Where("food_id = ?", review.FoodID).
			Scan(&stats).Error
		if err != nil {
			return err
		}

		rating = models.Rating{
			Average: stats.Average,
			Count:   stats.Count,
		}
		return tx.Model(&models.Food{}).Where("id = ?", review.FoodID).Updates(map[string]interface{}{
			"rating_average": rating.Average,
			"rating_count":   rating.Count,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByFood 获取菜品评价列表
func (r *ReviewRepository) ListByFood(ctx context.Context, foodID int64, offset, limit int) ([]*models.FoodReview, int64, error) {
	var reviews []*models.FoodReview
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FoodReview{}).Where("food_id = ?", foodID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
