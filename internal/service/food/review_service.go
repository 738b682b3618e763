package food

import (
	"context"
	"strings"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// ReviewService 菜品评价服务
type ReviewService struct {
	foodRepo   *repository.FoodRepository
	reviewRepo *repository.ReviewRepository
}

// NewReviewService 创建评价服务
func NewReviewService(foodRepo *repository.FoodRepository, reviewRepo *repository.ReviewRepository) *ReviewService {
	return &ReviewService{
		foodRepo:   foodRepo,
		reviewRepo: reviewRepo,
	}
}

// AddReviewRequest 添加评价请求
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// ReviewResult 添加评价结果
type ReviewResult struct {
	Review *models.FoodReview `json:"review"`
	Rating *models.Rating     `json:"rating"`
}

// AddReview 添加评价并重算菜品评分
func (s *ReviewService) AddReview(ctx context.Context, userID, foodID int64, req *AddReviewRequest) (*ReviewResult, error) {
	if _, err := s.foodRepo.GetByID(ctx, foodID); err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrFoodNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	exists, err := s.reviewRepo.Exists(ctx, foodID, userID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrReviewExists
	}

	review := &models.FoodReview{
		FoodID:  foodID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	rating, err := s.reviewRepo.CreateAndRecompute(ctx, review)
	if err != nil {
		// 并发提交时由唯一索引兜底
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrReviewExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return &ReviewResult{Review: review, Rating: rating}, nil
}

// ListReviews 分页获取菜品评价
func (s *ReviewService) ListReviews(ctx context.Context, foodID int64, page utils.Pagination) ([]*models.FoodReview, int64, error) {
	page.Normalize()
	if _, err := s.foodRepo.GetByID(ctx, foodID); err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, errors.ErrFoodNotFound
		}
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	reviews, total, err := s.reviewRepo.ListByFood(ctx, foodID, page.GetOffset(), page.Limit)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return reviews, total, nil
}
