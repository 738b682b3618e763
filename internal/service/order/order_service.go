// Package order 提供外卖订单服务
package order

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/tracing"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// 订单号冲突时的最大重试次数
const maxOrderNoAttempts = 3

// OrderService 订单服务
type OrderService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	foodRepo      *repository.FoodRepository
	deliveryAfter time.Duration
	metrics       *metrics.Metrics
}

// NewOrderService 创建订单服务，deliveryAfter 为预计送达时长，m 可为 nil
func NewOrderService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	foodRepo *repository.FoodRepository,
	deliveryAfter time.Duration,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		foodRepo:      foodRepo,
		deliveryAfter: deliveryAfter,
		metrics:       m,
	}
}

// ItemInput 订单明细
type ItemInput struct {
	FoodID              int64  `json:"food" binding:"required,min=1"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"specialInstructions" binding:"omitempty,max=255"`
}

// AddressInput 配送地址
type AddressInput struct {
	Street       string `json:"street" binding:"required,max=255"`
	City         string `json:"city" binding:"required,max=100"`
	ZipCode      string `json:"zipCode" binding:"omitempty,max=20"`
	Instructions string `json:"instructions" binding:"omitempty,max=255"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items               []ItemInput  `json:"items" binding:"required,dive"`
	DeliveryAddress     AddressInput `json:"deliveryAddress"`
	ContactNumber       string       `json:"contactNumber" binding:"required,max=30"`
	SpecialInstructions string       `json:"specialInstructions" binding:"omitempty,max=500"`
	PaymentMethod       string       `json:"paymentMethod" binding:"omitempty,payment_method"`
}

// UpdateStatusRequest 修改订单状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// CancelRequest 取消订单请求
type CancelRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"omitempty,max=500"`
}

// FeedbackRequest 订单评价请求
type FeedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback" binding:"omitempty,max=1000"`
}

// ListRequest 管理端订单列表过滤条件
type ListRequest struct {
	Status string `form:"status" binding:"omitempty,order_status"`
	UserID int64  `form:"user" binding:"omitempty,min=1"`
}

// Create 下单
// 菜名与单价按下单时快照保存，订单与明细在同一事务内写入
func (s *OrderService) Create(ctx context.Context, userID int64, req *CreateOrderRequest) (created *models.Order, err error) {
	ctx, span := tracing.Start(ctx, "OrderService.Create", tracing.WithUserID(userID))
	defer func() {
		tracing.SetError(span, err)
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, errors.ErrOrderEmpty
	}

	// 1. 校验菜品
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.FoodID)
	}
	foods, err := s.foodRepo.GetByIDs(ctx, utils.Unique(ids))
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	byID := make(map[int64]*models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	// 2. 生成明细并计算总价
	items := make([]models.OrderItem, 0, len(req.Items))
	var total float64
	for _, in := range req.Items {
		if in.Quantity < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("Quantity must be at least 1")
		}
		food, ok := byID[in.FoodID]
		if !ok {
			return nil, errors.ErrFoodNotFound.WithMessagef("Food item with ID %d not found", in.FoodID)
		}
		if !food.IsAvailable {
			return nil, errors.ErrFoodNotAvailable.WithMessagef("Food item %s is not available", food.Name)
		}
		item := models.OrderItem{
			FoodID:              food.ID,
			FoodName:            food.Name,
			Quantity:            in.Quantity,
			Price:               food.Price,
			SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		}
		items = append(items, item)
		total += item.Subtotal()
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}
	order := &models.Order{
		UserID:      userID,
		TotalAmount: utils.RoundMoney(total),
		Status:      models.OrderStatusPending,
		DeliveryAddress: models.DeliveryAddress{
			Street:       strings.TrimSpace(req.DeliveryAddress.Street),
			City:         strings.TrimSpace(req.DeliveryAddress.City),
			ZipCode:      strings.TrimSpace(req.DeliveryAddress.ZipCode),
			Instructions: strings.TrimSpace(req.DeliveryAddress.Instructions),
		},
		ContactNumber:       strings.TrimSpace(req.ContactNumber),
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		PaymentMethod:       paymentMethod,
		PaymentStatus:       models.PaymentStatusPending,
		EstimatedDelivery:   time.Now().UTC().Add(s.deliveryAfter),
		Items:               items,
	}

	// 3. 写入
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.insertOrder(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracing.WithOrderNo(order.OrderNumber))
	s.recordOrder(order.Status)
	logger.Info("order created",
		logger.OrderNo(order.OrderNumber),
		logger.UserID(userID),
		zap.Int("items", len(items)),
		zap.Float64("total_amount", order.TotalAmount),
	)
	return order, nil
}

func (s *OrderService) insertOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	var err error
	for attempt := 0; attempt < maxOrderNoAttempts; attempt++ {
		order.OrderNumber = utils.GenerateOrderNo()
		err = tx.Transaction(func(inner *gorm.DB) error {
			return s.orderRepo.Create(ctx, inner, order)
		})
		if err == nil {
			return nil
		}
		if !repository.IsDuplicateKey(err) {
			break
		}
		order.ID = 0
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = 0
		}
	}
	return errors.ErrDatabaseError.WithError(err)
}

// UpdateStatus 修改订单状态（管理端），送达时记录送达时间
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, req *UpdateStatusRequest) (*models.Order, error) {
	if !models.IsOneOf(req.Status, models.OrderStatuses) {
		return nil, errors.ErrInvalidStatus
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderStatusDelivered {
		fields["delivered_at"] = time.Now().UTC()
	}
	if err := s.orderRepo.UpdateFields(ctx, order.ID, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.recordOrder(req.Status)
	logger.Info("order status updated",
		logger.OrderNo(order.OrderNumber),
		zap.String("from", order.Status),
		zap.String("to", req.Status),
	)
	return s.getOrder(ctx, order.ID)
}

// Cancel 用户取消订单，仅待确认和已确认状态可取消
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64, req *CancelRequest) (*models.Order, error) {
	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, errors.ErrOrderCannotCancel
	}

	reason := strings.TrimSpace(req.CancellationReason)
	updated, err := s.orderRepo.UpdateFieldsIfStatus(ctx, order.ID, models.CancellableOrderStatuses, map[string]interface{}{
		"status":              models.OrderStatusCancelled,
		"cancellation_reason": reason,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !updated {
		return nil, errors.ErrOrderCannotCancel
	}

	s.recordOrder(models.OrderStatusCancelled)
	order.Status = models.OrderStatusCancelled
	order.CancellationReason = reason
	return order, nil
}

// Feedback 已送达订单的评价，重复提交覆盖
func (s *OrderService) Feedback(ctx context.Context, userID, orderID int64, req *FeedbackRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrOrderNotDelivered
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if order.UserID != userID || order.Status != models.OrderStatusDelivered {
		return nil, errors.ErrOrderNotDelivered
	}

	rating := req.Rating
	feedback := strings.TrimSpace(req.Feedback)
	err = s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
		"rating":   rating,
		"feedback": feedback,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	order.Rating = &rating
	order.Feedback = feedback
	return order, nil
}

// Get 获取订单详情，非管理员只能查看自己的订单
func (s *OrderService) Get(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, errors.ErrOrderNotFound
	}
	return order, nil
}

// MyOrders 获取用户订单列表
func (s *OrderService) MyOrders(ctx context.Context, userID int64, status string, page utils.Pagination) ([]*models.Order, int64, error) {
	page.Normalize()
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page.GetOffset(), page.Limit, status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return orders, total, nil
}

// ListAll 获取全部订单（管理端）
func (s *OrderService) ListAll(ctx context.Context, req *ListRequest, page utils.Pagination) ([]*models.Order, int64, error) {
	page.Normalize()
	orders, total, err := s.orderRepo.List(ctx, page.GetOffset(), page.Limit, map[string]interface{}{
		"status":  req.Status,
		"user_id": req.UserID,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return orders, total, nil
}

func (s *OrderService) recordOrder(status string) {
	if s.metrics != nil {
		s.metrics.RecordOrder(status)
	}
}

func (s *OrderService) getOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return order, nil
}

func (s *OrderService) getOwnedOrder(ctx context.Context, userID, id int64) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.ErrOrderNotFound
	}
	return order, nil
}
