package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

type testEnv struct {
	db     *gorm.DB
	orders *OrderService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	return &testEnv{
		db: db,
		orders: NewOrderService(
			db,
			repository.NewOrderRepository(db),
			repository.NewFoodRepository(db),
			45*time.Minute,
			metrics.New("test", metrics.NewRegistry()),
		),
	}
}

func (e *testEnv) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedFood(t *testing.T, name string, price float64, available bool) *models.Food {
	t.Helper()
	food := &models.Food{
		Name:            name,
		Description:     name + " from our kitchen",
		Price:           price,
		Category:        models.FoodCategoryMainCourse,
		IsAvailable:     true,
		PreparationTime: 15,
		SpiceLevel:      models.SpiceLevelMild,
	}
	require.NoError(t, e.db.Create(food).Error)
	if !available {
		require.NoError(t, e.db.Model(food).Update("is_available", false).Error)
	}
	return food
}

func newOrderRequest(items ...ItemInput) *CreateOrderRequest {
	return &CreateOrderRequest{
		Items:           items,
		DeliveryAddress: AddressInput{Street: " 1 Main St ", City: "Springfield", ZipCode: "12345"},
		ContactNumber:   "555-0100",
	}
}

// seedOrder 直接写入指定状态的订单
func (e *testEnv) seedOrder(t *testing.T, userID int64, status string) *models.Order {
	t.Helper()
	food := e.seedFood(t, "Dish "+status, 10, true)
	order, err := e.orders.Create(context.Background(), userID, newOrderRequest(ItemInput{FoodID: food.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", status).Error)
	order.Status = status
	return order
}

func TestOrderService_Create(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	pizza := env.seedFood(t, "Margherita Pizza", 12.99, true)
	juice := env.seedFood(t, "Fresh Orange Juice", 3.99, true)

	before := time.Now().UTC()
	order, err := env.orders.Create(ctx, user.ID, newOrderRequest(
		ItemInput{FoodID: pizza.ID, Quantity: 3, SpecialInstructions: " extra basil "},
		ItemInput{FoodID: juice.ID, Quantity: 2},
	))
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{13}-\d{1,3}$`, order.OrderNumber)
	assert.Equal(t, 46.95, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "1 Main St", order.DeliveryAddress.Street)
	assert.WithinDuration(t, before.Add(45*time.Minute), order.EstimatedDelivery, 5*time.Second)

	got, err := env.orders.Get(ctx, user.ID, false, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Margherita Pizza", got.Items[0].FoodName)
	assert.Equal(t, 12.99, got.Items[0].Price)
	assert.Equal(t, "extra basil", got.Items[0].SpecialInstructions)

	// 菜品改价不影响已下单的快照
	require.NoError(t, env.db.Model(pizza).Update("price", 20).Error)
	got, err = env.orders.Get(ctx, user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.99, got.Items[0].Price)
	assert.Equal(t, 46.95, got.TotalAmount)
}

func TestOrderService_Create_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	pizza := env.seedFood(t, "Margherita Pizza", 12.99, true)
	cake := env.seedFood(t, "Lava Cake", 6.99, false)

	_, err := env.orders.Create(ctx, user.ID, newOrderRequest())
	assert.ErrorIs(t, err, errors.ErrOrderEmpty)

	_, err = env.orders.Create(ctx, user.ID, newOrderRequest(ItemInput{FoodID: pizza.ID, Quantity: 1}, ItemInput{FoodID: 999, Quantity: 1}))
	require.ErrorIs(t, err, errors.ErrFoodNotFound)
	assert.Equal(t, "Food item with ID 999 not found", errors.GetAppError(err).Message)

	_, err = env.orders.Create(ctx, user.ID, newOrderRequest(ItemInput{FoodID: cake.ID, Quantity: 1}))
	require.ErrorIs(t, err, errors.ErrFoodNotAvailable)
	assert.Equal(t, "Food item Lava Cake is not available", errors.GetAppError(err).Message)

	_, err = env.orders.Create(ctx, user.ID, newOrderRequest(ItemInput{FoodID: pizza.ID, Quantity: 0}))
	assert.ErrorIs(t, err, errors.ErrInvalidParams)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.OrderItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	order := env.seedOrder(t, user.ID, models.OrderStatusPending)

	got, err := env.orders.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusOutForDelivery})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, got.Status)
	assert.Nil(t, got.DeliveredAt)

	got, err = env.orders.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	assert.NotNil(t, got.DeliveredAt)
	assert.Len(t, got.Items, 1)

	_, err = env.orders.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)
	_, err = env.orders.UpdateStatus(ctx, 999, &UpdateStatusRequest{Status: models.OrderStatusConfirmed})
	assert.ErrorIs(t, err, errors.ErrOrderNotFound)
}

func TestOrderService_Cancel(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	confirmed := env.seedOrder(t, alice.ID, models.OrderStatusConfirmed)
	preparing := env.seedOrder(t, alice.ID, models.OrderStatusPreparing)

	_, err := env.orders.Cancel(ctx, bob.ID, confirmed.ID, &CancelRequest{})
	assert.ErrorIs(t, err, errors.ErrOrderNotFound)

	_, err = env.orders.Cancel(ctx, alice.ID, preparing.ID, &CancelRequest{})
	assert.ErrorIs(t, err, errors.ErrOrderCannotCancel)

	got, err := env.orders.Cancel(ctx, alice.ID, confirmed.ID, &CancelRequest{CancellationReason: "Ordered twice"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	stored, err := env.orders.Get(ctx, alice.ID, false, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
	assert.Equal(t, "Ordered twice", stored.CancellationReason)
}

func TestOrderService_Feedback(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	pending := env.seedOrder(t, alice.ID, models.OrderStatusPending)
	delivered := env.seedOrder(t, alice.ID, models.OrderStatusDelivered)

	_, err := env.orders.Feedback(ctx, alice.ID, pending.ID, &FeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, errors.ErrOrderNotDelivered)
	_, err = env.orders.Feedback(ctx, bob.ID, delivered.ID, &FeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, errors.ErrOrderNotDelivered)
	_, err = env.orders.Feedback(ctx, alice.ID, 999, &FeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, errors.ErrOrderNotDelivered)

	_, err = env.orders.Feedback(ctx, alice.ID, delivered.ID, &FeedbackRequest{Rating: 2, Feedback: "Cold"})
	require.NoError(t, err)
	_, err = env.orders.Feedback(ctx, alice.ID, delivered.ID, &FeedbackRequest{Rating: 5, Feedback: " Great "})
	require.NoError(t, err)

	stored, err := env.orders.Get(ctx, alice.ID, false, delivered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.Equal(t, "Great", stored.Feedback)
}

func TestOrderService_GetAndLists(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	first := env.seedOrder(t, alice.ID, models.OrderStatusPending)
	env.seedOrder(t, alice.ID, models.OrderStatusDelivered)
	env.seedOrder(t, bob.ID, models.OrderStatusDelivered)

	_, err := env.orders.Get(ctx, bob.ID, false, first.ID)
	assert.ErrorIs(t, err, errors.ErrOrderNotFound)
	_, err = env.orders.Get(ctx, bob.ID, true, first.ID)
	assert.NoError(t, err)

	mine, total, err := env.orders.MyOrders(ctx, alice.ID, "", utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 2)
	assert.NotEmpty(t, mine[0].Items)

	_, total, err = env.orders.MyOrders(ctx, alice.ID, models.OrderStatusDelivered, utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	all, total, err := env.orders.ListAll(ctx, &ListRequest{Status: models.OrderStatusDelivered}, utils.Pagination{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 1)
}
