package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/config"
	"github.com/dumeirei/foodstay-backend/internal/common/crypto"
	"github.com/dumeirei/foodstay-backend/internal/common/jwt"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/foodstay-backend/internal/common/middleware"
	"github.com/dumeirei/foodstay-backend/internal/common/qrcode"
	"github.com/dumeirei/foodstay-backend/internal/common/response"
	adminHandler "github.com/dumeirei/foodstay-backend/internal/handler/admin"
	authHandler "github.com/dumeirei/foodstay-backend/internal/handler/auth"
	bookingHandler "github.com/dumeirei/foodstay-backend/internal/handler/booking"
	foodHandler "github.com/dumeirei/foodstay-backend/internal/handler/food"
	orderHandler "github.com/dumeirei/foodstay-backend/internal/handler/order"
	roomHandler "github.com/dumeirei/foodstay-backend/internal/handler/room"
	uploadHandler "github.com/dumeirei/foodstay-backend/internal/handler/upload"
	"github.com/dumeirei/foodstay-backend/internal/middleware"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
	adminService "github.com/dumeirei/foodstay-backend/internal/service/admin"
	authService "github.com/dumeirei/foodstay-backend/internal/service/auth"
	foodService "github.com/dumeirei/foodstay-backend/internal/service/food"
	hotelService "github.com/dumeirei/foodstay-backend/internal/service/hotel"
	orderService "github.com/dumeirei/foodstay-backend/internal/service/order"
	roomService "github.com/dumeirei/foodstay-backend/internal/service/room"
	uploadService "github.com/dumeirei/foodstay-backend/internal/service/upload"
	"github.com/dumeirei/foodstay-backend/pkg/oss"
)

// 不创建追踪 span 的探活路径
var healthCheckPaths = []string{"/health", "/ping", "/ready", "/api/health"}

// setupRouter 装配依赖并注册路由，m 为空时不暴露监控指标
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	m *metrics.Metrics,
) error {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:     cfg.JWT.Secret,
		ExpireTime: cfg.JWT.AccessTokenDuration(),
		Issuer:     cfg.JWT.Issuer,
	})

	aes, err := crypto.NewAES(cfg.Crypto.AESKey)
	if err != nil {
		return fmt.Errorf("init aes: %w", err)
	}

	uploader, err := oss.New(&cfg.OSS)
	if err != nil {
		return fmt.Errorf("init uploader: %w", err)
	}

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	operationLogRepo := repository.NewOperationLogRepository(db)

	// 初始化缓存与锁
	catalogCache := cache.New(redisClient)
	roomLocker := cache.NewLocker(redisClient,
		time.Duration(cfg.Business.BookingLockTTL)*time.Second,
		time.Duration(cfg.Business.BookingLockWait)*time.Millisecond,
	)

	// 初始化服务
	authSvc := authService.NewAuthService(userRepo, jwtManager, cfg.Crypto.BcryptCost)
	foodSvc := foodService.NewFoodService(foodRepo, catalogCache, cfg.Business.CatalogCacheDuration(), m)
	reviewSvc := foodService.NewReviewService(foodRepo, reviewRepo)
	checker := hotelService.NewAvailabilityChecker(bookingRepo, roomRepo)
	roomSvc := roomService.NewRoomService(roomRepo, bookingRepo, checker, catalogCache, cfg.Business.CatalogCacheDuration(), m)
	bookingSvc := hotelService.NewBookingService(db, bookingRepo, roomRepo, userRepo, roomLocker, aes, m)
	documentSvc := hotelService.NewDocumentService(bookingSvc, bookingRepo, qrcode.NewGenerator(
		qrcode.WithSize(cfg.Business.QRCodeSize),
		qrcode.WithRecoveryLevel(qrcode.High),
	))
	orderSvc := orderService.NewOrderService(db, orderRepo, foodRepo, cfg.Business.OrderDeliveryDuration(), m)
	uploadSvc := uploadService.NewUploadService(uploader, int64(cfg.Business.MaxUploadImageSizeMB)<<20)
	operationLogSvc := adminService.NewOperationLogService(operationLogRepo)

	// 初始化处理器
	authH := authHandler.NewHandler(authSvc)
	foodH := foodHandler.NewHandler(foodSvc, reviewSvc)
	roomH := roomHandler.NewHandler(roomSvc)
	bookingH := bookingHandler.NewHandler(bookingSvc, documentSvc, checker)
	orderH := orderHandler.NewHandler(orderSvc)
	uploadH := uploadHandler.NewHandler(uploadSvc)
	operationLogH := adminHandler.NewOperationLogHandler(operationLogSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   healthCheckPaths,
		}))
	}
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(middleware.AccessLog(logger))

	// 健康检查（不需要认证）
	r.GET("/", rootHandler)
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))
	if m != nil {
		r.GET(cfg.Metrics.Path, m.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 本地存储的图片
	if local, ok := uploader.(*oss.LocalUploader); ok {
		r.Static("/uploads", local.Dir())
	}

	userAuth := middleware.UserAuth(jwtManager, userRepo)
	adminAuth := middleware.AdminAuth(jwtManager, userRepo)
	operationLog := commonMiddleware.NewOperationLogger(operationLogRepo).Log()

	api := r.Group("/api")
	api.Use(middleware.RequestSizeLimiter(int64(cfg.Business.MaxUploadImageSizeMB+1) << 20))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.GlobalRateLimit(redisClient, cfg.RateLimit.GlobalLimit, time.Minute))
	}
	api.GET("/health", apiHealthHandler)

	// 认证
	auth := api.Group("/auth")
	{
		var authLimit []gin.HandlerFunc
		if cfg.RateLimit.Enabled {
			authLimit = append(authLimit, middleware.IPRateLimit(redisClient, "auth",
				cfg.RateLimit.AuthLimit, time.Duration(cfg.RateLimit.AuthWindow)*time.Second))
		}
		auth.POST("/register", append(authLimit, authH.Register)...)
		auth.POST("/login", append(authLimit, authH.Login)...)

		auth.GET("/me", userAuth, authH.Me)
		auth.PUT("/profile", userAuth, authH.UpdateProfile)
		auth.PUT("/change-password", userAuth, authH.ChangePassword)
	}

	// 菜品
	foods := api.Group("/foods")
	{
		foods.GET("", foodH.List)
		foods.GET("/categories", foodH.Categories)
		foods.GET("/:id", foodH.Get)
		foods.GET("/:id/reviews", foodH.ListReviews)
		foods.POST("/:id/reviews", userAuth, foodH.AddReview)

		foods.POST("", adminAuth, operationLog, foodH.Create)
		foods.PUT("/:id", adminAuth, operationLog, foodH.Update)
		foods.DELETE("/:id", adminAuth, operationLog, foodH.Delete)

		if cfg.Business.SeedEnabled {
			foods.POST("/seed", foodH.Seed)
		}
	}

	// 房间
	rooms := api.Group("/rooms")
	{
		rooms.GET("", roomH.List)
		rooms.GET("/types", roomH.Types)
		rooms.GET("/:id", roomH.Get)
		rooms.GET("/:id/availability", roomH.CheckAvailability)

		rooms.POST("", adminAuth, operationLog, roomH.Create)
		rooms.PUT("/:id", adminAuth, operationLog, roomH.Update)
		rooms.DELETE("/:id", adminAuth, operationLog, roomH.Delete)

		if cfg.Business.SeedEnabled {
			rooms.POST("/seed", roomH.Seed)
		}
	}

	// 预订
	bookings := api.Group("/bookings")
	{
		bookings.GET("/availability", bookingH.Availability)

		bookings.POST("", userAuth, bookingH.Create)
		bookings.GET("/my-bookings", userAuth, bookingH.MyBookings)
		bookings.GET("/:id", userAuth, bookingH.Get)
		bookings.GET("/:id/qrcode", userAuth, bookingH.QRCode)
		bookings.GET("/:id/receipt", userAuth, bookingH.Receipt)
		bookings.PUT("/:id/cancel", userAuth, bookingH.Cancel)
		bookings.PUT("/:id/feedback", userAuth, bookingH.Feedback)

		bookings.GET("", adminAuth, bookingH.ListAll)
		bookings.GET("/export", adminAuth, bookingH.Export)
		bookings.GET("/lookup", adminAuth, bookingH.Lookup)
		bookings.PUT("/:id/status", adminAuth, operationLog, bookingH.UpdateStatus)
	}

	// 订单
	orders := api.Group("/orders")
	{
		orders.POST("", userAuth, orderH.Create)
		orders.GET("/my-orders", userAuth, orderH.MyOrders)
		orders.GET("/:id", userAuth, orderH.Get)
		orders.PUT("/:id/cancel", userAuth, orderH.Cancel)
		orders.PUT("/:id/feedback", userAuth, orderH.Feedback)

		orders.GET("", adminAuth, orderH.ListAll)
		orders.PUT("/:id/status", adminAuth, operationLog, orderH.UpdateStatus)
	}

	// 上传
	api.POST("/uploads/image", adminAuth, operationLog, uploadH.UploadImage)

	// 管理端审计
	admin := api.Group("/admin", userAuth, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/operation-logs", operationLogH.List)
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, fmt.Sprintf("Route %s not found", c.Request.URL.Path))
	})

	return nil
}
