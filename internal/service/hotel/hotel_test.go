package hotel

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/crypto"
	"github.com/dumeirei/foodstay-backend/internal/common/metrics"
	"github.com/dumeirei/foodstay-backend/internal/common/qrcode"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

const testAESKey = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	db       *gorm.DB
	redis    *miniredis.Miniredis
	rdb      *redis.Client
	checker  *AvailabilityChecker
	bookings *BookingService
	docs     *DocumentService
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

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	aes, err := crypto.NewAES(testAESKey)
	require.NoError(t, err)

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookings := NewBookingService(
		db, bookingRepo, roomRepo, repository.NewUserRepository(db),
		cache.NewLocker(rdb, 10*time.Second, 200*time.Millisecond),
		aes,
		metrics.New("test", metrics.NewRegistry()),
	)

	return &testEnv{
		db:       db,
		redis:    mr,
		rdb:      rdb,
		checker:  NewAvailabilityChecker(bookingRepo, roomRepo),
		bookings: bookings,
		docs:     NewDocumentService(bookings, bookingRepo, qrcode.NewGenerator()),
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
		Profile:      models.UserProfile{FirstName: "Test", LastName: username, Phone: "555-0100"},
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedRoom(t *testing.T, number, roomType string, price float64, capacity int) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomNumber:  number,
		Type:        roomType,
		Price:       price,
		Capacity:    capacity,
		IsAvailable: true,
		View:        models.RoomViewCity,
	}
	require.NoError(t, e.db.Create(room).Error)
	return room
}

// seedBooking 直接写入指定状态的预订
func (e *testEnv) seedBooking(t *testing.T, userID, roomID int64, checkIn, checkOut time.Time, status string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		BookingNumber: "BKG-" + checkIn.Format("20060102") + "-" + status + "-" + time.Now().Format("150405.000000000"),
		UserID:        userID,
		RoomID:        roomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        models.Guests{Adults: 1},
		TotalAmount:   100,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, e.db.Omit("Room", "User").Create(booking).Error)
	return booking
}

// date 2024 年 12 月的某天 UTC 零点
func date(day int) time.Time {
	return time.Date(2024, 12, day, 0, 0, 0, 0, time.UTC)
}
