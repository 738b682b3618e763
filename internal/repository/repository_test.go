package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/foodstay-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRoom(t *testing.T, db *gorm.DB, number, roomType string, price float64, capacity int) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomNumber:  number,
		Type:        roomType,
		Price:       price,
		Capacity:    capacity,
		IsAvailable: true,
		View:        "city",
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func seedBooking(t *testing.T, db *gorm.DB, userID, roomID int64, checkIn, checkOut time.Time, status string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		BookingNumber: fmt.Sprintf("BKG-%d-%d", time.Now().UnixNano(), roomID),
		UserID:        userID,
		RoomID:        roomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        models.Guests{Adults: 1},
		TotalAmount:   100,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Omit("Room", "User").Create(booking).Error)
	return booking
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
}

func TestIsDuplicateKey_SQLiteUnique(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")

	err := NewUserRepository(db).Create(context.Background(), &models.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestSortClause(t *testing.T) {
	cols := map[string]string{"price": "price", "createdAt": "created_at"}
	assert.Equal(t, "price ASC, id ASC", sortClause(cols, "price", "createdAt", "asc", "desc"))
	assert.Equal(t, "created_at DESC, id DESC", sortClause(cols, "drop table", "createdAt", "", "desc"))
	assert.Equal(t, "created_at ASC, id ASC", sortClause(cols, "", "createdAt", "ASC", "desc"))
	assert.Equal(t, "price DESC, id DESC", sortClause(cols, "price", "createdAt", "sideways", "desc"))
}
