package hotel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/foodstay-backend/internal/common/cache"
	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
)

func newBookingRequest(roomID int64, checkIn, checkOut string) *CreateBookingRequest {
	return &CreateBookingRequest{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   GuestsInput{Adults: 2},
	}
}

func countBookings(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Booking{}).Count(&n).Error)
	return n
}

func TestBookingService_Create(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	booking, err := env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-15", "2024-12-18"))
	require.NoError(t, err)

	assert.Regexp(t, `^BKG-\d{13}-\d{1,3}$`, booking.BookingNumber)
	assert.Equal(t, 597.0, booking.TotalAmount)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCash, booking.PaymentMethod)
	require.NotNil(t, booking.Room)
	assert.Equal(t, "301", booking.Room.RoomNumber)

	// 入住人信息取自用户资料
	assert.Equal(t, "Test", booking.GuestDetails.FirstName)
	assert.Equal(t, "john@example.com", booking.GuestDetails.Email)
	assert.Equal(t, "555-0100", booking.GuestDetails.Phone)

	// 锁已释放
	assert.False(t, env.redis.Exists(cache.RoomLockKey(room.ID)))
}

func TestBookingService_Create_PartialDayRoundsUp(t *testing.T) {
	env := setupTestEnv(t)
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "101", models.RoomTypeSingle, 89, 2)

	booking, err := env.bookings.Create(context.Background(), user.ID,
		newBookingRequest(room.ID, "2024-12-15T14:00:00Z", "2024-12-17T11:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 178.0, booking.TotalAmount)
}

func TestBookingService_Create_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "101", models.RoomTypeSingle, 89, 1)
	closed := env.seedRoom(t, "102", models.RoomTypeSingle, 89, 2)
	require.NoError(t, env.db.Model(closed).Update("is_available", false).Error)

	tests := []struct {
		name    string
		req     *CreateBookingRequest
		wantErr error
	}{
		{"missing dates", newBookingRequest(room.ID, "", "2024-12-18"), errors.ErrDateRangeRequired},
		{"reversed dates", newBookingRequest(room.ID, "2024-12-18", "2024-12-15"), errors.ErrInvalidDateRange},
		{"unknown room", newBookingRequest(999, "2024-12-15", "2024-12-18"), errors.ErrRoomNotFound},
		{"room closed", newBookingRequest(closed.ID, "2024-12-15", "2024-12-18"), errors.ErrRoomNotAvailable},
		{"too many guests", newBookingRequest(room.ID, "2024-12-15", "2024-12-18"), errors.ErrGuestsExceedRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bookings.Create(ctx, user.ID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, countBookings(t, env))
}

func TestBookingService_Create_Conflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	first, err := env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-15", "2024-12-18"))
	require.NoError(t, err)

	// 待确认的预订不占房
	_, err = env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-17", "2024-12-19"))
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Booking{}).Where("id = ?", first.ID).Update("status", models.BookingStatusConfirmed).Error)

	_, err = env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-17", "2024-12-19"))
	assert.ErrorIs(t, err, errors.ErrBookingConflict)
	assert.Equal(t, int64(2), countBookings(t, env))

	got, err := env.bookings.Get(ctx, user.ID, false, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	assert.Equal(t, 597.0, got.TotalAmount)
}

func TestBookingService_Create_RoomLocked(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	require.NoError(t, env.rdb.Set(ctx, cache.RoomLockKey(room.ID), "other", time.Minute).Err())

	_, err := env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-15", "2024-12-18"))
	assert.ErrorIs(t, err, errors.ErrRoomLocked)
	assert.Zero(t, countBookings(t, env))
}

func TestBookingService_Create_RedisDown(t *testing.T) {
	env := setupTestEnv(t)
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	env.redis.Close()

	_, err := env.bookings.Create(context.Background(), user.ID, newBookingRequest(room.ID, "2024-12-15", "2024-12-18"))
	assert.ErrorIs(t, err, errors.ErrCacheError)
	assert.Zero(t, countBookings(t, env))
}

func TestBookingService_Create_ConcurrentActivationKeepsNoOverlap(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	var ids []int64
	for i := 0; i < 4; i++ {
		b, err := env.bookings.Create(ctx, user.ID, newBookingRequest(room.ID, "2024-12-15", "2024-12-18"))
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := env.bookings.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.BookingStatusConfirmed})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var confirmed int
	for err := range results {
		if err == nil {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)

	var active int64
	require.NoError(t, env.db.Model(&models.Booking{}).Where("status IN ?", models.ActiveBookingStatuses).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestBookingService_GuestIDEncrypted(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	req := newBookingRequest(room.ID, "2024-12-15", "2024-12-18")
	req.GuestDetails = &GuestDetailsInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "Jane@Example.com",
		IDNumber:  "P1234567",
		IDType:    models.IDTypePassport,
	}
	booking, err := env.bookings.Create(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "****4567", booking.GuestDetails.IDNumber)
	assert.Equal(t, "jane@example.com", booking.GuestDetails.Email)

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, booking.ID).Error)
	assert.NotEmpty(t, stored.GuestDetails.IDNumberEncrypted)
	assert.NotContains(t, stored.GuestDetails.IDNumberEncrypted, "P1234567")

	got, err := env.bookings.Get(ctx, user.ID, false, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "****4567", got.GuestDetails.IDNumber)
}

func TestBookingService_UpdateStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	b := env.seedBooking(t, user.ID, room.ID, date(15), date(18), models.BookingStatusPending)

	got, err := env.bookings.UpdateStatus(ctx, b.ID, &UpdateStatusRequest{Status: models.BookingStatusCheckedIn})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, got.Status)
	assert.NotNil(t, got.CheckedInAt)
	assert.Nil(t, got.CheckedOutAt)
	require.NotNil(t, got.User)

	got, err = env.bookings.UpdateStatus(ctx, b.ID, &UpdateStatusRequest{Status: models.BookingStatusCheckedOut})
	require.NoError(t, err)
	assert.NotNil(t, got.CheckedOutAt)

	// 管理端允许任意状态切换
	got, err = env.bookings.UpdateStatus(ctx, b.ID, &UpdateStatusRequest{Status: models.BookingStatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status)

	_, err = env.bookings.UpdateStatus(ctx, b.ID, &UpdateStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	_, err = env.bookings.UpdateStatus(ctx, 999, &UpdateStatusRequest{Status: models.BookingStatusConfirmed})
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)
}

func TestBookingService_UpdateStatus_ActivationConflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	env.seedBooking(t, user.ID, room.ID, date(15), date(18), models.BookingStatusConfirmed)
	pending := env.seedBooking(t, user.ID, room.ID, date(17), date(19), models.BookingStatusPending)

	_, err := env.bookings.UpdateStatus(ctx, pending.ID, &UpdateStatusRequest{Status: models.BookingStatusConfirmed})
	assert.ErrorIs(t, err, errors.ErrBookingConflict)

	// 不占房的状态不受影响
	got, err := env.bookings.UpdateStatus(ctx, pending.ID, &UpdateStatusRequest{Status: models.BookingStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)
}

func TestBookingService_Cancel(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	jane := env.seedUser(t, "jane")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	pending := env.seedBooking(t, john.ID, room.ID, date(15), date(18), models.BookingStatusPending)
	done := env.seedBooking(t, john.ID, room.ID, date(1), date(3), models.BookingStatusCheckedOut)

	_, err := env.bookings.Cancel(ctx, jane.ID, pending.ID, &CancelRequest{})
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)

	_, err = env.bookings.Cancel(ctx, john.ID, done.ID, &CancelRequest{})
	assert.ErrorIs(t, err, errors.ErrBookingCannotCancel)

	got, err := env.bookings.Cancel(ctx, john.ID, pending.ID, &CancelRequest{CancellationReason: "Change of plans"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, pending.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)
	assert.Equal(t, "Change of plans", stored.CancellationReason)

	_, err = env.bookings.Cancel(ctx, john.ID, pending.ID, &CancelRequest{})
	assert.ErrorIs(t, err, errors.ErrBookingCannotCancel)
}

func TestBookingService_Feedback(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	jane := env.seedUser(t, "jane")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	confirmed := env.seedBooking(t, john.ID, room.ID, date(15), date(18), models.BookingStatusConfirmed)
	done := env.seedBooking(t, john.ID, room.ID, date(1), date(3), models.BookingStatusCheckedOut)

	_, err := env.bookings.Feedback(ctx, john.ID, confirmed.ID, &FeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, errors.ErrBookingNotCompleted)
	_, err = env.bookings.Feedback(ctx, jane.ID, done.ID, &FeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, errors.ErrBookingNotCompleted)

	_, err = env.bookings.Feedback(ctx, john.ID, done.ID, &FeedbackRequest{Rating: 3, Feedback: "Okay"})
	require.NoError(t, err)
	got, err := env.bookings.Feedback(ctx, john.ID, done.ID, &FeedbackRequest{Rating: 5, Feedback: "Lovely stay"})
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)

	stored, err := env.bookings.Get(ctx, john.ID, false, done.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.Equal(t, "Lovely stay", stored.Feedback)
}

func TestBookingService_GetAndLists(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	jane := env.seedUser(t, "jane")
	suite := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	single := env.seedRoom(t, "101", models.RoomTypeSingle, 89, 1)

	b1 := env.seedBooking(t, john.ID, suite.ID, date(1), date(3), models.BookingStatusCheckedOut)
	env.seedBooking(t, john.ID, single.ID, date(5), date(6), models.BookingStatusPending)
	env.seedBooking(t, jane.ID, suite.ID, date(10), date(12), models.BookingStatusConfirmed)

	_, err := env.bookings.Get(ctx, jane.ID, false, b1.ID)
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)
	got, err := env.bookings.Get(ctx, jane.ID, true, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, b1.ID, got.ID)

	mine, total, err := env.bookings.MyBookings(ctx, john.ID, "", utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 2)
	assert.NotNil(t, mine[0].Room)

	_, total, err = env.bookings.MyBookings(ctx, john.ID, models.BookingStatusPending, utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	all, total, err := env.bookings.ListAll(ctx, &ListRequest{RoomID: suite.ID}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	_, total, err = env.bookings.ListAll(ctx, &ListRequest{Status: models.BookingStatusConfirmed, UserID: jane.ID}, utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
