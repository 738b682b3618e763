package hotel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/qrcode"
	"github.com/dumeirei/foodstay-backend/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestDocumentService_QRCode(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	jane := env.seedUser(t, "jane")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	b := env.seedBooking(t, john.ID, room.ID, date(15), date(18), models.BookingStatusConfirmed)

	png, booking, err := env.docs.QRCode(ctx, john.ID, false, b.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader))
	assert.Equal(t, b.BookingNumber, booking.BookingNumber)

	_, _, err = env.docs.QRCode(ctx, jane.ID, false, b.ID)
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)

	_, _, err = env.docs.QRCode(ctx, jane.ID, true, b.ID)
	assert.NoError(t, err)
}

func TestDocumentService_Lookup(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)
	b := env.seedBooking(t, john.ID, room.ID, date(15), date(18), models.BookingStatusConfirmed)

	got, err := env.docs.Lookup(ctx, qrcode.BookingContent(b.BookingNumber))
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	require.NotNil(t, got.Room)
	assert.Equal(t, "301", got.Room.RoomNumber)

	got, err = env.docs.Lookup(ctx, b.BookingNumber)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = env.docs.Lookup(ctx, "BKG-0-0")
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)
}

func TestDocumentService_Receipt(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	req := newBookingRequest(room.ID, "2024-12-15", "2024-12-18")
	req.GuestDetails = &GuestDetailsInput{FirstName: "Jane", LastName: "Doe", IDNumber: "P1234567", IDType: models.IDTypePassport}
	b, err := env.bookings.Create(ctx, john.ID, req)
	require.NoError(t, err)

	pdf, booking, err := env.docs.Receipt(ctx, john.ID, false, b.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "****4567", booking.GuestDetails.IDNumber)

	lines := receiptLines(booking)
	assert.Contains(t, lines, "Guest          : Jane Doe")
	assert.Contains(t, lines, "Nights         : 3")
	assert.Contains(t, lines, "ID Number      : ****4567")
}

func TestDocumentService_Export(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	john := env.seedUser(t, "john")
	room := env.seedRoom(t, "301", models.RoomTypeSuite, 199, 3)

	late := env.seedBooking(t, john.ID, room.ID, date(20), date(22), models.BookingStatusPending)
	early := env.seedBooking(t, john.ID, room.ID, date(10), date(12), models.BookingStatusConfirmed)
	env.seedBooking(t, john.ID, room.ID, date(25), date(26), models.BookingStatusConfirmed)

	data, err := env.docs.Export(ctx, &ExportRequest{From: "2024-12-10", To: "2024-12-20"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, early.BookingNumber, rows[1][0])
	assert.Equal(t, "301", rows[1][1])
	assert.Equal(t, "2024-12-10", rows[1][5])
	assert.Equal(t, late.BookingNumber, rows[2][0])

	data, err = env.docs.Export(ctx, &ExportRequest{From: "2024-12-01", To: "2024-12-31", Status: models.BookingStatusPending})
	require.NoError(t, err)
	f2, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDocumentService_Export_InvalidRange(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.docs.Export(ctx, &ExportRequest{From: "2024-12-20", To: "2024-12-10"})
	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)

	_, err = env.docs.Export(ctx, &ExportRequest{From: "yesterday", To: "2024-12-10"})
	assert.ErrorIs(t, err, errors.ErrInvalidParams)
}
