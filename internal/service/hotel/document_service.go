package hotel

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/qrcode"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

const (
	exportSheet    = "Bookings"
	exportDateFmt  = "2006-01-02"
	receiptTimeFmt = "2006-01-02 15:04"
	qrImageName    = "booking-qr"
)

// exportHeaders 导出表头
var exportHeaders = []string{
	"Booking Number", "Room", "Room Type", "Guest", "Email", "Check-in", "Check-out",
	"Nights", "Adults", "Children", "Total Amount", "Status", "Payment Status", "Payment Method", "Created At",
}

// DocumentService 预订单据服务：入住二维码、PDF 收据、Excel 导出
type DocumentService struct {
	bookings    *BookingService
	bookingRepo *repository.BookingRepository
	qr          *qrcode.Generator
}

// NewDocumentService 创建单据服务
func NewDocumentService(bookings *BookingService, bookingRepo *repository.BookingRepository, qr *qrcode.Generator) *DocumentService {
	return &DocumentService{
		bookings:    bookings,
		bookingRepo: bookingRepo,
		qr:          qr,
	}
}

// ExportRequest 导出请求，日期按整天计算
type ExportRequest struct {
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
	Status string `form:"status" binding:"omitempty,booking_status"`
}

// QRCode 生成前台核验用的预订二维码 PNG
func (s *DocumentService) QRCode(ctx context.Context, userID int64, isAdmin bool, bookingID int64) ([]byte, *models.Booking, error) {
	booking, err := s.bookings.Get(ctx, userID, isAdmin, bookingID)
	if err != nil {
		return nil, nil, err
	}
	png, err := s.qr.GeneratePNG(qrcode.BookingContent(booking.BookingNumber))
	if err != nil {
		return nil, nil, errors.ErrInternalError.WithError(err)
	}
	return png, booking, nil
}

// Lookup 根据二维码内容或预订号查找预订（前台）
func (s *DocumentService) Lookup(ctx context.Context, code string) (*models.Booking, error) {
	number, ok := qrcode.ParseBookingContent(code)
	if !ok {
		number = code
	}
	booking, err := s.bookingRepo.GetByBookingNumber(ctx, number)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.bookings.present(booking)
	return booking, nil
}

// Receipt 生成预订 PDF 收据
func (s *DocumentService) Receipt(ctx context.Context, userID int64, isAdmin bool, bookingID int64) ([]byte, *models.Booking, error) {
	booking, err := s.bookings.Get(ctx, userID, isAdmin, bookingID)
	if err != nil {
		return nil, nil, err
	}
	png, err := s.qr.GeneratePNG(qrcode.BookingContent(booking.BookingNumber))
	if err != nil {
		return nil, nil, errors.ErrInternalError.WithError(err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt "+booking.BookingNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.RegisterImageOptionsReader(qrImageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(qrImageName, 160, 10, 35, 35, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range receiptLines(booking) {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total: $%.2f", booking.TotalAmount))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present the QR code at the front desk when checking in.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, errors.ErrInternalError.WithError(err)
	}
	return buf.Bytes(), booking, nil
}

func receiptLines(b *models.Booking) []string {
	guest := fullName(b.GuestDetails.FirstName, b.GuestDetails.LastName)
	room := "-"
	if b.Room != nil {
		room = fmt.Sprintf("%s (%s)", b.Room.RoomNumber, b.Room.Type)
	}
	lines := []string{
		"Booking Number : " + b.BookingNumber,
		"Guest          : " + orDash(guest),
		"Email          : " + orDash(b.GuestDetails.Email),
		"Room           : " + room,
		"Check-in       : " + b.CheckIn.UTC().Format(receiptTimeFmt),
		"Check-out      : " + b.CheckOut.UTC().Format(receiptTimeFmt),
		fmt.Sprintf("Nights         : %d", b.Nights()),
		fmt.Sprintf("Guests         : %d adults, %d children", b.Guests.Adults, b.Guests.Children),
		"Status         : " + b.Status,
		"Payment        : " + b.PaymentStatus + " / " + orDash(b.PaymentMethod),
	}
	if b.GuestDetails.IDNumber != "" {
		lines = append(lines, "ID Number      : "+b.GuestDetails.IDNumber)
	}
	return lines
}

// Export 导出入住日期落在 [from, to] 内的预订
func (s *DocumentService) Export(ctx context.Context, req *ExportRequest) ([]byte, error) {
	from, ok := utils.ParseTime(req.From)
	if !ok {
		return nil, errors.ErrInvalidParams.WithMessagef("Invalid date: %s", req.From)
	}
	to, ok := utils.ParseTime(req.To)
	if !ok {
		return nil, errors.ErrInvalidParams.WithMessagef("Invalid date: %s", req.To)
	}
	if to.Before(from) {
		return nil, errors.ErrInvalidDateRange
	}
	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListByCheckInRange(ctx, start, end, req.Status)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		s.bookings.present(b)
		row := i + 2
		for col, v := range exportRow(b) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, errors.ErrInternalError.WithError(err)
			}
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 24)
	_ = f.SetColWidth(exportSheet, "B", "O", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return buf.Bytes(), nil
}

func exportRow(b *models.Booking) []interface{} {
	roomNumber, roomType := "", ""
	if b.Room != nil {
		roomNumber, roomType = b.Room.RoomNumber, b.Room.Type
	}
	return []interface{}{
		b.BookingNumber,
		roomNumber,
		roomType,
		fullName(b.GuestDetails.FirstName, b.GuestDetails.LastName),
		b.GuestDetails.Email,
		b.CheckIn.UTC().Format(exportDateFmt),
		b.CheckOut.UTC().Format(exportDateFmt),
		b.Nights(),
		b.Guests.Adults,
		b.Guests.Children,
		b.TotalAmount,
		b.Status,
		b.PaymentStatus,
		b.PaymentMethod,
		b.CreatedAt.UTC().Format(receiptTimeFmt),
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func fullName(first, last string) string {
	return models.UserProfile{FirstName: first, LastName: last}.FullName()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
