package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Rating 评分汇总
type Rating struct {
	Average float64 `gorm:"type:double precision;not null;default:0" json:"average"`
	Count   int     `gorm:"not null;default:0" json:"count"`
}

// Room 房间模型
type Room struct {
	ID              int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomNumber      string                      `gorm:"type:varchar(20);uniqueIndex;not null" json:"roomNumber"`
	Type            string                      `gorm:"type:varchar(20);not null;index:idx_rooms_type_available,priority:1" json:"type"`
	Price           float64                     `gorm:"type:decimal(10,2);not null;index" json:"price"`
	Capacity        int                         `gorm:"not null" json:"capacity"`
	Size            string                      `gorm:"type:varchar(50)" json:"size,omitempty"`
	Amenities       datatypes.JSONSlice[string] `json:"amenities"`
	Features        datatypes.JSONSlice[string] `json:"features"`
	Image           string                      `gorm:"type:varchar(500)" json:"image,omitempty"`
	Description     string                      `gorm:"type:text" json:"description,omitempty"`
	IsAvailable     bool                        `gorm:"not null;index:idx_rooms_type_available,priority:2" json:"isAvailable"`
	BedType         string                      `gorm:"type:varchar(20)" json:"bedType,omitempty"`
	View            string                      `gorm:"type:varchar(20)" json:"view,omitempty"`
	Smoking         bool                        `gorm:"not null" json:"smoking"`
	Wifi            bool                        `gorm:"not null" json:"wifi"`
	AirConditioning bool                        `gorm:"not null" json:"airConditioning"`
	Television      bool                        `gorm:"not null" json:"television"`
	Minibar         bool                        `gorm:"not null" json:"minibar"`
	RoomService     bool                        `gorm:"not null" json:"roomService"`
	Rating          Rating                      `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
	CreatedBy       *int64                      `json:"createdBy,omitempty"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// Booking 预订模型
type Booking struct {
	ID                 int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNumber      string       `gorm:"type:varchar(40);uniqueIndex;not null" json:"bookingNumber"`
	UserID             int64        `gorm:"not null;index:idx_bookings_user_created,priority:1" json:"userId"`
	RoomID             int64        `gorm:"not null;index:idx_bookings_room_dates,priority:1" json:"roomId"`
	CheckIn            time.Time    `gorm:"not null;index:idx_bookings_room_dates,priority:2" json:"checkIn"`
	CheckOut           time.Time    `gorm:"not null;index:idx_bookings_room_dates,priority:3" json:"checkOut"`
	Guests             Guests       `gorm:"embedded;embeddedPrefix:guests_" json:"guests"`
	TotalAmount        float64      `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status             string       `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus      string       `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	PaymentMethod      string       `gorm:"type:varchar(20)" json:"paymentMethod,omitempty"`
	SpecialRequests    string       `gorm:"type:varchar(500)" json:"specialRequests,omitempty"`
	GuestDetails       GuestDetails `gorm:"embedded;embeddedPrefix:guest_" json:"guestDetails"`
	RoomService        bool         `gorm:"not null" json:"roomService"`
	BreakfastIncluded  bool         `gorm:"not null" json:"breakfastIncluded"`
	ParkingRequired    bool         `gorm:"not null" json:"parkingRequired"`
	CheckedInAt        *time.Time   `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time   `json:"checkedOutAt,omitempty"`
	CancellationReason string       `gorm:"type:varchar(500)" json:"cancellationReason,omitempty"`
	Rating             *int         `json:"rating,omitempty"`
	Feedback           string       `gorm:"type:varchar(1000)" json:"feedback,omitempty"`
	CreatedAt          time.Time    `gorm:"autoCreateTime;index:idx_bookings_user_created,priority:2" json:"createdAt"`
	UpdatedAt          time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`

	// 关联
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// Guests 入住人数
type Guests struct {
	Adults   int `gorm:"not null" json:"adults"`
	Children int `gorm:"not null;default:0" json:"children"`
}

// Total 总人数
func (g Guests) Total() int {
	return g.Adults + g.Children
}

// GuestDetails 入住人信息，证件号加密存储
type GuestDetails struct {
	FirstName         string `gorm:"type:varchar(50)" json:"firstName,omitempty"`
	LastName          string `gorm:"type:varchar(50)" json:"lastName,omitempty"`
	Email             string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone             string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	IDType            string `gorm:"type:varchar(20)" json:"idType,omitempty"`
	IDNumberEncrypted string `gorm:"type:varchar(512)" json:"-"`
	IDNumber          string `gorm:"-" json:"idNumber,omitempty"` // 仅用于出入参，对外输出为脱敏值
}

// Nights 计算入住晚数，不足一天按一晚计
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Nights 本预订的晚数
func (b *Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// CanCancel 是否可取消
func (b *Booking) CanCancel() bool {
	return IsOneOf(b.Status, CancellableBookingStatuses)
}
