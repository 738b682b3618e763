package models

// 菜品分类
const (
	FoodCategoryAppetizer     = "appetizer"
	FoodCategoryMainCourse    = "main-course"
	FoodCategoryDessert       = "dessert"
	FoodCategoryBeverage      = "beverage"
	FoodCategoryVegetarian    = "vegetarian"
	FoodCategoryNonVegetarian = "non-vegetarian"
)

// 辣度
const (
	SpiceLevelMild     = "mild"
	SpiceLevelMedium   = "medium"
	SpiceLevelHot      = "hot"
	SpiceLevelExtraHot = "extra-hot"
)

// 房间类型
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"
	RoomTypeDeluxe = "deluxe"
)

// 床型
const (
	BedTypeSingle = "single"
	BedTypeDouble = "double"
	BedTypeQueen  = "queen"
	BedTypeKing   = "king"
	BedTypeTwin   = "twin"
)

// 景观
const (
	RoomViewGarden   = "garden"
	RoomViewCity     = "city"
	RoomViewOcean    = "ocean"
	RoomViewMountain = "mountain"
	RoomViewPool     = "pool"
)

// 预订状态
const (
	BookingStatusPending    = "pending"     // 待确认
	BookingStatusConfirmed  = "confirmed"   // 已确认
	BookingStatusCheckedIn  = "checked-in"  // 已入住
	BookingStatusCheckedOut = "checked-out" // 已退房
	BookingStatusCancelled  = "cancelled"   // 已取消
)

// 订单状态
const (
	OrderStatusPending        = "pending"          // 待确认
	OrderStatusConfirmed      = "confirmed"        // 已确认
	OrderStatusPreparing      = "preparing"        // 制作中
	OrderStatusOutForDelivery = "out-for-delivery" // 配送中
	OrderStatusDelivered      = "delivered"        // 已送达
	OrderStatusCancelled      = "cancelled"        // 已取消
)

// 支付状态，只记录不处理
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 支付方式
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"
)

// 证件类型
const (
	IDTypePassport      = "passport"
	IDTypeDriverLicense = "driver-license"
	IDTypeNationalID    = "national-id"
)

// 枚举取值列表，供参数校验使用
var (
	FoodCategories  = []string{FoodCategoryAppetizer, FoodCategoryMainCourse, FoodCategoryDessert, FoodCategoryBeverage, FoodCategoryVegetarian, FoodCategoryNonVegetarian}
	SpiceLevels     = []string{SpiceLevelMild, SpiceLevelMedium, SpiceLevelHot, SpiceLevelExtraHot}
	RoomTypes       = []string{RoomTypeSingle, RoomTypeDouble, RoomTypeSuite, RoomTypeDeluxe}
	BedTypes        = []string{BedTypeSingle, BedTypeDouble, BedTypeQueen, BedTypeKing, BedTypeTwin}
	RoomViews       = []string{RoomViewGarden, RoomViewCity, RoomViewOcean, RoomViewMountain, RoomViewPool}
	BookingStatuses = []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCheckedOut, BookingStatusCancelled}
	OrderStatuses   = []string{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled}
	PaymentMethods  = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline}
	IDTypes         = []string{IDTypePassport, IDTypeDriverLicense, IDTypeNationalID}
)

// ActiveBookingStatuses 占用房间的预订状态，待确认的预订不占房
var ActiveBookingStatuses = []string{BookingStatusConfirmed, BookingStatusCheckedIn}

// 允许用户取消的状态
var (
	CancellableBookingStatuses = []string{BookingStatusPending, BookingStatusConfirmed}
	CancellableOrderStatuses   = []string{OrderStatusPending, OrderStatusConfirmed}
)

// IsActiveBookingStatus 是否为占房状态
func IsActiveBookingStatus(status string) bool {
	for _, s := range ActiveBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsOneOf 判断取值是否在枚举列表内
func IsOneOf(value string, values []string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
