package models

import (
	"time"
)

// Order 外卖订单模型
type Order struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber         string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderNumber"`
	UserID              int64           `gorm:"not null;index:idx_orders_user_created,priority:1" json:"userId"`
	TotalAmount         float64         `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status              string          `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryAddress     DeliveryAddress `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryAddress"`
	ContactNumber       string          `gorm:"type:varchar(30);not null" json:"contactNumber"`
	SpecialInstructions string          `gorm:"type:varchar(500)" json:"specialInstructions,omitempty"`
	PaymentMethod       string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentStatus       string          `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	EstimatedDelivery   time.Time       `json:"estimatedDelivery"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	CancellationReason  string          `gorm:"type:varchar(500)" json:"cancellationReason,omitempty"`
	Rating              *int            `json:"rating,omitempty"`
	Feedback            string          `gorm:"type:varchar(1000)" json:"feedback,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime;index:idx_orders_user_created,priority:2" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// DeliveryAddress 配送地址
type DeliveryAddress struct {
	Street       string `gorm:"type:varchar(255)" json:"street"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	ZipCode      string `gorm:"type:varchar(20)" json:"zipCode,omitempty"`
	Instructions string `gorm:"type:varchar(255)" json:"instructions,omitempty"`
}

// OrderItem 订单明细，菜名与单价为下单时快照
type OrderItem struct {
	ID                  int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64   `gorm:"not null;index" json:"orderId"`
	FoodID              int64   `gorm:"not null;index" json:"foodId"`
	FoodName            string  `gorm:"type:varchar(100);not null" json:"foodName"`
	Quantity            int     `gorm:"not null" json:"quantity"`
	Price               float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	SpecialInstructions string  `gorm:"type:varchar(255)" json:"specialInstructions,omitempty"`
}

// TableName 表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 小计
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CanCancel 是否可取消
func (o *Order) CanCancel() bool {
	return IsOneOf(o.Status, CancellableOrderStatuses)
}
