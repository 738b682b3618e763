package models

import (
	"time"

	"gorm.io/datatypes"
)

// OperationLog 管理员操作日志
type OperationLog struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID     int64             `gorm:"index;not null" json:"adminId"`
	Module      string            `gorm:"type:varchar(50);not null" json:"module"`
	Action      string            `gorm:"type:varchar(50);not null" json:"action"`
	TargetType  *string           `gorm:"type:varchar(50)" json:"targetType,omitempty"`
	TargetID    *int64            `json:"targetId,omitempty"`
	RequestData datatypes.JSONMap `json:"requestData,omitempty"`
	StatusCode  int               `gorm:"not null" json:"statusCode"`
	LatencyMs   int64             `gorm:"not null" json:"latencyMs"`
	IP          string            `gorm:"type:varchar(45);not null" json:"ip"`
	UserAgent   *string           `gorm:"type:varchar(255)" json:"userAgent,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "operation_logs"
}

// AllModels 需要自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Room{},
		&Booking{},
		&Food{},
		&FoodReview{},
		&Order{},
		&OrderItem{},
		&OperationLog{},
	}
}
