package models

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null" json:"-"`
	Role         string      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Profile      UserProfile `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	IsActive     bool        `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// UserProfile 用户资料
type UserProfile struct {
	FirstName string `gorm:"type:varchar(50)" json:"firstName,omitempty"`
	LastName  string `gorm:"type:varchar(50)" json:"lastName,omitempty"`
	Phone     string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Address   string `gorm:"type:varchar(255)" json:"address,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName 姓名，未填写时返回空字符串
func (p UserProfile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// 用户角色
const (
	RoleUser  = "user"  // 普通用户
	RoleAdmin = "admin" // 管理员
)
