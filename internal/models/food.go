package models

import (
	"time"

	"gorm.io/datatypes"
)

// Food 菜品模型
type Food struct {
	ID              int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string                      `gorm:"type:varchar(100);not null" json:"name"`
	Description     string                      `gorm:"type:varchar(1000);not null" json:"description"`
	Price           float64                     `gorm:"type:decimal(10,2);not null;index" json:"price"`
	Category        string                      `gorm:"type:varchar(30);not null;index:idx_foods_category_available,priority:1" json:"category"`
	Image           string                      `gorm:"type:varchar(500)" json:"image,omitempty"`
	Ingredients     datatypes.JSONSlice[string] `json:"ingredients"`
	PreparationTime int                         `gorm:"not null" json:"preparationTime"`
	IsAvailable     bool                        `gorm:"not null;index:idx_foods_category_available,priority:2" json:"isAvailable"`
	IsVegetarian    bool                        `gorm:"not null" json:"isVegetarian"`
	IsVegan         bool                        `gorm:"not null" json:"isVegan"`
	IsGlutenFree    bool                        `gorm:"not null" json:"isGlutenFree"`
	SpiceLevel      string                      `gorm:"type:varchar(20)" json:"spiceLevel,omitempty"`
	NutritionalInfo NutritionalInfo             `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutritionalInfo"`
	Rating          Rating                      `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	CreatedBy       *int64                      `json:"createdBy,omitempty"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`

	// 关联
	Reviews []FoodReview `gorm:"foreignKey:FoodID" json:"reviews,omitempty"`
}

// TableName 表名
func (Food) TableName() string {
	return "foods"
}

// NutritionalInfo 营养信息
type NutritionalInfo struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

// FoodReview 菜品评价，每个用户对同一菜品只能评价一次
type FoodReview struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FoodID    int64     `gorm:"not null;uniqueIndex:uk_food_reviews_food_user,priority:1" json:"foodId"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_food_reviews_food_user,priority:2;index" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:varchar(500)" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (FoodReview) TableName() string {
	return "food_reviews"
}
