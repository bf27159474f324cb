package db

import "gorm.io/gorm"

// CustomerFood 定义了用户自建食物模型
// 名称在同一拥有者范围内唯一，且仅拥有者可读写
type CustomerFood struct {
	gorm.Model
	UserID   uint    `gorm:"not null;uniqueIndex:uq_user_foodname"`
	Name     string  `gorm:"not null;uniqueIndex:uq_user_foodname"`
	Calories float64 `gorm:"not null"`
	Protein  float64 `gorm:"not null"`
	Fat      float64 `gorm:"not null"`
	Carbs    float64 `gorm:"not null"`
}
