package db

import "gorm.io/gorm"

// DefaultTargetKcal 是新用户的默认每日目标卡路里
const DefaultTargetKcal = 2000

// User 定义了用户模型
type User struct {
	gorm.Model
	Username   string `gorm:"unique;not null"`
	Password   string `gorm:"not null"`
	TargetKcal int    `gorm:"not null;default:2000"`
}
