package db

import (
	"time"

	"gorm.io/gorm"
)

// DietRecord 定义了饮食纪录模型
// OfficialFoodID / CustomFoodID / 纯手填名称三种食物来源只会出现一种；
// FoodName 在写入时从对应食物拷贝（或取手填文字），之后食物被改名或删除
// 都不影响历史纪录的展示。
// 四个 *Sum 字段同样是写入时按 单位营养值 × Qty 算好存储的快照，读取时不再重算。
type DietRecord struct {
	gorm.Model
	UserID         uint      `gorm:"not null;index"`
	RecordTime     time.Time `gorm:"not null;index"`
	Qty            float64   `gorm:"not null;default:1"`
	OfficialFoodID *uint
	CustomFoodID   *uint
	FoodName       string  `gorm:"not null"`
	CalorieSum     float64 `gorm:"not null"`
	CarbSum        float64 `gorm:"not null"`
	ProteinSum     float64 `gorm:"not null"`
	FatSum         float64 `gorm:"not null"`
}
