package db

import "gorm.io/gorm"

// Food 定义了官方食物模型，是所有用户共享的只读参考数据
// 四个营养字段均为每单位份量的数值
type Food struct {
	gorm.Model
	Name     string  `gorm:"unique;not null"`
	Calories float64 `gorm:"not null"`
	Protein  float64 `gorm:"not null"`
	Fat      float64 `gorm:"not null"`
	Carbs    float64 `gorm:"not null"`
}
