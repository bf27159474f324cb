package service

import (
	"errors"
	"fmt"

	"github.com/calorielog/internal/db"
	"gorm.io/gorm"
)

// ErrInvalidTargetKcal 在目标卡路里不是正整数时返回
var ErrInvalidTargetKcal = errors.New("target kcal must be a positive integer")

// SettingsService 负责用户级偏好设置，目前只有每日目标卡路里一项
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService 构造 SettingsService
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

// TargetKcal 返回指定用户的每日目标卡路里
func (s *SettingsService) TargetKcal(userID uint) (int, error) {
	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("get user settings: %w", err)
	}
	return user.TargetKcal, nil
}

// SetTargetKcal 更新目标卡路里，必须是正整数
func (s *SettingsService) SetTargetKcal(userID uint, value int) error {
	if value <= 0 {
		return ErrInvalidTargetKcal
	}

	result := s.db.Model(&db.User{}).Where("id = ?", userID).Update("target_kcal", value)
	if result.Error != nil {
		return fmt.Errorf("update user settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
