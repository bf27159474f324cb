package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calorielog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrFoodNotFound 在指定官方食物不存在时返回
	ErrFoodNotFound = errors.New("food not found")
	// ErrFoodExists 在官方食物名称重复时返回
	ErrFoodExists = errors.New("food name already exists")
	// ErrCustomFoodNotFound 在指定自建食物不存在时返回
	ErrCustomFoodNotFound = errors.New("custom food not found")
	// ErrCustomFoodExists 在同一用户下自建食物名称重复时返回
	ErrCustomFoodExists = errors.New("custom food name already exists for this user")
	// ErrFoodFieldsMissing 在食物名称或营养字段缺失时返回
	ErrFoodFieldsMissing = errors.New("food name and macro fields are required")
)

// CatalogService 负责官方食物与用户自建食物的目录维护。
// 官方食物是全体共享的只读参考数据，仅管理员可变更；
// 自建食物是拥有者私有的，所有读写都要做归属校验。
type CatalogService struct {
	db *gorm.DB
}

// FoodInput 定义创建官方/自建食物时的字段
type FoodInput struct {
	Name     string
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// FoodPatch 定义部分更新时可变更的字段，nil 表示保持原值
type FoodPatch struct {
	Name     *string
	Calories *float64
	Protein  *float64
	Fat      *float64
	Carbs    *float64
}

// NewCatalogService 构造 CatalogService
func NewCatalogService(gdb *gorm.DB) *CatalogService {
	return &CatalogService{db: gdb}
}

// ListFoods 返回官方食物列表，search 非空时按名称模糊过滤
func (s *CatalogService) ListFoods(search string) ([]db.Food, error) {
	var foods []db.Food

	query := s.db.Model(&db.Food{})
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		query = query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", trimmed))
	}

	if err := query.Order("id asc").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// FoodByName 按名称精确查找官方食物
func (s *CatalogService) FoodByName(name string) (*db.Food, error) {
	var food db.Food
	if err := s.db.Where("name = ?", strings.TrimSpace(name)).First(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food by name: %w", err)
	}
	return &food, nil
}

// CreateFood 新增官方食物，名称全局唯一。
// 冲突检测交给唯一索引，先查后插在并发下有窗口期。
func (s *CatalogService) CreateFood(input FoodInput) (*db.Food, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFoodFieldsMissing
	}

	food := db.Food{
		Name:     name,
		Calories: input.Calories,
		Protein:  input.Protein,
		Fat:      input.Fat,
		Carbs:    input.Carbs,
	}
	if err := s.db.Create(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFoodExists
		}
		return nil, fmt.Errorf("create food: %w", err)
	}
	return &food, nil
}

// UpdateFood 部分更新官方食物，仅应用提供的字段
func (s *CatalogService) UpdateFood(id uint, patch FoodPatch) (*db.Food, error) {
	var food db.Food
	if err := s.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("find food: %w", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrFoodFieldsMissing
		}
		food.Name = name
	}
	if patch.Calories != nil {
		food.Calories = *patch.Calories
	}
	if patch.Protein != nil {
		food.Protein = *patch.Protein
	}
	if patch.Fat != nil {
		food.Fat = *patch.Fat
	}
	if patch.Carbs != nil {
		food.Carbs = *patch.Carbs
	}

	if err := s.db.Save(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFoodExists
		}
		return nil, fmt.Errorf("update food: %w", err)
	}
	return &food, nil
}

// DeleteFood 删除官方食物。引用它的历史纪录依赖名称快照展示，不做级联处理。
// 物理删除而非软删除：名称上有唯一索引，留下软删除行会挡住同名食物重建。
func (s *CatalogService) DeleteFood(id uint) error {
	result := s.db.Unscoped().Delete(&db.Food{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete food: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

// ListCustomFoods 返回指定用户的全部自建食物
func (s *CatalogService) ListCustomFoods(ownerID uint) ([]db.CustomerFood, error) {
	var foods []db.CustomerFood
	if err := s.db.Where("user_id = ?", ownerID).Order("id asc").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list custom foods: %w", err)
	}
	return foods, nil
}

// GetCustomFood 获取单个自建食物，非拥有者访问返回 ErrNotOwner
func (s *CatalogService) GetCustomFood(id, ownerID uint) (*db.CustomerFood, error) {
	var food db.CustomerFood
	if err := s.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomFoodNotFound
		}
		return nil, fmt.Errorf("get custom food: %w", err)
	}
	if food.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return &food, nil
}

// CreateCustomFood 新增自建食物，(拥有者, 名称) 组合唯一，冲突由复合索引裁决
func (s *CatalogService) CreateCustomFood(ownerID uint, input FoodInput) (*db.CustomerFood, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFoodFieldsMissing
	}

	food := db.CustomerFood{
		UserID:   ownerID,
		Name:     name,
		Calories: input.Calories,
		Protein:  input.Protein,
		Fat:      input.Fat,
		Carbs:    input.Carbs,
	}
	if err := s.db.Create(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCustomFoodExists
		}
		return nil, fmt.Errorf("create custom food: %w", err)
	}
	return &food, nil
}

// UpdateCustomFood 部分更新自建食物，改名时同样检查 (拥有者, 名称) 唯一
func (s *CatalogService) UpdateCustomFood(id, ownerID uint, patch FoodPatch) (*db.CustomerFood, error) {
	food, err := s.GetCustomFood(id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrFoodFieldsMissing
		}
		food.Name = name
	}
	if patch.Calories != nil {
		food.Calories = *patch.Calories
	}
	if patch.Protein != nil {
		food.Protein = *patch.Protein
	}
	if patch.Fat != nil {
		food.Fat = *patch.Fat
	}
	if patch.Carbs != nil {
		food.Carbs = *patch.Carbs
	}

	if err := s.db.Save(food).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCustomFoodExists
		}
		return nil, fmt.Errorf("update custom food: %w", err)
	}
	return food, nil
}

// DeleteCustomFood 删除自建食物，重复删除返回 ErrCustomFoodNotFound。
// 与官方食物相同，(拥有者, 名称) 唯一索引要求物理删除，否则同名重建会撞索引。
func (s *CatalogService) DeleteCustomFood(id, ownerID uint) error {
	food, err := s.GetCustomFood(id, ownerID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(food).Error; err != nil {
		return fmt.Errorf("delete custom food: %w", err)
	}
	return nil
}
