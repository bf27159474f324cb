package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/calorielog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound 在指定饮食纪录不存在时返回
	ErrRecordNotFound = errors.New("diet record not found")
	// ErrAmbiguousFoodRef 在官方食物、自建食物、手填名称三种来源不是恰好一种时返回
	ErrAmbiguousFoodRef = errors.New("exactly one of official food, custom food or manual name must be given")
	// ErrInvalidQty 在份量不是正的有限数时返回
	ErrInvalidQty = errors.New("qty must be a positive finite number")
	// ErrInvalidRecordTime 在时间字符串无法解析时返回
	ErrInvalidRecordTime = errors.New("record_time is not a valid timestamp")
	// ErrSumsRequired 在没有可用营养单值、调用方又未直接提供四个总量时返回
	ErrSumsRequired = errors.New("nutrient sums are required when no food profile is available")
)

// FoodRef 描述一条纪录的食物来源，三个字段只能出现一个
type FoodRef struct {
	OfficialFoodID *uint
	CustomFoodID   *uint
	ManualName     string
}

// NutrientProfile 是每单位份量的营养值
type NutrientProfile struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// NutrientSums 是一条纪录按份量算好的营养总量
type NutrientSums struct {
	CalorieSum float64
	CarbSum    float64
	ProteinSum float64
	FatSum     float64
}

// RecordInput 定义创建纪录时的字段。
// 手填名称来源没有营养单值，Sums 必须由调用方直接给出；
// 其余情况 Sums 会被忽略，总量一律按引用食物在写入时重算。
type RecordInput struct {
	RecordTime time.Time
	Qty        float64
	Ref        FoodRef
	Sums       *NutrientSums
}

// RecordPatch 定义部分更新时可变更的字段，nil 表示保持原值
type RecordPatch struct {
	RecordTime *time.Time
	Qty        *float64
	Ref        *FoodRef
	Sums       *NutrientSums
}

// LedgerService 负责饮食纪录的增删改查与营养总量计算。
// 纪录是写入时刻的快照：食物名称与四个总量在写入时固化，
// 之后引用的食物被改名或删除都不回溯修改历史。
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService 构造 LedgerService
func NewLedgerService(gdb *gorm.DB) *LedgerService {
	return &LedgerService{db: gdb}
}

// ComputeTotals 按 单位营养值 × 份量 计算四个总量
func ComputeTotals(profile NutrientProfile, qty float64) (NutrientSums, error) {
	if err := validateQty(qty); err != nil {
		return NutrientSums{}, err
	}
	return NutrientSums{
		CalorieSum: profile.Calories * qty,
		CarbSum:    profile.Carbs * qty,
		ProteinSum: profile.Protein * qty,
		FatSum:     profile.Fat * qty,
	}, nil
}

func validateQty(qty float64) error {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return ErrInvalidQty
	}
	return nil
}

// recordTimeLayouts 兼容前端惯用的几种 ISO 变体
var recordTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseRecordTime 解析纪录时间字符串，解析失败返回 ErrInvalidRecordTime
func ParseRecordTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range recordTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecordTime, raw)
}

// resolveFoodRef 确定食物来源并返回营养单值与名称快照。
// 手填名称来源返回 nil 单值，总量必须由调用方提供。
// 自建食物只允许拥有者引用。
func (s *LedgerService) resolveFoodRef(ref FoodRef, callerID uint) (*NutrientProfile, string, error) {
	manual := strings.TrimSpace(ref.ManualName)

	given := 0
	if ref.OfficialFoodID != nil {
		given++
	}
	if ref.CustomFoodID != nil {
		given++
	}
	if manual != "" {
		given++
	}
	if given != 1 {
		return nil, "", ErrAmbiguousFoodRef
	}

	if manual != "" {
		return nil, manual, nil
	}

	if ref.OfficialFoodID != nil {
		var food db.Food
		if err := s.db.First(&food, *ref.OfficialFoodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrFoodNotFound
			}
			return nil, "", fmt.Errorf("load official food: %w", err)
		}
		return &NutrientProfile{
			Calories: food.Calories,
			Protein:  food.Protein,
			Fat:      food.Fat,
			Carbs:    food.Carbs,
		}, food.Name, nil
	}

	var food db.CustomerFood
	if err := s.db.First(&food, *ref.CustomFoodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCustomFoodNotFound
		}
		return nil, "", fmt.Errorf("load custom food: %w", err)
	}
	if food.UserID != callerID {
		return nil, "", ErrNotOwner
	}
	return &NutrientProfile{
		Calories: food.Calories,
		Protein:  food.Protein,
		Fat:      food.Fat,
		Carbs:    food.Carbs,
	}, food.Name, nil
}

// profileFor 按纪录当前的引用重新加载营养单值。
// 手填纪录或引用的食物已被删除时返回 nil。
func (s *LedgerService) profileFor(rec *db.DietRecord) *NutrientProfile {
	if rec.OfficialFoodID != nil {
		var food db.Food
		if err := s.db.First(&food, *rec.OfficialFoodID).Error; err != nil {
			return nil
		}
		return &NutrientProfile{Calories: food.Calories, Protein: food.Protein, Fat: food.Fat, Carbs: food.Carbs}
	}
	if rec.CustomFoodID != nil {
		var food db.CustomerFood
		if err := s.db.First(&food, *rec.CustomFoodID).Error; err != nil {
			return nil
		}
		return &NutrientProfile{Calories: food.Calories, Protein: food.Protein, Fat: food.Fat, Carbs: food.Carbs}
	}
	return nil
}

// CreateRecord 创建饮食纪录，拥有者始终取会话主体而非请求内容
func (s *LedgerService) CreateRecord(ownerID uint, input RecordInput) (*db.DietRecord, error) {
	if err := validateQty(input.Qty); err != nil {
		return nil, err
	}
	if input.RecordTime.IsZero() {
		return nil, ErrInvalidRecordTime
	}

	profile, name, err := s.resolveFoodRef(input.Ref, ownerID)
	if err != nil {
		return nil, err
	}

	var sums NutrientSums
	if profile != nil {
		sums, err = ComputeTotals(*profile, input.Qty)
		if err != nil {
			return nil, err
		}
	} else {
		if input.Sums == nil {
			return nil, ErrSumsRequired
		}
		sums = *input.Sums
	}

	rec := db.DietRecord{
		UserID:         ownerID,
		RecordTime:     input.RecordTime,
		Qty:            input.Qty,
		OfficialFoodID: input.Ref.OfficialFoodID,
		CustomFoodID:   input.Ref.CustomFoodID,
		FoodName:       name,
		CalorieSum:     sums.CalorieSum,
		CarbSum:        sums.CarbSum,
		ProteinSum:     sums.ProteinSum,
		FatSum:         sums.FatSum,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("create diet record: %w", err)
	}
	return &rec, nil
}

// GetRecord 获取单条纪录，非拥有者访问返回 ErrNotOwner
func (s *LedgerService) GetRecord(id, callerID uint) (*db.DietRecord, error) {
	var rec db.DietRecord
	if err := s.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get diet record: %w", err)
	}
	if rec.UserID != callerID {
		return nil, ErrNotOwner
	}
	return &rec, nil
}

// ListRecords 返回指定用户的纪录，按时间倒序。
// start 为闭区间下界，end 为开区间上界；调用方负责把
// 纯日期的结束参数换算成次日零点，使整个结束日被包含。
func (s *LedgerService) ListRecords(ownerID uint, start, end *time.Time) ([]db.DietRecord, error) {
	var records []db.DietRecord

	query := s.db.Where("user_id = ?", ownerID)
	if start != nil {
		query = query.Where("record_time >= ?", *start)
	}
	if end != nil {
		query = query.Where("record_time < ?", *end)
	}

	if err := query.Order("record_time DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list diet records: %w", err)
	}
	return records, nil
}

// UpdateRecord 部分更新纪录。改变食物来源会重新固化名称快照并重算总量；
// 只改份量时按仍可取到的营养单值重算，取不到（手填纪录或食物已删）则必须
// 由调用方直接提供总量，绝不让总量与份量悄悄脱节。
func (s *LedgerService) UpdateRecord(id, callerID uint, patch RecordPatch) (*db.DietRecord, error) {
	rec, err := s.GetRecord(id, callerID)
	if err != nil {
		return nil, err
	}

	qty := rec.Qty
	if patch.Qty != nil {
		if err := validateQty(*patch.Qty); err != nil {
			return nil, err
		}
		qty = *patch.Qty
	}

	if patch.RecordTime != nil {
		rec.RecordTime = *patch.RecordTime
	}

	switch {
	case patch.Ref != nil:
		profile, name, err := s.resolveFoodRef(*patch.Ref, callerID)
		if err != nil {
			return nil, err
		}
		rec.OfficialFoodID = patch.Ref.OfficialFoodID
		rec.CustomFoodID = patch.Ref.CustomFoodID
		rec.FoodName = name

		var sums NutrientSums
		if profile != nil {
			sums, err = ComputeTotals(*profile, qty)
			if err != nil {
				return nil, err
			}
		} else {
			if patch.Sums == nil {
				return nil, ErrSumsRequired
			}
			sums = *patch.Sums
		}
		rec.CalorieSum = sums.CalorieSum
		rec.CarbSum = sums.CarbSum
		rec.ProteinSum = sums.ProteinSum
		rec.FatSum = sums.FatSum

	case patch.Qty != nil:
		if profile := s.profileFor(rec); profile != nil {
			sums, err := ComputeTotals(*profile, qty)
			if err != nil {
				return nil, err
			}
			rec.CalorieSum = sums.CalorieSum
			rec.CarbSum = sums.CarbSum
			rec.ProteinSum = sums.ProteinSum
			rec.FatSum = sums.FatSum
		} else if patch.Sums != nil {
			rec.CalorieSum = patch.Sums.CalorieSum
			rec.CarbSum = patch.Sums.CarbSum
			rec.ProteinSum = patch.Sums.ProteinSum
			rec.FatSum = patch.Sums.FatSum
		} else {
			return nil, ErrSumsRequired
		}

	case patch.Sums != nil:
		// 只有拿不到营养单值的纪录才接受直接写总量，
		// 有引用的纪录总量永远由引用推导
		if s.profileFor(rec) == nil {
			rec.CalorieSum = patch.Sums.CalorieSum
			rec.CarbSum = patch.Sums.CarbSum
			rec.ProteinSum = patch.Sums.ProteinSum
			rec.FatSum = patch.Sums.FatSum
		}
	}

	rec.Qty = qty

	if err := s.db.Save(rec).Error; err != nil {
		return nil, fmt.Errorf("update diet record: %w", err)
	}
	return rec, nil
}

// DeleteRecord 删除纪录，重复删除返回 ErrRecordNotFound
func (s *LedgerService) DeleteRecord(id, callerID uint) error {
	rec, err := s.GetRecord(id, callerID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(rec).Error; err != nil {
		return fmt.Errorf("delete diet record: %w", err)
	}
	return nil
}

// DailySummary 汇总指定用户某一天（本地时区）的营养总量与纪录条数
func (s *LedgerService) DailySummary(ownerID uint, day time.Time) (NutrientSums, int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var result struct {
		CalorieSum float64
		CarbSum    float64
		ProteinSum float64
		FatSum     float64
		Count      int64
	}
	if err := s.db.Model(&db.DietRecord{}).
		Select("COALESCE(SUM(calorie_sum),0) AS calorie_sum, COALESCE(SUM(carb_sum),0) AS carb_sum, COALESCE(SUM(protein_sum),0) AS protein_sum, COALESCE(SUM(fat_sum),0) AS fat_sum, COUNT(*) AS count").
		Where("user_id = ? AND record_time >= ? AND record_time < ?", ownerID, start, end).
		Scan(&result).Error; err != nil {
		return NutrientSums{}, 0, fmt.Errorf("daily summary: %w", err)
	}

	return NutrientSums{
		CalorieSum: result.CalorieSum,
		CarbSum:    result.CarbSum,
		ProteinSum: result.ProteinSum,
		FatSum:     result.FatSum,
	}, result.Count, nil
}
