package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/calorielog/internal/db"
	"github.com/calorielog/internal/service"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
)

type recordCreateRequest struct {
	RecordTime     string   `json:"record_time" binding:"required"`
	Qty            *float64 `json:"qty" binding:"required"`
	OfficialFoodID *uint    `json:"official_food_id"`
	CustomFoodID   *uint    `json:"custom_food_id"`
	ManualName     string   `json:"manual_name"`
	CalorieSum     *float64 `json:"calorie_sum"`
	CarbSum        *float64 `json:"carb_sum"`
	ProteinSum     *float64 `json:"protein_sum"`
	FatSum         *float64 `json:"fat_sum"`
}

type recordPatchRequest struct {
	RecordTime     *string  `json:"record_time"`
	Qty            *float64 `json:"qty"`
	OfficialFoodID *uint    `json:"official_food_id"`
	CustomFoodID   *uint    `json:"custom_food_id"`
	ManualName     string   `json:"manual_name"`
	CalorieSum     *float64 `json:"calorie_sum"`
	CarbSum        *float64 `json:"carb_sum"`
	ProteinSum     *float64 `json:"protein_sum"`
	FatSum         *float64 `json:"fat_sum"`
}

func recordJSON(r *db.DietRecord) gin.H {
	return gin.H{
		"id":               r.ID,
		"user_id":          r.UserID,
		"record_time":      r.RecordTime.Format("2006-01-02 15:04:05"),
		"qty":              r.Qty,
		"official_food_id": r.OfficialFoodID,
		"custom_food_id":   r.CustomFoodID,
		"food_name":        r.FoodName,
		"calorie_sum":      r.CalorieSum,
		"carb_sum":         r.CarbSum,
		"protein_sum":      r.ProteinSum,
		"fat_sum":          r.FatSum,
	}
}

// 四个总量字段要么全给要么全不给
func sumsFrom(calorie, carb, protein, fat *float64) (*service.NutrientSums, bool) {
	given := 0
	for _, v := range []*float64{calorie, carb, protein, fat} {
		if v != nil {
			given++
		}
	}
	switch given {
	case 0:
		return nil, true
	case 4:
		return &service.NutrientSums{
			CalorieSum: *calorie,
			CarbSum:    *carb,
			ProteinSum: *protein,
			FatSum:     *fat,
		}, true
	default:
		return nil, false
	}
}

// GetDietRecords 获取当前用户的饮食纪录，支持 start/end 或 start_date/end_date 时间过滤
func (a *API) GetDietRecords(c *gin.Context) {
	start, err := parseTimeBound(firstQuery(c, "start_date", "start"), false)
	if err != nil {
		respondError(c, http.StatusBadRequest, "start 时间格式不正确")
		return
	}
	end, err := parseTimeBound(firstQuery(c, "end_date", "end"), true)
	if err != nil {
		respondError(c, http.StatusBadRequest, "end 时间格式不正确")
		return
	}

	records, err := a.ledger.ListRecords(session.SubjectID(c), start, end)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取饮食纪录失败")
		return
	}

	response := make([]gin.H, 0, len(records))
	for i := range records {
		response = append(response, recordJSON(&records[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetDietRecord 获取单条纪录，仅限拥有者
func (a *API) GetDietRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的纪录ID")
		return
	}

	rec, err := a.ledger.GetRecord(id, session.SubjectID(c))
	if err != nil {
		a.respondRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordJSON(rec))
}

// CreateDietRecord 创建饮食纪录。
// 食物来源在官方食物、自建食物、手填名称三者中必须恰好出现一种；
// 手填来源没有营养单值，四个总量必须由请求直接给出。
func (a *API) CreateDietRecord(c *gin.Context) {
	var req recordCreateRequest
	if !bindJSON(c, &req, "缺少必要字段") {
		return
	}

	recordTime, err := service.ParseRecordTime(req.RecordTime)
	if err != nil {
		respondError(c, http.StatusBadRequest, "record_time 格式需为 ISO 字符串")
		return
	}

	sums, ok := sumsFrom(req.CalorieSum, req.CarbSum, req.ProteinSum, req.FatSum)
	if !ok {
		respondError(c, http.StatusBadRequest, "四个营养总量必须同时给出")
		return
	}

	rec, err := a.ledger.CreateRecord(session.SubjectID(c), service.RecordInput{
		RecordTime: recordTime,
		Qty:        *req.Qty,
		Ref: service.FoodRef{
			OfficialFoodID: req.OfficialFoodID,
			CustomFoodID:   req.CustomFoodID,
			ManualName:     req.ManualName,
		},
		Sums: sums,
	})
	if err != nil {
		a.respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recordJSON(rec))
}

// UpdateDietRecord 部分更新纪录，仅限拥有者
func (a *API) UpdateDietRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的纪录ID")
		return
	}

	var req recordPatchRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	patch := service.RecordPatch{Qty: req.Qty}

	if req.RecordTime != nil {
		recordTime, err := service.ParseRecordTime(*req.RecordTime)
		if err != nil {
			respondError(c, http.StatusBadRequest, "record_time 格式需为 ISO 字符串")
			return
		}
		patch.RecordTime = &recordTime
	}

	if req.OfficialFoodID != nil || req.CustomFoodID != nil || req.ManualName != "" {
		patch.Ref = &service.FoodRef{
			OfficialFoodID: req.OfficialFoodID,
			CustomFoodID:   req.CustomFoodID,
			ManualName:     req.ManualName,
		}
	}

	sums, ok := sumsFrom(req.CalorieSum, req.CarbSum, req.ProteinSum, req.FatSum)
	if !ok {
		respondError(c, http.StatusBadRequest, "四个营养总量必须同时给出")
		return
	}
	patch.Sums = sums

	rec, err := a.ledger.UpdateRecord(id, session.SubjectID(c), patch)
	if err != nil {
		a.respondRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordJSON(rec))
}

// DeleteDietRecord 删除纪录，仅限拥有者
func (a *API) DeleteDietRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的纪录ID")
		return
	}

	if err := a.ledger.DeleteRecord(id, session.SubjectID(c)); err != nil {
		a.respondRecordError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDailySummary 汇总当前用户某一天的营养总量，并附带目标卡路里
func (a *API) GetDailySummary(c *gin.Context) {
	day := time.Now()
	if raw := firstQuery(c, "date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date 格式需为 YYYY-MM-DD")
			return
		}
		day = parsed
	}

	userID := session.SubjectID(c)
	sums, count, err := a.ledger.DailySummary(userID, day)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取每日汇总失败")
		return
	}

	targetKcal, err := a.settings.TargetKcal(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取每日汇总失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         day.Format("2006-01-02"),
		"record_count": count,
		"calorie_sum":  sums.CalorieSum,
		"carb_sum":     sums.CarbSum,
		"protein_sum":  sums.ProteinSum,
		"fat_sum":      sums.FatSum,
		"target_kcal":  targetKcal,
	})
}

func (a *API) respondRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "饮食纪录不存在")
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, "没有权限")
	case errors.Is(err, service.ErrAmbiguousFoodRef):
		respondError(c, http.StatusBadRequest, "食物来源必须且只能择一填入")
	case errors.Is(err, service.ErrInvalidQty):
		respondError(c, http.StatusBadRequest, "qty 需为正数")
	case errors.Is(err, service.ErrInvalidRecordTime):
		respondError(c, http.StatusBadRequest, "record_time 格式需为 ISO 字符串")
	case errors.Is(err, service.ErrSumsRequired):
		respondError(c, http.StatusBadRequest, "手填食物必须直接给出四个营养总量")
	case errors.Is(err, service.ErrFoodNotFound):
		respondError(c, http.StatusNotFound, "引用的官方食物不存在")
	case errors.Is(err, service.ErrCustomFoodNotFound):
		respondError(c, http.StatusNotFound, "引用的自建食物不存在")
	default:
		respondError(c, http.StatusInternalServerError, "操作饮食纪录失败")
	}
}
