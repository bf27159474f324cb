package handler

import (
	"errors"
	"net/http"

	"github.com/calorielog/internal/db"
	"github.com/calorielog/internal/service"
	"github.com/gin-gonic/gin"
)

type foodCreateRequest struct {
	Name     string   `json:"name" binding:"required"`
	Calories *float64 `json:"calories" binding:"required"`
	Protein  *float64 `json:"protein" binding:"required"`
	Fat      *float64 `json:"fat" binding:"required"`
	Carbs    *float64 `json:"carbs" binding:"required"`
}

type foodPatchRequest struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Fat      *float64 `json:"fat"`
	Carbs    *float64 `json:"carbs"`
}

func foodJSON(f *db.Food) gin.H {
	return gin.H{
		"id":       f.ID,
		"name":     f.Name,
		"calories": f.Calories,
		"protein":  f.Protein,
		"fat":      f.Fat,
		"carbs":    f.Carbs,
	}
}

// GetFoods 获取官方食物列表，开放读取，支持 ?name= 模糊查询
func (a *API) GetFoods(c *gin.Context) {
	foods, err := a.catalog.ListFoods(c.Query("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取食物列表失败")
		return
	}

	response := make([]gin.H, 0, len(foods))
	for i := range foods {
		response = append(response, foodJSON(&foods[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetFoodByName 按名称获取单个官方食物
func (a *API) GetFoodByName(c *gin.Context) {
	food, err := a.catalog.FoodByName(c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrFoodNotFound) {
			respondError(c, http.StatusNotFound, "找不到该食物")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取食物失败")
		return
	}
	c.JSON(http.StatusOK, foodJSON(food))
}

// CreateFood 新增官方食物，仅管理员可用
func (a *API) CreateFood(c *gin.Context) {
	var req foodCreateRequest
	if !bindJSON(c, &req, "缺少名称或营养字段") {
		return
	}

	food, err := a.catalog.CreateFood(service.FoodInput{
		Name:     req.Name,
		Calories: *req.Calories,
		Protein:  *req.Protein,
		Fat:      *req.Fat,
		Carbs:    *req.Carbs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFoodFieldsMissing):
			respondError(c, http.StatusBadRequest, "缺少名称或营养字段")
		case errors.Is(err, service.ErrFoodExists):
			respondError(c, http.StatusConflict, "食物名称已存在")
		default:
			respondError(c, http.StatusInternalServerError, "新增食物失败")
		}
		return
	}

	c.JSON(http.StatusCreated, foodJSON(food))
}

// UpdateFood 部分更新官方食物，仅管理员可用
func (a *API) UpdateFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	var req foodPatchRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	food, err := a.catalog.UpdateFood(id, service.FoodPatch{
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Fat:      req.Fat,
		Carbs:    req.Carbs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFoodNotFound):
			respondError(c, http.StatusNotFound, "食物不存在")
		case errors.Is(err, service.ErrFoodExists):
			respondError(c, http.StatusConflict, "食物名称已存在")
		case errors.Is(err, service.ErrFoodFieldsMissing):
			respondError(c, http.StatusBadRequest, "食物名称不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "更新食物失败")
		}
		return
	}

	c.JSON(http.StatusOK, foodJSON(food))
}

// DeleteFood 删除官方食物，仅管理员可用。
// 历史纪录依赖名称快照展示，不受删除影响。
func (a *API) DeleteFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	if err := a.catalog.DeleteFood(id); err != nil {
		if errors.Is(err, service.ErrFoodNotFound) {
			respondError(c, http.StatusNotFound, "食物不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除食物失败")
		return
	}

	c.Status(http.StatusNoContent)
}
