package handler

import (
	"errors"
	"net/http"

	"github.com/calorielog/internal/db"
	"github.com/calorielog/internal/service"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
)

func customerFoodJSON(f *db.CustomerFood) gin.H {
	return gin.H{
		"id":       f.ID,
		"user_id":  f.UserID,
		"name":     f.Name,
		"calories": f.Calories,
		"protein":  f.Protein,
		"fat":      f.Fat,
		"carbs":    f.Carbs,
	}
}

// GetCustomerFoods 获取当前用户的自建食物列表
func (a *API) GetCustomerFoods(c *gin.Context) {
	foods, err := a.catalog.ListCustomFoods(session.SubjectID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取自建食物失败")
		return
	}

	response := make([]gin.H, 0, len(foods))
	for i := range foods {
		response = append(response, customerFoodJSON(&foods[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetCustomerFood 获取单个自建食物，仅限拥有者
func (a *API) GetCustomerFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	food, err := a.catalog.GetCustomFood(id, session.SubjectID(c))
	if err != nil {
		a.respondCustomFoodError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerFoodJSON(food))
}

// CreateCustomerFood 新增自建食物，拥有者取自会话而非请求内容
func (a *API) CreateCustomerFood(c *gin.Context) {
	var req foodCreateRequest
	if !bindJSON(c, &req, "缺少名称或营养字段") {
		return
	}

	food, err := a.catalog.CreateCustomFood(session.SubjectID(c), service.FoodInput{
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
		case errors.Is(err, service.ErrCustomFoodExists):
			respondError(c, http.StatusConflict, "同名自建食物已存在")
		default:
			respondError(c, http.StatusInternalServerError, "新增自建食物失败")
		}
		return
	}

	c.JSON(http.StatusCreated, customerFoodJSON(food))
}

// UpdateCustomerFood 部分更新自建食物，仅限拥有者
func (a *API) UpdateCustomerFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	var req foodPatchRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	food, err := a.catalog.UpdateCustomFood(id, session.SubjectID(c), service.FoodPatch{
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Fat:      req.Fat,
		Carbs:    req.Carbs,
	})
	if err != nil {
		a.respondCustomFoodError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerFoodJSON(food))
}

// DeleteCustomerFood 删除自建食物，仅限拥有者
func (a *API) DeleteCustomerFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	if err := a.catalog.DeleteCustomFood(id, session.SubjectID(c)); err != nil {
		a.respondCustomFoodError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) respondCustomFoodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCustomFoodNotFound):
		respondError(c, http.StatusNotFound, "自建食物不存在")
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, "没有权限")
	case errors.Is(err, service.ErrCustomFoodExists):
		respondError(c, http.StatusConflict, "同名自建食物已存在")
	case errors.Is(err, service.ErrFoodFieldsMissing):
		respondError(c, http.StatusBadRequest, "食物名称不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作自建食物失败")
	}
}
