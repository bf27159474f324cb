package handler

import (
	"errors"
	"net/http"

	"github.com/calorielog/internal/service"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
)

type settingsRequest struct {
	TargetKcal *int `json:"target_kcal" binding:"required"`
}

// GetUserSettings 获取当前用户的每日目标卡路里
func (a *API) GetUserSettings(c *gin.Context) {
	targetKcal, err := a.settings.TargetKcal(session.SubjectID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "找不到该用户")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"target_kcal": targetKcal})
}

// UpdateUserSettings 更新每日目标卡路里，必须是正整数
func (a *API) UpdateUserSettings(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req, "请求中缺少 target_kcal") {
		return
	}

	if err := a.settings.SetTargetKcal(session.SubjectID(c), *req.TargetKcal); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTargetKcal):
			respondError(c, http.StatusBadRequest, "目标卡路里必须是正整数")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "找不到该用户")
		default:
			respondError(c, http.StatusInternalServerError, "设置更新失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "设置更新成功"})
}
