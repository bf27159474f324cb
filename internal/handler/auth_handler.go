package handler

import (
	"errors"
	"net/http"

	"github.com/calorielog/internal/service"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Signup 注册新用户
func (a *API) Signup(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	user, err := a.identity.SignupUser(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCredentials):
			respondError(c, http.StatusBadRequest, "用户名与密码为必填")
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusConflict, "用户名已被注册")
		default:
			respondError(c, http.StatusInternalServerError, "注册失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login 处理用户登录，成功后签发会话
func (a *API) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "缺少用户名或密码")
		return
	}

	userID, err := a.identity.AuthenticateUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	if err := a.gate.Issue(c, session.KindUser, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "login ok", "user_id": userID})
}

// Logout 处理用户登出并吊销会话
func (a *API) Logout(c *gin.Context) {
	if err := a.gate.Revoke(c); err != nil {
		respondError(c, http.StatusInternalServerError, "会话清理失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logout ok"})
}

// Whoami 返回当前用户会话状态
func (a *API) Whoami(c *gin.Context) {
	userID, ok := a.gate.Subject(c, session.KindUser)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"logged_in": false})
		return
	}

	user, err := a.identity.UserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"logged_in": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logged_in": true, "user_id": user.ID, "username": user.Username})
}

// ChangePassword 变更当前用户密码
func (a *API) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req, "目前仅支持变更密码") {
		return
	}

	userID := session.SubjectID(c)
	if err := a.identity.ChangePassword(userID, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCredentials):
			respondError(c, http.StatusBadRequest, "密码不能为空")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		default:
			respondError(c, http.StatusInternalServerError, "密码更新失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "password updated"})
}

// AdminLogin 处理管理员登录
func (a *API) AdminLogin(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "缺少账号或密码")
		return
	}

	adminID, err := a.identity.AuthenticateAdmin(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			respondError(c, http.StatusUnauthorized, "账号或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	if err := a.gate.Issue(c, session.KindAdmin, adminID); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "login ok"})
}

// AdminLogout 处理管理员登出
func (a *API) AdminLogout(c *gin.Context) {
	if err := a.gate.Revoke(c); err != nil {
		respondError(c, http.StatusInternalServerError, "会话清理失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logout ok"})
}

// AdminWhoami 返回当前管理员会话状态
func (a *API) AdminWhoami(c *gin.Context) {
	adminID, ok := a.gate.Subject(c, session.KindAdmin)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"logged_in": false})
		return
	}

	admin, err := a.identity.AdminByID(adminID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"logged_in": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logged_in": true, "username": admin.Username})
}
