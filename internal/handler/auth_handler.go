package handler

import (
	"social-system/internal/service"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	identity *service.IdentityService
}

func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	identity, token, err := h.identity.Register(c.Request.Context(), r.Username, r.Email, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.AuthResponse{
		Identity:    &identity,
		AccessToken: token,
	})
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	identity, token, err := h.identity.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.AuthResponse{
		Identity:    &identity,
		AccessToken: token,
	})
}

// Anonymous 匿名会话（游客随便逛逛）
func (h *AuthHandler) Anonymous(c *gin.Context) {
	identity, token, err := h.identity.Anonymous(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "匿名会话已建立", &response.AuthResponse{
		Identity:    &identity,
		AccessToken: token,
	})
}
