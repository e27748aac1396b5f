package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	friends *service.FriendService
}

func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	type req struct {
		To string `json:"to" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.friends.SendRequest(c.Request.Context(), jwt.GetUserID(c), r.To)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", request)
}

// Accept 接受好友请求
func (h *FriendHandler) Accept(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		response.BadRequest(c, "request_id不能为空")
		return
	}

	friendship, err := h.friends.Accept(c.Request.Context(), requestID, jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已添加好友", friendship)
}

// Reject 拒绝好友请求
func (h *FriendHandler) Reject(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		response.BadRequest(c, "request_id不能为空")
		return
	}

	if err := h.friends.Reject(c.Request.Context(), requestID, jwt.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已拒绝请求", nil)
}

// IncomingRequests 获取待处理的好友请求
func (h *FriendHandler) IncomingRequests(c *gin.Context) {
	requests, err := h.friends.IncomingRequests(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, requests)
}

// ListFriends 获取好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, friends)
}
