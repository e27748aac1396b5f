package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Send 发送私聊消息
func (h *ChatHandler) Send(c *gin.Context) {
	type req struct {
		ReceiverID   string `json:"receiver_id" binding:"required"`
		ReceiverName string `json:"receiver_name"`
		Message      string `json:"message" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.chat.Send(c.Request.Context(),
		jwt.GetUserID(c), jwt.GetName(c),
		r.ReceiverID, r.ReceiverName, r.Message)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已发送", msg)
}

// History 获取与指定用户的聊天记录
func (h *ChatHandler) History(c *gin.Context) {
	otherID := c.Param("user_id")
	if otherID == "" {
		response.BadRequest(c, "user_id不能为空")
		return
	}

	messages, err := h.chat.History(c.Request.Context(), jwt.GetUserID(c), otherID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, messages)
}
