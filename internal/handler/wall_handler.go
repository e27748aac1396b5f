package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type WallHandler struct {
	wall *service.WallService
}

func NewWallHandler(wall *service.WallService) *WallHandler {
	return &WallHandler{wall: wall}
}

// AddPost 发布帖子
func (h *WallHandler) AddPost(c *gin.Context) {
	type req struct {
		Content    string `json:"content" binding:"required"`
		Visibility string `json:"visibility" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.wall.AddPost(c.Request.Context(), jwt.GetUserID(c), jwt.GetName(c), r.Content, r.Visibility)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已发布", post)
}

// ListPosts 获取指定用户的留言墙（按浏览者身份过滤可见性）
func (h *WallHandler) ListPosts(c *gin.Context) {
	ownerID := c.Param("user_id")
	if ownerID == "" {
		response.BadRequest(c, "user_id不能为空")
		return
	}

	posts, err := h.wall.ListPosts(c.Request.Context(), ownerID, jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, posts)
}
