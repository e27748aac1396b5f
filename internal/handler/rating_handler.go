package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings *service.RatingService
}

func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Rate 给用户评分
func (h *RatingHandler) Rate(c *gin.Context) {
	type req struct {
		TargetID string `json:"target_id" binding:"required"`
		Score    int    `json:"score" binding:"required"`
		Comment  string `json:"comment"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rating, err := h.ratings.Rate(c.Request.Context(), jwt.GetUserID(c), r.TargetID, r.Score, r.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已评分", rating)
}

// View 获取指定用户的评分页视图（评分列表 + 聚合）
func (h *RatingHandler) View(c *gin.Context) {
	targetID := c.Param("user_id")
	if targetID == "" {
		response.BadRequest(c, "user_id不能为空")
		return
	}

	view, err := h.ratings.View(c.Request.Context(), targetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// Summary 获取指定用户的评分聚合结果（优先命中缓存）
func (h *RatingHandler) Summary(c *gin.Context) {
	targetID := c.Param("user_id")
	if targetID == "" {
		response.BadRequest(c, "user_id不能为空")
		return
	}

	summary, err := h.ratings.Aggregate(c.Request.Context(), targetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, summary)
}
