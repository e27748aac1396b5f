package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type BrandHandler struct {
	brands *service.BrandService
}

func NewBrandHandler(brands *service.BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// Suggest 提交品牌建议
func (h *BrandHandler) Suggest(c *gin.Context) {
	type req struct {
		Country  string `json:"country"`
		Brand    string `json:"brand" binding:"required"`
		Category string `json:"category" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	suggestion, err := h.brands.Suggest(c.Request.Context(), jwt.GetUserID(c), r.Country, r.Brand, r.Category)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "建议已提交", suggestion)
}

// Approve 批准建议
func (h *BrandHandler) Approve(c *gin.Context) {
	suggestionID := c.Param("suggestion_id")
	if suggestionID == "" {
		response.BadRequest(c, "suggestion_id不能为空")
		return
	}

	approved, err := h.brands.Approve(c.Request.Context(), suggestionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已批准", approved)
}

// Remove 驳回并删除建议
func (h *BrandHandler) Remove(c *gin.Context) {
	suggestionID := c.Param("suggestion_id")
	if suggestionID == "" {
		response.BadRequest(c, "suggestion_id不能为空")
		return
	}

	if err := h.brands.Remove(c.Request.Context(), suggestionID); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// Pending 列出待审建议
func (h *BrandHandler) Pending(c *gin.Context) {
	suggestions, err := h.brands.Pending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, suggestions)
}

// Approved 列出已批准品牌
func (h *BrandHandler) Approved(c *gin.Context) {
	brands, err := h.brands.Approved(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, brands)
}
