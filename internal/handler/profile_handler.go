package handler

import (
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me 获取当前用户资料
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}

// Get 获取指定用户资料
func (h *ProfileHandler) Get(c *gin.Context) {
	id := c.Param("user_id")
	if id == "" {
		response.BadRequest(c, "user_id不能为空")
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}

// Update 更新当前用户资料
func (h *ProfileHandler) Update(c *gin.Context) {
	var update service.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := jwt.GetUserID(c)
	if err := h.profiles.Update(c.Request.Context(), userID, userID, update); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", nil)
}

// UploadAvatar 上传头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "缺少avatar文件字段")
		return
	}
	defer file.Close()

	userID := jwt.GetUserID(c)
	url, err := h.profiles.UploadAvatar(c.Request.Context(), userID, userID, header.Filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "头像已上传", &response.UploadResponse{URL: url})
}

// Search 按名字或邮箱搜索用户
func (h *ProfileHandler) Search(c *gin.Context) {
	profiles, err := h.profiles.Search(c.Request.Context(), c.Query("q"), jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profiles)
}
