package handler

import (
	"errors"

	"social-system/internal/service"
	"social-system/pkg/logger"
	"social-system/pkg/response"
	"social-system/pkg/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail 统一错误映射：校验错误→400，冲突→409，未找到→404，
// 凭证错误→401，其余按存储/内部故障处理→500
func fail(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		response.BadRequest(c, err.Error())
	case service.IsConflict(err):
		response.Conflict(c, err.Error())
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, "记录不存在")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "用户名或密码错误")
	default:
		logger.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c, "服务器内部错误")
	}
}
