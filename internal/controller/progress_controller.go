package controller

import (
	"learnquest_backend/internal/service"
	"learnquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// RecordInteraction godoc
// @Summary 记录一次学习交互
// @Description 提交答题/闪卡复习/小节完成/每日测验结果，返回经验结算摘要。
// @Description 同一请求重放不会重复计数或重复发放经验
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.InteractionRequest true "交互载荷"
// @Success 200 {object} util.Response{data=service.InteractionResult}
// @Failure 400 {object} util.Response "载荷无效"
// @Failure 404 {object} util.Response "内容不存在"
// @Failure 409 {object} util.Response "并发冲突，重试仍失败"
// @Router /api/progress/interactions [post]
func (c *ProgressController) RecordInteraction(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.InteractionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.RecordInteraction(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
