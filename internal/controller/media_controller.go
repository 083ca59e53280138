package controller

import (
	"learnquest_backend/internal/service"
	"learnquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	ContentService *service.ContentService
}

func NewMediaController(contentService *service.ContentService) *MediaController {
	return &MediaController{ContentService: contentService}
}

// Upload godoc
// @Summary 上传小节媒体
// @Description 支持图片/视频/音频/PDF，视频自动探测时长并生成缩略图
// @Tags 媒体
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Param   file formData file true "媒体文件"
// @Param   title formData string false "标题"
// @Success 201 {object} util.Response{data=model.Media}
// @Failure 400 {object} util.Response "文件类型无效"
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/admin/sections/{id}/media [post]
func (c *MediaController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}

	media, err := c.ContentService.UploadMedia(ctx.Request.Context(), sectionID, claims.UserID, fileHeader, ctx.PostForm("title"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, media)
}

// List godoc
// @Summary 小节媒体列表
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Success 200 {object} util.Response{data=[]model.Media}
// @Router /api/sections/{id}/media [get]
func (c *MediaController) List(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	media, err := c.ContentService.ListMedia(sectionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, media)
}

// Delete godoc
// @Summary 删除媒体
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "媒体ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "媒体不存在"
// @Router /api/admin/media/{id} [delete]
func (c *MediaController) Delete(ctx *gin.Context) {
	if err := c.ContentService.DeleteMedia(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
