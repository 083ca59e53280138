package controller

import (
	"learnquest_backend/internal/service"
	"learnquest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// GetTopicSections godoc
// @Summary 主题下小节的解锁视图
// @Description 按顺序返回小节及其解锁状态、锁定原因与当前得分
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   topicId path int true "主题ID"
// @Success 200 {object} util.Response{data=[]service.SectionStatus}
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/learning/topics/{topicId}/sections [get]
func (c *LearningController) GetTopicSections(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.ParseUint(ctx.Param("topicId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的主题ID")
		return
	}

	statuses, err := c.LearningService.GetTopicSections(claims.UserID, uint(topicID))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, statuses)
}

// GetDueFlashcards godoc
// @Summary 待复习闪卡
// @Description 返回小节内从未复习或已到期的闪卡
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   sectionId path int true "小节ID"
// @Param   limit query int false "数量上限，默认20，最大100"
// @Success 200 {object} util.Response{data=[]model.Flashcard}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/learning/sections/{sectionId}/due-cards [get]
func (c *LearningController) GetDueFlashcards(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sectionID, err := strconv.ParseUint(ctx.Param("sectionId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的小节ID")
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	cards, err := c.LearningService.GetDueFlashcards(claims.UserID, uint(sectionID), limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cards)
}

// GetRandomQuiz godoc
// @Summary 随机测验题目
// @Description 从主题下各小节随机抽题组成每日测验
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   topicId path int true "主题ID"
// @Param   count query int false "题目数量，默认5，最大20"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/learning/topics/{topicId}/quiz [get]
func (c *LearningController) GetRandomQuiz(ctx *gin.Context) {
	topicID, err := strconv.ParseUint(ctx.Param("topicId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的主题ID")
		return
	}

	count, _ := strconv.Atoi(ctx.DefaultQuery("count", "5"))

	questions, err := c.LearningService.GetRandomQuiz(uint(topicID), count)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
