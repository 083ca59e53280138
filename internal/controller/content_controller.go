package controller

import (
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/service"
	"learnquest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContentController 内容管理端点，写操作仅限教师与管理员
type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// ---- 学科 ----

// ListSubjects godoc
// @Summary 学科列表
// @Description 学生只能看到已发布的学科
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *ContentController) ListSubjects(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || claims.Role == model.Student

	subjects, err := c.ContentService.ListSubjects(publishedOnly)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// GetSubject godoc
// @Summary 学科详情（含主题）
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学科ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/subjects/{id} [get]
func (c *ContentController) GetSubject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	subject, err := c.ContentService.GetSubject(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// CreateSubject godoc
// @Summary 创建学科
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body model.Subject true "学科"
// @Success 201 {object} util.Response{data=model.Subject}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/subjects [post]
func (c *ContentController) CreateSubject(ctx *gin.Context) {
	var subject model.Subject
	if err := ctx.ShouldBindJSON(&subject); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ContentService.CreateSubject(&subject); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// UpdateSubject godoc
// @Summary 更新学科
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学科ID"
// @Param   body body model.Subject true "学科"
// @Success 200 {object} util.Response{data=model.Subject}
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/admin/subjects/{id} [put]
func (c *ContentController) UpdateSubject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var subject model.Subject
	if err := ctx.ShouldBindJSON(&subject); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	subject.ID = id
	if err := c.ContentService.UpdateSubject(&subject); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// DeleteSubject godoc
// @Summary 删除学科
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学科ID"
// @Success 200 {object} util.Response
// @Router /api/admin/subjects/{id} [delete]
func (c *ContentController) DeleteSubject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteSubject(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 主题 ----

// GetTopic godoc
// @Summary 主题详情（含小节）
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Success 200 {object} util.Response{data=model.Topic}
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{id} [get]
func (c *ContentController) GetTopic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	topic, err := c.ContentService.GetTopic(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, topic)
}

// CreateTopic godoc
// @Summary 创建主题
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body model.Topic true "主题"
// @Success 201 {object} util.Response{data=model.Topic}
// @Router /api/admin/topics [post]
func (c *ContentController) CreateTopic(ctx *gin.Context) {
	var topic model.Topic
	if err := ctx.ShouldBindJSON(&topic); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ContentService.CreateTopic(&topic); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, topic)
}

// UpdateTopic godoc
// @Summary 更新主题
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Param   body body model.Topic true "主题"
// @Success 200 {object} util.Response{data=model.Topic}
// @Router /api/admin/topics/{id} [put]
func (c *ContentController) UpdateTopic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var topic model.Topic
	if err := ctx.ShouldBindJSON(&topic); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	topic.ID = id
	if err := c.ContentService.UpdateTopic(&topic); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, topic)
}

// DeleteTopic godoc
// @Summary 删除主题
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/admin/topics/{id} [delete]
func (c *ContentController) DeleteTopic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteTopic(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 小节 ----

// GetSection godoc
// @Summary 小节详情（含题目与闪卡）
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Success 200 {object} util.Response{data=model.Section}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id} [get]
func (c *ContentController) GetSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	section, err := c.ContentService.GetSection(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// CreateSection godoc
// @Summary 创建小节
// @Description 解锁策略须为always/sequential/score_based之一
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body model.Section true "小节"
// @Success 201 {object} util.Response{data=model.Section}
// @Failure 400 {object} util.Response "解锁策略无效"
// @Router /api/admin/sections [post]
func (c *ContentController) CreateSection(ctx *gin.Context) {
	var section model.Section
	if err := ctx.ShouldBindJSON(&section); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ContentService.CreateSection(&section); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// UpdateSection godoc
// @Summary 更新小节
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Param   body body model.Section true "小节"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/admin/sections/{id} [put]
func (c *ContentController) UpdateSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var section model.Section
	if err := ctx.ShouldBindJSON(&section); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	section.ID = id
	if err := c.ContentService.UpdateSection(&section); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// DeleteSection godoc
// @Summary 删除小节
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{id} [delete]
func (c *ContentController) DeleteSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteSection(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 题目 ----

// ListQuestions godoc
// @Summary 小节题目列表
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/sections/{id}/questions [get]
func (c *ContentController) ListQuestions(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questions, err := c.ContentService.ListQuestions(sectionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// QuestionRequest 题目维护载荷，包含对前端隐藏的答案字段
// swagger:model QuestionRequest
type QuestionRequest struct {
	SectionID     uint                 `json:"sectionId" binding:"required"`
	Type          model.QuestionType   `json:"type" binding:"required"`
	Prompt        string               `json:"prompt" binding:"required"`
	OrderIndex    int                  `json:"orderIndex"`
	XP            int                  `json:"xp"`
	Options       model.StringList     `json:"options"`
	CorrectAnswer string               `json:"correctAnswer"`
	NumericAnswer float64              `json:"numericAnswer"`
	Tolerance     float64              `json:"tolerance"`
	Pairs         []model.MatchingPair `json:"pairs"`
	Explanation   string               `json:"explanation"`
}

func (r *QuestionRequest) toModel() *model.Question {
	return &model.Question{
		SectionID:     r.SectionID,
		Type:          r.Type,
		Prompt:        r.Prompt,
		OrderIndex:    r.OrderIndex,
		XP:            r.XP,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		NumericAnswer: r.NumericAnswer,
		Tolerance:     r.Tolerance,
		Pairs:         r.Pairs,
		Explanation:   r.Explanation,
	}
}

// CreateQuestion godoc
// @Summary 创建题目
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "答案载荷不完备"
// @Router /api/admin/questions [post]
func (c *ContentController) CreateQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q := req.toModel()
	if err := c.ContentService.CreateQuestion(q); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目ID"
// @Param   body body QuestionRequest true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{id} [put]
func (c *ContentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q := req.toModel()
	q.ID = id
	if err := c.ContentService.UpdateQuestion(q); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *ContentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteQuestion(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 闪卡 ----

// ListFlashcards godoc
// @Summary 小节闪卡列表
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "小节ID"
// @Success 200 {object} util.Response{data=[]model.Flashcard}
// @Router /api/sections/{id}/flashcards [get]
func (c *ContentController) ListFlashcards(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	cards, err := c.ContentService.ListFlashcards(sectionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cards)
}

// CreateFlashcard godoc
// @Summary 创建闪卡
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body model.Flashcard true "闪卡"
// @Success 201 {object} util.Response{data=model.Flashcard}
// @Router /api/admin/flashcards [post]
func (c *ContentController) CreateFlashcard(ctx *gin.Context) {
	var card model.Flashcard
	if err := ctx.ShouldBindJSON(&card); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ContentService.CreateFlashcard(&card); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, card)
}

// UpdateFlashcard godoc
// @Summary 更新闪卡
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "闪卡ID"
// @Param   body body model.Flashcard true "闪卡"
// @Success 200 {object} util.Response{data=model.Flashcard}
// @Router /api/admin/flashcards/{id} [put]
func (c *ContentController) UpdateFlashcard(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var card model.Flashcard
	if err := ctx.ShouldBindJSON(&card); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	card.ID = id
	if err := c.ContentService.UpdateFlashcard(&card); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, card)
}

// DeleteFlashcard godoc
// @Summary 删除闪卡（连同所有用户的复习进度）
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "闪卡ID"
// @Success 200 {object} util.Response
// @Router /api/admin/flashcards/{id} [delete]
func (c *ContentController) DeleteFlashcard(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteFlashcard(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
