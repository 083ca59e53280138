package controller

import (
	"learnquest_backend/internal/service"
	"learnquest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// GetMine godoc
// @Summary 我的成就
// @Description 返回已解锁成就徽章与排行榜名次
// @Tags 成就
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.UserAchievements}
// @Failure 404 {object} util.Response "画像不存在"
// @Router /api/achievements/mine [get]
func (c *AchievementController) GetMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AchievementService.GetUserAchievements(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetLeaderboard godoc
// @Summary 经验排行榜
// @Description 按总经验降序的用户榜单，带一分钟缓存
// @Tags 成就
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "名次数量，默认10，最大100"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	entries, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// ListDefinitions godoc
// @Summary 成就目录
// @Description 平台可获得的全部成就定义
// @Tags 成就
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/achievements [get]
func (c *AchievementController) ListDefinitions(ctx *gin.Context) {
	defs, err := c.AchievementService.ListDefinitions()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, defs)
}
