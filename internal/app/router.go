package app

import (
	"learnquest_backend/docs"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/middleware"
	"learnquest_backend/internal/model"
	"learnquest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理端路由
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/achievements", c.achievement.ListDefinitions)
	}
	router.GET("/health", c.health.HealthCheck)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.GET("/user/overview", c.user.GetOverview)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)

	// 内容浏览
	rg.GET("/subjects", c.content.ListSubjects)
	rg.GET("/subjects/:id", c.content.GetSubject)
	rg.GET("/topics/:id", c.content.GetTopic)
	rg.GET("/sections/:id", c.content.GetSection)
	rg.GET("/sections/:id/questions", c.content.ListQuestions)
	rg.GET("/sections/:id/flashcards", c.content.ListFlashcards)
	rg.GET("/sections/:id/media", c.media.List)

	// 学习视图
	rg.GET("/learning/topics/:topicId/sections", c.learning.GetTopicSections)
	rg.GET("/learning/sections/:sectionId/due-cards", c.learning.GetDueFlashcards)
	rg.GET("/learning/topics/:topicId/quiz", c.learning.GetRandomQuiz)

	// 进度写入的唯一入口
	rg.POST("/progress/interactions", c.progress.RecordInteraction)

	// 成就与排行榜
	rg.GET("/achievements/mine", c.achievement.GetMine)
	rg.GET("/achievements/leaderboard", c.achievement.GetLeaderboard)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		admin.POST("/subjects", c.content.CreateSubject)
		admin.PUT("/subjects/:id", c.content.UpdateSubject)
		admin.DELETE("/subjects/:id", c.content.DeleteSubject)

		admin.POST("/topics", c.content.CreateTopic)
		admin.PUT("/topics/:id", c.content.UpdateTopic)
		admin.DELETE("/topics/:id", c.content.DeleteTopic)

		admin.POST("/sections", c.content.CreateSection)
		admin.PUT("/sections/:id", c.content.UpdateSection)
		admin.DELETE("/sections/:id", c.content.DeleteSection)

		admin.POST("/questions", c.content.CreateQuestion)
		admin.PUT("/questions/:id", c.content.UpdateQuestion)
		admin.DELETE("/questions/:id", c.content.DeleteQuestion)

		admin.POST("/flashcards", c.content.CreateFlashcard)
		admin.PUT("/flashcards/:id", c.content.UpdateFlashcard)
		admin.DELETE("/flashcards/:id", c.content.DeleteFlashcard)

		admin.POST("/sections/:id/media", c.media.Upload)
		admin.DELETE("/media/:id", c.media.Delete)
	}
}
