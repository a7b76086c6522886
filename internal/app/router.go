package app

import (
	"time"

	"onlinecourse_backend/docs"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(可选登录)
	a.registerPublicRoutes(router, c, repos, cfg)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(&cfg.JWT), middleware.UserSyncMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c, cfg)

		// 3. 管理员/讲师接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 游客可访问，登录用户额外返回报名状态
		courses := public.Group("/courses")
		courses.Use(middleware.TryAuthMiddleware(&cfg.JWT), middleware.UserSyncMiddleware(repos.user))
		{
			courses.GET("", c.course.ListCourses)
			courses.GET("/:id", c.course.GetCourse)
		}
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers, cfg *config.Config) {
	// 报名与考试
	rg.POST("/courses/:id/enroll", c.course.Enroll)

	submit := []gin.HandlerFunc{c.course.Submit}
	if n := cfg.RateLimit.SubmitPerMinute; n > 0 {
		submit = append([]gin.HandlerFunc{security.RateLimiter(n, time.Minute, security.ByContextValue("user_id"))}, submit...)
	}
	rg.POST("/courses/:id/submit", submit...)
	rg.GET("/courses/:id/submissions", c.course.ListSubmissions)
	rg.GET("/courses/:id/submissions/:submissionId/result", c.course.Result)

	// 学员资料
	rg.GET("/learner/profile", c.learner.GetProfile)
	rg.PUT("/learner/profile", c.learner.UpdateProfile)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleInstructor, model.RoleAdmin))
	{
		admin.POST("/catalog/import", c.admin.ImportCatalog)
		admin.DELETE("/courses/:id", c.admin.DeleteCourse)
		admin.GET("/courses/:id/gradebook", c.admin.ExportGradebook)
		admin.POST("/enrollments/reconcile", c.admin.ReconcileEnrollments)
	}
}
