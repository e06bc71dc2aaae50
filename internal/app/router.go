package app

import (
	"flightschool_backend/docs"
	"flightschool_backend/internal/config"
	"flightschool_backend/internal/middleware"
	"flightschool_backend/internal/model"
	"flightschool_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/healthz", c.health.HealthCheck)

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 时间窗：教员维护自己的，管理员可代操作
		availabilities := authGroup.Group("/availabilities")
		{
			availabilities.GET("", c.availability.List)

			manage := availabilities.Group("")
			manage.Use(middleware.RoleMiddleware(model.Instructor))
			{
				manage.POST("", c.availability.Create)
				manage.PUT("/:id", c.availability.Update)
				manage.DELETE("/:id", c.availability.Delete)
			}
		}

		// 预约生命周期
		bookings := authGroup.Group("/bookings")
		{
			bookings.POST("", middleware.RoleMiddleware(model.Student), c.booking.Create)
			bookings.GET("", c.booking.List)
			bookings.GET("/:id", c.booking.Get)
			bookings.POST("/:id/approve", middleware.RoleMiddleware(model.Admin), c.booking.Approve)
			bookings.POST("/:id/assign", middleware.RoleMiddleware(model.Admin), c.booking.Assign)
			bookings.POST("/:id/complete", middleware.RoleMiddleware(model.Instructor), c.booking.Complete)
			bookings.POST("/:id/cancel", c.booking.Cancel)
		}

		// 学习模块
		authGroup.GET("/courses", c.learning.ListCourses)
		authGroup.GET("/courses/:id", c.learning.GetCourse)
		authGroup.GET("/lessons/:id", c.learning.GetLesson)
		authGroup.POST("/lessons/:id/submit", middleware.RoleMiddleware(model.Student), c.learning.SubmitQuiz)
		authGroup.POST("/lessons/:id/sync-offline", middleware.RoleMiddleware(model.Student), c.learning.SyncOffline)
		authGroup.POST("/lessons/:id/complete", middleware.RoleMiddleware(model.Student), c.learning.CompleteTextLesson)
		authGroup.GET("/progress/courses/:id", c.learning.GetCourseProgress)
		authGroup.POST("/lessons/:id/attachment", middleware.RoleMiddleware(model.Instructor), c.learning.UploadLessonAttachment)
	}
}
