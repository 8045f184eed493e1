package app

import (
	"edunest_backend/docs"
	"edunest_backend/internal/config"
	"edunest_backend/internal/middleware"
	"edunest_backend/internal/model"
	"edunest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	authMW := middleware.AuthMiddleware(cfg, a.services.auth)
	tryAuthMW := middleware.TryAuthMiddleware(cfg, a.services.auth)

	// 1. 公共路由(无需登录，登录后可见自己的草稿)
	a.registerPublicRoutes(router.Group("/api", tryAuthMW), c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(authMW)
	{
		a.registerUserRoutes(authGroup, c)

		// 讲师接口，管理员同样放行
		instructor := authGroup.Group("")
		instructor.Use(middleware.RoleMiddleware(model.Instructor))
		a.registerInstructorRoutes(instructor, c)

		// 管理员接口
		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		admin.POST("/testimonials", c.instructor.CreateTestimonial)
	}
}

func (a *App) registerPublicRoutes(public *gin.RouterGroup, c *controllers) {
	public.GET("/health", c.health.HealthCheck)
	public.POST("/register", c.auth.Register)
	public.POST("/login", c.auth.Login)

	// 课程目录
	public.GET("/courses", c.course.ListCourses)
	public.GET("/courses/categories", c.course.Categories)
	public.GET("/courses/:id", c.course.GetCourse)
	public.GET("/courses/:id/sections", c.curriculum.ListSections)
	public.GET("/sections/:id/lectures", c.curriculum.ListLectures)
	public.GET("/courses/:id/reviews", c.review.ListReviews)

	// 讲师和评价展示
	public.GET("/instructors", c.instructor.ListInstructors)
	public.GET("/instructors/:id", c.instructor.GetInstructor)
	public.GET("/testimonials", c.instructor.ListTestimonials)
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/user", c.auth.CurrentUser)
	rg.PUT("/user/profile", c.auth.UpdateProfile)

	// 课时内容和学习进度
	rg.GET("/lectures/:id", c.curriculum.GetLecture)
	rg.GET("/lectures/:id/progress", c.progress.GetLectureProgress)
	rg.POST("/lectures/:id/progress", c.progress.UpdateLectureProgress)
	rg.GET("/courses/:id/progress", c.progress.GetCourseProgress)

	// 选课
	rg.GET("/enrollments", c.enrollment.ListEnrollments)
	rg.POST("/enrollments", c.enrollment.Enroll)
	rg.GET("/courses/:id/enrollment", c.enrollment.GetEnrollment)

	rg.POST("/courses/:id/reviews", c.review.CreateReview)

	// 作业
	rg.GET("/courses/:id/assignments", c.assignment.ListAssignments)
	rg.GET("/assignments/:id", c.assignment.GetAssignment)
	rg.POST("/assignments/:id/submissions", c.assignment.Submit)

	// 私信
	rg.GET("/messages/conversations", c.message.Conversations)
	rg.GET("/messages/unread-count", c.message.UnreadCount)
	rg.GET("/messages/:userId", c.message.Thread)
	rg.POST("/messages", c.message.Send)
	rg.GET("/ws", c.message.ServeWs)

	// 日历
	rg.GET("/calendar/events", c.calendar.ListEvents)
	rg.POST("/calendar/events", c.calendar.CreateEvent)
	rg.PUT("/calendar/events/:id", c.calendar.UpdateEvent)
	rg.DELETE("/calendar/events/:id", c.calendar.DeleteEvent)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/instructor/dashboard", c.instructor.Dashboard)

	// 课程管理
	rg.POST("/courses", c.course.CreateCourse)
	rg.PUT("/courses/:id", c.course.UpdateCourse)
	rg.DELETE("/courses/:id", c.course.DeleteCourse)
	rg.POST("/courses/:id/thumbnail", c.course.UploadThumbnail)

	// 章节和课时
	rg.POST("/courses/:id/sections", c.curriculum.CreateSection)
	rg.PUT("/sections/:id", c.curriculum.UpdateSection)
	rg.DELETE("/sections/:id", c.curriculum.DeleteSection)
	rg.POST("/sections/:id/lectures", c.curriculum.CreateLecture)
	rg.PUT("/lectures/:id", c.curriculum.UpdateLecture)
	rg.DELETE("/lectures/:id", c.curriculum.DeleteLecture)

	// 作业管理
	rg.POST("/courses/:id/assignments", c.assignment.CreateAssignment)
	rg.PUT("/assignments/:id", c.assignment.UpdateAssignment)
	rg.DELETE("/assignments/:id", c.assignment.DeleteAssignment)
	rg.GET("/assignments/:id/submissions", c.assignment.ListSubmissions)
	rg.PUT("/submissions/:id/grade", c.assignment.Grade)

	// 视频和资料上传
	rg.POST("/upload/video", c.upload.UploadVideo)
	rg.POST("/upload/document", c.upload.UploadDocument)
}
