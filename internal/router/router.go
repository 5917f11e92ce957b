package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/handler"
	"github.com/schoolworks/sis-api/internal/middleware"
	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	"github.com/schoolworks/sis-api/pkg/config"
	"github.com/schoolworks/sis-api/pkg/logger"
	corsmiddleware "github.com/schoolworks/sis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolworks/sis-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth            *handler.AuthHandler
	Users           *handler.UserHandler
	AcademicYears   *handler.AcademicYearHandler
	Grades          *handler.GradeHandler
	Classes         *handler.ClassHandler
	Subjects        *handler.SubjectHandler
	Schedules       *handler.ScheduleHandler
	Assignments     *handler.AssignmentHandler
	Enrollments     *handler.EnrollmentHandler
	Attendance      *handler.AttendanceHandler
	DailyAttendance *handler.DailyAttendanceHandler
	Exams           *handler.ExamHandler
	ExamGrades      *handler.ExamGradeHandler
	Fees            *handler.FeeHandler
	Notifications   *handler.NotificationHandler
	Salaries        *handler.SalaryHandler
	Dashboards      *handler.DashboardHandler
	Exports         *handler.ExportHandler
	Metrics         *handler.MetricsHandler
}

// Dependencies carries everything New needs to assemble the engine.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Auth     *service.AuthService
	Metrics  *service.MetricsService
	Handlers Handlers
}

// New assembles the gin engine with the full middleware chain and all
// route groups.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", deps.Handlers.Metrics.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.Handlers.Auth.Login)
		auth.POST("/refresh", deps.Handlers.Auth.Refresh)

		authed := auth.Group("", middleware.JWT(deps.Auth))
		authed.POST("/logout", deps.Handlers.Auth.Logout)
		authed.POST("/change-password", deps.Handlers.Auth.ChangePassword)
		authed.GET("/me", deps.Handlers.Auth.Me)
	}

	protected := api.Group("", middleware.JWT(deps.Auth))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	adminStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	adminStaffTeacher := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleTeacher)

	users := protected.Group("/users")
	{
		users.GET("", adminStaff, deps.Handlers.Users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleStaff), middleware.SelfAccess), deps.Handlers.Users.Get)
		users.POST("", adminOnly, deps.Handlers.Users.Provision)
		users.PUT("/:id", adminOnly, deps.Handlers.Users.Update)
		users.DELETE("/:id", adminOnly, deps.Handlers.Users.Deactivate)
		users.POST("/links", adminOnly, deps.Handlers.Users.LinkParentStudent)
	}

	years := protected.Group("/academic-years")
	{
		years.GET("", deps.Handlers.AcademicYears.List)
		years.GET("/active", deps.Handlers.AcademicYears.GetActive)
		years.GET("/:id", deps.Handlers.AcademicYears.Get)
		years.POST("", adminOnly, deps.Handlers.AcademicYears.Create)
		years.PUT("/:id", adminOnly, deps.Handlers.AcademicYears.Update)
		years.POST("/:id/activate", adminOnly, deps.Handlers.AcademicYears.Activate)
		years.POST("/:id/deactivate", adminOnly, deps.Handlers.AcademicYears.Deactivate)
		years.DELETE("/:id", adminOnly, deps.Handlers.AcademicYears.Delete)
	}

	grades := protected.Group("/grades")
	{
		grades.GET("", deps.Handlers.Grades.List)
		grades.GET("/:id", deps.Handlers.Grades.Get)
		grades.POST("", adminOnly, deps.Handlers.Grades.Create)
		grades.PUT("/:id", adminOnly, deps.Handlers.Grades.Update)
		grades.DELETE("/:id", adminOnly, deps.Handlers.Grades.Delete)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", deps.Handlers.Classes.List)
		classes.GET("/:id", deps.Handlers.Classes.Get)
		classes.GET("/:id/timetable", deps.Handlers.Schedules.Timetable)
		classes.POST("", adminStaff, deps.Handlers.Classes.Create)
		classes.PUT("/:id", adminStaff, deps.Handlers.Classes.Update)
		classes.POST("/:id/deactivate", adminStaff, deps.Handlers.Classes.Deactivate)
		classes.DELETE("/:id", adminOnly, deps.Handlers.Classes.Delete)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", deps.Handlers.Subjects.List)
		subjects.GET("/:id", deps.Handlers.Subjects.Get)
		subjects.POST("", adminStaff, deps.Handlers.Subjects.Create)
		subjects.PUT("/:id", adminStaff, deps.Handlers.Subjects.Update)
		subjects.POST("/:id/deactivate", adminStaff, deps.Handlers.Subjects.Deactivate)
		subjects.DELETE("/:id", adminOnly, deps.Handlers.Subjects.Delete)
	}

	schedules := protected.Group("/schedules")
	{
		schedules.GET("", deps.Handlers.Schedules.List)
		schedules.GET("/:id", deps.Handlers.Schedules.Get)
		schedules.POST("", adminStaff, deps.Handlers.Schedules.Create)
		schedules.PUT("/:id", adminStaff, deps.Handlers.Schedules.Update)
		schedules.DELETE("/:id", adminStaff, deps.Handlers.Schedules.Delete)
	}

	assignments := protected.Group("/assignments")
	{
		assignments.GET("", deps.Handlers.Assignments.List)
		assignments.POST("", adminStaff, deps.Handlers.Assignments.Create)
		assignments.DELETE("/:id", adminStaff, deps.Handlers.Assignments.Delete)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.GET("", deps.Handlers.Enrollments.List)
		enrollments.POST("", adminStaff, deps.Handlers.Enrollments.Create)
		enrollments.DELETE("/:id", adminStaff, deps.Handlers.Enrollments.Delete)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.GET("", deps.Handlers.Attendance.List)
		attendance.POST("", adminStaffTeacher, deps.Handlers.Attendance.Record)
		attendance.PUT("/:id", adminStaffTeacher, deps.Handlers.Attendance.Correct)
		attendance.DELETE("/:id", adminStaff, deps.Handlers.Attendance.Delete)
	}

	dailyAttendance := protected.Group("/daily-attendance")
	{
		dailyAttendance.GET("/:kind", adminStaff, deps.Handlers.DailyAttendance.List)
		dailyAttendance.POST("/:kind", adminStaff, deps.Handlers.DailyAttendance.Record)
		dailyAttendance.PUT("/:kind/:id", adminStaff, deps.Handlers.DailyAttendance.Correct)
	}

	exams := protected.Group("/exams")
	{
		exams.GET("", deps.Handlers.Exams.List)
		exams.GET("/:id", deps.Handlers.Exams.Get)
		exams.POST("", adminStaffTeacher, deps.Handlers.Exams.Create)
		exams.PUT("/:id", adminStaffTeacher, deps.Handlers.Exams.Update)
		exams.DELETE("/:id", adminStaff, deps.Handlers.Exams.Delete)
	}

	examGrades := protected.Group("/exam-grades")
	{
		examGrades.GET("", deps.Handlers.ExamGrades.List)
		examGrades.POST("", adminStaffTeacher, deps.Handlers.ExamGrades.Record)
		examGrades.PUT("/:id", adminStaffTeacher, deps.Handlers.ExamGrades.Correct)
		examGrades.DELETE("/:id", adminStaff, deps.Handlers.ExamGrades.Delete)
	}

	fees := protected.Group("/fees")
	{
		fees.GET("", adminStaff, deps.Handlers.Fees.List)
		fees.GET("/summary", adminStaff, deps.Handlers.Fees.Summary)
		fees.GET("/:id", adminStaff, deps.Handlers.Fees.Get)
		fees.POST("", adminStaff, deps.Handlers.Fees.Create)
		fees.PUT("/:id", adminStaff, deps.Handlers.Fees.Update)
		fees.POST("/:id/payments", adminStaff, deps.Handlers.Fees.RecordPayment)
		fees.DELETE("/:id", adminOnly, deps.Handlers.Fees.Delete)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", deps.Handlers.Notifications.List)
		notifications.GET("/:id", deps.Handlers.Notifications.Get)
		notifications.POST("", adminStaff, deps.Handlers.Notifications.Create)
		notifications.PUT("/:id/active", adminStaff, deps.Handlers.Notifications.SetActive)
		notifications.DELETE("/:id", adminStaff, deps.Handlers.Notifications.Delete)
	}

	salaries := protected.Group("/salaries")
	{
		salaries.POST("", adminOnly, deps.Handlers.Salaries.Record)
		salaries.GET("/:id", adminOnly, deps.Handlers.Salaries.History)
		salaries.DELETE("/:id", adminOnly, deps.Handlers.Salaries.Delete)
	}

	dashboards := protected.Group("/dashboards")
	{
		dashboards.GET("/admin", middleware.RequireRoles(models.RoleAdmin), deps.Handlers.Dashboards.Admin)
		dashboards.GET("/staff", middleware.RequireRoles(models.RoleStaff), deps.Handlers.Dashboards.Staff)
		dashboards.GET("/teacher", middleware.RequireRoles(models.RoleTeacher), deps.Handlers.Dashboards.Teacher)
		dashboards.GET("/student", middleware.RequireRoles(models.RoleStudent), deps.Handlers.Dashboards.Student)
		dashboards.GET("/parent", middleware.RequireRoles(models.RoleParent), deps.Handlers.Dashboards.Parent)
	}

	if deps.Config.Exports.Enabled {
		exports := protected.Group("/exports", adminStaff)
		exports.GET("/attendance", deps.Handlers.Exports.Attendance)
		exports.GET("/fees", deps.Handlers.Exports.Fees)
		exports.GET("/exam-grades", deps.Handlers.Exports.ExamGrades)
	}

	protected.GET("/metrics/snapshot", adminOnly, deps.Handlers.Metrics.Snapshot)

	return r
}
