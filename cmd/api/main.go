package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/schoolworks/sis-api/api/swagger"
	"github.com/schoolworks/sis-api/internal/handler"
	"github.com/schoolworks/sis-api/internal/repository"
	"github.com/schoolworks/sis-api/internal/router"
	"github.com/schoolworks/sis-api/internal/service"
	"github.com/schoolworks/sis-api/pkg/cache"
	"github.com/schoolworks/sis-api/pkg/config"
	"github.com/schoolworks/sis-api/pkg/database"
	"github.com/schoolworks/sis-api/pkg/logger"
)

// @title School SIS API
// @version 1.0.0
// @description School information system: accounts, academics, attendance, finance and dashboards
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Dashboard.CacheEnabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
			cacheEnabled = false
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	userRepo := repository.NewUserRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	gradeRepo := repository.NewGradeLevelRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	dailyAttendanceRepo := repository.NewDailyAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	examGradeRepo := repository.NewExamGradeRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	salaryRepo := repository.NewSalaryRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	yearService := service.NewAcademicYearService(yearRepo, validate, logr)
	gradeService := service.NewGradeLevelService(gradeRepo, validate, logr)
	classService := service.NewClassService(classRepo, gradeRepo, yearRepo, validate, logr)
	subjectService := service.NewSubjectService(subjectRepo, classRepo, validate, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, classRepo, subjectRepo, validate, logr)
	assignmentService := service.NewTeacherAssignmentService(assignmentRepo, classRepo, subjectRepo, userRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classRepo, userRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, subjectRepo, userRepo, validate, logr)
	dailyAttendanceService := service.NewDailyAttendanceService(dailyAttendanceRepo, validate, logr)
	examService := service.NewExamService(examRepo, classRepo, subjectRepo, validate, logr)
	examGradeService := service.NewExamGradeService(examGradeRepo, examRepo, userRepo, validate, logr)
	feeService := service.NewFeeService(feeRepo, userRepo, validate, logr)
	notificationService := service.NewNotificationService(notificationRepo, classRepo, gradeRepo, validate, logr)
	salaryService := service.NewSalaryService(salaryRepo, userRepo, validate, logr)

	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Users:           userRepo,
		Years:           yearRepo,
		Classes:         classRepo,
		Subjects:        subjectRepo,
		Fees:            feeRepo,
		Notifications:   notificationRepo,
		Exams:           examRepo,
		Assignments:     assignmentRepo,
		Schedules:       scheduleRepo,
		Enrollments:     enrollmentRepo,
		Attendance:      attendanceRepo,
		DailyAttendance: dailyAttendanceRepo,
		Salaries:        salaryRepo,
		ExamGrades:      examGradeRepo,
		Cache:           cacheService,
		Logger:          logr,
		Config: service.DashboardServiceConfig{
			CacheTTL: cfg.Dashboard.CacheTTL,
		},
	})

	engine := router.New(router.Dependencies{
		Config:  cfg,
		Logger:  logr,
		Auth:    authService,
		Metrics: metricsService,
		Handlers: router.Handlers{
			Auth:            handler.NewAuthHandler(authService),
			Users:           handler.NewUserHandler(userService),
			AcademicYears:   handler.NewAcademicYearHandler(yearService),
			Grades:          handler.NewGradeHandler(gradeService),
			Classes:         handler.NewClassHandler(classService),
			Subjects:        handler.NewSubjectHandler(subjectService),
			Schedules:       handler.NewScheduleHandler(scheduleService),
			Assignments:     handler.NewAssignmentHandler(assignmentService),
			Enrollments:     handler.NewEnrollmentHandler(enrollmentService),
			Attendance:      handler.NewAttendanceHandler(attendanceService),
			DailyAttendance: handler.NewDailyAttendanceHandler(dailyAttendanceService),
			Exams:           handler.NewExamHandler(examService),
			ExamGrades:      handler.NewExamGradeHandler(examGradeService),
			Fees:            handler.NewFeeHandler(feeService),
			Notifications:   handler.NewNotificationHandler(notificationService),
			Salaries:        handler.NewSalaryHandler(salaryService),
			Dashboards:      handler.NewDashboardHandler(dashboardService),
			Exports:         handler.NewExportHandler(attendanceService, feeService, examGradeService),
			Metrics:         handler.NewMetricsHandler(metricsService),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
