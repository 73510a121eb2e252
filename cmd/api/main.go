package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rosterd/roster-sync-api/api/swagger"
	"github.com/rosterd/roster-sync-api/internal/handler"
	"github.com/rosterd/roster-sync-api/internal/middleware"
	"github.com/rosterd/roster-sync-api/internal/repository"
	"github.com/rosterd/roster-sync-api/internal/service"
	"github.com/rosterd/roster-sync-api/pkg/cache"
	"github.com/rosterd/roster-sync-api/pkg/config"
	"github.com/rosterd/roster-sync-api/pkg/database"
	"github.com/rosterd/roster-sync-api/pkg/jobs"
	"github.com/rosterd/roster-sync-api/pkg/logger"
	corsmiddleware "github.com/rosterd/roster-sync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rosterd/roster-sync-api/pkg/middleware/requestid"
)

// @title Roster Sync API
// @version 1.0.0
// @description Roster synchronization and enrollment consistency service
// @BasePath /api
// @schemes http

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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressionRepo := repository.NewProgressionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	gate := service.NewImportGate()
	validate := validator.New()

	courseImportSvc := service.NewCourseImportService(courseRepo, db, gate, metricsSvc, cfg.Imports, logr)
	studentImportSvc := service.NewStudentImportService(studentRepo, preferenceRepo, enrollmentRepo, db, gate, metricsSvc, validate, cfg.Imports, logr)
	enrollmentSvc := service.NewEnrollmentService(courseRepo, enrollmentRepo, studentRepo, db, metricsSvc, logr)
	progressionSvc := service.NewProgressionService(studentRepo, progressionRepo, db, logr)
	courseSvc := service.NewCourseService(courseRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, preferenceRepo, courseRepo, enrollmentRepo, db, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, courseRepo, preferenceRepo, progressionRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(studentRepo, courseRepo, logr)

	importHandler := handler.NewImportHandler(courseImportSvc, studentImportSvc, dashboardSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, progressionSvc, dashboardSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/imports/courses", importHandler.ImportCourses)
		api.POST("/imports/students", importHandler.ImportStudents)

		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)
		api.DELETE("/students/:id", studentHandler.Delete)
		api.PATCH("/students/:id/completed", studentHandler.FlipCompleted)
		api.PATCH("/students/:id/approved", studentHandler.FlipApproved)

		api.GET("/students/:id/enrollments", enrollmentHandler.Schedule)
		api.POST("/students/:id/enrollments", enrollmentHandler.Add)
		api.PUT("/students/:id/enrollments", enrollmentHandler.ReplaceAll)
		api.DELETE("/students/:id/enrollments/:courseId", enrollmentHandler.Remove)
		api.POST("/students/:id/groupings", enrollmentHandler.AddByGroupings)
		api.DELETE("/students/:id/groupings", enrollmentHandler.RemoveAllGroupings)
		api.GET("/students/:id/eligible-courses/:code", enrollmentHandler.EligibleCourses)

		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/code/:code", courseHandler.SectionsByCode)

		api.GET("/dashboard/jumbotron", dashboardHandler.Jumbotron)
		api.GET("/dashboard/most-popular-preferences", dashboardHandler.MostPopularPreferences)
		api.GET("/dashboard/most-popular-course-registrations", dashboardHandler.MostPopularRegistrations)
		api.GET("/dashboard/schedule-progression", dashboardHandler.ScheduleProgression)

		api.GET("/exports/roster", exportHandler.Roster)
		api.GET("/exports/catalog", exportHandler.Catalog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconcileQueue := jobs.NewQueue("progression-reconcile", func(ctx context.Context, _ jobs.Job) error {
		return progressionSvc.Reconcile(ctx)
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	reconcileQueue.Start(ctx)
	defer reconcileQueue.Stop()
	if err := reconcileQueue.RunEvery(cfg.Progression.ReconcileInterval, func() jobs.Job {
		return jobs.Job{ID: uuid.NewString(), Type: "reconcile"}
	}); err != nil {
		logr.Sugar().Warnw("failed to schedule reconcile", "error", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
