package router

import (
	"time"

	"obetrack/internal/api/handlers"
	"obetrack/internal/api/middleware"
	"obetrack/internal/config"
	"obetrack/internal/domain/academic"
	"obetrack/internal/infrastructure/cache"
	"obetrack/internal/infrastructure/database"
	"obetrack/internal/infrastructure/queue"
	"obetrack/internal/infrastructure/repository"
	interfaces "obetrack/internal/interfaces/infrastructure"
	"obetrack/internal/service"
	"obetrack/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterComponents bundles the engine with the queue so the server command
// can start and stop the workers around the HTTP lifecycle.
type RouterComponents struct {
	Router       *gin.Engine
	QueueService interfaces.QueueService
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(db *gorm.DB) (*RouterComponents, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(cors.Default())
	r.Use(gin.Recovery())

	cfg := config.Get()

	programRepo := repository.NewProgramRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cloRepo := repository.NewCloRepository(db)
	ploRepo := repository.NewPloRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	resultRepo := repository.NewResultRepository(db)
	ploCacheRepo := repository.NewPloCacheRepository(db)

	sqlxDB, err := database.NewSqlxDB(db)
	if err != nil {
		return nil, err
	}
	reportRepo := repository.NewReportRepository(db, sqlxDB)

	var reportCache interfaces.ReportCache
	if cfg.Cache.Enabled {
		reportCache = cache.NewRedisCacheWithConfig(&cfg.Cache)
		logger.Info("Report cache enabled at %s:%d", cfg.Cache.Host, cfg.Cache.Port)
	}

	attainmentService := service.NewAttainmentService(resultRepo, ploCacheRepo, reportCache)
	resultService := service.NewResultService(offeringRepo, studentRepo, facultyRepo, userRepo, resultRepo, attainmentService, cfg.Upload.ChunkSize)
	offeringService := service.NewOfferingService(offeringRepo, courseRepo, semesterRepo, facultyRepo)
	cloService := service.NewCloService(courseRepo, cloRepo)
	ploService := service.NewPloService(programRepo, ploRepo)
	mappingService := service.NewMappingService(courseRepo, cloRepo, ploRepo, mappingRepo)
	batchService := service.NewBatchService(batchRepo, semesterRepo, programRepo, studentRepo)
	studentService := service.NewStudentService(batchRepo, studentRepo)
	reportService := service.NewReportService(reportRepo, ploCacheRepo, studentRepo, batchRepo, courseRepo,
		reportCache, time.Duration(cfg.Cache.ReportTTL)*time.Second)

	queueService := queue.NewInMemoryQueue(cfg.Queue.BufferSize, cfg.Queue.Workers)
	queueService.SetAttainmentService(attainmentService)

	healthHandler := handlers.NewHealthHandler(db)
	batchHandler := handlers.NewBatchHandler(batchService, studentService)
	offeringHandler := handlers.NewOfferingHandler(offeringService)
	outcomeHandler := handlers.NewOutcomeHandler(cloService, ploService, mappingService)
	resultHandler := handlers.NewResultHandler(resultService, queueService)
	reportHandler := handlers.NewReportHandler(reportService)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/live", healthHandler.LivenessCheck)

	admin := middleware.RequireRole(academic.RoleAdmin, academic.RoleSuperAdmin)
	uploader := middleware.RequireRole(academic.RoleFaculty, academic.RoleAdmin, academic.RoleSuperAdmin)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Principal())
	{
		batches := v1.Group("/batches")
		{
			batches.POST("", admin, batchHandler.Create)
			batches.GET("", batchHandler.List)
			batches.GET("/:id", batchHandler.Get)
			batches.PUT("/:id", admin, batchHandler.Update)
			batches.DELETE("/:id", admin, batchHandler.Delete)
			batches.POST("/:id/next-semester", admin, batchHandler.MoveToNextSemester)
			batches.POST("/:id/graduate", admin, batchHandler.Graduate)
			batches.POST("/:id/students", admin, batchHandler.PreRegisterStudents)
			batches.GET("/:id/students", batchHandler.ListStudents)
		}

		offerings := v1.Group("/offerings")
		{
			offerings.POST("", admin, offeringHandler.Create)
			offerings.GET("", offeringHandler.List)
			offerings.GET("/:id", offeringHandler.Get)
			offerings.PUT("/:id", admin, offeringHandler.Update)
			offerings.DELETE("/:id", admin, offeringHandler.Delete)
			offerings.GET("/instructor/:id", offeringHandler.ListByInstructor)
			offerings.GET("/semester/:id", offeringHandler.ListBySemester)
		}

		clos := v1.Group("/clos")
		{
			clos.POST("", admin, outcomeHandler.CreateClo)
			clos.GET("/:id", outcomeHandler.GetClo)
			clos.PUT("/:id", admin, outcomeHandler.UpdateClo)
			clos.DELETE("/:id", admin, outcomeHandler.DeleteClo)
		}

		plos := v1.Group("/plos")
		{
			plos.POST("", admin, outcomeHandler.CreatePlo)
			plos.GET("/:id", outcomeHandler.GetPlo)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("/:id/clos", outcomeHandler.ListClosByCourse)
			courses.GET("/:id/mappings", outcomeHandler.ListMappingsByCourse)
			courses.DELETE("/:id/mappings", admin, outcomeHandler.DeleteCourseMappings)
		}

		programs := v1.Group("/programs")
		{
			programs.GET("/:id/plos", outcomeHandler.ListPlosByProgram)
		}

		mappings := v1.Group("/mappings")
		{
			mappings.POST("/bulk", admin, outcomeHandler.ReplaceMappings)
			mappings.DELETE("/:id", admin, outcomeHandler.DeleteMapping)
		}

		results := v1.Group("/results")
		{
			results.POST("/upload", uploader, resultHandler.Upload)
			results.POST("/recalculate/:id", admin, resultHandler.RecalculateBatch)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/batches", reportHandler.ListBatches)
			reports.GET("/batches/:id", reportHandler.BatchReport)
			reports.GET("/batches/:id/statistics", reportHandler.BatchStatistics)
			reports.GET("/students/:rollNo", reportHandler.StudentReport)
		}
	}

	return &RouterComponents{
		Router:       r,
		QueueService: queueService,
	}, nil
}
