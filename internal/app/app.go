package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"onlinecourse_backend/internal/catalog"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/controller"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/pkg/configwatcher"
	"onlinecourse_backend/pkg/database"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/security"
	"onlinecourse_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
	tracer          *sdktrace.TracerProvider
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	question   *repository.QuestionRepository
	submission *repository.SubmissionRepository
	instructor *repository.InstructorRepository
	learner    *repository.LearnerRepository
}

type services struct {
	storage    *service.StorageService
	cache      *service.CourseCache
	course     *service.CourseService
	enrollment *service.EnrollmentService
	submission *service.SubmissionService
	exam       *service.ExamService
	catalog    *service.CatalogService
	gradebook  *service.GradebookService
	learner    *service.LearnerService
}

type controllers struct {
	course  *controller.CourseController
	admin   *controller.AdminController
	learner *controller.LearnerController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 将热更新的配置分发给已注册的回调
func (a *App) ReloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		question:   repository.NewQuestionRepository(db),
		submission: repository.NewSubmissionRepository(db),
		instructor: repository.NewInstructorRepository(db),
		learner:    repository.NewLearnerRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.storage = storage
	s.cache = service.NewCourseCache(rdb, cfg.Redis.CourseListTTL)

	s.course = service.NewCourseService(repos.course, repos.enrollment, s.storage, s.cache)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, s.cache)
	s.submission = service.NewSubmissionService(repos.enrollment, repos.question, repos.submission, cfg.Exam.StrictChoices)
	s.exam = service.NewExamService(repos.question, repos.submission, cfg.Exam.PassPercent)
	s.catalog = service.NewCatalogService(db, repos.course, repos.instructor, s.storage, s.cache)
	s.gradebook = service.NewGradebookService(repos.course, repos.question, repos.submission, s.exam)
	s.learner = service.NewLearnerService(repos.learner)

	// 评分阈值与严格校验支持热更新
	a.RegisterConfigCallback(func(c *config.Config) {
		s.exam.SetPassPercent(c.Exam.PassPercent)
		s.submission.SetStrictChoices(c.Exam.StrictChoices)
		logger.L().Info("exam settings reloaded",
			zap.Float64("pass_percent", c.Exam.PassPercent),
			zap.Bool("strict_choices", c.Exam.StrictChoices),
		)
	})

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		course:  controller.NewCourseController(s.course, s.enrollment, s.submission, s.exam),
		admin:   controller.NewAdminController(s.catalog, s.gradebook, s.enrollment),
		learner: controller.NewLearnerController(s.learner),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window, security.ByClientIP))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New builds the application on an already opened database. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

// NewApp 初始化日志、数据库、Redis 和链路追踪后构建应用
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式下默认不自动迁移，需 -migrate 显式开启
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if !cfg.MigrateOnly {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app, err := New(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled && !cfg.MigrateOnly {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// Seed imports a YAML catalog file.
func (a *App) Seed(ctx context.Context, path string) (*service.ImportResult, error) {
	doc, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	return a.services.catalog.Import(ctx, doc)
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.services.enrollment.RunReconciler(ctx, a.Config.Enrollment.ReconcileInterval)

	if a.Config.ConfigFile != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, a.ReloadConfig); err != nil {
				logger.L().Error("config watcher stopped", zap.Error(err))
			}
		}()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startBackgroundTasks(ctx)

	// 启动服务器
	go func() {
		logger.L().Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("Shutting down server...")

	// 停止后台任务
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.L().Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.L().Info("Server exiting")
	_ = logger.L().Sync()
}
