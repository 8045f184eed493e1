package app

import (
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/controller"
	"edunest_backend/internal/middleware"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/service"
	"edunest_backend/pkg/configwatcher"
	"edunest_backend/pkg/database"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"edunest_backend/pkg/security"
	"edunest_backend/pkg/tracing"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 暂存上传文件超过这个时间视为残留
const tempUploadMaxAge = 24 * time.Hour

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Origins         *security.OriginList
	services        *services
	cron            *cron.Cron
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	section     *repository.SectionRepository
	lecture     *repository.LectureRepository
	enrollment  *repository.EnrollmentRepository
	progress    *repository.ProgressRepository
	review      *repository.ReviewRepository
	testimonial *repository.TestimonialRepository
	assignment  *repository.AssignmentRepository
	submission  *repository.SubmissionRepository
	message     *repository.MessageRepository
	calendar    *repository.CalendarRepository
	session     *repository.SessionRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	upload      *service.UploadService
	course      *service.CourseService
	curriculum  *service.CurriculumService
	progress    *service.ProgressService
	enrollment  *service.EnrollmentService
	review      *service.ReviewService
	testimonial *service.TestimonialService
	instructor  *service.InstructorService
	assignment  *service.AssignmentService
	calendar    *service.CalendarService
	message     *service.MessageService
	messageHub  *service.MessageHub
}

type controllers struct {
	auth       *controller.AuthController
	course     *controller.CourseController
	curriculum *controller.CurriculumController
	progress   *controller.ProgressController
	enrollment *controller.EnrollmentController
	review     *controller.ReviewController
	assignment *controller.AssignmentController
	message    *controller.MessageController
	calendar   *controller.CalendarController
	instructor *controller.InstructorController
	upload     *controller.UploadController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		section:     repository.NewSectionRepository(db),
		lecture:     repository.NewLectureRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
		review:      repository.NewReviewRepository(db),
		testimonial: repository.NewTestimonialRepository(db),
		assignment:  repository.NewAssignmentRepository(db),
		submission:  repository.NewSubmissionRepository(db),
		message:     repository.NewMessageRepository(db),
		calendar:    repository.NewCalendarRepository(db),
	}
	// 没有 Redis 时不登记会话和在线状态
	if rdb != nil {
		repos.session = repository.NewSessionRepository(rdb)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	// 接口变量必须是真正的 nil，不能是带类型的空指针
	var sessions service.SessionStore
	if repos.session != nil {
		sessions = repos.session
	}

	s.storage = service.NewStorageService(cfg)
	s.upload = service.NewUploadService(s.storage, cfg.Upload)
	s.auth = service.NewAuthService(repos.user, sessions, cfg)
	s.user = service.NewUserService(repos.user)

	s.course = service.NewCourseService(db, repos.course, repos.section, repos.lecture, repos.enrollment, s.storage, cfg.Upload)
	s.progress = service.NewProgressService(db, repos.course, repos.section, repos.lecture, repos.enrollment, repos.progress)
	s.curriculum = service.NewCurriculumService(db, s.course, s.progress, repos.course, repos.section, repos.lecture, repos.enrollment)
	s.enrollment = service.NewEnrollmentService(db, repos.course, repos.enrollment)
	s.review = service.NewReviewService(db, repos.review, repos.course, repos.enrollment, repos.user)
	s.testimonial = service.NewTestimonialService(repos.testimonial)
	s.instructor = service.NewInstructorService(repos.user, repos.course, repos.enrollment)
	s.assignment = service.NewAssignmentService(db, s.course, repos.assignment, repos.submission, repos.section, repos.enrollment)
	s.calendar = service.NewCalendarService(repos.calendar, repos.assignment, repos.enrollment, repos.course)

	s.messageHub = service.NewMessageHub(rdb, repos.session, a.Origins.Allowed)
	go s.messageHub.Run()

	s.message = service.NewMessageService(repos.message, repos.user, s.messageHub)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user, cfg.Session),
		course:     controller.NewCourseController(s.course),
		curriculum: controller.NewCurriculumController(s.curriculum),
		progress:   controller.NewProgressController(s.progress),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		review:     controller.NewReviewController(s.review),
		assignment: controller.NewAssignmentController(s.assignment),
		message:    controller.NewMessageController(s.message, s.messageHub),
		calendar:   controller.NewCalendarController(s.calendar),
		instructor: controller.NewInstructorController(s.instructor, s.testimonial),
		upload:     controller.NewUploadController(s.upload),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(a.Origins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 在已有连接上组装路由和服务，不启动定时任务，测试直接使用
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Origins: security.NewOriginList(cfg.CORS.AllowedOrigins),
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, cfg, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Origins.Set(newCfg.CORS.AllowedOrigins)
	})

	return app
}

// NewApp 初始化日志、数据库和 Redis 后组装应用
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		logger.Log.Info("Redis disabled, running in single-instance mode")
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Server.Mode)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	app.startBackgroundTasks()
	return app, nil
}

func (a *App) startBackgroundTasks() {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Log))
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	if schedule := a.Config.Jobs.ReconcileSchedule; schedule != "" {
		_, err := c.AddFunc(schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if err := a.services.progress.RecalculateAll(ctx); err != nil {
				logger.Log.Error("Progress reconciliation failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Log.Error("Invalid reconcile schedule", zap.String("schedule", schedule), zap.Error(err))
		}
	}

	if schedule := a.Config.Jobs.TempCleanupSchedule; schedule != "" {
		_, err := c.AddFunc(schedule, func() {
			removed, err := a.services.upload.CleanupTemp(tempUploadMaxAge)
			if err != nil {
				logger.Log.Error("Temp upload cleanup failed", zap.Error(err))
				return
			}
			if removed > 0 {
				logger.Log.Info("Temp uploads cleaned", zap.Int("removed", removed))
			}
		})
		if err != nil {
			logger.Log.Error("Invalid temp cleanup schedule", zap.String("schedule", schedule), zap.Error(err))
		}
	}

	c.Start()
	a.cron = c
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// Close 停止消息中心和定时任务，Run 退出前调用
func (a *App) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	// 清理 WebSocket连接和Redis在线状态
	if a.services != nil && a.services.messageHub != nil {
		a.services.messageHub.Stop()
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
		cancel()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.ConfigPath != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.ConfigPath, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	a.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}
