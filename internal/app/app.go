package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/controller"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/service"
	"flightschool_backend/pkg/database"
	"flightschool_backend/pkg/logger"
	"flightschool_backend/pkg/monitoring"
	"flightschool_backend/pkg/security"
	"flightschool_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)

	stopWorker chan struct{}
}

type repositories struct {
	user          *repository.UserRepository
	tenant        *repository.TenantRepository
	availability  *repository.AvailabilityRepository
	booking       *repository.BookingRepository
	course        *repository.CourseRepository
	quizAttempt   *repository.QuizAttemptRepository
	progress      *repository.ProgressRepository
	escalationJob *repository.EscalationJobRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	availability *service.AvailabilityService
	booking      *service.BookingService
	escalation   *service.EscalationService
	course       *service.CourseService
	quiz         *service.QuizService
	notifier     service.Notifier
}

type controllers struct {
	auth         *controller.AuthController
	availability *controller.AvailabilityController
	booking      *controller.BookingController
	learning     *controller.LearningController
	health       *controller.HealthController
}

// RegisterConfigCallback 注册配置热加载回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热加载入口，由 configwatcher 触发
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		tenant:        repository.NewTenantRepository(db),
		availability:  repository.NewAvailabilityRepository(db),
		booking:       repository.NewBookingRepository(db),
		course:        repository.NewCourseRepository(db),
		quizAttempt:   repository.NewQuizAttemptRepository(db),
		progress:      repository.NewProgressRepository(db),
		escalationJob: repository.NewEscalationJobRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.notifier = service.NewLogNotifier()
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.tenant, cfg)
	s.availability = service.NewAvailabilityService(repos.availability, rdb)
	s.booking = service.NewBookingService(
		repos.booking,
		repos.availability,
		repos.user,
		repos.escalationJob,
		s.notifier,
		rdb,
		cfg,
		db,
	)
	s.escalation = service.NewEscalationService(
		repos.escalationJob,
		repos.booking,
		repos.user,
		s.notifier,
		cfg,
	)
	s.course = service.NewCourseService(repos.course, repos.progress, s.storage)
	s.quiz = service.NewQuizService(repos.course, repos.quizAttempt, repos.progress, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		availability: controller.NewAvailabilityController(s.availability),
		booking:      controller.NewBookingController(s.booking),
		learning:     controller.NewLearningController(s.course, s.quiz),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 启动 SLA 升级任务消费协程（单协程串行消费）
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		interval := time.Duration(a.Config.Booking.WorkerIntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopWorker:
				return
			case <-ticker.C:
				if err := s.escalation.ProcessDueJobs(); err != nil {
					logger.Log.Error("escalation worker error", zap.Error(err))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		stopWorker: make(chan struct{}),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 预约/升级配置支持热加载
	app.RegisterConfigCallback(services.booking.ApplyConfig)
	app.RegisterConfigCallback(services.escalation.ApplyConfig)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("flightschool-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.stopWorker)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
