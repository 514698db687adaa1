package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-billing-core/config"
	deliveryHttp "clinic-billing-core/internal/delivery/http"
	"clinic-billing-core/internal/delivery/http/handler"
	"clinic-billing-core/internal/delivery/http/middleware"
	"clinic-billing-core/internal/infrastructure/cache"
	"clinic-billing-core/internal/infrastructure/database"
	"clinic-billing-core/internal/repository"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/jwt"
	"clinic-billing-core/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Apply schema migrations before opening the pool
	if cfg.DB.Migrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logrus.Info("Database migrations applied")
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server := initializeServer(cfg, db, redisClient)
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	transactor := database.NewTransactor(db)
	patientRepo := repository.NewPatientRepository()
	doctorScheduleRepo := repository.NewDoctorScheduleRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	medicalTestRepo := repository.NewMedicalTestRepository()
	billRepo := repository.NewBillRepository()
	billItemRepo := repository.NewBillItemRepository()
	paymentRepo := repository.NewPaymentRepository()
	settingRepo := repository.NewSystemSettingRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	slotLocker := cache.NewRedisSlotLocker(redisClient, log, cfg.Lock.TTL, cfg.Lock.Wait)
	slotAllocator := service.NewSlotAllocator(log, appointmentRepo)
	settingService := service.NewSettingService(log, settingRepo)
	auditService := service.NewAuditService(log, auditLogRepo)
	notificationService := service.NewNotificationService(log, service.NewLogNotifier(log))

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(transactor, log, appointmentRepo, patientRepo, doctorScheduleRepo, slotAllocator, slotLocker, settingService, auditService)
	billUsecase := usecase.NewBillUsecase(transactor, log, billRepo, billItemRepo, appointmentRepo, patientRepo, medicalTestRepo, settingService, auditService)
	paymentUsecase := usecase.NewPaymentUsecase(transactor, log, billRepo, paymentRepo, appointmentRepo, auditService, notificationService)
	patientHistoryUsecase := usecase.NewPatientHistoryUsecase(transactor, log, patientRepo, appointmentRepo, billRepo, paymentRepo)
	systemSettingUsecase := usecase.NewSystemSettingUsecase(transactor, log, settingService, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	billHandler := handler.NewBillHandler(billUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientHistoryUsecase)
	systemSettingHandler := handler.NewSystemSettingHandler(systemSettingUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, billHandler, paymentHandler, patientHandler, systemSettingHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
