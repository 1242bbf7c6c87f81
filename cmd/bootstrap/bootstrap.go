package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee-role-api/config"
	deliveryHttp "employee-role-api/internal/delivery/http"
	"employee-role-api/internal/delivery/http/handler"
	"employee-role-api/internal/delivery/http/middleware"
	domainRepo "employee-role-api/internal/domain/repository"
	"employee-role-api/internal/infrastructure/cache"
	"employee-role-api/internal/infrastructure/database"
	"employee-role-api/internal/repository"
	"employee-role-api/internal/service"
	"employee-role-api/internal/usecase"
	"employee-role-api/pkg/hash"
	"employee-role-api/pkg/jwt"
	"employee-role-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const memoryCacheEntries = 1000

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
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize employee cache
	var employeeCache domainRepo.EmployeeCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		employeeCache = cache.NewRedisEmployeeCache(redisClient, cfg.Cache.TTL)
		logrus.Info("Redis connected successfully")
	} else {
		employeeCache = cache.NewMemoryEmployeeCache(cfg.Cache.TTL, memoryCacheEntries)
		logrus.Info("Redis disabled, using in-process employee cache")
	}

	// Initialize all layers
	server, err := initializeServer(cfg, db, employeeCache)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, falling back to info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, employeeCache domainRepo.EmployeeCache) (*http.Server, error) {
	log := logrus.StandardLogger()

	jwtService := jwt.NewJWTService(cfg.JWT)
	hasher := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	customValidator := validator.NewValidator()

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	employeeUsecase := usecase.NewEmployeeUsecase(log, employeeRepo, roleRepo, employeeCache, hasher, auditService)
	authUsecase := usecase.NewAuthUsecase(log, employeeUsecase, hasher, jwtService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	if cfg.App.SeedEnabled {
		if err := service.NewSeedService(log, employeeUsecase).SeedOnStartup(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed data: %w", err)
		}
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	employeeHandler := handler.NewEmployeeHandler(employeeUsecase, customValidator)
	roleHandler := handler.NewRoleHandler(employeeUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, middleware.NewAccessPolicy(), log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.Auth.LoginRateLimitRPM, cfg.Auth.TrustedProxies)

	// Initialize router
	router := deliveryHttp.NewRouter(log, authHandler, employeeHandler, roleHandler, auditLogHandler, authMiddleware, corsMiddleware, rateLimitMiddleware)

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
