// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authHTTP "github.com/coursekit/identity/internal/auth/http"
	authService "github.com/coursekit/identity/internal/auth/service"
	authUseCase "github.com/coursekit/identity/internal/auth/usecase"
	"github.com/coursekit/identity/internal/config"
	cryptoService "github.com/coursekit/identity/internal/crypto/service"
	"github.com/coursekit/identity/internal/database"
	"github.com/coursekit/identity/internal/http"
	"github.com/coursekit/identity/internal/metrics"
	outboxRepository "github.com/coursekit/identity/internal/outbox/repository"
	outboxUseCase "github.com/coursekit/identity/internal/outbox/usecase"
	userDomain "github.com/coursekit/identity/internal/user/domain"
	userHTTP "github.com/coursekit/identity/internal/user/http"
	userRepository "github.com/coursekit/identity/internal/user/repository"
	userUseCase "github.com/coursekit/identity/internal/user/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	fieldCipher     *cryptoService.FieldCipher
	passwordService authService.PasswordService
	tokenService    authService.TokenService

	// Repositories
	userRepo       userUseCase.UserRepository
	profileRepo    userUseCase.ProfileRepository
	enrollmentRepo userUseCase.EnrollmentRepository
	outboxRepo     outboxUseCase.OutboxEventRepository

	// Use Cases
	authUC   authUseCase.AuthUseCase
	userUC   userUseCase.UserUseCase
	outboxUC outboxUseCase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	fieldCipherInit     sync.Once
	passwordServiceInit sync.Once
	tokenServiceInit    sync.Once
	userRepoInit        sync.Once
	profileRepoInit     sync.Once
	enrollmentRepoInit  sync.Once
	outboxRepoInit      sync.Once
	authUCInit          sync.Once
	userUCInit          sync.Once
	outboxUCInit        sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op
// implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// FieldCipher returns the PII field cipher. Construction fails when the
// encryption key is absent or malformed; the single sync.Once guarantees the
// key is decoded exactly once per process.
func (c *Container) FieldCipher() (*cryptoService.FieldCipher, error) {
	c.fieldCipherInit.Do(func() {
		cipher, err := cryptoService.NewFieldCipher(c.config.EncryptionKey)
		if err != nil {
			c.initErrors["fieldCipher"] = fmt.Errorf("failed to create field cipher: %w", err)
			return
		}
		c.fieldCipher = cipher
	})
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}

// PasswordService returns the Argon2id password service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenService returns the JWT token service, instrumented with metrics.
func (c *Container) TokenService() (authService.TokenService, error) {
	c.tokenServiceInit.Do(func() {
		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["tokenService"] = err
			return
		}
		c.tokenService = authService.NewTokenServiceWithMetrics(
			authService.NewJWTService(c.config.JWTSecret),
			bm,
		)
	})
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.userRepo = userRepository.NewMySQLUserRepository(db)
		case "postgres":
			c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// ProfileRepository returns the profile repository instance.
func (c *Container) ProfileRepository() (userUseCase.ProfileRepository, error) {
	c.profileRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["profileRepo"] = fmt.Errorf("failed to get database for profile repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.profileRepo = userRepository.NewMySQLProfileRepository(db)
		case "postgres":
			c.profileRepo = userRepository.NewPostgreSQLProfileRepository(db)
		default:
			c.initErrors["profileRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["profileRepo"]; exists {
		return nil, storedErr
	}
	return c.profileRepo, nil
}

// EnrollmentRepository returns the enrollment repository instance.
func (c *Container) EnrollmentRepository() (userUseCase.EnrollmentRepository, error) {
	c.enrollmentRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["enrollmentRepo"] = fmt.Errorf(
				"failed to get database for enrollment repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.enrollmentRepo = userRepository.NewMySQLEnrollmentRepository(db)
		case "postgres":
			c.enrollmentRepo = userRepository.NewPostgreSQLEnrollmentRepository(db)
		default:
			c.initErrors["enrollmentRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["enrollmentRepo"]; exists {
		return nil, storedErr
	}
	return c.enrollmentRepo, nil
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	c.outboxRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["outboxRepo"] = fmt.Errorf("failed to get database for outbox repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.outboxRepo = outboxRepository.NewMySQLOutboxEventRepository(db)
		case "postgres":
			c.outboxRepo = outboxRepository.NewPostgreSQLOutboxEventRepository(db)
		default:
			c.initErrors["outboxRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// AuthUseCase returns the authentication use case, instrumented with metrics.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	c.authUCInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		tokenService, err := c.TokenService()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}

		c.authUC = authUseCase.NewAuthUseCaseWithMetrics(
			authUseCase.NewAuthUseCase(
				userRepo,
				cipher,
				c.PasswordService(),
				tokenService,
				c.config.JWTExpiration,
			),
			bm,
		)
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUC, nil
}

// UserUseCase returns the user management use case, instrumented with metrics.
func (c *Container) UserUseCase() (userUseCase.UserUseCase, error) {
	c.userUCInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		profileRepo, err := c.ProfileRepository()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		enrollmentRepo, err := c.EnrollmentRepository()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}
		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["userUseCase"] = err
			return
		}

		c.userUC = userUseCase.NewUserUseCaseWithMetrics(
			userUseCase.NewUserUseCase(
				txManager,
				userRepo,
				profileRepo,
				enrollmentRepo,
				outboxRepo,
				cipher,
				c.PasswordService(),
			),
			bm,
		)
	})
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUC, nil
}

// OutboxUseCase returns the outbox worker use case.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	c.outboxUCInit.Do(func() {
		logger := c.Logger()

		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
			return
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
			return
		}

		c.outboxUC = outboxUseCase.NewOutboxUseCase(
			outboxUseCase.Config{
				Interval:   c.config.OutboxWorkerInterval,
				BatchSize:  c.config.OutboxWorkerBatchSize,
				MaxRetries: c.config.OutboxWorkerMaxRetries,
			},
			txManager,
			outboxRepo,
			outboxUseCase.NewLogPublisher(logger),
			logger,
		)
	})
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUC, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		logger := c.Logger()

		db, err := c.DB()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		authUC, err := c.AuthUseCase()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		userUC, err := c.UserUseCase()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		tokenService, err := c.TokenService()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		authHandler := authHTTP.NewAuthHandler(authUC, logger)
		userHandler := userHTTP.NewUserHandler(userUC, logger)

		routerConfig := http.RouterConfig{
			RegisterHandler:         userHandler.RegisterHandler,
			LoginHandler:            authHandler.LoginHandler,
			WhoamiHandler:           authHandler.WhoamiHandler,
			GetUserHandler:          userHandler.GetHandler,
			ListUsersHandler:        userHandler.ListHandler,
			CreateEnrollmentHandler: userHandler.CreateEnrollmentHandler,
			ListEnrollmentsHandler:  userHandler.ListEnrollmentsHandler,

			AuthenticationMiddleware: authHTTP.AuthenticationMiddleware(tokenService, logger),
			InstructorMiddleware:     authHTTP.RequireRoleMiddleware(userDomain.RoleInstructor, logger),

			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
		}

		if c.config.RateLimitLoginEnabled {
			routerConfig.LoginRateLimitMiddleware = authHTTP.LoginRateLimitMiddleware(
				c.config.RateLimitLoginRequestsPerSec,
				c.config.RateLimitLoginBurst,
				logger,
			)
		}

		if provider, err := c.MetricsProvider(); err == nil && provider != nil {
			routerConfig.MetricsMiddleware = metrics.HTTPMetricsMiddleware(
				provider.MeterProvider(), c.config.MetricsNamespace)
		}

		c.httpServer = http.NewServer(
			routerConfig,
			db,
			c.config.ServerHost,
			c.config.ServerPort,
			logger,
		)
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
