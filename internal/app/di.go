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

	"github.com/allisson/healthshare/internal/config"
	"github.com/allisson/healthshare/internal/database"
	distributionUseCase "github.com/allisson/healthshare/internal/distribution/usecase"
	"github.com/allisson/healthshare/internal/http"
	linkHTTP "github.com/allisson/healthshare/internal/link/http"
	linkService "github.com/allisson/healthshare/internal/link/service"
	linkUseCase "github.com/allisson/healthshare/internal/link/usecase"
	"github.com/allisson/healthshare/internal/metrics"
	reportsHTTP "github.com/allisson/healthshare/internal/reports/http"
	reportsRepository "github.com/allisson/healthshare/internal/reports/repository"
	reportsUseCase "github.com/allisson/healthshare/internal/reports/usecase"
	sharingHTTP "github.com/allisson/healthshare/internal/sharing/http"
	sharingRepository "github.com/allisson/healthshare/internal/sharing/repository"
	sharingService "github.com/allisson/healthshare/internal/sharing/service"
	sharingUseCase "github.com/allisson/healthshare/internal/sharing/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
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
	secretService sharingService.SecretService
	kmsService    linkService.KMSService
	linkKey       []byte

	// Repositories
	tokenRepo  sharingUseCase.TokenRepository
	grantRepo  sharingUseCase.GrantRepository
	reportRepo reportsUseCase.ReportRepository

	// Use Cases
	tokenUseCase        sharingUseCase.TokenUseCase
	accessUseCase       sharingUseCase.AccessUseCase
	reportUseCase       reportsUseCase.ReportUseCase
	codecUseCase        linkUseCase.CodecUseCase
	distributionUseCase distributionUseCase.DistributionUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	txManagerInit           sync.Once
	metricsProviderInit     sync.Once
	businessMetricsInit     sync.Once
	secretServiceInit       sync.Once
	linkKeyInit             sync.Once
	tokenRepoInit           sync.Once
	grantRepoInit           sync.Once
	reportRepoInit          sync.Once
	tokenUseCaseInit        sync.Once
	accessUseCaseInit       sync.Once
	reportUseCaseInit       sync.Once
	codecUseCaseInit        sync.Once
	distributionUseCaseInit sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
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

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
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

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// used when metrics are disabled.
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

// SecretService returns the share token secret service.
func (c *Container) SecretService() sharingService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = sharingService.NewSecretService()
	})
	return c.secretService
}

// LinkKey returns the resolved 32-byte server secret for bearer link key
// derivation, unwrapping it through KMS when a key URI is configured.
func (c *Container) LinkKey() ([]byte, error) {
	c.linkKeyInit.Do(func() {
		if c.config.LinkKey == "" {
			c.initErrors["linkKey"] = fmt.Errorf("LINK_KEY is not configured")
			return
		}
		if c.kmsService == nil {
			c.kmsService = linkService.NewKMSService()
		}
		key, err := linkService.ResolveLinkKey(
			context.Background(),
			c.kmsService,
			c.config.LinkKey,
			c.config.LinkKMSKeyURI,
		)
		if err != nil {
			c.initErrors["linkKey"] = fmt.Errorf("failed to resolve link key: %w", err)
			return
		}
		c.linkKey = key
	})
	if storedErr, exists := c.initErrors["linkKey"]; exists {
		return nil, storedErr
	}
	return c.linkKey, nil
}

// TokenRepository returns the share token repository instance.
func (c *Container) TokenRepository() (sharingUseCase.TokenRepository, error) {
	c.tokenRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["tokenRepo"] = fmt.Errorf("failed to get database for token repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.tokenRepo = sharingRepository.NewMySQLTokenRepository(db)
		case "postgres":
			c.tokenRepo = sharingRepository.NewPostgreSQLTokenRepository(db)
		default:
			c.initErrors["tokenRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// GrantRepository returns the grant repository instance.
func (c *Container) GrantRepository() (sharingUseCase.GrantRepository, error) {
	c.grantRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["grantRepo"] = fmt.Errorf("failed to get database for grant repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.grantRepo = sharingRepository.NewMySQLGrantRepository(db)
		case "postgres":
			c.grantRepo = sharingRepository.NewPostgreSQLGrantRepository(db)
		default:
			c.initErrors["grantRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["grantRepo"]; exists {
		return nil, storedErr
	}
	return c.grantRepo, nil
}

// ReportRepository returns the report repository instance.
func (c *Container) ReportRepository() (reportsUseCase.ReportRepository, error) {
	c.reportRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["reportRepo"] = fmt.Errorf("failed to get database for report repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.reportRepo = reportsRepository.NewMySQLReportRepository(db)
		case "postgres":
			c.reportRepo = reportsRepository.NewPostgreSQLReportRepository(db)
		default:
			c.initErrors["reportRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["reportRepo"]; exists {
		return nil, storedErr
	}
	return c.reportRepo, nil
}

// TokenUseCase returns the share token use case wrapped with metrics.
func (c *Container) TokenUseCase() (sharingUseCase.TokenUseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		uc, err := c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		c.tokenUseCase = uc
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AccessUseCase returns the authorization evaluator wrapped with metrics.
func (c *Container) AccessUseCase() (sharingUseCase.AccessUseCase, error) {
	c.accessUseCaseInit.Do(func() {
		grantRepo, err := c.GrantRepository()
		if err != nil {
			c.initErrors["accessUseCase"] = err
			return
		}
		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["accessUseCase"] = err
			return
		}
		c.accessUseCase = sharingUseCase.NewAccessUseCaseWithMetrics(
			sharingUseCase.NewAccessUseCase(grantRepo),
			bm,
		)
	})
	if storedErr, exists := c.initErrors["accessUseCase"]; exists {
		return nil, storedErr
	}
	return c.accessUseCase, nil
}

// ReportUseCase returns the evaluator-guarded report use case.
func (c *Container) ReportUseCase() (reportsUseCase.ReportUseCase, error) {
	c.reportUseCaseInit.Do(func() {
		reportRepo, err := c.ReportRepository()
		if err != nil {
			c.initErrors["reportUseCase"] = err
			return
		}
		access, err := c.AccessUseCase()
		if err != nil {
			c.initErrors["reportUseCase"] = err
			return
		}
		c.reportUseCase = reportsUseCase.NewReportUseCase(reportRepo, access)
	})
	if storedErr, exists := c.initErrors["reportUseCase"]; exists {
		return nil, storedErr
	}
	return c.reportUseCase, nil
}

// CodecUseCase returns the bearer link codec wrapped with metrics.
func (c *Container) CodecUseCase() (linkUseCase.CodecUseCase, error) {
	c.codecUseCaseInit.Do(func() {
		uc, err := c.initCodecUseCase()
		if err != nil {
			c.initErrors["codecUseCase"] = err
			return
		}
		c.codecUseCase = uc
	})
	if storedErr, exists := c.initErrors["codecUseCase"]; exists {
		return nil, storedErr
	}
	return c.codecUseCase, nil
}

// DistributionUseCase returns the distribution façade wrapped with metrics.
func (c *Container) DistributionUseCase() (distributionUseCase.DistributionUseCase, error) {
	c.distributionUseCaseInit.Do(func() {
		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["distributionUseCase"] = err
			return
		}
		c.distributionUseCase = distributionUseCase.NewDistributionUseCaseWithMetrics(
			distributionUseCase.NewDistributionUseCase(c.config),
			bm,
		)
	})
	if storedErr, exists := c.initErrors["distributionUseCase"]; exists {
		return nil, storedErr
	}
	return c.distributionUseCase, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are
// disabled.
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

// initLogger creates a structured logger based on the configured log level.
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

// initTokenUseCase assembles the share token use case with its dependencies.
func (c *Container) initTokenUseCase() (sharingUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, err
	}
	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, err
	}
	grantRepo, err := c.GrantRepository()
	if err != nil {
		return nil, err
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	return sharingUseCase.NewTokenUseCaseWithMetrics(
		sharingUseCase.NewTokenUseCase(c.config, txManager, tokenRepo, grantRepo, c.SecretService()),
		bm,
	), nil
}

// initCodecUseCase assembles the bearer link codec with its dependencies.
func (c *Container) initCodecUseCase() (linkUseCase.CodecUseCase, error) {
	linkKey, err := c.LinkKey()
	if err != nil {
		return nil, err
	}
	reportRepo, err := c.ReportRepository()
	if err != nil {
		return nil, err
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	return linkUseCase.NewCodecUseCaseWithMetrics(
		linkUseCase.NewCodecUseCase(c.config, linkKey, reportRepo, c.SecretService()),
		bm,
	), nil
}

// initHTTPServer assembles the HTTP server with all domain handlers.
func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, err
	}
	reportUseCase, err := c.ReportUseCase()
	if err != nil {
		return nil, err
	}
	codecUseCase, err := c.CodecUseCase()
	if err != nil {
		return nil, err
	}
	distUseCase, err := c.DistributionUseCase()
	if err != nil {
		return nil, err
	}

	logger := c.Logger()
	handlers := &http.Handlers{
		Token:  sharingHTTP.NewTokenHandler(tokenUseCase, logger),
		Grant:  sharingHTTP.NewGrantHandler(tokenUseCase, logger),
		Report: reportsHTTP.NewReportHandler(reportUseCase, logger),
		Link:   linkHTTP.NewLinkHandler(codecUseCase, distUseCase, logger),
	}

	return http.NewServer(c.config, db, handlers, logger), nil
}
