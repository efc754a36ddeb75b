// Package container wires the rendicion components together and manages
// their lifecycle.
package container

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/application/service"
	"github.com/garyjia/rendicion/internal/config"
	"github.com/garyjia/rendicion/internal/infrastructure/catalog"
	"github.com/garyjia/rendicion/internal/infrastructure/storage"
	httpserver "github.com/garyjia/rendicion/internal/interfaces/http"
	"github.com/garyjia/rendicion/pkg/database"
	"github.com/garyjia/rendicion/pkg/utils"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    port.TransactionManager
	repositories *RepositoryBundle
	catalog      *catalog.Source

	// Infrastructure - External
	scanning *ReaderBundle
	notifier port.Notifier

	// Infrastructure - Storage
	receipts *storage.ReceiptStore

	// Application
	services *ServiceBundle
	server   *httpserver.Server

	// Lifecycle
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Expenses  port.TripExpenseRepository
	Approvals port.TripApprovalRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Expenses  service.ExpenseService
	Approvals service.ApprovalService
	Exports   service.ExportService
	Scanner   service.ScanService
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database and repositories
// 2. Concept catalog
// 3. External clients (AI readers, OCR, notifier)
// 4. Receipt storage
// 5. Application services and the HTTP server
//
// A failed step releases whatever the earlier steps opened.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"database", c.initDatabase},
		{"catalog", c.initCatalog},
		{"external clients", c.initExternalClients},
		{"storage", c.initStorage},
		{"services", c.initServices},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			c.release()
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.logger.Info("Component initialized", zap.String("component", step.name))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.release()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %w", len(errs), errs[0])
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) release() []error {
	var errs []error

	// Stops the catalog watcher
	if c.cancel != nil {
		c.cancel()
	}

	if c.receipts != nil {
		if err := c.receipts.Close(); err != nil {
			c.logger.Error("Failed to close receipt storage", zap.Error(err))
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		c.receipts = nil
	}

	if c.scanning != nil {
		for _, closer := range c.scanning.Closers {
			if err := closer.Close(); err != nil {
				c.logger.Error("Failed to close reader", zap.Error(err))
				errs = append(errs, fmt.Errorf("close reader: %w", err))
			}
		}
		c.scanning = nil
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		c.db = nil
	}

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Services returns the application services. It is nil before Start.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Catalog returns the active catalog source. It is nil before Start.
func (c *Container) Catalog() *catalog.Source {
	return c.catalog
}

// Server returns the HTTP server. It is nil before Start.
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// Health reports the state of each component; nil means healthy.
func (c *Container) Health(ctx context.Context) map[string]error {
	status := make(map[string]error)

	switch {
	case c.db != nil:
		status["database"] = c.db.Health(ctx)
	case c.repositories != nil:
		status["database"] = nil
	default:
		status["database"] = fmt.Errorf("not initialized")
	}

	if c.catalog == nil || c.catalog.Catalog().Len() == 0 {
		status["catalog"] = fmt.Errorf("not initialized")
	} else {
		status["catalog"] = nil
	}

	if c.receipts == nil {
		status["storage"] = fmt.Errorf("not initialized")
	} else {
		status["storage"] = nil
	}

	if c.scanning == nil || (len(c.scanning.Readers) == 0 && c.scanning.OCR == nil) {
		status["scanner"] = fmt.Errorf("no receipt reader configured")
	} else {
		status["scanner"] = nil
	}

	return status
}

// initDatabase opens the store and builds the repositories.
func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.db = bundle.DB
	c.txManager = bundle.TxManager
	c.repositories = bundle.Repositories
	return nil
}

// initCatalog loads the catalog and, when configured, reloads it whenever
// the file changes.
func (c *Container) initCatalog() error {
	source, err := ProvideCatalog(c.config.Catalog, c.logger)
	if err != nil {
		return err
	}
	c.catalog = source

	if c.config.Catalog.Path != "" && c.config.Catalog.Watch {
		if err := source.Watch(c.ctx); err != nil {
			return fmt.Errorf("failed to watch catalog: %w", err)
		}
	}
	return nil
}

// initExternalClients builds the AI readers, OCR and the notifier.
func (c *Container) initExternalClients() error {
	scanning, err := ProvideReaders(c.ctx, c.config, c.catalog, c.logger)
	if err != nil {
		return err
	}
	c.scanning = scanning
	c.notifier = ProvideNotifier(c.config.Lark, c.logger)
	return nil
}

// initStorage opens the receipt directory.
func (c *Container) initStorage() error {
	store, err := ProvideStorage(c.config.Scanner, c.logger)
	if err != nil {
		return err
	}
	c.receipts = store
	return nil
}

// initServices builds the application services and the HTTP server.
func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.txManager,
		Catalog:   c.catalog,
		Scanning:  c.scanning,
		Storage:   c.receipts,
		Notifier:  c.notifier,
		ScanConfig: service.ScanConfig{
			Timeout:        c.config.Scanner.Timeout,
			MaxUploadBytes: c.config.Scanner.MaxUploadBytes,
		},
		Logger: c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services

	c.server = httpserver.NewServer(httpserver.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            c.config.Server.Port,
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
	}, httpserver.Services{
		Expenses:  services.Expenses,
		Approvals: services.Approvals,
		Scanner:   services.Scanner,
		Exports:   services.Exports,
		Catalog:   c.catalog,
		Health:    c.Health,
	}, utils.NewKVLogger(c.logger))

	return nil
}

var _ io.Closer = (*Container)(nil)
