package container

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/ai"
	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/application/service"
	"github.com/garyjia/rendicion/internal/config"
	"github.com/garyjia/rendicion/internal/infrastructure/catalog"
	"github.com/garyjia/rendicion/internal/infrastructure/document"
	"github.com/garyjia/rendicion/internal/infrastructure/export"
	"github.com/garyjia/rendicion/internal/infrastructure/external/gemini"
	infraLark "github.com/garyjia/rendicion/internal/infrastructure/external/lark"
	"github.com/garyjia/rendicion/internal/infrastructure/external/openai"
	"github.com/garyjia/rendicion/internal/infrastructure/ocr"
	"github.com/garyjia/rendicion/internal/infrastructure/ocr/tesseract"
	"github.com/garyjia/rendicion/internal/infrastructure/persistence/memory"
	"github.com/garyjia/rendicion/internal/infrastructure/persistence/repository"
	"github.com/garyjia/rendicion/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/rendicion/internal/infrastructure/storage"
	"github.com/garyjia/rendicion/pkg/database"
	"github.com/garyjia/rendicion/pkg/utils"
)

// DatabaseBundle holds the repositories and, for SQLite, the connection
// they share. DB is nil for the in-memory driver.
type DatabaseBundle struct {
	DB           *database.DB
	TxManager    port.TransactionManager
	Repositories *RepositoryBundle
}

// ReaderBundle holds the scanning adapters. Closers are released when the
// container shuts down.
type ReaderBundle struct {
	Readers    []port.ReceiptReader
	OCR        port.TextRecognizer
	Rasterizer port.DocumentRasterizer
	Closers    []io.Closer
}

// ServiceDeps contains the dependencies needed to build the services
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Catalog    port.CatalogProvider
	Scanning   *ReaderBundle
	Storage    port.FileStorage
	Notifier   port.Notifier
	ScanConfig service.ScanConfig
	Logger     *zap.Logger
}

// ProvideDatabase opens the configured store. SQLite databases are migrated
// from the embedded schema files before the repositories are built.
func ProvideDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if cfg.Driver == config.DriverMemory {
		logger.Info("Using in-memory repositories")
		return &DatabaseBundle{
			TxManager: memory.TransactionManager{},
			Repositories: &RepositoryBundle{
				Expenses:  memory.NewTripExpenseRepository(),
				Approvals: memory.NewTripApprovalRepository(),
			},
		}, nil
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(database.Migrations, database.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	txManager := sqlite.NewDB(db.DB, logger)

	return &DatabaseBundle{
		DB:        db,
		TxManager: txManager,
		Repositories: &RepositoryBundle{
			Expenses:  repository.NewTripExpenseRepository(txManager, logger),
			Approvals: repository.NewTripApprovalRepository(txManager, logger),
		},
	}, nil
}

// ProvideCatalog loads the concept catalog, from cfg.Path when set
func ProvideCatalog(cfg config.CatalogConfig, logger *zap.Logger) (*catalog.Source, error) {
	source, err := catalog.NewSource(cfg.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept catalog: %w", err)
	}
	return source, nil
}

// ProvideReaders builds the AI reader for the selected provider plus the
// local OCR fallback and the PDF rasterizer.
func ProvideReaders(ctx context.Context, cfg *config.Config, catalogs port.CatalogProvider, logger *zap.Logger) (*ReaderBundle, error) {
	bundle := &ReaderBundle{
		Rasterizer: document.NewRasterizer(cfg.Scanner.PDFDPI, logger),
	}

	if cfg.Scanner.Provider != config.ProviderNone {
		prompts, err := ai.LoadPrompts(cfg.Scanner.PromptsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}

		switch cfg.Scanner.Provider {
		case config.ProviderOpenAI:
			bundle.Readers = append(bundle.Readers, openai.NewReader(openai.Config{
				APIKey:  cfg.OpenAI.APIKey,
				Model:   cfg.OpenAI.Model,
				BaseURL: cfg.OpenAI.BaseURL,
			}, prompts, catalogs, logger))
		case config.ProviderGemini:
			reader, err := gemini.NewReader(ctx, gemini.Config{
				APIKey: cfg.Gemini.APIKey,
				Model:  cfg.Gemini.Model,
			}, prompts, catalogs, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create gemini reader: %w", err)
			}
			bundle.Readers = append(bundle.Readers, reader)
			bundle.Closers = append(bundle.Closers, reader)
		default:
			return nil, fmt.Errorf("unknown scanner provider %q", cfg.Scanner.Provider)
		}
	}

	if cfg.Scanner.OCREnabled {
		engine := tesseract.NewEngine(tesseract.Config{Languages: cfg.Scanner.OCRLanguages})
		bundle.OCR = ocr.NewRecognizer(engine, logger)
	}

	logger.Info("Receipt readers configured",
		zap.String("provider", cfg.Scanner.Provider),
		zap.Int("readers", len(bundle.Readers)),
		zap.Bool("ocr", bundle.OCR != nil))

	return bundle, nil
}

// ProvideNotifier returns the Lark notifier when credentials are configured
// and a logging no-op otherwise.
func ProvideNotifier(cfg config.LarkConfig, logger *zap.Logger) port.Notifier {
	if !cfg.NotificationsEnabled() {
		return infraLark.NewNopNotifier(logger)
	}

	client := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		ChatID:    cfg.ChatID,
		BaseURL:   cfg.BaseURL,
	}, logger)
	return infraLark.NewNotifier(client, logger)
}

// ProvideStorage opens the directory where receipt originals are kept
func ProvideStorage(cfg config.ScannerConfig, logger *zap.Logger) (*storage.ReceiptStore, error) {
	store, err := storage.NewReceiptStore(cfg.ReceiptsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt storage: %w", err)
	}
	return store, nil
}

// ProvideServices builds the application services
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	kv := utils.NewKVLogger(deps.Logger)

	expenses := service.NewExpenseService(deps.Repos.Expenses, deps.Repos.Approvals, deps.Catalog, kv)
	approvals := service.NewApprovalService(deps.Repos.Expenses, deps.Repos.Approvals, deps.TxManager, deps.Notifier, kv)
	exports := service.NewExportService(expenses, export.NewXLSXWriter(deps.Logger), kv)

	var (
		readers    []port.ReceiptReader
		recognizer port.TextRecognizer
		rasterizer port.DocumentRasterizer
	)
	if deps.Scanning != nil {
		readers = deps.Scanning.Readers
		recognizer = deps.Scanning.OCR
		rasterizer = deps.Scanning.Rasterizer
	}
	scanner := service.NewScanService(readers, recognizer, rasterizer, deps.Storage, deps.Catalog, deps.ScanConfig, kv)

	return &ServiceBundle{
		Expenses:  expenses,
		Approvals: approvals,
		Exports:   exports,
		Scanner:   scanner,
	}, nil
}
