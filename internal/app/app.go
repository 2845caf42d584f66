package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/andy/facturas/internal/config"
	"github.com/andy/facturas/internal/crypto"
	"github.com/andy/facturas/internal/db"
	"github.com/andy/facturas/internal/mail"
	"github.com/andy/facturas/internal/render"
	"github.com/andy/facturas/internal/repository"
	"github.com/andy/facturas/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string // where SaveConfig writes, the default path when empty
	DB         *db.DB
	Logger     *zap.Logger

	// Repositories
	ClientRepo   repository.ClientRepository
	InvoiceRepo  repository.InvoiceRepository
	WorkItemRepo repository.WorkItemRepository

	// Services
	InvoiceService service.InvoiceService
	ReportService  service.ReportService
}

// New creates a new App instance, initializing all dependencies.
// A missing config file is created with defaults first.
func New(ctx context.Context) (*App, error) {
	path := config.DefaultConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.DefaultConfig().Save(path); err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.ConfigPath = path
	return a, nil
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	password := ""
	if cfg.Database.Driver == config.DriverSQLite && cfg.Database.Encrypted {
		password, err = databaseKey(cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
	}

	database, err := db.Open(cfg.Database, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", zap.String("driver", database.Driver))

	// Create repositories
	clientRepo := repository.NewClientRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	workItemRepo := repository.NewWorkItemRepo(database)

	a := &App{
		Config:       cfg,
		DB:           database,
		Logger:       logger,
		ClientRepo:   clientRepo,
		InvoiceRepo:  invoiceRepo,
		WorkItemRepo: workItemRepo,
	}
	a.buildServices()
	return a, nil
}

// buildServices creates the services from the current config
func (a *App) buildServices() {
	renderer := NewRenderer(a.Config, a.Logger)
	a.InvoiceService = service.NewInvoiceService(
		a.InvoiceRepo,
		renderer,
		mail.NewSMTPMailer(a.Config.Mail),
		a.Config.Invoice.OutputDir,
		a.Logger,
	)
	a.ReportService = service.NewReportService(a.InvoiceRepo, a.WorkItemRepo, renderer)
}

// NewRenderer builds the invoice renderer from the company and invoice settings
func NewRenderer(cfg *config.Config, logger *zap.Logger) *render.Renderer {
	layout := render.DefaultLayout()
	layout.TaxRate = cfg.TaxRate()

	return render.New(
		render.WithLayout(layout),
		render.WithCompany(render.Company{
			Name:    cfg.Company.Name,
			Owner:   cfg.Company.Owner,
			Address: cfg.Company.Address,
			TaxID:   cfg.Company.TaxID,
		}),
		render.WithLogo(cfg.ResolveLogoPath()),
		render.WithLogger(logger),
	)
}

// NewLogger writes JSON logs to the configured file. Logging to the terminal
// would corrupt the TUI, so an empty file disables logging.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{cfg.File}
	zcfg.ErrorOutputPaths = []string{cfg.File}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig validates and saves the current configuration to disk, then
// rebuilds the services so the new settings take effect
func (a *App) SaveConfig() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	path := a.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := a.Config.Save(path); err != nil {
		return err
	}
	a.buildServices()
	return nil
}

// databaseKey returns the sqlcipher key from the keyring, asking for it when
// none is stored yet
func databaseKey(dbPath string, logger *zap.Logger) (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	_, statErr := os.Stat(dbPath)
	isNew := errors.Is(statErr, os.ErrNotExist)

	password, err = promptForPassword(isNew)
	if err != nil {
		return "", fmt.Errorf("failed to read database key: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		// The key still works for this session
		logger.Warn("database key not stored", zap.Error(err))
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	return password, nil
}

// promptForPassword reads the database key from the terminal. A new
// database asks for confirmation.
func promptForPassword(confirm bool) (string, error) {
	fmt.Println()
	if confirm {
		fmt.Println("The invoice database will be encrypted with a password.")
		fmt.Println("This password will be stored securely in your system keyring.")
		fmt.Println()
	}
	fmt.Print("Database password: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	if confirm {
		fmt.Print("Confirm password: ")
		again, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read confirmation: %w", err)
		}

		if string(password) != string(again) {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return string(password), nil
}
