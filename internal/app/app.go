package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andy/invoicedesk/internal/awsconf"
	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/crypto"
	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/esign"
	"github.com/andy/invoicedesk/internal/kvstore"
	"github.com/andy/invoicedesk/internal/logging"
	"github.com/andy/invoicedesk/internal/notify"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/andy/invoicedesk/internal/storage"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *db.DB // nil unless a SQL backend is selected

	// Console is the logger's terminal sink; hold it while a full-screen UI runs
	Console *logging.Switch

	// Repositories
	SignatureStore repository.SignatureStore
	EnvelopeStore  repository.EnvelopeStore

	// Integrations, nil when the capability is off
	Relay    notify.Relay
	Provider esign.Provider

	// Services
	SignatureService service.SignatureService
	InvoiceService   service.InvoiceService
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Resolving secrets and capabilities
// 3. Opening the selected signature store
// 4. Creating integrations
// 5. Creating services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	keyring := crypto.NewKeyring()
	if err := cfg.Resolve(keyring); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return NewWithConfig(ctx, cfg, keyring)
}

// NewWithConfig creates an App with a resolved config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config, keyring crypto.Keyring) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	console := logging.NewSwitch(os.Stderr)
	logger := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: console,
	})

	a := &App{Config: cfg, Logger: logger, Console: console}

	if err := a.openStore(ctx, keyring); err != nil {
		return nil, err
	}

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Capabilities.EmailRelay {
		a.Relay = notify.NewEmailJSRelay(notify.EmailJSConfig{
			Endpoint:   cfg.Email.Endpoint,
			PublicKey:  cfg.Email.PublicKey,
			PrivateKey: cfg.Email.PrivateKey,
			ServiceID:  cfg.Email.ServiceID,
			TemplateID: cfg.Email.TemplateID,
		}, nil)
	}
	if cfg.Capabilities.ESignProvider {
		a.Provider = esign.NewDocuSign(esign.DocuSignConfig{
			BaseURL:        cfg.ESign.BaseURL,
			OAuthURL:       cfg.ESign.OAuthURL,
			AccountID:      cfg.ESign.AccountID,
			IntegrationKey: cfg.ESign.IntegrationKey,
			UserID:         cfg.ESign.UserID,
			PrivateKey:     []byte(cfg.ESign.PrivateKey),
			ReturnOrigin:   cfg.Server.Origin,
		}, nil, logger.Named("esign"))
	}

	logger.Debug("capabilities resolved",
		zap.Bool("email_relay", cfg.Capabilities.EmailRelay),
		zap.Bool("esign_provider", cfg.Capabilities.ESignProvider),
		zap.String("storage", cfg.Storage.Backend),
	)

	a.SignatureService = service.NewSignatureService(
		a.SignatureStore,
		a.EnvelopeStore,
		a.Provider,
		cfg.Server.Origin,
		logger.Named("signatures"),
	)

	dispatcher := notify.NewDispatcher(a.Relay, cfg.Email.AttachPDF, logger.Named("notify"))

	a.InvoiceService = service.NewInvoiceService(
		render.NewPDFRenderer(),
		archive,
		dispatcher,
		a.SignatureService,
		logger.Named("invoices"),
	)

	return a, nil
}

func (a *App) openStore(ctx context.Context, keyring crypto.Keyring) error {
	cfg := a.Config

	switch cfg.Storage.Backend {
	case config.BackendLocal:
		kv, err := kvstore.Open(cfg.Storage.LocalDir)
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}
		repo := repository.NewLocalRepo(kv, a.Logger.Named("store"))
		a.SignatureStore, a.EnvelopeStore = repo, repo

	case config.BackendSQLite:
		password, err := keyring.Get(crypto.KeyDatabase)
		if err != nil {
			// No key exists, prompt user to set one
			fmt.Println("Setting up database encryption for the first time...")
			password, err = promptForPassword()
			if err != nil {
				return fmt.Errorf("failed to set password: %w", err)
			}
			if err := keyring.Set(crypto.KeyDatabase, password); err != nil {
				return fmt.Errorf("failed to store encryption key: %w", err)
			}
		}

		database, err := db.Open(cfg.Storage.SQLite.Path, password)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := a.useSQL(database); err != nil {
			return err
		}

	case config.BackendPostgres:
		database, err := db.OpenPostgres(cfg.Storage.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := a.useSQL(database); err != nil {
			return err
		}

	case config.BackendDynamoDB:
		awsCfg, err := awsconf.Load(ctx, awsconf.Options{
			Region:   cfg.Storage.DynamoDB.Region,
			Endpoint: cfg.Storage.DynamoDB.Endpoint,
		})
		if err != nil {
			return err
		}
		repo := repository.NewDynamoRepoFromConfig(awsCfg, cfg.Storage.DynamoDB.Table)
		a.SignatureStore, a.EnvelopeStore = repo, repo

	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return nil
}

func (a *App) useSQL(database *db.DB) error {
	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	repo := repository.NewSignatureRepo(database)
	a.DB = database
	a.SignatureStore, a.EnvelopeStore = repo, repo
	return nil
}

func newArchive(ctx context.Context, cfg *config.Config) (storage.DocumentStore, error) {
	switch cfg.Archive.Backend {
	case config.ArchiveS3:
		awsCfg, err := awsconf.Load(ctx, awsconf.Options{
			Region:   cfg.Archive.S3.Region,
			Endpoint: cfg.Archive.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(awsCfg, cfg.Archive.S3.Bucket, cfg.Archive.S3.Prefix, cfg.Archive.S3.UsePathStyle), nil
	default:
		return storage.NewDirStore(cfg.Archive.OutputDir), nil
	}
}

// InvoiceDefaults returns the freelancer block and defaults pre-filled on new invoices
func (a *App) InvoiceDefaults() *domain.Invoice {
	inv := domain.NewInvoice()
	if a.Config.Invoice.DefaultPaymentTerms != "" {
		inv.PaymentTerms = a.Config.Invoice.DefaultPaymentTerms
	}
	inv.TaxRate = a.Config.Invoice.DefaultTaxRate
	inv.FreelancerName = a.Config.User.Name
	inv.FreelancerEmail = a.Config.User.Email
	inv.FreelancerPhone = a.Config.User.Phone
	inv.FreelancerAddress = a.Config.User.Address
	inv.FreelancerWebsite = a.Config.User.Website
	return inv
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Logger != nil {
		// stderr sync fails on some terminals
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your signature records will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig persists the freelancer and invoice defaults to disk
func (a *App) SaveConfig() error {
	return a.Config.SaveDefaults(config.DefaultConfigPath())
}
