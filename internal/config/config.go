package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage backends for signatures
const (
	BackendLocal    = "local"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// Archive backends for rendered invoices
const (
	ArchiveDir = "dir"
	ArchiveS3  = "s3"
)

type Config struct {
	// HTTP server for the signing page and JSON API
	Server ServerConfig `yaml:"server"`

	// Where signatures are kept
	Storage StorageConfig `yaml:"storage"`

	// Where downloaded invoices are written
	Archive ArchiveConfig `yaml:"archive"`

	// Email relay
	Email EmailConfig `yaml:"email"`

	// E-signature provider
	ESign ESignConfig `yaml:"esign"`

	// Invoice defaults
	Invoice InvoiceConfig `yaml:"invoice"`

	// Freelancer info pre-filled on every invoice
	User UserConfig `yaml:"user"`

	Log LogConfig `yaml:"log"`

	// Capabilities are computed by Resolve and never read from disk
	Capabilities Capabilities `yaml:"-"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`   // Listen address, e.g. ":8080"
	Origin string `yaml:"origin"` // Public base URL used in signing links
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"`   // local, sqlite, postgres or dynamodb
	LocalDir string         `yaml:"local_dir"` // Directory of the local key-value store
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"` // Path to the encrypted database
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // lib/pq connection string
}

type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // Custom endpoint for DynamoDB Local
}

type ArchiveConfig struct {
	Backend   string   `yaml:"backend"`    // dir or s3
	OutputDir string   `yaml:"output_dir"` // Directory for generated PDFs
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`       // Custom endpoint, e.g. LocalStack or MinIO
	UsePathStyle bool   `yaml:"use_path_style"` // Required by most S3 emulators
}

type EmailConfig struct {
	Endpoint   string `yaml:"endpoint"`
	PublicKey  string `yaml:"public_key"`
	ServiceID  string `yaml:"service_id"`
	TemplateID string `yaml:"template_id"`
	PrivateKey string `yaml:"-"` // Keyring or INVOICEDESK_EMAILJS_PRIVATE_KEY only
	AttachPDF  bool   `yaml:"attach_pdf"`
}

type ESignConfig struct {
	BaseURL        string `yaml:"base_url"`
	OAuthURL       string `yaml:"oauth_url"`
	AccountID      string `yaml:"account_id"`
	IntegrationKey string `yaml:"integration_key"`
	UserID         string `yaml:"user_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	PrivateKey     string `yaml:"-"` // PEM, loaded by Resolve
}

type InvoiceConfig struct {
	DefaultPaymentTerms string  `yaml:"default_payment_terms"`
	DefaultTaxRate      float64 `yaml:"default_tax_rate"` // Percent (10 = 10%)
}

type UserConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
	Website string `yaml:"website"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
	File  string `yaml:"file"`  // Rotated JSON log file, empty disables
}

// Capabilities records which optional integrations are usable
type Capabilities struct {
	EmailRelay    bool
	ESignProvider bool
}

// Dir returns ~/.config/invoicedesk
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "invoicedesk")
	}
	return filepath.Join(homeDir, ".config", "invoicedesk")
}

// DefaultConfigPath returns ~/.config/invoicedesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Server: ServerConfig{
			Addr:   ":8080",
			Origin: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Backend:  BackendLocal,
			LocalDir: filepath.Join(dir, "store"),
			SQLite: SQLiteConfig{
				Path: filepath.Join(dir, "invoicedesk.db"),
			},
			DynamoDB: DynamoDBConfig{
				Table: "invoicedesk-signatures",
			},
		},
		Archive: ArchiveConfig{
			Backend:   ArchiveDir,
			OutputDir: filepath.Join(dir, "invoices"),
			S3: S3Config{
				Prefix: "invoices",
			},
		},
		Email: EmailConfig{
			Endpoint: "https://api.emailjs.com/api/v1.0/email/send",
		},
		ESign: ESignConfig{
			BaseURL:  "https://demo.docusign.net/restapi",
			OAuthURL: "https://account-d.docusign.com",
		},
		Invoice: InvoiceConfig{
			DefaultPaymentTerms: "Net 30",
			DefaultTaxRate:      0,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "invoicedesk.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// SaveDefaults writes c's user and invoice sections into the file at
// path. Every other section is taken from the file as it is on disk, so
// environment overrides applied by Resolve are never persisted.
func (c *Config) SaveDefaults(path string) error {
	onDisk, err := Load(path)
	if err != nil {
		return err
	}
	onDisk.User = c.User
	onDisk.Invoice = c.Invoice
	return onDisk.Save(path)
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendLocal, BackendSQLite:
	case BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for the postgres backend")
		}
	case BackendDynamoDB:
		if c.Storage.DynamoDB.Table == "" {
			return fmt.Errorf("storage.dynamodb.table is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Archive.Backend {
	case ArchiveDir:
	case ArchiveS3:
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("archive.s3.bucket is required for the s3 archive")
		}
	default:
		return fmt.Errorf("unknown archive backend %q", c.Archive.Backend)
	}

	return nil
}

// EnsureDirectories creates the local directories the selected backends write to
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendLocal:
		if err := os.MkdirAll(c.Storage.LocalDir, 0700); err != nil {
			return err
		}
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(c.Storage.SQLite.Path), 0700); err != nil {
			return err
		}
	}

	if c.Archive.Backend == ArchiveDir {
		if err := os.MkdirAll(c.Archive.OutputDir, 0755); err != nil {
			return err
		}
	}

	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0700); err != nil {
			return err
		}
	}

	return nil
}
