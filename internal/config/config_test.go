package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeSecrets map[string]string

func (f fakeSecrets) Get(name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != BackendLocal || cfg.Invoice.DefaultPaymentTerms != "Net 30" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	cfg := DefaultConfig()
	cfg.User.Name = "Charles Babbage"
	cfg.Email.PrivateKey = "secret"
	cfg.Storage.Backend = BackendSQLite

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "secret") {
		t.Error("private key must not be written to the config file")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.User.Name != "Charles Babbage" || loaded.Storage.Backend != BackendSQLite {
		t.Errorf("unexpected config: %+v", loaded)
	}
}

func TestSaveDefaults_KeepsEnvOverridesOffDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	onDisk := DefaultConfig()
	onDisk.Server.Origin = "https://invoices.example.com"
	if err := onDisk.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("INVOICEDESK_STORAGE_BACKEND", BackendPostgres)
	t.Setenv("INVOICEDESK_POSTGRES_DSN", "postgres://inv:s3cret@db/invoices")
	t.Setenv("INVOICEDESK_ORIGIN", "http://localhost:9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Resolve(nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cfg.User.Name = "Grace Hopper"
	cfg.Invoice.DefaultTaxRate = 7.5

	if err := cfg.SaveDefaults(path); err != nil {
		t.Fatalf("save defaults: %v", err)
	}

	data, _ := os.ReadFile(path)
	for _, leaked := range []string{"s3cret", "localhost:9999"} {
		if strings.Contains(string(data), leaked) {
			t.Errorf("override %q written to the config file:\n%s", leaked, data)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User.Name != "Grace Hopper" || loaded.Invoice.DefaultTaxRate != 7.5 {
		t.Errorf("defaults not saved: %+v / %+v", loaded.User, loaded.Invoice)
	}
	if loaded.Server.Origin != "https://invoices.example.com" || loaded.Storage.Backend != BackendLocal {
		t.Errorf("file sections changed: %+v / %+v", loaded.Server, loaded.Storage)
	}
}

func TestResolve_Capabilities(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Resolve(nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Capabilities.EmailRelay || cfg.Capabilities.ESignProvider {
		t.Errorf("expected no capabilities, got %+v", cfg.Capabilities)
	}

	cfg = DefaultConfig()
	cfg.Email.PublicKey = "pk"
	cfg.Email.ServiceID = "svc"
	t.Setenv("INVOICEDESK_EMAILJS_TEMPLATE_ID", "tpl")
	t.Setenv("INVOICEDESK_DOCUSIGN_ACCOUNT_ID", "acct")
	t.Setenv("INVOICEDESK_DOCUSIGN_INTEGRATION_KEY", "ik")
	t.Setenv("INVOICEDESK_DOCUSIGN_USER_ID", "uid")

	if err := cfg.Resolve(fakeSecrets{"docusign-private-key": "PEM"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.Capabilities.EmailRelay || !cfg.Capabilities.ESignProvider {
		t.Errorf("expected both capabilities, got %+v", cfg.Capabilities)
	}
	if cfg.ESign.PrivateKey != "PEM" {
		t.Errorf("expected private key from keyring, got %q", cfg.ESign.PrivateKey)
	}
}

func TestResolve_PrivateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, []byte("FILE-PEM"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ESign.PrivateKeyPath = path

	if err := cfg.Resolve(fakeSecrets{}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.ESign.PrivateKey != "FILE-PEM" {
		t.Errorf("expected key from file, got %q", cfg.ESign.PrivateKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, true},
		{"postgres", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.Postgres.DSN = "postgres://localhost/invoicedesk"
		}, false},
		{"s3 without bucket", func(c *Config) { c.Archive.Backend = ArchiveS3 }, true},
		{"unknown archive", func(c *Config) { c.Archive.Backend = "ftp" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
