package config

import (
	"fmt"
	"os"

	"github.com/andy/invoicedesk/internal/crypto"
)

// SecretSource is the part of the keyring Resolve reads from
type SecretSource interface {
	Get(name string) (string, error)
}

// env overrides, applied before capabilities are computed
var envOverrides = []struct {
	name string
	set  func(c *Config, v string)
}{
	{"INVOICEDESK_ORIGIN", func(c *Config, v string) { c.Server.Origin = v }},
	{"INVOICEDESK_ADDR", func(c *Config, v string) { c.Server.Addr = v }},
	{"INVOICEDESK_STORAGE_BACKEND", func(c *Config, v string) { c.Storage.Backend = v }},
	{"INVOICEDESK_POSTGRES_DSN", func(c *Config, v string) { c.Storage.Postgres.DSN = v }},
	{"INVOICEDESK_EMAILJS_PUBLIC_KEY", func(c *Config, v string) { c.Email.PublicKey = v }},
	{"INVOICEDESK_EMAILJS_SERVICE_ID", func(c *Config, v string) { c.Email.ServiceID = v }},
	{"INVOICEDESK_EMAILJS_TEMPLATE_ID", func(c *Config, v string) { c.Email.TemplateID = v }},
	{"INVOICEDESK_DOCUSIGN_ACCOUNT_ID", func(c *Config, v string) { c.ESign.AccountID = v }},
	{"INVOICEDESK_DOCUSIGN_INTEGRATION_KEY", func(c *Config, v string) { c.ESign.IntegrationKey = v }},
	{"INVOICEDESK_DOCUSIGN_USER_ID", func(c *Config, v string) { c.ESign.UserID = v }},
	{"INVOICEDESK_LOG_LEVEL", func(c *Config, v string) { c.Log.Level = v }},
}

// Resolve applies environment overrides, fills secrets from the keyring and
// computes Capabilities. It is called once at startup; callers afterwards
// only consult the capability flags.
func (c *Config) Resolve(secrets SecretSource) error {
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.set(c, v)
		}
	}

	if secrets != nil {
		// Missing optional secrets are not an error
		if c.Email.PrivateKey == "" {
			c.Email.PrivateKey, _ = secrets.Get(crypto.KeyEmailJSPrivate)
		}
		if c.ESign.PrivateKey == "" {
			c.ESign.PrivateKey, _ = secrets.Get(crypto.KeyDocuSignPrivate)
		}
	}

	if c.ESign.PrivateKey == "" && c.ESign.PrivateKeyPath != "" {
		pem, err := os.ReadFile(c.ESign.PrivateKeyPath)
		if err != nil {
			return fmt.Errorf("failed to read docusign private key: %w", err)
		}
		c.ESign.PrivateKey = string(pem)
	}

	c.Capabilities = Capabilities{
		EmailRelay:    c.Email.PublicKey != "" && c.Email.ServiceID != "" && c.Email.TemplateID != "",
		ESignProvider: c.ESign.AccountID != "" && c.ESign.IntegrationKey != "" && c.ESign.UserID != "",
	}

	return c.Validate()
}
