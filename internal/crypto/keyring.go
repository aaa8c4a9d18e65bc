package crypto

import "strings"

// Keyring provides secure secret storage abstraction
type Keyring interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	IsAvailable() bool
}

const ServiceName = "invoicedesk"

// Secret names
const (
	KeyDatabase        = "db-encryption-key"
	KeyEmailJSPrivate  = "emailjs-private-key"
	KeyDocuSignPrivate = "docusign-private-key"
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// EnvVar returns the environment variable that can hold a secret,
// e.g. INVOICEDESK_DB_KEY for the database key
func EnvVar(name string) string {
	if name == KeyDatabase {
		return "INVOICEDESK_DB_KEY"
	}
	return "INVOICEDESK_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
