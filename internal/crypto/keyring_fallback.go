//go:build !darwin

package crypto

import (
	"fmt"
	"os"
)

type fallbackKeyring struct{}

func newPlatformKeyring() Keyring {
	return &fallbackKeyring{}
}

// Get retrieves a secret from its INVOICEDESK_* environment variable
func (k *fallbackKeyring) Get(name string) (string, error) {
	value := os.Getenv(EnvVar(name))
	if value == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvVar(name))
	}

	return value, nil
}

// Set returns an error suggesting to set the environment variable
func (k *fallbackKeyring) Set(name, value string) error {
	if value == "" {
		return fmt.Errorf("secret cannot be empty")
	}

	return fmt.Errorf("keyring not available on this platform: please set the %s environment variable", EnvVar(name))
}

// Delete returns an error suggesting to unset the environment variable
func (k *fallbackKeyring) Delete(name string) error {
	return fmt.Errorf("keyring not available on this platform: please unset %s manually", EnvVar(name))
}

// IsAvailable checks if the database key environment variable is set
func (k *fallbackKeyring) IsAvailable() bool {
	return os.Getenv(EnvVar(KeyDatabase)) != ""
}
