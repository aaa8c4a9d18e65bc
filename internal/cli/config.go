package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/crypto"
)

// secrets that may be kept in the keyring
var secretNames = []string{
	crypto.KeyDatabase,
	crypto.KeyEmailJSPrivate,
	crypto.KeyDocuSignPrivate,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration and secrets",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			if !confirmPrompt(fmt.Sprintf("%s already exists. Overwrite?", path)) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		cfg := config.DefaultConfig()
		cfg.User.Name, _ = cmd.Flags().GetString("name")
		cfg.User.Email, _ = cmd.Flags().GetString("email")
		if backend, _ := cmd.Flags().GetString("storage"); backend != "" {
			cfg.Storage.Backend = backend
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		keyring := crypto.NewKeyring()
		if err := cfg.Resolve(keyring); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", config.DefaultConfigPath())
		fmt.Fprint(out, string(data))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Email relay:     %s\n", enabled(cfg.Capabilities.EmailRelay))
		fmt.Fprintf(out, "E-sign provider: %s\n", enabled(cfg.Capabilities.ESignProvider))
		fmt.Fprintf(out, "Keyring:         %s\n", enabled(keyring.IsAvailable()))
		return nil
	},
}

var configSecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Store or remove secrets in the system keyring",
}

var configSecretSetCmd = &cobra.Command{
	Use:       "set [name]",
	Short:     "Store a secret (db-encryption-key, emailjs-private-key, docusign-private-key)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: secretNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !isSecretName(name) {
			return fmt.Errorf("unknown secret %q", name)
		}
		keyring := crypto.NewKeyring()

		var value string
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			value = string(data)
		} else {
			fmt.Printf("Enter %s: ", name)
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			value = string(raw)
		}
		if value == "" {
			return fmt.Errorf("secret cannot be empty")
		}

		if err := keyring.Set(name, value); err != nil {
			return fmt.Errorf("failed to store %s (set %s instead): %w", name, crypto.EnvVar(name), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s\n", name)
		return nil
	},
}

var configSecretDeleteCmd = &cobra.Command{
	Use:       "delete [name]",
	Short:     "Remove a secret from the keyring",
	Args:      cobra.ExactArgs(1),
	ValidArgs: secretNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !isSecretName(name) {
			return fmt.Errorf("unknown secret %q", name)
		}
		if err := crypto.NewKeyring().Delete(name); err != nil {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", name)
		return nil
	},
}

func isSecretName(name string) bool {
	for _, n := range secretNames {
		if n == name {
			return true
		}
	}
	return false
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSecretCmd)
	configSecretCmd.AddCommand(configSecretSetCmd)
	configSecretCmd.AddCommand(configSecretDeleteCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config without asking")
	configInitCmd.Flags().String("name", "", "Your name, pre-filled on invoices")
	configInitCmd.Flags().String("email", "", "Your email, pre-filled on invoices")
	configInitCmd.Flags().String("storage", "", "Signature storage backend (local, sqlite, postgres, dynamodb)")

	configSecretSetCmd.Flags().String("file", "", "Read the secret from a file, e.g. a PEM key")
}
