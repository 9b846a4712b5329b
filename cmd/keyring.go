package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/keyring"
	"github.com/illarion/locknote/internal/ui"
)

func newKeyCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the encryption key in the OS keyring",
		Long: `Keep the encryption key in the OS keyring instead of config.toml.
After 'key save' the encryption_key line can be removed from the config;
locknote then reads the key from the keyring and prompts only when it is missing.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Store the encryption key in the OS keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}

				source := secretSource(cfg)
				if cfg.EncryptionKey == "" {
					source = func(string) ([]byte, error) { return core.ReadSecretConfirm() }
				}

				// Opening verifies the key against the store
				var key []byte
				m, err := core.Open(cfg, func(id string) ([]byte, error) {
					secret, err := source(id)
					if err == nil {
						key = append([]byte(nil), secret...)
					}
					return secret, err
				})
				if err != nil {
					return err
				}
				defer m.Close()
				defer crypto.ClearBytes(key)

				if err := keyring.SaveKey(m.StoreID(), string(key)); err != nil {
					return fmt.Errorf("failed to save to keyring: %w", err)
				}
				fmt.Fprintln(opts.stdout, ui.Success.Sprint("Key saved to keyring"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the encryption key from the OS keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				storeID, err := readStoreID(opts)
				if err != nil {
					return err
				}
				if !keyring.HasKey(storeID) {
					fmt.Fprintln(opts.stdout, "No key stored in keyring")
					return nil
				}
				if err := keyring.DeleteKey(storeID); err != nil {
					return fmt.Errorf("failed to delete from keyring: %w", err)
				}
				fmt.Fprintln(opts.stdout, ui.Success.Sprint("Key removed from keyring"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the encryption key comes from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				storeID, err := readStoreID(opts)
				if err != nil {
					return err
				}

				if cfg.EncryptionKey != "" {
					fmt.Fprintln(opts.stdout, "Key: set in config or $"+config.EnvKey)
				}
				if keyring.HasKey(storeID) {
					fmt.Fprintln(opts.stdout, "Keyring: stored")
				} else {
					fmt.Fprintln(opts.stdout, "Keyring: not stored")
				}
				fmt.Fprintln(opts.stdout, ui.Dim.Sprintf("store id %s", storeID))
				return nil
			},
		},
	)
	return cmd
}

// readStoreID opens the index without needing the key
func readStoreID(opts *RootOptions) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	return core.ReadStoreID(cfg)
}
