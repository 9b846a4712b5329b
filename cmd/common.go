package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/keyring"
	"github.com/illarion/locknote/internal/ui"
)

// loadConfig reads the config file named by --config, $LOCKNOTE_CONFIG or the default path
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	slog.Debug("loading config", "path", path)
	return config.Load(path)
}

// openManager loads the configuration and opens the note store
func openManager(opts *RootOptions) (*core.Manager, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	m, err := core.Open(cfg, secretSource(cfg), core.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

// secretSource resolves the encryption key: config file or $LOCKNOTE_KEY,
// then the OS keyring, then a terminal prompt.
// The caller is responsible for clearing the returned bytes.
func secretSource(cfg *config.Config) core.SecretSource {
	return func(storeID string) ([]byte, error) {
		if cfg.EncryptionKey != "" {
			return []byte(cfg.EncryptionKey), nil
		}

		if key, err := keyring.GetKey(storeID); err == nil && key != "" {
			slog.Debug("using key from keyring", "store_id", storeID)
			return []byte(key), nil
		}

		return core.ReadSecret("Encryption key: ")
	}
}

// parseID parses a note id argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

// HandleError prints err in a form suited to its kind
func HandleError(w io.Writer, err error) {
	switch core.KindOf(err) {
	case core.KindNotFound:
		fmt.Fprintln(w, ui.Error.Sprint("Error: note not found"))
	case core.KindEditorNotFound:
		fmt.Fprintln(w, ui.Error.Sprint("Error: no editor configured"))
		fmt.Fprintf(w, "Set %s in config.toml or the VISUAL/EDITOR environment variable\n", ui.Code.Sprint("editor"))
	case core.KindCrypto:
		fmt.Fprintln(w, ui.Error.Sprintf("Error: %s", err))
		fmt.Fprintln(w, "Check encryption_key in config.toml or $LOCKNOTE_KEY")
	default:
		fmt.Fprintln(w, ui.Error.Sprintf("Error: %s", err))
		if errors.Is(err, config.ErrInvalidConfig) {
			fmt.Fprintln(w, "Fix the config file, or remove it to have defaults written on the next run")
		}
	}
}
