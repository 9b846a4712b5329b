package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

const (
	EnvConfigPath = "LOCKNOTE_CONFIG"
	EnvKey        = "LOCKNOTE_KEY"

	KDFSHA256 = "sha256"
	KDFPBKDF2 = "pbkdf2"

	generatedKeyLen = 32
	keyAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoHome        = errors.New("home directory not found")
)

// Config is the on-disk configuration
type Config struct {
	NotesDir         string `toml:"notes_dir"`
	DBPath           string `toml:"db_path"`
	IndexBackend     string `toml:"index_backend"`
	DefaultExtension string `toml:"default_extension"`
	Editor           string `toml:"editor,omitempty"`
	EncryptionKey    string `toml:"encryption_key"`
	KDF              string `toml:"kdf"`
	ExportDir        string `toml:"export_dir"`
}

// DefaultPath returns $LOCKNOTE_CONFIG or ~/.config/locknote/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, ".config", "locknote", "config.toml"), nil
}

// Default returns the default configuration rooted at base
// (normally ~/.locknote) with a new random encryption key.
func Default(base string) (*Config, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Config{
		NotesDir:         filepath.Join(base, "notes"),
		DBPath:           filepath.Join(base, "locknote.db"),
		IndexBackend:     storage.BackendSQLite,
		DefaultExtension: "md",
		EncryptionKey:    key,
		KDF:              KDFSHA256,
		ExportDir:        filepath.Join(base, "exports"),
	}, nil
}

// Load reads the config at path, writing a default one first if it does not exist
func Load(path string) (*Config, error) {
	cfg := &Config{}
	_, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		home, herr := os.UserHomeDir()
		if herr != nil || home == "" {
			return nil, ErrNoHome
		}
		cfg, err = Default(filepath.Join(home, ".locknote"))
		if err != nil {
			return nil, err
		}
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	cfg.applyDefaults()
	if err := cfg.expandHome(); err != nil {
		return nil, err
	}
	if key := os.Getenv(EnvKey); key != "" {
		cfg.EncryptionKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as TOML with owner-only permissions
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	switch {
	case c.NotesDir == "":
		return fmt.Errorf("%w: notes_dir is required", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path is required", ErrInvalidConfig)
	case strings.ContainsAny(c.DefaultExtension, `/\`):
		return fmt.Errorf("%w: default_extension %q contains a path separator", ErrInvalidConfig, c.DefaultExtension)
	}

	switch c.IndexBackend {
	case storage.BackendSQLite, storage.BackendBolt:
	default:
		return fmt.Errorf("%w: index_backend must be %q or %q, got %q", ErrInvalidConfig, storage.BackendSQLite, storage.BackendBolt, c.IndexBackend)
	}

	switch c.KDF {
	case KDFSHA256, KDFPBKDF2:
	default:
		return fmt.Errorf("%w: kdf must be %q or %q, got %q", ErrInvalidConfig, KDFSHA256, KDFPBKDF2, c.KDF)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.IndexBackend == "" {
		c.IndexBackend = storage.BackendSQLite
	}
	c.DefaultExtension = strings.TrimPrefix(strings.TrimSpace(c.DefaultExtension), ".")
	if c.DefaultExtension == "" {
		c.DefaultExtension = "md"
	}
	if c.KDF == "" {
		c.KDF = KDFSHA256
	}
}

// expandHome resolves a leading ~ in path settings
func (c *Config) expandHome() error {
	for _, p := range []*string{&c.NotesDir, &c.DBPath, &c.ExportDir} {
		if *p != "~" && !strings.HasPrefix(*p, "~/") {
			continue
		}
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return ErrNoHome
		}
		*p = filepath.Join(home, strings.TrimPrefix(*p, "~"))
	}
	return nil
}

// GenerateKey returns a random alphanumeric key
func GenerateKey() (string, error) {
	var b strings.Builder
	for b.Len() < generatedKeyLen {
		buf, err := crypto.GenerateRandom(generatedKeyLen)
		if err != nil {
			return "", err
		}
		for _, v := range buf {
			// Rejection sampling keeps the distribution uniform
			if int(v) >= 256-256%len(keyAlphabet) {
				continue
			}
			b.WriteByte(keyAlphabet[int(v)%len(keyAlphabet)])
			if b.Len() == generatedKeyLen {
				break
			}
		}
	}
	return b.String(), nil
}
