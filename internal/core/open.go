package core

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/locknote/internal/blobstore"
	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

// keyCheckString is encrypted into the index on first open so a wrong key
// is reported up front instead of as a crypto failure on every note.
const keyCheckString = "LOCKNOTE_KEY_CHECK"

// SecretSource returns the encryption secret for the store with the given id
type SecretSource func(storeID string) ([]byte, error)

// StaticSecret returns a SecretSource that always yields secret
func StaticSecret(secret string) SecretSource {
	return func(string) ([]byte, error) {
		if secret == "" {
			return nil, validationError("encryption key is empty")
		}
		return []byte(secret), nil
	}
}

// Open wires a Manager from configuration. The index is opened first because
// it carries the store id used to look up the secret and the KDF parameters.
func Open(cfg *config.Config, secret SecretSource, opts ...Option) (*Manager, error) {
	m := newManager(Settings{
		Extension: cfg.DefaultExtension,
		Editor:    cfg.Editor,
		ExportDir: cfg.ExportDir,
	}, opts)

	index, err := storage.OpenIndex(cfg.IndexBackend, cfg.DBPath,
		storage.WithLogger(m.logger),
		storage.WithNow(m.now),
	)
	if err != nil {
		return nil, indexError("open index", err)
	}
	m.index = index

	if err := m.init(cfg, secret); err != nil {
		_ = m.Close()
		return nil, err
	}

	m.logger.Debug("opened note store",
		"notes_dir", cfg.NotesDir,
		"index", cfg.DBPath,
		"backend", cfg.IndexBackend,
		"store_id", m.storeID)
	return m, nil
}

func (m *Manager) init(cfg *config.Config, secret SecretSource) error {
	id, err := m.index.GetOrCreateMeta(storage.MetaStoreID, newStoreID)
	if err != nil {
		return indexError("read store id", err)
	}
	m.storeID = string(id)

	blobs, err := blobstore.Open(cfg.NotesDir)
	if err != nil {
		return ioError("cannot open notes directory", cfg.NotesDir, err)
	}
	m.blobs = blobs

	raw, err := secret(m.storeID)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return e
		}
		return &Error{Kind: KindValidation, Msg: "cannot obtain encryption key", Err: err}
	}
	defer crypto.ClearBytes(raw)
	if len(raw) == 0 {
		return validationError("encryption key is empty")
	}

	key, err := m.deriveKey(cfg.KDF, raw)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(key)

	enc, err := crypto.NewEncryptor(key)
	if err != nil {
		return &Error{Kind: KindCrypto, Msg: "cannot initialize cipher", Err: err}
	}
	m.enc = enc

	return m.verifyKey()
}

// deriveKey turns the configured secret into an AES key
func (m *Manager) deriveKey(kdf string, secret []byte) ([]byte, error) {
	switch kdf {
	case "", config.KDFSHA256:
		return crypto.DeriveKey(secret), nil
	case config.KDFPBKDF2:
	default:
		return nil, validationError(fmt.Sprintf("unknown kdf %q", kdf))
	}

	salt, err := m.index.GetOrCreateMeta(storage.MetaKDFSalt, func() ([]byte, error) {
		fresh, err := crypto.NewKDF()
		if err != nil {
			return nil, err
		}
		return fresh.Salt, nil
	})
	if err != nil {
		return nil, indexError("read kdf salt", err)
	}

	iters, err := m.index.GetOrCreateMeta(storage.MetaKDFIters, func() ([]byte, error) {
		return []byte(strconv.Itoa(crypto.DefaultIters)), nil
	})
	if err != nil {
		return nil, indexError("read kdf iterations", err)
	}
	n, err := strconv.Atoi(string(iters))
	if err != nil || n <= 0 {
		return nil, &Error{Kind: KindIndex, Msg: fmt.Sprintf("corrupt kdf iterations %q", iters)}
	}

	start := time.Now()
	k := &crypto.KDF{Salt: salt, Iterations: n}
	key := k.DeriveKey(secret)
	m.logger.Debug("derived key", "kdf", config.KDFPBKDF2, "iterations", n, "took", time.Since(start))
	return key, nil
}

// verifyKey checks the encryptor against the stored key-check value,
// storing one on first use.
func (m *Manager) verifyKey() error {
	check, err := m.index.GetOrCreateMeta(storage.MetaKeyCheck, func() ([]byte, error) {
		envelope, err := m.enc.Encrypt([]byte(keyCheckString))
		return []byte(envelope), err
	})
	if err != nil {
		return indexError("read key check", err)
	}

	plain, err := m.enc.Decrypt(string(check))
	if err != nil || !bytes.Equal(plain, []byte(keyCheckString)) {
		if errors.Is(err, crypto.ErrAuthFailed) || err == nil {
			return &Error{Kind: KindCrypto, Msg: "wrong encryption key"}
		}
		return &Error{Kind: KindCrypto, Msg: "corrupt key check", Err: err}
	}
	return nil
}

func newStoreID() ([]byte, error) {
	return []byte(uuid.NewString()), nil
}

// StoreID returns the identifier persisted in the index, used as the keyring account
func (m *Manager) StoreID() string {
	return m.storeID
}

// Logger returns the Manager's logger
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// ReadStoreID returns the store id from the index named by cfg without
// needing the encryption key.
func ReadStoreID(cfg *config.Config) (string, error) {
	index, err := storage.OpenIndex(cfg.IndexBackend, cfg.DBPath)
	if err != nil {
		return "", indexError("open index", err)
	}
	defer index.Close()

	id, err := index.GetOrCreateMeta(storage.MetaStoreID, newStoreID)
	if err != nil {
		return "", indexError("read store id", err)
	}
	return string(id), nil
}
