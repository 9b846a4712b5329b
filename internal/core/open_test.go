package core

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

func testConfig(t *testing.T, backend, kdf string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Default(dir)
	require.NoError(t, err)
	cfg.IndexBackend = backend
	cfg.KDF = kdf
	if backend == storage.BackendBolt {
		cfg.DBPath = filepath.Join(dir, "locknote.bolt")
	}
	return cfg
}

func openTest(t *testing.T, cfg *config.Config, secret SecretSource) (*Manager, error) {
	t.Helper()
	m, err := Open(cfg, secret, WithLogger(discardLogger()), WithEditor(noEditor(t)))
	if err == nil {
		t.Cleanup(func() { _ = m.Close() })
	}
	return m, err
}

func TestOpen_Reopen(t *testing.T) {
	cases := []struct {
		backend string
		kdf     string
	}{
		{storage.BackendSQLite, config.KDFSHA256},
		{storage.BackendBolt, config.KDFSHA256},
		{storage.BackendSQLite, config.KDFPBKDF2},
	}

	for _, tc := range cases {
		t.Run(tc.backend+"/"+tc.kdf, func(t *testing.T) {
			cfg := testConfig(t, tc.backend, tc.kdf)

			m, err := openTest(t, cfg, StaticSecret(cfg.EncryptionKey))
			require.NoError(t, err)
			storeID := m.StoreID()
			assert.NotEmpty(t, storeID)

			rec, err := m.Create("persisted")
			require.NoError(t, err)
			require.NoError(t, m.Close())

			var seen string
			m2, err := openTest(t, cfg, func(id string) ([]byte, error) {
				seen = id
				return []byte(cfg.EncryptionKey), nil
			})
			require.NoError(t, err)
			assert.Equal(t, storeID, seen)
			assert.Equal(t, storeID, m2.StoreID())

			text, err := m2.Read(rec.ID)
			require.NoError(t, err)
			assert.Contains(t, text, "persisted")
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	cfg := testConfig(t, storage.BackendSQLite, config.KDFSHA256)

	m, err := openTest(t, cfg, StaticSecret("right"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = openTest(t, cfg, StaticSecret("wrong"))
	assert.ErrorIs(t, err, ErrCrypto)
	assert.Contains(t, err.Error(), "wrong encryption key")
}

func TestOpen_PBKDF2SaltPersisted(t *testing.T) {
	cfg := testConfig(t, storage.BackendSQLite, config.KDFPBKDF2)

	m, err := openTest(t, cfg, StaticSecret("k"))
	require.NoError(t, err)

	salt, err := m.index.GetOrCreateMeta(storage.MetaKDFSalt, func() ([]byte, error) {
		return nil, errors.New("salt should already exist")
	})
	require.NoError(t, err)
	assert.Len(t, salt, crypto.SaltSize)
	require.NoError(t, m.Close())

	m2, err := openTest(t, cfg, StaticSecret("k"))
	require.NoError(t, err)
	again, err := m2.index.GetOrCreateMeta(storage.MetaKDFSalt, func() ([]byte, error) {
		return nil, errors.New("salt should already exist")
	})
	require.NoError(t, err)
	assert.Equal(t, salt, again)
}

func TestOpen_KDFChangeDetected(t *testing.T) {
	cfg := testConfig(t, storage.BackendSQLite, config.KDFSHA256)

	m, err := openTest(t, cfg, StaticSecret("same"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	cfg.KDF = config.KDFPBKDF2
	_, err = openTest(t, cfg, StaticSecret("same"))
	assert.ErrorIs(t, err, ErrCrypto)
}

func TestOpen_SecretErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cfg := testConfig(t, storage.BackendSQLite, config.KDFSHA256)
		_, err := openTest(t, cfg, StaticSecret(""))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("source fails", func(t *testing.T) {
		cfg := testConfig(t, storage.BackendSQLite, config.KDFSHA256)
		_, err := openTest(t, cfg, func(string) ([]byte, error) {
			return nil, errors.New("no tty")
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "no tty")
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "postgres", config.KDFSHA256)
	_, err := openTest(t, cfg, StaticSecret("k"))
	assert.ErrorIs(t, err, ErrIndex)
}
