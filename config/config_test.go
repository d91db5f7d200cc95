package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/indices"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(SecretEnv, "")
	cfg, err := Load(writeConfig(t, `{"database_path": "keys.db", "keystore_secret": "s3cret"}`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
	assert.Equal(t, derivation.Mainnet, cfg.NetworkID)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 32768, cfg.KeystoreParams().N)
	assert.Equal(t, 8, cfg.KeystoreParams().R)
	assert.Equal(t, indices.NextAfterHighest, cfg.Mode())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(SecretEnv, "from-env")
	cfg, err := Load(writeConfig(t, `{
		"database_path": "keys.db",
		"keystore_secret": "from-file",
		"log_level": "debug",
		"network_id": 2,
		"mnemonic_cache_ttl": "30s",
		"scrypt_n": 1024,
		"index_mode": "lowest-free"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.KeystoreSecret)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, derivation.Stokenet, cfg.NetworkID)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 1024, cfg.KeystoreParams().N)
	assert.Equal(t, indices.LowestFree, cfg.Mode())
}

func TestLoadRejects(t *testing.T) {
	t.Setenv(SecretEnv, "")
	cases := map[string]string{
		"missing database": `{"keystore_secret": "s"}`,
		"missing secret":   `{"database_path": "keys.db"}`,
		"bad level":        `{"database_path": "keys.db", "keystore_secret": "s", "log_level": "loud"}`,
		"bad ttl":          `{"database_path": "keys.db", "keystore_secret": "s", "mnemonic_cache_ttl": "soon"}`,
		"numeric ttl":      `{"database_path": "keys.db", "keystore_secret": "s", "mnemonic_cache_ttl": 5}`,
		"scrypt_n":         `{"database_path": "keys.db", "keystore_secret": "s", "scrypt_n": 1000}`,
		"index mode":       `{"database_path": "keys.db", "keystore_secret": "s", "index_mode": "random"}`,
		"not json":         `database_path = "keys.db"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
