package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/indices"
	"github.com/RaghavSood/factorkit/keystore"
)

// SecretEnv overrides keystore_secret when set.
const SecretEnv = "FACTORKIT_KEYSTORE_SECRET"

// Duration is a time.Duration read from a string such as "2m".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

type Config struct {
	// Path to the SQLite keystore
	DatabasePath string `json:"database_path"`

	// Secret the keystore encryption keys are derived from
	KeystoreSecret string `json:"keystore_secret"`

	// logrus level name (default info)
	LogLevel string `json:"log_level"`

	// Network new entities are created on (default mainnet)
	NetworkID derivation.NetworkID `json:"network_id"`

	// How long decrypted mnemonics stay cached (default 2m)
	MnemonicCacheTTL Duration `json:"mnemonic_cache_ttl"`

	// scrypt cost for newly stored mnemonics (default 32768)
	ScryptN int `json:"scrypt_n"`

	// "next-after-highest" (default) or "lowest-free"
	IndexMode string `json:"index_mode"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if secret := os.Getenv(SecretEnv); secret != "" {
		cfg.KeystoreSecret = secret
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.KeystoreSecret == "" {
		return fmt.Errorf("keystore_secret is required (or set %s)", SecretEnv)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.NetworkID == 0 {
		c.NetworkID = derivation.Mainnet
	}
	if c.MnemonicCacheTTL == 0 {
		c.MnemonicCacheTTL = Duration(2 * time.Minute)
	}
	if c.MnemonicCacheTTL < 0 {
		return fmt.Errorf("mnemonic_cache_ttl must not be negative")
	}
	if c.ScryptN == 0 {
		c.ScryptN = keystore.DefaultParams.N
	}
	if c.ScryptN < 2 || c.ScryptN&(c.ScryptN-1) != 0 {
		return fmt.Errorf("scrypt_n must be a power of two greater than 1")
	}
	if _, err := indices.ParseMode(c.IndexMode); err != nil {
		return fmt.Errorf("index_mode: %w", err)
	}
	return nil
}

func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c *Config) KeystoreParams() keystore.Params {
	params := keystore.DefaultParams
	params.N = c.ScryptN
	return params
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.MnemonicCacheTTL)
}

func (c *Config) Mode() indices.Mode {
	mode, _ := indices.ParseMode(c.IndexMode)
	return mode
}
