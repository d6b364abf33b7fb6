package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/atvirokodosprendimai/mutanox/internal/core/usecase"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr            string
	Store           string
	KeysFile        string
	DBPath          string
	AdminKey        string
	TestKey         string
	KeyPrefix       string
	ProviderURL     string
	ProviderTimeout time.Duration
	ProviderRPS     float64
	ProviderBurst   int
	LogLevel        string
	LogFormat       string
}

func (c Config) Validate() error {
	if c.AdminKey == "" {
		return errors.New("admin key is required (--admin-key or MUTANOX_ADMIN_KEY)")
	}
	testKey := c.TestKey
	if testKey == "" {
		testKey = usecase.DefaultTestKey
	}
	if testKey == c.AdminKey {
		return errors.New("test key must differ from the admin key")
	}
	switch c.Store {
	case StoreFile:
		if c.KeysFile == "" {
			return errors.New("keys file path is required for the file store")
		}
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("db path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreFile, StoreSQLite)
	}
	if c.ProviderRPS < 0 || c.ProviderBurst < 0 {
		return errors.New("provider rate limits must not be negative")
	}
	return nil
}

// fileConfig mirrors Config in the optional TOML file. Keys use the flag names.
type fileConfig struct {
	Addr            string   `toml:"addr"`
	Store           string   `toml:"store"`
	KeysFile        string   `toml:"keys-file"`
	DBPath          string   `toml:"db-path"`
	AdminKey        string   `toml:"admin-key"`
	TestKey         string   `toml:"test-key"`
	KeyPrefix       string   `toml:"key-prefix"`
	ProviderURL     string   `toml:"provider-url"`
	ProviderTimeout duration `toml:"provider-timeout"`
	ProviderRPS     float64  `toml:"provider-rps"`
	ProviderBurst   int      `toml:"provider-burst"`
	LogLevel        string   `toml:"log-level"`
	LogFormat       string   `toml:"log-format"`
}

// duration decodes TOML strings such as "15s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MergeFile overlays the TOML file at path onto cfg. A setting is taken from
// the file only when the file defines it and explicit reports false for its
// flag name, so command-line flags and environment variables win.
func MergeFile(cfg *Config, path string, explicit func(name string) bool) error {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}

	use := func(name string) bool {
		return meta.IsDefined(name) && !explicit(name)
	}
	if use("addr") {
		cfg.Addr = fc.Addr
	}
	if use("store") {
		cfg.Store = fc.Store
	}
	if use("keys-file") {
		cfg.KeysFile = fc.KeysFile
	}
	if use("db-path") {
		cfg.DBPath = fc.DBPath
	}
	if use("admin-key") {
		cfg.AdminKey = fc.AdminKey
	}
	if use("test-key") {
		cfg.TestKey = fc.TestKey
	}
	if use("key-prefix") {
		cfg.KeyPrefix = fc.KeyPrefix
	}
	if use("provider-url") {
		cfg.ProviderURL = fc.ProviderURL
	}
	if use("provider-timeout") {
		cfg.ProviderTimeout = fc.ProviderTimeout.Duration
	}
	if use("provider-rps") {
		cfg.ProviderRPS = fc.ProviderRPS
	}
	if use("provider-burst") {
		cfg.ProviderBurst = fc.ProviderBurst
	}
	if use("log-level") {
		cfg.LogLevel = fc.LogLevel
	}
	if use("log-format") {
		cfg.LogFormat = fc.LogFormat
	}
	return nil
}
