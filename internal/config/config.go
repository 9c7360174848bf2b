package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in configuration.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Transport modes for the MCP server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines application configuration.
type Config struct {
	Backend   string          `yaml:"backend"`
	Remote    RemoteConfig    `yaml:"remote"`
	Local     LocalConfig     `yaml:"local"`
	Redis     RedisConfig     `yaml:"redis"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
}

// RemoteConfig selects the PostgreSQL service.
type RemoteConfig struct {
	DSN         string `yaml:"dsn"`
	MaxPageSize int    `yaml:"max_page_size"`
}

// LocalConfig selects the on-device SQLite store.
type LocalConfig struct {
	Path    string        `yaml:"path"`
	Key     string        `yaml:"key"`
	Latency time.Duration `yaml:"latency"`
}

// RedisConfig enables the version list cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MaxBatchSize bounds the records written per round trip.
const MaxBatchSize = 50

// SyncConfig tunes paging and batching.
type SyncConfig struct {
	PageSize         int `yaml:"page_size"`
	BatchSize        int `yaml:"batch_size"`
	VersionScanPages int `yaml:"version_scan_pages"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendLocal,
		Remote: RemoteConfig{
			MaxPageSize: 1000,
		},
		Local: LocalConfig{
			Path: "sigades.db",
			Key:  "sigades:projects",
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
		Sync: SyncConfig{
			PageSize:         1000,
			BatchSize:        50,
			VersionScanPages: 20,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. path wins over SIGADES_CONFIG_PATH. A .env file in the working
// directory is read first; variables already set are not overridden.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("SIGADES_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Backend, "SIGADES_BACKEND")
	setString(&cfg.Remote.DSN, "SIGADES_REMOTE_DSN")
	setString(&cfg.Local.Path, "SIGADES_LOCAL_PATH")
	setString(&cfg.Local.Key, "SIGADES_LOCAL_KEY")
	setString(&cfg.Redis.Addr, "SIGADES_REDIS_ADDR")
	setString(&cfg.Redis.Password, "SIGADES_REDIS_PASSWORD")
	setString(&cfg.Server.Host, "SIGADES_SERVER_HOST")
	setString(&cfg.Transport.Mode, "SIGADES_TRANSPORT")
	setString(&cfg.Log.Level, "SIGADES_LOG_LEVEL")
	setString(&cfg.Log.Path, "SIGADES_LOG_PATH")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Remote.MaxPageSize, "SIGADES_REMOTE_MAX_PAGE_SIZE"},
		{&cfg.Redis.DB, "SIGADES_REDIS_DB"},
		{&cfg.Sync.PageSize, "SIGADES_SYNC_PAGE_SIZE"},
		{&cfg.Sync.BatchSize, "SIGADES_SYNC_BATCH_SIZE"},
		{&cfg.Sync.VersionScanPages, "SIGADES_SYNC_VERSION_SCAN_PAGES"},
		{&cfg.Server.Port, "SIGADES_SERVER_PORT"},
	}
	for _, e := range ints {
		if err := setInt(e.dst, e.key); err != nil {
			return err
		}
	}

	if err := setDuration(&cfg.Local.Latency, "SIGADES_LOCAL_LATENCY"); err != nil {
		return err
	}
	return setDuration(&cfg.Redis.TTL, "SIGADES_REDIS_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.Local.Path == "" {
			return errors.New("local.path is required for the local backend")
		}
	case BackendRemote:
		if c.Remote.DSN == "" {
			return errors.New("remote.dsn (SIGADES_REMOTE_DSN) is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendLocal, BackendRemote)
	}

	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}

	if c.Sync.PageSize <= 0 || c.Sync.BatchSize <= 0 || c.Sync.VersionScanPages <= 0 {
		return errors.New("sync sizes must be positive")
	}
	if c.Sync.BatchSize > MaxBatchSize {
		return fmt.Errorf("sync.batch_size %d exceeds %d", c.Sync.BatchSize, MaxBatchSize)
	}
	if c.Remote.MaxPageSize <= 0 {
		return errors.New("remote.max_page_size must be positive")
	}
	if c.Local.Latency < 0 || c.Redis.TTL < 0 {
		return errors.New("durations must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
