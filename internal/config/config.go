package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFS       = "fs"
)

// Metadata providers.
const (
	ProviderYtDlp = "ytdlp"
	ProviderApify = "apify"
)

// Config holds the application configuration.
type Config struct {
	HTTPAddr string   `yaml:"http_addr"`
	APIKeys  []string `yaml:"api_keys"` // static shared secrets accepted in the api-key header

	StoreDriver  string        `yaml:"store_driver"`
	SQLitePath   string        `yaml:"sqlite_path"`
	DatabaseURL  string        `yaml:"database_url"`
	DataDir      string        `yaml:"data_dir"`
	StoreTimeout time.Duration `yaml:"store_timeout"`

	RedisAddr     string        `yaml:"redis_addr"` // empty disables the list cache
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	Provider        string        `yaml:"provider"`
	YtDlpPath       string        `yaml:"ytdlp_path"`
	ApifyToken      string        `yaml:"apify_token"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	ProviderRPS     float64       `yaml:"provider_rps"`
	MaxDuration     float64       `yaml:"max_duration"` // seconds
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		HTTPAddr:        ":8000",
		APIKeys:         []string{"valid-key"},
		StoreDriver:     DriverSQLite,
		SQLitePath:      "./data/highlights.db",
		DataDir:         "./data",
		StoreTimeout:    10 * time.Second,
		CacheTTL:        5 * time.Minute,
		Provider:        ProviderYtDlp,
		ProviderTimeout: 2 * time.Minute,
		ProviderRPS:     2,
		MaxDuration:     3600,
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH (if
// set), then environment variables, each layer overriding the previous one.
func Load() (*Config, error) {
	// It's okay if .env doesn't exist, environment variables might be set manually
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	if keys := os.Getenv("API_KEYS"); keys != "" {
		c.APIKeys = splitList(keys)
	}
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.Provider = getEnv("PROVIDER", c.Provider)
	c.YtDlpPath = getEnv("YTDLP_PATH", c.YtDlpPath)
	c.ApifyToken = getEnv("APIFY_API_TOKEN", c.ApifyToken)

	var err error
	if c.RedisDB, err = getInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.StoreTimeout, err = getDuration("STORE_TIMEOUT", c.StoreTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = getDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", c.ProviderTimeout); err != nil {
		return err
	}
	if c.ProviderRPS, err = getFloat("PROVIDER_RPS", c.ProviderRPS); err != nil {
		return err
	}
	if c.MaxDuration, err = getFloat("MAX_DURATION", c.MaxDuration); err != nil {
		return err
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("API_KEYS cannot be empty")
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverFS:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR cannot be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.Provider {
	case ProviderYtDlp:
	case ProviderApify:
		if c.ApifyToken == "" {
			return fmt.Errorf("APIFY_API_TOKEN is required for the apify provider")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("MAX_DURATION must be positive")
	}
	if c.ProviderRPS < 0 {
		return fmt.Errorf("PROVIDER_RPS cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
