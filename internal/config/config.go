package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	PublicURL       string        `yaml:"public_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxUploadMB     int64         `yaml:"max_upload_mb"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	ListingTTL time.Duration `yaml:"listing_ttl"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Bucket   string `yaml:"bucket"`
}

type AuthConfig struct {
	JWTSecret           string        `yaml:"jwt_secret"`
	Issuer              string        `yaml:"issuer"`
	TokenTTL            time.Duration `yaml:"token_ttl"`
	VerificationTTL     time.Duration `yaml:"verification_ttl"`
	RequireConfirmation bool          `yaml:"require_confirmation"`
}

type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	Output string        `yaml:"output"`
	File   LogFileConfig `yaml:"file"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type BrowseConfig struct {
	SessionIdle time.Duration `yaml:"session_idle"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Browse    BrowseConfig    `yaml:"browse"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			PublicURL:       "http://localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			MaxUploadMB:     32,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Redis:   RedisConfig{Addr: "localhost:6379", ListingTTL: 5 * time.Minute},
		Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "listings", Bucket: "property_images"},
		Auth: AuthConfig{
			Issuer:              "rent-listings",
			TokenTTL:            48 * time.Hour,
			VerificationTTL:     24 * time.Hour,
			RequireConfirmation: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
			File:   LogFileConfig{Path: "logs/rent-listings.log", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 14},
		},
		Telemetry: TelemetryConfig{ServiceName: "rent-listings", SampleRatio: 1},
		Metrics:   MetricsConfig{Enabled: true, Namespace: "rent_listings"},
		Browse:    BrowseConfig{SessionIdle: 30 * time.Minute},
	}
}

// Load reads .env (when present), then the YAML file at path over the
// defaults, then the environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}

	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	override(&c.HTTP.Addr, "HTTP_ADDR")
	override(&c.HTTP.PublicURL, "PUBLIC_URL")
	override(&c.Storage.Driver, "STORAGE_DRIVER")
	override(&c.Postgres.DSN, "DATABASE_URL")
	override(&c.Redis.Addr, "REDIS_ADDR")
	override(&c.Redis.Password, "REDIS_PASSWORD")
	override(&c.Mongo.URI, "MONGO_URI")
	override(&c.Auth.JWTSecret, "JWT_SECRET")
	override(&c.Logging.Level, "LOG_LEVEL")
}

func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	}
	if c.HTTP.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("http.max_upload_mb must be positive"))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn (DATABASE_URL) is required"))
		}
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr (REDIS_ADDR) is required"))
		}
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri (MONGO_URI) is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, errors.New("telemetry.sample_ratio must be within [0, 1]"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
