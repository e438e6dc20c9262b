package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads a local .env into the process environment before env tags are read.
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string   `yaml:"port" env:"SERVER_PORT" validate:"required"`
		Mode        string   `yaml:"mode" env:"SERVER_MODE" validate:"oneof=development production test"`
		CORSOrigins []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		// RateLimit is the number of school submissions accepted per second per client IP.
		RateLimit int `yaml:"rate_limit" env:"SERVER_RATE_LIMIT" validate:"gte=0"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST" validate:"required"`
		Port            string `yaml:"port" env:"DB_PORT" validate:"required,numeric"`
		User            string `yaml:"user" env:"DB_USER" validate:"required"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME" validate:"required"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" validate:"oneof=disable allow prefer require verify-ca verify-full"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" validate:"gte=0,ltefield=MaxOpenConns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" validate:"required"`
	} `yaml:"database"`

	Storage struct {
		PublicDir      string `yaml:"public_dir" env:"STORAGE_PUBLIC_DIR" validate:"required"`
		ImageDir       string `yaml:"image_dir" env:"STORAGE_IMAGE_DIR" validate:"required"`
		TempDir        string `yaml:"temp_dir" env:"STORAGE_TEMP_DIR" validate:"required"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES" validate:"gt=0"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
	} `yaml:"logging"`

	Seed struct {
		DemoData bool `yaml:"demo_data" env:"SEED_DEMO_DATA"`
	} `yaml:"seed"`
}

var validate = validator.New()

// DefaultPath is where LoadConfig looks when no explicit path is given.
var DefaultPath = filepath.Join("configs", "config.yaml")

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing file is fine, defaults plus env are enough for local runs.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.CORSOrigins = []string{"http://localhost:3000"}
	config.Server.RateLimit = 5

	// TLS is off on purpose: the defaults target a local development database.
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = ""
	config.Database.DBName = "schools_db"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 10
	config.Database.MaxIdleConns = 0
	config.Database.ConnMaxLifetime = "1h"

	config.Storage.PublicDir = "public"
	config.Storage.ImageDir = "schoolImages"
	config.Storage.TempDir = filepath.Join("public", "temp")
	config.Storage.MaxUploadBytes = 100 * 1024 * 1024

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime format: %w", err)
	}

	if strings.ContainsAny(config.Storage.ImageDir, `/\`) {
		return fmt.Errorf("storage image_dir must be a single path segment, got %q", config.Storage.ImageDir)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return dsn.String()
}

// ImageURLPrefix is the root-relative URL under which stored images are served.
func (c *Config) ImageURLPrefix() string {
	return "/" + c.Storage.ImageDir
}

// ImageDirPath is the filesystem directory that holds transcoded images.
func (c *Config) ImageDirPath() string {
	return filepath.Join(c.Storage.PublicDir, c.Storage.ImageDir)
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
