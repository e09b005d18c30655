package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const DefaultAPIBaseURL = "http://127.0.0.1:8000/api"

// Config holds all configuration for the food ordering client
type Config struct {
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Server   ServerConfig   `yaml:"server"`
}

// APIConfig points at the remote food ordering API
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig selects the on-device key-value driver
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PricingConfig overrides the checkout fee constants. Empty values keep the defaults.
type PricingConfig struct {
	FreeDeliveryThreshold string `yaml:"free_delivery_threshold"`
	FlatDeliveryFee       string `yaml:"flat_delivery_fee"`
	ServiceFeeRate        string `yaml:"service_fee_rate"`
	TaxRate               string `yaml:"tax_rate"`
}

// ServerConfig configures the local HTTP API
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so its values can override the file through the environment.
func Load(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file value is present
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "data/device.json",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
		},
		Server: ServerConfig{
			Port:           3000,
			AllowedOrigins: []string{"*"},
		},
	}
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("FOOD_API_URL", &c.API.BaseURL)
	setString("STORAGE_DRIVER", &c.Storage.Driver)
	setString("STORAGE_PATH", &c.Storage.Path)
	setString("DB_HOST", &c.Database.Host)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.Database)
	setString("RABBITMQ_HOST", &c.RabbitMQ.Host)
	setString("RABBITMQ_USER", &c.RabbitMQ.User)
	setString("RABBITMQ_PASSWORD", &c.RabbitMQ.Password)

	for key, dst := range map[string]*int{
		"DB_PORT":       &c.Database.Port,
		"RABBITMQ_PORT": &c.RabbitMQ.Port,
		"SERVER_PORT":   &c.Server.Port,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid API_TIMEOUT value: %w", err)
		}
		c.API.Timeout = d
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	return nil
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if (c.Storage.Driver == "file" || c.Storage.Driver == "sqlite") && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	for name, raw := range map[string]string{
		"free_delivery_threshold": c.Pricing.FreeDeliveryThreshold,
		"flat_delivery_fee":       c.Pricing.FlatDeliveryFee,
		"service_fee_rate":        c.Pricing.ServiceFeeRate,
		"tax_rate":                c.Pricing.TaxRate,
	} {
		if raw == "" {
			continue
		}
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("invalid pricing.%s value: %w", name, err)
		}
	}

	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
