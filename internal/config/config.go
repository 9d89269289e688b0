package config

import (
	"errors"
	"fmt"
	"os"
	_ "time/tzdata" // embedded zone database for policy.timezone

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig некорректное значение в конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	Webhook   WebhookConfig   `toml:"webhook"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Admin     AdminConfig     `toml:"admin"`
	Policy    PolicyConfig    `toml:"policy"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логгера
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто = stdout
}

// MetricsConfig параметры Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// StorageConfig выбор хранилища
type StorageConfig struct {
	Driver string `toml:"driver"`
}

// RedisConfig параметры Redis для распределённого rate limit
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig параметры публикации уведомлений
type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// WebhookConfig HTTP сервис уведомлений. Пустой url: отключено
type WebhookConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// RateLimitConfig окна ограничения попыток бронирования
type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	IPLimit          int  `toml:"ip_limit"`
	BeneficiaryLimit int  `toml:"beneficiary_limit"`
	WindowSeconds    int  `toml:"window_seconds"`
}

// AdminConfig доступ к административным маршрутам
type AdminConfig struct {
	Token string `toml:"token"`
}

// Load читает конфигурацию из TOML файла и применяет значения по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает TOML и валидирует результат
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "room-booking-service"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "bookings"
	}

	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 5
	}

	if c.RateLimit.IPLimit == 0 {
		c.RateLimit.IPLimit = 10
	}
	if c.RateLimit.BeneficiaryLimit == 0 {
		c.RateLimit.BeneficiaryLimit = 3
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 3600
	}

	c.Policy.applyDefaults()
}

// Validate проверяет невозможные значения
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be between 1 and 65535", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres storage", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}

	if c.RateLimit.IPLimit < 0 || c.RateLimit.BeneficiaryLimit < 0 || c.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("%w: rate_limit values must not be negative", ErrInvalidConfig)
	}

	if _, err := c.Policy.ToDomain(); err != nil {
		return fmt.Errorf("%w: policy: %v", ErrInvalidConfig, err)
	}

	return nil
}
