package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	NotifierDriverLog      = "log"
	NotifierDriverRabbitMQ = "rabbitmq"
	NotifierDriverKafka    = "kafka"
)

var (
	ErrInvalidStorageDriver  = errors.New("config: invalid storage driver")
	ErrInvalidNotifierDriver = errors.New("config: invalid notifications driver")
	ErrInvalidSessionLength  = errors.New("config: session duration must divide a day")
	ErrMissingDatabase       = errors.New("config: database host and name are required")
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Storage        StorageConfig        `toml:"storage"`
	Redis          RedisConfig          `toml:"redis"`
	Notifications  NotificationsConfig  `toml:"notifications"`
	ProfileService ProfileServiceConfig `toml:"profile_service"`
	Scheduling     SchedulingConfig     `toml:"scheduling"`
	Availability   AvailabilityConfig   `toml:"availability"`
	Sweep          SweepConfig          `toml:"sweep"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

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

type StorageConfig struct {
	Driver string `toml:"driver"` // postgres | memory
}

type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	LockTTLSec int    `toml:"lock_ttl_seconds"`
}

type NotificationsConfig struct {
	Driver       string   `toml:"driver"` // log | rabbitmq | kafka
	RabbitMQURL  string   `toml:"rabbitmq_url"`
	Queue        string   `toml:"queue"`
	KafkaBrokers []string `toml:"kafka_brokers"`
	Topic        string   `toml:"topic"`
}

type ProfileServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type SchedulingConfig struct {
	SessionDurationMinutes int `toml:"session_duration_minutes"`
	MinLeadMinutes         int `toml:"min_lead_minutes"`
	MaxLeadDays            int `toml:"max_lead_days"`
}

type AvailabilityConfig struct {
	HistoryWeeks int `toml:"history_weeks"`
}

type SweepConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	TimeoutSeconds  int  `toml:"timeout_seconds"`
	BatchSize       int  `toml:"batch_size"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load читает TOML файл, применяет переменные окружения (и .env), значения по умолчанию и валидирует результат
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Notifications.RabbitMQURL, "RABBITMQ_URL")
	setString(&c.ProfileService.URL, "PROFILE_SERVICE_URL")
	setString(&c.Logs.Level, "LOG_LEVEL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Notifications.KafkaBrokers = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 15)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}
	setDefault(&c.Redis.LockTTLSec, 10)

	if c.Notifications.Driver == "" {
		c.Notifications.Driver = NotifierDriverLog
	}
	if c.Notifications.Queue == "" {
		c.Notifications.Queue = "appointment_events"
	}
	if c.Notifications.Topic == "" {
		c.Notifications.Topic = "appointment-events"
	}

	setDefault(&c.ProfileService.Timeout, 5)

	setDefault(&c.Scheduling.SessionDurationMinutes, domain.DefaultSessionDurationMinutes)
	setDefault(&c.Scheduling.MinLeadMinutes, domain.DefaultMinLeadMinutes)
	setDefault(&c.Scheduling.MaxLeadDays, domain.DefaultMaxLeadDays)
	setDefault(&c.Availability.HistoryWeeks, domain.DefaultHistoryWeeks)

	setDefault(&c.Sweep.IntervalSeconds, 60)
	setDefault(&c.Sweep.TimeoutSeconds, 30)
	setDefault(&c.Sweep.BatchSize, 200)

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "scheduling_service"
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return ErrMissingDatabase
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorageDriver, c.Storage.Driver)
	}

	switch c.Notifications.Driver {
	case NotifierDriverLog, NotifierDriverRabbitMQ, NotifierDriverKafka:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidNotifierDriver, c.Notifications.Driver)
	}

	session := c.Scheduling.SessionDurationMinutes
	if session < domain.MinSessionDurationMinutes || session > domain.MaxSessionDurationMinutes || 1440%session != 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidSessionLength, session)
	}
	return nil
}

// Policy собирает политику расписания из конфигурации
func (c *Config) Policy() domain.SchedulingPolicy {
	return domain.SchedulingPolicy{
		SessionDuration: time.Duration(c.Scheduling.SessionDurationMinutes) * time.Minute,
		MinLeadTime:     time.Duration(c.Scheduling.MinLeadMinutes) * time.Minute,
		MaxLeadTime:     time.Duration(c.Scheduling.MaxLeadDays) * 24 * time.Hour,
		HistoryWeeks:    c.Availability.HistoryWeeks,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDefault(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
