package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"mlm-network/pkg/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// StorageDriverPostgres хранит данные в PostgreSQL
	StorageDriverPostgres = "postgres"
	// StorageDriverMemory хранит данные в памяти процесса
	StorageDriverMemory = "memory"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Commission CommissionConfig
	Scheduler  SchedulerConfig
	Telegram   TelegramConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
	Port     int
}

type DatabaseConfig struct {
	Driver        string
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationPath string
}

// CommissionConfig содержит ставки комиссии
type CommissionConfig struct {
	OwnRate       decimal.Decimal
	DownlineRate  decimal.Decimal
	DownlineScope string
}

// SchedulerConfig содержит настройки периодических задач
type SchedulerConfig struct {
	StatsInterval time.Duration
}

// TelegramConfig содержит настройки уведомлений в Telegram
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 8080)

	// Database
	cfg.Database.Driver = getEnvDefault("STORAGE_DRIVER", StorageDriverPostgres)
	cfg.Database.Host = getEnvDefault("DB_HOST", "localhost")
	cfg.Database.Port = getEnvIntDefault("DB_PORT", 5432)
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = os.Getenv("DB_NAME")
	cfg.Database.SSLMode = getEnvDefault("DB_SSL_MODE", "disable")
	cfg.Database.MigrationPath = getEnvDefault("MIGRATION_PATH", "scripts/migrations")

	// Commission
	defaults := models.DefaultCommissionRates()
	cfg.Commission.OwnRate = getEnvDecimalDefault("COMMISSION_OWN_RATE", defaults.OwnRate)
	cfg.Commission.DownlineRate = getEnvDecimalDefault("COMMISSION_DOWNLINE_RATE", defaults.DownlineRate)
	cfg.Commission.DownlineScope = getEnvDefault("COMMISSION_DOWNLINE_SCOPE", string(defaults.DownlineScope))

	// Scheduler
	cfg.Scheduler.StatsInterval = getEnvDurationDefault("STATS_INTERVAL", 5*time.Minute)

	// Telegram
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = int64(getEnvIntDefault("TELEGRAM_CHAT_ID", 0))

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case StorageDriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("DB_HOST не установлен")
		}
		if config.Database.User == "" {
			return fmt.Errorf("DB_USER не установлен")
		}
		if config.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD не установлен")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("DB_NAME не установлен")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("поддерживаются только STORAGE_DRIVER: postgres, memory")
	}

	if !isRate(config.Commission.OwnRate) {
		return fmt.Errorf("COMMISSION_OWN_RATE должен быть в диапазоне [0, 1]")
	}
	if !isRate(config.Commission.DownlineRate) {
		return fmt.Errorf("COMMISSION_DOWNLINE_RATE должен быть в диапазоне [0, 1]")
	}
	if !models.DownlineScope(config.Commission.DownlineScope).IsValid() {
		return fmt.Errorf("поддерживаются только COMMISSION_DOWNLINE_SCOPE: transitive, direct")
	}

	if config.Scheduler.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL должен быть положительным")
	}
	if config.Telegram.BotToken != "" && config.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID не установлен")
	}

	return nil
}

func isRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

// Rates возвращает таблицу ставок комиссии
func (c *CommissionConfig) Rates() models.CommissionRates {
	return models.CommissionRates{
		OwnRate:       c.OwnRate,
		DownlineRate:  c.DownlineRate,
		DownlineScope: models.DownlineScope(c.DownlineScope),
	}
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetMigrationDSN возвращает строку подключения для database/sql драйвера
func (c *DatabaseConfig) GetMigrationDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
