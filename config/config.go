package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port         int `mapstructure:"port"`
		OpsPort      int `mapstructure:"ops_port"`
		RateLimit    int `mapstructure:"rate_limit"`    // запросов в минуту, 0 - без ограничения
		ReadTimeout  int `mapstructure:"read_timeout"`  // в секундах
		WriteTimeout int `mapstructure:"write_timeout"` // в секундах
	} `mapstructure:"server"`
	DB struct {
		Host          string `mapstructure:"host"`
		Port          int    `mapstructure:"port"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		DBName        string `mapstructure:"name"`
		MigrationsDir string `mapstructure:"migrations_dir"`
	} `mapstructure:"db"`
	Dataset struct {
		Source      string `mapstructure:"source"` // csv | postgres
		Path        string `mapstructure:"path"`
		IDColumn    string `mapstructure:"id_column"`
		Cache       string `mapstructure:"cache"` // none | memory | redis
		RefreshCron string `mapstructure:"refresh_cron"`
		CacheTTL    int    `mapstructure:"cache_ttl"` // в секундах
	} `mapstructure:"dataset"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	History struct {
		Backend     string `mapstructure:"backend"` // file | sqlite | postgres
		Path        string `mapstructure:"path"`
		SQLitePath  string `mapstructure:"sqlite_path"`
		RecentLimit int    `mapstructure:"recent_limit"`
	} `mapstructure:"history"`
	Solvency struct {
		DebtToIncomeRatio float64 `mapstructure:"debt_to_income_ratio"`
		ZeroRatePolicy    string  `mapstructure:"zero_rate_policy"` // no_payment | interest_free
	} `mapstructure:"solvency"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		NotifyTo string `mapstructure:"notify_to"`
	} `mapstructure:"smtp"`
	Log struct {
		Dir string `mapstructure:"dir"` // пусто - вывод в stdout/stderr
	} `mapstructure:"log"`
}

// NewConfig создает новый экземпляр конфигурации.
// Значения по умолчанию перекрываются YAML-файлом (если path не пуст),
// а затем переменными окружения вида SERVER_PORT, DB_HOST, DATASET_PATH.
func NewConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Настройки сервера
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ops_port", 9090)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)

	// Настройки базы данных
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "ecopredict")
	v.SetDefault("db.migrations_dir", "migrations")

	// Набор данных
	v.SetDefault("dataset.source", "csv")
	v.SetDefault("dataset.path", "data/transactions.csv")
	v.SetDefault("dataset.id_column", "account_id")
	v.SetDefault("dataset.cache", "none")
	v.SetDefault("dataset.refresh_cron", "0 0 * * * *")
	v.SetDefault("dataset.cache_ttl", 300)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Журнал оценок
	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "historique.json")
	v.SetDefault("history.sqlite_path", "data/history.db")
	v.SetDefault("history.recent_limit", 4)

	// Политика расчета
	v.SetDefault("solvency.debt_to_income_ratio", 0.4)
	v.SetDefault("solvency.zero_rate_policy", "no_payment")

	// Настройки SMTP
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.notify_to", "")

	v.SetDefault("log.dir", "")
}

// Validate проверяет допустимость значений перечислимых полей
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case "csv", "postgres":
	default:
		return fmt.Errorf("dataset.source must be csv or postgres, got %q", c.Dataset.Source)
	}
	switch c.Dataset.Cache {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("dataset.cache must be none, memory or redis, got %q", c.Dataset.Cache)
	}
	switch c.History.Backend {
	case "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("history.backend must be file, sqlite or postgres, got %q", c.History.Backend)
	}
	switch c.Solvency.ZeroRatePolicy {
	case "no_payment", "interest_free":
	default:
		return fmt.Errorf("solvency.zero_rate_policy must be no_payment or interest_free, got %q", c.Solvency.ZeroRatePolicy)
	}
	if c.Solvency.DebtToIncomeRatio <= 0 || c.Solvency.DebtToIncomeRatio > 1 {
		return errors.New("solvency.debt_to_income_ratio must be in (0, 1]")
	}
	if c.History.RecentLimit <= 0 {
		return errors.New("history.recent_limit must be positive")
	}
	return nil
}

// NeedsDatabase сообщает, требуется ли подключение к PostgreSQL
func (c *Config) NeedsDatabase() bool {
	return c.Dataset.Source == "postgres" || c.History.Backend == "postgres"
}
