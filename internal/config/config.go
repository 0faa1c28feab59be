package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageDriver        = errors.New("unknown storage driver")
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string    `mapstructure:"env"` // current application environment (local, dev, production etc)
	TelegramAPIToken string    `mapstructure:"-"`   // Telegram API token loaded from environment
	Log              Log       `mapstructure:"log"`
	Storage          Storage   `mapstructure:"storage"`
	DB               DB        `mapstructure:"database"`
	Redis            Redis     `mapstructure:"redis"`
	Data             Data      `mapstructure:"data"`
	Assistant        Assistant `mapstructure:"assistant"`
	Facts            Facts     `mapstructure:"facts"`
	HTTP             HTTP      `mapstructure:"http"`
}

type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn or error
}

// Storage selects the session state backend.
type Storage struct {
	Driver     string `mapstructure:"driver"`      // memory, sqlite, postgres or redis
	SQLitePath string `mapstructure:"sqlite_path"` // database file for the sqlite driver
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

type Redis struct {
	URL string        `mapstructure:"-"`   // loaded from REDIS_URL
	TTL time.Duration `mapstructure:"ttl"` // 0 keeps session state forever
}

// Data points at the static data files. Empty paths use the embedded defaults.
// The embedded Quran corpus is a sample of surahs 1, 103, 108, 110 and 112;
// set quran_path to a full corpus for counts over the whole Quran.
type Data struct {
	QuranPath     string `mapstructure:"quran_path"`
	KnowledgePath string `mapstructure:"knowledge_path"`
}

// Assistant tunes the question matcher and the session caps.
type Assistant struct {
	MaxChatHistory     int     `mapstructure:"max_chat_history"`
	MaxQuestionHistory int     `mapstructure:"max_question_history"`
	MaxFeedback        int     `mapstructure:"max_feedback"`
	ExactThreshold     float64 `mapstructure:"exact_threshold"`
	FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold"`
	SimilarityFloor    float64 `mapstructure:"similarity_floor"`
	RandomSeed         int64   `mapstructure:"random_seed"` // 0 seeds from the wall clock
	Timezone           string  `mapstructure:"timezone"`    // IANA name or UTC+3:30 style offset

	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"` // 0 keeps sessions cached forever
}

type Facts struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron expression, evaluated in the assistant timezone
}

type HTTP struct {
	Addr string `mapstructure:"addr"` // empty disables the HTTP API
}

// Load reads configuration from an optional .env file, config files and
// environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.sqlite_path", "data/assistant.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("redis.ttl", "0s")
	v.SetDefault("data.quran_path", "")
	v.SetDefault("data.knowledge_path", "")
	v.SetDefault("assistant.max_chat_history", 100)
	v.SetDefault("assistant.max_question_history", 50)
	v.SetDefault("assistant.max_feedback", 200)
	v.SetDefault("assistant.exact_threshold", 0.8)
	v.SetDefault("assistant.fuzzy_threshold", 0.3)
	v.SetDefault("assistant.similarity_floor", 0.7)
	v.SetDefault("assistant.random_seed", 0)
	v.SetDefault("assistant.timezone", "Asia/Tehran")
	v.SetDefault("assistant.session_idle_ttl", "30m")
	v.SetDefault("facts.enabled", true)
	v.SetDefault("facts.schedule", "0 9 * * *")
	v.SetDefault("http.addr", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Secrets only come from the environment.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.URL = v.GetString("redis_url")

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
		return nil
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
		return nil
	case DriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("%w: REDIS_URL", ErrMissingEnvironmentVariables)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}
}

// RequireTelegram reports an error when the bot token is not configured.
func (c *Config) RequireTelegram() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	return nil
}
