package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"kumarajiva/internal/srs"
	"kumarajiva/pkg/validator"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	BotToken     string         `mapstructure:"bot_token"`
	BotPassword  string         `mapstructure:"bot_password"`
	Database     DatabaseConfig `mapstructure:"db"`
	Timezone     string         `mapstructure:"timezone" validate:"required,timezone"`
	LegacyMode   bool           `mapstructure:"legacy_mode"`
	Learning     srs.Config     `mapstructure:"learning"`
	ReminderTime string         `mapstructure:"reminder_time" validate:"omitempty,datetime=15:04"`
	Env          string         `mapstructure:"env" validate:"oneof=development production"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=sqlite3 postgres"`
	Path     string `mapstructure:"path" validate:"required_if=Driver sqlite3"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" validate:"required_if=Driver postgres"`
	SSLMode  string `mapstructure:"ssl_mode" validate:"oneof=disable require verify-full"`
}

var envBindings = map[string]string{
	"bot_token":                   "BOT_TOKEN",
	"bot_password":                "BOT_PASSWORD",
	"db.driver":                   "DB_DRIVER",
	"db.path":                     "DB_PATH",
	"db.host":                     "DB_HOST",
	"db.port":                     "DB_PORT",
	"db.name":                     "DB_NAME",
	"db.user":                     "DB_USER",
	"db.password":                 "DB_PASSWORD",
	"db.ssl_mode":                 "DB_SSL_MODE",
	"timezone":                    "TIMEZONE",
	"legacy_mode":                 "LEGACY_MODE",
	"reminder_time":               "REMINDER_TIME",
	"env":                         "APP_ENV",
	"learning.daily_new_words":    "DAILY_NEW_WORDS",
	"learning.daily_review_limit": "DAILY_REVIEW_LIMIT",
	"learning.review_intervals":   "REVIEW_INTERVALS",
	"learning.mastery_threshold":  "MASTERY_THRESHOLD",
}

func setDefaults(v *viper.Viper) {
	learning := srs.DefaultConfig()

	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.path", "kumarajiva.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "kumarajiva")
	v.SetDefault("db.user", "kumarajiva")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("timezone", "Asia/Shanghai")
	v.SetDefault("legacy_mode", true)
	v.SetDefault("reminder_time", "")
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("learning.daily_new_words", learning.DailyNewWords)
	v.SetDefault("learning.daily_review_limit", learning.DailyReviewLimit)
	v.SetDefault("learning.review_intervals", learning.ReviewIntervals)
	v.SetDefault("learning.mastery_threshold", learning.MasteryThreshold)
}

// Load reads configuration from .env, environment variables and the
// optional configs/<CONFIG_NAME>.yaml file. Bot credentials are checked
// separately by ValidateBot so that offline commands work without them.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName(getEnv("CONFIG_NAME", "default"))
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnv("CONFIG_PATH", "configs"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Learning.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateBot checks the settings only the Telegram frontend needs.
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.BotPassword == "" {
		return fmt.Errorf("BOT_PASSWORD is required")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.Database.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Host,
			c.Database.Port,
			c.Database.User,
			c.Database.Password,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", c.Database.Path)
}

// IsProduction reports whether production logging should be used.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
