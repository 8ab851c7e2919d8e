package config

import (
	"fmt"
	"os"
	"time"
	// the default timezone must resolve on hosts without a zoneinfo database
	_ "time/tzdata"

	"vocabpoll/internal/domain"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Telegram    TelegramConfig    `yaml:"telegram"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Database    DatabaseConfig    `yaml:"database"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Polling     PollingConfig     `yaml:"polling"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
}

// TelegramConfig holds bot credentials and admin settings
type TelegramConfig struct {
	Token       string  `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminIDs    []int64 `yaml:"admin_ids" envconfig:"ADMIN_IDS"`
	AdminChatID int64   `yaml:"admin_chat_id" envconfig:"ADMIN_CHAT_ID"`
}

// WebhookConfig enables webhook mode when URL is set; long polling is used otherwise
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" envconfig:"DB_HOST"`
	Port     string `yaml:"port" envconfig:"DB_PORT"`
	Name     string `yaml:"name" envconfig:"DB_NAME"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
}

// OpenAIConfig configures translation and suggestion generation.
// Both features are off without an API key.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	Model          string `yaml:"model" envconfig:"OPENAI_MODEL"`
	SourceLanguage string `yaml:"source_language" envconfig:"SOURCE_LANGUAGE"`
	TargetLanguage string `yaml:"target_language" envconfig:"TARGET_LANGUAGE"`
}

// PollingConfig holds the daily quiet window
type PollingConfig struct {
	QuietStartHour int    `yaml:"quiet_start_hour" envconfig:"QUIET_START_HOUR"`
	QuietEndHour   int    `yaml:"quiet_end_hour" envconfig:"QUIET_END_HOUR"`
	Timezone       string `yaml:"timezone" envconfig:"TIMEZONE"`
}

// SuggestionsConfig holds the schedule of batch jobs. Specs have a seconds field.
type SuggestionsConfig struct {
	Schedule        string `yaml:"schedule" envconfig:"SUGGESTIONS_SCHEDULE"`
	Concurrency     int    `yaml:"concurrency" envconfig:"SUGGESTION_CONCURRENCY"`
	Retries         int    `yaml:"retries" envconfig:"SUGGESTION_RETRIES"`
	CleanupSchedule string `yaml:"cleanup_schedule" envconfig:"CLEANUP_SCHEDULE"`
}

// Defaults returns the configuration used for keys that are not set anywhere
func Defaults() *Config {
	return &Config{
		Webhook: WebhookConfig{Listen: ":8080"},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: "5432",
			Name: "vocabpoll",
			User: "vocabpoll",
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4",
			SourceLanguage: "English",
			TargetLanguage: "Ukrainian",
		},
		Polling: PollingConfig{
			QuietStartHour: 23,
			QuietEndHour:   7,
			Timezone:       "Europe/Kyiv",
		},
		Suggestions: SuggestionsConfig{
			Schedule:        "0 0 10 * * 1",
			Concurrency:     4,
			Retries:         3,
			CleanupSchedule: "0 30 4 * * *",
		},
	}
}

// Load reads configuration from defaults, the YAML file named by CONFIG_FILE,
// a .env file and environment variables, later sources winning
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if !validHour(c.Polling.QuietStartHour) {
		return fmt.Errorf("QUIET_START_HOUR must be within 0..23, got %d", c.Polling.QuietStartHour)
	}
	if !validHour(c.Polling.QuietEndHour) {
		return fmt.Errorf("QUIET_END_HOUR must be within 0..23, got %d", c.Polling.QuietEndHour)
	}
	if _, err := time.LoadLocation(c.Polling.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Polling.Timezone, err)
	}
	if c.Suggestions.Concurrency < 1 {
		return fmt.Errorf("SUGGESTION_CONCURRENCY must be positive")
	}
	if c.Suggestions.Retries < 1 {
		return fmt.Errorf("SUGGESTION_RETRIES must be positive")
	}
	return nil
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Polling.Timezone)
}

// QuietHours returns the window in which users are not polled
func (c *Config) QuietHours() (domain.QuietHours, error) {
	loc, err := c.Location()
	if err != nil {
		return domain.QuietHours{}, err
	}
	return domain.QuietHours{
		Start:    c.Polling.QuietStartHour,
		End:      c.Polling.QuietEndHour,
		Location: loc,
	}, nil
}

// OpenAIEnabled reports whether translation and suggestions can be used
func (c *Config) OpenAIEnabled() bool {
	return c.OpenAI.APIKey != ""
}
