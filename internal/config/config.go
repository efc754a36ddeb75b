package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Scanner providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Database drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Export   ExportConfig   `mapstructure:"export"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration. Driver "memory" keeps
// everything in process and loses it on restart.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ScannerConfig holds the receipt scanning configuration
type ScannerConfig struct {
	Provider       string        `mapstructure:"provider"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	OCREnabled     bool          `mapstructure:"ocr_enabled"`
	OCRLanguages   []string      `mapstructure:"ocr_languages"`
	ReceiptsDir    string        `mapstructure:"receipts_dir"`
	PDFDPI         float64       `mapstructure:"pdf_dpi"`
	PromptsPath    string        `mapstructure:"prompts_path"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CatalogConfig points at an optional concept catalog file. An empty path
// uses the built-in catalog.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// LarkConfig holds the approval notification settings. Notifications are
// off when AppID is empty.
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
	BaseURL   string `mapstructure:"base_url"`
}

// ExportConfig holds report export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// NotificationsEnabled reports whether approvals are announced on Lark
func (c LarkConfig) NotificationsEnabled() bool {
	return c.AppID != ""
}

// Option adjusts the viper instance before the configuration is decoded,
// e.g. to bind command line flags.
type Option func(v *viper.Viper) error

// Load loads configuration from file and environment variables. A missing
// config file is not an error: defaults and the environment still apply.
// Variables from an optional .env file in the working directory are
// loaded first without overriding the real environment.
func Load(configPath string, opts ...Option) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("failed to apply config option: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// Database defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/rendicion.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Scanner defaults
	v.SetDefault("scanner.provider", ProviderGemini)
	v.SetDefault("scanner.timeout", 30*time.Second)
	v.SetDefault("scanner.max_upload_bytes", 10<<20)
	v.SetDefault("scanner.ocr_enabled", true)
	v.SetDefault("scanner.ocr_languages", []string{"spa"})
	v.SetDefault("scanner.receipts_dir", "data/comprobantes")
	v.SetDefault("scanner.pdf_dpi", 200)

	// AI provider defaults
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	v.SetDefault("catalog.watch", true)

	v.SetDefault("export.output_dir", ".")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.chat_id", "LARK_CHAT_ID")

	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q", DriverSQLite, DriverMemory)
	}

	switch c.Scanner.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai.model is required")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("gemini.model is required")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("scanner.provider must be one of %s, %s, %s", ProviderOpenAI, ProviderGemini, ProviderNone)
	}

	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner.timeout must be positive")
	}
	if c.Scanner.MaxUploadBytes <= 0 {
		return fmt.Errorf("scanner.max_upload_bytes must be positive")
	}
	if c.Scanner.ReceiptsDir == "" {
		return fmt.Errorf("scanner.receipts_dir is required")
	}

	if c.Lark.NotificationsEnabled() {
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
		if c.Lark.ChatID == "" {
			return fmt.Errorf("lark.chat_id is required")
		}
	}

	return nil
}

