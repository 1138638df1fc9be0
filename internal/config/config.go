// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "NUTRIFACIL"

var ErrMissingAPIKey = errors.New("AI service API key is required (set NUTRIFACIL_API_KEY, GEMINI_API_KEY or API_KEY)")

type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	DBPath         string        `mapstructure:"db_path"`
	SessionSecret  string        `mapstructure:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	LogLevel       string        `mapstructure:"log_level"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8011)
	v.SetDefault("db_path", "./data/nutrifacil.db")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_key", "")
}

// Load reads the configuration like Read and validates it.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg, err := Read(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads .env, an optional config file and the environment into v and
// decodes the result without validating it.
func Read(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("loading .env file", "error", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Info("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
