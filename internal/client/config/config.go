// Package config loads client settings from defaults, ~/.iskra/config.yaml,
// a .env file and ISKRA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
)

const (
	ConfigName = "config"
	EnvPrefix  = "ISKRA"

	DefaultReturnURL = "iskra://iskra-ai/payment-success"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Usage   UsageConfig   `mapstructure:"usage"`
	Billing BillingConfig `mapstructure:"billing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type UsageConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	DisplayInterval time.Duration `mapstructure:"display_interval"`
}

type BillingConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	ReturnURL    string        `mapstructure:"return_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LogDir is where the rotating log file lives.
func (c *Config) LogDir() string {
	return filepath.Join(c.Storage.Dir, "logs")
}

func setDefaults(v *viper.Viper, stateDir string) {
	v.SetDefault("api.url", "https://cli.cryptocatslab.ru")
	v.SetDefault("api.timeout", "10s")

	v.SetDefault("storage.dir", stateDir)

	v.SetDefault("usage.refresh_interval", "3m")
	v.SetDefault("usage.display_interval", "1s")

	v.SetDefault("billing.poll_interval", "5s")
	v.SetDefault("billing.max_attempts", 60)
	v.SetDefault("billing.return_url", DefaultReturnURL)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads the configuration. A missing config file or .env is not an error.
// The returned viper instance lets callers bind command-line flags before
// calling Unmarshal again.
func Load() (*Config, *viper.Viper, error) {
	stateDir, err := storage.DefaultDir()
	if err != nil {
		return nil, nil, err
	}

	// Values already in the environment win over .env.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(stateDir)

	setDefaults(v, stateDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := Unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Unmarshal decodes and validates v.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("api.url must not be empty")
	}
	if c.Storage.Dir == "" {
		return errors.New("storage.dir must not be empty")
	}
	if c.Usage.RefreshInterval <= 0 || c.Usage.DisplayInterval <= 0 {
		return errors.New("usage intervals must be positive")
	}
	if c.Billing.PollInterval <= 0 || c.Billing.MaxAttempts <= 0 {
		return errors.New("billing.poll_interval and billing.max_attempts must be positive")
	}
	return nil
}
