package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. AllowedOrigins narrows the
// CORS allow-list for the storefront-facing endpoints; empty allows all.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// RazorpayConfig holds gateway credentials and client settings. KeyID and
// KeySecret are mandatory. WebhookSecret is optional: when empty, webhook
// signature verification is skipped and logged as insecure.
type RazorpayConfig struct {
	KeyID         string        `mapstructure:"key_id"`
	KeySecret     string        `mapstructure:"key_secret"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MerchantName  string        `mapstructure:"merchant_name"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/razorpay-provider")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix("RZP")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for credentials
	if keyID := os.Getenv("RZP_KEY_ID"); keyID != "" {
		cfg.Razorpay.KeyID = keyID
	}
	if secret := os.Getenv("RZP_KEY_SECRET"); secret != "" {
		cfg.Razorpay.KeySecret = secret
	}
	if secret := os.Getenv("RZP_WEBHOOK_SECRET"); secret != "" {
		cfg.Razorpay.WebhookSecret = secret
	}

	return &cfg, nil
}

// Validate fails fast on missing mandatory credentials.
func (c *Config) Validate() error {
	if c.Razorpay.KeyID == "" {
		return errors.New("razorpay key_id is required")
	}
	if c.Razorpay.KeySecret == "" {
		return errors.New("razorpay key_secret is required")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Gateway client defaults
	v.SetDefault("razorpay.endpoint", "https://api.razorpay.com/v1")
	v.SetDefault("razorpay.timeout", 30*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
