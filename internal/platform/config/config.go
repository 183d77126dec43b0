package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Routes    RoutesConfig    `mapstructure:"routes"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Telephony TelephonyConfig `mapstructure:"telephony"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string        `mapstructure:"path"`
	MaxConnections int           `mapstructure:"max_connections"`
	BusyTimeout    time.Duration `mapstructure:"busy_timeout"`
}

type IdentityConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	ProviderBaseURL string        `mapstructure:"provider_base_url"`
	ProviderAPIKey  string        `mapstructure:"provider_api_key"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type RoutesConfig struct {
	SignInURL   string   `mapstructure:"sign_in_url"`
	PublicPaths []string `mapstructure:"public_paths"`
}

type BillingConfig struct {
	TrialDays                int   `mapstructure:"trial_days"`
	FreeEdits                int   `mapstructure:"free_edits"`
	FreeRegens               int   `mapstructure:"free_regens"`
	AutoReloadThresholdCents int64 `mapstructure:"auto_reload_threshold_cents"`
	AutoReloadAmountCents    int64 `mapstructure:"auto_reload_amount_cents"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type TelephonyConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Domain      string `mapstructure:"domain"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type RateLimitConfig struct {
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
	WebhookPerMinute  int `mapstructure:"webhook_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
