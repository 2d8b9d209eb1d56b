// Package config loads application settings from defaults, an optional config
// file and RESEARCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"investment-research/cleaner"
)

const EnvPrefix = "RESEARCH"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Data     DataConfig     `mapstructure:"data"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port" validate:"min=1,max=65535"`
	Mode        string   `mapstructure:"mode" validate:"oneof=debug release test"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type DataConfig struct {
	EODHDAPIKey  string        `mapstructure:"eodhd_api_key"`
	EODHDBaseURL string        `mapstructure:"eodhd_base_url" validate:"required,url"`
	Exchange     string        `mapstructure:"exchange" validate:"required"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gt=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	NewsDays     int           `mapstructure:"news_days" validate:"min=1"`
	NewsLimit    int           `mapstructure:"news_limit" validate:"min=1"`
	PeerLimit    int           `mapstructure:"peer_limit" validate:"min=0"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheSize    int           `mapstructure:"cache_size" validate:"min=0"`
	QuoteTimeout time.Duration `mapstructure:"quote_timeout" validate:"gt=0"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=none deepseek openrouter claude gemini"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"min=1"`
	Temperature float64       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ReportsConfig struct {
	Dir             string        `mapstructure:"dir" validate:"required"`
	DefaultFormat   string        `mapstructure:"default_format" validate:"oneof=pdf latex"`
	Retention       time.Duration `mapstructure:"retention" validate:"gt=0"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule" validate:"required"`
}

type LoggingConfig struct {
	Level   string   `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Outputs []string `mapstructure:"outputs" validate:"dive,oneof=console stdout file"`
	File    string   `mapstructure:"file"`
}

type ScoringConfig struct {
	Weights cleaner.Weights `mapstructure:"weights"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.path", "research.db")

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")

	v.SetDefault("data.eodhd_base_url", "https://eodhd.com/api")
	v.SetDefault("data.exchange", "US")
	v.SetDefault("data.rate_limit", 5.0)
	v.SetDefault("data.timeout", 30*time.Second)
	v.SetDefault("data.news_days", 7)
	v.SetDefault("data.news_limit", 15)
	v.SetDefault("data.peer_limit", 4)
	v.SetDefault("data.cache_ttl", 15*time.Minute)
	v.SetDefault("data.cache_size", 128)
	v.SetDefault("data.quote_timeout", 10*time.Second)

	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("reports.dir", "reports")
	v.SetDefault("reports.default_format", "pdf")
	v.SetDefault("reports.retention", 5*24*time.Hour)
	v.SetDefault("reports.cleanup_schedule", "@hourly")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.outputs", []string{"console"})
	v.SetDefault("logging.file", "logs/research.log")

	w := cleaner.DefaultWeights()
	v.SetDefault("scoring.weights.financial_health", w.FinancialHealth)
	v.SetDefault("scoring.weights.market_sentiment", w.MarketSentiment)
	v.SetDefault("scoring.weights.peer_performance", w.PeerPerformance)
	v.SetDefault("scoring.weights.market_position", w.MarketPosition)
}

// Well-known provider variables accepted alongside the RESEARCH_* names.
var envAliases = map[string][]string{
	"data.eodhd_api_key": {"EODHD_API_KEY"},
	"auth.jwt_secret":    {"SECRET_KEY", "JWT_SECRET"},
	"llm.api_key":        {"LLM_API_KEY", "DEEPSEEK_API_KEY", "OPENROUTER_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY"},
}

// Load reads .env (if present), the optional config file and the environment.
func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("research")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultJWTSecret is the placeholder signing secret set by SetDefaults.
const DefaultJWTSecret = "change-me-before-production"

var ErrInsecureSecret = errors.New("auth.jwt_secret must be set to a private value")

// CheckServe rejects settings that are unsafe for serving the API: an empty
// signing secret, or the placeholder secret in release mode.
func (c *Config) CheckServe() error {
	secret := c.Auth.JWTSecret
	if secret == "" || (c.Server.Mode == "release" && secret == DefaultJWTSecret) {
		return ErrInsecureSecret
	}
	return nil
}

// Validate checks struct tags and scoring weights.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
