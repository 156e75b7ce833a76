package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. ASKAI_PORT.
const Prefix = "ASKAI"

type Config struct {
	Port  string `envconfig:"PORT" default:"5000"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	KBPath    string `envconfig:"KB_PATH" default:"faq.json"`
	RulesPath string `envconfig:"RULES_PATH"`

	// Provider credentials also fall back to the unprefixed variable names.
	RemoteProvider     string        `envconfig:"REMOTE_PROVIDER" default:"gemini"`
	GeminiAPIKey       string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel        string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiBaseURL      string        `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel        string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL      string        `envconfig:"OPENAI_BASE_URL"`
	RemoteTimeout      time.Duration `envconfig:"REMOTE_TIMEOUT" default:"30s"`
	StrictRemoteErrors bool          `envconfig:"STRICT_REMOTE_ERRORS" default:"false"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxBodyBytes       int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	MigrationsDir    string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	LogFlushInterval time.Duration `envconfig:"LOG_FLUSH_INTERVAL" default:"5s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"askai-kb"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// HasS3 reports whether static S3 credentials are set. The endpoint is
// optional and only needed for S3-compatible services.
func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// RemoteAPIKey returns the credential for the selected provider.
func (c *Config) RemoteAPIKey() string {
	if c.RemoteProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// RemoteModel returns the model for the selected provider.
func (c *Config) RemoteModel() string {
	if c.RemoteProvider == "openai" {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

// RemoteBaseURL returns the endpoint override for the selected provider.
func (c *Config) RemoteBaseURL() string {
	if c.RemoteProvider == "openai" {
		return c.OpenAIBaseURL
	}
	return c.GeminiBaseURL
}

func (c *Config) RemoteConfigured() bool {
	return c.RemoteAPIKey() != ""
}
