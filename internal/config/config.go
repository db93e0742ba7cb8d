package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port" validate:"required,numeric"`
	Environment string `mapstructure:"environment" validate:"oneof=development production test"`
	LogLevel    string `mapstructure:"log_level"`

	// Auth. Empty disables bearer auth.
	APIKey string `mapstructure:"cvparse_api_key"`

	// Allowed CORS origins, comma separated.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count" validate:"min=1"`
	MaxQueueSize int `mapstructure:"max_queue_size" validate:"min=1"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"min=1"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Parsing
	SegmentMode          string `mapstructure:"segment_mode" validate:"oneof=split prefix"`
	PDFFallbackPdftotext bool   `mapstructure:"pdf_fallback_pdftotext"`

	// Object storage. Empty endpoint keeps objects in memory.
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key" validate:"required_with=S3Endpoint"`
	S3SecretKey string `mapstructure:"s3_secret_key" validate:"required_with=S3Endpoint"`
	S3Bucket    string `mapstructure:"s3_bucket" validate:"required"`
	S3Region    string `mapstructure:"s3_region"`
	S3UseSSL    bool   `mapstructure:"s3_use_ssl"`

	// Events. Empty URL disables publishing.
	RabbitMQURL    string `mapstructure:"rabbitmq_url"`
	EventsExchange string `mapstructure:"events_exchange" validate:"required_with=RabbitMQURL"`
}

var defaults = map[string]any{
	"port":                   "5000",
	"environment":            "production",
	"log_level":              "info",
	"cvparse_api_key":        "",
	"cors_origins":           "",
	"worker_count":           4,
	"max_queue_size":         100,
	"max_upload_bytes":       int64(10485760), // 10MB
	"job_ttl":                time.Hour,
	"segment_mode":           "split",
	"pdf_fallback_pdftotext": true,
	"s3_endpoint":            "",
	"s3_access_key":          "",
	"s3_secret_key":          "",
	"s3_bucket":              "resume-parser-bucket",
	"s3_region":              "",
	"s3_use_ssl":             true,
	"rabbitmq_url":           "",
	"events_exchange":        "resume.events",
}

// Load reads configuration from the environment (PORT, S3_BUCKET, ...) and
// an optional cvparse.yaml in the working directory or /etc/cvparse.
func Load() (Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	v.SetConfigName("cvparse")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/cvparse")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("cors_origins"))
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults replaces non-positive numeric settings with their defaults.
func (c *Config) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10485760
	}
	if c.JobTTL <= 0 {
		c.JobTTL = time.Hour
	}
	c.SegmentMode = strings.ToLower(strings.TrimSpace(c.SegmentMode))
	if c.SegmentMode == "" {
		c.SegmentMode = "split"
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
