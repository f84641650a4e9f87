package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultJWTTTL    = "24h"
	defaultResetTTL  = "30m"
)

// Config holds every runtime setting of the API and its background jobs.
type Config struct {
	AppEnv        string `mapstructure:"APP_ENV"`
	Timezone      string `mapstructure:"APP_TIMEZONE"`
	HTTPAddr      string `mapstructure:"HTTP_ADDR"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	ResetTokenTTL time.Duration `mapstructure:"RESET_TOKEN_TTL"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Redis is optional: realtime events stay in-process when RedisAddr is empty.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	StorageDriver       string `mapstructure:"STORAGE_DRIVER"`
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	StaticURLBase       string `mapstructure:"STATIC_URL_BASE"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	SubscriptionExpirySchedule string `mapstructure:"SUBSCRIPTION_EXPIRY_SCHEDULE"`
}

var defaults = map[string]any{
	"APP_ENV":                      "dev",
	"APP_TIMEZONE":                 "America/Sao_Paulo",
	"HTTP_ADDR":                    ":8080",
	"DATABASE_URL":                 "churrasco.db",
	"PUBLIC_BASE_URL":              "http://localhost:8080",
	"JWT_SECRET":                   defaultJWTSecret,
	"JWT_TTL":                      defaultJWTTTL,
	"RESET_TOKEN_TTL":              defaultResetTTL,
	"CORS_ALLOWED_ORIGINS":         "http://localhost:3000,http://localhost:8081,http://localhost:19006",
	"RATE_LIMIT_PER_MINUTE":        120,
	"REDIS_ADDR":                   "",
	"REDIS_PASSWORD":               "",
	"REDIS_DB":                     0,
	"STORAGE_DRIVER":               "local",
	"UPLOAD_DIR":                   "./uploads",
	"STATIC_URL_BASE":              "/static",
	"CLOUDINARY_CLOUD_NAME":        "",
	"CLOUDINARY_API_KEY":           "",
	"CLOUDINARY_API_SECRET":        "",
	"CLOUDINARY_FOLDER":            "churrasco",
	"STRIPE_SECRET_KEY":            "",
	"SMTP_HOST":                    "",
	"SMTP_PORT":                    587,
	"SMTP_USER":                    "",
	"SMTP_PASS":                    "",
	"SMTP_FROM":                    "no-reply@churrasco.app",
	"SUBSCRIPTION_EXPIRY_SCHEDULE": "@every 1h",
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be > 0")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be > 0")
	}
	switch cfg.StorageDriver {
	case "local":
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return fmt.Errorf("STORAGE_DRIVER=cloudinary requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, cloudinary")
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

// IsProdLike reports whether the environment should run with production settings.
func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	out := make([]string, 0)
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Location is the zone used for calendar dates such as booking days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) MailEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
