// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// ZohoConfig provides settings for the Zoho CRM integration.
type ZohoConfig interface {
	GetZohoAPIBaseURL() string
	GetZohoAccountsURL() string
	GetZohoClientID() string
	GetZohoClientSecret() string
	IsZohoEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketCommissionAttachments() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                              string
	HTTPAddr                         string
	DatabaseURL                      string
	JWTAccessSecret                  string
	AccessTokenTTL                   time.Duration
	CORSAllowAll                     bool
	CORSOrigins                      []string
	CORSAllowCreds                   bool
	AppBaseURL                       string
	EmailEnabled                     bool
	SMTPHost                         string
	SMTPPort                         int
	SMTPUsername                     string
	SMTPPassword                     string
	EmailFromName                    string
	EmailFromAddress                 string
	ZohoAPIBaseURL                   string
	ZohoAccountsURL                  string
	ZohoClientID                     string
	ZohoClientSecret                 string
	MinIOEndpoint                    string
	MinIOAccessKey                   string
	MinIOSecretKey                   string
	MinIOUseSSL                      bool
	MinIOMaxFileSize                 int64
	MinioBucketCommissionAttachments string
	RedisURL                         string
	RedisTLSInsecure                 bool
	AsynqQueueName                   string
	AsynqConcurrency                 int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// ZohoConfig implementation
func (c *Config) GetZohoAPIBaseURL() string  { return c.ZohoAPIBaseURL }
func (c *Config) GetZohoAccountsURL() string { return c.ZohoAccountsURL }
func (c *Config) GetZohoClientID() string    { return c.ZohoClientID }
func (c *Config) GetZohoClientSecret() string {
	return c.ZohoClientSecret
}
func (c *Config) IsZohoEnabled() bool {
	return c.ZohoClientID != "" && c.ZohoClientSecret != ""
}

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketCommissionAttachments() string {
	return c.MinioBucketCommissionAttachments
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                              getEnv("APP_ENV", "development"),
		HTTPAddr:                         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                      getEnv("DATABASE_URL", ""),
		JWTAccessSecret:                  getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:                   mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		CORSAllowAll:                     corsAllowAll,
		CORSOrigins:                      corsOrigins,
		CORSAllowCreds:                   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:                       getEnv("APP_BASE_URL", "http://localhost:4200"),
		EmailEnabled:                     emailEnabled && smtpHost != "",
		SMTPHost:                         smtpHost,
		SMTPPort:                         int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:                     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:                     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:                    getEnv("EMAIL_FROM_NAME", "PJ Commission"),
		EmailFromAddress:                 getEnv("EMAIL_FROM_ADDRESS", ""),
		ZohoAPIBaseURL:                   getEnv("ZOHO_API_BASE_URL", "https://www.zohoapis.com"),
		ZohoAccountsURL:                  getEnv("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"),
		ZohoClientID:                     getEnv("ZOHO_CLIENT_ID", ""),
		ZohoClientSecret:                 getEnv("ZOHO_CLIENT_SECRET", ""),
		MinIOEndpoint:                    getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:                   getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:                   getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                      strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:                 mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "52428800")),
		MinioBucketCommissionAttachments: getEnv("MINIO_BUCKET_COMMISSION_ATTACHMENTS", "commission-attachments"),
		RedisURL:                         getEnv("REDIS_URL", ""),
		RedisTLSInsecure:                 strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:                   getEnv("ASYNQ_QUEUE_NAME", "default"),
		AsynqConcurrency:                 int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
