package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wanderly/agency-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Reporting  ReportingConfig
	Auth       AuthConfig
	Payment    PaymentConfig
	Supplier   SupplierConfig
	Refund     RefundConfig
	Commission CommissionConfig
	Storage    StorageConfig
	Jobs       JobsConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// ReportingConfig holds configuration for the MS SQL Server finance
// warehouse. The connection is optional and read-only; the dashboard falls
// back to local figures when it is absent.
type ReportingConfig struct {
	Enabled bool
	// URL in format host:port/database (from REPORTING-URL secret)
	URL string
	// User and Password come from the vault, never from plain env in
	// staging/production
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	QueryTimeout    int
}

// AuthConfig holds bearer-token validation settings for the hosted auth
// provider's JWTs
type AuthConfig struct {
	Issuer       string
	Audience     string
	SigningKey   string
	AgencyClaim  string
	RolesClaim   string
}

// PaymentConfig holds payment gateway settings. The API key is resolved
// through the secrets provider.
type PaymentConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// SupplierConfig holds supplier booking API settings
type SupplierConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// RefundConfig carries the refund calculator tunables. Rates are fractions
// (0.10 = 10%).
type RefundConfig struct {
	ClawbackRate   float64
	ServiceFeeRate float64
}

// CommissionConfig holds commission defaults
type CommissionConfig struct {
	// DefaultRate in percent, applied when an accept request carries none
	DefaultRate float64
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

// JobsConfig holds background job settings
type JobsConfig struct {
	QuoteExpiryEnabled bool
	// QuoteExpiryCron uses the 6-field cron format (with seconds)
	QuoteExpiryCron    string
	QuoteExpiryTimeout int // seconds
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment",
	// "vault", or "auto" (environment in development, vault otherwise)
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	BurstSize             int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (r *ReportingConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(r.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (r *ReportingConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(r.QueryTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the gateway timeout as duration
func (p *PaymentConfig) TimeoutDuration() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// TimeoutDuration returns the supplier timeout as duration
func (s *SupplierConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// QuoteExpiryTimeoutDuration returns the quote expiry job timeout as duration
func (j *JobsConfig) QuoteExpiryTimeoutDuration() time.Duration {
	return time.Duration(j.QuoteExpiryTimeout) * time.Second
}

// Load loads configuration from file and environment variables. Secrets are
// not resolved; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.SigningKey == "" {
		cfg.Auth.SigningKey = v.GetString("AUTH_SIGNING_KEY")
	}
	if cfg.Payment.APIKey == "" {
		cfg.Payment.APIKey = v.GetString("PAYMENT_API_KEY")
	}
	if cfg.Supplier.APIKey == "" {
		cfg.Supplier.APIKey = v.GetString("SUPPLIER_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("REPORTING_ENABLED") {
		cfg.Reporting.Enabled = true
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the
// configured source. Development reads plain environment variables;
// staging/production pull the payment, supplier, and reporting credentials
// from Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	// Reporting warehouse credentials only ever live in the vault
	if cfg.Reporting.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadReportingSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load reporting warehouse secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
			// Reporting is optional; do not fail startup
		}
	}

	if !useKeyVault || !isValidEnv {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName))

	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	if signingKey, err := provider.GetSecretOrEnv(ctx, "auth-signing-key", "AUTH_SIGNING_KEY"); err == nil && signingKey != "" {
		cfg.Auth.SigningKey = signingKey
	}
	if apiKey, err := provider.GetSecretOrEnv(ctx, "payment-api-key", "PAYMENT_API_KEY"); err == nil && apiKey != "" {
		cfg.Payment.APIKey = apiKey
	}
	if apiKey, err := provider.GetSecretOrEnv(ctx, "supplier-api-key", "SUPPLIER_API_KEY"); err == nil && apiKey != "" {
		cfg.Supplier.APIKey = apiKey
	}
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// loadReportingSecrets pulls the warehouse credentials from Key Vault only,
// with no env fallback
func loadReportingSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for reporting: %w", err)
	}

	url, err := provider.GetSecret(ctx, "REPORTING-URL")
	if err != nil {
		return fmt.Errorf("failed to get REPORTING-URL from Key Vault: %w", err)
	}
	cfg.Reporting.URL = url

	user, err := provider.GetSecret(ctx, "REPORTING-USERNAME")
	if err != nil {
		return fmt.Errorf("failed to get REPORTING-USERNAME from Key Vault: %w", err)
	}
	cfg.Reporting.User = user

	password, err := provider.GetSecret(ctx, "REPORTING-PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to get REPORTING-PASSWORD from Key Vault: %w", err)
	}
	cfg.Reporting.Password = password

	logger.Info("Reporting warehouse credentials loaded from Key Vault")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Wanderly Agency API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "agency")
	v.SetDefault("database.user", "agency_user")
	v.SetDefault("database.password", "agency_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("reporting.enabled", false)
	v.SetDefault("reporting.maxOpenConns", 10)
	v.SetDefault("reporting.maxIdleConns", 2)
	v.SetDefault("reporting.connMaxLifetime", 300)
	v.SetDefault("reporting.queryTimeout", 30)

	v.SetDefault("auth.agencyClaim", "agency_id")
	v.SetDefault("auth.rolesClaim", "roles")

	v.SetDefault("payment.timeoutSeconds", 15)
	v.SetDefault("supplier.timeoutSeconds", 30)

	v.SetDefault("refund.clawbackRate", 0.10)
	v.SetDefault("refund.serviceFeeRate", 0.05)
	v.SetDefault("commission.defaultRate", 10.0)

	v.SetDefault("jobs.quoteExpiryEnabled", true)
	v.SetDefault("jobs.quoteExpiryCron", "0 0 6 * * *")
	v.SetDefault("jobs.quoteExpiryTimeout", 60)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
