package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Jobs      JobsConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
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
	ConnectRetries  int
}

// RedisConfig configures the optional report cache
type RedisConfig struct {
	Enabled   bool
	URL       string
	Password  string
	DB        int
	KeyPrefix string
}

// AnalyticsConfig tunes report computation
type AnalyticsConfig struct {
	// StageWeightsVersion selects the registered forecast weight table
	StageWeightsVersion string
	// TopN bounds ranked lists such as top clients and city segments
	TopN int
	// Timezone is the IANA zone used to derive "now" and calendar buckets
	Timezone string
	// CacheTTL is how long a rendered report stays in the cache (seconds)
	CacheTTL int
	// ReportTimeout bounds the computation of one report (seconds)
	ReportTimeout int
}

// JobsConfig configures the background report jobs. Schedules use cron syntax with seconds.
type JobsConfig struct {
	Enabled           bool
	CacheWarmSchedule string
	SnapshotSchedule  string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

// AuthConfig holds the credentials accepted by the API
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	APIKey    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins, "*" allows all
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistPaths bypass rate limiting (e.g. /health)
	WhitelistPaths []string
}

// ConnectionString builds PostgreSQL connection string
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

// CacheTTLDuration returns the report cache TTL as duration
func (a *AnalyticsConfig) CacheTTLDuration() time.Duration {
	return time.Duration(a.CacheTTL) * time.Second
}

// ReportTimeoutDuration returns the report timeout as duration
func (a *AnalyticsConfig) ReportTimeoutDuration() time.Duration {
	return time.Duration(a.ReportTimeout) * time.Second
}

// Location loads the configured timezone
func (a *AnalyticsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, &analytics.ConfigurationError{Field: "analytics.timezone", Value: a.Timezone, Reason: err.Error()}
	}
	return loc, nil
}

// StageWeights returns the configured forecast weight table
func (a *AnalyticsConfig) StageWeights() (analytics.StageWeights, error) {
	return analytics.LookupStageWeights(a.StageWeightsVersion)
}

// Validate rejects configurations the engine cannot run with
func (c *Config) Validate() error {
	if _, err := c.Analytics.StageWeights(); err != nil {
		return err
	}
	if _, err := c.Analytics.Location(); err != nil {
		return err
	}
	if c.Analytics.TopN <= 0 {
		return &analytics.ConfigurationError{Field: "analytics.topN", Value: fmt.Sprint(c.Analytics.TopN), Reason: "must be positive"}
	}
	switch c.Storage.Mode {
	case "local", "cloud":
	default:
		return &analytics.ConfigurationError{Field: "storage.mode", Value: c.Storage.Mode, Reason: "must be local or cloud"}
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return &analytics.ConfigurationError{Field: "redis.url", Reason: "required when redis is enabled"}
	}
	return nil
}

// Load loads configuration from file and environment variables.
// Use LoadWithSecrets to also resolve secrets from Key Vault.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
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

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration, resolves secrets from the configured source and validates the result.
// Environment variables always override vault values.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	provider, err := secrets.NewProvider(secrets.Config{
		Source:       secrets.Source(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if err := provider.Resolve(ctx, cfg.secretBindings()); err != nil {
		return nil, fmt.Errorf("failed to resolve secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.App.Environment),
		zap.String("secret_source", string(provider.Source())),
		zap.String("stage_weights", cfg.Analytics.StageWeightsVersion),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)
	return cfg, nil
}

func (c *Config) secretBindings() []secrets.Binding {
	return []secrets.Binding{
		{SecretName: secrets.SecretDatabaseHost, EnvName: "DATABASE_HOST", Target: &c.Database.Host},
		{SecretName: secrets.SecretDatabaseUser, EnvName: "DATABASE_USER", Target: &c.Database.User},
		{SecretName: secrets.SecretDatabasePassword, EnvName: "DATABASE_PASSWORD", Target: &c.Database.Password},
		{SecretName: secrets.SecretJWTSecret, EnvName: "AUTH_JWTSECRET", Target: &c.Auth.JWTSecret},
		{SecretName: secrets.SecretAPIKey, EnvName: "AUTH_APIKEY", Target: &c.Auth.APIKey},
		{SecretName: secrets.SecretRedisPassword, EnvName: "REDIS_PASSWORD", Target: &c.Redis.Password},
		{SecretName: secrets.SecretStorageConnection, EnvName: "STORAGE_CLOUDCONNECTIONSTRING", Target: &c.Storage.CloudConnectionString},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Pocket CRM Analytics API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "crm")
	v.SetDefault("database.user", "crm_user")
	v.SetDefault("database.password", "crm_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.connectRetries", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "crm-analytics:")

	v.SetDefault("analytics.stageWeightsVersion", analytics.StageWeightsV1.Version)
	v.SetDefault("analytics.topN", 10)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.cacheTTL", 300)
	v.SetDefault("analytics.reportTimeout", 30)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.cacheWarmSchedule", "0 */5 * * * *")
	v.SetDefault("jobs.snapshotSchedule", "0 0 2 * * *")

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudConnectionString", "")
	v.SetDefault("storage.cloudContainer", "report-snapshots")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.keyVaultName", "")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "pocket-crm")
	v.SetDefault("auth.apiKey", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'none'; frame-ancestors 'none'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
