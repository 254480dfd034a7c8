package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Secret names in the CRM key vault
const (
	SecretDatabaseHost      = "CRM-DB-HOST"
	SecretDatabaseUser      = "CRM-DB-USER"
	SecretDatabasePassword  = "CRM-DB-PASSWORD"
	SecretJWTSecret         = "CRM-JWT-SECRET"
	SecretAPIKey            = "CRM-API-KEY"
	SecretRedisPassword     = "CRM-REDIS-PASSWORD"
	SecretStorageConnection = "CRM-STORAGE-CONNECTION-STRING"
)

// ErrSecretNotFound is returned when a secret has no value in any source
var ErrSecretNotFound = errors.New("secret not found")

// Source defines where secrets are loaded from
type Source string

const (
	// SourceEnvironment reads secrets from environment variables only
	SourceEnvironment Source = "environment"
	// SourceVault reads secrets from Azure Key Vault, environment variables still override
	SourceVault Source = "vault"
	// SourceAuto uses the environment in development and the vault elsewhere
	SourceAuto Source = "auto"
)

// Store reads named secrets from a backing secret manager
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Config holds configuration for the secrets provider
type Config struct {
	Source       Source
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider resolves secrets from environment overrides and an optional store
type Provider struct {
	source Source
	store  Store
	logger *zap.Logger
}

// ResolveSource turns SourceAuto into a concrete source for the environment
func ResolveSource(source Source, environment string) Source {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider builds a provider, connecting to Key Vault when the resolved source needs it
func NewProvider(cfg Config, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)
	if source != SourceVault {
		return NewProviderWithStore(source, nil, logger), nil
	}

	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name required when using vault secret source")
	}
	vault, err := NewVaultClient(VaultConfig{
		VaultName:    cfg.VaultName,
		CacheEnabled: cfg.CacheEnabled,
		CacheTTL:     cfg.CacheTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return NewProviderWithStore(source, vault, logger), nil
}

// NewProviderWithStore builds a provider over an existing store
func NewProviderWithStore(source Source, store Store, logger *zap.Logger) *Provider {
	logger.Info("Secrets provider initialized", zap.String("source", string(source)))
	return &Provider{source: source, store: store, logger: logger}
}

// Lookup returns the value of envName when set, otherwise the named secret from the store.
// In environment mode the store is never consulted.
func (p *Provider) Lookup(ctx context.Context, secretName, envName string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return v, nil
	}
	if p.source != SourceVault || p.store == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, envName)
	}

	v, err := p.store.GetSecret(ctx, secretName)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", secretName, err)
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, secretName)
	}
	return v, nil
}

// Binding maps a secret onto a configuration field
type Binding struct {
	SecretName string
	EnvName    string
	Target     *string
	Required   bool
}

// Resolve fills every binding target. Optional secrets that cannot be found keep their current value.
func (p *Provider) Resolve(ctx context.Context, bindings []Binding) error {
	for _, b := range bindings {
		v, err := p.Lookup(ctx, b.SecretName, b.EnvName)
		if err != nil {
			if b.Required {
				return err
			}
			p.logger.Debug("Optional secret not resolved",
				zap.String("secret_name", b.SecretName),
				zap.Error(err),
			)
			continue
		}
		*b.Target = v
	}
	return nil
}

// Source returns the resolved secret source
func (p *Provider) Source() Source {
	return p.source
}
