package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"resumecritic/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// How often the serve command polls the API key secret for a new version; 0 disables
	WatchInterval time.Duration `mapstructure:"watchInterval"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// APIKeysField is the secret field holding comma-separated API keys
const APIKeysField = "keys"

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// KVv2 path whose "keys" field holds comma-separated server API keys
	APIKeys string `mapstructure:"apiKeys"`
}

// secretReader is the subset of the Vault logical API used here
type secretReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	reader secretReader
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault; it returns nil when Vault is disabled
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "failed to connect to vault", err).
			WithContext("address", apiConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return newVaultClientWithReader(client.Logical(), logger), nil
}

func newVaultClientWithReader(reader secretReader, logger *errors.Logger) *VaultClient {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &VaultClient{reader: reader, logger: logger}
}

// resolveVaultToken prefers the inline token over the token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", cfg.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)
	secret, err := vc.reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the numeric shapes Vault's JSON decoding produces
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSliceSecret reads a comma-separated string field as a slice
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return nil, err
	}
	value, ok := secret.Data[key]
	if !ok {
		return nil, fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return splitList(s), nil
}

// ApplyVaultSecrets loads server API keys from Vault into the config and
// returns the client for later polling; both are nil when Vault is disabled
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Vault.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return nil, err
	}
	if err := applyAPIKeys(client, cfg, logger); err != nil {
		return nil, err
	}
	return client, nil
}

func applyAPIKeys(client *VaultClient, cfg *Config, logger *errors.Logger) error {
	path := cfg.Vault.Secrets.APIKeys
	if path == "" {
		return nil
	}
	keys, err := client.GetStringSliceSecret(path, APIKeysField)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load API keys from vault", err).
			WithContext("path", path)
	}
	if len(keys) == 0 {
		logger.Warn("No API keys found in Vault", "path", path)
		return nil
	}
	cfg.Server.APIKeys = keys
	logger.Info("API keys loaded from Vault", "count", len(keys))
	return nil
}
