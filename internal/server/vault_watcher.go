package server

import (
	"fmt"
	"sync"
	"time"

	"resumecritic/internal/config"
	"resumecritic/internal/errors"
)

// VaultClientInterface defines the Vault operations the watcher needs
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

// APIKeysCallback receives a freshly rotated, non-empty API key list
type APIKeysCallback func(keys []string)

// VaultWatcher polls the API key secret and hands new key sets to a callback
// when its KVv2 version moves forward.
type VaultWatcher struct {
	mu sync.RWMutex

	client       VaultClientInterface
	secretPath   string
	pollInterval time.Duration
	onKeys       APIKeysCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastChecked time.Time
	lastError   string
	rotations   int64
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, onKeys APIKeysCallback, logger *errors.Logger) *VaultWatcher {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onKeys:       onKeys,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start records the current secret version and begins polling
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("vault watcher poll interval must be positive")
	}

	// keys at this version were applied at startup
	if secret, err := vw.client.GetSecretV2(vw.secretPath); err == nil {
		vw.lastVersion = secret.Version
	}

	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault API key watcher started",
		"secret_path", vw.secretPath,
		"poll_interval", vw.pollInterval,
		"version", vw.lastVersion)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault API key watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll checks the secret version once and applies newer keys
func (vw *VaultWatcher) poll() {
	changed, err := vw.checkForUpdates()
	if err != nil {
		vw.recordError(err)
		vw.logger.LogError(err, "Failed to check Vault for API key updates")
		return
	}
	if !changed {
		return
	}

	keys, err := vw.client.GetStringSliceSecret(vw.secretPath, config.APIKeysField)
	if err != nil {
		vw.recordError(err)
		vw.logger.LogError(err, "Failed to fetch rotated API keys from Vault")
		return
	}
	if len(keys) == 0 {
		vw.logger.Warn("Rotated Vault secret holds no API keys, keeping current keys",
			"secret_path", vw.secretPath)
		return
	}

	vw.onKeys(keys)

	vw.mu.Lock()
	vw.rotations++
	vw.lastError = ""
	vw.mu.Unlock()
	vw.logger.Info("API keys rotated from Vault", "count", len(keys))
}

// checkForUpdates checks if the Vault secret version has changed
func (vw *VaultWatcher) checkForUpdates() (bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err != nil {
		return false, fmt.Errorf("failed to read secret: %w", err)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	vw.lastChecked = time.Now()
	if secret.Version > vw.lastVersion {
		vw.lastVersion = secret.Version
		return true, nil
	}
	return false, nil
}

func (vw *VaultWatcher) recordError(err error) {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	vw.lastError = err.Error()
}

// Status returns the current status of the VaultWatcher for the stats endpoint
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
		"rotations":     vw.rotations,
	}
	if !vw.lastChecked.IsZero() {
		status["last_checked"] = vw.lastChecked
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}

// startVaultWatcher polls Vault for rotated API keys when configured
func (s *Server) startVaultWatcher() error {
	if s.Vault == nil {
		return nil
	}
	vaultCfg := s.AppConfig.Vault
	if vaultCfg.WatchInterval <= 0 || vaultCfg.Secrets.APIKeys == "" {
		return nil
	}

	watcher := NewVaultWatcher(s.Vault, vaultCfg.Secrets.APIKeys, vaultCfg.WatchInterval, s.SetAPIKeys, s.Logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	s.VaultWatcher = watcher
	return nil
}
