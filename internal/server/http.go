package server

import (
	"sync/atomic"
	"time"

	"resumecritic/internal/config"
	"resumecritic/internal/critic"
	"resumecritic/internal/errors"
	"resumecritic/internal/extract"

	"github.com/go-playground/validator/v10"
)

const serviceName = "resumecritic"

// formOverhead is the multipart room allowed on top of the file size limit
const formOverhead int64 = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Timeout configurations
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Largest accepted resume file; request bodies may carry formOverhead on top
	MaxFileSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Source of rotated API keys; leave nil when Vault is disabled
	Vault VaultClientInterface

	// Background reloaders, nil when not configured
	BankWatcher  *BankWatcher
	VaultWatcher *VaultWatcher

	// Logger
	Logger *errors.Logger

	apiKeys   atomic.Pointer[map[string]bool]
	critic    atomic.Pointer[critic.Critic]
	extractor *extract.Extractor
	validate  *validator.Validate
	counters  requestCounters
	started   time.Time
}

type requestCounters struct {
	analyses atomic.Int64
	failures atomic.Int64
	uploads  atomic.Int64
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host            string
	Port            string
	Version         string
	TLSConfig       config.TLSConfig
	APIKeys         []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxFileSize     int64
	RateLimit       *config.RateLimitConfig
}

// ServerConfigFrom maps the loaded application config onto a ServerConfig
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Version:         version,
		TLSConfig:       cfg.Server.TLS,
		APIKeys:         cfg.Server.APIKeys,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxFileSize:     cfg.App.MaxFileSize,
		RateLimit:       &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server serving critiques from c and extracting uploads with extractor
func NewServer(appCfg *config.Config, cfg ServerConfig, c *critic.Critic, extractor *extract.Extractor, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if appCfg == nil {
		appCfg = &config.Config{}
	}
	if extractor == nil {
		extractor = extract.New(appCfg.Extraction, logger)
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			cfg.RateLimit.CleanupEvery,
			cfg.RateLimit.IdleTTL,
			logger,
		)
	}

	s := &Server{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         cfg.Version,
		AppConfig:       appCfg,
		TLSConfig:       cfg.TLSConfig,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		MaxFileSize:     cfg.MaxFileSize,
		RateLimit:       cfg.RateLimit,
		RateLimiter:     rateLimiter,
		Logger:          logger,
		extractor:       extractor,
		validate:        validator.New(),
		started:         time.Now(),
	}
	s.SetAPIKeys(cfg.APIKeys)
	s.SetCritic(c)
	return s
}

// Critic returns the critic currently serving requests
func (s *Server) Critic() *critic.Critic {
	return s.critic.Load()
}

// SetCritic swaps the serving critic; in-flight requests finish on the old one
func (s *Server) SetCritic(c *critic.Critic) {
	if c == nil {
		c = critic.New(critic.MustDefaultRegistry())
	}
	s.critic.Store(c)
}

// SetAPIKeys replaces the accepted API keys; an empty list disables authentication
func (s *Server) SetAPIKeys(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}
	s.apiKeys.Store(&apiKeyMap)
}

func (s *Server) apiKeySet() map[string]bool {
	if keys := s.apiKeys.Load(); keys != nil {
		return *keys
	}
	return nil
}

// maxRequestSize bounds any request body the API accepts
func (s *Server) maxRequestSize() int64 {
	if s.MaxFileSize <= 0 {
		return 0
	}
	return s.MaxFileSize + formOverhead
}
