package cli

import (
	"fmt"

	"resumecritic/internal/config"
	"resumecritic/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server with the resume upload form and critique API",
	Long: `Start an HTTP server that critiques resumes over HTTP.

Available endpoints:
- GET /: Upload form
- POST /upload: Critique an uploaded PDF, DOCX or text file
- POST /analyze: Critique resume text sent as JSON
- GET /industries: Registered industries
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	serveCmd.Flags().String("bank-file", "", "Keyword bank YAML file (overrides config)")
	serveCmd.Flags().Bool("watch-banks", false, "Reload the bank file when it changes")
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	overrides := map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
		"ca-file":   &cfg.Server.TLS.CAFile,
		"bank-file": &cfg.Critic.BankFile,
	}
	for name, target := range overrides {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
	if flags.Changed("watch-banks") {
		cfg.Critic.WatchBankFile, _ = flags.GetBool("watch-banks")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cmd, cfg)

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}
	if cfg.Critic.WatchBankFile && cfg.Critic.BankFile == "" {
		return fmt.Errorf("--watch-banks requires a bank file")
	}

	vaultClient, err := config.ApplyVaultSecrets(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	c, err := newCritic(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), c, newExtractor(cfg, logger), logger)
	if vaultClient != nil {
		srv.Vault = vaultClient
	}
	return srv.Start(cmd.Context())
}
