package config

import (
	"crypto/tls"
	"fmt"
	"os"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	switch t.Mode {
	case "disabled", "":
		return nil
	case "server":
		if err := requireFiles(map[string]string{"certFile": t.CertFile, "keyFile": t.KeyFile}, t.Mode); err != nil {
			return err
		}
	case "mutual":
		if err := requireFiles(map[string]string{"certFile": t.CertFile, "keyFile": t.KeyFile, "caFile": t.CAFile}, t.Mode); err != nil {
			return err
		}
		if err := validateClientAuthPolicy(t.ClientAuthPolicy); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}

	if _, err := ParseTLSVersion(t.MinVersion); err != nil {
		return err
	}
	if _, err := ParseCipherSuites(t.CipherSuites); err != nil {
		return err
	}
	return nil
}

// requireFiles checks that every named file is set and readable
func requireFiles(files map[string]string, mode string) error {
	for _, name := range []string{"certFile", "keyFile", "caFile"} {
		path, wanted := files[name]
		if !wanted {
			continue
		}
		if path == "" {
			return fmt.Errorf("%s is required for %s mode", name, mode)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s %q is not accessible: %w", name, path, err)
		}
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

// ParseTLSVersion maps a configured version string to a crypto/tls constant
func ParseTLSVersion(v string) (uint16, error) {
	switch v {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", v)
	}
}

// ParseCipherSuites resolves cipher suite names; an empty list keeps Go defaults
func ParseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		known[s.Name] = s.ID
	}
	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unsupported cipher suite: %s", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ClientAuthType maps the configured policy to a crypto/tls client auth mode
func ClientAuthType(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
