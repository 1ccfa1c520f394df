package config

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFiles(t *testing.T, names ...string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("-----BEGIN TEST-----\n"), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths[name] = p
	}
	return paths
}

func TestValidateTLSConfig(t *testing.T) {
	files := writeTempFiles(t, "cert.pem", "key.pem", "ca.pem")

	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errContains string
	}{
		{name: "disabled", tls: TLSConfig{Mode: "disabled"}},
		{name: "empty mode", tls: TLSConfig{}},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: files["cert.pem"], KeyFile: files["key.pem"]},
		},
		{
			name:        "server mode missing key",
			tls:         TLSConfig{Mode: "server", CertFile: files["cert.pem"]},
			expectError: true,
			errContains: "keyFile is required",
		},
		{
			name:        "server mode unreadable cert",
			tls:         TLSConfig{Mode: "server", CertFile: "/nonexistent/cert.pem", KeyFile: files["key.pem"]},
			expectError: true,
			errContains: "not accessible",
		},
		{
			name: "mutual mode",
			tls: TLSConfig{Mode: "mutual", CertFile: files["cert.pem"], KeyFile: files["key.pem"],
				CAFile: files["ca.pem"], ClientAuthPolicy: "verify"},
		},
		{
			name:        "mutual mode missing CA",
			tls:         TLSConfig{Mode: "mutual", CertFile: files["cert.pem"], KeyFile: files["key.pem"]},
			expectError: true,
			errContains: "caFile is required",
		},
		{
			name: "mutual mode bad policy",
			tls: TLSConfig{Mode: "mutual", CertFile: files["cert.pem"], KeyFile: files["key.pem"],
				CAFile: files["ca.pem"], ClientAuthPolicy: "sometimes"},
			expectError: true,
			errContains: "invalid clientAuthPolicy",
		},
		{
			name: "bad version",
			tls: TLSConfig{Mode: "server", CertFile: files["cert.pem"], KeyFile: files["key.pem"],
				MinVersion: "1.1"},
			expectError: true,
			errContains: "invalid TLS minVersion",
		},
		{
			name: "unknown cipher",
			tls: TLSConfig{Mode: "server", CertFile: files["cert.pem"], KeyFile: files["key.pem"],
				CipherSuites: []string{"TLS_NOT_REAL"}},
			expectError: true,
			errContains: "unsupported cipher suite",
		},
		{name: "invalid mode", tls: TLSConfig{Mode: "sometimes"}, expectError: true, errContains: "invalid TLS mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTLSVersion(t *testing.T) {
	tests := map[string]uint16{"": tls.VersionTLS12, "1.2": tls.VersionTLS12, "1.3": tls.VersionTLS13}
	for in, want := range tests {
		got, err := ParseTLSVersion(in)
		if err != nil {
			t.Errorf("ParseTLSVersion(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTLSVersion(%q) = %x, want %x", in, got, want)
		}
	}
}

func TestParseCipherSuites(t *testing.T) {
	ids, err := ParseCipherSuites(nil)
	if err != nil || ids != nil {
		t.Errorf("expected nil, nil for empty list, got %v, %v", ids, err)
	}

	name := tls.CipherSuites()[0].Name
	ids, err = ParseCipherSuites([]string{name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != tls.CipherSuites()[0].ID {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestClientAuthType(t *testing.T) {
	tests := map[string]tls.ClientAuthType{
		"":        tls.RequireAndVerifyClientCert,
		"require": tls.RequireAndVerifyClientCert,
		"request": tls.RequestClientCert,
		"verify":  tls.VerifyClientCertIfGiven,
	}
	for policy, want := range tests {
		if got := ClientAuthType(policy); got != want {
			t.Errorf("ClientAuthType(%q) = %v, want %v", policy, got, want)
		}
	}
}
