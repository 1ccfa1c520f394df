package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayBankInfo()
}

// displayEndpoints shows available endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /            - Upload form")
	fmt.Println("  GET  /health      - Health check")
	fmt.Println("  GET  /stats       - Server statistics")
	fmt.Println("  GET  /industries  - Registered industries")
	fmt.Println("  POST /analyze     - Critique resume text as JSON (requires API key)")
	fmt.Println("  POST /upload      - Critique an uploaded PDF/DOCX/text file (requires API key)")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if keys := s.apiKeySet(); len(keys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(keys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /analyze and /upload")
		if s.VaultWatcher != nil {
			fmt.Println("  - Keys are rotated from Vault")
		}
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxFileSize > 0 {
		fmt.Printf("File size limit: %d bytes (%s)\n", s.MaxFileSize, s.maxFileSizeText())
	} else {
		fmt.Println("File size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

// displayBankInfo shows where keyword banks come from
func (s *Server) displayBankInfo() {
	fmt.Printf("Keyword banks: %d industries\n", len(s.Critic().Registry().Industries()))
	if s.BankWatcher != nil {
		fmt.Printf("  - Reloading on changes to %s\n", s.AppConfig.Critic.BankFile)
	}
}
