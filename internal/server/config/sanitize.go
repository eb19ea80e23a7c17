package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if len(cfg.Remote.KeyPassphrases) > 0 {
		masked := make([]string, len(cfg.Remote.KeyPassphrases))
		for i, p := range cfg.Remote.KeyPassphrases {
			masked[i] = maskSecret(p)
		}
		sanitized.Remote.KeyPassphrases = masked
	}
	sanitized.Remote.SecretNames = append([]string(nil), cfg.Remote.SecretNames...)
	sanitized.Remote.ACMCertARNs = append([]string(nil), cfg.Remote.ACMCertARNs...)

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
