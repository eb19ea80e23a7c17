package config

import "time"

// CLIConfig is the configuration for certrotate-cli.
type CLIConfig struct {
	// Server is the certrotate API address.
	Server string `koanf:"server"`

	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output"`

	// Timeout bounds a single API request. Manual sync waits for a whole
	// cycle, so keep it above the server's remote and reload timeouts.
	Timeout time.Duration `koanf:"timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "http://localhost:8000",
		Output:  "table",
		Timeout: 2 * time.Minute,
	}
}
