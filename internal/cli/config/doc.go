// Package config defines the certrotate-cli configuration.
//
// Settings resolve in this order, later winning: built-in defaults,
// the YAML file at DefaultConfigPath, CERTROTATE_CLI_* environment
// variables, then command-line flags.
package config
