// Package config provides server configuration for certrotate.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (required paths, intervals, discovery settings)
//   - sanitize.go: Log sanitization (hide key passphrases)
//   - convert.go: Translation into component configs
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and CERTROTATE_ environment variables.
package config
