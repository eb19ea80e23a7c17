// Package confloader loads configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Environment variables (CERTROTATE_ prefix, "__" between levels)
//  2. Configuration file (YAML)
//  3. Values already present in the target struct (defaults)
//
// Watcher reports changes to the configuration file so selected keys
// can be applied without a restart.
package confloader
