// Package command provides CLI command definitions for certrotate-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: root command, global flags, session setup
//   - sync.go: status, sync and history
//   - certs.go: local certificate inventory
//   - secrets.go: remote secret inventory
//   - proxy.go: proxy runtime status
//   - health.go: liveness check
//
// Commands follow a consistent pattern of calling one API endpoint and
// rendering the data member of the reply as a table, JSON or YAML.
package command
