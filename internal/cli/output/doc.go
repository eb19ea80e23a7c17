// Package output provides output formatting for certrotate-cli.
//
//   - formatter.go: Formatter interface, format parsing and Print
//   - table.go: aligned plain-text tables
//   - json.go: indented JSON
//   - yaml.go: YAML with the same keys as the JSON form
//   - spinner.go: progress animation while a manual sync runs
package output
