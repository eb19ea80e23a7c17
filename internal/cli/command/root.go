package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/config"
	"github.com/yndnr/certrotate-go/internal/cli/connection"
	"github.com/yndnr/certrotate-go/internal/cli/output"
	"github.com/yndnr/certrotate-go/internal/infra/buildinfo"
)

const sessionKey = "session"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "certrotate-cli",
		Usage:   "Inspect and drive a certrotate server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			StatusCommand(),
			SyncCommand(),
			HistoryCommand(),
			CertsCommand(),
			SecretsCommand(),
			ProxyCommand(),
			HealthCommand(),
		},
		Before: setup,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.certrotate/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "certrotate server address (e.g., localhost:8000)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
	}
}

// Session is the per-invocation state shared by all commands.
type Session struct {
	Client *connection.HTTPClient
	Format output.Format
	Out    io.Writer
	Err    io.Writer
}

// setup resolves configuration and stores the session in app metadata.
// Flags win over the config file and environment.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load cli config: %w", err)
	}
	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[sessionKey] = &Session{
		Client: connection.NewHTTPClient(cfg.Server, cfg.Timeout),
		Format: format,
		Out:    c.App.Writer,
		Err:    c.App.ErrWriter,
	}
	return nil
}

// GetSession retrieves the session set up by the root command.
func GetSession(c *cli.Context) (*Session, error) {
	if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
		return s, nil
	}
	return nil, fmt.Errorf("cli session not initialized")
}

// call performs one API request and returns the raw data member.
func (s *Session) call(c *cli.Context, method, path string) (json.RawMessage, error) {
	var (
		resp *http.Response
		err  error
	)
	switch method {
	case http.MethodPost:
		resp, err = s.Client.Post(c.Context, path, nil)
	default:
		resp, err = s.Client.Get(c.Context, path)
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var data json.RawMessage
	if err := connection.ParseResponse(resp, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// fetch performs a GET and decodes the data member into view.
func (s *Session) fetch(c *cli.Context, path string, view any) (json.RawMessage, error) {
	data, err := s.call(c, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, view); err != nil {
		return nil, fmt.Errorf("parse response data: %w", err)
	}
	return data, nil
}

// show renders raw as JSON or YAML, or calls table for the table format.
func (s *Session) show(raw json.RawMessage, table func() *output.Table) error {
	if s.Format == output.FormatTable && table != nil {
		return table().Render(s.Out)
	}

	var generic any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return output.Print(s.Out, s.Format, generic, nil)
}

// kv builds a two-column FIELD/VALUE table.
func kv(pairs ...string) *output.Table {
	t := output.NewTable("FIELD", "VALUE")
	for i := 0; i+1 < len(pairs); i += 2 {
		t.AddRow(pairs[i], pairs[i+1])
	}
	return t
}

func formatTime(t *time.Time) string {
	return output.Cell(t)
}
