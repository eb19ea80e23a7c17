package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/output"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ready",
				Usage: "Check readiness (sync engine running) instead of liveness",
			},
		},
		Action: checkHealth,
	}
}

func checkHealth(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	path := "/health"
	if c.Bool("ready") {
		path = "/ready"
	}

	var v healthView
	raw, err := s.fetch(c, path, &v)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		return kv("status", v.Status, "service", v.Service, "version", v.Version, "time", v.Time)
	})
}
