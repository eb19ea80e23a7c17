package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/output"
)

// CertsCommand returns the certs subcommand group.
func CertsCommand() *cli.Command {
	return &cli.Command{
		Name:    "certs",
		Aliases: []string{"certificates"},
		Usage:   "Inspect installed certificates",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List installed certificates",
				Action:  listCerts,
			},
			{
				Name:  "expiring",
				Usage: "List certificates expiring within a number of days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "Expiry window in days (default: server setting)",
					},
				},
				Action: listExpiring,
			},
		},
	}
}

func listCerts(c *cli.Context) error {
	return showCertificates(c, "/certificates")
}

func listExpiring(c *cli.Context) error {
	path := "/certificates/expiring"
	if c.IsSet("days") {
		days := c.Int("days")
		if days < 0 {
			return fmt.Errorf("--days must not be negative")
		}
		path += "?days=" + strconv.Itoa(days)
	}
	return showCertificates(c, path)
}

func showCertificates(c *cli.Context, path string) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	var v certificatesView
	raw, err := s.fetch(c, path, &v)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		t := output.NewTable("IDENTIFIER", "DOMAINS", "EXPIRES", "DAYS", "EXPIRED", "SERIAL")
		for _, cert := range v.Certificates {
			t.AddRow(
				cert.Identifier,
				output.Cell(cert.DomainNames),
				output.Cell(cert.ExpiresAt),
				strconv.Itoa(cert.DaysUntilExpiry),
				output.Cell(cert.IsExpired),
				output.Cell(cert.SerialNumber),
			)
		}
		return t
	})
}
