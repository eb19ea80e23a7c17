package command

import (
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/output"
)

// ProxyCommand returns the proxy subcommand group.
func ProxyCommand() *cli.Command {
	return &cli.Command{
		Name:  "proxy",
		Usage: "Inspect the proxy being reloaded",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show proxy runtime info and loaded certificates",
				Action: proxyStatus,
			},
		},
	}
}

func proxyStatus(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	var v proxyView
	raw, err := s.fetch(c, "/status/proxy", &v)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		t := kv("transports", output.Cell(v.Transports))
		if v.Info == nil {
			t.AddRow("runtime", "unavailable")
		}
		keys := make([]string, 0, len(v.Info))
		for k := range v.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AddRow(k, v.Info[k])
		}
		if v.Certificates != nil {
			for _, cert := range v.Certificates.Certificates {
				t.AddRow("certificate", cert.Filename+" ("+output.Cell(cert.Status)+")")
			}
		}
		return t
	})
}
