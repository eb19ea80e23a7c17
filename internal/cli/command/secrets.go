package command

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/output"
)

// SecretsCommand returns the secrets subcommand group.
func SecretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Inspect the remote secret store (metadata only)",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all secrets and the monitored subset",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tags",
						Usage: "Include secret tags",
					},
				},
				Action: listSecrets,
			},
			{
				Name:  "by-tag",
				Usage: "List secrets carrying a tag",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "key",
						Aliases:  []string{"k"},
						Usage:    "Tag key",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "value",
						Aliases:  []string{"v"},
						Usage:    "Tag value",
						Required: true,
					},
				},
				Action: secretsByTag,
			},
		},
	}
}

func listSecrets(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	includeTags := c.Bool("tags")
	var v listSecretsView
	raw, err := s.fetch(c, "/status/list_secrets?include_tags="+strconv.FormatBool(includeTags), &v)
	if err != nil {
		return err
	}

	monitored := make(map[string]bool, len(v.MonitoredSecrets))
	for _, m := range v.MonitoredSecrets {
		monitored[m.Name] = true
	}

	return s.show(raw, func() *output.Table {
		headers := []string{"NAME", "MONITORED", "LAST CHANGED", "DESCRIPTION"}
		if includeTags {
			headers = append(headers, "TAGS")
		}
		t := output.NewTable(headers...)
		for _, sec := range v.AllSecrets {
			row := []string{sec.Name, output.Cell(monitored[sec.Name]), output.Cell(sec.LastChanged), output.Cell(sec.Description)}
			if includeTags {
				row = append(row, formatTags(sec.Tags))
			}
			t.AddRow(row...)
		}
		return t
	})
}

func secretsByTag(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("tag_key", c.String("key"))
	q.Set("tag_value", c.String("value"))

	var v secretsByTagView
	raw, err := s.fetch(c, "/status/secrets_by_tag?"+q.Encode(), &v)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		t := output.NewTable("NAME", "LAST CHANGED", "TAGS")
		for _, sec := range v.Secrets {
			t.AddRow(sec.Name, output.Cell(sec.LastChanged), formatTags(sec.Tags))
		}
		return t
	})
}

// formatTags renders tags as sorted key=value pairs.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(tags))
	for k, v := range tags {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
