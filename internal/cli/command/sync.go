package command

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/certrotate-go/internal/cli/output"
)

// ExitSyncFailed is the exit code of a sync whose outcome failed.
const ExitSyncFailed = 2

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show sync engine status",
		Action: showStatus,
	}
}

// SyncCommand returns the sync command.
func SyncCommand() *cli.Command {
	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"reload"},
		Usage:   "Run one sync cycle now and wait for its outcome",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not show progress",
			},
		},
		Action: runSync,
	}
}

// HistoryCommand returns the history command.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:   "history",
		Usage:  "List recent sync outcomes, newest first",
		Action: showHistory,
	}
}

func showStatus(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	var st statusView
	raw, err := s.fetch(c, "/status", &st)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		t := kv(
			"running", output.Cell(st.IsRunning),
			"sync in progress", output.Cell(st.SyncInProgress),
			"last sync", formatTime(st.LastSyncTime),
			"next sync", formatTime(st.NextSync),
			"check interval", output.Cell(st.CheckInterval),
			"certificates", strconv.Itoa(st.CertificatesCount),
			"discovery", output.Cell(st.Discovery),
			"monitored", output.Cell(st.MonitoredNames),
		)
		if r := st.LastReload; r != nil {
			state := "ok"
			if !r.OK {
				state = "failed: " + r.Error
			}
			t.AddRow("last reload", fmt.Sprintf("%s (%s, %s)", output.Cell(r.At), r.Reason, state))
		}
		for _, e := range st.RecentErrors {
			t.AddRow("error", output.Cell(e.At)+" "+e.Message)
		}
		return t
	})
}

func runSync(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	var spinner *output.Spinner
	if s.Format == output.FormatTable && !c.Bool("quiet") {
		spinner = output.NewSpinner(s.Err, "Syncing certificates")
		spinner.Start()
	}

	raw, err := s.call(c, http.MethodPost, "/reload")
	if err != nil {
		if spinner != nil {
			spinner.Fail("sync failed")
		}
		return err
	}

	var o outcomeView
	if err := json.Unmarshal(raw, &o); err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return fmt.Errorf("parse response data: %w", err)
	}
	if spinner != nil {
		if o.Succeeded {
			spinner.Success("sync completed")
		} else {
			spinner.Fail("sync completed with errors")
		}
	}

	if err := s.show(raw, func() *output.Table { return outcomeTable(o) }); err != nil {
		return err
	}
	if !o.Succeeded {
		return cli.Exit("", ExitSyncFailed)
	}
	return nil
}

func outcomeTable(o outcomeView) *output.Table {
	t := kv(
		"id", o.ID,
		"trigger", o.Trigger,
		"started", output.Cell(o.StartedAt),
		"duration", fmt.Sprintf("%.2fs", o.DurationSeconds),
		"succeeded", output.Cell(o.Succeeded),
		"reloaded", output.Cell(o.Reloaded),
		"changed", output.Cell(o.ChangedIdentifiers),
	)
	for _, e := range o.Errors {
		t.AddRow("error", e)
	}
	return t
}

func showHistory(c *cli.Context) error {
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	var h historyView
	raw, err := s.fetch(c, "/history", &h)
	if err != nil {
		return err
	}

	return s.show(raw, func() *output.Table {
		t := output.NewTable("ID", "TRIGGER", "STARTED", "DURATION", "OK", "RELOADED", "CHANGED", "ERRORS")
		for _, o := range h.Outcomes {
			t.AddRow(
				o.ID,
				o.Trigger,
				output.Cell(o.StartedAt),
				fmt.Sprintf("%.2fs", o.DurationSeconds),
				output.Cell(o.Succeeded),
				output.Cell(o.Reloaded),
				output.Cell(o.ChangedIdentifiers),
				output.Cell(strings.Join(o.Errors, "; ")),
			)
		}
		return t
	})
}
