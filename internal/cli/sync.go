package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"scryfall/internal/dbclient"
	"scryfall/internal/etl"
	"scryfall/internal/service"
)

var syncCommand = &cobra.Command{
	Use:   "sync",
	Short: "Manage jobs that export card listings into databases",
	Long: `An export job reads a listing (a card search, the set list, the symbology,
migrations or the bulk data index), maps every object to a row, applies
optional transforms and writes the rows to a SQLite, MySQL, PostgreSQL or
MongoDB table.

Usage examples:

1. Export every green elf into a local SQLite file:

	scryfall sync add elves --source search --set query="t:elf c:g" \
		--driver sqlite --dsn ./cards.db --table elves

2. Refresh the set list every morning:

	scryfall sync add sets --source sets --driver postgres \
		--dsn postgres://localhost/cards --table sets --schedule "0 6 * * *"
	scryfall sync serve
`,
}

func init() {
	syncCommand.AddCommand(
		syncAddCommand,
		syncListCommand,
		syncRunCommand,
		syncServeCommand,
		syncLogsCommand,
		syncRemoveCommand,
		syncEnableCommand,
		syncDisableCommand,
		syncSourcesCommand,
		syncPreviewCommand,
	)
}

func syncService(cmd *cobra.Command) (*service.SyncService, error) {
	e, err := getEnv(cmd)
	if err != nil {
		return nil, err
	}
	return e.syncService()
}

// ── add ────────────────────────────────────────────────────

var addOpts = &struct {
	Source     string
	Config     map[string]string
	Transforms string
	Driver     string
	DSN        string
	Table      string
	Mode       string
	DedupeKey  string
	Schedule   string
	Watch      string
	Disabled   bool
}{}

var syncAddCommand = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an export job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		input, err := jobInput(args[0])
		if err != nil {
			return err
		}
		job, err := svc.CreateJob(cmd.Context(), input)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, job); ok {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created job %s (%s)\n", job.Name, job.ID)
		return nil
	},
}

func init() {
	flags := syncAddCommand.Flags()
	flags.StringVar(&addOpts.Source, "source", "", "Source type (see sync sources)")
	flags.StringToStringVar(&addOpts.Config, "set", nil, "Source setting as key=value, repeatable")
	flags.StringVar(&addOpts.Transforms, "transforms", "", `Transforms as a JSON array, e.g. [{"type":"limit","config":{"count":100}}]`)
	flags.StringVar(&addOpts.Driver, "driver", dbclient.DriverSQLite, "Target driver: "+strings.Join(dbclient.Drivers, ", "))
	flags.StringVar(&addOpts.DSN, "dsn", "", "Target connection string (a file path for sqlite)")
	flags.StringVar(&addOpts.Table, "table", "", "Target table or collection")
	flags.StringVar(&addOpts.Mode, "mode", string(etl.SyncReplace), "Sync mode: replace or append")
	flags.StringVar(&addOpts.DedupeKey, "dedupe", "", "Column to deduplicate rows on")
	flags.StringVar(&addOpts.Schedule, "schedule", "", "Run on this cron schedule while sync serve is running")
	flags.StringVar(&addOpts.Watch, "watch", "", "Run whenever this file changes while sync serve is running")
	flags.BoolVar(&addOpts.Disabled, "disabled", false, "Create the job with its trigger disabled")
	_ = syncAddCommand.MarkFlagRequired("source")
	_ = syncAddCommand.MarkFlagRequired("dsn")
	_ = syncAddCommand.MarkFlagRequired("table")
	syncAddCommand.MarkFlagsMutuallyExclusive("schedule", "watch")
}

func jobInput(name string) (service.JobInput, error) {
	in := service.JobInput{
		Name:         name,
		SourceType:   addOpts.Source,
		SourceConfig: lo.MapValues(addOpts.Config, func(v string, _ string) any { return v }),
		Target:       etl.Target{Driver: addOpts.Driver, DSN: addOpts.DSN, Table: addOpts.Table},
		SyncMode:     addOpts.Mode,
		DedupeKey:    addOpts.DedupeKey,
		Enabled:      !addOpts.Disabled,
	}
	if addOpts.Transforms != "" {
		if err := json.Unmarshal([]byte(addOpts.Transforms), &in.Transforms); err != nil {
			return in, fmt.Errorf("parse --transforms: %w", err)
		}
	}
	switch {
	case addOpts.Schedule != "":
		in.TriggerType, in.TriggerConfig = etl.TriggerSchedule, addOpts.Schedule
	case addOpts.Watch != "":
		in.TriggerType, in.TriggerConfig = etl.TriggerFileWatch, addOpts.Watch
	}
	return in, nil
}

// ── list / logs ────────────────────────────────────────────

var syncListCommand = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List export jobs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		jobs, err := svc.ListJobs()
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, jobs); ok {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "NAME", "SOURCE", "TARGET", "MODE", "TRIGGER", "LAST RUN", "STATUS")
		for _, j := range jobs {
			trigger := j.TriggerType
			if j.TriggerConfig != "" {
				trigger += " " + j.TriggerConfig
			}
			if !j.Enabled {
				trigger += " (disabled)"
			}
			t.row(j.Name, j.SourceType, j.Target.Driver+":"+j.Target.Table, string(j.SyncMode),
				trigger, ago(j.LastRunAt), orDash(j.LastStatus))
		}
		return t.flush()
	},
}

var syncLogsCommand = &cobra.Command{
	Use:   "logs <job>",
	Short: "Show the recent runs of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		logs, err := svc.ListRunLogs(args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, logs); ok {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "STARTED", "TOOK", "STATUS", "READ", "WRITTEN", "ERROR")
		for _, l := range logs {
			t.row(ago(l.StartedAt), l.FinishedAt.Sub(l.StartedAt).Round(time.Millisecond).String(),
				l.Status, count(l.RowsRead), count(l.RowsWritten), orDash(l.Error))
		}
		return t.flush()
	},
}

// ── run / serve ────────────────────────────────────────────

var runOpts = &struct {
	All      bool
	Parallel int
}{}

var syncRunCommand = &cobra.Command{
	Use:   "run <job>...",
	Short: "Run export jobs now",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		refs := args
		if runOpts.All {
			jobs, err := svc.ListJobs()
			if err != nil {
				return err
			}
			refs = lo.Map(jobs, func(j etl.SyncJob, _ int) string { return j.ID })
		}
		if len(refs) == 0 {
			return fmt.Errorf("name at least one job, or pass --all")
		}

		results, runErr := svc.RunJobs(cmd.Context(), refs, runOpts.Parallel)
		if ok, err := printJSON(cmd, results); ok {
			if err != nil {
				return err
			}
			return runErr
		}
		t := newTable(cmd.OutOrStdout(), "JOB", "STATUS", "PAGES", "READ", "WRITTEN", "TOOK")
		for i, r := range results {
			if r == nil {
				t.row(refs[i], "not run", "-", "-", "-", "-")
				continue
			}
			t.row(refs[i], r.Status, count(r.PagesRead), count(r.RowsRead), count(r.RowsWritten),
				r.Duration.Round(time.Millisecond).String())
		}
		if err := t.flush(); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	flags := syncRunCommand.Flags()
	flags.BoolVar(&runOpts.All, "all", false, "Run every job")
	flags.IntVar(&runOpts.Parallel, "parallel", 2, "Jobs to run at once")
}

var serveGrace time.Duration

var syncServeCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled and file-watch jobs until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		svc.RestartWatchers(ctx)
		logger.Info("serving sync jobs; interrupt to stop")

		<-ctx.Done()
		svc.Stop()

		waitCtx, cancel := context.WithTimeout(context.Background(), serveGrace)
		defer cancel()
		svc.WaitRunning(waitCtx)
		if running := svc.Running(); len(running) > 0 {
			logger.Warn("jobs still running at exit", "jobs", running)
		}
		return nil
	},
}

func init() {
	syncServeCommand.Flags().DurationVar(&serveGrace, "grace", 30*time.Second, "How long to wait for running jobs on shutdown")
}

// ── rm / enable / disable ──────────────────────────────────

var syncRemoveCommand = &cobra.Command{
	Use:     "rm <job>",
	Aliases: []string{"remove"},
	Short:   "Delete an export job and its run history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		return svc.DeleteJob(cmd.Context(), args[0])
	},
}

var syncEnableCommand = &cobra.Command{
	Use:   "enable <job>",
	Short: "Enable a job's schedule or file watch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		return svc.SetEnabled(cmd.Context(), args[0], true)
	},
}

var syncDisableCommand = &cobra.Command{
	Use:   "disable <job>",
	Short: "Disable a job's schedule or file watch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		return svc.SetEnabled(cmd.Context(), args[0], false)
	},
}

// ── sources / preview ──────────────────────────────────────

var syncSourcesCommand = &cobra.Command{
	Use:   "sources",
	Short: "List source types and their settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		specs := etl.ListSources()
		if ok, err := printJSON(cmd, specs); ok {
			return err
		}
		w := cmd.OutOrStdout()
		for _, s := range specs {
			fmt.Fprintf(w, "%s  %s\n", s.Type, s.Label)
			for _, f := range s.ConfigFields {
				line := fmt.Sprintf("    %s (%s)", f.Key, f.Type)
				if f.Required {
					line += " required"
				}
				if len(f.Options) > 0 {
					line += " one of " + strings.Join(f.Options, "|")
				}
				if f.Help != "" {
					line += ": " + f.Help
				}
				fmt.Fprintln(w, line)
			}
		}
		return nil
	},
}

var previewOpts = &struct {
	Config map[string]string
	Rows   int
}{}

var syncPreviewCommand = &cobra.Command{
	Use:   "preview <source>",
	Short: "Print the first rows a source would export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := syncService(cmd)
		if err != nil {
			return err
		}
		cfg := etl.SourceConfig(lo.MapValues(previewOpts.Config, func(v string, _ string) any { return v }))
		rows, schema, err := svc.Preview(cmd.Context(), args[0], cfg, previewOpts.Rows)
		if err != nil {
			return err
		}
		data := lo.Map(rows, func(r etl.Row, _ int) map[string]any { return r.Data })
		if ok, err := printJSON(cmd, data); ok {
			return err
		}
		names := schema.FieldNames()
		t := newTable(cmd.OutOrStdout(), lo.Map(names, func(n string, _ int) string { return strings.ToUpper(n) })...)
		for _, r := range rows {
			t.row(lo.Map(names, func(n string, _ int) string { return cell(r.Data[n]) })...)
		}
		return t.flush()
	},
}

func init() {
	flags := syncPreviewCommand.Flags()
	flags.StringToStringVar(&previewOpts.Config, "set", nil, "Source setting as key=value, repeatable")
	flags.IntVar(&previewOpts.Rows, "rows", 10, "Rows to print")
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return date(v)
	default:
		s := fmt.Sprint(v)
		if r := []rune(s); len(r) > 40 {
			s = string(r[:37]) + "..."
		}
		return strings.ReplaceAll(s, "\n", " ")
	}
}
