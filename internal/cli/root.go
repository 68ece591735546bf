// Package cli wires the scryfall command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"scryfall/internal/client"
	"scryfall/internal/config"
	"scryfall/internal/logging"
	"scryfall/internal/service"
	"scryfall/internal/storage"
	"scryfall/internal/transport"

	// registers the export sources
	_ "scryfall/internal/etl/sources"
)

var logger = logging.Logger("cli")

// Version is set by the linker.
var Version = "dev"

var rootOpts = &struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Offline    bool
	JSON       bool
}{}

// RootCommand is the scryfall command.
var RootCommand = &cobra.Command{
	Use:   "scryfall",
	Short: "Query the Scryfall card database and export listings",
	Long: `scryfall looks cards, sets and catalogs up through the Scryfall API and
exports card listings into SQLite, MySQL, PostgreSQL or MongoDB.

Settings come from SCRYFALL_* environment variables or a config file:

	scryfall --config ~/.config/scryfall/config.yaml search "t:elf c:g"
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		e, err := newEnv(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		active = e
		cmd.SetContext(withEnv(cmd.Context(), e))
		return nil
	},
}

func init() {
	flags := RootCommand.PersistentFlags()
	flags.StringVar(&rootOpts.ConfigFile, "config", "", "Config file (yaml, json or toml)")
	flags.StringVar(&rootOpts.LogLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	flags.StringVar(&rootOpts.LogFormat, "log-format", "", "Override the configured log format (text, json)")
	flags.BoolVar(&rootOpts.Offline, "offline", false, "Resolve every request from fixture_dir instead of the network")
	flags.BoolVar(&rootOpts.JSON, "json", false, "Print results as JSON")

	RootCommand.AddCommand(
		searchCommand,
		cardCommand,
		randomCommand,
		setsCommand,
		symbolsCommand,
		manaCommand,
		catalogCommand,
		syncCommand,
		mcpCommand,
	)
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := execute(ctx); err != nil {
		fmt.Fprintln(RootCommand.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// active is the environment of the running command, closed once it
// returns whatever the outcome.
var active *env

func execute(ctx context.Context) error {
	err := RootCommand.ExecuteContext(ctx)
	if active != nil {
		if cerr := active.close(); err == nil {
			err = cerr
		}
		active = nil
	}
	return err
}

// ── Environment ────────────────────────────────────────────

// env carries what the subcommands share: configuration, the API client
// and, once opened, the job store.
type env struct {
	cfg    *config.Config
	client *client.Client

	db   *storage.DB
	sync *service.SyncService
}

func newEnv(logOut io.Writer) (*env, error) {
	cfg, err := config.Load(rootOpts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if rootOpts.LogLevel != "" {
		cfg.LogLevel = rootOpts.LogLevel
	}
	if rootOpts.LogFormat != "" {
		cfg.LogFormat = rootOpts.LogFormat
	}
	logging.Configure(logOut, cfg.LogFormat)
	if !logging.SetLevel(cfg.LogLevel) {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	fetcher := transport.NewDefault(
		transport.NewHTTPFetcher(cfg.Timeout, cfg.UserAgent),
		transport.FileFetcher{Root: cfg.FixtureDir},
	)

	// Offline, API paths map onto files under fixture_dir; query strings
	// are ignored.
	base := cfg.APIBaseURL
	if rootOpts.Offline {
		if cfg.FixtureDir == "" {
			return nil, errors.New("--offline needs fixture_dir to be set")
		}
		dir, err := filepath.Abs(cfg.FixtureDir)
		if err != nil {
			return nil, err
		}
		base = (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir) + "/"}).String()
	}
	c, err := client.New(fetcher, base)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, client: c}, nil
}

// syncService opens the job store on first use.
func (e *env) syncService() (*service.SyncService, error) {
	if e.sync != nil {
		return e.sync, nil
	}
	db, err := storage.New(e.cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	e.db = db
	e.sync = service.NewSyncService(storage.NewSyncStore(db), e.client, service.LogEmitter{})
	return e.sync, nil
}

func (e *env) close() error {
	if e.sync != nil {
		e.sync.Stop()
	}
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

type envKey struct{}

func withEnv(ctx context.Context, e *env) context.Context {
	return context.WithValue(ctx, envKey{}, e)
}

func envFrom(ctx context.Context) (*env, bool) {
	e, ok := ctx.Value(envKey{}).(*env)
	return e, ok
}

// getEnv returns the environment set up by the root command.
func getEnv(cmd *cobra.Command) (*env, error) {
	e, ok := envFrom(cmd.Context())
	if !ok {
		return nil, errors.New("command environment not initialised")
	}
	return e, nil
}
