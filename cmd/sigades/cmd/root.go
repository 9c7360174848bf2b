// Package cmd implements the sigades commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/NomuraAI/SIGADES-sub000/internal/backend"
	"github.com/NomuraAI/SIGADES-sub000/internal/cache"
	"github.com/NomuraAI/SIGADES-sub000/internal/config"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/output"
	"github.com/NomuraAI/SIGADES-sub000/internal/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app holds the global flags and the services opened for one invocation.
type app struct {
	version    string
	configPath string
	backend    string
	assumeYes  bool
	format     string

	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer

	stores   *backend.Stores
	redis    *redis.Client
	datasets *dataset.Service
	records  *project.Service
	activity *activity.Service
}

// Execute runs the command line in args and releases every opened resource.
func Execute(ctx context.Context, version string, args []string) error {
	a := &app{version: version}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sigades",
		Short: "Versioned village project dataset sync",
		Long: `sigades imports village development project spreadsheets into a versioned
record store and keeps them in sync.

Records live either in a remote PostgreSQL service or in a local SQLite file.
Smart Update imports reconcile rows by village code, work and sub-activity, so
the same file can be imported again without duplicating records.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $SIGADES_CONFIG_PATH)")
	flags.StringVar(&a.backend, "backend", "", "storage backend: local or remote (overrides config)")
	flags.BoolVarP(&a.assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	flags.StringVarP(&a.format, "output", "o", "", "output format: table, json or yaml (default table on a terminal)")

	root.AddCommand(
		newImportCommand(a),
		newVersionsCommand(a),
		newListCommand(a),
		newExportCommand(a),
		newDeleteCommand(a),
		newClearCommand(a),
		newHistoryCommand(a),
		newServeCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads configuration and logging. Stores are opened on demand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if a.backend != "" {
		cfg.Backend = a.backend
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if _, err := output.ParseFormat(a.format); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, a.logFile = newLogger(cfg.Log, cmd.ErrOrStderr())
	return nil
}

// open connects the configured backend and builds the services.
func (a *app) open(ctx context.Context) error {
	if a.stores != nil {
		return nil
	}
	stores, err := backend.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.stores = stores

	var versionCache dataset.VersionCache
	if a.cfg.Redis.Addr != "" {
		a.redis = cache.NewClient(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		versionCache = cache.NewVersionCache(a.redis, string(stores.Backend.Kind()), a.cfg.Redis.TTL)
	}

	activityRepo := sqlite.NewActivityRepository(stores.Local)
	versions := dataset.NewVersionRegistry(stores.Backend, versionCache, a.logger)

	a.datasets = dataset.NewService(stores.Backend, versions, activityRepo, dataset.Options{
		PageSize:  a.cfg.Sync.PageSize,
		BatchSize: a.cfg.Sync.BatchSize,
	}, a.logger)
	a.records = project.NewService(stores.Backend, activityRepo, versions, a.logger)
	a.activity = activity.NewService(activityRepo, a.logger)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func (a *app) write(cmd *cobra.Command, table output.Table, data any) error {
	format, _ := output.ParseFormat(a.format)
	return output.Write(cmd.OutOrStdout(), format, table, data)
}
