package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/commands"
	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/core/logging"
	"github.com/colonyops/taskboard/internal/data/db"
	"github.com/colonyops/taskboard/internal/data/stores"
	"github.com/colonyops/taskboard/internal/printer"
	"github.com/colonyops/taskboard/internal/taskboard"
	"github.com/colonyops/taskboard/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		app       = &taskboard.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "taskboard",
		Usage:     "A small web based to-do list",
		UsageText: "taskboard [global options] command [command options]",
		Description: `Taskboard keeps a list of tasks with a description, a priority and a
progress percentage in a local SQLite file.

Run 'taskboard serve' to open the web interface, or use 'taskboard task' to
manage tasks from the terminal.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (json, console)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_FORMAT"),
				Value:       logutils.FormatJSON,
				Destination: &flags.LogFormat,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKBOARD_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKBOARD_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile, flags.LogFormat)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(c.Root().Writer, c.Root().ErrWriter))

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Open database connection
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				// A corrupt file is reported through App so 'db doctor --repair'
				// can still run.
				if stores.IsCorruptionError(err) {
					log.Error().Err(err).Str("path", db.Path(cfg.DataDir)).Msg("database is corrupt")
					*app = taskboard.App{Config: cfg, OpenErr: err}
					return ctx, nil
				}
				return ctx, fmt.Errorf("open database: %w", err)
			}

			taskStore := stores.NewTaskStore(database)
			taskSvc := taskboard.NewTaskService(taskStore, logging.Component("taskboard"))

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*app = *taskboard.NewApp(taskSvc, cfg, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	root = commands.NewServeCmd(flags, app).Register(root)
	root = commands.NewTaskCmd(flags, app).Register(root)
	root = commands.NewDBCmd(flags, app).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		if msg := runErr.Error(); msg != "" {
			fmt.Println()
			fmt.Println(msg)
		}
		exitCode = 1
	}

	os.Exit(exitCode)
}
