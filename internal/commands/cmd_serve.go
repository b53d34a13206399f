package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/core/logging"
	"github.com/colonyops/taskboard/internal/printer"
	"github.com/colonyops/taskboard/internal/profiler"
	"github.com/colonyops/taskboard/internal/taskboard"
	"github.com/colonyops/taskboard/internal/web"
)

type ServeCmd struct {
	flags *Flags
	app   *taskboard.App

	// flags
	addr  string
	pprof bool
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *taskboard.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the web interface",
		UsageText: "taskboard serve [--addr host:port] [--pprof]",
		Description: `Starts the HTTP server for the task list.

The server listens on server.addr from the config file (127.0.0.1:5000 by
default) and stops gracefully on SIGINT or SIGTERM.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address, overrides server.addr",
				Sources:     cli.EnvVars("TASKBOARD_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.BoolFlag{
				Name:        "pprof",
				Usage:       "start the pprof server on profiler.port",
				Destination: &cmd.pprof,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := cmd.app.Config.Server
	if cmd.addr != "" {
		cfg.Addr = cmd.addr
	}

	if cmd.pprof || cmd.app.Config.Profiler.Enabled {
		prof := profiler.New(cmd.app.Config.Profiler.Port)
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
	}

	srv, err := web.New(cmd.app.Tasks, cfg, logging.Component("web"))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	printer.Ctx(ctx).Infof("taskboard listening on http://%s", cfg.Addr)
	return srv.ListenAndServe(ctx)
}
