package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/data/db"
	"github.com/colonyops/taskboard/internal/data/stores"
	"github.com/colonyops/taskboard/internal/printer"
	"github.com/colonyops/taskboard/internal/taskboard"
	"github.com/colonyops/taskboard/pkg/iojson"
)

type DBCmd struct {
	flags *Flags
	app   *taskboard.App

	// flags
	format string
	steps  int
	yes    bool
	repair bool
}

// NewDBCmd creates a new db command
func NewDBCmd(flags *Flags, app *taskboard.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	formatFlag := &cli.StringFlag{
		Name:        "format",
		Usage:       "output format (text, json)",
		Value:       "text",
		Destination: &cmd.format,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Database maintenance commands",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "Show applied and pending migrations",
				UsageText: "taskboard db status [--format text|json]",
				Flags:     []cli.Flag{formatFlag},
				Action:    cmd.runStatus,
			},
			{
				Name:      "migrate-down",
				Usage:     "Revert the most recent migrations",
				UsageText: "taskboard db migrate-down [--steps n] [--yes]",
				Description: `Reverts applied migrations, newest first. Reverting the first migration
drops the tasks table and every task in it.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runMigrateDown,
			},
			{
				Name:      "doctor",
				Usage:     "Check database integrity",
				UsageText: "taskboard db doctor [--repair] [--format text|json]",
				Description: `Runs SQLite's integrity check. With --repair, a corrupt database is moved
aside as taskboard.db.corrupt.<timestamp> and a fresh, empty one is created.`,
				Flags: []cli.Flag{
					formatFlag,
					&cli.BoolFlag{
						Name:        "repair",
						Usage:       "back up a corrupt database and start a new one",
						Destination: &cmd.repair,
					},
				},
				Action: cmd.runDoctor,
			},
		},
	})

	return app
}

func (cmd *DBCmd) runStatus(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	statuses, err := db.Status(ctx, cmd.app.DB.Conn())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.format == "json" {
		return iojson.WriteWith(out, c.Root().ErrWriter, statuses)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATE\tAPPLIED AT")
	for _, s := range statuses {
		state, at := "pending", "-"
		if s.Applied {
			state = "applied"
			at = s.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(w, "%04d\t%s\t%s\t%s\n", s.Version, s.Name, state, at)
	}
	return w.Flush()
}

func (cmd *DBCmd) runMigrateDown(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}
	if cmd.steps < 1 {
		return errors.New("--steps must be at least 1")
	}

	p := printer.Ctx(ctx)

	if !cmd.yes {
		if !isTerminal(os.Stdin) {
			return errors.New("refusing to revert migrations without confirmation; pass --yes")
		}

		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Revert %d migration(s)?", cmd.steps)).
			Description("Reverted tables and their data are dropped.").
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Nothing reverted")
			return nil
		}
	}

	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), cmd.steps); err != nil {
		return err
	}

	p.Successf("Reverted %d migration(s)", cmd.steps)
	return nil
}

// doctorReport is the JSON output of db doctor.
type doctorReport struct {
	Path     string   `json:"path"`
	Healthy  bool     `json:"healthy"`
	Problems []string `json:"problems,omitempty"`
	Backup   string   `json:"backup,omitempty"`
	Repaired bool     `json:"repaired"`
}

func (cmd *DBCmd) runDoctor(ctx context.Context, c *cli.Command) error {
	report, corrupt, err := cmd.check(ctx)
	if err != nil {
		return err
	}

	if !report.Healthy && cmd.repair {
		if !corrupt {
			return fmt.Errorf("database problem is not corruption, refusing to repair: %s", report.Problems[0])
		}
		if err := cmd.repairDB(&report); err != nil {
			return err
		}
	}

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		cmd.printReport(ctx, report)
	}

	if !report.Healthy && !report.Repaired {
		return cli.Exit("", 1)
	}
	return nil
}

// check reports integrity problems. corrupt is true when the problems
// warrant moving the database aside.
func (cmd *DBCmd) check(ctx context.Context) (doctorReport, bool, error) {
	report := doctorReport{Path: db.Path(cmd.flags.DataDir), Healthy: true}

	if cmd.app.OpenErr != nil {
		report.Healthy = false
		report.Problems = []string{cmd.app.OpenErr.Error()}
		return report, stores.IsCorruptionError(cmd.app.OpenErr), nil
	}
	if cmd.app.DB == nil {
		return report, false, taskboard.ErrNotReady
	}

	problems, err := cmd.app.DB.IntegrityCheck(ctx)
	if err != nil {
		if stores.IsCorruptionError(err) {
			report.Healthy = false
			report.Problems = []string{err.Error()}
			return report, true, nil
		}
		return report, false, err
	}

	if len(problems) > 0 {
		report.Healthy = false
		report.Problems = problems
	}
	return report, len(problems) > 0, nil
}

func (cmd *DBCmd) repairDB(report *doctorReport) error {
	if cmd.app.DB != nil {
		_ = cmd.app.DB.Close()
	}

	backup, err := stores.RecoverFromCorruption(cmd.flags.DataDir)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	fresh, err := db.Open(cmd.flags.DataDir, db.DefaultOpenOptions())
	if err != nil {
		return fmt.Errorf("repair: open fresh database: %w", err)
	}
	_ = fresh.Close()

	report.Backup = backup
	report.Repaired = true
	return nil
}

func (cmd *DBCmd) printReport(ctx context.Context, report doctorReport) {
	p := printer.Ctx(ctx)

	p.Section("Database")
	p.Printf("  %s", report.Path)

	if report.Healthy {
		p.Successf("Integrity check passed")
		return
	}

	for _, problem := range report.Problems {
		p.Errorf("%s", problem)
	}

	if report.Repaired {
		p.Success("Corrupt database moved aside, a new one was created", report.Backup)
		return
	}

	p.Printf("")
	p.Infof("Run 'taskboard db doctor --repair' to back up the database and start fresh")
}
