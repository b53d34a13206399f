package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/colonyops/taskboard/internal/export"
	"github.com/colonyops/taskboard/internal/printer"
	"github.com/colonyops/taskboard/internal/taskboard"
	"github.com/colonyops/taskboard/pkg/iojson"
)

type TaskCmd struct {
	flags *Flags
	app   *taskboard.App

	// ls
	jsonOutput bool

	// edit
	description string
	priority    string
	progress    int
	completed   bool
	interactive bool

	// export
	format string
	output string

	// import
	importReader iojson.FileReader[[]task.Task]
}

// NewTaskCmd creates a new task command
func NewTaskCmd(flags *Flags, app *taskboard.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "task",
		Usage:     "Manage tasks from the command line",
		UsageText: "taskboard task <command> [options]",
		Description: `Create, list, toggle, edit and delete tasks without the web interface.

The rules match the web forms: adding requires a non-empty description,
editing requires at least 4 characters and the completed flag decides the
final completion state.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List tasks, incomplete first",
				UsageText: "taskboard task ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines (default when stdout is not a terminal)",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				UsageText: "taskboard task add <description>",
				Action:    cmd.runAdd,
			},
			{
				Name:          "toggle",
				Usage:         "Flip a task between open and completed",
				UsageText:     "taskboard task toggle <id>",
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runToggle,
			},
			{
				Name:          "show",
				Usage:         "Print a task as JSON",
				UsageText:     "taskboard task show <id>",
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runShow,
			},
			{
				Name:      "edit",
				Usage:     "Edit a task",
				UsageText: "taskboard task edit [--description text] [--priority level] [--progress n] [--completed] [--interactive] <id>",
				Description: `Fields that are not given keep their current value. Passing
--completed forces progress to 100, and --completed=false marks the task open
even when progress is 100.`,
				ShellComplete: TaskIDCompleter(cmd.app),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "description",
						Aliases:     []string{"d"},
						Usage:       "new description (at least 4 characters)",
						Destination: &cmd.description,
					},
					&cli.StringFlag{
						Name:        "priority",
						Aliases:     []string{"p"},
						Usage:       "one of " + priorityNames(),
						Destination: &cmd.priority,
					},
					&cli.IntFlag{
						Name:        "progress",
						Usage:       "progress percentage",
						Destination: &cmd.progress,
					},
					&cli.BoolFlag{
						Name:        "completed",
						Usage:       "mark the task completed",
						Destination: &cmd.completed,
					},
					&cli.BoolFlag{
						Name:        "interactive",
						Aliases:     []string{"i"},
						Usage:       "edit the task in an interactive form",
						Destination: &cmd.interactive,
					},
				},
				Action: cmd.runEdit,
			},
			{
				Name:          "rm",
				Usage:         "Delete a task",
				UsageText:     "taskboard task rm <id>",
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runDelete,
			},
			{
				Name:      "export",
				Usage:     "Export all tasks",
				UsageText: "taskboard task export [--format json|csv|pdf] [--output file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "json, csv or pdf",
						Value:       string(export.FormatJSON),
						Destination: &cmd.format,
					},
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "file to write (defaults to stdout)",
						Destination: &cmd.output,
					},
				},
				Action: cmd.runExport,
			},
			{
				Name:      "import",
				Usage:     "Create tasks from a JSON export",
				UsageText: "taskboard task import [-f file]",
				Description: `Reads a JSON array in the format written by 'task export --format json'.
Every entry becomes a new task; IDs in the input are ignored.`,
				Flags:  []cli.Flag{cmd.importReader.Flag()},
				Action: cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	tasks, err := cmd.app.Tasks.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput || !isTerminal(out) {
		return iojson.WriteLines(out, tasks)
	}

	if len(tasks) == 0 {
		printer.Ctx(ctx).Infof("No tasks yet. Add one with 'taskboard task add <description>'")
		return nil
	}

	_, _ = fmt.Fprintln(out, renderTaskTable(tasks))
	return nil
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	description := strings.Join(c.Args().Slice(), " ")

	t, err := cmd.app.Tasks.Add(ctx, description)
	if err != nil {
		return userError(err)
	}

	printer.Ctx(ctx).Success("Task created", fmt.Sprintf("#%d %s", t.ID, t.Description))
	return nil
}

func (cmd *TaskCmd) runToggle(ctx context.Context, c *cli.Command) error {
	id, err := cmd.taskID(c)
	if err != nil {
		return err
	}

	t, err := cmd.app.Tasks.Toggle(ctx, id)
	if err != nil {
		return userError(err)
	}

	state := "open"
	if t.Completed {
		state = "completed"
	}
	printer.Ctx(ctx).Successf("Task #%d is now %s", t.ID, state)
	return nil
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := cmd.taskID(c)
	if err != nil {
		return err
	}

	t, err := cmd.app.Tasks.Get(ctx, id)
	if err != nil {
		return userError(err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, t)
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := cmd.taskID(c)
	if err != nil {
		return err
	}

	current, err := cmd.app.Tasks.Get(ctx, id)
	if err != nil {
		return userError(err)
	}

	form := task.FormFor(current)

	if cmd.interactive {
		if err := runEditForm(&form); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	} else {
		if c.IsSet("description") {
			form.Description = cmd.description
		}
		if c.IsSet("priority") {
			p, err := parsePriority(cmd.priority)
			if err != nil {
				return err
			}
			form.Priority = string(p)
		}
		if c.IsSet("progress") {
			form.Progress = strconv.Itoa(cmd.progress)
		}
		if c.IsSet("completed") {
			form.Completed = cmd.completed
		}
	}

	t, err := cmd.app.Tasks.Edit(ctx, id, form)
	if err != nil {
		return userError(err)
	}

	printer.Ctx(ctx).Success("Task updated", fmt.Sprintf("#%d %s (%s, %d%%)", t.ID, t.Description, t.Priority.Label(), t.Progress))
	return nil
}

func (cmd *TaskCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := cmd.taskID(c)
	if err != nil {
		return err
	}

	if err := cmd.app.Tasks.Delete(ctx, id); err != nil {
		return userError(err)
	}

	printer.Ctx(ctx).Successf("Task #%d deleted", id)
	return nil
}

func (cmd *TaskCmd) runExport(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	format, err := export.ParseFormat(cmd.format)
	if err != nil {
		return err
	}

	var w io.Writer = c.Root().Writer
	if cmd.output != "" {
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	} else if format == export.FormatPDF && isTerminal(w) {
		return errors.New("refusing to write PDF to a terminal; use --output")
	}

	if err := export.NewExporter(cmd.app.Tasks).Export(ctx, w, format); err != nil {
		return err
	}

	if cmd.output != "" {
		printer.Ctx(ctx).Success("Tasks exported", cmd.output)
	}
	return nil
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ready(); err != nil {
		return err
	}

	entries, err := cmd.importReader.Read()
	if err != nil {
		return err
	}

	created, err := cmd.app.Tasks.Import(ctx, entries)
	if err != nil {
		return userError(err)
	}

	printer.Ctx(ctx).Successf("Imported %d task(s)", len(created))
	return nil
}

// taskID parses the first positional argument as a task ID.
func (cmd *TaskCmd) taskID(c *cli.Command) (int64, error) {
	if err := cmd.app.Ready(); err != nil {
		return 0, err
	}

	raw := c.Args().First()
	if raw == "" {
		return 0, errors.New("task id required")
	}

	id, err := taskboard.ParseID(raw)
	if err != nil {
		return 0, fmt.Errorf("task %q not found", raw)
	}
	return id, nil
}

func runEditForm(form *task.EditForm) error {
	options := make([]huh.Option[string], 0, len(task.Priorities()))
	for _, p := range task.Priorities() {
		options = append(options, huh.NewOption(p.Label(), string(p)))
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Description").
			Value(&form.Description).
			Validate(func(s string) error {
				if err := task.ValidateEditDescription(s); err != nil {
					return errors.New(task.MsgDescriptionTooShort)
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Priority").
			Options(options...).
			Value(&form.Priority),
		huh.NewInput().
			Title("Progress (%)").
			Value(&form.Progress).
			Validate(func(s string) error {
				if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
					return errors.New(task.MsgInvalidProgress)
				}
				return nil
			}),
		huh.NewConfirm().
			Title("Completed?").
			Description("Completing a task sets its progress to 100%").
			Value(&form.Completed),
	)).Run()
}

// parsePriority accepts a declared priority in any case, with spaces or
// underscores ("very high", "VERY_HIGH").
func parsePriority(s string) (task.Priority, error) {
	p := task.Priority(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q, expected one of %s", s, priorityNames())
	}
	return p, nil
}

func priorityNames() string {
	names := make([]string, 0, len(task.Priorities()))
	for _, p := range task.Priorities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// userError strips the field prefix from validation errors and rewords
// not-found errors for terminal output.
func userError(err error) error {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		return errors.New(verr.Message)
	case errors.Is(err, task.ErrNotFound):
		return errors.New("task not found")
	default:
		return err
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
