package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/taskboard"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests task IDs, with
// the description as the completion hint, as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *taskboard.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Tasks == nil {
			return
		}

		tasks, err := app.Tasks.List(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range tasks {
			_, _ = fmt.Fprintf(w, "%d:%s\n", t.ID, t.Description)
		}
	}
}
