package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/printer"
	"github.com/colonyops/taskboard/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskboard config validate [options]",
				Description: "Validates the configuration values, the config file path and the data directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type fieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	issues, err := collectIssues(cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath))
	if err != nil {
		return err
	}

	if cmd.format == "json" {
		out := struct {
			Valid  bool         `json:"valid"`
			Path   string       `json:"path"`
			Errors []fieldIssue `json:"errors,omitempty"`
		}{
			Valid:  len(issues) == 0,
			Path:   cmd.flags.ConfigPath,
			Errors: issues,
		}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		p := printer.Ctx(ctx)
		for _, issue := range issues {
			p.Errorf("%s: %s", issue.Field, issue.Message)
		}
		if len(issues) == 0 {
			p.Successf("Configuration is valid")
			p.Printf("  %s", cmd.flags.ConfigPath)
		} else {
			p.Printf("")
			p.Errorf("%d error(s) found", len(issues))
		}
	}

	if len(issues) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// collectIssues flattens criterio field errors. Any other error is returned
// as is.
func collectIssues(err error) ([]fieldIssue, error) {
	if err == nil {
		return nil, nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	issues := make([]fieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, fieldIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return issues, nil
}
