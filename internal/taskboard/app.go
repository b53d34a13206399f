// Package taskboard wires the task store, services and configuration into
// the application consumed by the CLI and the web server.
package taskboard

import (
	"errors"
	"fmt"

	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/data/db"
)

// ErrNotReady is returned by App.Ready when the database could not be opened.
var ErrNotReady = errors.New("database unavailable")

// App is the central entry point for all taskboard operations.
// Commands and the web server consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks  *TaskService
	Config *config.Config
	DB     *db.DB

	// OpenErr records why the database failed to open. Only repair commands
	// can run while it is set.
	OpenErr error
}

// NewApp constructs an App from explicit dependencies.
func NewApp(tasks *TaskService, cfg *config.Config, database *db.DB) *App {
	return &App{
		Tasks:  tasks,
		Config: cfg,
		DB:     database,
	}
}

// Ready reports whether task operations can run.
func (a *App) Ready() error {
	if a.OpenErr != nil {
		return fmt.Errorf("%w: %w (run 'taskboard db doctor --repair')", ErrNotReady, a.OpenErr)
	}
	if a.Tasks == nil {
		return ErrNotReady
	}
	return nil
}
