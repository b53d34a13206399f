package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// Fields are the mutable attributes of a Task written by Store.Update.
type Fields struct {
	Description string
	Priority    Priority
	Progress    int
	Completed   bool
}

// Store defines the interface for task persistence.
type Store interface {
	// Create persists a new task with the given description and default
	// priority, progress and completion. The store assigns the ID.
	Create(ctx context.Context, description string) (Task, error)

	// CreateMany persists one new task per entry with the given fields in a
	// single transaction. Either every task is created or none is.
	CreateMany(ctx context.Context, entries []Fields) ([]Task, error)
	// Get returns a single task by ID.
	// Returns ErrNotFound if the task does not exist.
	Get(ctx context.Context, id int64) (Task, error)

	// List returns all tasks, incomplete tasks first, in insertion order
	// within each group.
	List(ctx context.Context) ([]Task, error)

	// Update overwrites all mutable fields of a task and returns the stored result.
	// Returns ErrNotFound if the task does not exist.
	Update(ctx context.Context, id int64, fields Fields) (Task, error)

	// Modify reads a task and writes the fields returned by fn in a single
	// transaction. If fn returns an error nothing is written and the error is
	// returned unchanged. Returns ErrNotFound if the task does not exist.
	Modify(ctx context.Context, id int64, fn func(current Task) (Fields, error)) (Task, error)

	// Toggle flips the completed flag of a task in a single write.
	// Returns ErrNotFound if the task does not exist.
	Toggle(ctx context.Context, id int64) (Task, error)

	// Delete removes a task.
	// Returns ErrNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// Count returns the total number of tasks.
	Count(ctx context.Context) (int64, error)
}
