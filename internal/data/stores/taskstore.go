package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/colonyops/taskboard/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create persists a new task with default priority, progress and completion.
func (s *TaskStore) Create(ctx context.Context, description string) (task.Task, error) {
	t := task.New(description)

	row, err := s.db.Queries().CreateTask(ctx, db.CreateTaskParams{
		Description: t.Description,
		Priority:    string(t.Priority),
		Progress:    int64(t.Progress),
		Completed:   boolToInt(t.Completed),
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	return rowToTask(row), nil
}

// CreateMany inserts all entries in one transaction.
func (s *TaskStore) CreateMany(ctx context.Context, entries []task.Fields) ([]task.Task, error) {
	created := make([]task.Task, 0, len(entries))

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		for i, f := range entries {
			row, err := q.CreateTask(ctx, db.CreateTaskParams{
				Description: f.Description,
				Priority:    string(f.Priority),
				Progress:    int64(f.Progress),
				Completed:   boolToInt(f.Completed),
			})
			if err != nil {
				return fmt.Errorf("create task %d of %d: %w", i+1, len(entries), err)
			}
			created = append(created, rowToTask(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get returns a single task by ID.
func (s *TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	row, err := s.db.Queries().GetTask(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}

	return rowToTask(row), nil
}

// List returns all tasks, incomplete first, then by ID.
func (s *TaskStore) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Queries().ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row))
	}

	return tasks, nil
}

// Update overwrites the mutable fields of a task.
func (s *TaskStore) Update(ctx context.Context, id int64, fields task.Fields) (task.Task, error) {
	row, err := s.db.Queries().UpdateTask(ctx, db.UpdateTaskParams{
		Description: fields.Description,
		Priority:    string(fields.Priority),
		Progress:    int64(fields.Progress),
		Completed:   boolToInt(fields.Completed),
		ID:          id,
	})
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}

	return rowToTask(row), nil
}

// Modify applies fn to the current task and stores the result in one transaction.
func (s *TaskStore) Modify(ctx context.Context, id int64, fn func(current task.Task) (task.Fields, error)) (task.Task, error) {
	var result task.Task

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		row, err := q.GetTask(ctx, id)
		if err != nil {
			if IsNotFoundError(err) {
				return task.ErrNotFound
			}
			return fmt.Errorf("get task %d: %w", id, err)
		}

		fields, err := fn(rowToTask(row))
		if err != nil {
			return err
		}

		row, err = q.UpdateTask(ctx, db.UpdateTaskParams{
			Description: fields.Description,
			Priority:    string(fields.Priority),
			Progress:    int64(fields.Progress),
			Completed:   boolToInt(fields.Completed),
			ID:          id,
		})
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}

		result = rowToTask(row)
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}

	return result, nil
}

// Toggle flips the completed flag of a task.
func (s *TaskStore) Toggle(ctx context.Context, id int64) (task.Task, error) {
	row, err := s.db.Queries().ToggleTaskCompleted(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("toggle task %d: %w", id, err)
	}

	return rowToTask(row), nil
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Queries().DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return task.ErrNotFound
	}

	return nil
}

// Count returns the total number of tasks.
func (s *TaskStore) Count(ctx context.Context) (int64, error) {
	n, err := s.db.Queries().CountTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func rowToTask(row db.Task) task.Task {
	return task.Task{
		ID:          row.ID,
		Description: row.Description,
		Priority:    task.Priority(row.Priority),
		Progress:    int(row.Progress),
		Completed:   row.Completed != 0,
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
