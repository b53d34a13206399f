package taskboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/rs/zerolog"
)

// TaskService wraps task.Store with the create, toggle, edit and delete
// rules shared by the web handlers and the CLI.
type TaskService struct {
	store task.Store
	log   zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store task.Store, log zerolog.Logger) *TaskService {
	return &TaskService{
		store: store,
		log:   log,
	}
}

// List returns all tasks, incomplete first.
func (s *TaskService) List(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id int64) (task.Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Count returns the number of stored tasks.
func (s *TaskService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Submit handles an add-task submission. When taskID is non-empty the
// referenced task has its completion toggled and the description is ignored;
// otherwise a new task is created. The description must be non-empty in both
// cases, so an empty description aborts a toggle as well.
func (s *TaskService) Submit(ctx context.Context, taskID, description string) (task.Task, error) {
	if err := task.ValidateNewDescription(description); err != nil {
		return task.Task{}, err
	}

	if taskID == "" {
		return s.Add(ctx, description)
	}

	id, err := ParseID(taskID)
	if err != nil {
		return task.Task{}, err
	}
	return s.Toggle(ctx, id)
}

// Add creates a task with the given description and default fields.
func (s *TaskService) Add(ctx context.Context, description string) (task.Task, error) {
	if err := task.ValidateNewDescription(description); err != nil {
		return task.Task{}, err
	}

	t, err := s.store.Create(ctx, description)
	if err != nil {
		return task.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.log.Debug().Ctx(ctx).Int64("task_id", t.ID).Msg("task created")
	return t, nil
}

// Toggle flips the completion flag of a task.
func (s *TaskService) Toggle(ctx context.Context, id int64) (task.Task, error) {
	t, err := s.store.Toggle(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}

	s.log.Debug().Ctx(ctx).Int64("task_id", t.ID).Bool("completed", t.Completed).Msg("task toggled")
	return t, nil
}

// Edit validates form against the task and persists the resolved fields.
// Returns task.ErrNotFound before validating when the task does not exist,
// and a *task.ValidationError without writing when the form is invalid.
func (s *TaskService) Edit(ctx context.Context, id int64, form task.EditForm) (task.Task, error) {
	t, err := s.store.Modify(ctx, id, func(task.Task) (task.Fields, error) {
		return form.Fields()
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("edit task: %w", err)
	}

	if !t.Priority.IsValid() {
		s.log.Warn().Ctx(ctx).Int64("task_id", t.ID).Str("priority", string(t.Priority)).Msg("task stored with undeclared priority")
	}

	s.log.Debug().Ctx(ctx).Int64("task_id", t.ID).Msg("task edited")
	return t, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.Debug().Ctx(ctx).Int64("task_id", id).Msg("task deleted")
	return nil
}

// Import creates one new task per entry, keeping description, priority,
// progress and completion. Entry IDs are ignored and an empty priority falls
// back to task.DefaultPriority. Every entry is validated before anything is
// written, and the tasks are created in a single transaction.
func (s *TaskService) Import(ctx context.Context, entries []task.Task) ([]task.Task, error) {
	fields := make([]task.Fields, 0, len(entries))
	for i, e := range entries {
		if err := task.ValidateNewDescription(e.Description); err != nil {
			var verr *task.ValidationError
			if errors.As(err, &verr) {
				verr.Field = fmt.Sprintf("tasks[%d].%s", i, verr.Field)
			}
			return nil, err
		}

		priority := e.Priority
		if priority == "" {
			priority = task.DefaultPriority
		}
		if !priority.IsValid() {
			return nil, &task.ValidationError{
				Field:   fmt.Sprintf("tasks[%d].priority", i),
				Message: task.MsgInvalidPriority,
			}
		}

		fields = append(fields, task.Fields{
			Description: e.Description,
			Priority:    priority,
			Progress:    e.Progress,
			Completed:   e.Completed,
		})
	}

	created, err := s.store.CreateMany(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("import tasks: %w", err)
	}

	s.log.Info().Ctx(ctx).Int("count", len(created)).Msg("tasks imported")
	return created, nil
}

// ParseID parses a task identifier made of ASCII digits only. Signs,
// whitespace and identifiers that are not positive cannot refer to a stored
// task and yield task.ErrNotFound.
func ParseID(raw string) (int64, error) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, fmt.Errorf("task id %q: %w", raw, task.ErrNotFound)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("task id %q: %w", raw, task.ErrNotFound)
	}
	return id, nil
}
