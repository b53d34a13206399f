package taskboard

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/colonyops/taskboard/internal/data/db"
	"github.com/colonyops/taskboard/internal/data/stores"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()
	svc, _ := newTestServiceDB(t)
	return svc
}

func newTestServiceDB(t *testing.T) (*TaskService, *db.DB) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewTaskService(stores.NewTaskStore(database), zerolog.Nop()), database
}

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var verr *task.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msg, verr.Message)
}

func TestTaskService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("empty description creates nothing", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Submit(ctx, "", "")
		requireValidation(t, err, task.MsgDescriptionRequired)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("creates task with defaults", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Submit(ctx, "", "Buy milk")
		require.NoError(t, err)

		tasks, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, created, tasks[0])
		assert.Equal(t, task.PriorityMedium, tasks[0].Priority)
		assert.Equal(t, 0, tasks[0].Progress)
		assert.False(t, tasks[0].Completed)
	})

	t.Run("short description accepted on create", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Submit(ctx, "", "ab")
		require.NoError(t, err)
		assert.Equal(t, "ab", created.Description)
	})

	t.Run("task id toggles instead of creating", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)
		id := strconv.FormatInt(created.ID, 10)

		toggled, err := svc.Submit(ctx, id, "ignored")
		require.NoError(t, err)
		assert.True(t, toggled.Completed)
		assert.Equal(t, "Buy milk", toggled.Description, "description is ignored on toggle")

		toggled, err = svc.Submit(ctx, id, "ignored")
		require.NoError(t, err)
		assert.False(t, toggled.Completed)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty description aborts toggle", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)

		_, err = svc.Submit(ctx, strconv.FormatInt(created.ID, 10), "")
		requireValidation(t, err, task.MsgDescriptionRequired)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, got.Completed)
	})

	t.Run("toggle unknown id", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Submit(ctx, "12", "x")
		assert.ErrorIs(t, err, task.ErrNotFound)

		_, err = svc.Submit(ctx, "abc", "x")
		assert.ErrorIs(t, err, task.ErrNotFound)
	})
}

func TestTaskService_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("progress 100 without checkbox stays incomplete", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)

		edited, err := svc.Edit(ctx, created.ID, task.EditForm{
			Description: "Buy milk",
			Priority:    "HIGH",
			Progress:    "100",
		})
		require.NoError(t, err)
		assert.Equal(t, 100, edited.Progress)
		assert.False(t, edited.Completed)
	})

	t.Run("checkbox completes and forces progress", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)

		edited, err := svc.Edit(ctx, created.ID, task.EditForm{
			Description: "Buy milk",
			Priority:    "LOW",
			Progress:    "20",
			Completed:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, 100, edited.Progress)
		assert.True(t, edited.Completed)
	})

	t.Run("unchecking a completed task keeps progress", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)
		_, err = svc.Toggle(ctx, created.ID)
		require.NoError(t, err)

		edited, err := svc.Edit(ctx, created.ID, task.EditForm{
			Description: "Buy milk",
			Priority:    "MEDIUM",
			Progress:    "60",
		})
		require.NoError(t, err)
		assert.False(t, edited.Completed)
		assert.Equal(t, 60, edited.Progress)
	})

	t.Run("short description leaves task unchanged", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)

		_, err = svc.Edit(ctx, created.ID, task.EditForm{
			Description: "abc",
			Priority:    "HIGH",
			Progress:    "50",
		})
		requireValidation(t, err, task.MsgDescriptionTooShort)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("invalid priority is stored as is", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.Add(ctx, "Buy milk")
		require.NoError(t, err)

		edited, err := svc.Edit(ctx, created.ID, task.EditForm{
			Description: "Buy milk",
			Priority:    "SOMEDAY",
			Progress:    "0",
		})
		require.NoError(t, err)
		assert.Equal(t, task.Priority("SOMEDAY"), edited.Priority)
		assert.False(t, edited.Priority.IsValid())
	})

	t.Run("unknown task is reported before validation", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Edit(ctx, 404, task.EditForm{Description: "x"})
		assert.ErrorIs(t, err, task.ErrNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.ErrorIs(t, svc.Delete(ctx, 1), task.ErrNotFound)

	created, err := svc.Add(ctx, "Buy milk")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps fields and assigns new ids", func(t *testing.T) {
		svc := newTestService(t)
		existing, err := svc.Add(ctx, "already here")
		require.NoError(t, err)

		got, err := svc.Import(ctx, []task.Task{
			{ID: existing.ID, Description: "imported one", Priority: task.PriorityCritical, Progress: 30},
			{ID: 99, Description: "imported two", Progress: 100, Completed: true},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.NotEqual(t, existing.ID, got[0].ID)
		assert.Equal(t, task.PriorityCritical, got[0].Priority)
		assert.Equal(t, 30, got[0].Progress)
		assert.Equal(t, task.DefaultPriority, got[1].Priority, "empty priority falls back to the default")
		assert.True(t, got[1].Completed)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("empty description writes nothing", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Import(ctx, []task.Task{{Description: "fine"}, {Description: ""}})

		var verr *task.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tasks[1].description", verr.Field)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("undeclared priority writes nothing", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Import(ctx, []task.Task{
			{Description: "fine", Priority: task.PriorityHigh},
			{Description: "also fine", Priority: "BOGUS"},
		})

		var verr *task.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tasks[1].priority", verr.Field)
		assert.Equal(t, task.MsgInvalidPriority, verr.Message)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("write failure leaves no partial import", func(t *testing.T) {
		svc, database := newTestServiceDB(t)
		_, err := database.Conn().ExecContext(ctx, `
CREATE TRIGGER reject_broken BEFORE INSERT ON tasks
WHEN NEW.description = 'broken'
BEGIN
	SELECT RAISE(ABORT, 'rejected');
END`)
		require.NoError(t, err)

		_, err = svc.Import(ctx, []task.Task{
			{Description: "first", Priority: task.PriorityLow, Progress: 10},
			{Description: "broken"},
			{Description: "third"},
		})
		require.Error(t, err)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestTaskService_LogsWithCallerComponent(t *testing.T) {
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel).With().Str("cmp", "taskboard").Logger()
	svc := NewTaskService(stores.NewTaskStore(database), log)

	_, err = svc.Add(context.Background(), "Buy milk")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"cmp":"taskboard"`)
	assert.NotContains(t, buf.String(), `"component"`)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"007", 7, false},
		{" 42 ", 0, true},
		{"+5", 0, true},
		{"5 ", 0, true},
		{"99999999999999999999", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, task.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
