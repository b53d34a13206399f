package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDataDirAndFile(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	database, err := Open(dataDir, OpenOptions{})
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	assert.Equal(t, filepath.Join(dataDir, FileName), database.FilePath())
	_, err = os.Stat(database.FilePath())
	assert.NoError(t, err, "database file should exist")
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	database, err := Open(dataDir, DefaultOpenOptions())
	require.NoError(t, err)
	created, err := database.Queries().CreateTask(ctx, CreateTaskParams{Description: "Persist me", Priority: "MEDIUM"})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	database, err = Open(dataDir, DefaultOpenOptions())
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	got, err := database.Queries().GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persist me", got.Description)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	t.Run("commit", func(t *testing.T) {
		err := database.WithTx(ctx, func(q *Queries) error {
			_, err := q.CreateTask(ctx, CreateTaskParams{Description: "in tx", Priority: "LOW"})
			return err
		})
		require.NoError(t, err)

		count, err := database.Queries().CountTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := database.WithTx(ctx, func(q *Queries) error {
			if _, err := q.CreateTask(ctx, CreateTaskParams{Description: "discarded", Priority: "LOW"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		count, err := database.Queries().CountTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "rolled back insert should not persist")
	})
}

func TestQueries_ListOrdering(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	q := database.Queries()

	for i, completed := range []int64{1, 0, 1, 0} {
		_, err := q.CreateTask(ctx, CreateTaskParams{
			Description: string(rune('a' + i)),
			Priority:    "MEDIUM",
			Completed:   completed,
		})
		require.NoError(t, err)
	}

	rows, err := q.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var descriptions []string
	for _, r := range rows {
		descriptions = append(descriptions, r.Description)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, descriptions)
}

func TestIntegrityCheck(t *testing.T) {
	database := openTestDB(t)

	problems, err := database.IntegrityCheck(context.Background())
	require.NoError(t, err)
	assert.Empty(t, problems)
}
