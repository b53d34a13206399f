package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/taskboard/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(errors.New("constraint failed")))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(fmt.Errorf("open: %w", errors.New("file is not a database"))))
}

func TestRecoverFromCorruption(t *testing.T) {
	t.Run("moves database and sidecar files aside", func(t *testing.T) {
		dataDir := t.TempDir()
		dbPath := db.Path(dataDir)

		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			require.NoError(t, os.WriteFile(p, []byte("garbage"), 0o644))
		}

		backup, err := RecoverFromCorruption(dataDir)
		require.NoError(t, err)
		assert.Equal(t, dataDir, filepath.Dir(backup))

		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			_, err := os.Stat(p)
			assert.True(t, os.IsNotExist(err), "%s should be moved", p)
		}

		_, err = os.Stat(backup)
		assert.NoError(t, err, "backup should exist")
		_, err = os.Stat(backup + "-wal")
		assert.NoError(t, err, "wal backup should exist")
	})

	t.Run("missing database is not an error", func(t *testing.T) {
		_, err := RecoverFromCorruption(t.TempDir())
		assert.NoError(t, err)
	})

	t.Run("database opens cleanly afterwards", func(t *testing.T) {
		dataDir := t.TempDir()
		require.NoError(t, os.WriteFile(db.Path(dataDir), []byte("this is not sqlite"), 0o644))

		_, err := RecoverFromCorruption(dataDir)
		require.NoError(t, err)

		database, err := db.Open(dataDir, db.DefaultOpenOptions())
		require.NoError(t, err)
		_ = database.Close()
	})
}
