package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// upScript matches "0001_create_tasks.up.sql". The four digit version keeps
// lexical and numeric order identical.
var upScript = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.up\.sql$`)

// Migration is one schema change with the script that undoes it.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

func loadMigrations() ([]Migration, error) {
	return readMigrations(migrationsFS)
}

// readMigrations returns the migrations under migrations/ in fsys in version
// order. Every up script needs a down script of the same base name.
func readMigrations(fsys fs.FS) ([]Migration, error) {
	ups, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	downs, err := fs.Glob(fsys, "migrations/*.down.sql")
	if err != nil {
		return nil, err
	}
	if len(downs) != len(ups) {
		return nil, fmt.Errorf("found %d up scripts and %d down scripts", len(ups), len(downs))
	}

	migrations := make([]Migration, 0, len(ups))
	for _, p := range ups {
		match := upScript.FindStringSubmatch(path.Base(p))
		if match == nil {
			return nil, fmt.Errorf("migration %q: name must look like 0001_create_tasks.up.sql", path.Base(p))
		}

		version, _ := strconv.Atoi(match[1])
		if version == 0 {
			return nil, fmt.Errorf("migration %q: versions start at 0001", path.Base(p))
		}
		if n := len(migrations); n > 0 && migrations[n-1].Version == version {
			return nil, fmt.Errorf("migration %04d is defined twice", version)
		}

		up, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(fsys, strings.TrimSuffix(p, ".up.sql")+".down.sql")
		if err != nil {
			return nil, fmt.Errorf("migration %04d has no down script: %w", version, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    match[2],
			UpSQL:   string(up),
			DownSQL: string(down),
		})
	}

	return migrations, nil
}

// migrator applies migrations against a connection and tracks them in the
// schema_migrations table.
type migrator struct {
	conn       *sql.DB
	migrations []Migration
	applied    map[int]time.Time
}

func newMigrator(ctx context.Context, conn *sql.DB) (*migrator, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      int64
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("read schema_migrations: %w", err)
		}
		applied[version] = time.Unix(0, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	return &migrator{conn: conn, migrations: migrations, applied: applied}, nil
}

func (m *migrator) up(ctx context.Context) error {
	for _, mig := range m.migrations {
		if _, ok := m.applied[mig.Version]; ok {
			continue
		}

		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		err := m.exec(ctx, mig.UpSQL,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("apply %04d_%s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

func (m *migrator) down(ctx context.Context, n int) error {
	var reverting []Migration
	for i := len(m.migrations) - 1; i >= 0 && len(reverting) < n; i-- {
		if _, ok := m.applied[m.migrations[i].Version]; ok {
			reverting = append(reverting, m.migrations[i])
		}
	}
	if len(reverting) < n {
		return fmt.Errorf("cannot revert %d migrations, only %d applied", n, len(reverting))
	}

	for _, mig := range reverting {
		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		err := m.exec(ctx, mig.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

func (m *migrator) status() []MigrationStatus {
	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		at, ok := m.applied[mig.Version]
		statuses = append(statuses, MigrationStatus{
			Version:   mig.Version,
			Name:      mig.Name,
			Applied:   ok,
			AppliedAt: at,
		})
	}
	return statuses
}

// exec runs a migration script and its bookkeeping statement in one transaction.
func (m *migrator) exec(ctx context.Context, script, record string, args ...any) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("update schema_migrations: %w", err)
	}
	return tx.Commit()
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}
	return m.up(ctx)
}

// MigrateDown reverts the n most recently applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("steps must be positive, got %d", n)
	}

	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}
	return m.down(ctx, n)
}

// Status lists every known migration and whether it has been applied.
func Status(ctx context.Context, conn *sql.DB) ([]MigrationStatus, error) {
	m, err := newMigrator(ctx, conn)
	if err != nil {
		return nil, err
	}
	return m.status(), nil
}
