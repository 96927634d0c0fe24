package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"techcorp/internal/metrics"
)

// ErrNotFound is wrapped by lookups and writes that match no row.
var ErrNotFound = errors.New("not found")

// Store wraps access to the SQLite database and exposes table level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the time source used for timestamps and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user', 'guest')),
            status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'in-progress'
                CHECK (status IN ('in-progress', 'completed', 'on-hold', 'nearly-complete')),
            progress INTEGER NOT NULL DEFAULT 0,
            start_date TEXT NOT NULL,
            team_size INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS sprints (
            id TEXT PRIMARY KEY,
            number INTEGER NOT NULL UNIQUE,
            status TEXT NOT NULL DEFAULT 'planning' CHECK (status IN ('planning', 'active', 'completed')),
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sprints_single_active ON sprints(status) WHERE status = 'active';`,
		`CREATE TABLE IF NOT EXISTS backlog_items (
            id TEXT PRIMARY KEY,
            sprint_id TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            story_points INTEGER NOT NULL DEFAULT 1,
            priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('high', 'medium', 'low')),
            status TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'inprogress', 'done')),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_backlog_sprint ON backlog_items(sprint_id);`,
		`CREATE TABLE IF NOT EXISTS daily_updates (
            id TEXT PRIMARY KEY,
            sprint_id TEXT NOT NULL,
            member TEXT NOT NULL,
            yesterday TEXT NOT NULL DEFAULT '',
            today TEXT NOT NULL,
            blockers TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_daily_sprint ON daily_updates(sprint_id);`,
		`CREATE TABLE IF NOT EXISTS retro_items (
            id TEXT PRIMARY KEY,
            sprint_id TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('good', 'bad', 'improve')),
            content TEXT NOT NULL,
            votes INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_retro_sprint ON retro_items(sprint_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) observe(table, op string, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	metrics.ObserveStoreOp(table, op, err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Debug("store operation failed", slog.String("table", table), slog.String("op", op), slog.String("error", err.Error()))
	}
}

// deleteByID removes a row by primary key, reporting ErrNotFound when nothing matched.
func (s *Store) deleteByID(ctx context.Context, table, noun, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", noun, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %w", noun, ErrNotFound)
	}
	return nil
}

// collect drains rows through scan.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// checkEnum rejects v when it is not a member of set.
func checkEnum(set map[string]struct{}, kind, v string) error {
	if _, ok := set[v]; !ok {
		return fmt.Errorf("unknown %s %q", kind, v)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
