package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"studyplan/internal/task"
)

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	subject TEXT NOT NULL DEFAULT '',
	due_ms INTEGER NOT NULL,
	priority INTEGER NOT NULL DEFAULT 2,
	notes TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_ms INTEGER NOT NULL,
	updated_ms INTEGER NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("storage: create tasks table: %w", err)
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema so older
// databases keep working.
func (s *SQLite) ensureTaskColumns() error {
	required := map[string]string{
		"duration_hrs": "ALTER TABLE tasks ADD COLUMN duration_hrs REAL DEFAULT NULL;",
		"reminder":     "ALTER TABLE tasks ADD COLUMN reminder INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return fmt.Errorf("storage: add column %s: %w", col, err)
		}
	}
	return nil
}

// Load reads tasks in saved order. Rows that cannot be scanned are skipped.
func (s *SQLite) Load(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, subject, due_ms, duration_hrs, priority, notes, completed, reminder, created_ms, updated_ms FROM tasks ORDER BY position, rowid;`)
	if err != nil {
		return nil, fmt.Errorf("storage: query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		var dueMs, createdMs, updatedMs int64
		var duration sql.NullFloat64
		var priority, completed, reminder int

		if err := rows.Scan(&t.ID, &t.Title, &t.Subject, &dueMs, &duration, &priority, &t.Notes, &completed, &reminder, &createdMs, &updatedMs); err != nil {
			log.Printf("storage: skipping unreadable task row: %v", err)
			continue
		}
		t.Due = time.UnixMilli(dueMs)
		if duration.Valid {
			t.DurationHrs = task.Hours(duration.Float64)
		}
		t.Priority = task.Priority(priority)
		t.Completed = completed == 1
		t.Reminder = reminder == 1
		t.CreatedAt = time.UnixMilli(createdMs)
		t.UpdatedAt = time.UnixMilli(updatedMs)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read tasks: %w", err)
	}
	return tasks, nil
}

// Save replaces the stored list in one transaction.
func (s *SQLite) Save(ctx context.Context, tasks []task.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks;`); err != nil {
		return fmt.Errorf("storage: clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (id, position, title, subject, due_ms, duration_hrs, priority, notes, completed, reminder, created_ms, updated_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		duration := sql.NullFloat64{}
		if t.DurationHrs != nil {
			duration = sql.NullFloat64{Float64: *t.DurationHrs, Valid: true}
		}
		_, err := stmt.ExecContext(ctx, t.ID, i, t.Title, t.Subject, t.Due.UnixMilli(), duration,
			int(t.Priority), t.Notes, boolToInt(t.Completed), boolToInt(t.Reminder),
			t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("storage: insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
