// Package sqlstore implements service.Store on SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"todoboard/internal/service"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is a service.Store backed by a SQL database.
// Lists and tasks are returned in insertion order.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (and creates if needed) a SQLite database file.
func OpenSQLite(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return open(db, dialectSQLite)
}

// OpenInMemory opens a private in-memory SQLite database.
func OpenInMemory() (*Store, error) {
	dsn := "file:todoboard-" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return open(db, dialectSQLite)
}

// OpenPostgres connects to a PostgreSQL database.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return open(db, dialectPostgres)
}

func open(db *sql.DB, d dialect) (*Store, error) {
	if d == dialectSQLite {
		// One connection keeps PRAGMAs and in-memory databases alive.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, dialect: d}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	created := "created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP"
	stmts := []string{`PRAGMA foreign_keys = ON;`}
	if s.dialect == dialectPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
		created = "created_at TIMESTAMPTZ NOT NULL DEFAULT now()"
		stmts = nil
	}
	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS todo_lists (
			`+seq+`,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			`+created+`
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			`+seq+`,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			list_id TEXT NOT NULL REFERENCES todo_lists(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'low',
			position INTEGER NOT NULL DEFAULT 0,
			`+created+`
		);`,
		`CREATE INDEX IF NOT EXISTS idx_todo_lists_user ON todo_lists(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);`,
	)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ListLists implements service.Store.
func (s *Store) ListLists(ctx context.Context, userID string) ([]service.TaskList, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, name FROM todo_lists WHERE user_id = ? ORDER BY seq`), userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []service.TaskList
	for rows.Next() {
		var l service.TaskList
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return out, nil
}

// InsertList implements service.Store.
func (s *Store) InsertList(ctx context.Context, userID, name string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO todo_lists (id, user_id, name) VALUES (?, ?, ?)`),
		id, userID, name)
	if err != nil {
		return "", fmt.Errorf("insert list: %w", err)
	}
	return id, nil
}

func (s *Store) ownsList(ctx context.Context, userID, listID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM todo_lists WHERE id = ? AND user_id = ?`), listID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup list: %w", err)
	}
	return nil
}

// ListTasks implements service.Store.
func (s *Store) ListTasks(ctx context.Context, userID, listID string) ([]service.Task, error) {
	if err := s.ownsList(ctx, userID, listID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, title, description, due_date, priority, position
		FROM tasks WHERE list_id = ? AND user_id = ? ORDER BY seq`), listID, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []service.Task
	for rows.Next() {
		var t service.Task
		var priority string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &priority, &t.Position); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Priority = service.Priority(priority).OrDefault()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// InsertTask implements service.Store.
func (s *Store) InsertTask(ctx context.Context, userID, listID string, f service.TaskFields) (string, error) {
	if err := s.ownsList(ctx, userID, listID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (id, user_id, list_id, title, description, due_date, priority, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id, userID, listID, f.Title, f.Description, f.DueDate, string(f.Priority.OrDefault()), f.Position)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// DeleteTask implements service.Store.
func (s *Store) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM tasks WHERE id = ? AND list_id = ? AND user_id = ?`),
		taskID, listID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

// UpdateTask implements service.Store.
func (s *Store) UpdateTask(ctx context.Context, userID, listID, taskID string, p service.TaskPatch) error {
	var sets []string
	var args []any
	if p.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *p.Title)
	}
	if p.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *p.Description)
	}
	if p.DueDate != nil {
		sets, args = append(sets, "due_date = ?"), append(args, *p.DueDate)
	}
	if p.Priority != nil {
		sets, args = append(sets, "priority = ?"), append(args, string(p.Priority.OrDefault()))
	}
	if p.Position != nil {
		sets, args = append(sets, "position = ?"), append(args, *p.Position)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, taskID, listID, userID)
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND list_id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}
