package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewStore opens (or creates) the SQLite database at path via libSQL
// and ensures the schema exists. Pass ":memory:" for an ephemeral
// store in tests.
func NewStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS answer_lists (
			id         TEXT PRIMARY KEY,
			name       TEXT UNIQUE NOT NULL,
			content    BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
		`CREATE TABLE IF NOT EXISTS host_sessions (
			id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// openDB configures the connection for concurrent use: WAL journal
// mode, 5 s busy timeout, foreign keys enabled.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// libSQL rejects Exec for PRAGMAs that return rows, but some PRAGMAs
	// (like foreign_keys=ON) return nothing. Use QueryContext and drain
	// rows to handle both cases uniformly.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) CreateHostSession(ctx context.Context) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO host_sessions DEFAULT VALUES
		RETURNING id
	`).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) HostSessionExists(ctx context.Context, sessionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM host_sessions WHERE id = ?
	`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLiteStore) DeleteHostSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM host_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) ListAnswerLists(ctx context.Context) ([]AnswerListSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, length(content), updated_at
		FROM answer_lists
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []AnswerListSummary{}
	for rows.Next() {
		var l AnswerListSummary
		if err := rows.Scan(&l.ID, &l.Name, &l.Size, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// SaveAnswerList stores content under name, replacing any list that
// already uses the name.
func (s *SQLiteStore) SaveAnswerList(ctx context.Context, name string, content []byte) (AnswerListSummary, error) {
	var l AnswerListSummary
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO answer_lists (id, name, content)
		VALUES (lower(hex(randomblob(16))), ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		RETURNING id, name, length(content), updated_at
	`, name, content).Scan(&l.ID, &l.Name, &l.Size, &l.UpdatedAt)
	return l, err
}

func (s *SQLiteStore) GetAnswerList(ctx context.Context, id string) (AnswerListDetail, error) {
	var d AnswerListDetail
	var content []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, content, updated_at FROM answer_lists WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &content, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	d.Content = string(content)
	return d, err
}

func (s *SQLiteStore) UpdateAnswerListContent(ctx context.Context, id string, content []byte) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE answer_lists
		SET content = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, content, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteAnswerList(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM answer_lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }
