package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mockup/internal/editor"
)

const schema = `
CREATE TABLE IF NOT EXISTS designs (
	id TEXT PRIMARY KEY,
	document BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps one row per design.
type SQLiteStore struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the document for designID.
func (s *SQLiteStore) Save(ctx context.Context, designID string, doc editor.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := checkDesignID(designID)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO designs (id, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	document = excluded.document,
	updated_at = excluded.updated_at
`, id, []byte(doc), s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save design %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, designID string) (editor.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := checkDesignID(designID)
	if err != nil {
		return nil, err
	}
	var doc []byte
	err = s.sqlDB.QueryRowContext(ctx, `SELECT document FROM designs WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load design %s: %w", id, err)
	}
	return bytes.Clone(doc), nil
}

// List returns designs, most recently saved first.
func (s *SQLiteStore) List(ctx context.Context) ([]Design, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, length(document), updated_at
FROM designs
ORDER BY updated_at DESC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	var designs []Design
	for rows.Next() {
		var (
			d       Design
			updated int64
		)
		if err := rows.Scan(&d.ID, &d.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		d.UpdatedAt = time.UnixMilli(updated).UTC()
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate designs: %w", err)
	}
	return designs, nil
}
