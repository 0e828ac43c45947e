// Package store persists mockup documents by design id.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mockup/internal/editor"
)

var ErrNotFound = errors.New("design not found")

// Design describes one stored document.
type Design struct {
	ID        string
	Size      int
	UpdatedAt time.Time
}

// Store is the document store behind an editor session. It satisfies
// editor.Persister.
type Store interface {
	Save(ctx context.Context, designID string, doc editor.Document) error
	Load(ctx context.Context, designID string) (editor.Document, error)
	List(ctx context.Context) ([]Design, error)
	Close() error
}

const (
	KindSQLite = "sqlite"
	KindFile   = "file"
)

// Open returns the store named by kind. location is the database path for
// sqlite and the directory for file.
func Open(kind, location string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSQLite, "":
		return OpenSQLite(location)
	case KindFile:
		return OpenFileStore(location)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func checkDesignID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("design id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid design id %q", id)
	}
	return id, nil
}
