package store

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mockup/internal/editor"
)

const fileExt = ".mockup.yaml"

// FileStore keeps each design as <id>.mockup.yaml in one directory.
type FileStore struct {
	dir string
}

// OpenFileStore creates dir if needed. An empty dir means the working
// directory.
func OpenFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the file a design is stored in.
func (s *FileStore) Path(designID string) string {
	return filepath.Join(s.dir, designID+fileExt)
}

// Save writes through a temp file so a crash never leaves half a document.
func (s *FileStore) Save(ctx context.Context, designID string, doc editor.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := checkDesignID(designID)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+id+"-*")
	if err != nil {
		return fmt.Errorf("save design %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save design %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save design %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(id)); err != nil {
		return fmt.Errorf("save design %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, designID string) (editor.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := checkDesignID(designID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load design %s: %w", id, err)
	}
	return bytes.Clone(data), nil
}

// List returns designs, most recently saved first.
func (s *FileStore) List(ctx context.Context) ([]Design, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	var designs []Design
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		designs = append(designs, Design{
			ID:        strings.TrimSuffix(name, fileExt),
			Size:      int(info.Size()),
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	slices.SortFunc(designs, func(a, b Design) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return designs, nil
}
