// Package file provides a filesystem-backed ports.WorkflowStore. Each
// workflow is one YAML document in the store directory, written atomically so
// a crash mid-save never leaves a truncated file behind.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mosaicflow/mosaic/pkg/domain"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml"

// Store implements ports.WorkflowStore on a directory of YAML files.
// Safe for concurrent use within a single process.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the workflow to <dir>/<id>.yaml via a temp file and rename.
func (s *Store) Save(ctx context.Context, wf domain.Workflow) error {
	data, err := yaml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("encode workflow %s: %w", wf.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+wf.ID+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write workflow %s: %w", wf.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync workflow %s: %w", wf.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(wf.ID)); err != nil {
		return fmt.Errorf("commit workflow %s: %w", wf.ID, err)
	}
	return nil
}

// Load reads a workflow back from disk.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("read workflow %s: %w", id, err)
	}

	var wf domain.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &wf, nil
}

// Delete removes the workflow file. Missing files are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all workflows in the directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list store directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	return ids, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}
