package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const runFile = "run.json"

// FileStore is a file-based run store. Each run is a directory holding
// run.json and the run's artifacts.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.local/share/graphmap/runs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "graphmap", "runs"), nil
}

// NewFileStore creates a new file-based run store.
// If baseDir is empty, defaults to [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.baseDir, id, runFile)
}

// ArtifactDir implements [Store].
func (s *FileStore) ArtifactDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *FileStore) Save(ctx context.Context, run *Run) error {
	if !ValidID(run.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, run.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := os.MkdirAll(s.ArtifactDir(run.ID), 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	if err := os.WriteFile(s.runPath(run.ID), data, 0o644); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Run, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileStore) read(id string) (*Run, error) {
	data, err := os.ReadFile(s.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read run file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	return &run, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}
	var runs []*Run
	for _, entry := range entries {
		if !entry.IsDir() || !ValidID(entry.Name()) {
			continue
		}
		run, err := s.read(entry.Name())
		if err != nil {
			continue
		}
		run.Map = nil
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for runs.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
