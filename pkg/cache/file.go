package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryExt is the extension of entry files.
const entryExt = ".json"

// FileCache keeps one JSON file per entry under dir, fanned out into
// subdirectories by the first two hex digits of the key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry for key. Corrupt and expired entries are removed
// and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	e, err := readEntry(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		_ = os.Remove(path)
		return nil, false, nil
	case e.Key != key || e.expired(c.now()):
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so
// concurrent readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	e := fileEntry{Key: key, Data: data, CreatedAt: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes the entry for key.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// FileStats summarizes the entries of a [FileCache].
type FileStats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Stats walks the cache and counts its entries.
func (c *FileCache) Stats() (FileStats, error) {
	var st FileStats
	now := c.now()
	err := c.walk(func(path string, info fs.FileInfo) {
		st.Entries++
		st.Bytes += info.Size()
		if e, err := readEntry(path); err != nil || e.expired(now) {
			st.Expired++
		}
	})
	return st, err
}

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	return c.remove(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *FileCache) Prune() (int, error) {
	now := c.now()
	return c.remove(func(path string) bool {
		e, err := readEntry(path)
		return err != nil || e.expired(now)
	})
}

func (c *FileCache) remove(match func(path string) bool) (int, error) {
	var paths []string
	err := c.walk(func(path string, _ fs.FileInfo) {
		if match(path) {
			paths = append(paths, path)
		}
	})
	n := 0
	for _, p := range paths {
		if os.Remove(p) == nil {
			n++
			_ = os.Remove(filepath.Dir(p)) // only succeeds once the shard is empty
		}
	}
	return n, err
}

// walk calls fn for every entry file. A missing cache directory is empty.
func (c *FileCache) walk(fn func(path string, info fs.FileInfo)) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fn(path, info)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func readEntry(path string) (fileEntry, error) {
	var e fileEntry
	raw, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(raw, &e)
	return e, err
}

var _ Cache = (*FileCache)(nil)
