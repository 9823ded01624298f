package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is used when OpenFile gets an empty path.
const DefaultFile = "storage.json"

// FileStore keeps every key in a single JSON object on disk. The whole file
// is rewritten on each mutation.
type FileStore struct {
	path  string
	mu    sync.Mutex
	items map[string]string
}

// OpenFile loads path, or starts empty when the file does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultFile
	}
	fs := &FileStore{path: path}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fs.items = make(map[string]string)
			return nil
		}
		return fmt.Errorf("open %s: %w", fs.path, err)
	}
	defer f.Close()

	items := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return fmt.Errorf("decode %s: %w", fs.path, err)
	}
	fs.items = items
	return nil
}

// save must be called with mu held.
func (fs *FileStore) save() error {
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	tmp := fs.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := json.NewEncoder(f).Encode(fs.items); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, fs.path)
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.items[key]
	return v, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	fs.items[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.items[key] = prev
		} else {
			delete(fs.items, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	if !had {
		return nil
	}
	delete(fs.items, key)
	if err := fs.save(); err != nil {
		fs.items[key] = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() error { return nil }
