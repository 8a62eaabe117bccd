package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store with a single JSON file. The file maps keys to
// raw values and is written with 0600 permissions. An optional Sealer
// encrypts the serialized contents so tokens are not readable at rest.
//
// Writes rewrite the whole file via a temp-file rename, so a crash mid-write
// leaves the previous contents intact.
type FileStore struct {
	path   string
	sealer *Sealer
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed. A nil sealer stores plaintext JSON.
func NewFileStore(path string, sealer *Sealer) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create config dir: %w", err)
	}

	return &FileStore{path: path, sealer: sealer}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return nil, err
	}

	val, ok := items[key]
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	items[key] = value
	return f.save(items)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := items[key]; !ok {
		return nil
	}

	delete(items, key)
	return f.save(items)
}

// Must be called with the lock held.
func (f *FileStore) load() (map[string][]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", f.path, err)
	}

	if len(data) == 0 {
		return make(map[string][]byte), nil
	}

	if f.sealer != nil {
		if data, err = f.sealer.Open(data); err != nil {
			return nil, err
		}
	}

	items := make(map[string][]byte)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("credstore: decode %s: %w", f.path, err)
	}
	return items, nil
}

// Must be called with the lock held.
func (f *FileStore) save(items map[string][]byte) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	if f.sealer != nil {
		if data, err = f.sealer.Seal(data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credstore-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: write: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: chmod: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}
