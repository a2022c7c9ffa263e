// Package jsonfile implements the local store as a single JSON object file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/colonyops/chime/internal/core/kv"
)

// FileName is the store file created inside the data directory.
const FileName = "chime.json"

// KVFile implements kv.Store over a JSON object of string values. Every Set
// rewrites the whole file through a temp file and rename, so readers in other
// processes never observe a partial write.
type KVFile struct {
	path string
	mu   sync.RWMutex
}

var _ kv.Store = (*KVFile)(nil)

// NewKVFile creates a store at path. The file is created on first write.
func NewKVFile(path string) *KVFile {
	return &KVFile{path: path}
}

// Path returns the backing file path.
func (f *KVFile) Path() string {
	return f.path
}

func (f *KVFile) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return "", false, err
	}

	v, ok := data[key]
	return v, ok, nil
}

func (f *KVFile) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}

	data[key] = value
	return f.save(data)
}

// Keys returns every stored key, sorted.
func (f *KVFile) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(data)), nil
}

// load reads the store file. A missing or empty file is an empty store.
func (f *KVFile) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	return data, nil
}

// save writes the store file atomically.
func (f *KVFile) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, f.path)
}
