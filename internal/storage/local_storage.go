// Package storage holds the client's durable key/value blobs, the equivalent
// of a browser's localStorage: one text value per key.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

var ErrInvalidKey = errors.New("storage key must not be empty")

// LocalStorage keeps every key in its own file under basePath.
type LocalStorage struct {
	basePath string
	mu       sync.RWMutex
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) getPathFromKey(key string) string {
	return filepath.Join(ls.basePath, url.PathEscape(key)+".json")
}

// Set replaces the value atomically via a temp file and rename.
func (ls *LocalStorage) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	filePath := ls.getPathFromKey(key)
	tmp, err := os.CreateTemp(ls.basePath, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

// Get reports ok=false for a missing key.
func (ls *LocalStorage) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	data, err := os.ReadFile(ls.getPathFromKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return string(data), true, nil
}

func (ls *LocalStorage) Remove(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	err := os.Remove(ls.getPathFromKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
