package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists selfie images on disk under a base directory.
// Keys are opaque hex strings; the stored object is always a JPEG.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./data/selfies"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create selfie directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// NewKey returns a fresh random storage key.
func NewKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate selfie key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Save writes image bytes under the given key.
func (s *LocalStorage) Save(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write selfie file: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored image.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open selfie file: %w", err)
	}
	return file, nil
}

// Delete removes a stored image if present.
func (s *LocalStorage) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete selfie file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes images older than the provided TTL and returns
// the deleted keys. Keys the keep predicate retains are skipped, so
// images still referenced by a profile survive the purge of selfies left
// behind by expired drafts.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration, keep func(key string) bool) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		key := strings.TrimSuffix(d.Name(), ".jpg")
		if keep != nil && keep(key) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		deleted = append(deleted, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup selfies: %w", err)
	}
	return deleted, nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(key string) string {
	p, err := s.resolve(key)
	if err != nil {
		return ""
	}
	return p
}

// resolve maps a key to its on-disk path, rejecting traversal attempts.
func (s *LocalStorage) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid selfie key %q", key)
	}
	return filepath.Join(s.baseDir, key+".jpg"), nil
}
