package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// fileRecord keeps both values as strings on disk, the same shape the web
// client persisted in local storage.
type fileRecord struct {
	Token  string `json:"token"`
	Expiry string `json:"tokenExpiry"`
}

// FileStore defines a public type used by goSession APIs.
//
// FileStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a [Store] backed by a JSON file at path. The parent
// directory is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation or dependency calls fail.
// Load does not mutate shared global state and can be used concurrently.
func (s *FileStore) Load(_ context.Context) (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt file is equivalent to no token; the caller re-authenticates.
		return nil, ErrNotFound
	}
	if rec.Token == "" || rec.Expiry == "" {
		return nil, ErrNotFound
	}
	expiry, err := strconv.ParseInt(rec.Expiry, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	return &TokenRecord{Token: rec.Token, ExpiresAt: expiry}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation or dependency calls fail.
// Save does not mutate shared global state and can be used concurrently.
func (s *FileStore) Save(_ context.Context, rec TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	data, err := json.Marshal(fileRecord{
		Token:  rec.Token,
		Expiry: strconv.FormatInt(rec.ExpiresAt, 10),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation or dependency calls fail.
// Clear does not mutate shared global state and can be used concurrently.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
