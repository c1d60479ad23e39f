package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Load when no token has been persisted.
var ErrNotFound = errors.New("no persisted token")

// ErrUnavailable indicates the persistence backend is unreachable.
var ErrUnavailable = errors.New("token store unavailable")

// TokenRecord is the persisted token+expiry pair. ExpiresAt is absolute,
// in milliseconds since epoch.
type TokenRecord struct {
	Token     string
	ExpiresAt int64
}

// Expiry returns the expiry as a [time.Time].
func (r TokenRecord) Expiry() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

// Live reports whether the record's expiry is strictly after now.
func (r TokenRecord) Live(now time.Time) bool {
	return r.Token != "" && r.Expiry().After(now)
}

// Store is the durable token persistence contract. Load returns
// [ErrNotFound] when nothing is persisted; Clear on an empty store is a
// no-op, not an error.
type Store interface {
	Load(ctx context.Context) (*TokenRecord, error)
	Save(ctx context.Context, rec TokenRecord) error
	Clear(ctx context.Context) error
}

// MemoryStore defines a public type used by goSession APIs.
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStore struct {
	mu  sync.Mutex
	rec *TokenRecord
}

// NewMemoryStore creates an empty in-memory [Store].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation or dependency calls fail.
// Load does not mutate shared global state and can be used concurrently.
func (s *MemoryStore) Load(_ context.Context) (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, ErrNotFound
	}
	rec := *s.rec
	return &rec, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation or dependency calls fail.
// Save does not mutate shared global state and can be used concurrently.
func (s *MemoryStore) Save(_ context.Context, rec TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation or dependency calls fail.
// Clear does not mutate shared global state and can be used concurrently.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
