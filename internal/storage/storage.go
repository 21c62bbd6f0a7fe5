// Package storage is the namespaced key/value persistence layer. Every value
// the application keeps is a JSON string stored under a prefixed key in one
// of the Backend implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrNotFound is returned when a key has never been written
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable wraps every backend failure other than a missing key
	// (connection refused, quota, closed database)
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend is a string key/value medium
type Backend interface {
	// Get returns ErrNotFound when the key is absent
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries or none of them
	SetMany(ctx context.Context, entries map[string]string) error
	// DeletePrefix removes every key beginning with prefix and reports how many were removed
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	// Keys lists keys beginning with prefix in lexical order
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// unavailable wraps err so callers can match it with errors.Is(err, ErrUnavailable)
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// Store is the only component allowed to talk to a Backend. It normalises
// backend errors and logs write failures.
type Store struct {
	backend Backend
}

// NewStore creates a store over backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Fetch returns the raw value for a fully-qualified key. The error is
// ErrNotFound for a missing key and wraps ErrUnavailable otherwise.
func (s *Store) Fetch(ctx context.Context, key string) (string, error) {
	value, err := s.backend.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, ErrNotFound) {
		return "", ErrNotFound
	}
	if errors.Is(err, ErrUnavailable) {
		return "", err
	}
	return "", unavailable("get "+key, err)
}

// Get returns the raw value for a fully-qualified key, or false when the key
// is absent or the backend cannot be read. It never fails.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.Fetch(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("Warning: failed to read %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		log.Printf("Warning: failed to persist %s: %v", key, err)
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return unavailable("set "+key, err)
	}
	return nil
}

// SetMany stores all entries atomically
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.backend.SetMany(ctx, entries); err != nil {
		log.Printf("Warning: failed to persist %d entries: %v", len(entries), err)
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return unavailable("set many", err)
	}
	return nil
}

// RemoveKeysWithPrefix deletes every key beginning with prefix. An empty
// prefix is refused because it would match foreign data in a shared medium.
func (s *Store) RemoveKeysWithPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("refusing to remove keys with an empty prefix")
	}
	n, err := s.backend.DeletePrefix(ctx, prefix)
	if err != nil {
		return n, fmt.Errorf("failed to remove keys with prefix %q: %w", prefix, err)
	}
	return n, nil
}

// Keys lists the keys beginning with prefix
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
