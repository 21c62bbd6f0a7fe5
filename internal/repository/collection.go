package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"calmcompanion/internal/models"
	"calmcompanion/internal/storage"
)

// ErrInvalidValue is returned when a value fails validation before it is written
var ErrInvalidValue = errors.New("invalid value")

const activeProfileKey = "active_profile"

// CollectionStore reads and writes JSON collections scoped to the active
// profile. Raw values are cached by fully-qualified key. Changing the active
// profile and clearing the cache happen under one write lock, so a reader
// never mixes two profiles' data.
type CollectionStore struct {
	store *storage.Store
	keys  storage.Keyspace

	mu       sync.RWMutex
	activeID string // "" means not selected

	cacheMu sync.Mutex
	cache   map[string]string
}

// NewCollectionStore creates a collection store and resolves the persisted
// active profile pointer.
func NewCollectionStore(ctx context.Context, store *storage.Store, keys storage.Keyspace) *CollectionStore {
	c := &CollectionStore{
		store: store,
		keys:  keys,
		cache: make(map[string]string),
	}
	c.activeID, _ = store.Get(ctx, keys.Global(activeProfileKey))
	return c
}

// Keyspace returns the key layout used by this store
func (c *CollectionStore) Keyspace() storage.Keyspace {
	return c.keys
}

// Store returns the underlying persistence layer
func (c *CollectionStore) Store() *storage.Store {
	return c.store
}

// ActiveProfileID returns the selected profile id and whether one was ever selected
func (c *CollectionStore) ActiveProfileID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID, c.activeID != ""
}

// ResolvedProfileID returns the active profile id or the fallback id
func (c *CollectionStore) ResolvedProfileID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolvedLocked()
}

func (c *CollectionStore) resolvedLocked() string {
	if c.activeID == "" {
		return c.keys.FallbackProfileID()
	}
	return c.activeID
}

// SetActiveProfile persists the pointer and invalidates all cached values.
// Listeners observing the store after this returns see only the new profile.
func (c *CollectionStore) SetActiveProfile(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(ctx, c.keys.Global(activeProfileKey), id); err != nil {
		return err
	}
	c.activeID = id
	c.clearCache()
	return nil
}

// PurgeProfile removes every key scoped to id and, if id is active, drops the
// pointer so reads fall back to the default profile. Both happen under the
// write lock, so no concurrent save can recreate keys for id afterwards.
func (c *CollectionStore) PurgeProfile(ctx context.Context, id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.clearCache()

	removed, err := c.store.RemoveKeysWithPrefix(ctx, c.keys.ProfilePrefix(id))
	if err != nil {
		return removed, err
	}
	if c.activeID == id {
		if err := c.store.Set(ctx, c.keys.Global(activeProfileKey), ""); err != nil {
			return removed, err
		}
		c.activeID = ""
	}
	return removed, nil
}

// Invalidate drops cached values and re-reads the active profile pointer.
// Call it after anything writes to the store behind this object's back.
func (c *CollectionStore) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeID, _ = c.store.Get(ctx, c.keys.Global(activeProfileKey))
	c.clearCache()
}

func (c *CollectionStore) clearCache() {
	c.cacheMu.Lock()
	c.cache = make(map[string]string)
	c.cacheMu.Unlock()
}

func (c *CollectionStore) readRaw(ctx context.Context, fullKey string) (string, bool) {
	c.cacheMu.Lock()
	raw, ok := c.cache[fullKey]
	c.cacheMu.Unlock()
	if ok {
		return raw, true
	}

	raw, ok = c.store.Get(ctx, fullKey)
	if !ok {
		return "", false
	}

	c.cacheMu.Lock()
	c.cache[fullKey] = raw
	c.cacheMu.Unlock()
	return raw, true
}

func (c *CollectionStore) writeRaw(ctx context.Context, fullKey, raw string) error {
	if err := c.store.Set(ctx, fullKey, raw); err != nil {
		c.cacheMu.Lock()
		delete(c.cache, fullKey)
		c.cacheMu.Unlock()
		return err
	}

	c.cacheMu.Lock()
	c.cache[fullKey] = raw
	c.cacheMu.Unlock()
	return nil
}

// GetCollection reads key for the active profile. A missing, unreadable,
// unparsable or invalid value yields def.
func GetCollection[T any](ctx context.Context, c *CollectionStore, key string, def T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return get(ctx, c, c.keys.Scoped(c.resolvedLocked(), key), def)
}

// SaveCollection replaces key for the active profile with value
func SaveCollection[T any](ctx context.Context, c *CollectionStore, key string, value T) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return save(ctx, c, c.keys.Scoped(c.resolvedLocked(), key), value)
}

// UpdateCollection reads key for the active profile, applies fn and saves the
// result. The profile is resolved once and cannot change until the write
// completes. fn must not call back into c. When fn returns an error nothing
// is written.
func UpdateCollection[T any](ctx context.Context, c *CollectionStore, key string, def T, fn func(T) (T, error)) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fullKey := c.keys.Scoped(c.resolvedLocked(), key)
	updated, err := fn(get(ctx, c, fullKey, def))
	if err != nil {
		return updated, err
	}
	return updated, save(ctx, c, fullKey, updated)
}

// GetProfileCollection reads key for an explicit profile regardless of the active one
func GetProfileCollection[T any](ctx context.Context, c *CollectionStore, profileID, key string, def T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return get(ctx, c, c.keys.Scoped(profileID, key), def)
}

// SaveProfileCollection replaces key for an explicit profile
func SaveProfileCollection[T any](ctx context.Context, c *CollectionStore, profileID, key string, value T) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return save(ctx, c, c.keys.Scoped(profileID, key), value)
}

// GetGlobal reads an unscoped collection
func GetGlobal[T any](ctx context.Context, c *CollectionStore, key string, def T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return get(ctx, c, c.keys.Global(key), def)
}

// SaveGlobal replaces an unscoped collection
func SaveGlobal[T any](ctx context.Context, c *CollectionStore, key string, value T) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return save(ctx, c, c.keys.Global(key), value)
}

func get[T any](ctx context.Context, c *CollectionStore, fullKey string, def T) T {
	raw, ok := c.readRaw(ctx, fullKey)
	if !ok {
		return def
	}
	value, err := decode[T](raw)
	if err != nil {
		log.Printf("Warning: ignoring stored %s: %v", fullKey, err)
		return def
	}
	return value
}

func save[T any](ctx context.Context, c *CollectionStore, fullKey string, value T) error {
	if err := validate(&value); err != nil {
		return errors.Join(ErrInvalidValue, err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrInvalidValue, err)
	}
	return c.writeRaw(ctx, fullKey, string(data))
}

// decode parses raw as T and validates it. A stored null decodes to the zero
// value of T, so a saved nil slice or pointer reads back as nil.
func decode[T any](raw string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, err
	}
	if err := validate(&value); err != nil {
		return value, err
	}
	return value, nil
}

func validate[T any](value *T) error {
	if v, ok := any(*value).(models.Validator); ok {
		return v.Validate()
	}
	if v, ok := any(value).(models.Validator); ok {
		return v.Validate()
	}
	return nil
}
