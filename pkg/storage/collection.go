package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Collection is a typed JSON document stored under one key. Update runs a
// read-modify-write cycle under a mutex; the whole document is rewritten.
type Collection[T any] struct {
	store Store
	key   string
	mu    sync.Mutex
}

// NewCollection binds a document type to a key
func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Key returns the storage key
func (c *Collection[T]) Key() string {
	return c.key
}

func (c *Collection[T]) load(ctx context.Context) (T, bool, error) {
	var v T
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, ErrKeyNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("failed to decode %s: %w", c.key, err)
	}
	return v, true, nil
}

func (c *Collection[T]) save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	return c.store.Set(ctx, c.key, data)
}

// Load returns the stored document, or the zero value when absent
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, _, err := c.load(ctx)
	return v, err
}

// Exists reports whether the key holds a document
func (c *Collection[T]) Exists(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok, err := c.load(ctx)
	return ok, err
}

// Save replaces the document
func (c *Collection[T]) Save(ctx context.Context, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, v)
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (c *Collection[T]) Update(ctx context.Context, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return c.save(ctx, v)
}

// Remove deletes the document
func (c *Collection[T]) Remove(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Remove(ctx, c.key)
}
