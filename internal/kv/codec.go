package kv

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Codec stores JSON-encoded values in a Store.
type Codec struct {
	store Store
	log   *zap.Logger
}

// NewCodec wraps store. A nil logger is replaced by a no-op one.
func NewCodec(store Store, log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{store: store, log: log}
}

// Store returns the underlying Store.
func (c *Codec) Store() Store { return c.store }

// Set encodes v and stores it under key.
func (c *Codec) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Error("failed to encode local value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Set(key, string(b)); err != nil {
		c.log.Error("failed to save local value", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Lookup decodes the value under key into dst. It reports false with a nil
// error when the key is unset or holds null.
func (c *Codec) Lookup(key string, dst any) (bool, error) {
	raw, ok, err := c.store.Get(key)
	if err != nil {
		return false, err
	}
	if !ok || raw == "" || raw == "null" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Has reports whether a value is stored under key.
func (c *Codec) Has(key string) bool {
	_, ok, err := c.store.Get(key)
	return err == nil && ok
}

// Remove deletes key.
func (c *Codec) Remove(key string) error {
	if err := c.store.Remove(key); err != nil {
		c.log.Error("failed to remove local value", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// GetOr returns the value under key, or def when the key is unset or cannot
// be read or decoded. Failures are logged, never returned.
func GetOr[T any](c *Codec, key string, def T) T {
	var v T
	ok, err := c.Lookup(key, &v)
	if err != nil {
		c.log.Error("failed to read local value", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}
	return v
}
