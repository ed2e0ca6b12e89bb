// Package store persists learned value tables between runs
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("key not found")

// Store saves and loads JSON encodable values under a key
type Store interface {
	Save(ctx context.Context, key string, v interface{}) error
	// Load decodes the value under key into v, ErrNotFound when absent
	Load(ctx context.Context, key string, v interface{}) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// New picks a RedisStore when addr is set, a FileStore under dir otherwise
func New(dir, addr string) (Store, error) {
	if addr != "" {
		return NewRedisStore(addr, "vacuum:")
	}
	return NewFileStore(dir)
}
