package memory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNotFound is returned by Store.Get when no blob exists for the key.
var ErrNotFound = errors.New("memory: not found")

// Keys are conversation ids (UUIDs, ULIDs) and flow into file names, so
// anything that could traverse outside the store is rejected up front.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("memory: invalid key %q", key)
	}
	return nil
}

// KeyInfo describes one stored memory for listing and cleanup.
type KeyInfo struct {
	Key       string
	UpdatedAt time.Time
}

// Store persists serialized conversation memories keyed by conversation
// id.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]KeyInfo, error)
	Close() error
}
