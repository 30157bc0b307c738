package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KVStore is the opaque preference store behind the watchlist and theme.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
