package repository

import (
	"context"
)

// TickStore is the processor's output as the gateway sees it: latest tick per
// symbol plus a per-symbol live feed.
type TickStore interface {
	GetSnapshots(ctx context.Context, symbols []string) ([]string, error)
	SubscribeToFeed(ctx context.Context, symbol string) error
	UnsubscribeFromFeed(ctx context.Context, symbol string) error
	RunPubSub(ctx context.Context, onMessage func(symbol string, payload string))
	Close() error
}
