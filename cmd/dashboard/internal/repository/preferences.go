package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	watchlistKey = "watchlist"
	themeKey     = "theme"
	DefaultTheme = "dark"
)

// Watchlist is the user's set of followed symbols, persisted as a JSON array.
type Watchlist struct {
	store KVStore

	mu      sync.RWMutex
	symbols map[string]bool
}

// LoadWatchlist reads the saved set. A missing or corrupt entry yields an empty list.
func LoadWatchlist(ctx context.Context, store KVStore) (*Watchlist, error) {
	w := &Watchlist{store: store, symbols: make(map[string]bool)}

	raw, err := store.Get(ctx, watchlistKey)
	if errors.Is(err, ErrNotFound) {
		return w, nil
	}
	if err != nil {
		return nil, err
	}

	var saved []string
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return w, nil
	}
	for _, s := range saved {
		w.symbols[s] = true
	}
	return w, nil
}

// Toggle adds or removes symbol and persists the result. It reports the new membership.
func (w *Watchlist) Toggle(ctx context.Context, symbol string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	in := !w.symbols[symbol]
	if in {
		w.symbols[symbol] = true
	} else {
		delete(w.symbols, symbol)
	}
	if err := w.saveLocked(ctx); err != nil {
		if in {
			delete(w.symbols, symbol)
		} else {
			w.symbols[symbol] = true
		}
		return !in, err
	}
	return in, nil
}

func (w *Watchlist) Add(ctx context.Context, symbol string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.symbols[symbol] {
		return nil
	}
	w.symbols[symbol] = true
	return w.saveLocked(ctx)
}

func (w *Watchlist) Remove(ctx context.Context, symbol string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.symbols[symbol] {
		return nil
	}
	delete(w.symbols, symbol)
	return w.saveLocked(ctx)
}

func (w *Watchlist) Contains(symbol string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.symbols[symbol]
}

// Set returns a copy of the membership map.
func (w *Watchlist) Set() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]bool, len(w.symbols))
	for s := range w.symbols {
		out[s] = true
	}
	return out
}

func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sortedLocked()
}

func (w *Watchlist) sortedLocked() []string {
	out := make([]string, 0, len(w.symbols))
	for s := range w.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (w *Watchlist) saveLocked(ctx context.Context) error {
	b, err := json.Marshal(w.sortedLocked())
	if err != nil {
		return err
	}
	if err := w.store.Set(ctx, watchlistKey, string(b)); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

// Theme returns the saved theme or DefaultTheme.
func Theme(ctx context.Context, store KVStore) (string, error) {
	raw, err := store.Get(ctx, themeKey)
	if errors.Is(err, ErrNotFound) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	var theme string
	if err := json.Unmarshal([]byte(raw), &theme); err != nil || theme == "" {
		return DefaultTheme, nil
	}
	return theme, nil
}

func SetTheme(ctx context.Context, store KVStore, theme string) error {
	b, _ := json.Marshal(theme)
	return store.Set(ctx, themeKey, string(b))
}
