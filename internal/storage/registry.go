package storage

import (
	"context"
	"fmt"
	"sync"
)

// Opener creates a live Conn for one backend kind. Backend subpackages
// register their Opener from init().
type Opener func(ctx context.Context, cfg Config) (Conn, error)

var (
	regMu   sync.RWMutex
	openers = map[string]Opener{}
)

// Register installs (or replaces) the Opener for kind. It is typically called
// from backend packages' init() functions.
func Register(kind string, fn Opener) {
	regMu.Lock()
	defer regMu.Unlock()
	openers[kind] = fn
}

// Open looks up the Opener registered for cfg.Kind and connects. A connection
// failure here is fatal to the current run; no retry is attempted.
func Open(ctx context.Context, cfg Config) (Conn, error) {
	regMu.RLock()
	fn, ok := openers[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", cfg.Kind)
	}
	conn, err := fn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: connect %s: %w", cfg.Kind, err)
	}
	return conn, nil
}
