package rag

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/retailops/asset-helpdesk/internal/vectorstore"
	"github.com/retailops/asset-helpdesk/pkg/resilience"
)

// reloadTimeout bounds the full payload scroll. The per-request client
// timeout does not cap the scroll's total duration, since it pages through
// the whole collection.
const reloadTimeout = 2 * time.Minute

// Ledger is the set of fingerprint keys already present in the vector index.
// It is derived state: Reload rebuilds it from the index's payloads, and a
// key in the ledger implies at least one indexed point carries that key. The
// ledger is passed in explicitly rather than held as package state so
// multiple service instances stay independent.
type Ledger struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{keys: make(map[string]struct{})}
}

// Reload rebuilds the ledger with a full payload scan over the index. Called
// at startup and after a collection reset.
func (l *Ledger) Reload(ctx context.Context, index VectorIndex) error {
	keys := make(map[string]struct{})
	err := resilience.WithTimeout(ctx, reloadTimeout, "ledger-reload", func(ctx context.Context) error {
		return index.ScrollPayloads(ctx, []string{"file_hash"}, func(p vectorstore.Payload) error {
			if p.FileHash != "" {
				keys[p.FileHash] = struct{}{}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.keys = keys
	l.mu.Unlock()
	slog.Default().With("component", "ledger").Info("ledger reloaded", "fingerprints", len(keys))
	return nil
}

// Contains reports whether the fingerprint key is already ingested.
func (l *Ledger) Contains(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok
}

// Add marks a fingerprint key as ingested.
func (l *Ledger) Add(key string) {
	l.mu.Lock()
	l.keys[key] = struct{}{}
	l.mu.Unlock()
}

// Clear empties the ledger, used after the collection is reset.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.keys = make(map[string]struct{})
	l.mu.Unlock()
}

// Len returns the number of tracked fingerprints.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}
