package db

import (
	"context"
	"sync"
	"time"

	"novelweaver/logutils"
	"novelweaver/store"
)

// Autosaver periodically flushes the full store snapshot to the backend, and
// once more on shutdown. The final flush is synchronous so the process can
// exit knowing the snapshot landed.
type Autosaver struct {
	backend  Backend
	store    *store.Store
	interval time.Duration

	mu        sync.Mutex
	lastSaved time.Time
}

func NewAutosaver(backend Backend, s *store.Store, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Autosaver{
		backend:  backend,
		store:    s,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, then performs the last-chance flush.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := a.Flush(); err != nil {
				logutils.Log.WithError(err).Error("final snapshot flush failed")
			}
			return
		case <-ticker.C:
			if err := a.Flush(); err != nil {
				logutils.Log.WithError(err).Error("autosave failed")
			}
		}
	}
}

// Flush serializes the entire collection synchronously.
func (a *Autosaver) Flush() error {
	workspaces, activeID := a.store.Snapshot()
	if err := a.backend.Save(workspaces, activeID); err != nil {
		return err
	}

	a.mu.Lock()
	a.lastSaved = time.Now().UTC()
	a.mu.Unlock()
	return nil
}

// LastSaved reports when the last successful save happened; zero before the
// first save.
func (a *Autosaver) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}
