package session

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically evicts idle sessions. It is owned by the process
// lifecycle: started at init, stopped through context cancellation at
// shutdown.
type Sweeper struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(store *Store, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, ttl: ttl, interval: interval}
}

// Run blocks until ctx is cancelled. Each tick computes now once and sweeps.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Sweeper] stopped")
			return
		case <-ticker.C:
			if n := w.store.Sweep(time.Now(), w.ttl); n > 0 {
				log.Printf("[Sweeper] evicted %d idle session(s), %d live", n, w.store.Len())
			}
		}
	}
}
