package app

import (
	"context"
	"time"

	"smartbiz/pkg/logger"
)

// Cleaner drops expired rows and reports how many went.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Housekeeper runs periodic cleanups until its context is cancelled.
type Housekeeper struct {
	cleaners map[string]Cleaner
	interval time.Duration
	log      *logger.Logger

	// stats is called after every run; nil for memory
	stats func(ctx context.Context)
}

// NewHousekeeper collects the backend's cleanable stores.
func NewHousekeeper(b *Backend, interval time.Duration, log *logger.Logger) *Housekeeper {
	h := &Housekeeper{
		cleaners: make(map[string]Cleaner),
		interval: interval,
		log:      log.WithComponent("housekeeper"),
		stats:    b.logStats,
	}
	if c, ok := b.Idempotency.(Cleaner); ok {
		h.cleaners["idempotency"] = c
	}
	return h
}

// Run cleans once immediately and then on every tick.
func (h *Housekeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.RunOnce(ctx)
		}
	}
}

// RunOnce runs every cleaner and returns the removed counts by name.
// A failing cleaner is logged and skipped.
func (h *Housekeeper) RunOnce(ctx context.Context) map[string]int64 {
	out := make(map[string]int64, len(h.cleaners))
	for name, c := range h.cleaners {
		n, err := c.CleanupExpired(ctx)
		if err != nil {
			h.log.Errorw("cleanup failed", "store", name, "error", err)
			continue
		}
		out[name] = n
		if n > 0 {
			h.log.Infow("cleaned up expired rows", "store", name, "count", n)
		}
	}
	if h.stats != nil {
		h.stats(ctx)
	}
	return out
}
