package stock

import (
	"sort"
	"sync"

	"smartbiz/internal/core/entity"
)

// Locker serialises balance updates per (warehouse, product).
// Keys are always acquired in sorted order so two documents touching the
// same cells cannot deadlock.
type Locker struct {
	mu    sync.Mutex
	cells map[entity.StockKey]*cell
}

type cell struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty locker.
func NewLocker() *Locker {
	return &Locker{cells: make(map[entity.StockKey]*cell)}
}

// Lock acquires every key and returns the function releasing them.
func (l *Locker) Lock(keys []entity.StockKey) (unlock func()) {
	keys = sortedUnique(keys)

	held := make([]*cell, 0, len(keys))
	for _, k := range keys {
		c := l.acquire(k)
		c.mu.Lock()
		held = append(held, c)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(keys[i])
		}
	}
}

func (l *Locker) acquire(k entity.StockKey) *cell {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.cells[k]
	if !ok {
		c = &cell{}
		l.cells[k] = c
	}
	c.refs++
	return c
}

func (l *Locker) release(k entity.StockKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.cells[k]
	c.refs--
	if c.refs == 0 {
		delete(l.cells, k)
	}
}

// size returns the number of cells currently referenced.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cells)
}

func sortedUnique(keys []entity.StockKey) []entity.StockKey {
	out := make([]entity.StockKey, 0, len(keys))
	seen := make(map[entity.StockKey]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
