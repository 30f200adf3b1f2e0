package memory

import (
	"context"
	"time"

	corenumerator "smartbiz/internal/core/numerator"
)

// Numerator implements numerator.Generator with counters kept in the DB
// state. Counters roll back with the transaction that took them, so both
// strategies are gap-free here; ranges only matter for PostgreSQL.
type Numerator struct {
	db *DB
}

// NewNumerator creates the in-memory numerator.
func NewNumerator(db *DB) *Numerator {
	return &Numerator{db: db}
}

var _ corenumerator.Generator = (*Numerator)(nil)

func (n *Numerator) GetNextNumber(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
	key := corenumerator.BuildKey(cfg, period)

	var num int64
	_ = n.db.write(ctx, func(s *state) error {
		s.counters[key]++
		num = s.counters[key]
		return nil
	})
	return corenumerator.Format(cfg, period, num), nil
}

func (n *Numerator) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	key := corenumerator.BuildKey(cfg, period)
	return n.db.write(ctx, func(s *state) error {
		s.counters[key] = value
		return nil
	})
}
