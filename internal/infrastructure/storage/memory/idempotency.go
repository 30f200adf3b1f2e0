package memory

import (
	"context"
	"sync"
	"time"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

type idempotencyRecord struct {
	operation   string
	requestHash string
	status      idempotency.Status
	replay      idempotency.Replay
	updatedAt   time.Time
	expiresAt   time.Time
}

// IdempotencyStore keeps keys in a map. Keys live outside DB transactions:
// a rolled back request still owns its key until it completes or fails.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]*idempotencyRecord
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyStore creates the store. Records expire after ttl.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		keys: make(map[string]*idempotencyRecord),
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Acquire implements idempotency.Store.
func (s *IdempotencyStore) Acquire(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.keys[key]
	if !ok || now.After(rec.expiresAt) {
		s.keys[key] = &idempotencyRecord{
			operation:   operation,
			requestHash: requestHash,
			status:      idempotency.StatusPending,
			updatedAt:   now,
			expiresAt:   now.Add(s.ttl),
		}
		return nil, nil
	}

	if rec.operation != operation || rec.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", rec.operation).
			WithDetail("request_operation", operation)
	}

	switch rec.status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		r := rec.replay
		r.Body = append([]byte(nil), rec.replay.Body...)
		return r.Normalized(), nil
	}

	if now.Sub(rec.updatedAt) <= idempotency.StaleAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	rec.updatedAt = now
	return nil, nil
}

// Complete implements idempotency.Store.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, r idempotency.Replay) error {
	return s.finish(key, idempotency.StatusSuccess, r)
}

// Fail implements idempotency.Store.
func (s *IdempotencyStore) Fail(ctx context.Context, key string, r idempotency.Replay) error {
	return s.finish(key, idempotency.StatusFailed, r)
}

func (s *IdempotencyStore) finish(key string, status idempotency.Status, r idempotency.Replay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.keys[key]
	if !ok {
		return nil
	}
	rec.status = status
	rec.replay = idempotency.Replay{
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Body:        append([]byte(nil), r.Body...),
	}
	rec.updatedAt = s.now()
	return nil
}

// CleanupExpired removes expired records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, rec := range s.keys {
		if now.After(rec.expiresAt) {
			delete(s.keys, k)
			n++
		}
	}
	return n, nil
}
