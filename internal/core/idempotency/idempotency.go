// Package idempotency defines the key store behind the Idempotency-Key header:
// a replayed submit returns the first response instead of creating a second document.
package idempotency

import (
	"context"
	"time"
)

// Status is the state of a key.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may sit before another request may reclaim it.
const StaleAfter = time.Minute

// Replay is a stored HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Normalized fills defaults for responses stored without status or content type.
func (r *Replay) Normalized() *Replay {
	out := *r
	if out.StatusCode == 0 {
		out.StatusCode = 200
	}
	if out.ContentType == "" {
		out.ContentType = "application/json"
	}
	return &out
}

// Store persists idempotency keys.
type Store interface {
	// Acquire claims key for a request identified by operation and requestHash.
	// It returns (nil, nil) when the caller owns the key, a Replay when the
	// operation already finished, and IDEMPOTENCY_CONFLICT while another
	// request holds the key or when the key was used for a different request.
	Acquire(ctx context.Context, key, operation, requestHash string) (*Replay, error)

	// Complete stores the successful response.
	Complete(ctx context.Context, key string, r Replay) error

	// Fail stores an error response; replays return it as well.
	Fail(ctx context.Context, key string, r Replay) error
}
