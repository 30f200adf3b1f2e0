package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps Idempotency-Key records in sys_idempotency.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates the store. Records expire after ttl.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		txManager: txManager,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type idempotencyRecord struct {
	Operation   string
	RequestHash string
	Status      idempotency.Status
	Response    []byte
	StatusCode  int
	ContentType string
	UpdatedAt   time.Time
}

// Acquire implements idempotency.Store.
func (s *IdempotencyStore) Acquire(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	now := s.now()
	q := s.txManager.GetQuerier(ctx)

	// DO NOTHING + RETURNING yields a row only when this call inserted it.
	var inserted string
	err := q.QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, operation, request_hash, status, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING idempotency_key
	`, key, operation, requestHash, idempotency.StatusPending, now, now.Add(s.ttl)).Scan(&inserted)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	var rec idempotencyRecord
	err = q.QueryRow(ctx, `
		SELECT operation, request_hash, status, response, COALESCE(response_status, 0), COALESCE(response_content_type, ''), updated_at
		FROM sys_idempotency
		WHERE idempotency_key = $1
	`, key).Scan(&rec.Operation, &rec.RequestHash, &rec.Status, &rec.Response, &rec.StatusCode, &rec.ContentType, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}

	if rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", operation)
	}

	switch rec.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		r := &idempotency.Replay{StatusCode: rec.StatusCode, ContentType: rec.ContentType, Body: rec.Response}
		return r.Normalized(), nil
	}

	if now.Sub(rec.UpdatedAt) <= idempotency.StaleAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}

	// The request holding the key most likely crashed: take it over.
	tag, err := q.Exec(ctx, `
		UPDATE sys_idempotency SET updated_at = $1
		WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
	`, now, key, idempotency.StatusPending, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim stale key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

// Complete implements idempotency.Store.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, r idempotency.Replay) error {
	return s.finish(ctx, key, idempotency.StatusSuccess, r)
}

// Fail implements idempotency.Store.
func (s *IdempotencyStore) Fail(ctx context.Context, key string, r idempotency.Replay) error {
	return s.finish(ctx, key, idempotency.StatusFailed, r)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status idempotency.Status, r idempotency.Replay) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, r.Body, r.StatusCode, r.ContentType, s.now(), key)
	if err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

// CleanupExpired removes expired records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM sys_idempotency WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
