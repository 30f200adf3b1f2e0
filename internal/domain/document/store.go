package document

import (
	"context"
	"fmt"
	"time"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/numerator"
	"smartbiz/internal/core/tx"
	"smartbiz/internal/domain"
	"smartbiz/pkg/logger"
)

// Store creates, numbers and persists documents.
type Store struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	ids       id.Generator
	now       func() time.Time
	hooks     *domain.HookRegistry[Document]
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(g id.Generator) StoreOption {
	return func(s *Store) { s.ids = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a document store.
func NewStore(repo Repository, gen numerator.Generator, txManager tx.Manager, opts ...StoreOption) *Store {
	s := &Store{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		ids:       id.Default,
		now:       func() time.Time { return time.Now().UTC() },
		hooks:     domain.NewHookRegistry[Document](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hooks returns the hook registry. Hooks run inside the store's transaction.
func (s *Store) Hooks() *domain.HookRegistry[Document] {
	return s.hooks
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Create validates doc, assigns ID, number, version and timestamps, and inserts it.
func (s *Store) Create(ctx context.Context, doc Document) error {
	h := doc.Head()

	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}

	if err := Validate(ctx, doc); err != nil {
		return err
	}

	now := s.now()
	if h.Date.IsZero() {
		h.Date = now
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		kind := h.Kind()
		number, err := s.numerator.GetNextNumber(ctx, NumberConfig(kind), NumberOptions(kind), h.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}

		h.Stamp(s.ids.NewID(), now)
		h.Number = number

		if err := s.repo.Insert(ctx, doc); err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}

		if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
			return err
		}

		logger.Info(ctx, "document created",
			"id", h.ID,
			"kind", kind.String(),
			"number", h.Number,
			"amount", h.Amount.String())
		return nil
	})
}

// Update replaces the stored document. Version must match the stored one;
// on success doc.Version is incremented.
func (s *Store) Update(ctx context.Context, doc Document) error {
	if err := Validate(ctx, doc); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc.Head().UpdatedAt = s.now()
		if err := s.repo.Replace(ctx, doc); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterUpdate, doc)
	})
}

// Delete removes a document permanently. Linked documents keep their
// dangling references.
func (s *Store) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.Get(ctx, docID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, doc); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		logger.Info(ctx, "document deleted", "id", docID, "number", doc.Head().Number)
		return nil
	})
}

// FindByID returns the document or NOT_FOUND.
func (s *Store) FindByID(ctx context.Context, docID id.ID) (Document, error) {
	doc, err := s.repo.Get(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, err
	}
	return doc, nil
}

// FindLinked returns the predecessor of doc. A missing or dangling
// reference yields (nil, nil).
func (s *Store) FindLinked(ctx context.Context, doc Document) (Document, error) {
	linked := doc.Head().Linked()
	if id.IsNil(linked) {
		return nil, nil
	}
	src, err := s.repo.Get(ctx, linked)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return src, nil
}

// List returns documents of a domain matching filter.
func (s *Store) List(ctx context.Context, d Domain, filter Filter) ([]Document, error) {
	if !d.Valid() {
		return nil, apperror.NewValidation("unknown domain").WithDetail("domain", d)
	}
	return s.repo.List(ctx, d, filter)
}

// Successors returns documents whose LinkedDocumentID points at docID.
func (s *Store) Successors(ctx context.Context, doc Document) ([]Document, error) {
	docID := doc.Head().ID
	return s.repo.List(ctx, doc.Head().Domain, Filter{LinkedDocumentID: &docID})
}
